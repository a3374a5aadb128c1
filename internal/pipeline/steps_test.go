package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/profilescan/profilescan/internal/crawler"
	"github.com/profilescan/profilescan/internal/database"
	"github.com/profilescan/profilescan/internal/model"
	"github.com/profilescan/profilescan/internal/store"
)

// stubExtractor returns canned profiles without calling any API.
type stubExtractor struct {
	profiles []model.Profile
	err      error
	calls    int
}

func (s *stubExtractor) Extract(_ context.Context, _ string) ([]model.Profile, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.profiles, nil
}

// teamPage is HTML with lines long enough to survive text cleaning.
const teamPage = `<html><head><title>Team</title></head><body>
<p>Ada Lovelace wrote the first published computer program for the Analytical Engine.</p>
<p>Grace Hopper invented the first compiler and championed readable programming languages.</p>
<a href="/a">More</a><a href="/b">Even more</a>
</body></html>`

// newTestSpider builds a spider pointed at a three-page test site.
func newTestSpider(t *testing.T) (*crawler.Spider, string) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, teamPage)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	spider := crawler.NewSpider(server.Client(),
		crawler.WithDelay(time.Millisecond),
		crawler.WithMaxPages(10),
	)
	return spider, server.URL
}

// TestCrawlExtractStep tests the core crawl-and-extract step.
func TestCrawlExtractStep(t *testing.T) {
	t.Parallel()

	t.Run("extracts profiles from each page", func(t *testing.T) {
		t.Parallel()

		spider, baseURL := newTestSpider(t)
		extractor := &stubExtractor{profiles: []model.Profile{
			{Name: "Ada Lovelace", About: "First programmer."},
		}}

		step := NewCrawlExtractStep(spider, extractor, nil)
		report := model.NewCrawlReport(baseURL)

		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Three pages: /, /a, /b
		if report.PagesProcessed != 3 {
			t.Errorf("expected 3 processed pages, got %d", report.PagesProcessed)
		}
		if extractor.calls != 3 {
			t.Errorf("expected 3 extraction calls, got %d", extractor.calls)
		}
		if report.Directory.Len() != 3 {
			t.Errorf("expected 3 profiles, got %d", report.Directory.Len())
		}
	})

	t.Run("extraction failure skips page but continues crawl", func(t *testing.T) {
		t.Parallel()

		spider, baseURL := newTestSpider(t)
		extractor := &stubExtractor{err: errors.New("model unavailable")}

		step := NewCrawlExtractStep(spider, extractor, nil)
		report := model.NewCrawlReport(baseURL)

		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.PagesProcessed != 3 {
			t.Errorf("expected crawl to continue, got %d pages", report.PagesProcessed)
		}
		if report.Directory.Len() != 0 {
			t.Errorf("expected no profiles, got %d", report.Directory.Len())
		}
	})

	t.Run("periodic snapshot save", func(t *testing.T) {
		t.Parallel()

		spider, baseURL := newTestSpider(t)
		extractor := &stubExtractor{profiles: []model.Profile{
			{Name: "Ada Lovelace", About: "First programmer."},
		}}

		snapshot, err := store.NewSnapshot(t.TempDir())
		if err != nil {
			t.Fatalf("failed to create snapshot: %v", err)
		}

		step := NewCrawlExtractStep(spider, extractor, snapshot, WithSaveEvery(2))
		report := model.NewCrawlReport(baseURL)

		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Three pages were processed, so the save at page 2 fired.
		saved, err := snapshot.Load()
		if err != nil {
			t.Fatalf("failed to load snapshot: %v", err)
		}
		if saved.Len() < 2 {
			t.Errorf("expected periodic save to contain at least 2 profiles, got %d", saved.Len())
		}
	})

	t.Run("cancellation is graceful, not an error", func(t *testing.T) {
		t.Parallel()

		spider, baseURL := newTestSpider(t)
		extractor := &stubExtractor{}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		step := NewCrawlExtractStep(spider, extractor, nil)
		report := model.NewCrawlReport(baseURL)

		if err := step.Do(ctx, report); err != nil {
			t.Fatalf("expected graceful interruption, got %v", err)
		}
		if !report.Interrupted {
			t.Error("expected report to be marked interrupted")
		}
	})

	t.Run("invalid base URL fails the step", func(t *testing.T) {
		t.Parallel()

		spider := crawler.NewSpider(http.DefaultClient, crawler.WithDelay(time.Millisecond))
		step := NewCrawlExtractStep(spider, &stubExtractor{}, nil)
		report := model.NewCrawlReport("://not-a-url")

		if err := step.Do(context.Background(), report); err == nil {
			t.Fatal("expected error for invalid base URL")
		}
	})
}

// TestSnapshotStep tests the unconditional final save.
func TestSnapshotStep(t *testing.T) {
	t.Parallel()

	t.Run("saves directory to disk", func(t *testing.T) {
		t.Parallel()

		snapshot, err := store.NewSnapshot(t.TempDir())
		if err != nil {
			t.Fatalf("failed to create snapshot: %v", err)
		}

		report := model.NewCrawlReport("https://example.com")
		report.Directory.Append([]model.Profile{
			{Name: "Ada Lovelace", About: "First programmer."},
		})

		step := NewSnapshotStep(snapshot, nil)
		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		saved, err := snapshot.Load()
		if err != nil {
			t.Fatalf("failed to load snapshot: %v", err)
		}
		if saved.Len() != 1 {
			t.Errorf("expected 1 profile, got %d", saved.Len())
		}
	})

	t.Run("empty directory still produces a file", func(t *testing.T) {
		t.Parallel()

		snapshot, err := store.NewSnapshot(t.TempDir())
		if err != nil {
			t.Fatalf("failed to create snapshot: %v", err)
		}

		report := model.NewCrawlReport("https://example.com")

		step := NewSnapshotStep(snapshot, nil)
		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := os.Stat(snapshot.Path()); err != nil {
			t.Errorf("expected snapshot file to exist: %v", err)
		}
	})
}

// TestHistoryStep tests database recording.
func TestHistoryStep(t *testing.T) {
	t.Parallel()

	db, err := database.Open(t.TempDir(), database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	report := model.NewCrawlReport("https://example.com")
	report.AddPage(&model.Page{
		URL:        "https://example.com/team",
		StatusCode: 200,
		Title:      "Team",
	})
	report.Directory.Append([]model.Profile{
		{Name: "Ada Lovelace", About: "First programmer."},
	})

	step := NewHistoryStep(db, nil)
	if err := step.Do(context.Background(), report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()

	page, err := db.GetPageRecord(ctx, "https://example.com/team", "https://example.com")
	if err != nil {
		t.Fatalf("failed to get page record: %v", err)
	}
	if page == nil || page.Title != "Team" {
		t.Error("expected page record to be stored")
	}

	profiles, err := db.QueryProfiles(ctx, "https://example.com", "")
	if err != nil {
		t.Fatalf("failed to query profiles: %v", err)
	}
	if len(profiles) != 1 {
		t.Errorf("expected 1 stored profile, got %d", len(profiles))
	}

	stored, err := db.GetLatestCrawlReport(ctx, "https://example.com")
	if err != nil {
		t.Fatalf("failed to get report: %v", err)
	}
	if stored == nil || stored.PagesProcessed != 1 {
		t.Error("expected stored report with 1 processed page")
	}
}
