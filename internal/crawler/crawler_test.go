package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/profilescan/profilescan/internal/model"
)

// TestFrontierAdmit tests the same-host http(s)-only admission filter.
func TestFrontierAdmit(t *testing.T) {
	t.Parallel()

	frontier, err := NewFrontier("http://example.com")
	if err != nil {
		t.Fatalf("failed to create frontier: %v", err)
	}

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"same host http", "http://example.com/about", true},
		{"same host https", "https://example.com/team", true},
		{"different host", "http://other.com/x", false},
		{"subdomain is a different host", "http://www.example.com/", false},
		{"ftp scheme", "ftp://example.com/file", false},
		{"mailto", "mailto:someone@example.com", false},
		{"malformed", "http://exa mple.com/%zz", false},
		{"scheme-less", "example.com/about", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := frontier.Admit(tt.url); got != tt.want {
				t.Errorf("Admit(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

// TestFrontierQueue tests FIFO ordering and the visited/pending invariant.
func TestFrontierQueue(t *testing.T) {
	t.Parallel()

	t.Run("dequeues in discovery order", func(t *testing.T) {
		t.Parallel()

		f, err := NewFrontier("http://example.com")
		if err != nil {
			t.Fatalf("failed to create frontier: %v", err)
		}

		f.Enqueue("http://example.com/a")
		f.Enqueue("http://example.com/b")
		f.Enqueue("http://example.com/c")

		for _, want := range []string{"http://example.com/a", "http://example.com/b", "http://example.com/c"} {
			got, ok := f.Dequeue()
			if !ok {
				t.Fatal("queue exhausted early")
			}
			if got != want {
				t.Errorf("expected %q, got %q", want, got)
			}
		}

		if _, ok := f.Dequeue(); ok {
			t.Error("expected empty queue to signal empty")
		}
	})

	t.Run("rejected URLs never enter the queue", func(t *testing.T) {
		t.Parallel()

		f, err := NewFrontier("http://example.com")
		if err != nil {
			t.Fatalf("failed to create frontier: %v", err)
		}

		for range 3 {
			f.Enqueue("http://other.com/x")
		}

		if f.PendingLen() != 0 {
			t.Errorf("expected empty queue, got %d pending", f.PendingLen())
		}
	})

	t.Run("duplicates excluded at insertion", func(t *testing.T) {
		t.Parallel()

		f, err := NewFrontier("http://example.com")
		if err != nil {
			t.Fatalf("failed to create frontier: %v", err)
		}

		f.Enqueue("http://example.com/page")
		f.Enqueue("http://example.com/page")
		f.Enqueue("http://example.com/page#section") // same after normalization

		if f.PendingLen() != 1 {
			t.Errorf("expected 1 pending URL, got %d", f.PendingLen())
		}
	})

	t.Run("visited URLs are never re-enqueued", func(t *testing.T) {
		t.Parallel()

		f, err := NewFrontier("http://example.com")
		if err != nil {
			t.Fatalf("failed to create frontier: %v", err)
		}

		f.MarkVisited("http://example.com/done")
		f.Enqueue("http://example.com/done")

		if f.PendingLen() != 0 {
			t.Errorf("expected visited URL to stay out of the queue, got %d pending", f.PendingLen())
		}
	})

	t.Run("normalization treats root variants as one URL", func(t *testing.T) {
		t.Parallel()

		f, err := NewFrontier("http://example.com")
		if err != nil {
			t.Fatalf("failed to create frontier: %v", err)
		}

		f.MarkVisited("http://example.com")
		if !f.IsVisited("http://EXAMPLE.com/") {
			t.Error("expected host-case and trailing-slash variants to count as visited")
		}
	})
}

// TestCleanText tests the whitespace/short-line cleaning law.
func TestCleanText(t *testing.T) {
	t.Parallel()

	t.Run("collapses whitespace runs", func(t *testing.T) {
		t.Parallel()

		in := "This   line has\t\tplenty of  words and should clearly survive cleaning."
		got := CleanText(in)
		if strings.Contains(got, "  ") || strings.Contains(got, "\t") {
			t.Errorf("expected collapsed whitespace, got %q", got)
		}
	})

	t.Run("drops short lines", func(t *testing.T) {
		t.Parallel()

		in := "Home\nAbout\nA considerably longer sentence about a person on this page.\nContact"
		got := CleanText(in)

		if got != "A considerably longer sentence about a person on this page." {
			t.Errorf("expected only the long line to survive, got %q", got)
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		t.Parallel()

		in := "  Short\n A line that is comfortably longer than the thirty character floor. \nx\n"
		once := CleanText(in)
		twice := CleanText(once)
		if once != twice {
			t.Errorf("CleanText not idempotent:\nonce:  %q\ntwice: %q", once, twice)
		}
	})

	t.Run("empty input yields empty output", func(t *testing.T) {
		t.Parallel()

		if got := CleanText(""); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})
}

// TestParser tests HTML parsing functionality.
func TestParser(t *testing.T) {
	t.Parallel()

	t.Run("extracts title and visible text", func(t *testing.T) {
		t.Parallel()

		page := `<html><head><title>Team</title><style>body { color: red }</style></head>
			<body><script>var tracking = "beacon";</script>
			<p>Dr. Ada Lovelace wrote what is regarded as the first computer program.</p>
			</body></html>`

		parser, err := NewParser("http://example.com/team")
		if err != nil {
			t.Fatalf("failed to create parser: %v", err)
		}

		result, err := parser.Parse(strings.NewReader(page))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		if result.Title != "Team" {
			t.Errorf("expected title 'Team', got %q", result.Title)
		}
		if strings.Contains(result.Text, "tracking") || strings.Contains(result.Text, "color: red") {
			t.Errorf("script/style content leaked into text: %q", result.Text)
		}
		if !strings.Contains(result.Text, "Ada Lovelace") {
			t.Errorf("expected visible text to be extracted, got %q", result.Text)
		}
	})

	t.Run("resolves relative links against the page URL", func(t *testing.T) {
		t.Parallel()

		page := `<html><body>
			<a href="/about">About</a>
			<a href="people.html">People</a>
			<a href="http://other.com/x">Elsewhere</a>
			<a href="mailto:hi@example.com">Mail</a>
			<a href="javascript:void(0)">JS</a>
			<a href="#">Top</a>
		</body></html>`

		parser, err := NewParser("http://example.com/dir/index.html")
		if err != nil {
			t.Fatalf("failed to create parser: %v", err)
		}

		result, err := parser.Parse(strings.NewReader(page))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		want := []string{
			"http://example.com/about",
			"http://example.com/dir/people.html",
			"http://other.com/x",
		}
		if len(result.Links) != len(want) {
			t.Fatalf("expected %d links, got %d: %v", len(want), len(result.Links), result.Links)
		}
		for i, w := range want {
			if result.Links[i] != w {
				t.Errorf("link %d: expected %q, got %q", i, w, result.Links[i])
			}
		}
	})

	t.Run("handles malformed HTML without error", func(t *testing.T) {
		t.Parallel()

		parser, err := NewParser("http://example.com")
		if err != nil {
			t.Fatalf("failed to create parser: %v", err)
		}

		if _, err := parser.Parse(strings.NewReader("<p>unclosed <b>nested <a href='/x'>tags")); err != nil {
			t.Errorf("expected lenient parsing, got error: %v", err)
		}
	})
}

// longBio is page filler comfortably above the minimum line length.
const longBio = "Jane Example has led the research group for over a decade and published widely."

// TestSpiderCrawl tests the breadth-first crawl loop end to end against
// a local test server.
func TestSpiderCrawl(t *testing.T) {
	t.Parallel()

	t.Run("crawls admitted links only", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		var server *httptest.Server
		mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprintf(w, `<html><body><p>%s</p>
				<a href="%s/about">About</a>
				<a href="http://other.invalid/x">Reject</a>
				</body></html>`, longBio, server.URL)
		})
		mux.HandleFunc("/about", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprintf(w, `<html><body><p>%s</p></body></html>`, longBio)
		})
		server = httptest.NewServer(mux)
		defer server.Close()

		spider := NewSpider(server.Client(), WithDelay(0), WithMaxPages(10))

		var visited []string
		stats, err := spider.Crawl(context.Background(), server.URL, func(p *model.Page) error {
			visited = append(visited, p.URL)
			return nil
		})
		if err != nil {
			t.Fatalf("crawl failed: %v", err)
		}

		if stats.PagesProcessed != 2 {
			t.Errorf("expected 2 pages processed, got %d", stats.PagesProcessed)
		}
		if len(visited) != 2 {
			t.Fatalf("expected 2 visits, got %d: %v", len(visited), visited)
		}
		if !strings.HasSuffix(visited[1], "/about") {
			t.Errorf("expected second visit to be /about, got %q", visited[1])
		}
	})

	t.Run("failed page is skipped and not counted", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		var server *httptest.Server
		mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprintf(w, `<html><body><p>%s</p>
				<a href="%s/broken">Broken</a>
				<a href="%s/ok">OK</a>
				</body></html>`, longBio, server.URL, server.URL)
		})
		mux.HandleFunc("/broken", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		mux.HandleFunc("/ok", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprintf(w, `<html><body><p>%s</p></body></html>`, longBio)
		})
		server = httptest.NewServer(mux)
		defer server.Close()

		spider := NewSpider(server.Client(), WithDelay(0), WithMaxPages(10))

		stats, err := spider.Crawl(context.Background(), server.URL, func(*model.Page) error {
			return nil
		})
		if err != nil {
			t.Fatalf("crawl failed: %v", err)
		}

		if stats.PagesProcessed != 2 {
			t.Errorf("expected 2 pages processed, got %d", stats.PagesProcessed)
		}
		if stats.PagesFailed != 1 {
			t.Errorf("expected 1 failed page, got %d", stats.PagesFailed)
		}
		// The broken URL was attempted exactly once.
		if stats.URLsVisited != 3 {
			t.Errorf("expected 3 URLs visited, got %d", stats.URLsVisited)
		}
	})

	t.Run("page budget of zero performs no fetches", func(t *testing.T) {
		t.Parallel()

		fetched := false
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fetched = true
		}))
		defer server.Close()

		spider := NewSpider(server.Client(), WithDelay(0), WithMaxPages(0))

		stats, err := spider.Crawl(context.Background(), server.URL, func(*model.Page) error {
			return nil
		})
		if err != nil {
			t.Fatalf("crawl failed: %v", err)
		}

		if fetched {
			t.Error("expected no fetches with a zero page budget")
		}
		if stats.PagesProcessed != 0 {
			t.Errorf("expected 0 pages processed, got %d", stats.PagesProcessed)
		}
	})

	t.Run("respects the page budget", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		var server *httptest.Server
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			// Every page links to three more, so the frontier never drains.
			fmt.Fprintf(w, `<html><body><p>%s</p>
				<a href="%s%sa/">A</a><a href="%s%sb/">B</a><a href="%s%sc/">C</a>
				</body></html>`, longBio,
				server.URL, r.URL.Path, server.URL, r.URL.Path, server.URL, r.URL.Path)
		})
		server = httptest.NewServer(mux)
		defer server.Close()

		spider := NewSpider(server.Client(), WithDelay(0), WithMaxPages(5))

		stats, err := spider.Crawl(context.Background(), server.URL, func(*model.Page) error {
			return nil
		})
		if err != nil {
			t.Fatalf("crawl failed: %v", err)
		}

		if stats.PagesProcessed != 5 {
			t.Errorf("expected exactly 5 pages processed, got %d", stats.PagesProcessed)
		}
	})

	t.Run("cancellation stops the crawl", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		var server *httptest.Server
		mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprintf(w, `<html><body><p>%s</p><a href="%s/next">Next</a></body></html>`,
				longBio, server.URL)
		})
		mux.HandleFunc("/next", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprintf(w, `<html><body><p>%s</p></body></html>`, longBio)
		})
		server = httptest.NewServer(mux)
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		spider := NewSpider(server.Client(), WithDelay(50*time.Millisecond), WithMaxPages(10))

		_, err := spider.Crawl(ctx, server.URL, func(*model.Page) error {
			cancel()
			return nil
		})
		if err == nil {
			t.Fatal("expected a cancellation error")
		}
		if err != context.Canceled {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("ignore patterns skip matching paths", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		var server *httptest.Server
		var adminFetched bool
		mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprintf(w, `<html><body><p>%s</p>
				<a href="%s/admin/panel">Admin</a>
				<a href="%s/people">People</a>
				</body></html>`, longBio, server.URL, server.URL)
		})
		mux.HandleFunc("/admin/", func(w http.ResponseWriter, _ *http.Request) {
			adminFetched = true
		})
		mux.HandleFunc("/people", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprintf(w, `<html><body><p>%s</p></body></html>`, longBio)
		})
		server = httptest.NewServer(mux)
		defer server.Close()

		spider := NewSpider(server.Client(),
			WithDelay(0),
			WithMaxPages(10),
			WithIgnorePatterns([]string{"/admin/*"}),
		)

		if _, err := spider.Crawl(context.Background(), server.URL, func(*model.Page) error {
			return nil
		}); err != nil {
			t.Fatalf("crawl failed: %v", err)
		}

		if adminFetched {
			t.Error("expected /admin/* to be skipped")
		}
	})
}
