package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/profilescan/profilescan/internal/crawler"
	"github.com/profilescan/profilescan/internal/database"
	"github.com/profilescan/profilescan/internal/extract"
	"github.com/profilescan/profilescan/internal/model"
	"github.com/profilescan/profilescan/internal/store"
)

// DefaultSaveEvery is the default periodic snapshot cadence in
// successfully processed pages.
const DefaultSaveEvery = 10

// CrawlExtractStep crawls the site and extracts profiles from each page.
// This is the core step: it drives the spider, sends cleaned page text to
// the extractor, appends results to the report's directory, and saves a
// snapshot every N processed pages so an interrupted run keeps its data.
//
// Design decision: Crawling and extraction share one step rather than two
// because extraction happens per page during the crawl, not as a batch
// afterwards. Splitting them would force the report to carry raw page
// text between steps for no benefit.
type CrawlExtractStep struct {
	// spider drives the breadth-first crawl.
	spider *crawler.Spider

	// extractor turns page text into profile records.
	extractor extract.Extractor

	// snapshot receives the periodic saves. May be nil, in which case
	// no periodic saves happen (the final SnapshotStep still runs).
	snapshot *store.Snapshot

	// saveEvery is the periodic save cadence in processed pages.
	saveEvery int

	// logger for structured logging.
	logger *slog.Logger
}

// CrawlExtractOption configures a CrawlExtractStep.
type CrawlExtractOption func(*CrawlExtractStep)

// WithSaveEvery sets the periodic snapshot cadence.
func WithSaveEvery(n int) CrawlExtractOption {
	return func(s *CrawlExtractStep) {
		if n > 0 {
			s.saveEvery = n
		}
	}
}

// WithCrawlLogger sets a custom logger for the crawl step.
func WithCrawlLogger(logger *slog.Logger) CrawlExtractOption {
	return func(s *CrawlExtractStep) {
		s.logger = logger
	}
}

// NewCrawlExtractStep creates the crawl-and-extract step.
// The snapshot may be nil to disable periodic saves.
func NewCrawlExtractStep(spider *crawler.Spider, extractor extract.Extractor, snapshot *store.Snapshot, opts ...CrawlExtractOption) *CrawlExtractStep {
	s := &CrawlExtractStep{
		spider:    spider,
		extractor: extractor,
		snapshot:  snapshot,
		saveEvery: DefaultSaveEvery,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *CrawlExtractStep) Name() string {
	return "crawl_extract"
}

// Do executes the crawl. Per-page failures (fetch errors, extraction
// errors) are logged and skipped; the crawl continues. Cancellation is
// treated as a graceful interruption, not a step failure, so the final
// snapshot save still runs.
func (s *CrawlExtractStep) Do(ctx context.Context, report *model.CrawlReport) error {
	visit := func(page *model.Page) error {
		report.AddPage(page)

		profiles, err := s.extractor.Extract(ctx, page.Text)
		if err != nil {
			s.logger.Warn("profile extraction failed",
				"url", page.URL,
				"error", err,
			)
		} else if len(profiles) > 0 {
			report.Directory.Append(profiles)
			s.logger.Info("profiles extracted",
				"url", page.URL,
				"count", len(profiles),
				"total", report.Directory.Len(),
			)
		}

		if s.snapshot != nil && report.PagesProcessed%s.saveEvery == 0 {
			if err := s.snapshot.Save(report.Directory); err != nil {
				s.logger.Warn("periodic snapshot save failed",
					"path", s.snapshot.Path(),
					"error", err,
				)
			} else {
				s.logger.Debug("snapshot saved",
					"path", s.snapshot.Path(),
					"profiles", report.Directory.Len(),
				)
			}
		}

		return nil
	}

	stats, err := s.spider.Crawl(ctx, report.BaseURL, visit)
	report.PagesFailed = stats.PagesFailed

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			report.Interrupted = true
			s.logger.Warn("crawl interrupted",
				"site", report.BaseURL,
				"pages_processed", report.PagesProcessed,
			)
			return nil
		}
		return fmt.Errorf("crawl failed: %w", err)
	}

	s.logger.Info("crawl finished",
		"site", report.BaseURL,
		"pages_processed", stats.PagesProcessed,
		"pages_failed", stats.PagesFailed,
		"profiles", report.Directory.Len(),
	)

	return nil
}

// SnapshotStep persists the final profile directory.
// It runs unconditionally at the end of the pipeline, so even a crawl
// that processed zero pages leaves a well-formed snapshot file behind.
type SnapshotStep struct {
	// snapshot is the persistence target.
	snapshot *store.Snapshot

	// logger for structured logging.
	logger *slog.Logger
}

// NewSnapshotStep creates the final snapshot save step.
func NewSnapshotStep(snapshot *store.Snapshot, logger *slog.Logger) *SnapshotStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotStep{
		snapshot: snapshot,
		logger:   logger,
	}
}

// Name returns the step name.
func (s *SnapshotStep) Name() string {
	return "snapshot_save"
}

// Do writes the directory to disk.
func (s *SnapshotStep) Do(_ context.Context, report *model.CrawlReport) error {
	if err := s.snapshot.Save(report.Directory); err != nil {
		return fmt.Errorf("final snapshot save failed: %w", err)
	}

	s.logger.Info("final snapshot saved",
		"path", s.snapshot.Path(),
		"profiles", report.Directory.Len(),
	)

	return nil
}

// HistoryStep records the run in the crawl history database.
// The database is optional infrastructure; the snapshot file remains the
// canonical output. This step stores page records, extracted profiles,
// and the full report for later querying.
type HistoryStep struct {
	// db is the crawl history database.
	db *database.CrawlDB

	// logger for structured logging.
	logger *slog.Logger
}

// NewHistoryStep creates the history recording step.
func NewHistoryStep(db *database.CrawlDB, logger *slog.Logger) *HistoryStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryStep{
		db:     db,
		logger: logger,
	}
}

// Name returns the step name.
func (s *HistoryStep) Name() string {
	return "history_save"
}

// Do stores the run in the database.
func (s *HistoryStep) Do(ctx context.Context, report *model.CrawlReport) error {
	for _, page := range report.Pages {
		record := &database.PageRecord{
			URL:         page.URL,
			Site:        report.BaseURL,
			StatusCode:  page.StatusCode,
			ContentType: page.ContentType,
			Title:       page.Title,
			TextHash:    page.Hash,
		}
		if _, err := s.db.InsertPageRecord(ctx, record); err != nil {
			return fmt.Errorf("failed to record page: %w", err)
		}
	}

	if err := s.db.InsertProfiles(ctx, report.BaseURL, report.Directory.Profiles); err != nil {
		return fmt.Errorf("failed to record profiles: %w", err)
	}

	if err := s.db.SaveCrawlReport(ctx, report); err != nil {
		return fmt.Errorf("failed to record crawl report: %w", err)
	}

	s.logger.Info("crawl history recorded",
		"site", report.BaseURL,
		"pages", len(report.Pages),
		"profiles", report.Directory.Len(),
	)

	return nil
}
