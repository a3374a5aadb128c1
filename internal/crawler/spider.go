package crawler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/profilescan/profilescan/internal/model"
)

// VisitFunc is called for every successfully processed page, in visit
// order. Returning an error aborts the crawl; page-level problems should
// be handled inside the callback and reported as nil.
type VisitFunc func(page *model.Page) error

// Spider crawls a single website breadth-first.
//
// Design decision: The spider does not accumulate pages itself; it hands
// each page to a VisitFunc as soon as it is processed. Profile extraction
// and periodic snapshot saves happen per page, so buffering the whole
// crawl before acting on it would defeat incremental persistence.
type Spider struct {
	// client is the HTTP client used for all fetches. Its timeout is
	// the per-request timeout; the spider adds none of its own.
	client *http.Client

	// maxPages limits the number of successfully processed pages.
	// Failed fetches do not count against the budget.
	maxPages int

	// delay is the politeness delay slept before every fetch attempt.
	delay time.Duration

	// userAgent is the User-Agent header sent with every request.
	userAgent string

	// maxBodySize limits how much of a response body is read.
	maxBodySize int64

	// headers are extra request headers, typically from site config.
	headers map[string]string

	// ignorePatterns are URL path globs to skip during crawling.
	ignorePatterns []string

	// logger for structured logging.
	logger *slog.Logger
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithMaxPages sets the maximum number of pages to process.
func WithMaxPages(n int) SpiderOption {
	return func(s *Spider) {
		s.maxPages = n
	}
}

// WithDelay sets the politeness delay between fetch attempts.
func WithDelay(d time.Duration) SpiderOption {
	return func(s *Spider) {
		s.delay = d
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) SpiderOption {
	return func(s *Spider) {
		s.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size to read.
func WithMaxBodySize(size int64) SpiderOption {
	return func(s *Spider) {
		s.maxBodySize = size
	}
}

// WithHeaders sets extra request headers sent with every fetch.
func WithHeaders(headers map[string]string) SpiderOption {
	return func(s *Spider) {
		s.headers = headers
	}
}

// WithIgnorePatterns sets URL path patterns to skip during crawling.
// Patterns use glob syntax (e.g. "/admin/*", "*.pdf").
func WithIgnorePatterns(patterns []string) SpiderOption {
	return func(s *Spider) {
		s.ignorePatterns = patterns
	}
}

// WithLogger sets a custom logger for the spider.
func WithLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		s.logger = logger
	}
}

// NewSpider creates a Spider with the given HTTP client.
//
// Design decision: We require an external client because timeout and
// transport configuration belong to the caller, and tests can inject an
// httptest client.
func NewSpider(client *http.Client, opts ...SpiderOption) *Spider {
	s := &Spider{
		client:      client,
		maxPages:    50,
		delay:       1 * time.Second,
		userAgent:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
		maxBodySize: 5 * 1024 * 1024, // 5MB
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Stats summarizes a finished crawl.
type Stats struct {
	// PagesProcessed is the number of successfully processed pages.
	PagesProcessed int

	// PagesFailed is the number of fetch or parse failures.
	PagesFailed int

	// URLsVisited is the number of unique URLs dequeued and attempted.
	URLsVisited int
}

// Crawl walks the site breadth-first starting from startURL, invoking
// visit for every successfully processed page.
//
// The loop terminates when the pending queue is empty, the page budget
// is exhausted, or the context is cancelled. Cancellation returns
// ctx.Err() together with the statistics gathered so far; everything
// already handed to visit stands.
//
// A failed page is logged, marked visited, and contributes nothing.
// The crawl never retries and never aborts because of a single page.
func (s *Spider) Crawl(ctx context.Context, startURL string, visit VisitFunc) (Stats, error) {
	var stats Stats

	frontier, err := NewFrontier(startURL)
	if err != nil {
		return stats, err
	}
	frontier.Enqueue(startURL)

	for stats.PagesProcessed < s.maxPages {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		current, ok := frontier.Dequeue()
		if !ok {
			break
		}

		// Duplicates are excluded at enqueue time, but a URL dequeued
		// earlier in this iteration's batch may have been visited since.
		// Skipped duplicates neither sleep nor count.
		if frontier.IsVisited(current) {
			continue
		}
		frontier.MarkVisited(current)
		stats.URLsVisited++

		// Politeness delay before every real fetch attempt.
		if s.delay > 0 {
			select {
			case <-ctx.Done():
				return stats, ctx.Err()
			case <-time.After(s.delay):
			}
		}

		s.logger.Debug("fetching page", "url", current)

		page, err := s.fetchPage(ctx, current)
		if err != nil {
			s.logger.Warn("page skipped", "url", current, "error", err)
			stats.PagesFailed++
			continue
		}

		for _, link := range page.Links {
			if s.shouldCrawl(link) {
				frontier.Enqueue(link)
			}
		}

		if err := visit(page); err != nil {
			return stats, err
		}
		stats.PagesProcessed++

		s.logger.Debug("page processed",
			"url", current,
			"processed", stats.PagesProcessed,
			"pending", frontier.PendingLen(),
		)
	}

	return stats, nil
}

// fetchPage fetches one URL and turns the response into a Page with
// cleaned text and resolved links. Any transport error, non-2xx status,
// or HTML parse failure is returned as an error; there is no partial
// credit for a page.
func (s *Spider) fetchPage(ctx context.Context, pageURL string) (*model.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBodySize))
	if err != nil {
		return nil, err
	}

	page := &model.Page{
		URL:         pageURL,
		StatusCode:  resp.StatusCode,
		ContentType: contentType(resp),
	}
	page.ComputeHash(body)

	// Non-HTML responses succeed but contribute no text and no links.
	if !page.IsHTML() {
		return page, nil
	}

	parser, err := NewParser(pageURL)
	if err != nil {
		return nil, err
	}

	result, err := parser.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}

	page.Title = result.Title
	page.Text = CleanText(result.Text)
	page.Links = result.Links
	page.TruncateText()

	return page, nil
}

// shouldCrawl checks a link against the ignore patterns.
func (s *Spider) shouldCrawl(link string) bool {
	if len(s.ignorePatterns) == 0 {
		return true
	}

	u, err := url.Parse(link)
	if err != nil {
		return false
	}

	path := u.Path
	if path == "" {
		path = "/"
	}

	for _, pattern := range s.ignorePatterns {
		if matchPattern(pattern, path) {
			return false
		}
	}
	return true
}

// matchPattern checks if a path matches a glob pattern.
// Patterns can use * for any sequence of non-separator characters and
// ? for a single character.
//
// Examples:
//   - "/admin/*" matches "/admin/dashboard", "/admin/users"
//   - "*.pdf" matches "/docs/file.pdf"
func matchPattern(pattern, path string) bool {
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if strings.HasPrefix(path, prefix+"/") || path == prefix {
			return true
		}
	}

	if strings.HasPrefix(pattern, "*.") {
		if strings.HasSuffix(path, strings.TrimPrefix(pattern, "*")) {
			return true
		}
	}

	matched, err := filepath.Match(pattern, path)
	if err != nil {
		return false
	}
	if matched {
		return true
	}

	if strings.Contains(pattern, "*") && !strings.Contains(pattern, "/") {
		matched, err := filepath.Match(pattern, filepath.Base(path))
		if err == nil && matched {
			return true
		}
	}

	return false
}

// contentType extracts the bare MIME type from a response, dropping any
// charset suffix.
func contentType(resp *http.Response) string {
	ct := resp.Header.Get("Content-Type")
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	return strings.TrimSpace(ct)
}
