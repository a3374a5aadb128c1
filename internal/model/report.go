package model

import "time"

// CrawlReport accumulates everything a single crawl run produces.
// It travels through the pipeline, with each step adding its results.
type CrawlReport struct {
	// BaseURL is the crawl's starting URL. Admission is restricted to
	// this URL's host.
	BaseURL string `json:"base_url"`

	// StartedAt is when the crawl began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the crawl completed or was interrupted.
	FinishedAt time.Time `json:"finished_at,omitempty"`

	// PagesProcessed is the count of successfully fetched and processed
	// pages. Failed fetches do not count.
	PagesProcessed int `json:"pages_processed"`

	// PagesFailed is the count of fetch or parse failures. Failed pages
	// contribute nothing but are still marked visited.
	PagesFailed int `json:"pages_failed"`

	// Pages holds the successfully processed pages in visit order.
	Pages []*Page `json:"pages,omitempty"`

	// Directory is the accumulated profile list for the run.
	Directory *Directory `json:"directory"`

	// PerformedSteps lists the pipeline steps that ran, in order.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Interrupted is true when the run was cut short by cancellation.
	// The last periodic snapshot save stands; no data is lost beyond
	// pages not yet visited.
	Interrupted bool `json:"interrupted,omitempty"`

	// Error holds the first critical error a pipeline step returned.
	// Excluded from JSON because error values don't serialize usefully.
	Error error `json:"-"`

	// ErrorMessage is the string form of Error for serialized reports.
	ErrorMessage string `json:"error,omitempty"`
}

// NewCrawlReport creates an empty report for the given base URL.
func NewCrawlReport(baseURL string) *CrawlReport {
	return &CrawlReport{
		BaseURL:   baseURL,
		StartedAt: time.Now(),
		Pages:     make([]*Page, 0),
		Directory: NewDirectory(),
	}
}

// AddPage records a successfully processed page.
func (r *CrawlReport) AddPage(page *Page) {
	r.Pages = append(r.Pages, page)
	r.PagesProcessed++
}

// Duration returns the elapsed run time. If the run has not finished,
// it measures up to now.
func (r *CrawlReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
