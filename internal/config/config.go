package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These follow the behavior of the original profile scraper where
// applicable and common crawling courtesy otherwise.
const (
	// DefaultTimeout bounds each HTTP request. Ten seconds is generous
	// for a single page on a healthy site; anything slower is treated
	// as a failed page rather than stalling the whole crawl.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxPages is the maximum number of successfully processed
	// pages per run. This bounds both crawl time and extraction spend:
	// every processed page costs one model call.
	DefaultMaxPages = 50

	// DefaultCrawlDelay is the politeness delay before each fetch.
	// One second keeps the crawl well under the request rates that
	// trigger throttling on small sites.
	DefaultCrawlDelay = 1 * time.Second

	// DefaultSaveEvery is how many successfully processed pages pass
	// between periodic snapshot saves. A final save always happens at
	// termination regardless of this cadence.
	DefaultSaveEvery = 10

	// DefaultUserAgent matches a mainstream browser. Sites that serve
	// reduced content to unknown agents get the same treatment as they
	// give ordinary visitors.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	// DefaultMaxBodySize limits the response body size to read.
	// 5MB is far beyond any sensible HTML page while keeping memory
	// bounded on misbehaving responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// AppName is the application name used for XDG directory paths.
	AppName = "profilescan"

	// APIKeyEnvVar is the environment variable the extraction API key
	// is read from. The key never appears on the command line.
	APIKeyEnvVar = "OPENAI_API_KEY"
)

// Config holds all options for a profilescan run.
// It is populated from CLI flags and passed through the application via
// dependency injection; there is no ambient global configuration.
//
// Design decision: A single flat struct instead of nested sub-structs.
// The option count is manageable, and nesting would add indirection
// without making anything clearer.
type Config struct {
	// Targets is the list of base URLs to crawl. Each target is crawled
	// independently; admission is scoped to each target's host.
	Targets []string

	// APIKey is the extraction model API credential, read from the
	// environment. Required unless extraction is disabled.
	APIKey string

	// Model is the chat model identifier used for extraction.
	// Empty means the extractor's default.
	Model string

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// MaxPages is the per-site budget of successfully processed pages.
	// Zero is valid and means "crawl nothing, still write a snapshot".
	MaxPages int

	// CrawlDelay is the politeness delay before each fetch attempt.
	CrawlDelay time.Duration

	// SaveEvery is the periodic snapshot cadence in processed pages.
	SaveEvery int

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// OutputDir is where the profile snapshot file is written.
	// Defaults to the XDG data directory for the application.
	OutputDir string

	// DBDir is the directory for the crawl history database.
	// When empty, history is not recorded.
	DBDir string

	// ConfigFilePath is the path to the per-site configuration file.
	// If empty, the tool searches for .profilescan in the current
	// directory and then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds per-site overrides loaded from the config file.
	SiteConfigs *File

	// Concurrency is the number of targets crawled in parallel when
	// several base URLs are given. Each individual site crawl remains
	// strictly sequential.
	Concurrency int

	// MarkdownReport switches the final report from JSON to Markdown.
	// Mutually exclusive with SummaryReport.
	MarkdownReport bool

	// SummaryReport switches the final report to a short human summary.
	// Mutually exclusive with MarkdownReport.
	SummaryReport bool

	// ReportFile, when set, sends the final report to this file instead
	// of standard output. Directories are created as needed.
	ReportFile string

	// Verbose enables debug-level log output.
	Verbose bool
}

// NewConfig creates a Config with default values.
//
// Design decision: A constructor rather than zero values because most
// defaults are non-zero, and the constructor doubles as documentation
// of what they are.
func NewConfig() *Config {
	return &Config{
		Timeout:     DefaultTimeout,
		MaxPages:    DefaultMaxPages,
		CrawlDelay:  DefaultCrawlDelay,
		SaveEvery:   DefaultSaveEvery,
		UserAgent:   DefaultUserAgent,
		MaxBodySize: DefaultMaxBodySize,
		OutputDir:   XDGDataDir(),
		Concurrency: 1,
	}
}

// XDGDataDir returns the XDG data directory for profilescan.
// On Linux: ~/.local/share/profilescan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for profilescan.
// On Linux: ~/.config/profilescan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns a sentinel error for
// the first problem found. Called once after flag parsing, before any
// network activity.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxPages < 0 {
		return ErrInvalidMaxPages
	}
	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}
	if c.SaveEvery <= 0 {
		return ErrInvalidSaveEvery
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.MarkdownReport && c.SummaryReport {
		return ErrConflictingReportFormats
	}
	return nil
}
