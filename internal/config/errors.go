package config

import "errors"

var (
	// ErrNoTarget is returned when no base URL was provided.
	ErrNoTarget = errors.New("no target URL specified")
	// ErrMissingAPIKey is returned when the extraction API key is not set.
	ErrMissingAPIKey = errors.New("extraction API key is not set (export " + APIKeyEnvVar + ")")
	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("request timeout must be positive")
	// ErrInvalidMaxPages is returned when the page budget is negative.
	ErrInvalidMaxPages = errors.New("max pages must not be negative")
	// ErrInvalidCrawlDelay is returned when the crawl delay is negative.
	ErrInvalidCrawlDelay = errors.New("crawl delay must not be negative")
	// ErrInvalidSaveEvery is returned when the snapshot cadence is not positive.
	ErrInvalidSaveEvery = errors.New("snapshot interval must be positive")
	// ErrInvalidMaxBodySize is returned when the body size limit is negative.
	ErrInvalidMaxBodySize = errors.New("max body size must not be negative")
	// ErrInvalidConcurrency is returned when the batch concurrency is not positive.
	ErrInvalidConcurrency = errors.New("concurrency must be positive")
	// ErrConflictingReportFormats is returned when more than one report format is requested.
	ErrConflictingReportFormats = errors.New("markdown and summary report formats are mutually exclusive")
	// ErrConfigNotFound is returned when an explicitly given config file does not exist.
	ErrConfigNotFound = errors.New("config file not found")
)
