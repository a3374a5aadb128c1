// Package log provides logging with automatic redaction of credentials,
// built on top of the standard slog package.
//
// This package extends slog to provide:
//   - Automatic redaction of credential values (API keys, auth headers)
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//
// The crawl runs with an extraction API key in the environment, and the
// per-site configuration can carry Authorization headers. The
// RedactHandler masks such values even in verbose mode, so debug logs
// can be shared without leaking credentials.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, true) // verbose=true
//
//	logger.Info("request sent",
//	    "api_key", "sk-abc123",  // Will be redacted
//	    "url", "https://example.com",
//	)
package log
