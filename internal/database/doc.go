// Package database provides SQLite-based storage for profilescan.
//
// This package implements the CrawlDB, which stores:
//   - Page records with fetch metadata per crawled URL
//   - Profiles extracted from crawled pages
//   - Crawl reports for historical analysis
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
//
// The database is optional. The canonical crawl output is the JSON
// snapshot file; the database adds queryable history across runs.
package database
