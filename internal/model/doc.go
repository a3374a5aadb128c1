// Package model defines the core data structures shared across profilescan.
// It contains the crawled page representation, extracted profiles, and the
// crawl report that accumulates a run's results.
package model
