// Package config provides configuration structures and utilities for
// profilescan. It defines the crawl settings, extraction credentials,
// output locations, and the optional per-site configuration file.
package config
