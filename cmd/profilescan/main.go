// Package main provides the entry point for the profilescan CLI.
//
// Profilescan crawls a website, extracts people profiles from page text
// using a chat-completion model, and writes the accumulated profile
// directory as JSON.
//
// Usage:
//
//	profilescan crawl <url>
//	profilescan crawl <url1> <url2> --batch 2
//
// See --help for all available options.
package main

// main is the entry point for profilescan.
func main() {
	Execute()
}
