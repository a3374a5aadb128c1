// Package extract turns cleaned page text into profile records by
// delegating to a chat-completion model.
//
// The model is instructed to answer with strict JSON in the shape
// {"profiles": [{"name": ..., "about": ...}]}. Anything else (invalid
// JSON, a different shape, a transport error) is surfaced to the caller
// as an error so the crawl loop can decide to log it and move on. The
// package never panics and never retries.
package extract
