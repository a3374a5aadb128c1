package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Page represents a crawled web page with the content the rest of the
// system needs: the cleaned visible text for extraction and the links
// discovered for the frontier.
//
// Design decision: We keep the cleaned text rather than the raw HTML
// because extraction operates on text only. The hash of the raw body is
// retained for change detection in the crawl history database.
type Page struct {
	// URL is the full URL of the page.
	URL string `json:"url"`

	// StatusCode is the HTTP response status code.
	StatusCode int `json:"status_code"`

	// ContentType is the MIME type from the Content-Type header.
	ContentType string `json:"content_type"`

	// Title is the page title from the <title> tag, empty when absent.
	Title string `json:"title,omitempty"`

	// Text is the cleaned visible text of the page: script and style
	// subtrees removed, whitespace collapsed, short lines dropped.
	// This is the sole input handed to profile extraction.
	Text string `json:"text,omitempty"`

	// Links contains the absolute URLs of every anchor on the page,
	// resolved against the page URL. Admission filtering happens later
	// in the frontier, not here.
	Links []string `json:"links,omitempty"`

	// Hash is the SHA-256 hex digest of the raw response body.
	Hash string `json:"hash,omitempty"`
}

// MaxTextSize is the maximum size of the cleaned text in bytes.
// Larger texts are truncated to keep extraction requests bounded.
const MaxTextSize = 512 * 1024 // 512 KB

// ComputeHash calculates and sets the SHA-256 hash of the raw body.
func (p *Page) ComputeHash(raw []byte) {
	if len(raw) == 0 {
		p.Hash = ""
		return
	}
	sum := sha256.Sum256(raw)
	p.Hash = hex.EncodeToString(sum[:])
}

// TruncateText enforces MaxTextSize on the cleaned text.
// Call this after setting Text.
func (p *Page) TruncateText() {
	if len(p.Text) > MaxTextSize {
		p.Text = p.Text[:MaxTextSize]
	}
}

// IsHTML reports whether the content type indicates an HTML document.
func (p *Page) IsHTML() bool {
	return p.ContentType == "text/html" ||
		p.ContentType == "application/xhtml+xml" ||
		strings.HasPrefix(p.ContentType, "text/html")
}
