package crawler

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// minLineLength is the minimum trimmed length a line of visible text
// must exceed to survive cleaning. Shorter lines are navigation labels,
// button captions, and similar fragments that carry no biographical
// content worth sending to extraction.
const minLineLength = 30

// Parser extracts visible text and links from HTML content.
//
// Design decision: We use golang.org/x/net/html rather than regex
// because:
//  1. It correctly handles the malformed HTML common on the web
//  2. Script/style subtrees can be skipped structurally instead of
//     being pattern-matched out
//  3. Standard library extension, well-maintained
type Parser struct {
	// baseURL is the URL of the page being parsed, used for resolving
	// relative anchor hrefs.
	baseURL *url.URL
}

// ParseResult contains everything extracted from one HTML page.
type ParseResult struct {
	// Title is the page title from the <title> tag.
	Title string

	// Text is the page's visible text joined with single spaces, with
	// script and style content removed. Raw, not yet cleaned.
	Text string

	// Links contains all anchor hrefs resolved to absolute URLs against
	// the page URL. Non-navigable schemes (javascript:, mailto:, tel:,
	// data:) and bare fragments are excluded.
	Links []string
}

// NewParser creates a parser for a page at the given URL.
func NewParser(pageURL string) (*Parser, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}
	return &Parser{baseURL: u}, nil
}

// Parse parses HTML content and extracts the title, visible text, and
// anchor links in one DOM pass.
func (p *Parser) Parse(content io.Reader) (*ParseResult, error) {
	doc, err := html.Parse(content)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{Links: make([]string, 0)}

	var text strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style":
				// Drop the whole subtree: nothing inside is visible text.
				return
			case "title":
				if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					result.Title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "a":
				if href := getAttr(n, "href"); href != "" {
					if resolved := p.resolveURL(href); resolved != "" {
						result.Links = append(result.Links, resolved)
					}
				}
			}
		}

		if n.Type == html.TextNode {
			trimmed := strings.TrimSpace(n.Data)
			if trimmed != "" {
				text.WriteString(trimmed)
				text.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)

	result.Text = strings.TrimSpace(text.String())
	return result, nil
}

// CleanText prepares raw visible text for extraction: NFC-normalize,
// collapse whitespace runs within each line to single spaces, drop
// lines whose trimmed length does not exceed minLineLength, and rejoin
// the survivors with newlines.
//
// The function is idempotent: CleanText(CleanText(s)) == CleanText(s).
func CleanText(text string) string {
	text = norm.NFC.String(text)

	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if len(line) > minLineLength {
			kept = append(kept, line)
		}
	}

	return strings.Join(kept, "\n")
}

// resolveURL resolves an anchor href against the page URL.
// Returns an empty string for hrefs that are not navigable page links.
func (p *Parser) resolveURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" ||
		strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") ||
		href == "#" {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}

	return p.baseURL.ResolveReference(u).String()
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
