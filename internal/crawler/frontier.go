package crawler

import (
	"fmt"
	"net/url"
	"strings"
)

// Frontier tracks crawl progress for a single site: the set of URLs
// already visited and the FIFO queue of URLs waiting to be visited.
//
// Invariant: a URL is in at most one of {visited, pending} at any time,
// and once visited it is never enqueued again. Enqueue enforces this at
// insertion; Dequeue moves nothing into the visited set by itself, the
// caller marks a URL visited when it actually processes it.
//
// The Frontier is not safe for concurrent use. The crawl is strictly
// sequential, so a mutex would guard nothing.
type Frontier struct {
	// base is the crawl's fixed base URL. Admission requires an exact
	// host match against it.
	base *url.URL

	// visited holds normalized URLs already handed out for processing.
	visited map[string]bool

	// pending is the FIFO queue of normalized URLs awaiting a visit.
	// Discovery order is visit order; there is no prioritization.
	pending []string

	// queued mirrors pending for O(1) membership checks.
	queued map[string]bool
}

// NewFrontier creates a Frontier for the given base URL.
// The base URL itself is not enqueued; callers seed the queue explicitly.
func NewFrontier(baseURL string) (*Frontier, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("base URL %q has no host", baseURL)
	}

	return &Frontier{
		base:    base,
		visited: make(map[string]bool),
		pending: make([]string, 0),
		queued:  make(map[string]bool),
	}, nil
}

// Admit reports whether a candidate URL may enter the frontier.
// A URL is admitted only when its host matches the base URL's host
// exactly and its scheme is http or https. Malformed URLs are rejected,
// never a panic or an error.
func (f *Frontier) Admit(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false
	}

	return strings.EqualFold(u.Host, f.base.Host)
}

// Enqueue adds a URL to the pending queue. It is a no-op when the URL
// was already visited, is already pending, or fails admission.
func (f *Frontier) Enqueue(rawURL string) {
	if !f.Admit(rawURL) {
		return
	}

	key := normalizeURL(rawURL)
	if f.visited[key] || f.queued[key] {
		return
	}

	f.pending = append(f.pending, key)
	f.queued[key] = true
}

// Dequeue removes and returns the head of the pending queue in FIFO
// order. The second return value is false when the queue is empty.
func (f *Frontier) Dequeue() (string, bool) {
	if len(f.pending) == 0 {
		return "", false
	}

	head := f.pending[0]
	f.pending = f.pending[1:]
	delete(f.queued, head)
	return head, true
}

// MarkVisited records a URL as visited. Once marked, the URL can never
// re-enter the pending queue.
func (f *Frontier) MarkVisited(rawURL string) {
	f.visited[normalizeURL(rawURL)] = true
}

// IsVisited reports whether a URL has already been visited.
func (f *Frontier) IsVisited(rawURL string) bool {
	return f.visited[normalizeURL(rawURL)]
}

// PendingLen returns the number of URLs awaiting a visit.
func (f *Frontier) PendingLen() int {
	return len(f.pending)
}

// VisitedLen returns the number of URLs already visited.
func (f *Frontier) VisitedLen() int {
	return len(f.visited)
}

// normalizeURL normalizes a URL for deduplication.
//
// Design decision: We normalize because the same page can have several
// URL spellings. The fragment never changes content, scheme and host are
// case-insensitive, and an empty path is equivalent to "/".
func normalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String()
}
