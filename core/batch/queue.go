// Package batch cleans several inputs in one run: it deduplicates the input
// list and processes entries concurrently with a bounded number of workers.
package batch

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/gaurav-prasanna/mailscrub/core/fetch"
)

// Queue is an ordered input list with deduplication.
type Queue struct {
	items   []string
	visited map[string]bool
}

// NewQueue creates an empty Queue.
func NewQueue() *Queue {
	return &Queue{
		visited: make(map[string]bool),
	}
}

// Add enqueues an input if an equivalent one hasn't been seen before. It
// reports whether the input was added.
func (q *Queue) Add(input string) bool {
	key := Key(input)
	if q.visited[key] {
		return false
	}
	q.visited[key] = true
	q.items = append(q.items, input)
	return true
}

// Len returns the number of unique inputs.
func (q *Queue) Len() int {
	return len(q.items)
}

// All returns the inputs in the order they were first added.
func (q *Queue) All() []string {
	return q.items
}

// Key identifies an input for deduplication: URLs lose their fragment and
// trailing slash, file paths are cleaned and made absolute when possible.
func Key(input string) string {
	if fetch.IsURL(input) {
		return normalizeURL(input)
	}
	if abs, err := filepath.Abs(input); err == nil {
		return abs
	}
	return filepath.Clean(input)
}

func normalizeURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	parsed.Fragment = ""
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Scheme = strings.ToLower(parsed.Scheme)

	// Remove trailing slash (but keep root "/").
	if parsed.Path != "/" {
		parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	}

	return parsed.String()
}
