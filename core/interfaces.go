// Package core defines the pipeline interfaces for mailscrub.
// Each transform is a small, testable unit working on a shared Document.
package core

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/gaurav-prasanna/mailscrub/core/dom"
)

// DefaultWidth is the content width, in pixels, of Outlook wrapper tables.
const DefaultWidth = 660

// Options configures one pipeline run. It is read-only for transforms.
type Options struct {
	Width        int  `json:"width" yaml:"width"`
	MsoWrappers  bool `json:"mso_wrappers" yaml:"mso_wrappers"`
	PreheaderFix bool `json:"preheader_fix" yaml:"preheader_fix"`
	CSSClean     bool `json:"css_clean" yaml:"css_clean"`
}

// DefaultOptions enables every optional transform.
func DefaultOptions() Options {
	return Options{
		Width:        DefaultWidth,
		MsoWrappers:  true,
		PreheaderFix: true,
		CSSClean:     true,
	}
}

// Count is one named counter of a Stat.
type Count struct {
	Key   string `json:"key"`
	Value int    `json:"value"`
}

// Stat is what a transform reports after running. Counters keep the order
// in which the transform added them.
type Stat struct {
	Name   string  `json:"name"`
	Counts []Count `json:"counts"`
	Note   string  `json:"note,omitempty"`
}

// NewStat creates an empty Stat for the named transform.
func NewStat(name string) Stat {
	return Stat{Name: name}
}

// Add appends a counter and returns the Stat for chaining.
func (s Stat) Add(key string, value int) Stat {
	s.Counts = append(s.Counts, Count{Key: key, Value: value})
	return s
}

// Get returns the named counter, or 0 if it was never set.
func (s Stat) Get(key string) int {
	for _, c := range s.Counts {
		if c.Key == key {
			return c.Value
		}
	}
	return 0
}

// String formats the counters as "key=value, key=value".
func (s Stat) String() string {
	parts := make([]string, 0, len(s.Counts)+1)
	for _, c := range s.Counts {
		parts = append(parts, fmt.Sprintf("%s=%d", c.Key, c.Value))
	}
	if s.Note != "" {
		parts = append(parts, "reason="+s.Note)
	}
	return strings.Join(parts, ", ")
}

// Fields converts the counters to zap fields for logging.
func (s Stat) Fields() []zap.Field {
	fields := make([]zap.Field, 0, len(s.Counts)+1)
	for _, c := range s.Counts {
		fields = append(fields, zap.Int(c.Key, c.Value))
	}
	if s.Note != "" {
		fields = append(fields, zap.String("note", s.Note))
	}
	return fields
}

// Transform mutates a Document in place and reports what it did. A
// transform that finds nothing to do returns zero counters, not an error.
type Transform interface {
	Name() string
	Apply(doc *dom.Document, opts Options) Stat
}

// Fetcher retrieves raw HTML from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// FetchResult holds the raw HTML and response metadata from a fetch.
type FetchResult struct {
	URL        string
	StatusCode int
	HTML       string
}

// Normalizer converts cleaned HTML into a plain-text alternative body.
type Normalizer interface {
	Normalize(html string) (string, error)
}
