// Package extract isolates the readable content of an email:
//  1. The subject from <title> and the hidden preheader text
//  2. The body with noise removed (styles, scripts, Outlook-only markup,
//     hidden elements), ready to be turned into a plain-text part
package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// noiseSelectors are elements that contribute nothing to the readable text.
var noiseSelectors = []string{
	"head", "script", "style", "noscript",
	"title", "meta", "link",
	".mcnPreviewText",
	"[style*='display:none']", "[style*='display: none']",
}

// Content is what a reader sees of an email.
type Content struct {
	Title     string
	Preheader string
	// Body is an HTML fragment.
	Body string
}

// HTMLExtractor pulls readable content out of a cleaned email.
type HTMLExtractor struct {
	policy *bluemonday.Policy
}

// New creates an HTMLExtractor. Body markup is reduced to user-content
// elements: presentation attributes, comments and conditional Outlook
// blocks do not reach the text converter.
func New() *HTMLExtractor {
	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(false)
	return &HTMLExtractor{policy: policy}
}

// Extract parses markup and returns its readable content.
func (e *HTMLExtractor) Extract(markup string) (*Content, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	c := &Content{
		Title:     strings.TrimSpace(doc.Find("title").First().Text()),
		Preheader: preheader(doc),
	}

	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}

	body := doc.Find("body").First()
	if body.Length() == 0 {
		return nil, fmt.Errorf("no body found in HTML")
	}
	raw, err := body.Html()
	if err != nil {
		return nil, fmt.Errorf("serializing content: %w", err)
	}
	c.Body = strings.TrimSpace(e.policy.Sanitize(raw))
	return c, nil
}

func preheader(doc *goquery.Document) string {
	sel := doc.Find(".mcnPreviewText").First()
	if sel.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		switch r {
		case '\u034f', '\u200c':
			return -1
		case '\u00a0':
			return ' '
		}
		return r
	}, sel.Text()))
}
