// Package normalize implements the Normalizer interface.
// It turns a cleaned email into the plain-text part of a
// multipart/alternative message, written as Markdown.
package normalize

import (
	"fmt"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// Invisible characters used to pad preheaders, and runs of blank lines the
// table layout leaves behind.
var (
	invisible  = strings.NewReplacer("\u034f", "", "\u200c", "", "\u00a0", " ")
	blankLines = regexp.MustCompile(`\n{3,}`)
	trailing   = regexp.MustCompile(`(?m)[ \t]+$`)
)

// TextNormalizer converts HTML to Markdown using html-to-markdown.
type TextNormalizer struct{}

// New creates a TextNormalizer.
func New() *TextNormalizer {
	return &TextNormalizer{}
}

// Normalize converts a cleaned email into readable text.
func (n *TextNormalizer) Normalize(html string) (string, error) {
	markdown, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("converting HTML to markdown: %w", err)
	}
	text := invisible.Replace(markdown)
	text = trailing.ReplaceAllString(text, "")
	text = blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text) + "\n", nil
}
