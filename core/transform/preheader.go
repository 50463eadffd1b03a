package transform

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/gaurav-prasanna/mailscrub/core"
	"github.com/gaurav-prasanna/mailscrub/core/dom"
)

const (
	// paddingUnit is a combining grapheme joiner, a zero-width non-joiner
	// and a non-breaking space: invisible, but it fills the inbox preview.
	paddingUnit  = "&#847;&zwnj;&nbsp;"
	paddingCount = 40
	// paddingMark is how the parser decodes &#847;.
	paddingMark = "\u034f"
)

var (
	previewSel = cascadia.MustCompile(".mcnPreviewText")
	hiddenSel  = cascadia.MustCompile("span, div")
)

// FixPreheader pads the hidden preview text so inbox lists do not pull body
// copy into the preview line.
type FixPreheader struct{}

// Name implements core.Transform.
func (FixPreheader) Name() string { return "fix-preheader" }

// Apply implements core.Transform.
func (t FixPreheader) Apply(doc *dom.Document, _ core.Options) core.Stat {
	stat := core.NewStat(t.Name())

	n := findPreheader(doc)
	if n == nil {
		stat.Note = "not found"
		return stat.Add("modified", 0)
	}
	if padded(n) {
		stat.Note = "already padded"
		return stat.Add("modified", 0)
	}

	n.AppendChild(dom.Raw(strings.Repeat(paddingUnit, paddingCount)))
	return stat.Add("modified", 1)
}

func findPreheader(doc *dom.Document) *html.Node {
	if nodes := doc.Snapshot(previewSel); len(nodes) > 0 {
		return nodes[0]
	}
	for _, n := range doc.Snapshot(hiddenSel) {
		style, _ := dom.Attr(n, "style")
		if !strings.Contains(style, "display:none") && !strings.Contains(style, "display: none") {
			continue
		}
		if strings.TrimSpace(dom.Text(n)) != "" {
			return n
		}
	}
	return nil
}

func padded(n *html.Node) bool {
	text := dom.Text(n)
	return strings.Contains(text, paddingMark) || strings.Contains(text, "&#847;")
}
