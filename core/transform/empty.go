package transform

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/gaurav-prasanna/mailscrub/core"
	"github.com/gaurav-prasanna/mailscrub/core/dom"
)

var (
	columnSel  = cascadia.MustCompile("colgroup, col")
	divSel     = cascadia.MustCompile("div")
	visibleSel = cascadia.MustCompile("img, input, hr, br")
)

// RemoveEmptyTags removes <colgroup>/<col> and divs without content.
type RemoveEmptyTags struct{}

// Name implements core.Transform.
func (RemoveEmptyTags) Name() string { return "remove-empty-tags" }

// Apply implements core.Transform.
func (t RemoveEmptyTags) Apply(doc *dom.Document, _ core.Options) core.Stat {
	removed := 0
	for _, n := range doc.Snapshot(columnSel) {
		if doc.Attached(n) {
			dom.Remove(n)
			removed++
		}
	}

	// Removing a div can empty its parent, so repeat until stable.
	for found := true; found; {
		found = false
		for _, n := range doc.Snapshot(divSel) {
			if !doc.Attached(n) || !emptyDiv(n) {
				continue
			}
			dom.Remove(n)
			removed++
			found = true
		}
	}
	return core.NewStat(t.Name()).Add("removed", removed)
}

// emptyDiv is true for whitespace-only divs. Comments count as content so
// conditional Outlook markup is never dropped.
func emptyDiv(n *html.Node) bool {
	if strings.TrimSpace(dom.Text(n)) != "" || dom.HasComment(n) {
		return false
	}
	return len(visibleSel.MatchAll(n)) == 0
}
