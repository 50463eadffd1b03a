package transform

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/gaurav-prasanna/mailscrub/core"
	"github.com/gaurav-prasanna/mailscrub/core/dom"
)

// msoMarker opens every Outlook wrapper; its presence means a section is
// already wrapped.
const msoMarker = "[if (gte mso 9)|(IE)]"

var (
	sectionSel  = cascadia.MustCompile(".mceSectionHeader, .mceSectionBody, .mceSectionFooter")
	maxWidthSel = cascadia.MustCompile(`table[style*="max-width"]`)
)

// AddMsoWrappers surrounds the max-width table of each section with a
// fixed-width table that only Outlook sees, since Outlook ignores
// max-width.
type AddMsoWrappers struct{}

// Name implements core.Transform.
func (AddMsoWrappers) Name() string { return "add-mso-wrappers" }

// Apply implements core.Transform.
func (t AddMsoWrappers) Apply(doc *dom.Document, opts core.Options) core.Stat {
	width := opts.Width
	if width <= 0 {
		width = core.DefaultWidth
	}
	open := fmt.Sprintf(`%s><table align="center" border="0" cellspacing="0" cellpadding="0" width="%d"><tr><td><![endif]`, msoMarker, width)
	closing := msoMarker + `></td></tr></table><![endif]`

	added := 0
	doc.FindMatcher(sectionSel).Each(func(_ int, section *goquery.Selection) {
		if wrapped(section) {
			return
		}
		inner := section.ChildrenMatcher(maxWidthSel).First()
		if inner.Length() == 0 {
			return
		}
		table := inner.Nodes[0]
		table.Parent.InsertBefore(dom.Comment(open), table)
		dom.InsertAfter(table, dom.Comment(closing))
		added++
	})
	return core.NewStat(t.Name()).Add("added", added)
}

func wrapped(section *goquery.Selection) bool {
	var found func(*html.Node) bool
	found = func(n *html.Node) bool {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.CommentNode && strings.HasPrefix(c.Data, msoMarker) {
				return true
			}
			if found(c) {
				return true
			}
		}
		return false
	}
	return found(section.Nodes[0])
}
