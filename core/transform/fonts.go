package transform

import (
	"strings"

	"github.com/andybalholm/cascadia"

	"github.com/gaurav-prasanna/mailscrub/core"
	"github.com/gaurav-prasanna/mailscrub/core/dom"
)

var linkSel = cascadia.MustCompile("link[href]")

// fontHosts serve web fonts that most email clients ignore; the font stack
// fallback is what actually renders.
var fontHosts = []string{"fonts.googleapis.com", "fonts.gstatic.com"}

// RemoveGoogleFonts drops <link> elements (stylesheets and preconnect hints)
// that point at Google Fonts.
type RemoveGoogleFonts struct{}

// Name implements core.Transform.
func (RemoveGoogleFonts) Name() string { return "remove-google-fonts" }

// Apply implements core.Transform.
func (t RemoveGoogleFonts) Apply(doc *dom.Document, _ core.Options) core.Stat {
	removed := 0
	for _, n := range doc.Snapshot(linkSel) {
		href, _ := dom.Attr(n, "href")
		if isFontHost(href) {
			dom.Remove(n)
			removed++
		}
	}
	return core.NewStat(t.Name()).Add("removed", removed)
}

func isFontHost(href string) bool {
	for _, host := range fontHosts {
		if strings.Contains(href, host) {
			return true
		}
	}
	return false
}
