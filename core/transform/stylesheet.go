package transform

import (
	"strings"

	"github.com/andybalholm/cascadia"

	"github.com/gaurav-prasanna/mailscrub/core"
	"github.com/gaurav-prasanna/mailscrub/core/css"
	"github.com/gaurav-prasanna/mailscrub/core/dom"
)

var styleSel = cascadia.MustCompile("style")

// CleanCSS purges editor-only rules from every <style> element.
type CleanCSS struct {
	pruner *css.Pruner
}

// NewCleanCSS wraps a pruner.
func NewCleanCSS(pruner *css.Pruner) *CleanCSS {
	return &CleanCSS{pruner: pruner}
}

// Name implements core.Transform.
func (*CleanCSS) Name() string { return "clean-css" }

// Apply implements core.Transform. Sizes are those of the whole <style>
// content, surrounding whitespace included.
func (t *CleanCSS) Apply(doc *dom.Document, _ core.Options) core.Stat {
	var original, cleaned, rules, media int
	for _, n := range doc.Snapshot(styleSel) {
		raw := dom.Text(n)
		text := strings.TrimSpace(raw)
		if text == "" {
			continue
		}
		res := t.pruner.Prune(text)
		rules += res.RulesDropped
		media += res.MediaDropped

		content := "\n" + res.CSS + "\n"
		original += len(raw)
		cleaned += len(content)

		for c := n.FirstChild; c != nil; c = n.FirstChild {
			n.RemoveChild(c)
		}
		n.AppendChild(dom.TextNode(content))
	}

	return core.NewStat(t.Name()).
		Add("originalSize", original).
		Add("cleanedSize", cleaned).
		Add("removed", original-cleaned).
		Add("rulesDropped", rules).
		Add("mediaDropped", media)
}
