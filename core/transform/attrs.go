// Package transform holds the individual cleaning steps of the pipeline.
// Each step implements core.Transform and reports its effect as a core.Stat.
package transform

import (
	"strings"

	"github.com/gaurav-prasanna/mailscrub/core"
	"github.com/gaurav-prasanna/mailscrub/core/dom"
)

// RemoveDataAttrs drops every data-* attribute (data-block-id, data-testid
// and friends) the editor leaves behind.
type RemoveDataAttrs struct{}

// Name implements core.Transform.
func (RemoveDataAttrs) Name() string { return "remove-data-attrs" }

// Apply implements core.Transform.
func (t RemoveDataAttrs) Apply(doc *dom.Document, _ core.Options) core.Stat {
	removed := 0
	for _, n := range doc.Elements() {
		kept := n.Attr[:0]
		for _, a := range n.Attr {
			if a.Namespace == "" && strings.HasPrefix(a.Key, "data-") {
				removed++
				continue
			}
			kept = append(kept, a)
		}
		n.Attr = kept
	}
	return core.NewStat(t.Name()).Add("removed", removed)
}
