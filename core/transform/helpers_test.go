package transform

import (
	"testing"

	"github.com/gaurav-prasanna/mailscrub/core"
	"github.com/gaurav-prasanna/mailscrub/core/dom"
)

func parse(t *testing.T, src string) *dom.Document {
	t.Helper()
	doc, err := dom.Parse(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func render(t *testing.T, doc *dom.Document) string {
	t.Helper()
	out, err := doc.Render()
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return out
}

// apply runs tr over src and returns the rendered output and stat.
func apply(t *testing.T, tr core.Transform, src string) (string, core.Stat) {
	t.Helper()
	doc := parse(t, src)
	stat := tr.Apply(doc, core.DefaultOptions())
	if stat.Name != tr.Name() {
		t.Errorf("stat name = %q, want %q", stat.Name, tr.Name())
	}
	return render(t, doc), stat
}

func defaultOpts() core.Options {
	return core.DefaultOptions()
}
