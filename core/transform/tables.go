package transform

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/aymerick/douceur/parser"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/gaurav-prasanna/mailscrub/core"
	"github.com/gaurav-prasanna/mailscrub/core/dom"
)

// MaxTablePasses bounds the unwrap loop on pathological nesting.
const MaxTablePasses = 10

var (
	tbodySel = cascadia.MustCompile("tbody")
	tableSel = cascadia.MustCompile("table")
)

// SimplifyTables collapses the single-cell wrapper tables the editor nests
// around every block. A wrapper is removed only when it adds nothing
// visible: no background, padding, border or grid span on its cell.
type SimplifyTables struct {
	log *zap.Logger
}

// NewSimplifyTables creates the transform.
func NewSimplifyTables(log *zap.Logger) *SimplifyTables {
	if log == nil {
		log = zap.NewNop()
	}
	return &SimplifyTables{log: log.Named("tables")}
}

// Name implements core.Transform.
func (*SimplifyTables) Name() string { return "simplify-tables" }

type verdict int

const (
	keep verdict = iota
	unwrap
	drop
)

// Apply implements core.Transform.
func (t *SimplifyTables) Apply(doc *dom.Document, _ core.Options) core.Stat {
	emptyBodies := 0
	for _, n := range doc.Snapshot(tbodySel) {
		c := dom.ChildContent(n)
		if len(c.Elements) == 0 && c.Comments == 0 && !c.Text {
			dom.Remove(n)
			emptyBodies++
		}
	}

	var (
		unwrapped, removed, passes int
		converged                  bool
	)
	for passes < MaxTablePasses {
		passes++
		changed := false
		for _, table := range doc.Snapshot(tableSel) {
			if !doc.Attached(table) {
				continue
			}
			switch v, inner := classifyWrapper(table); v {
			case unwrap:
				dom.Replace(table, inner)
				unwrapped++
				changed = true
			case drop:
				dom.Remove(table)
				removed++
				changed = true
			}
		}
		if !changed {
			converged = true
			break
		}
	}
	if !converged {
		t.log.Debug("Table simplification hit the pass limit", zap.Int("passes", passes))
	}

	return core.NewStat(t.Name()).
		Add("unwrapped", unwrapped).
		Add("removed", removed).
		Add("emptyTbodies", emptyBodies).
		Add("passes", passes)
}

// classifyWrapper decides what to do with one table. For unwrap it also
// returns the inner table that takes the wrapper's place.
func classifyWrapper(table *html.Node) (verdict, *html.Node) {
	tbody := dom.SoleChild(table, atom.Tbody)
	if tbody == nil {
		return keep, nil
	}
	row := dom.SoleChild(tbody, atom.Tr)
	if row == nil {
		return keep, nil
	}
	cell := dom.SoleChild(row, atom.Td)
	if cell == nil {
		return keep, nil
	}

	for _, n := range []*html.Node{table, row, cell} {
		if significant(n) {
			return keep, nil
		}
	}
	if span, ok := dom.Attr(cell, "colspan"); ok && span != "1" && span != "12" {
		return keep, nil
	}

	if inner := dom.SoleChild(cell, atom.Table); inner != nil {
		return unwrap, inner
	}
	c := dom.ChildContent(cell)
	if len(c.Elements) == 0 && c.Comments == 0 && !c.Text && strings.TrimSpace(dom.Text(cell)) == "" {
		return drop, nil
	}
	return keep, nil
}

// significant reports whether an element's presentation would be lost by
// removing it.
func significant(n *html.Node) bool {
	if _, ok := dom.Attr(n, "bgcolor"); ok {
		return true
	}
	style, ok := dom.Attr(n, "style")
	if !ok {
		return false
	}
	return SignificantStyle(style)
}

// SignificantStyle reports whether an inline style paints something: a
// background, non-zero padding or a border. A style that cannot be
// parsed is treated as significant.
func SignificantStyle(style string) bool {
	style = strings.TrimSpace(style)
	if style == "" {
		return false
	}
	// The declaration parser leaves the value of an unterminated last
	// declaration empty.
	if !strings.HasSuffix(style, ";") {
		style += ";"
	}
	decls, err := parser.ParseDeclarations(style)
	if err != nil {
		return true
	}

	for _, d := range decls {
		prop := strings.ToLower(strings.TrimSpace(d.Property))
		val := strings.ToLower(strings.TrimSpace(d.Value))
		switch {
		case prop == "background-color" || prop == "background":
			if compact := strings.ReplaceAll(val, " ", ""); compact != "transparent" && compact != "rgba(0,0,0,0)" {
				return true
			}
		case prop == "background-image":
			if val != "none" {
				return true
			}
		case strings.HasPrefix(prop, "padding"):
			for _, tok := range strings.Fields(val) {
				if tok != "0" && tok != "0px" {
					return true
				}
			}
		case prop == "border":
			if val != "none" && val != "0" && val != "0px" {
				return true
			}
		}
	}
	return false
}
