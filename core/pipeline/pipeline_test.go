package pipeline

import (
	"os"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/gaurav-prasanna/mailscrub/core"
	"github.com/gaurav-prasanna/mailscrub/core/dom"
)

var placeholder = regexp.MustCompile(`\$\{\w+\}`)

func readFixture(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile("testdata/" + name)
	if err != nil {
		t.Fatalf("reading fixture: %v", err)
	}
	return string(b)
}

func clean(t *testing.T, src string, opts core.Options) *Result {
	t.Helper()
	res, err := New(nil).Clean(src, opts)
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	return res
}

func attrValues(t *testing.T, src, selector, attr string) []string {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parsing for %s[%s]: %v", selector, attr, err)
	}
	var out []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if v, ok := s.Attr(attr); ok {
			out = append(out, v)
		}
	})
	return out
}

func names(stats []core.Stat) []string {
	out := make([]string, len(stats))
	for i, s := range stats {
		out[i] = s.Name
	}
	return out
}

func TestSteps_Order(t *testing.T) {
	want := []string{
		"remove-data-attrs",
		"remove-empty-tags",
		"remove-google-fonts",
		"clean-classes",
		"clean-css",
		"simplify-tables",
		"add-mso-wrappers",
		"fix-preheader",
	}
	got := New(nil).Steps(core.DefaultOptions())
	if !slices.Equal(got, want) {
		t.Errorf("steps = %v\nwant    %v", got, want)
	}
}

func TestSteps_DisabledFlags(t *testing.T) {
	opts := core.Options{Width: core.DefaultWidth}
	got := New(nil).Steps(opts)
	want := []string{
		"remove-data-attrs",
		"remove-empty-tags",
		"remove-google-fonts",
		"clean-classes",
		"simplify-tables",
	}
	if !slices.Equal(got, want) {
		t.Errorf("steps = %v\nwant    %v", got, want)
	}

	res := clean(t, readFixture(t, "campaign.html"), opts)
	if !slices.Equal(names(res.Stats), want) {
		t.Errorf("stats = %v, want %v", names(res.Stats), want)
	}
	if strings.Contains(res.HTML, "gte mso 9") {
		t.Error("mso wrappers added although disabled")
	}
	if strings.Contains(res.HTML, "&#847;") {
		t.Error("preheader padded although disabled")
	}
	if !strings.Contains(res.HTML, ".mceRow, .mceColumn") {
		t.Error("stylesheet changed although css cleaning is disabled")
	}
}

func TestClean_Campaign(t *testing.T) {
	src := readFixture(t, "campaign.html")
	res := clean(t, src, core.DefaultOptions())
	out := res.HTML

	if !slices.Equal(names(res.Stats), New(nil).Steps(core.DefaultOptions())) {
		t.Fatalf("unexpected stat order: %v", names(res.Stats))
	}

	stat := func(name string) core.Stat {
		for _, s := range res.Stats {
			if s.Name == name {
				return s
			}
		}
		t.Fatalf("no stat for %s", name)
		return core.Stat{}
	}
	if got := stat("remove-data-attrs").Get("removed"); got != 3 {
		t.Errorf("data attributes removed = %d, want 3", got)
	}
	if got := stat("remove-google-fonts").Get("removed"); got != 3 {
		t.Errorf("font links removed = %d, want 3", got)
	}
	if got := stat("add-mso-wrappers").Get("added"); got != 3 {
		t.Errorf("mso wrappers added = %d, want 3", got)
	}
	if got := stat("fix-preheader").Get("modified"); got != 1 {
		t.Errorf("preheader modified = %d, want 1", got)
	}
	if s := stat("simplify-tables"); s.Get("unwrapped") == 0 || s.Get("removed") == 0 {
		t.Errorf("expected unwraps and removals, got %s", s)
	}
	if s := stat("clean-css"); s.Get("removed") <= 0 || s.Get("mediaDropped") != 1 {
		t.Errorf("unexpected css stat: %s", s)
	}

	for _, gone := range []string{"data-block-id", "data-testid", "fonts.googleapis", "fonts.gstatic", "mceColumn", "mceRow", "mceSpacing", "gutterContainerId"} {
		if strings.Contains(out, gone) {
			t.Errorf("%q survived cleaning", gone)
		}
	}
	for _, kept := range []string{
		".mceText p, .mceText h1",
		".mcnTextContent a { color: #0a66c2; }",
		".mceText p { font-size: 16px !important; }",
		`<!--[if mso]><xml><o:OfficeDocumentSettings>`,
		`<!--[if mso]><v:roundrect xmlns:v="urn:schemas-microsoft-com:vml" href="https://example.com/start?u=1&id=2"`,
		`<div class="mceText"><h1>Hello ${firstname} ${lastname}</h1>`,
		`Your onboarding starts today&#847;&zwnj;&nbsp;`,
	} {
		if !strings.Contains(out, kept) {
			t.Errorf("expected %q in output", kept)
		}
	}
}

func TestClean_PreservesContent(t *testing.T) {
	src := readFixture(t, "campaign.html")
	out := clean(t, src, core.DefaultOptions()).HTML

	for _, c := range []struct{ sel, attr string }{{"img", "src"}, {"a", "href"}} {
		before := attrValues(t, src, c.sel, c.attr)
		if len(before) == 0 {
			t.Fatalf("fixture has no %s[%s]", c.sel, c.attr)
		}
		after := attrValues(t, out, c.sel, c.attr)
		for _, v := range before {
			if !slices.Contains(after, v) {
				t.Errorf("%s %s %q lost", c.sel, c.attr, v)
			}
		}
	}
	for _, p := range placeholder.FindAllString(src, -1) {
		if !strings.Contains(out, p) {
			t.Errorf("placeholder %s lost", p)
		}
	}
}

func TestClean_Idempotent(t *testing.T) {
	first := clean(t, readFixture(t, "campaign.html"), core.DefaultOptions())
	second := clean(t, first.HTML, core.DefaultOptions())

	for _, s := range second.Stats {
		for _, c := range s.Counts {
			switch c.Key {
			case "passes", "originalSize", "cleanedSize":
				continue
			}
			if c.Value != 0 {
				t.Errorf("%s: second run reported %s=%d", s.Name, c.Key, c.Value)
			}
		}
	}
	if note := second.Stats[len(second.Stats)-1].Note; note != "already padded" {
		t.Errorf("preheader note = %q, want already padded", note)
	}
	if second.HTML != first.HTML {
		t.Error("second run changed the output")
	}
}

func TestClean_KeepsSourceSpelling(t *testing.T) {
	src := readFixture(t, "campaign.html")
	out := clean(t, src, core.DefaultOptions()).HTML

	for _, raw := range []string{
		`src="https://mcusercontent.com/logo.png"`,
		`href="https://example.com/start?u=1&amp;id=2"`,
		`href="https://example.com/start?u=1&id=2"`,
		`href="https://example.com/prefs?c=1&u=2"`,
		`title="Update what you'd like"`,
		`href="*|UNSUB|*"`,
		`Don't&nbsp;miss out. &copy; 2026 Example &amp; Co.`,
		`${firstname} ${lastname}`,
	} {
		if !strings.Contains(src, raw) {
			t.Fatalf("fixture lacks %q", raw)
		}
		if !strings.Contains(out, raw) {
			t.Errorf("%q not kept verbatim", raw)
		}
	}
}

func TestClean_WrapperScenario(t *testing.T) {
	opts := core.DefaultOptions()

	res := clean(t, `<table><tbody><tr><td style="padding:0"><table><tr><td>X</td></tr></table></td></tr></tbody></table>`, opts)
	if res.HTML != `<table><tbody><tr><td>X</td></tr></tbody></table>` {
		t.Errorf("unpadded wrapper not collapsed: %s", res.HTML)
	}
	if strings.Contains(res.HTML, "width=") {
		t.Error("width attribute added")
	}

	padded := `<table><tbody><tr><td style="padding:10px"><table><tbody><tr><td>X</td></tr></tbody></table></td></tr></tbody></table>`
	res = clean(t, padded, opts)
	if res.HTML != padded {
		t.Errorf("padded wrapper changed:\n got: %s\nwant: %s", res.HTML, padded)
	}
}

type countingTransform struct {
	calls *int
}

func (countingTransform) Name() string { return "count" }

func (c countingTransform) Apply(doc *dom.Document, _ core.Options) core.Stat {
	*c.calls++
	return core.NewStat("count").Add("elements", len(doc.Elements()))
}

func TestNewWithSteps(t *testing.T) {
	calls := 0
	p := NewWithSteps(nil,
		Step{Transform: countingTransform{&calls}},
		Step{Transform: countingTransform{&calls}, Enabled: func(o core.Options) bool { return o.Width > 700 }},
	)
	res, err := p.Clean(`<p>a</p><p>b</p>`, core.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if calls != 1 || len(res.Stats) != 1 {
		t.Fatalf("calls = %d, stats = %d, want 1 and 1", calls, len(res.Stats))
	}
	if got := res.Stats[0].Get("elements"); got != 2 {
		t.Errorf("elements = %d, want 2", got)
	}
	if res.HTML != `<p>a</p><p>b</p>` {
		t.Errorf("unexpected output: %s", res.HTML)
	}
}
