package extract

import (
	"strings"
	"testing"
)

func TestExtract(t *testing.T) {
	src := `<!DOCTYPE html><html><head><title> Spring launch </title><style>p{color:red}</style></head><body>` +
		`<span class="mcnPreviewText" style="display:none">Three new features` + strings.Repeat("&#847;&zwnj;&nbsp;", 5) + `</span>` +
		`<!--[if mso]><v:roundrect href="https://example.com"><center>Open</center></v:roundrect><![endif]-->` +
		`<div style="display: none; max-height:0">tracking copy</div>` +
		`<table><tbody><tr><td><h1>Hello ${firstname}</h1><a href="https://example.com">Open</a></td></tr></tbody></table>` +
		`</body></html>`

	c, err := New().Extract(src)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if c.Title != "Spring launch" {
		t.Errorf("Title = %q", c.Title)
	}
	if c.Preheader != "Three new features" {
		t.Errorf("Preheader = %q", c.Preheader)
	}
	for _, gone := range []string{"color:red", "Three new features", "roundrect", "tracking copy", "<title>"} {
		if strings.Contains(c.Body, gone) {
			t.Errorf("%q survived in body: %s", gone, c.Body)
		}
	}
	for _, kept := range []string{"<h1>Hello ${firstname}</h1>", `<a href="https://example.com">Open</a>`} {
		if !strings.Contains(c.Body, kept) {
			t.Errorf("expected %q in body: %s", kept, c.Body)
		}
	}
}

func TestExtract_Fragment(t *testing.T) {
	c, err := New().Extract(`<p>Just a snippet</p>`)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if c.Body != "<p>Just a snippet</p>" || c.Title != "" || c.Preheader != "" {
		t.Errorf("unexpected content: %+v", c)
	}
}
