package report

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/gaurav-prasanna/mailscrub/core"
)

func sample() Summary {
	stats := []core.Stat{
		core.NewStat("remove-data-attrs").Add("removed", 4),
		func() core.Stat {
			s := core.NewStat("fix-preheader").Add("modified", 0)
			s.Note = "not found"
			return s
		}(),
	}
	original := strings.Repeat("<div>line</div>\n", 9) + "<p>end</p>"
	cleaned := "<p>short</p>\n<p>end</p>"
	return NewSummary("in.html", "in-clean.html", original, cleaned, stats)
}

func TestSummary(t *testing.T) {
	s := sample()
	if s.OriginalLines != 10 || s.CleanedLines != 2 {
		t.Errorf("lines = %d -> %d, want 10 -> 2", s.OriginalLines, s.CleanedLines)
	}
	if got := s.LineReduction(); got != 80 {
		t.Errorf("LineReduction() = %d, want 80", got)
	}
	if (Summary{}).SizeReduction() != 0 {
		t.Error("empty input must report 0% reduction")
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
	}
	for _, tt := range tests {
		if got := FormatSize(tt.in); got != tt.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteText(t *testing.T) {
	var b strings.Builder
	if err := WriteText(&b, sample()); err != nil {
		t.Fatal(err)
	}
	out := b.String()
	for _, want := range []string{
		"--- Stats ---",
		"  Lines:  10 -> 2 (80% reduction)",
		"    - remove-data-attrs: removed=4\n",
		"    - fix-preheader: modified=0, reason=not found\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
}

func TestJSONRenderer(t *testing.T) {
	data, err := NewJSONRenderer().Render([]Summary{sample()})
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Inputs []Summary `json:"inputs"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(decoded.Inputs) != 1 || decoded.Inputs[0].Stats[1].Note != "not found" {
		t.Errorf("unexpected report: %s", data)
	}
	if decoded.Inputs[0].Stats[0].Get("removed") != 4 {
		t.Errorf("counter lost: %s", data)
	}
}
