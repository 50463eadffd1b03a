// Package report renders what a cleaning run did: a human readable summary
// for verbose CLI output and a JSON document for tooling.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/gaurav-prasanna/mailscrub/core"
)

// Summary describes one cleaned input.
type Summary struct {
	Input         string      `json:"input"`
	Output        string      `json:"output,omitempty"`
	OriginalLines int         `json:"original_lines"`
	CleanedLines  int         `json:"cleaned_lines"`
	OriginalSize  int         `json:"original_size"`
	CleanedSize   int         `json:"cleaned_size"`
	Stats         []core.Stat `json:"stats"`
}

// NewSummary measures the original and cleaned markup.
func NewSummary(input, output, original, cleaned string, stats []core.Stat) Summary {
	return Summary{
		Input:         input,
		Output:        output,
		OriginalLines: lines(original),
		CleanedLines:  lines(cleaned),
		OriginalSize:  len(original),
		CleanedSize:   len(cleaned),
		Stats:         stats,
	}
}

func lines(s string) int {
	return strings.Count(s, "\n") + 1
}

// LineReduction is the rounded percentage of lines removed.
func (s Summary) LineReduction() int {
	return reduction(s.OriginalLines, s.CleanedLines)
}

// SizeReduction is the rounded percentage of bytes removed.
func (s Summary) SizeReduction() int {
	return reduction(s.OriginalSize, s.CleanedSize)
}

func reduction(before, after int) int {
	if before == 0 {
		return 0
	}
	return int(math.Round((1 - float64(after)/float64(before)) * 100))
}

// FormatSize prints bytes below 1 KiB exactly and larger sizes in KB with
// one decimal.
func FormatSize(bytes int) string {
	if bytes < 1024 {
		return fmt.Sprintf("%d B", bytes)
	}
	return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
}

// WriteText prints the verbose summary of one input.
func WriteText(w io.Writer, s Summary) error {
	var b strings.Builder
	b.WriteString("\n--- Stats ---\n")
	fmt.Fprintf(&b, "  Lines:  %d -> %d (%d%% reduction)\n", s.OriginalLines, s.CleanedLines, s.LineReduction())
	fmt.Fprintf(&b, "  Size:   %s -> %s (%d%% reduction)\n", FormatSize(s.OriginalSize), FormatSize(s.CleanedSize), s.SizeReduction())
	b.WriteString("\n  Transforms:\n")
	for _, st := range s.Stats {
		fmt.Fprintf(&b, "    - %s: %s\n", st.Name, st)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// JSONRenderer produces the machine readable report of a run.
type JSONRenderer struct{}

// NewJSONRenderer creates a JSONRenderer.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

// Render marshals the summaries of every input in input order.
func (r *JSONRenderer) Render(summaries []Summary) ([]byte, error) {
	data, err := json.MarshalIndent(struct {
		Inputs []Summary `json:"inputs"`
	}{summaries}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// Extension returns the file extension for JSON output.
func (r *JSONRenderer) Extension() string {
	return ".json"
}
