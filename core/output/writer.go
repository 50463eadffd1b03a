// Package output handles file naming and writing for cleaned emails.
// A local input campaign.html becomes campaign-clean.html next to it; a
// URL input is named after its host and path (e.g. example_com_archive-clean.html).
package output

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const (
	cleanSuffix = "-clean"
	defaultExt  = ".html"
)

// Writer writes cleaned output to disk.
type Writer struct {
	// OutputDir, when set, receives every output file. Otherwise files land
	// next to their input, or in the working directory for URLs.
	OutputDir string
}

// New creates a Writer targeting the given output directory, creating it if
// needed. An empty outputDir is allowed.
func New(outputDir string) (*Writer, error) {
	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return nil, fmt.Errorf("creating output directory: %w", err)
		}
	}
	return &Writer{OutputDir: outputDir}, nil
}

// Path derives the cleaned HTML path for an input file or URL.
func (w *Writer) Path(input string) string {
	if isURL(input) {
		return filepath.Join(w.OutputDir, filenameFromURL(input)+cleanSuffix+defaultExt)
	}

	ext := filepath.Ext(input)
	base := strings.TrimSuffix(filepath.Base(input), ext)
	if ext == "" {
		ext = defaultExt
	}
	dir := w.OutputDir
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, base+cleanSuffix+ext)
}

// TextPath returns the plain-text companion path of an HTML output path.
func TextPath(htmlPath string) string {
	return strings.TrimSuffix(htmlPath, filepath.Ext(htmlPath)) + ".txt"
}

// Write stores data at path, creating parent directories.
func (w *Writer) Write(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing file %s: %w", path, err)
	}
	return nil
}

func isURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// filenameFromURL converts a URL into a flat filename.
// Example: https://example.com/archive/spring → example_com_archive_spring
func filenameFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return sanitize(rawURL)
	}

	parts := []string{sanitize(parsed.Host)}
	path := strings.Trim(parsed.Path, "/")
	if path != "" {
		for seg := range strings.SplitSeq(path, "/") {
			parts = append(parts, sanitize(strings.TrimSuffix(seg, filepath.Ext(seg))))
		}
	}
	return strings.Join(parts, "_")
}

// sanitize replaces non-alphanumeric characters with underscores.
func sanitize(s string) string {
	var b strings.Builder
	for _, ch := range s {
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '-' {
			b.WriteRune(ch)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}
