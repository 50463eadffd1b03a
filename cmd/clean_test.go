package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCleanCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "mailscrub.yaml")
	cfg := "version: 1\ncss:\n  extra_editor_selectors: ['\\.promo']\nlogging:\n  level: none\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}

	in := filepath.Join(dir, "campaign.html")
	src := `<!DOCTYPE html><html><head><title>News</title><style>.promo { color: red; }
.mceText p { color: blue; }</style></head><body>` +
		`<table><tbody><tr><td class="mceSectionBody"><table style="max-width:660px"><tbody><tr><td>` +
		`<div class="mceText"><p>Hello ${firstname}</p></div><p>More</p></td></tr></tbody></table></td></tr></tbody></table>` +
		`</body></html>`
	if err := os.WriteFile(in, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetArgs([]string{"clean", in, in, "--config", cfgPath, "--width", "600", "--no-mso-wrappers", "--stats-json", "--text"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	out, err := os.ReadFile(filepath.Join(dir, "campaign-clean.html"))
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if strings.Contains(string(out), ".promo") {
		t.Error("configured editor selector not pruned")
	}
	if !strings.Contains(string(out), ".mceText p { color: blue; }") {
		t.Errorf("preserved rule lost:\n%s", out)
	}
	if strings.Contains(string(out), "gte mso 9") {
		t.Error("--no-mso-wrappers ignored")
	}
	if !strings.Contains(string(out), "Hello ${firstname}") {
		t.Error("placeholder lost")
	}

	if _, err := os.Stat(filepath.Join(dir, "campaign-clean.txt")); err != nil {
		t.Errorf("text alternative missing: %v", err)
	}

	var report struct {
		Inputs []struct {
			Input string `json:"input"`
			Stats []struct {
				Name string `json:"name"`
			} `json:"stats"`
		} `json:"inputs"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &report); err != nil {
		t.Fatalf("stats are not JSON: %v\n%s", err, stdout.String())
	}
	if len(report.Inputs) != 1 {
		t.Fatalf("duplicate input not collapsed: %d reports", len(report.Inputs))
	}
	for _, s := range report.Inputs[0].Stats {
		if s.Name == "add-mso-wrappers" {
			t.Error("disabled step reported")
		}
	}
}
