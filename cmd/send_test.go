package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/gaurav-prasanna/mailscrub/core/send"
)

type recordingSender struct {
	cfg  send.Config
	sent []send.Message
}

func (r *recordingSender) Send(_ context.Context, msg send.Message) (string, error) {
	r.sent = append(r.sent, msg)
	return "msg-1", nil
}

func TestSendCommand(t *testing.T) {
	rec := &recordingSender{}
	saved := newSender
	newSender = func(_ context.Context, cfg send.Config, _ *zap.Logger) (previewSender, error) {
		rec.cfg = cfg
		return rec, nil
	}
	defer func() { newSender = saved }()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "mailscrub.yaml")
	if err := os.WriteFile(cfgPath, []byte("version: 1\nsend:\n  region: eu-west-1\n  sender: preview@example.com\nlogging:\n  level: none\n"), 0644); err != nil {
		t.Fatal(err)
	}
	in := filepath.Join(dir, "campaign.html")
	src := `<!DOCTYPE html><html><head><title>Spring launch</title></head><body>` +
		`<div data-block-id="4"><p>Hello ${firstname}</p></div></body></html>`
	if err := os.WriteFile(in, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetArgs([]string{"send", in, "--to", "qa@example.com", "--to", "lead@example.com", "--config", cfgPath, "--region", "us-east-1"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if rec.cfg.Sender != "preview@example.com" || rec.cfg.Region != "us-east-1" {
		t.Errorf("unexpected SES config: %+v", rec.cfg)
	}
	if len(rec.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(rec.sent))
	}
	msg := rec.sent[0]
	if msg.Subject != "Spring launch" {
		t.Errorf("subject = %q", msg.Subject)
	}
	if len(msg.To) != 2 {
		t.Errorf("to = %v", msg.To)
	}
	if strings.Contains(msg.HTML, "data-block-id") || !strings.Contains(msg.HTML, "Hello ${firstname}") {
		t.Errorf("html part not cleaned: %s", msg.HTML)
	}
	if !strings.Contains(msg.Text, "Hello ${firstname}") {
		t.Errorf("text part = %q", msg.Text)
	}
	if !strings.Contains(stdout.String(), "msg-1") {
		t.Errorf("unexpected output: %s", stdout.String())
	}
}

func TestPreviewMessage_DefaultSubject(t *testing.T) {
	msg, err := previewMessage(`<p>No title here</p>`, fakeNormalizer{})
	if err != nil {
		t.Fatal(err)
	}
	if msg.Subject != "mailscrub preview" || msg.Text != "<p>No title here</p>" {
		t.Errorf("unexpected message: %+v", msg)
	}
}

type fakeNormalizer struct{}

func (fakeNormalizer) Normalize(html string) (string, error) { return html, nil }
