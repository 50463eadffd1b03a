// Package fetch implements the Fetcher interface.
// It downloads campaign HTML from a hosted "view in browser" URL.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gaurav-prasanna/mailscrub/core"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "mailscrub/1.0 (https://github.com/gaurav-prasanna/mailscrub)"
	// MaxBodySize caps a downloaded campaign. Real exports stay far below it.
	MaxBodySize = 16 << 20
)

// HTTPFetcher fetches campaign pages via HTTP.
type HTTPFetcher struct {
	client *http.Client
	log    *zap.Logger
}

// New creates an HTTPFetcher with a sensible timeout.
func New(log *zap.Logger) *HTTPFetcher {
	return NewWithClient(&http.Client{Timeout: defaultTimeout}, log)
}

// NewWithClient creates an HTTPFetcher around an existing client.
func NewWithClient(client *http.Client, log *zap.Logger) *HTTPFetcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &HTTPFetcher{client: client, log: log.Named("fetch")}
}

// IsURL reports whether an input names an http(s) resource rather than a
// local file.
func IsURL(input string) bool {
	lower := strings.ToLower(input)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Fetch retrieves the HTML content of the given URL.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*core.FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if len(body) > MaxBodySize {
		return nil, fmt.Errorf("response from %s exceeds %d bytes", url, MaxBodySize)
	}

	f.log.Debug("Fetched campaign",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)))

	return &core.FetchResult{
		URL:        url,
		StatusCode: resp.StatusCode,
		HTML:       string(body),
	}, nil
}
