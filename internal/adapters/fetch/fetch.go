// Package fetch loads published spreadsheet CSV from URLs or local files.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/okian/workforce/pkg/metrics"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 32 << 20
)

// Client performs single-shot source fetches.
type Client struct {
	http    *http.Client
	timeout time.Duration
}

// Option configures Client.
type Option func(*Client)

// WithTimeout bounds each fetch.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// New creates a Client.
func New(opts ...Option) *Client {
	c := &Client{http: http.DefaultClient, timeout: defaultTimeout}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch downloads rawURL and returns its text. Only absolute http and
// https URLs are accepted. There is no retry.
func (c *Client) Fetch(ctx context.Context, rawURL string) (string, error) {
	if err := CheckURL(rawURL); err != nil {
		metrics.RecordFetchError("scheme")
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		metrics.RecordFetchError("request")
		return "", fmt.Errorf("%w: %w", ErrRequest, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordFetchError("request")
		return "", fmt.Errorf("%w: %w", ErrRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.RecordFetchError("status")
		return "", fmt.Errorf("%w: %d", ErrHTTPStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		metrics.RecordFetchError("read")
		return "", fmt.Errorf("%w: %w", ErrRequest, err)
	}

	text, err := checkBody(body)
	if err != nil {
		return "", err
	}
	metrics.RecordFetch("ok")
	return text, nil
}

// CheckURL reports ErrUnsupportedURL unless rawURL is an absolute http or
// https URL with a host.
func CheckURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnsupportedURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrUnsupportedURL, rawURL)
	}
	return nil
}

// Load reads source as an http(s) URL or, failing that, a local path.
// Only operator configured sources go through Load; request input uses Fetch.
func (c *Client) Load(ctx context.Context, source string) (string, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return c.Fetch(ctx, source)
	}
	return ReadFile(source)
}

// ReadFile reads a local CSV with the same decoding and checks as Fetch.
func ReadFile(path string) (string, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return checkBody(body)
}

func checkBody(body []byte) (string, error) {
	text := Decode(body)
	trimmed := strings.TrimSpace(text)
	switch {
	case trimmed == "":
		metrics.RecordFetchError("empty")
		return "", ErrEmptySource
	case strings.HasPrefix(trimmed, "<!DOCTYPE"), strings.Contains(trimmed, "<html"):
		metrics.RecordFetchError("not_csv")
		return "", ErrNotCSV
	}
	return text, nil
}

// Decode returns body as text. Bytes that are not valid UTF-8 are read
// as Windows-1252, the usual encoding of spreadsheet exports.
func Decode(body []byte) string {
	if utf8.Valid(body) {
		return string(body)
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(body)
	if err != nil {
		return strings.ToValidUTF8(string(body), "\uFFFD")
	}
	return string(out)
}
