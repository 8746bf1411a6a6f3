package repo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-cleanhttp"
)

const (
	DefaultMirror    = "https://repo.aosc.io/debs"
	DefaultUserAgent = "oma/1.14.514"
)

// Upstream is a remote repository mirror.
type Upstream struct {
	URL       url.URL
	client    *http.Client
	userAgent string
}

type UpstreamConfig struct {
	URL       string        `yaml:"url"`
	UserAgent string        `yaml:"userAgent"`
	Timeout   time.Duration `yaml:"timeout"`
}

// StatusError is returned when the mirror answers with a non-success status.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream status %s: %s", e.Status, e.URL)
}

// BodyError is returned when the response body fails mid-read.
type BodyError struct {
	Err error
}

func (e *BodyError) Error() string {
	return fmt.Sprintf("upstream read: %v", e.Err)
}

func (e *BodyError) Unwrap() error {
	return e.Err
}

func UpstreamFromConfig(cfg UpstreamConfig) (*Upstream, error) {
	raw := cfg.URL
	if raw == "" {
		raw = DefaultMirror
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("error parsing upstream URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported upstream scheme %q", u.Scheme)
	}

	client := cleanhttp.DefaultClient()
	client.Timeout = cfg.Timeout

	up := NewUpstream(*u, client)
	if cfg.UserAgent != "" {
		up.userAgent = cfg.UserAgent
	}
	return up, nil
}

// NewUpstream creates an Upstream. A nil client gets a fresh, unshared client.
func NewUpstream(baseURL url.URL, client *http.Client) *Upstream {
	if client == nil {
		client = cleanhttp.DefaultClient()
	}
	return &Upstream{
		URL:       baseURL,
		client:    client,
		userAgent: DefaultUserAgent,
	}
}

// PackagesURL is the location of a Packages index on this mirror.
func (u Upstream) PackagesURL(dist Distribution, component Component, arch Architecture, compression Compression) string {
	return u.URL.JoinPath(PackagesPath(dist, component, arch, compression)...).String()
}

// Packages downloads a Packages index into memory, still compressed.
func (u Upstream) Packages(ctx context.Context, dist Distribution, component Component, arch Architecture, compression Compression) ([]byte, error) {
	body, err := u.OpenPackages(ctx, dist, component, arch, compression)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// OpenPackages starts downloading a Packages index. The caller must close the body.
// Read failures on the body are reported as *BodyError.
func (u Upstream) OpenPackages(ctx context.Context, dist Distribution, component Component, arch Architecture, compression Compression) (io.ReadCloser, error) {
	return u.open(ctx, PackagesPath(dist, component, arch, compression)...)
}

func (u Upstream) open(ctx context.Context, path ...string) (io.ReadCloser, error) {
	target := u.URL.JoinPath(path...).String()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", u.userAgent)

	slog.Debug("fetching from upstream", slog.String("url", target))
	resp, err := u.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, &StatusError{URL: target, StatusCode: resp.StatusCode, Status: resp.Status}
	}
	slog.Debug("upstream responded",
		slog.String("url", target),
		slog.Int("status", resp.StatusCode),
		slog.Int64("content_length", resp.ContentLength),
	)
	return &bodyReader{ReadCloser: resp.Body}, nil
}

type bodyReader struct {
	io.ReadCloser
}

func (b *bodyReader) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	if err != nil && err != io.EOF {
		err = &BodyError{Err: err}
	}
	return n, err
}

// WithClient returns a copy of u that sends requests through client.
func (u Upstream) WithClient(client *http.Client) *Upstream {
	u.client = client
	return &u
}
