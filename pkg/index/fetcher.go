package index

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/thepwagner/aoscpkgs/pkg/debian"
	"github.com/thepwagner/aoscpkgs/pkg/repo"
	"github.com/thepwagner/aoscpkgs/pkg/store"
)

// Config describes where indices come from and where they are kept.
type Config struct {
	// Compressed requests Packages.xz. Compression, when set, takes precedence.
	Compressed  bool                `yaml:"compressed"`
	Compression repo.Compression    `yaml:"compression"`
	Dir         string              `yaml:"dir"`
	Upstream    repo.UpstreamConfig `yaml:"upstream"`
	Tokenizer   string              `yaml:"tokenizer"`
}

func (c Config) compression() repo.Compression {
	if c.Compression != repo.CompressionNone {
		return c.Compression
	}
	if c.Compressed {
		return repo.CompressionXZ
	}
	return repo.CompressionNone
}

// Fetcher downloads, persists and decodes Packages indices from one mirror.
type Fetcher struct {
	upstream    *repo.Upstream
	component   repo.Component
	compression repo.Compression
	dir         *store.Dir
	parser      Parser
}

type options struct {
	client    *http.Client
	tokenizer debian.Tokenizer
}

type Option func(*options)

// WithHTTPClient replaces the client used for downloads.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.client = c }
}

// WithTokenizer replaces the configured tokenizer.
func WithTokenizer(t debian.Tokenizer) Option {
	return func(o *options) { o.tokenizer = t }
}

func NewFetcher(cfg Config, opts ...Option) (*Fetcher, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if cfg.Dir == "" {
		return nil, fmt.Errorf("no destination directory configured")
	}
	compression := cfg.compression()
	switch compression {
	case repo.CompressionNone, repo.CompressionXZ, repo.CompressionGZIP:
	default:
		return nil, fmt.Errorf("unsupported compression %q", compression)
	}

	up, err := repo.UpstreamFromConfig(cfg.Upstream)
	if err != nil {
		return nil, err
	}
	if o.client != nil {
		up = up.WithClient(o.client)
	}

	tok := o.tokenizer
	if tok == nil {
		var ok bool
		if tok, ok = debian.TokenizerByName(cfg.Tokenizer); !ok {
			return nil, fmt.Errorf("unknown tokenizer %q", cfg.Tokenizer)
		}
	}

	slog.Debug("building fetcher",
		slog.String("mirror", up.URL.String()),
		slog.String("dir", cfg.Dir),
		slog.String("compression", compression.String()),
	)
	return &Fetcher{
		upstream:    up,
		component:   "main",
		compression: compression,
		dir:         store.NewDir(cfg.Dir),
		parser:      Parser{Tokenizer: tok},
	}, nil
}

// URL is where Fetch downloads the index for arch and branch.
func (f *Fetcher) URL(arch, branch string) string {
	return f.upstream.PackagesURL(repo.Distribution(branch), f.component, repo.Architecture(arch), f.compression)
}

// Dir is the directory indices are persisted into.
func (f *Fetcher) Dir() string {
	return f.dir.Path
}

// Fetch downloads, persists and decodes an index on the calling goroutine.
func (f *Fetcher) Fetch(ctx context.Context, arch, branch string) (Packages, error) {
	target := f.URL(arch, branch)

	raw, err := f.upstream.Packages(ctx, repo.Distribution(branch), f.component, repo.Architecture(arch), f.compression)
	if err != nil {
		return nil, &Error{Kind: KindTransport, URL: target, Err: err}
	}

	data, err := f.compression.Decompress(raw)
	if err != nil {
		return nil, &Error{Kind: KindDecompression, URL: target, Err: err}
	}

	if err := f.dir.WriteFile(store.PackagesFile, data); err != nil {
		return nil, &Error{Kind: KindIO, URL: target, Err: err}
	}

	pkgs, err := f.parser.Parse(data)
	if err != nil {
		return nil, withURL(err, target)
	}
	slog.Info("fetched packages",
		slog.String("url", target),
		slog.Int("compressed_bytes", len(raw)),
		slog.Int("bytes", len(data)),
		slog.Int("packages", len(pkgs)),
	)
	return pkgs, nil
}
