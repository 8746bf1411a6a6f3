package index

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/sourcegraph/conc/panics"
	"github.com/thepwagner/aoscpkgs/pkg/repo"
	"github.com/thepwagner/aoscpkgs/pkg/store"
	"golang.org/x/sync/errgroup"
)

// Pending is an index being fetched in the background.
type Pending struct {
	done chan struct{}
	pkgs Packages
	err  error
}

// Done is closed once the fetch has finished.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the fetch has finished.
func (p *Pending) Wait() (Packages, error) {
	<-p.done
	return p.pkgs, p.err
}

var (
	errStreamAborted  = errors.New("index stream aborted")
	errPersistAborted = errors.New("persisting aborted")
)

// FetchAsync streams, persists and decodes an index in the background.
// The body is decoded as it arrives and written to disk while it is parsed;
// parsing runs on a separate worker goroutine. Cancelling ctx aborts the
// download and leaves the persisted file truncated or absent.
func (f *Fetcher) FetchAsync(ctx context.Context, arch, branch string) *Pending {
	p := &Pending{done: make(chan struct{})}
	go func() {
		defer close(p.done)
		p.pkgs, p.err = f.fetchStream(ctx, arch, branch)
	}()
	return p
}

func (f *Fetcher) fetchStream(ctx context.Context, arch, branch string) (Packages, error) {
	target := f.URL(arch, branch)

	body, err := f.upstream.OpenPackages(ctx, repo.Distribution(branch), f.component, repo.Architecture(arch), f.compression)
	if err != nil {
		return nil, &Error{Kind: KindTransport, URL: target, Err: err}
	}
	defer body.Close()

	pr, pw := io.Pipe()
	var g errgroup.Group

	// persist decoded bytes as they are produced
	g.Go(func() error {
		_, err := f.dir.WriteFrom(store.PackagesFile, pr)
		if errors.Is(err, errStreamAborted) {
			return nil
		} else if err != nil {
			_ = pr.CloseWithError(errPersistAborted)
			return &Error{Kind: KindIO, URL: target, Err: err}
		}
		return nil
	})

	var pkgs Packages
	g.Go(func() error {
		data, err := f.decode(body, pw)
		if errors.Is(err, errPersistAborted) {
			// the persisting goroutine reports its own failure
			return nil
		} else if err != nil {
			return f.streamError(ctx, target, err)
		}

		pkgs, err = f.parseInWorker(data)
		return withURL(err, target)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	slog.Info("streamed packages",
		slog.String("url", target),
		slog.Int("packages", len(pkgs)),
	)
	return pkgs, nil
}

// decode reads the whole decompressed index, copying it into pw as it goes.
// pw is always closed before returning.
func (f *Fetcher) decode(body io.Reader, pw *io.PipeWriter) ([]byte, error) {
	decoded, err := f.compression.NewReader(body)
	if err != nil {
		_ = pw.CloseWithError(errStreamAborted)
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.TeeReader(decoded, persistWriter{pw})); err != nil {
		_ = pw.CloseWithError(errStreamAborted)
		return nil, err
	}
	if err := pw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (f *Fetcher) streamError(ctx context.Context, target string, err error) error {
	var bodyErr *repo.BodyError
	switch {
	case errors.As(err, &bodyErr):
		return &Error{Kind: KindTransport, URL: target, Err: err}
	case ctx.Err() != nil:
		return &Error{Kind: KindTransport, URL: target, Err: fmt.Errorf("%w: %w", ctx.Err(), err)}
	default:
		return &Error{Kind: KindDecompression, URL: target, Err: err}
	}
}

// parseInWorker runs the parser on its own goroutine, turning a panic into a KindWorker error.
func (f *Fetcher) parseInWorker(data []byte) (Packages, error) {
	var (
		pc   panics.Catcher
		pkgs Packages
		err  error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		pc.Try(func() {
			pkgs, err = f.parser.Parse(data)
		})
	}()
	<-done

	if r := pc.Recovered(); r != nil {
		slog.Error("parse worker panicked", slog.Any("panic", r.Value))
		return nil, &Error{Kind: KindWorker, Err: fmt.Errorf("parse worker panicked: %v", r.Value)}
	}
	return pkgs, err
}

type persistWriter struct {
	w io.Writer
}

func (p persistWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	if err != nil {
		return n, errPersistAborted
	}
	return n, nil
}
