package store

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// PackagesFile is the name every index is persisted under.
const PackagesFile = "Packages"

// Dir persists files into a single directory, creating it on first write.
type Dir struct {
	Path string
}

func NewDir(path string) *Dir {
	return &Dir{Path: path}
}

// Create truncates (or creates) name for writing.
func (d *Dir) Create(name string) (*os.File, error) {
	if err := os.MkdirAll(d.Path, 0755); err != nil {
		return nil, fmt.Errorf("creating directory: %w", err)
	}
	p := filepath.Join(d.Path, name)
	f, err := os.Create(p)
	if err != nil {
		return nil, fmt.Errorf("creating file: %w", err)
	}
	slog.Debug("persisting", slog.String("path", p))
	return f, nil
}

// WriteFile replaces name with data.
func (d *Dir) WriteFile(name string, data []byte) error {
	f, err := d.Create(name)
	if err != nil {
		return err
	}
	return writeAndClose(f, data)
}

// WriteFrom replaces name with the contents of r.
func (d *Dir) WriteFrom(name string, r io.Reader) (int64, error) {
	f, err := d.Create(name)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, r)
	if err != nil {
		_ = f.Close()
		return n, fmt.Errorf("writing %s: %w", f.Name(), err)
	}
	if err := f.Close(); err != nil {
		return n, fmt.Errorf("closing %s: %w", f.Name(), err)
	}
	return n, nil
}

func writeAndClose(f *os.File, data []byte) error {
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", f.Name(), err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", f.Name(), err)
	}
	return nil
}
