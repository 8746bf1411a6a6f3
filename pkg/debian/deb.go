package debian

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/blakesmith/ar"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// ParagraphFromDeb reads the control paragraph from a .deb.
func ParagraphFromDeb(in io.Reader) (*Paragraph, error) {
	for reader := ar.NewReader(in); ; {
		// find control.tar* or die trying
		hdr, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, fmt.Errorf("reading archive: %w", err)
		}

		controlIn, closer, err := openControlTar(path.Clean(hdr.Name), reader)
		if err != nil {
			return nil, err
		} else if controlIn == nil {
			continue
		}
		defer closer()

		// Find ./control within the (possibly compressed) tarball
		for tarR := tar.NewReader(controlIn); ; {
			hdr, err := tarR.Next()
			if errors.Is(err, io.EOF) {
				break
			} else if err != nil {
				return nil, fmt.Errorf("reading control archive: %w", err)
			}
			if path.Clean(hdr.Name) != "control" {
				continue
			}

			graphs, err := ParseControlFile(tarR)
			if err != nil {
				return nil, fmt.Errorf("parsing control file: %w", err)
			}
			if len(graphs) == 1 {
				return &graphs[0], nil
			}
			return nil, fmt.Errorf("control file has %d paragraphs", len(graphs))
		}
	}
	return nil, nil
}

func openControlTar(name string, in io.Reader) (io.Reader, func(), error) {
	switch name {
	case "control.tar":
		return in, func() {}, nil
	case "control.tar.gz":
		gzIn, err := gzip.NewReader(in)
		if err != nil {
			return nil, nil, fmt.Errorf("creating gzip reader: %w", err)
		}
		return gzIn, func() { _ = gzIn.Close() }, nil
	case "control.tar.xz":
		xzIn, err := xz.NewReader(in)
		if err != nil {
			return nil, nil, fmt.Errorf("creating xz reader: %w", err)
		}
		return xzIn, func() {}, nil
	case "control.tar.zst":
		zstIn, err := zstd.NewReader(in)
		if err != nil {
			return nil, nil, fmt.Errorf("creating zstd reader: %w", err)
		}
		return zstIn, zstIn.Close, nil
	default:
		return nil, nil, nil
	}
}

// ParagraphFromDebFile reads the control paragraph from a .deb file.
func ParagraphFromDebFile(fn string) (*Paragraph, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ParagraphFromDeb(f)
}
