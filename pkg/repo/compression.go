package repo

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"
	"gopkg.in/yaml.v3"
)

type Compression string

const (
	CompressionNone Compression = ""
	CompressionGZIP Compression = "gz"
	CompressionXZ   Compression = "xz"
)

// ParseCompression is LookupCompression with unknown names treated as uncompressed.
func ParseCompression(s string) Compression {
	c, _ := LookupCompression(s)
	return c
}

// LookupCompression resolves a compression name or file extension.
func LookupCompression(s string) (Compression, bool) {
	switch s {
	case "", "none":
		return CompressionNone, true
	case "gz", ".gz", "gzip":
		return CompressionGZIP, true
	case "xz", ".xz":
		return CompressionXZ, true
	default:
		return CompressionNone, false
	}
}

// UnmarshalYAML accepts the names understood by LookupCompression.
func (c *Compression) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, ok := LookupCompression(s)
	if !ok {
		return fmt.Errorf("unknown compression %q", s)
	}
	*c = parsed
	return nil
}

func (c Compression) String() string {
	return string(c)
}

func (c Compression) Extension() string {
	switch c {
	case CompressionGZIP:
		return ".gz"
	case CompressionXZ:
		return ".xz"
	default:
		return ""
	}
}

// NewReader wraps in with a streaming decoder. CompressionNone returns in unchanged.
func (c Compression) NewReader(in io.Reader) (io.Reader, error) {
	switch c {
	case CompressionXZ:
		r, err := xz.NewReader(in)
		if err != nil {
			return nil, fmt.Errorf("creating xz reader: %w", err)
		}
		return r, nil
	case CompressionGZIP:
		r, err := gzip.NewReader(in)
		if err != nil {
			return nil, fmt.Errorf("creating gzip reader: %w", err)
		}
		return r, nil
	case CompressionNone:
		return in, nil
	default:
		return nil, fmt.Errorf("unknown compression %q", c)
	}
}

// Decompress decodes a fully buffered payload.
func (c Compression) Decompress(data []byte) ([]byte, error) {
	if c == CompressionNone {
		return data, nil
	}
	r, err := c.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, fmt.Errorf("decompressing %s: %w", c, err)
	}
	return buf.Bytes(), nil
}

// NewWriter wraps out with a streaming encoder. The caller must Close it to flush.
func (c Compression) NewWriter(out io.Writer) (io.WriteCloser, error) {
	switch c {
	case CompressionXZ:
		return xz.NewWriter(out)
	case CompressionGZIP:
		return gzip.NewWriter(out), nil
	case CompressionNone:
		return nopWriteCloser{out}, nil
	default:
		return nil, fmt.Errorf("unknown compression %q", c)
	}
}

// Compress encodes a fully buffered payload.
func (c Compression) Compress(data []byte) ([]byte, error) {
	if c == CompressionNone {
		return data, nil
	}
	var buf bytes.Buffer
	w, err := c.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("compressing %s: %w", c, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("compressing %s: %w", c, err)
	}
	return buf.Bytes(), nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
