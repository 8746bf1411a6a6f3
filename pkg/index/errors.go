package index

import (
	"errors"
	"fmt"
)

// Kind classifies a fetch failure.
type Kind int

const (
	KindTransport Kind = iota + 1
	KindIO
	KindDecompression
	KindEncoding
	KindControlFormat
	KindWorker
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindIO:
		return "io"
	case KindDecompression:
		return "decompression"
	case KindEncoding:
		return "encoding"
	case KindControlFormat:
		return "control format"
	case KindWorker:
		return "worker failure"
	default:
		return "unknown"
	}
}

// Error is returned by every fetch and parse operation in this package.
type Error struct {
	Kind Kind
	URL  string
	Err  error
}

func (e *Error) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.URL, e.Err)
	}
	return fmt.Sprintf("[%s] %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

func withURL(err error, url string) error {
	var e *Error
	if errors.As(err, &e) && e.URL == "" {
		e.URL = url
	}
	return err
}
