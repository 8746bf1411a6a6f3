package debian

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"
)

// Paragraph is a single stanza of a control file, keyed by field name.
// Continuation lines are kept verbatim in the value, joined with "\n".
type Paragraph map[string]string

// Tokenizer splits control file text into paragraphs.
type Tokenizer interface {
	Paragraphs(text string) ([]Paragraph, error)
}

// TokenizerFunc adapts a function to the Tokenizer interface.
type TokenizerFunc func(text string) ([]Paragraph, error)

func (f TokenizerFunc) Paragraphs(text string) ([]Paragraph, error) {
	return f(text)
}

// Strict is the default Tokenizer. Any line that is neither a field nor a continuation is rejected.
var Strict Tokenizer = TokenizerFunc(ParseControlString)

// SyntaxError reports a structurally invalid control file.
type SyntaxError struct {
	Line int
	Text string
	Msg  string
	Err  error
}

func (e *SyntaxError) Error() string {
	if e.Line == 0 {
		if e.Err != nil {
			return fmt.Sprintf("control syntax: %s: %v", e.Msg, e.Err)
		}
		return "control syntax: " + e.Msg
	}
	return fmt.Sprintf("control syntax: line %d: %s: %q", e.Line, e.Msg, e.Text)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// EncodingError reports control file bytes that are not valid UTF-8.
type EncodingError struct {
	Offset int
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("invalid UTF-8 at byte offset %d", e.Offset)
}

// ValidateText checks b is UTF-8 and returns it as a string.
func ValidateText(b []byte) (string, error) {
	if utf8.Valid(b) {
		return string(b), nil
	}
	for off := 0; off < len(b); {
		r, size := utf8.DecodeRune(b[off:])
		if r == utf8.RuneError && size <= 1 {
			return "", &EncodingError{Offset: off}
		}
		off += size
	}
	return "", &EncodingError{}
}

// ParseControlFile reads every paragraph from a control file.
func ParseControlFile(in io.Reader) ([]Paragraph, error) {
	b, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("reading control file: %w", err)
	}
	text, err := ValidateText(b)
	if err != nil {
		return nil, err
	}
	return ParseControlString(text)
}

// ParseControlString splits text into paragraphs separated by blank lines.
func ParseControlString(text string) ([]Paragraph, error) {
	var (
		graphs  []Paragraph
		current Paragraph
		lastKey string
	)
	flush := func() {
		if current != nil {
			graphs = append(graphs, current)
		}
		current = nil
		lastKey = ""
	}

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), len(text)+1)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimRight(scanner.Text(), "\r")

		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}

		if line[0] == ' ' || line[0] == '\t' {
			if lastKey == "" {
				return nil, &SyntaxError{Line: lineNo, Text: line, Msg: "continuation without a field"}
			}
			current[lastKey] += "\n" + strings.TrimRight(line, " \t")
			continue
		}

		key, value, err := splitField(lineNo, line)
		if err != nil {
			return nil, err
		}
		if current == nil {
			current = Paragraph{}
		}
		current[key] = value
		lastKey = key
	}
	if err := scanner.Err(); err != nil {
		return nil, &SyntaxError{Msg: "scanning", Err: err}
	}
	flush()

	return graphs, nil
}

// splitField parses a "Key: value" line, trimming the value.
func splitField(lineNo int, line string) (string, string, error) {
	key, value, ok := strings.Cut(line, ":")
	if !ok {
		return "", "", &SyntaxError{Line: lineNo, Text: line, Msg: "expected \"Key: value\""}
	}
	// Stricter than deb822, which only forbids colons and a leading space: Packages
	// field names never contain whitespace, so "Pack age: a" is treated as corruption.
	if key == "" || strings.ContainsAny(key, " \t") {
		return "", "", &SyntaxError{Line: lineNo, Text: line, Msg: "invalid field name"}
	}
	return key, strings.TrimSpace(value), nil
}

// fieldOrder is the conventional order of fields in a Packages stanza.
var fieldOrder = []string{
	"Package",
	"Source",
	"Version",
	"Section",
	"Priority",
	"Architecture",
	"Essential",
	"Installed-Size",
	"Maintainer",
	"Pre-Depends",
	"Depends",
	"Recommends",
	"Suggests",
	"Breaks",
	"Conflicts",
	"Replaces",
	"Provides",
	"X-AOSC-Features",
	"Filename",
	"Size",
	"MD5sum",
	"SHA256",
	"Description",
}

// Keys returns the paragraph's field names, well-known fields first.
func (p Paragraph) Keys() []string {
	keys := make([]string, 0, len(p))
	seen := make(map[string]struct{}, len(p))
	for _, k := range fieldOrder {
		if _, ok := p[k]; ok {
			keys = append(keys, k)
			seen[k] = struct{}{}
		}
	}
	var rest []string
	for k := range p {
		if _, ok := seen[k]; !ok {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

// WriteControlFile writes paragraphs separated by blank lines.
func WriteControlFile(out io.Writer, graphs ...Paragraph) error {
	var buf bytes.Buffer
	for i, p := range graphs {
		if i > 0 {
			buf.WriteByte('\n')
		}
		for _, k := range p.Keys() {
			v := p[k]
			if strings.HasPrefix(v, "\n") {
				// multiline value with an empty first line, e.g. SHA256 lists in a Release
				fmt.Fprintf(&buf, "%s:%s\n", k, v)
				continue
			}
			fmt.Fprintf(&buf, "%s: %s\n", k, v)
		}
	}
	_, err := out.Write(buf.Bytes())
	return err
}
