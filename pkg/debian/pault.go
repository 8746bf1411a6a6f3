package debian

import (
	"errors"
	"io"
	"strings"

	"pault.ag/go/debian/control"
)

// Pault tokenizes with pault.ag/go/debian/control. Values come out in the same
// form Strict produces; the one difference is that "#" comment lines are skipped
// rather than rejected.
var Pault Tokenizer = TokenizerFunc(func(text string) ([]Paragraph, error) {
	prepared, err := prepareForPault(text)
	if err != nil {
		return nil, err
	}

	reader, err := control.NewParagraphReader(strings.NewReader(prepared), nil)
	if err != nil {
		return nil, &SyntaxError{Msg: "opening paragraph reader", Err: err}
	}

	var graphs []Paragraph
	for {
		p, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return graphs, nil
		} else if err != nil {
			return nil, &SyntaxError{Msg: "reading paragraph", Err: err}
		}

		graph := make(Paragraph, len(p.Values))
		for k, v := range p.Values {
			if k == "" {
				return nil, &SyntaxError{Text: v, Msg: "continuation without a field"}
			}
			graph[k] = fromPaultValue(v)
		}
		graphs = append(graphs, graph)
	}
})

// prepareForPault validates line structure and rewrites text for the paragraph reader.
// Whitespace-only lines become empty, since the reader only splits paragraphs on
// empty lines. Continuation lines gain one leading space because the reader strips
// the first character (and turns " ." into an empty line).
func prepareForPault(text string) (string, error) {
	var (
		b       strings.Builder
		inField bool
	)
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lineNo := i + 1
		line = strings.TrimRight(line, "\r")

		switch {
		case strings.TrimSpace(line) == "":
			inField = false
			line = ""
		case line[0] == ' ' || line[0] == '\t':
			if !inField {
				return "", &SyntaxError{Line: lineNo, Text: line, Msg: "continuation without a field"}
			}
			line = " " + line
		case line[0] == '#':
		default:
			if _, _, err := splitField(lineNo, line); err != nil {
				return "", err
			}
			inField = true
		}

		b.WriteString(line)
		if i < len(lines)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}

// fromPaultValue converts a multi-line value to Strict's form. The reader ends
// every continuation with "\n"; a value whose first line was empty starts with
// the (preserved) indentation of its first continuation.
func fromPaultValue(v string) string {
	trimmed, multiline := strings.CutSuffix(v, "\n")
	if !multiline {
		return v
	}
	if strings.HasPrefix(trimmed, " ") || strings.HasPrefix(trimmed, "\t") {
		return "\n" + trimmed
	}
	return trimmed
}

// TokenizerByName resolves a configured tokenizer name. The empty name is Strict.
func TokenizerByName(name string) (Tokenizer, bool) {
	switch name {
	case "", "strict":
		return Strict, true
	case "pault":
		return Pault, true
	default:
		return nil, false
	}
}
