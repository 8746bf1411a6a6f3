package index

import (
	"fmt"

	"github.com/thepwagner/aoscpkgs/pkg/debian"
)

// Parser decodes Packages indices. The zero value uses debian.Strict.
type Parser struct {
	Tokenizer debian.Tokenizer
}

// Parse decodes a whole index. It is all-or-nothing: any structural problem
// rejects the document, while bad field values only degrade that field.
func (p Parser) Parse(data []byte) (Packages, error) {
	text, err := debian.ValidateText(data)
	if err != nil {
		return nil, &Error{Kind: KindEncoding, Err: err}
	}

	tok := p.Tokenizer
	if tok == nil {
		tok = debian.Strict
	}
	graphs, err := tok.Paragraphs(text)
	if err != nil {
		return nil, &Error{Kind: KindControlFormat, Err: err}
	}

	pkgs := make(Packages, 0, len(graphs))
	for _, g := range graphs {
		pkgs = append(pkgs, FromParagraph(g))
	}
	return pkgs, nil
}

// ParsePackage decodes a document holding exactly one paragraph.
func (p Parser) ParsePackage(data []byte) (Package, error) {
	pkgs, err := p.Parse(data)
	if err != nil {
		return Package{}, err
	}
	if len(pkgs) != 1 {
		return Package{}, &Error{Kind: KindControlFormat, Err: fmt.Errorf("expected 1 paragraph, found %d", len(pkgs))}
	}
	return pkgs[0], nil
}

// Parse decodes data with the default Parser.
func Parse(data []byte) (Packages, error) {
	return Parser{}.Parse(data)
}

// ParsePackage decodes a single paragraph with the default Parser.
func ParsePackage(data []byte) (Package, error) {
	return Parser{}.ParsePackage(data)
}
