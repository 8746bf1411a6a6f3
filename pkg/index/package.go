package index

import (
	"strconv"
	"strings"

	"github.com/thepwagner/aoscpkgs/pkg/debian"
)

// Field is a control field name understood by Package.
type Field string

const (
	FieldPackage       Field = "Package"
	FieldArchitecture  Field = "Architecture"
	FieldVersion       Field = "Version"
	FieldSection       Field = "Section"
	FieldInstalledSize Field = "Installed-Size"
	FieldMaintainer    Field = "Maintainer"
	FieldFilename      Field = "Filename"
	FieldSize          Field = "Size"
	FieldSHA256        Field = "SHA256"
	FieldDescription   Field = "Description"
	FieldDepends       Field = "Depends"
	FieldProvides      Field = "Provides"
	FieldConflicts     Field = "Conflicts"
	FieldReplaces      Field = "Replaces"
	FieldBreaks        Field = "Breaks"
	FieldFeatures      Field = "X-AOSC-Features"
)

// Package is one stanza of a Packages index.
// Dependency fields hold the raw relationship text; nothing here interprets it.
type Package struct {
	Name          string `yaml:"package"`
	Architecture  string `yaml:"architecture"`
	Version       string `yaml:"version"`
	Section       string `yaml:"section"`
	InstalledSize uint64 `yaml:"installedSize"`
	Maintainer    string `yaml:"maintainer"`
	Filename      string `yaml:"filename"`
	Size          uint64 `yaml:"size"`
	SHA256        string `yaml:"sha256"`
	Description   string `yaml:"description"`

	Depends   Optional[string] `yaml:"depends,omitempty"`
	Provides  Optional[string] `yaml:"provides,omitempty"`
	Conflicts Optional[string] `yaml:"conflicts,omitempty"`
	Replaces  Optional[string] `yaml:"replaces,omitempty"`
	Breaks    Optional[string] `yaml:"breaks,omitempty"`
	Features  Optional[string] `yaml:"features,omitempty"`
}

// Packages is an index in source order. Names may repeat.
type Packages []Package

// FromParagraph maps a paragraph onto a Package. Missing or malformed fields
// fall back to their zero value; this never fails.
func FromParagraph(p debian.Paragraph) Package {
	return Package{
		Name:          p[string(FieldPackage)],
		Architecture:  p[string(FieldArchitecture)],
		Version:       p[string(FieldVersion)],
		Section:       p[string(FieldSection)],
		InstalledSize: parseSize(p[string(FieldInstalledSize)]),
		Maintainer:    p[string(FieldMaintainer)],
		Filename:      p[string(FieldFilename)],
		Size:          parseSize(p[string(FieldSize)]),
		SHA256:        p[string(FieldSHA256)],
		Description:   p[string(FieldDescription)],

		Depends:   lookup(p, FieldDepends),
		Provides:  lookup(p, FieldProvides),
		Conflicts: lookup(p, FieldConflicts),
		Replaces:  lookup(p, FieldReplaces),
		Breaks:    lookup(p, FieldBreaks),
		Features:  lookup(p, FieldFeatures),
	}
}

func lookup(p debian.Paragraph, f Field) Optional[string] {
	if v, ok := p[string(f)]; ok {
		return Some(v)
	}
	return None[string]()
}

func parseSize(s string) uint64 {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// Paragraph renders the package back into control fields.
// Absent optional fields are omitted.
func (p Package) Paragraph() debian.Paragraph {
	graph := debian.Paragraph{
		string(FieldPackage):       p.Name,
		string(FieldArchitecture):  p.Architecture,
		string(FieldVersion):       p.Version,
		string(FieldSection):       p.Section,
		string(FieldInstalledSize): strconv.FormatUint(p.InstalledSize, 10),
		string(FieldMaintainer):    p.Maintainer,
		string(FieldFilename):      p.Filename,
		string(FieldSize):          strconv.FormatUint(p.Size, 10),
		string(FieldSHA256):        p.SHA256,
		string(FieldDescription):   p.Description,
	}
	for f, v := range map[Field]Optional[string]{
		FieldDepends:   p.Depends,
		FieldProvides:  p.Provides,
		FieldConflicts: p.Conflicts,
		FieldReplaces:  p.Replaces,
		FieldBreaks:    p.Breaks,
		FieldFeatures:  p.Features,
	} {
		if s, ok := v.Get(); ok {
			graph[string(f)] = s
		}
	}
	return graph
}

// Paragraphs renders every package, in order.
func (pkgs Packages) Paragraphs() []debian.Paragraph {
	graphs := make([]debian.Paragraph, 0, len(pkgs))
	for _, p := range pkgs {
		graphs = append(graphs, p.Paragraph())
	}
	return graphs
}
