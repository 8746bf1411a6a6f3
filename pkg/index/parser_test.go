package index_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thepwagner/aoscpkgs/pkg/debian"
	"github.com/thepwagner/aoscpkgs/pkg/index"
)

const bashStanza = `Package: bash
Architecture: amd64
Version: 5.2-1
Installed-Size: 3200
Filename: pool/bash_5.2-1_amd64.deb
Size: 1048576
SHA256: abc123
Description: the Bourne Again shell
`

const twoStanzas = `Package: bash
Version: 5.2-1
Depends: glibc, ncurses

Package: zsh
Version: 5.9
X-AOSC-Features: interactive
Description: Z shell
 with a second line
`

func TestParse_Bash(t *testing.T) {
	t.Parallel()

	pkgs, err := index.Parse([]byte(bashStanza))
	require.NoError(t, err)
	require.Len(t, pkgs, 1)

	bash := pkgs[0]
	assert.Equal(t, "bash", bash.Name)
	assert.Equal(t, "amd64", bash.Architecture)
	assert.Equal(t, "5.2-1", bash.Version)
	assert.Equal(t, uint64(3200), bash.InstalledSize)
	assert.Equal(t, uint64(1048576), bash.Size)
	assert.Equal(t, "pool/bash_5.2-1_amd64.deb", bash.Filename)
	assert.Equal(t, "abc123", bash.SHA256)
	assert.Equal(t, "the Bourne Again shell", bash.Description)
	assert.Equal(t, "", bash.Section)
	assert.Equal(t, "", bash.Maintainer)
	assert.False(t, bash.Depends.IsSome())
	assert.False(t, bash.Features.IsSome())
}

func TestParse_Order(t *testing.T) {
	t.Parallel()

	pkgs, err := index.Parse([]byte(twoStanzas))
	require.NoError(t, err)
	require.Len(t, pkgs, 2)

	assert.Equal(t, "bash", pkgs[0].Name)
	deps, ok := pkgs[0].Depends.Get()
	assert.True(t, ok)
	assert.Equal(t, "glibc, ncurses", deps)

	assert.Equal(t, "zsh", pkgs[1].Name)
	assert.Equal(t, "interactive", pkgs[1].Features.OrElse(""))
	assert.Equal(t, "Z shell\n with a second line", pkgs[1].Description)
}

func TestParse_Empty(t *testing.T) {
	t.Parallel()

	for _, doc := range []string{"", "\n\n", "  \n\t\n"} {
		pkgs, err := index.Parse([]byte(doc))
		require.NoError(t, err)
		assert.NotNil(t, pkgs)
		assert.Empty(t, pkgs)
	}
}

func TestParse_Sizes(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		doc       string
		installed uint64
		size      uint64
	}{
		"missing":     {doc: "Package: a\n"},
		"non-numeric": {doc: "Package: a\nInstalled-Size: lots\nSize: 12kb\n"},
		"negative":    {doc: "Package: a\nInstalled-Size: -1\nSize: -20\n"},
		"padded":      {doc: "Package: a\nInstalled-Size:   42  \nSize: 7\n", installed: 42, size: 7},
	}

	for label, tc := range cases {
		tc := tc
		t.Run(label, func(t *testing.T) {
			t.Parallel()
			pkg, err := index.ParsePackage([]byte(tc.doc))
			require.NoError(t, err)
			assert.Equal(t, tc.installed, pkg.InstalledSize)
			assert.Equal(t, tc.size, pkg.Size)
		})
	}
}

func TestParse_ControlFormat(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"no colon":              "Package: a\nnot a field\n",
		"leading continuation":  " orphan\nPackage: a\n",
		"continuation at start": "Package: a\n\n continued\n",
		"space in key":          "Pack age: a\n",
	}

	for label, doc := range cases {
		doc := doc
		t.Run(label, func(t *testing.T) {
			t.Parallel()
			_, err := index.Parse([]byte(doc))
			require.Error(t, err)
			assert.True(t, index.IsKind(err, index.KindControlFormat), err.Error())

			var syntaxErr *debian.SyntaxError
			assert.True(t, errors.As(err, &syntaxErr))
		})
	}
}

func TestParse_Encoding(t *testing.T) {
	t.Parallel()

	_, err := index.Parse([]byte("Package: caf\xe9\n"))
	require.Error(t, err)
	assert.True(t, index.IsKind(err, index.KindEncoding))

	var encErr *debian.EncodingError
	require.True(t, errors.As(err, &encErr))
	assert.Equal(t, 12, encErr.Offset)
}

func TestParsePackage(t *testing.T) {
	t.Parallel()

	pkg, err := index.ParsePackage([]byte(bashStanza))
	require.NoError(t, err)
	assert.Equal(t, "bash", pkg.Name)

	_, err = index.ParsePackage([]byte(twoStanzas))
	assert.True(t, index.IsKind(err, index.KindControlFormat))

	_, err = index.ParsePackage(nil)
	assert.True(t, index.IsKind(err, index.KindControlFormat))
}

func TestParse_RoundTrip(t *testing.T) {
	t.Parallel()

	original, err := index.Parse([]byte(bashStanza + "\n" + twoStanzas))
	require.NoError(t, err)
	require.Len(t, original, 3)

	var buf bytes.Buffer
	require.NoError(t, debian.WriteControlFile(&buf, original.Paragraphs()...))

	reparsed, err := index.Parse(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, original, reparsed)
}

func TestParser_Pault(t *testing.T) {
	t.Parallel()

	strict, err := index.Parse([]byte(twoStanzas))
	require.NoError(t, err)

	pkgs, err := index.Parser{Tokenizer: debian.Pault}.Parse([]byte(twoStanzas))
	require.NoError(t, err)
	require.Len(t, pkgs, 2)
	assert.Equal(t, strict[0].Name, pkgs[0].Name)
	assert.Equal(t, strict[0].Depends, pkgs[0].Depends)
	assert.Equal(t, strict[1].Name, pkgs[1].Name)
}

func TestError(t *testing.T) {
	t.Parallel()

	err := &index.Error{Kind: index.KindTransport, URL: "https://example.test/Packages", Err: errors.New("boom")}
	assert.Equal(t, "[transport] https://example.test/Packages: boom", err.Error())
	assert.True(t, index.IsKind(err, index.KindTransport))
	assert.False(t, index.IsKind(err, index.KindIO))
	assert.False(t, index.IsKind(errors.New("plain"), index.KindTransport))
}
