package debian_test

import (
	"archive/tar"
	"bytes"
	"testing"
	"time"

	"github.com/blakesmith/ar"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thepwagner/aoscpkgs/pkg/debian"
	"github.com/ulikunitz/xz"
)

const testControl = `Package: foobar
Version: 1.2.3
Architecture: amd64
Maintainer: pwagner
Installed-Size: 0
Section: utils
Description: aoscpkgs test package
`

func TestParagraphFromDeb(t *testing.T) {
	t.Parallel()

	expected := &debian.Paragraph{
		"Architecture":   "amd64",
		"Description":    "aoscpkgs test package",
		"Installed-Size": "0",
		"Maintainer":     "pwagner",
		"Package":        "foobar",
		"Section":        "utils",
		"Version":        "1.2.3",
	}

	for _, member := range []string{"control.tar", "control.tar.gz", "control.tar.xz"} {
		member := member
		t.Run(member, func(t *testing.T) {
			t.Parallel()
			graph, err := debian.ParagraphFromDeb(bytes.NewReader(mockDeb(t, member, testControl)))
			require.NoError(t, err)
			assert.Equal(t, expected, graph)
		})
	}
}

func TestParagraphFromDeb_NoControl(t *testing.T) {
	t.Parallel()

	graph, err := debian.ParagraphFromDeb(bytes.NewReader(mockDeb(t, "data.tar", testControl)))
	require.NoError(t, err)
	assert.Nil(t, graph)
}

func mockDeb(tb testing.TB, member, control string) []byte {
	tb.Helper()

	var tarBuf bytes.Buffer
	tw := tar.NewWriter(&tarBuf)
	require.NoError(tb, tw.WriteHeader(&tar.Header{Name: "./control", Mode: 0644, Size: int64(len(control))}))
	_, err := tw.Write([]byte(control))
	require.NoError(tb, err)
	require.NoError(tb, tw.Close())

	var body bytes.Buffer
	switch member {
	case "control.tar.gz":
		gw := gzip.NewWriter(&body)
		_, err = gw.Write(tarBuf.Bytes())
		require.NoError(tb, err)
		require.NoError(tb, gw.Close())
	case "control.tar.xz":
		xw, err := xz.NewWriter(&body)
		require.NoError(tb, err)
		_, err = xw.Write(tarBuf.Bytes())
		require.NoError(tb, err)
		require.NoError(tb, xw.Close())
	default:
		body.Write(tarBuf.Bytes())
	}

	var deb bytes.Buffer
	w := ar.NewWriter(&deb)
	require.NoError(tb, w.WriteGlobalHeader())
	for _, f := range []struct {
		name string
		data []byte
	}{
		{"debian-binary", []byte("2.0\n")},
		{member, body.Bytes()},
	} {
		require.NoError(tb, w.WriteHeader(&ar.Header{Name: f.name, Size: int64(len(f.data)), Mode: 0644, ModTime: time.Unix(0, 0)}))
		_, err := w.Write(f.data)
		require.NoError(tb, err)
	}
	return deb.Bytes()
}
