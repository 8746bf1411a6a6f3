package cli_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thepwagner/aoscpkgs/pkg/cli"
	"github.com/thepwagner/aoscpkgs/pkg/mirror"
)

const packagesText = `Package: bash
Architecture: amd64
Version: 5.2-1
Installed-Size: 3200
Description: the Bourne Again shell

Package: oma
Architecture: amd64
Version: 1.14.514
Depends: bash
`

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.yml")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func testMirror(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "dists", "stable", "main", "binary-amd64")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Packages"), []byte(packagesText), 0644))

	srv := httptest.NewServer(mirror.NewHandler(root))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestFetch(t *testing.T) {
	t.Parallel()
	mirrorURL := testMirror(t)

	cases := map[string]struct {
		args     []string
		contains []string
	}{
		"summary": {
			args:     nil,
			contains: []string{"2 packages from " + mirrorURL + "/dists/stable/main/binary-amd64/Packages.xz"},
		},
		"yaml async": {
			args:     []string{"--async", "-o", "yaml"},
			contains: []string{"package: bash", "installedSize: 3200", "depends: bash"},
		},
		"control gz": {
			args:     []string{"--compression", "gz", "-o", "control"},
			contains: []string{"Package: oma\n", "Depends: bash\n"},
		},
		"plain pault": {
			args:     []string{"--compression", "none", "--tokenizer", "pault", "-o", "control"},
			contains: []string{"Package: bash\n"},
		},
	}

	for label, tc := range cases {
		tc := tc
		t.Run(label, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			args := append([]string{"fetch", "--arch", "amd64", "--mirror", mirrorURL, "--dir", dir, "--progress=false"}, tc.args...)
			out, err := runCmd(t, args...)
			require.NoError(t, err)
			for _, s := range tc.contains {
				assert.Contains(t, out, s)
			}

			persisted, err := os.ReadFile(filepath.Join(dir, "Packages"))
			require.NoError(t, err)
			assert.Equal(t, packagesText, string(persisted))
		})
	}
}

func TestFetch_Progress(t *testing.T) {
	t.Parallel()
	mirrorURL := testMirror(t)

	out, err := runCmd(t, "fetch", "--arch", "amd64", "--mirror", mirrorURL, "--dir", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "2 packages")
}

func TestFetch_Errors(t *testing.T) {
	t.Parallel()
	mirrorURL := testMirror(t)

	_, err := runCmd(t, "fetch", "--arch", "arm64", "--mirror", mirrorURL, "--dir", t.TempDir(), "--progress=false")
	assert.ErrorContains(t, err, "[transport]")

	_, err = runCmd(t, "fetch", "--arch", "amd64", "--mirror", mirrorURL, "--dir", t.TempDir(), "--compression", "bz2")
	assert.ErrorContains(t, err, "unknown compression")

	_, err = runCmd(t, "fetch", "--arch", "amd64", "--mirror", mirrorURL, "--dir", t.TempDir(), "--progress=false", "-o", "json")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestFetch_UnknownOutputBeforeDownload(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)
	dir := filepath.Join(t.TempDir(), "out")

	_, err := runCmd(t, "fetch", "--arch", "amd64", "--mirror", srv.URL, "--dir", dir, "--progress=false", "-o", "json")
	assert.ErrorContains(t, err, "unknown output format \"json\"")
	assert.Equal(t, int32(0), requests.Load())
	assert.NoDirExists(t, dir)
}

func TestDetect(t *testing.T) {
	t.Parallel()

	out, err := runCmd(t, "detect")
	require.NoError(t, err)
	assert.Contains(t, out, "arch: ")
	assert.Contains(t, out, "flavor: ")
}
