package mirror_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/thepwagner/aoscpkgs/pkg/mirror"
)

func TestRun(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := mirror.Run(ctx, mirror.Config{Addr: "127.0.0.1:0", Root: t.TempDir()})
	assert.NoError(t, err)
}

func TestRun_MissingRoot(t *testing.T) {
	t.Parallel()

	err := mirror.Run(context.Background(), mirror.Config{Addr: "127.0.0.1:0", Root: filepath.Join(t.TempDir(), "missing")})
	assert.ErrorContains(t, err, "mirror root")
}
