package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/thepwagner/aoscpkgs/pkg/index"
	"github.com/thepwagner/aoscpkgs/pkg/mirror"
	"github.com/thepwagner/aoscpkgs/pkg/repo"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "aoscpkgs.yml"
	DefaultDir        = "~/.cache/aoscpkgs"
	DefaultBranch     = "stable"
)

type Config struct {
	Arch   string        `yaml:"arch"`
	Branch string        `yaml:"branch"`
	Index  index.Config  `yaml:"index"`
	Serve  mirror.Config `yaml:"serve"`
}

// compressionKeys records which compression keys the config file sets.
type compressionKeys struct {
	Index struct {
		Compressed  *yaml.Node `yaml:"compressed"`
		Compression *yaml.Node `yaml:"compression"`
	} `yaml:"index"`
}

func loadConfig(path string) (*Config, error) {
	var (
		cfg  Config
		keys compressionKeys
	)

	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("error expanding config path: %w", err)
	}
	f, err := os.Open(expanded)
	if err == nil {
		defer f.Close()
		var doc yaml.Node
		if err := yaml.NewDecoder(f).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("error decoding config: %w", err)
		}
		if doc.Kind != 0 {
			if err := doc.Decode(&cfg); err != nil {
				return nil, fmt.Errorf("error decoding config: %w", err)
			}
			if err := doc.Decode(&keys); err != nil {
				return nil, fmt.Errorf("error decoding config: %w", err)
			}
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error opening config: %w", err)
	} else {
		slog.Debug("no config file found, using defaults", slog.String("path", expanded))
	}

	if cfg.Branch == "" {
		cfg.Branch = DefaultBranch
	}
	if cfg.Index.Dir == "" {
		cfg.Index.Dir = DefaultDir
	}
	if keys.Index.Compressed == nil && keys.Index.Compression == nil {
		cfg.Index.Compression = repo.CompressionXZ
	}
	if cfg.Index.Upstream.URL == "" {
		cfg.Index.Upstream.URL = repo.DefaultMirror
	}
	if cfg.Serve.Addr == "" {
		cfg.Serve.Addr = ":8080"
	}
	if cfg.Serve.Root == "" {
		cfg.Serve.Root = "."
	}

	if cfg.Index.Dir, err = homedir.Expand(cfg.Index.Dir); err != nil {
		return nil, fmt.Errorf("error expanding index dir: %w", err)
	}
	if cfg.Serve.Root, err = homedir.Expand(cfg.Serve.Root); err != nil {
		return nil, fmt.Errorf("error expanding mirror root: %w", err)
	}
	return &cfg, nil
}
