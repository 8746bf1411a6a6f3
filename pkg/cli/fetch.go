package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/thepwagner/aoscpkgs/pkg/aosc"
	"github.com/thepwagner/aoscpkgs/pkg/debian"
	"github.com/thepwagner/aoscpkgs/pkg/index"
	"github.com/thepwagner/aoscpkgs/pkg/repo"
	"github.com/thepwagner/aoscpkgs/pkg/store"
	"gopkg.in/yaml.v3"
)

type fetchFlags struct {
	arch        string
	branch      string
	mirror      string
	dir         string
	compression string
	tokenizer   string
	output      string
	async       bool
	progress    bool
}

// NewFetchCmd creates the fetch command.
func NewFetchCmd(cfg *Config) *cobra.Command {
	var flags fetchFlags

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download, persist and decode a Packages index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.apply(cmd, cfg); err != nil {
				return err
			}
			return runFetch(cmd, cfg, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.arch, "arch", "a", "", "Architecture to fetch (defaults to the running system)")
	cmd.Flags().StringVarP(&flags.branch, "branch", "b", DefaultBranch, "Repository branch")
	cmd.Flags().StringVarP(&flags.mirror, "mirror", "m", repo.DefaultMirror, "Mirror base URL")
	cmd.Flags().StringVarP(&flags.dir, "dir", "d", DefaultDir, "Directory the index is persisted into")
	cmd.Flags().StringVar(&flags.compression, "compression", "xz", "Transfer compression: xz, gz or none")
	cmd.Flags().StringVar(&flags.tokenizer, "tokenizer", "strict", "Control file tokenizer: strict or pault")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "summary", "Output format: summary, yaml or control")
	cmd.Flags().BoolVar(&flags.async, "async", false, "Stream and decode concurrently")
	cmd.Flags().BoolVar(&flags.progress, "progress", true, "Show a download progress bar")
	return cmd
}

// apply overlays explicitly set flags onto the loaded configuration.
func (f fetchFlags) apply(cmd *cobra.Command, cfg *Config) error {
	changed := cmd.Flags().Changed
	if changed("arch") {
		cfg.Arch = f.arch
	}
	if changed("branch") {
		cfg.Branch = f.branch
	}
	if changed("mirror") {
		cfg.Index.Upstream.URL = f.mirror
	}
	if changed("dir") {
		dir, err := homedir.Expand(f.dir)
		if err != nil {
			return fmt.Errorf("error expanding dir: %w", err)
		}
		cfg.Index.Dir = dir
	}
	if changed("tokenizer") {
		cfg.Index.Tokenizer = f.tokenizer
	}
	if changed("compression") {
		compression, ok := repo.LookupCompression(f.compression)
		if !ok {
			return fmt.Errorf("unknown compression %q", f.compression)
		}
		cfg.Index.Compressed = false
		cfg.Index.Compression = compression
	}
	switch f.output {
	case "summary", "yaml", "control":
	default:
		return fmt.Errorf("unknown output format %q", f.output)
	}

	if cfg.Arch == "" {
		arch, ok := aosc.ArchName()
		if !ok {
			return fmt.Errorf("unsupported architecture, pass --arch")
		}
		cfg.Arch = arch
	}
	return nil
}

func runFetch(cmd *cobra.Command, cfg *Config, flags fetchFlags) error {
	var opts []index.Option
	if flags.progress {
		client := cleanhttp.DefaultClient()
		client.Timeout = cfg.Index.Upstream.Timeout
		client.Transport = progressTransport{base: client.Transport, out: cmd.ErrOrStderr()}
		opts = append(opts, index.WithHTTPClient(client))
	}

	fetcher, err := index.NewFetcher(cfg.Index, opts...)
	if err != nil {
		return err
	}

	var pkgs index.Packages
	if flags.async {
		pkgs, err = fetcher.FetchAsync(cmd.Context(), cfg.Arch, cfg.Branch).Wait()
	} else {
		pkgs, err = fetcher.Fetch(cmd.Context(), cfg.Arch, cfg.Branch)
	}
	if err != nil {
		return err
	}

	if flags.output == "summary" {
		fmt.Fprintf(cmd.OutOrStdout(), "%d packages from %s, saved to %s\n",
			len(pkgs), fetcher.URL(cfg.Arch, cfg.Branch), filepath.Join(fetcher.Dir(), store.PackagesFile))
		return nil
	}
	return writePackages(cmd.OutOrStdout(), flags.output, pkgs)
}

func writePackages(out io.Writer, format string, pkgs index.Packages) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(pkgs); err != nil {
			return err
		}
		return enc.Close()
	case "control":
		return debian.WriteControlFile(out, pkgs.Paragraphs()...)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
