package cli

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the aoscpkgs command tree.
func NewRootCmd() *cobra.Command {
	var (
		configPath string
		verbose    bool
		cfg        = &Config{}
	)

	rootCmd := &cobra.Command{
		Use:   "aoscpkgs",
		Short: "Fetch and decode AOSC OS package indices",
		Long: `aoscpkgs downloads the Packages index of an AOSC OS repository mirror,
keeps a copy on disk and decodes it into package records.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(verbose)

			loaded, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			*cfg = *loaded
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", DefaultConfigPath, "Path to the configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(
		NewFetchCmd(cfg),
		NewServeCmd(cfg),
		NewDetectCmd(),
		NewInspectCmd(),
	)
	return rootCmd
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)
}
