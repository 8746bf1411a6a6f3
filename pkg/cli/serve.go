package cli

import (
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/thepwagner/aoscpkgs/pkg/mirror"
)

// NewServeCmd creates the serve command.
func NewServeCmd(cfg *Config) *cobra.Command {
	var addr, root string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a directory laid out as a repository mirror",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				cfg.Serve.Addr = addr
			}
			if cmd.Flags().Changed("root") {
				expanded, err := homedir.Expand(root)
				if err != nil {
					return err
				}
				cfg.Serve.Root = expanded
			}
			return mirror.Run(cmd.Context(), cfg.Serve)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Address to listen on")
	cmd.Flags().StringVarP(&root, "root", "r", ".", "Mirror root directory")
	return cmd
}
