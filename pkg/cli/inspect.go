package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/thepwagner/aoscpkgs/pkg/debian"
	"github.com/thepwagner/aoscpkgs/pkg/index"
)

// NewInspectCmd creates the inspect command, which decodes the control
// stanza of local .deb files the same way index entries are decoded.
func NewInspectCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "inspect FILE.deb...",
		Short: "Decode the control paragraph of .deb packages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pkgs := make(index.Packages, 0, len(args))
			for _, fn := range args {
				graph, err := debian.ParagraphFromDebFile(fn)
				if err != nil {
					return fmt.Errorf("inspecting %s: %w", fn, err)
				} else if graph == nil {
					return fmt.Errorf("inspecting %s: no control file", fn)
				}
				pkgs = append(pkgs, index.FromParagraph(*graph))
			}
			return writePackages(cmd.OutOrStdout(), output, pkgs)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "Output format: yaml or control")
	return cmd
}
