package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/thepwagner/aoscpkgs/pkg/aosc"
)

// NewDetectCmd creates the detect command.
func NewDetectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detect",
		Short: "Print the AOSC OS architecture and flavor of this system",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if arch, ok := aosc.ArchName(); ok {
				fmt.Fprintf(out, "arch: %s\n", arch)
			} else {
				fmt.Fprintln(out, "arch: unsupported")
			}

			flavor, ok, err := aosc.DetectFlavor()
			if err != nil {
				return err
			}
			if ok {
				fmt.Fprintf(out, "flavor: %s\n", flavor)
			} else {
				fmt.Fprintln(out, "flavor: not AOSC OS")
			}
			return nil
		},
	}
}
