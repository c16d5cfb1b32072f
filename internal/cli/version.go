package cli

import (
	"fmt"
	goruntime "runtime"

	"recipe-chat/internal/version"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build version",
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				fmt.Fprintf(cmd.OutOrStdout(), "recipe-chat %s (%s %s/%s)\n", version.Version, goruntime.Version(), goruntime.GOOS, goruntime.GOARCH)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), version.Version)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "include Go version and platform")
	return cmd
}
