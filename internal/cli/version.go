package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(a.stdout, versionLine(a.info))
			fmt.Fprintf(a.stdout, "Go                       %s\n", runtime.Version())
			fmt.Fprintf(a.stdout, "System                   %s (%s)\n", runtime.GOOS, runtime.GOARCH)
			return nil
		},
	}
}

func versionLine(info BuildInfo) string {
	return fmt.Sprintf("statebus %s (commit %s, built %s)", info.Version, info.Commit, info.Date)
}
