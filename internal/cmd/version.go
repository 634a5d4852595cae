package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opmodel/apimpub/internal/version"
)

// NewVersionCmd creates the version command.
func NewVersionCmd(_ *GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Show apimpub version information.

Displays:
  - apimpub version, commit and build date
  - CUE SDK version (embedded in the CLI)
  - git binary version used by --commit`,
		Args: cobra.NoArgs,
		RunE: runVersion,
	}
}

func runVersion(cmd *cobra.Command, _ []string) error {
	fmt.Fprintln(cmd.OutOrStdout(), version.FullVersionString(version.Get(), version.DetectGit()))
	return nil
}
