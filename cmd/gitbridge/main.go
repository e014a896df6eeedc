// Package main provides the entry point for the gitbridge CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/gitbridge/cmd/gitbridge/commands"
	"github.com/Sumatoshi-tech/gitbridge/pkg/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gitbridge",
		Short: "gitbridge - map pushed git history onto destination branches",
		Long: `gitbridge bridges a git commit DAG into a branch-container VCS.

Commands:
  assign    Compute the commit-to-branch assignment map for a push`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewAssignCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "gitbridge %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
