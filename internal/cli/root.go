// Package cli implements the taskflow command surface on top of the core
// workflow services. Commands are thin: they parse flags, call one service
// operation, and print the structured result.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "taskflow",
	Short: "TaskFlow - structured task workflow for AI-assisted development",
	Long: `TaskFlow tracks a feature/story/task hierarchy as plain JSON files and
walks each task through a fixed workflow: setup, planning, implementing,
verifying, validating, committing.

Validation failures feed a retrospective ledger of known error patterns, so
the same mistake is diagnosed instantly the second time it appears.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("taskflow %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
