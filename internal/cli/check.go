package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Advance the active task to its next workflow status",
	Long: `Attempt the active task's next transition.

Each status has its own gate: planning requires the plan file to exist, and
validating runs every configured validation command. A failed gate leaves
the task where it is and prints what to fix.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Workflow == nil {
			return fmt.Errorf("workflow not initialized")
		}
		res, err := Workflow.Advance()
		if err != nil {
			return err
		}
		printResult(res)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
