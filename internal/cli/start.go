package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start <task-id>",
	Short: "Start a task (moves it to setup)",
	Long: `Start working on a task by id, e.g. 'taskflow start 1.2.3'.

Only one task may be active at a time, and every dependency of the task must
be completed. Starting a task checks out (creating if needed) the story's
branch.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Workflow == nil {
			return fmt.Errorf("workflow not initialized")
		}
		res, err := Workflow.Start(args[0])
		if err != nil {
			if friendlyError(err) {
				return nil
			}
			return err
		}
		printResult(res)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
