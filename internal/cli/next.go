package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Show the next eligible task",
	Long: `Find the first not-started task (in id order) whose dependencies are all
completed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Workflow == nil {
			return fmt.Errorf("workflow not initialized")
		}
		task, err := Workflow.NextEligible()
		if err != nil {
			return err
		}
		if task == nil {
			fmt.Println("No eligible task: everything is either done, in flight, or waiting on dependencies.")
			return nil
		}
		fmt.Printf("Next: %s %s\n", task.ID, task.Title)
		if task.Description != "" {
			fmt.Printf("\n%s\n", task.Description)
		}
		fmt.Printf("\nRun 'taskflow start %s' to begin.\n", task.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(nextCmd)
}
