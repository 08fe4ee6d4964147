package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var commitCmd = &cobra.Command{
	Use:   "commit <message>",
	Short: "Commit the active task's changes and complete it",
	Long: `Stage and commit all changes with the given message and move the active
task from committing to completed. Only legal once every validation check
has passed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Workflow == nil {
			return fmt.Errorf("workflow not initialized")
		}
		res, err := Workflow.Commit(args[0])
		if err != nil {
			return err
		}
		printResult(res)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(commitCmd)
}
