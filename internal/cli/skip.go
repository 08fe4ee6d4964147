package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var skipCmd = &cobra.Command{
	Use:   "skip <reason>",
	Short: "Mark the active task blocked and free the active slot",
	Long: `Set the active task aside as blocked, recording why. The exact status it
was blocked from is remembered so 'taskflow resume' can restore it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Workflow == nil {
			return fmt.Errorf("workflow not initialized")
		}
		res, err := Workflow.Skip(args[0])
		if err != nil {
			return err
		}
		printResult(res)
		return nil
	},
}

var holdCmd = &cobra.Command{
	Use:   "hold",
	Short: "Put the active task on hold",
	Long: `Put the active task on hold without a reason, freeing the active slot.
Use 'taskflow resume <id>' to pick it back up at the same status.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Workflow == nil {
			return fmt.Errorf("workflow not initialized")
		}
		res, err := Workflow.Hold()
		if err != nil {
			return err
		}
		printResult(res)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(skipCmd)
	rootCmd.AddCommand(holdCmd)
}
