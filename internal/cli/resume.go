package cli

import (
	"fmt"

	"github.com/krr2020/taskflow-ai-sub003/pkg/models"
	"github.com/spf13/cobra"
)

var resumeStatus string

var resumeCmd = &cobra.Command{
	Use:   "resume <task-id>",
	Short: "Resume a blocked or on-hold task",
	Long: `Restore a blocked or on-hold task to the exact status it was paused from.

If the pause record is missing (e.g. manually deleted), pass --status to
restore explicitly.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Workflow == nil {
			return fmt.Errorf("workflow not initialized")
		}
		res, err := Workflow.Resume(args[0], models.TaskStatus(resumeStatus))
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
	resumeCmd.Flags().StringVar(&resumeStatus, "status", "", "Status to restore (setup, planning, implementing, verifying, validating, committing)")
	rootCmd.AddCommand(resumeCmd)
}
