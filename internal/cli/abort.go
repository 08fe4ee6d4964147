package cli

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var abortForce bool

var abortCmd = &cobra.Command{
	Use:   "abort",
	Short: "Reset every active task to not-started",
	Long: `Emergency escape hatch: unconditionally return all active tasks to
not-started, clearing the active slot even when the state on disk is
corrupted (e.g. multiple active tasks). Asks for confirmation unless
--force is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Workflow == nil {
			return fmt.Errorf("workflow not initialized")
		}

		if !abortForce {
			var confirmed bool
			form := huh.NewForm(huh.NewGroup(
				huh.NewConfirm().
					Title("Reset all active tasks to not-started?").
					Description("Work in progress stays on disk, but workflow position is lost.").
					Affirmative("Abort tasks").
					Negative("Cancel").
					Value(&confirmed),
			))
			if err := form.Run(); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					fmt.Println("Cancelled.")
					return nil
				}
				return err
			}
			if !confirmed {
				fmt.Println("Cancelled.")
				return nil
			}
		}

		res, err := Workflow.Abort()
		if err != nil {
			return err
		}
		printResult(res)
		return nil
	},
}

func init() {
	abortCmd.Flags().BoolVar(&abortForce, "force", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(abortCmd)
}
