package cli

import (
	"fmt"

	"github.com/krr2020/taskflow-ai-sub003/internal/validate"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run the configured validation commands without advancing state",
	Long: `Run every configured validation command (format, lint, test, build) and
print a pass/fail summary. Unlike 'taskflow check', this never changes task
state and never touches the retrospective ledger, so it is safe to run at
any point.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Runner == nil || Config == nil {
			return fmt.Errorf("validation runner not initialized")
		}
		summary, err := Runner.RunAll(Config.Validation)
		if err != nil {
			return err
		}
		for _, r := range summary.Results {
			mark := "✓"
			if !r.Passed {
				mark = "✗"
			}
			fmt.Printf("%s %s\n", mark, r.Command)
		}
		if summary.Passed {
			fmt.Println("\nAll checks passed.")
			return nil
		}
		for _, r := range summary.Results {
			if r.Passed {
				continue
			}
			fmt.Printf("\n--- %s ---\n%s\n", r.Command, validate.ExtractErrorSummary(r.Output, r.Command))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
