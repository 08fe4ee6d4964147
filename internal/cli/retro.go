package cli

import (
	"fmt"
	"strings"

	"github.com/krr2020/taskflow-ai-sub003/pkg/models"
	"github.com/spf13/cobra"
)

var retroCmd = &cobra.Command{
	Use:   "retro",
	Short: "Work with the retrospective ledger of known error patterns",
}

var retroListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every ledger entry",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Ledger == nil {
			return fmt.Errorf("ledger not initialized")
		}
		entries, err := Ledger.Load()
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("The retrospective ledger is empty.")
			return nil
		}
		fmt.Printf("%-4s %-10s %-5s %-11s %s\n", "ID", "CATEGORY", "SEEN", "CRITICALITY", "PATTERN")
		for _, e := range entries {
			fmt.Printf("%-4d %-10s %-5d %-11s %s\n", e.ID, e.Category, e.Count, e.Criticality, e.Pattern)
		}
		return nil
	},
}

var retroSearchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Match text against known error patterns",
	Long: `Match arbitrary text (e.g. pasted error output) against the ledger and
print the documented solution for every hit. Counts are not changed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Ledger == nil {
			return fmt.Errorf("ledger not initialized")
		}
		matched, err := Ledger.Match(strings.Join(args, " "))
		if err != nil {
			return err
		}
		if len(matched) == 0 {
			fmt.Println("No known pattern matches.")
			return nil
		}
		for _, e := range matched {
			fmt.Printf("#%d [%s, %s, seen %d times] %s\n  Fix: %s\n",
				e.ID, e.Category, e.Criticality, e.Count, e.Pattern, e.Solution)
		}
		return nil
	},
}

var (
	retroAddCategory    string
	retroAddSolution    string
	retroAddCriticality string
)

var retroAddCmd = &cobra.Command{
	Use:   "add <pattern>",
	Short: "Record a new error pattern by hand",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Ledger == nil {
			return fmt.Errorf("ledger not initialized")
		}
		crit := models.Criticality(retroAddCriticality)
		switch crit {
		case models.CriticalityHigh, models.CriticalityMedium, models.CriticalityLow:
		default:
			return fmt.Errorf("invalid criticality %q: must be High, Medium, or Low", retroAddCriticality)
		}
		id, err := Ledger.Append(retroAddCategory, args[0], retroAddSolution, crit)
		if err != nil {
			return err
		}
		fmt.Printf("Recorded as entry #%d.\n", id)
		return nil
	},
}

func init() {
	retroAddCmd.Flags().StringVar(&retroAddCategory, "category", models.CategoryRuntime, "Entry category (TypeError, Lint, Test, Runtime)")
	retroAddCmd.Flags().StringVar(&retroAddSolution, "solution", "", "Documented fix")
	retroAddCmd.Flags().StringVar(&retroAddCriticality, "criticality", string(models.CriticalityMedium), "High, Medium, or Low")
	_ = retroAddCmd.MarkFlagRequired("solution")

	retroCmd.AddCommand(retroListCmd)
	retroCmd.AddCommand(retroSearchCmd)
	retroCmd.AddCommand(retroAddCmd)
	rootCmd.AddCommand(retroCmd)
}
