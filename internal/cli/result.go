package cli

import (
	"errors"
	"fmt"

	"github.com/krr2020/taskflow-ai-sub003/internal/core"
)

// printResult renders a workflow TransitionResult. Successes show the hop;
// precondition failures show the reason and the concrete next steps. Both
// exit zero: only data-integrity errors become nonzero exits.
func printResult(res *core.TransitionResult) {
	if res.Success {
		if res.From != "" && res.To != "" {
			fmt.Printf("✓ %s: %s → %s\n", res.TaskID, res.From, res.To)
		} else if res.Reason != "" {
			fmt.Printf("✓ %s\n", res.Reason)
		}
	} else {
		if res.TaskID != "" {
			fmt.Printf("✗ %s: %s\n", res.TaskID, res.Reason)
		} else {
			fmt.Printf("✗ %s\n", res.Reason)
		}
	}

	if res.Summary != "" {
		fmt.Printf("\n%s\n", res.Summary)
	}
	if len(res.FailedChecks) > 0 {
		fmt.Printf("\nFailed checks:")
		for _, c := range res.FailedChecks {
			fmt.Printf(" %s", c)
		}
		fmt.Println()
	}
	for _, m := range res.MatchedEntries {
		fmt.Printf("\nSeen before (#%d, %d times): %s\n  Fix: %s\n", m.ID, m.Count, m.Pattern, m.Solution)
	}
	for _, n := range res.NewEntries {
		fmt.Printf("\nNew pattern recorded as #%d: %s\n", n.ID, n.Pattern)
	}

	if len(res.NextSteps) > 0 {
		fmt.Println("\nNext steps:")
		for _, step := range res.NextSteps {
			fmt.Printf("  - %s\n", step)
		}
	}
}

// friendlyError turns the workflow's user-error types into guidance printed
// with exit zero. Anything else propagates as a real (nonzero) error.
func friendlyError(err error) (handled bool) {
	var activeErr *core.ActiveTaskExistsError
	if errors.As(err, &activeErr) {
		fmt.Printf("✗ %s\n\nNext steps:\n", activeErr.Error())
		fmt.Printf("  - Run 'taskflow check' to advance task %s\n", activeErr.ActiveID)
		fmt.Printf("  - Or 'taskflow skip \"<reason>\"' / 'taskflow hold' to set it aside\n")
		return true
	}
	var depErr *core.DependencyNotSatisfiedError
	if errors.As(err, &depErr) {
		fmt.Printf("✗ %s\n\nNext steps:\n", depErr.Error())
		for _, dep := range depErr.Unmet {
			fmt.Printf("  - Complete task %s first\n", dep)
		}
		return true
	}
	return false
}
