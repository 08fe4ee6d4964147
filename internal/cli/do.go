package cli

import (
	"fmt"

	"charm.land/glamour/v2"
	"github.com/spf13/cobra"
)

var doCmd = &cobra.Command{
	Use:   "do",
	Short: "Show instructions for the active task's current status",
	Long: `Print the guidance document for whatever status the active task is in:
what to do now and how to advance. Guidance lives under .taskflow/ref/ and
can be customized per project.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Workflow == nil || Guidance == nil {
			return fmt.Errorf("workflow not initialized")
		}

		task, err := TaskStore.FindActiveTask()
		if err != nil {
			return err
		}
		if task == nil {
			fmt.Println("No active task.")
			fmt.Println("\nNext steps:")
			fmt.Println("  - Run 'taskflow next' to find the next eligible task")
			fmt.Println("  - Run 'taskflow start <id>' to begin it")
			return nil
		}

		doc, err := Guidance.Guidance(task.Status, task.Skill)
		if err != nil {
			return err
		}

		fmt.Printf("Task %s (%s): %s\n\n", task.ID, task.Status, task.Title)
		rendered, err := renderMarkdown(doc)
		if err != nil {
			// Fall back to raw markdown if the renderer chokes.
			fmt.Println(doc)
			return nil
		}
		fmt.Print(rendered)
		return nil
	},
}

// renderMarkdown renders markdown for the terminal.
func renderMarkdown(doc string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(doc)
}

func init() {
	rootCmd.AddCommand(doCmd)
}
