package cli

import (
	"fmt"
	"strings"

	"github.com/krr2020/taskflow-ai-sub003/pkg/models"
	"github.com/spf13/cobra"
)

var statusFilter string

var statusCmd = &cobra.Command{
	Use:   "status [task-id]",
	Short: "Show the active task, or all tasks grouped by status",
	Long: `Without arguments, show the active task and a summary of all tasks
grouped by status. With a task id, show that task's full detail including
subtasks and dependencies. Use --filter to list a single status group.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskStore == nil {
			return fmt.Errorf("task store not initialized")
		}

		if len(args) == 1 {
			return printTaskDetail(args[0])
		}

		tasks, err := TaskStore.ListTasks()
		if err != nil {
			return err
		}
		if len(tasks) == 0 {
			fmt.Println("No tasks found. Run 'taskflow init' to set up a project.")
			return nil
		}

		if statusFilter != "" {
			var filtered []models.Task
			for _, t := range tasks {
				if string(t.Status) == statusFilter {
					filtered = append(filtered, t)
				}
			}
			printStatusGroup(statusFilter, filtered)
			return nil
		}

		active, err := TaskStore.FindActiveTask()
		if err != nil {
			return err
		}
		if active != nil {
			fmt.Printf("Active: %s (%s) %s\n\n", active.ID, active.Status, active.Title)
		} else {
			fmt.Println("No active task.")
			fmt.Println()
		}

		statusOrder := []models.TaskStatus{
			models.StatusSetup, models.StatusPlanning, models.StatusImplementing,
			models.StatusVerifying, models.StatusValidating, models.StatusCommitting,
			models.StatusBlocked, models.StatusOnHold,
			models.StatusNotStarted, models.StatusCompleted,
		}
		grouped := make(map[models.TaskStatus][]models.Task)
		for _, t := range tasks {
			grouped[t.Status] = append(grouped[t.Status], t)
		}
		for _, status := range statusOrder {
			if group := grouped[status]; len(group) > 0 {
				printStatusGroup(string(status), group)
				fmt.Println()
			}
		}
		return nil
	},
}

func printStatusGroup(status string, tasks []models.Task) {
	fmt.Printf("== %s (%d) ==\n", strings.ToUpper(status), len(tasks))
	for _, t := range tasks {
		fmt.Printf("  %-8s %s\n", t.ID, t.Title)
	}
}

func printTaskDetail(id string) error {
	task, err := TaskStore.LoadTask(id)
	if err != nil {
		return err
	}
	loc, err := TaskStore.FindTaskLocation(id)
	if err != nil {
		return err
	}

	fmt.Printf("Task %s: %s\n", task.ID, task.Title)
	fmt.Printf("  Status:  %s\n", task.Status)
	fmt.Printf("  Feature: F%s %s\n", loc.Feature.ID, loc.Feature.Title)
	fmt.Printf("  Story:   S%s %s (branch %s)\n", loc.Story.ID, loc.Story.Title, loc.Branch)
	if task.Skill != "" {
		fmt.Printf("  Skill:   %s\n", task.Skill)
	}
	if len(task.Dependencies) > 0 {
		fmt.Printf("  Depends: %s\n", strings.Join(task.Dependencies, ", "))
	}
	if task.Description != "" {
		fmt.Printf("\n%s\n", task.Description)
	}
	if len(task.Subtasks) > 0 {
		fmt.Println("\nSubtasks:")
		for _, st := range task.Subtasks {
			mark := " "
			if st.Status == models.SubtaskCompleted {
				mark = "x"
			}
			fmt.Printf("  [%s] %s %s\n", mark, st.ID, st.Description)
		}
	}
	if len(task.Context) > 0 {
		fmt.Println("\nContext:")
		for _, note := range task.Context {
			fmt.Printf("  - %s\n", note)
		}
	}
	return nil
}

func init() {
	statusCmd.Flags().StringVar(&statusFilter, "filter", "", "Show only tasks with this status")
	rootCmd.AddCommand(statusCmd)
}
