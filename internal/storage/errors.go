package storage

import (
	"fmt"
	"strings"
)

// TaskNotFoundError indicates a task id does not resolve to an existing file.
type TaskNotFoundError struct {
	ID string
}

func (e *TaskNotFoundError) Error() string {
	return fmt.Sprintf("task %s not found", e.ID)
}

// MultipleActiveTasksError indicates more than one task is in an active
// status. The state machine is the only legitimate writer, so this signals
// on-disk data corruption and is never silently tolerated.
type MultipleActiveTasksError struct {
	IDs []string
}

func (e *MultipleActiveTasksError) Error() string {
	return fmt.Sprintf("multiple active tasks found: %s (expected at most one)", strings.Join(e.IDs, ", "))
}
