package core

import (
	"fmt"
	"strings"
)

// ActiveTaskExistsError indicates a start or resume was refused because
// another task already occupies the single active-task slot.
type ActiveTaskExistsError struct {
	ActiveID    string
	RequestedID string
}

func (e *ActiveTaskExistsError) Error() string {
	return fmt.Sprintf("task %s is already active; finish, skip, or hold it before starting %s",
		e.ActiveID, e.RequestedID)
}

// DependencyNotSatisfiedError indicates a task was started before all of its
// declared dependencies were completed.
type DependencyNotSatisfiedError struct {
	TaskID string
	Unmet  []string
}

func (e *DependencyNotSatisfiedError) Error() string {
	return fmt.Sprintf("task %s has unmet dependencies: %s",
		e.TaskID, strings.Join(e.Unmet, ", "))
}
