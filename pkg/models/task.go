package models

// TaskStatus represents the current workflow state of a task.
type TaskStatus string

const (
	StatusNotStarted   TaskStatus = "not-started"
	StatusSetup        TaskStatus = "setup"
	StatusPlanning     TaskStatus = "planning"
	StatusImplementing TaskStatus = "implementing"
	StatusVerifying    TaskStatus = "verifying"
	StatusValidating   TaskStatus = "validating"
	StatusCommitting   TaskStatus = "committing"
	StatusCompleted    TaskStatus = "completed"
	StatusBlocked      TaskStatus = "blocked"
	StatusOnHold       TaskStatus = "on-hold"
)

// ActiveStatuses lists every status that occupies the single active-task slot,
// in workflow order.
var ActiveStatuses = []TaskStatus{
	StatusSetup,
	StatusPlanning,
	StatusImplementing,
	StatusVerifying,
	StatusValidating,
	StatusCommitting,
}

// IsActive reports whether the status occupies the active-task slot.
// At most one task across the whole tree may be in an active status.
func (s TaskStatus) IsActive() bool {
	for _, a := range ActiveStatuses {
		if s == a {
			return true
		}
	}
	return false
}

// IsValid reports whether s is a known task status.
func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusNotStarted, StatusSetup, StatusPlanning, StatusImplementing,
		StatusVerifying, StatusValidating, StatusCommitting,
		StatusCompleted, StatusBlocked, StatusOnHold:
		return true
	}
	return false
}

// SubtaskStatus is the completion state of a single subtask.
type SubtaskStatus string

const (
	SubtaskPending   SubtaskStatus = "pending"
	SubtaskCompleted SubtaskStatus = "completed"
)

// Subtask is one checklist item inside a task.
type Subtask struct {
	ID          string        `json:"id"`
	Description string        `json:"description"`
	Status      SubtaskStatus `json:"status"`
}

// Task is the unit of work. Its ID is a dotted triple <feature>.<story>.<task>
// (e.g. "1.2.3"). Tasks are created by generation commands, mutated by the
// workflow state machine, and never deleted.
type Task struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Status       TaskStatus `json:"status"`
	Skill        string     `json:"skill,omitempty"`
	Subtasks     []Subtask  `json:"subtasks,omitempty"`
	Context      []string   `json:"context,omitempty"`
	Dependencies []string   `json:"dependencies,omitempty"`
}
