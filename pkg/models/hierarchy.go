package models

// Story groups tasks that share a single git branch. Its ID is
// <feature>.<story> (e.g. "1.2").
type Story struct {
	ID     string     `json:"id"`
	Title  string     `json:"title"`
	Status TaskStatus `json:"status"`
	Branch string     `json:"branch,omitempty"`
	Tasks  []string   `json:"tasks"`
}

// Feature groups stories. Its ID is an integer string; feature "0" is
// reserved for ad-hoc intermittent tasks not tied to a PRD.
type Feature struct {
	ID      string     `json:"id"`
	Title   string     `json:"title"`
	Status  TaskStatus `json:"status"`
	Stories []string   `json:"stories"`
}

// IntermittentFeatureID is the reserved feature for ad-hoc tasks.
const IntermittentFeatureID = "0"

// FeatureSummary is one row in the project index.
type FeatureSummary struct {
	ID     string     `json:"id"`
	Title  string     `json:"title"`
	Status TaskStatus `json:"status"`
	Path   string     `json:"path"`
}

// ProjectIndex is the flat top-level index at tasks/project-index.json.
type ProjectIndex struct {
	Project  string           `json:"project"`
	Features []FeatureSummary `json:"features"`
}

// statusRank orders workflow statuses for aggregation. Side states rank as
// their nearest workflow equivalent so a blocked task never drags a story
// forward.
var statusRank = map[TaskStatus]int{
	StatusNotStarted:   0,
	StatusBlocked:      0,
	StatusOnHold:       0,
	StatusSetup:        1,
	StatusPlanning:     2,
	StatusImplementing: 3,
	StatusVerifying:    4,
	StatusValidating:   5,
	StatusCommitting:   6,
	StatusCompleted:    7,
}

// DeriveStoryStatus computes a story's status from its tasks: completed only
// when every task is completed, not-started when no task has begun, otherwise
// the least-advanced in-flight status. A story is never further along than
// the aggregate of its tasks.
func DeriveStoryStatus(statuses []TaskStatus) TaskStatus {
	if len(statuses) == 0 {
		return StatusNotStarted
	}
	allDone := true
	anyStarted := false
	minRank := statusRank[StatusCompleted]
	var minStatus TaskStatus = StatusCompleted
	for _, s := range statuses {
		if s != StatusCompleted {
			allDone = false
		}
		if s != StatusNotStarted {
			anyStarted = true
		}
		if r := statusRank[s]; r < minRank {
			minRank = r
			minStatus = s
		}
	}
	switch {
	case allDone:
		return StatusCompleted
	case !anyStarted:
		return StatusNotStarted
	case minStatus == StatusBlocked || minStatus == StatusOnHold || minStatus == StatusNotStarted:
		// Something is in flight but the least-advanced task has not moved;
		// report the earliest workflow status so the story never leads its tasks.
		return StatusSetup
	default:
		return minStatus
	}
}
