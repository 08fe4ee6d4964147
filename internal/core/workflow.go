// Package core contains the business logic for TaskFlow: the task workflow
// state machine, configuration, and the guidance registry.
package core

import (
	"fmt"
	"os"

	"github.com/krr2020/taskflow-ai-sub003/pkg/models"
)

// statusTransitions is the single source of truth for the linear workflow.
// There is deliberately no second, in-memory state machine; every consumer
// reads this table.
var statusTransitions = map[models.TaskStatus]models.TaskStatus{
	models.StatusSetup:        models.StatusPlanning,
	models.StatusPlanning:     models.StatusImplementing,
	models.StatusImplementing: models.StatusVerifying,
	models.StatusVerifying:    models.StatusValidating,
	models.StatusValidating:   models.StatusCommitting,
	models.StatusCommitting:   models.StatusCompleted,
}

// NextStatus returns the successor of a workflow status, or false for
// terminal and side states.
func NextStatus(s models.TaskStatus) (models.TaskStatus, bool) {
	next, ok := statusTransitions[s]
	return next, ok
}

// TaskLocation mirrors storage.TaskLocation. Defining it here keeps core
// independent of the storage package.
type TaskLocation struct {
	FeatureID    string
	FeatureTitle string
	StoryID      string
	StoryTitle   string
	Branch       string
	PlanPath     string
}

// TaskStore is the subset of the storage layer the workflow needs.
type TaskStore interface {
	FindActiveTask() (*models.Task, error)
	LoadTask(id string) (*models.Task, error)
	SaveTask(task *models.Task) error
	FindTaskLocation(id string) (*TaskLocation, error)
	ListTasks() ([]models.Task, error)
	RefreshStoryStatus(storyID string) (models.TaskStatus, error)
}

// Validator runs the configured validation commands and classifies output.
type Validator interface {
	RunAll(commands map[string]string) (*models.ValidationSummary, error)
	Summarize(rawOutput, commandLabel string) string
	Classify(rawOutput, source string) []models.ClassifiedError
}

// Retrospective is the workflow's view of the ledger: record matches against
// known patterns and capture genuinely new ones.
type Retrospective interface {
	RecordMatch(output string) ([]models.RetroEntry, error)
	CaptureNew(errs []models.ClassifiedError) ([]models.RetroEntry, error)
}

// GitClient performs the branch and commit plumbing. Failures propagate as
// fatal errors for the invoking command only.
type GitClient interface {
	EnsureBranch(name string) error
	Commit(message string) error
}

// Snapshots persists the small per-task records the workflow needs across
// invocations: pause state for resume and the last validation outcome.
type Snapshots interface {
	WriteValidationLog(taskID, label, output string) (string, error)
	SaveValidation(taskID string, passed bool, failedChecks []string) error
	SavePause(taskID string, previous models.TaskStatus, reason string) error
	LoadPause(taskID string) (models.TaskStatus, bool, error)
	ClearPause(taskID string) error
}

// EventLogger records workflow events. May be nil-adapted by the caller.
type EventLogger interface {
	LogEvent(eventType string, data map[string]any) error
}

// TransitionResult is the structured outcome of every state-mutating
// operation. Precondition failures are results, not errors, so the CLI can
// print guidance and exit zero. NextSteps always carries at least one
// concrete step on the failure path.
type TransitionResult struct {
	Success   bool
	TaskID    string
	From      models.TaskStatus
	To        models.TaskStatus
	Reason    string
	NextSteps []string

	// Validation context, populated when the validating gate fails.
	Summary        string
	FailedChecks   []string
	MatchedEntries []models.RetroEntry
	NewEntries     []models.RetroEntry
}

// Workflow is the task state machine: it enforces the legal status sequence,
// checks per-transition preconditions, and persists results through the
// TaskStore. State mutations are all-or-nothing; when persistence fails the
// in-memory decision is discarded and the error propagates.
type Workflow struct {
	store      TaskStore
	validator  Validator
	retro      Retrospective
	git        GitClient
	snapshots  Snapshots
	events     EventLogger
	validation map[string]string
}

// NewWorkflow wires a Workflow with all collaborators injected. events may
// be nil.
func NewWorkflow(store TaskStore, validator Validator, retro Retrospective, git GitClient, snapshots Snapshots, events EventLogger, validation map[string]string) *Workflow {
	return &Workflow{
		store:      store,
		validator:  validator,
		retro:      retro,
		git:        git,
		snapshots:  snapshots,
		events:     events,
		validation: validation,
	}
}

func (w *Workflow) logEvent(eventType string, data map[string]any) {
	if w.events != nil {
		_ = w.events.LogEvent(eventType, data)
	}
}

// Start moves a not-started task into setup. It refuses when another task is
// active (ActiveTaskExistsError) or when any declared dependency is not
// completed (DependencyNotSatisfiedError), and ensures the story branch
// exists before flipping status.
func (w *Workflow) Start(id string) (*TransitionResult, error) {
	active, err := w.store.FindActiveTask()
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, &ActiveTaskExistsError{ActiveID: active.ID, RequestedID: id}
	}

	task, err := w.store.LoadTask(id)
	if err != nil {
		return nil, err
	}
	if task.Status != models.StatusNotStarted {
		return &TransitionResult{
			Success: false,
			TaskID:  id,
			From:    task.Status,
			Reason:  fmt.Sprintf("task %s is %s, not %s", id, task.Status, models.StatusNotStarted),
			NextSteps: []string{
				"Run 'taskflow status' to inspect the task",
				"Use 'taskflow resume " + id + "' if the task was skipped or held",
			},
		}, nil
	}

	var unmet []string
	for _, depID := range task.Dependencies {
		dep, err := w.store.LoadTask(depID)
		if err != nil {
			return nil, fmt.Errorf("checking dependency %s of %s: %w", depID, id, err)
		}
		if dep.Status != models.StatusCompleted {
			unmet = append(unmet, depID)
		}
	}
	if len(unmet) > 0 {
		return nil, &DependencyNotSatisfiedError{TaskID: id, Unmet: unmet}
	}

	loc, err := w.store.FindTaskLocation(id)
	if err != nil {
		return nil, err
	}
	if err := w.git.EnsureBranch(loc.Branch); err != nil {
		return nil, fmt.Errorf("ensuring branch %s for task %s: %w", loc.Branch, id, err)
	}

	from := task.Status
	task.Status = models.StatusSetup
	if err := w.store.SaveTask(task); err != nil {
		return nil, err
	}
	// The task status is already persisted; the story status is derived from
	// it and can be recomputed on the next mutation, so a refresh failure
	// must not fail the start.
	_, _ = w.store.RefreshStoryStatus(loc.StoryID)
	w.logEvent("task.started", map[string]any{"task_id": id, "branch": loc.Branch})

	return &TransitionResult{
		Success:   true,
		TaskID:    id,
		From:      from,
		To:        models.StatusSetup,
		NextSteps: []string{"Run 'taskflow do' for setup instructions, then 'taskflow check' to advance"},
	}, nil
}

// Advance attempts the current task's next transition, enforcing the
// per-status precondition. Precondition failures leave the status unchanged
// and return a structured result with guidance.
func (w *Workflow) Advance() (*TransitionResult, error) {
	task, err := w.store.FindActiveTask()
	if err != nil {
		return nil, err
	}
	if task == nil {
		return &TransitionResult{
			Success: false,
			Reason:  "no active task",
			NextSteps: []string{
				"Run 'taskflow next' to find the next eligible task",
				"Run 'taskflow start <id>' to begin it",
			},
		}, nil
	}

	switch task.Status {
	case models.StatusSetup, models.StatusImplementing, models.StatusVerifying:
		return w.advanceTo(task, statusTransitions[task.Status])

	case models.StatusPlanning:
		loc, err := w.store.FindTaskLocation(task.ID)
		if err != nil {
			return nil, err
		}
		if _, err := os.Stat(loc.PlanPath); err != nil {
			return &TransitionResult{
				Success: false,
				TaskID:  task.ID,
				From:    task.Status,
				To:      task.Status,
				Reason:  "missing plan artifact: " + loc.PlanPath,
				NextSteps: []string{
					"Write the implementation plan to " + loc.PlanPath,
					"Run 'taskflow check' again once the plan exists",
				},
			}, nil
		}
		return w.advanceTo(task, models.StatusImplementing)

	case models.StatusValidating:
		return w.advanceThroughValidation(task)

	case models.StatusCommitting:
		return &TransitionResult{
			Success: false,
			TaskID:  task.ID,
			From:    task.Status,
			To:      task.Status,
			Reason:  "task is ready to commit; check does not perform the commit",
			NextSteps: []string{
				"Run 'taskflow commit \"<message>\"' to commit and complete the task",
			},
		}, nil

	default:
		return &TransitionResult{
			Success:   false,
			TaskID:    task.ID,
			From:      task.Status,
			Reason:    fmt.Sprintf("task %s is in unexpected status %s", task.ID, task.Status),
			NextSteps: []string{"Run 'taskflow status " + task.ID + "' to inspect the task"},
		}, nil
	}
}

// advanceTo performs an unconditional hop to next and persists it.
func (w *Workflow) advanceTo(task *models.Task, next models.TaskStatus) (*TransitionResult, error) {
	from := task.Status
	task.Status = next
	if err := w.store.SaveTask(task); err != nil {
		return nil, err
	}
	w.logEvent("task.status_changed", map[string]any{
		"task_id": task.ID, "from": string(from), "to": string(next),
	})
	return &TransitionResult{
		Success:   true,
		TaskID:    task.ID,
		From:      from,
		To:        next,
		NextSteps: []string{"Run 'taskflow do' for " + string(next) + " instructions"},
	}, nil
}

// advanceThroughValidation runs all configured validation commands. On full
// pass the task moves to committing; on any failure the task stays in
// validating and the failure output is summarized, matched against the
// retrospective ledger, and new patterns are captured.
func (w *Workflow) advanceThroughValidation(task *models.Task) (*TransitionResult, error) {
	summary, err := w.validator.RunAll(w.validation)
	if err != nil {
		return nil, fmt.Errorf("running validation for %s: %w", task.ID, err)
	}

	if _, err := w.snapshots.WriteValidationLog(task.ID, "validate", summary.AllOutput); err != nil {
		return nil, err
	}
	if err := w.snapshots.SaveValidation(task.ID, summary.Passed, summary.FailedChecks); err != nil {
		return nil, err
	}
	w.logEvent("task.validated", map[string]any{
		"task_id": task.ID, "passed": summary.Passed, "failed_checks": summary.FailedChecks,
	})

	if summary.Passed {
		return w.advanceTo(task, models.StatusCommitting)
	}

	// Build the human-actionable failure summary from the failing commands only.
	var failedOutput string
	for _, r := range summary.Results {
		if !r.Passed {
			failedOutput += r.Output + "\n"
		}
	}
	label := "validation"
	if len(summary.FailedChecks) == 1 {
		label = summary.FailedChecks[0]
	}
	errorSummary := w.validator.Summarize(failedOutput, label)

	// Consult the ledger before surfacing: known patterns get their counts
	// bumped and their solutions surfaced; unknown ones become new entries.
	matched, err := w.retro.RecordMatch(failedOutput)
	if err != nil {
		return nil, fmt.Errorf("matching retrospective ledger for %s: %w", task.ID, err)
	}
	classified := w.validator.Classify(failedOutput, label)
	captured, err := w.retro.CaptureNew(classified)
	if err != nil {
		return nil, fmt.Errorf("capturing new retrospective patterns for %s: %w", task.ID, err)
	}

	steps := []string{"Fix the reported errors, then run 'taskflow check' again"}
	for _, m := range matched {
		steps = append(steps, fmt.Sprintf("Known issue #%d (%s): %s", m.ID, m.Category, m.Solution))
	}

	return &TransitionResult{
		Success:        false,
		TaskID:         task.ID,
		From:           task.Status,
		To:             task.Status,
		Reason:         fmt.Sprintf("validation failed: %d check(s) did not pass", len(summary.FailedChecks)),
		NextSteps:      steps,
		Summary:        errorSummary,
		FailedChecks:   summary.FailedChecks,
		MatchedEntries: matched,
		NewEntries:     captured,
	}, nil
}

// Commit performs the git commit for a task in committing status and flips
// it to completed. Git failure is fatal for this command; the status is not
// changed in that case.
func (w *Workflow) Commit(message string) (*TransitionResult, error) {
	task, err := w.store.FindActiveTask()
	if err != nil {
		return nil, err
	}
	if task == nil {
		return &TransitionResult{
			Success:   false,
			Reason:    "no active task",
			NextSteps: []string{"Run 'taskflow start <id>' to begin a task"},
		}, nil
	}
	if task.Status != models.StatusCommitting {
		return &TransitionResult{
			Success: false,
			TaskID:  task.ID,
			From:    task.Status,
			To:      task.Status,
			Reason:  fmt.Sprintf("task %s is %s; commit is only legal from %s", task.ID, task.Status, models.StatusCommitting),
			NextSteps: []string{
				"Run 'taskflow check' to advance the task to committing first",
			},
		}, nil
	}

	if err := w.git.Commit(message); err != nil {
		return nil, fmt.Errorf("committing task %s: %w", task.ID, err)
	}

	from := task.Status
	task.Status = models.StatusCompleted
	if err := w.store.SaveTask(task); err != nil {
		return nil, err
	}
	loc, err := w.store.FindTaskLocation(task.ID)
	if err == nil {
		_, _ = w.store.RefreshStoryStatus(loc.StoryID)
	}
	_ = w.snapshots.ClearPause(task.ID)
	w.logEvent("task.completed", map[string]any{"task_id": task.ID})

	return &TransitionResult{
		Success:   true,
		TaskID:    task.ID,
		From:      from,
		To:        models.StatusCompleted,
		NextSteps: []string{"Run 'taskflow next' to find the next eligible task"},
	}, nil
}

// Skip moves the active task to blocked, recording the reason and the exact
// status it was blocked from so resume can restore it.
func (w *Workflow) Skip(reason string) (*TransitionResult, error) {
	if reason == "" {
		return &TransitionResult{
			Success:   false,
			Reason:    "a reason is required to skip a task",
			NextSteps: []string{"Run 'taskflow skip \"<reason>\"'"},
		}, nil
	}
	return w.pause(models.StatusBlocked, reason)
}

// Hold moves the active task to on-hold, freeing the active slot.
func (w *Workflow) Hold() (*TransitionResult, error) {
	return w.pause(models.StatusOnHold, "")
}

func (w *Workflow) pause(to models.TaskStatus, reason string) (*TransitionResult, error) {
	task, err := w.store.FindActiveTask()
	if err != nil {
		return nil, err
	}
	if task == nil {
		return &TransitionResult{
			Success:   false,
			Reason:    "no active task",
			NextSteps: []string{"Run 'taskflow start <id>' to begin a task"},
		}, nil
	}

	from := task.Status
	if err := w.snapshots.SavePause(task.ID, from, reason); err != nil {
		return nil, err
	}
	task.Status = to
	if err := w.store.SaveTask(task); err != nil {
		return nil, err
	}
	w.logEvent("task.paused", map[string]any{
		"task_id": task.ID, "from": string(from), "to": string(to), "reason": reason,
	})

	return &TransitionResult{
		Success:   true,
		TaskID:    task.ID,
		From:      from,
		To:        to,
		Reason:    reason,
		NextSteps: []string{"Run 'taskflow resume " + task.ID + "' to pick the task back up"},
	}, nil
}

// Resume restores a blocked or on-hold task to the exact status it was
// paused from. An explicit override status may be supplied when the pause
// snapshot is missing.
func (w *Workflow) Resume(id string, override models.TaskStatus) (*TransitionResult, error) {
	active, err := w.store.FindActiveTask()
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, &ActiveTaskExistsError{ActiveID: active.ID, RequestedID: id}
	}

	task, err := w.store.LoadTask(id)
	if err != nil {
		return nil, err
	}
	if task.Status != models.StatusBlocked && task.Status != models.StatusOnHold {
		return &TransitionResult{
			Success:   false,
			TaskID:    id,
			From:      task.Status,
			Reason:    fmt.Sprintf("task %s is %s; only blocked or on-hold tasks can be resumed", id, task.Status),
			NextSteps: []string{"Run 'taskflow status " + id + "' to inspect the task"},
		}, nil
	}

	target := override
	if target == "" {
		prev, ok, err := w.snapshots.LoadPause(id)
		if err != nil {
			return nil, err
		}
		if !ok {
			return &TransitionResult{
				Success: false,
				TaskID:  id,
				From:    task.Status,
				Reason:  "no pause snapshot found for task " + id,
				NextSteps: []string{
					"Run 'taskflow resume " + id + " --status <status>' to restore explicitly",
				},
			}, nil
		}
		target = prev
	}
	if !target.IsActive() {
		return &TransitionResult{
			Success:   false,
			TaskID:    id,
			From:      task.Status,
			Reason:    fmt.Sprintf("%s is not a resumable workflow status", target),
			NextSteps: []string{"Use one of: setup, planning, implementing, verifying, validating, committing"},
		}, nil
	}

	from := task.Status
	task.Status = target
	if err := w.store.SaveTask(task); err != nil {
		return nil, err
	}
	if err := w.snapshots.ClearPause(id); err != nil {
		return nil, err
	}
	w.logEvent("task.resumed", map[string]any{
		"task_id": id, "from": string(from), "to": string(target),
	})

	return &TransitionResult{
		Success:   true,
		TaskID:    id,
		From:      from,
		To:        target,
		NextSteps: []string{"Run 'taskflow do' for " + string(target) + " instructions"},
	}, nil
}

// Abort is the emergency escape hatch: it unconditionally clears the active
// slot by returning every active task to not-started, without checking
// preconditions. It also tolerates a corrupted multiple-active state.
func (w *Workflow) Abort() (*TransitionResult, error) {
	tasks, err := w.store.ListTasks()
	if err != nil {
		return nil, err
	}

	var cleared []string
	for i := range tasks {
		if !tasks[i].Status.IsActive() {
			continue
		}
		task := tasks[i]
		task.Status = models.StatusNotStarted
		if err := w.store.SaveTask(&task); err != nil {
			return nil, err
		}
		_ = w.snapshots.ClearPause(task.ID)
		cleared = append(cleared, task.ID)
	}

	if len(cleared) == 0 {
		return &TransitionResult{
			Success:   true,
			Reason:    "no active task to abort",
			NextSteps: []string{"Run 'taskflow start <id>' to begin a task"},
		}, nil
	}
	w.logEvent("task.aborted", map[string]any{"task_ids": cleared})

	return &TransitionResult{
		Success:   true,
		TaskID:    cleared[0],
		To:        models.StatusNotStarted,
		Reason:    fmt.Sprintf("cleared %d active task(s)", len(cleared)),
		NextSteps: []string{"Run 'taskflow start <id>' to begin again"},
	}, nil
}

// NextEligible returns the first not-started task (in id order) whose
// dependencies are all completed, or nil when none qualifies.
func (w *Workflow) NextEligible() (*models.Task, error) {
	tasks, err := w.store.ListTasks()
	if err != nil {
		return nil, err
	}
	completed := make(map[string]bool)
	for _, t := range tasks {
		if t.Status == models.StatusCompleted {
			completed[t.ID] = true
		}
	}
	for i := range tasks {
		if tasks[i].Status != models.StatusNotStarted {
			continue
		}
		eligible := true
		for _, dep := range tasks[i].Dependencies {
			if !completed[dep] {
				eligible = false
				break
			}
		}
		if eligible {
			task := tasks[i]
			return &task, nil
		}
	}
	return nil, nil
}
