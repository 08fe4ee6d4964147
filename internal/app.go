// Package internal provides the App struct that wires all components of
// TaskFlow together and initializes the CLI layer.
package internal

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/krr2020/taskflow-ai-sub003/internal/ai"
	"github.com/krr2020/taskflow-ai-sub003/internal/cli"
	"github.com/krr2020/taskflow-ai-sub003/internal/core"
	"github.com/krr2020/taskflow-ai-sub003/internal/dashboard"
	"github.com/krr2020/taskflow-ai-sub003/internal/integration"
	"github.com/krr2020/taskflow-ai-sub003/internal/observability"
	"github.com/krr2020/taskflow-ai-sub003/internal/retro"
	"github.com/krr2020/taskflow-ai-sub003/internal/storage"
	"github.com/krr2020/taskflow-ai-sub003/internal/validate"
	"github.com/krr2020/taskflow-ai-sub003/pkg/models"
)

// App holds all service dependencies for TaskFlow.
type App struct {
	BasePath string
	Config   *models.Config

	// Storage layer
	TaskStore storage.TaskStore
	Snapshots storage.SnapshotStore

	// Retrospective ledger
	Ledger retro.Ledger

	// Validation
	Runner validate.Runner

	// Integration services
	Git integration.GitClient

	// AI assistance (nil when not configured)
	Generator *ai.Generator

	// Core services
	Workflow *core.Workflow
	Guidance core.GuidanceRegistry

	// Observability
	EventLog observability.EventLog

	// Web dashboard
	Dashboard *dashboard.Server
}

// NewApp creates and wires all components of TaskFlow. basePath is the
// project root containing tasks/ and .taskflow/.
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	configLoader := core.NewConfigLoader(basePath)
	cfg, err := configLoader.Load()
	if err != nil {
		return nil, err
	}
	app.Config = cfg

	// --- Storage layer ---
	app.TaskStore = storage.NewTaskStore(basePath)
	app.Snapshots = storage.NewSnapshotStore(basePath)

	// --- Retrospective ledger ---
	app.Ledger = retro.NewLedger(basePath)

	// --- Validation ---
	app.Runner = validate.NewRunner(basePath)

	// --- Integration services ---
	app.Git = integration.NewGitClient(basePath)

	// --- AI assistance ---
	provider, err := ai.NewProvider(cfg.AI)
	if err != nil && !errors.Is(err, ai.ErrNotConfigured) {
		return nil, err
	}
	app.Generator = ai.NewGenerator(provider)

	// --- Observability ---
	eventLogPath := filepath.Join(basePath, ".taskflow", "events.jsonl")
	if mkErr := os.MkdirAll(filepath.Dir(eventLogPath), 0o755); mkErr == nil {
		app.EventLog, err = observability.NewEventLog(eventLogPath)
		if err != nil {
			// Non-fatal: the workflow runs without an event log.
			app.EventLog = nil
		}
	}

	// --- Core services ---
	app.Guidance = core.NewGuidanceRegistry(basePath)

	storeAdapter := &taskStoreAdapter{store: app.TaskStore}
	validatorAdapter := &validatorAdapter{runner: app.Runner}
	retroAdapter := &retroAdapter{ledger: app.Ledger}
	snapAdapter := &snapshotsAdapter{store: app.Snapshots}
	var events core.EventLogger
	if app.EventLog != nil {
		events = app.EventLog
	}
	app.Workflow = core.NewWorkflow(
		storeAdapter,
		validatorAdapter,
		retroAdapter,
		app.Git,
		snapAdapter,
		events,
		cfg.Validation,
	)

	// --- Web dashboard ---
	app.Dashboard = dashboard.NewServer(app.TaskStore, app.Ledger, app.EventLog)

	// --- Wire CLI package-level variables ---
	cli.BasePath = basePath
	cli.Config = cfg
	cli.Workflow = app.Workflow
	cli.TaskStore = app.TaskStore
	cli.Snapshots = app.Snapshots
	cli.Ledger = app.Ledger
	cli.Runner = app.Runner
	cli.Guidance = app.Guidance
	cli.Generator = app.Generator
	cli.EventLog = app.EventLog
	cli.Dashboard = app.Dashboard

	return app, nil
}

// Close releases resources held by the App, such as the event log handle.
func (a *App) Close() error {
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

// ResolveBasePath determines the project root. It honors TASKFLOW_HOME, then
// walks up from the working directory looking for a tasks/ directory or a
// taskflow.config.json, and falls back to the working directory itself.
func ResolveBasePath() string {
	if home := os.Getenv("TASKFLOW_HOME"); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "taskflow.config.json")); err == nil {
			return dir
		}
		if info, err := os.Stat(filepath.Join(dir, "tasks")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	cwd, _ := os.Getwd()
	return cwd
}

// --- Adapters ---

// taskStoreAdapter adapts storage.TaskStore to core.TaskStore, including the
// location-type mapping that keeps core independent of storage.
type taskStoreAdapter struct {
	store storage.TaskStore
}

func (a *taskStoreAdapter) FindActiveTask() (*models.Task, error) {
	return a.store.FindActiveTask()
}

func (a *taskStoreAdapter) LoadTask(id string) (*models.Task, error) {
	return a.store.LoadTask(id)
}

func (a *taskStoreAdapter) SaveTask(task *models.Task) error {
	return a.store.SaveTask(task)
}

func (a *taskStoreAdapter) ListTasks() ([]models.Task, error) {
	return a.store.ListTasks()
}

func (a *taskStoreAdapter) RefreshStoryStatus(storyID string) (models.TaskStatus, error) {
	return a.store.RefreshStoryStatus(storyID)
}

func (a *taskStoreAdapter) FindTaskLocation(id string) (*core.TaskLocation, error) {
	loc, err := a.store.FindTaskLocation(id)
	if err != nil {
		return nil, err
	}
	return &core.TaskLocation{
		FeatureID:    loc.Feature.ID,
		FeatureTitle: loc.Feature.Title,
		StoryID:      loc.Story.ID,
		StoryTitle:   loc.Story.Title,
		Branch:       loc.Branch,
		PlanPath:     filepath.Join(loc.StoryDir, "T"+id+"-plan.md"),
	}, nil
}

// validatorAdapter adapts the validate package to core.Validator.
type validatorAdapter struct {
	runner validate.Runner
}

func (a *validatorAdapter) RunAll(commands map[string]string) (*models.ValidationSummary, error) {
	return a.runner.RunAll(commands)
}

func (a *validatorAdapter) Summarize(rawOutput, commandLabel string) string {
	return validate.ExtractErrorSummary(rawOutput, commandLabel)
}

func (a *validatorAdapter) Classify(rawOutput, source string) []models.ClassifiedError {
	return validate.ClassifyErrors(rawOutput, source)
}

// retroAdapter adapts retro.Ledger to core.Retrospective: it bridges the
// extraction step that turns classified errors into appended ledger rows.
type retroAdapter struct {
	ledger retro.Ledger
}

func (a *retroAdapter) RecordMatch(output string) ([]models.RetroEntry, error) {
	return a.ledger.RecordMatch(output)
}

func (a *retroAdapter) CaptureNew(errs []models.ClassifiedError) ([]models.RetroEntry, error) {
	patterns, err := retro.ExtractNewPatterns(errs, a.ledger)
	if err != nil {
		return nil, err
	}
	var appended []models.RetroEntry
	for _, p := range patterns {
		id, err := a.ledger.Append(p.Category, p.Pattern, p.Solution, p.Criticality)
		if err != nil {
			return nil, err
		}
		appended = append(appended, models.RetroEntry{
			ID:          id,
			Category:    p.Category,
			Pattern:     p.Pattern,
			Solution:    p.Solution,
			Count:       1,
			Criticality: p.Criticality,
		})
	}
	return appended, nil
}

// snapshotsAdapter adapts storage.SnapshotStore to core.Snapshots.
type snapshotsAdapter struct {
	store storage.SnapshotStore
}

func (a *snapshotsAdapter) WriteValidationLog(taskID, label, output string) (string, error) {
	return a.store.WriteValidationLog(taskID, label, output)
}

func (a *snapshotsAdapter) SaveValidation(taskID string, passed bool, failedChecks []string) error {
	return a.store.SaveValidation(storage.ValidationSnapshot{
		TaskID:       taskID,
		Passed:       passed,
		FailedChecks: failedChecks,
		RanAt:        time.Now().UTC(),
	})
}

func (a *snapshotsAdapter) SavePause(taskID string, previous models.TaskStatus, reason string) error {
	return a.store.SavePause(storage.PauseSnapshot{
		TaskID:         taskID,
		PreviousStatus: previous,
		Reason:         reason,
		PausedAt:       time.Now().UTC(),
	})
}

func (a *snapshotsAdapter) LoadPause(taskID string) (models.TaskStatus, bool, error) {
	snap, err := a.store.LoadPause(taskID)
	if err != nil {
		return "", false, err
	}
	if snap == nil {
		return "", false, nil
	}
	return snap.PreviousStatus, true, nil
}

func (a *snapshotsAdapter) ClearPause(taskID string) error {
	return a.store.ClearPause(taskID)
}
