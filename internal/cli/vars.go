package cli

import (
	"github.com/krr2020/taskflow-ai-sub003/internal/ai"
	"github.com/krr2020/taskflow-ai-sub003/internal/core"
	"github.com/krr2020/taskflow-ai-sub003/internal/dashboard"
	"github.com/krr2020/taskflow-ai-sub003/internal/observability"
	"github.com/krr2020/taskflow-ai-sub003/internal/retro"
	"github.com/krr2020/taskflow-ai-sub003/internal/storage"
	"github.com/krr2020/taskflow-ai-sub003/internal/validate"
	"github.com/krr2020/taskflow-ai-sub003/pkg/models"
)

// Service instances, set during app initialization in app.go.
var (
	BasePath string
	Config   *models.Config

	Workflow  *core.Workflow
	Guidance  core.GuidanceRegistry
	TaskStore storage.TaskStore
	Snapshots storage.SnapshotStore
	Ledger    retro.Ledger
	Runner    validate.Runner
	Generator *ai.Generator
	EventLog  observability.EventLog
	Dashboard *dashboard.Server
)
