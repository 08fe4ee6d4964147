package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/krr2020/taskflow-ai-sub003/pkg/models"
)

// guidanceDocs maps each workflow status to its guidance document under
// .taskflow/ref/. The mapping is a closed, typed registry: an unknown status
// is a programming error surfaced at lookup time, not a silent empty string.
var guidanceDocs = map[models.TaskStatus]string{
	models.StatusSetup:        "setup.md",
	models.StatusPlanning:     "planning.md",
	models.StatusImplementing: "implementing.md",
	models.StatusVerifying:    "verifying.md",
	models.StatusValidating:   "validating.md",
	models.StatusCommitting:   "committing.md",
}

// builtinGuidance is the fallback text used when a guidance document is
// missing on disk, so 'taskflow do' always has something to say.
var builtinGuidance = map[models.TaskStatus]string{
	models.StatusSetup: "## Setup\n\n" +
		"Confirm you are on the story branch, pull the latest base branch, " +
		"and install dependencies. Run `taskflow check` when the workspace is ready.",
	models.StatusPlanning: "## Planning\n\n" +
		"Write an implementation plan covering the files to change, the tests " +
		"to add, and the subtask order. Save it as the task's plan file, then " +
		"run `taskflow check`.",
	models.StatusImplementing: "## Implementing\n\n" +
		"Work through the subtasks in order, committing nothing yet. " +
		"Run `taskflow check` when the implementation is complete.",
	models.StatusVerifying: "## Verifying\n\n" +
		"Manually exercise the change: run the affected code paths and review " +
		"the diff. Run `taskflow check` when satisfied.",
	models.StatusValidating: "## Validating\n\n" +
		"`taskflow check` runs the configured format, lint, test, and build " +
		"commands. Fix any failures it reports and re-run.",
	models.StatusCommitting: "## Committing\n\n" +
		"All checks have passed. Run `taskflow commit \"<message>\"` to commit " +
		"and complete the task.",
}

// GuidanceRegistry serves the per-status instruction documents shown by
// 'taskflow do'.
type GuidanceRegistry interface {
	// Guidance returns the markdown guidance for a workflow status. When the
	// task carries a skill, a skill-specific document under
	// .taskflow/ref/<skill>/ takes precedence over the general one. A missing
	// document on disk degrades to built-in text; a status with no registered
	// document is an error.
	Guidance(status models.TaskStatus, skill string) (string, error)
}

type fileGuidanceRegistry struct {
	refDir string
}

// NewGuidanceRegistry creates a registry reading documents from
// <basePath>/.taskflow/ref.
func NewGuidanceRegistry(basePath string) GuidanceRegistry {
	return &fileGuidanceRegistry{refDir: filepath.Join(basePath, ".taskflow", "ref")}
}

func (g *fileGuidanceRegistry) Guidance(status models.TaskStatus, skill string) (string, error) {
	doc, ok := guidanceDocs[status]
	if !ok {
		return "", fmt.Errorf("no guidance registered for status %q", status)
	}

	paths := []string{filepath.Join(g.refDir, doc)}
	if skill != "" {
		paths = append([]string{filepath.Join(g.refDir, skill, doc)}, paths...)
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", fmt.Errorf("reading guidance document %s: %w", path, err)
		}
		if text := strings.TrimSpace(string(data)); text != "" {
			return text, nil
		}
	}
	return builtinGuidance[status], nil
}

// GuidanceStatuses returns the statuses that carry guidance, in workflow
// order. Used by 'taskflow init' to seed the reference documents.
func GuidanceStatuses() []models.TaskStatus {
	out := make([]models.TaskStatus, 0, len(guidanceDocs))
	for _, s := range models.ActiveStatuses {
		if _, ok := guidanceDocs[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

// GuidanceDocName returns the on-disk document name for a status, or ""
// when none is registered.
func GuidanceDocName(status models.TaskStatus) string {
	return guidanceDocs[status]
}
