package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/krr2020/taskflow-ai-sub003/pkg/models"
)

// ValidationSnapshot is the small "last status" record kept per task so the
// workflow can answer "did validation already run and pass" without
// re-running the commands.
type ValidationSnapshot struct {
	TaskID       string    `yaml:"task_id"`
	Passed       bool      `yaml:"passed"`
	FailedChecks []string  `yaml:"failed_checks,omitempty"`
	RanAt        time.Time `yaml:"ran_at"`
}

// PauseSnapshot records the exact status a task was skipped or held from so
// resume can restore it.
type PauseSnapshot struct {
	TaskID         string            `yaml:"task_id"`
	PreviousStatus models.TaskStatus `yaml:"previous_status"`
	Reason         string            `yaml:"reason,omitempty"`
	PausedAt       time.Time         `yaml:"paused_at"`
}

// SnapshotStore persists validation run logs and small per-task snapshots
// under .taskflow/logs/.
type SnapshotStore interface {
	WriteValidationLog(taskID, label, output string) (string, error)
	SaveValidation(snap ValidationSnapshot) error
	LoadValidation(taskID string) (*ValidationSnapshot, error)
	SavePause(snap PauseSnapshot) error
	LoadPause(taskID string) (*PauseSnapshot, error)
	ClearPause(taskID string) error
}

type fileSnapshotStore struct {
	basePath string
}

// NewSnapshotStore creates a SnapshotStore rooted at basePath.
func NewSnapshotStore(basePath string) SnapshotStore {
	return &fileSnapshotStore{basePath: basePath}
}

func (s *fileSnapshotStore) logsDir() string {
	return filepath.Join(s.basePath, ".taskflow", "logs")
}

func (s *fileSnapshotStore) ensureLogsDir() error {
	if err := os.MkdirAll(s.logsDir(), 0o755); err != nil {
		return fmt.Errorf("creating logs directory: %w", err)
	}
	return nil
}

// WriteValidationLog writes the raw output of one validation run to
// .taskflow/logs/T<id>-<label>-<date>.log and returns the path.
func (s *fileSnapshotStore) WriteValidationLog(taskID, label, output string) (string, error) {
	if err := s.ensureLogsDir(); err != nil {
		return "", err
	}
	name := fmt.Sprintf("T%s-%s-%s.log", taskID, label, time.Now().UTC().Format("2006-01-02"))
	path := filepath.Join(s.logsDir(), name)
	if err := os.WriteFile(path, []byte(output), 0o600); err != nil {
		return "", fmt.Errorf("writing validation log for %s: %w", taskID, err)
	}
	return path, nil
}

func (s *fileSnapshotStore) validationPath(taskID string) string {
	return filepath.Join(s.logsDir(), "T"+taskID+"-validation.yaml")
}

func (s *fileSnapshotStore) pausePath(taskID string) string {
	return filepath.Join(s.logsDir(), "T"+taskID+"-paused.yaml")
}

func (s *fileSnapshotStore) saveYAML(path string, source any) error {
	if err := s.ensureLogsDir(); err != nil {
		return err
	}
	data, err := yaml.Marshal(source)
	if err != nil {
		return fmt.Errorf("marshalling %s: %w", path, err)
	}
	return os.WriteFile(path, data, 0o600)
}

func loadYAML[T any](path string) (*T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var out T
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &out, nil
}

func (s *fileSnapshotStore) SaveValidation(snap ValidationSnapshot) error {
	return s.saveYAML(s.validationPath(snap.TaskID), &snap)
}

func (s *fileSnapshotStore) LoadValidation(taskID string) (*ValidationSnapshot, error) {
	return loadYAML[ValidationSnapshot](s.validationPath(taskID))
}

func (s *fileSnapshotStore) SavePause(snap PauseSnapshot) error {
	return s.saveYAML(s.pausePath(snap.TaskID), &snap)
}

func (s *fileSnapshotStore) LoadPause(taskID string) (*PauseSnapshot, error) {
	return loadYAML[PauseSnapshot](s.pausePath(taskID))
}

func (s *fileSnapshotStore) ClearPause(taskID string) error {
	if err := os.Remove(s.pausePath(taskID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clearing pause snapshot for %s: %w", taskID, err)
	}
	return nil
}
