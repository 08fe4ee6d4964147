// Package storage provides the file-backed persistence layer for the
// feature/story/task hierarchy under tasks/ and the auxiliary snapshots
// under .taskflow/. It is pure data access: no workflow rules live here.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/krr2020/taskflow-ai-sub003/pkg/models"
)

// TaskLocation resolves a task's ancestry for display and for precondition
// checks such as the story's branch name.
type TaskLocation struct {
	Feature    models.Feature
	FeatureDir string
	Story      models.Story
	StoryDir   string
	Task       models.Task
	TaskPath   string
	Branch     string
}

// TaskStore locates, loads, and atomically persists the task hierarchy JSON
// documents.
type TaskStore interface {
	FindActiveTask() (*models.Task, error)
	LoadTask(id string) (*models.Task, error)
	SaveTask(task *models.Task) error
	FindTaskLocation(id string) (*TaskLocation, error)
	LoadIndex() (*models.ProjectIndex, error)
	SaveIndex(index *models.ProjectIndex) error
	LoadStory(id string) (*models.Story, error)
	SaveStory(story *models.Story) error
	ListTasks() ([]models.Task, error)
	RefreshStoryStatus(storyID string) (models.TaskStatus, error)
}

type fileTaskStore struct {
	basePath string
}

// NewTaskStore creates a TaskStore rooted at basePath (the project root
// containing the tasks/ directory).
func NewTaskStore(basePath string) TaskStore {
	return &fileTaskStore{basePath: basePath}
}

func (s *fileTaskStore) tasksDir() string {
	return filepath.Join(s.basePath, "tasks")
}

// findDirByPrefix returns the single directory under parent whose name starts
// with prefix, e.g. "F1-" or "S1.2-".
func findDirByPrefix(parent, prefix string) (string, bool) {
	entries, err := os.ReadDir(parent)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), prefix) {
			return filepath.Join(parent, e.Name()), true
		}
	}
	return "", false
}

// findFileByPrefix returns the single file under parent whose name starts
// with prefix, e.g. "T1.2.3-".
func findFileByPrefix(parent, prefix string) (string, bool) {
	entries, err := os.ReadDir(parent)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), prefix) && strings.HasSuffix(e.Name(), ".json") {
			return filepath.Join(parent, e.Name()), true
		}
	}
	return "", false
}

// splitTaskID breaks a dotted task id "1.2.3" into feature "1" and story "1.2".
func splitTaskID(id string) (feature, story string, ok bool) {
	parts := strings.Split(id, ".")
	if len(parts) != 3 {
		return "", "", false
	}
	return parts[0], parts[0] + "." + parts[1], true
}

// taskPath resolves the on-disk path of a task document, or "" if any level
// of the hierarchy is missing.
func (s *fileTaskStore) taskPath(id string) string {
	feature, story, ok := splitTaskID(id)
	if !ok {
		return ""
	}
	featureDir, ok := findDirByPrefix(s.tasksDir(), "F"+feature+"-")
	if !ok {
		return ""
	}
	storyDir, ok := findDirByPrefix(featureDir, "S"+story+"-")
	if !ok {
		return ""
	}
	path, ok := findFileByPrefix(storyDir, "T"+id+"-")
	if !ok {
		return ""
	}
	return path
}

func readJSON(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// writeJSONAtomic writes via a temp-file-then-rename sequence so a crash
// mid-write never leaves a truncated document on disk.
func writeJSONAtomic(path string, source any) error {
	data, err := json.MarshalIndent(source, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling %s: %w", path, err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file for %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file for %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// LoadTask reads a task document by its dotted id.
func (s *fileTaskStore) LoadTask(id string) (*models.Task, error) {
	path := s.taskPath(id)
	if path == "" {
		return nil, &TaskNotFoundError{ID: id}
	}
	var task models.Task
	if err := readJSON(path, &task); err != nil {
		if os.IsNotExist(err) {
			return nil, &TaskNotFoundError{ID: id}
		}
		return nil, fmt.Errorf("loading task %s: %w", id, err)
	}
	return &task, nil
}

// SaveTask persists a task back to its existing document path atomically.
func (s *fileTaskStore) SaveTask(task *models.Task) error {
	path := s.taskPath(task.ID)
	if path == "" {
		return &TaskNotFoundError{ID: task.ID}
	}
	if err := writeJSONAtomic(path, task); err != nil {
		return fmt.Errorf("saving task %s: %w", task.ID, err)
	}
	return nil
}

// walkTaskFiles visits every task document in the hierarchy in id order.
func (s *fileTaskStore) walkTaskFiles(visit func(path string, task models.Task) error) error {
	featureDirs, err := sortedDirs(s.tasksDir(), "F")
	if err != nil {
		return err
	}
	for _, fd := range featureDirs {
		storyDirs, err := sortedDirs(fd, "S")
		if err != nil {
			return err
		}
		for _, sd := range storyDirs {
			entries, err := os.ReadDir(sd)
			if err != nil {
				return fmt.Errorf("reading story directory %s: %w", sd, err)
			}
			names := make([]string, 0, len(entries))
			for _, e := range entries {
				if !e.IsDir() && strings.HasPrefix(e.Name(), "T") && strings.HasSuffix(e.Name(), ".json") {
					names = append(names, e.Name())
				}
			}
			sort.Strings(names)
			for _, name := range names {
				path := filepath.Join(sd, name)
				var task models.Task
				if err := readJSON(path, &task); err != nil {
					return fmt.Errorf("loading task file %s: %w", path, err)
				}
				if err := visit(path, task); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func sortedDirs(parent, prefix string) ([]string, error) {
	entries, err := os.ReadDir(parent)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", parent, err)
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), prefix) {
			dirs = append(dirs, filepath.Join(parent, e.Name()))
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// FindActiveTask scans the whole hierarchy for the single task in an active
// status. It returns nil when no task is active and MultipleActiveTasksError
// when the at-most-one invariant is violated on disk.
func (s *fileTaskStore) FindActiveTask() (*models.Task, error) {
	var active []models.Task
	err := s.walkTaskFiles(func(_ string, task models.Task) error {
		if task.Status.IsActive() {
			active = append(active, task)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning for active task: %w", err)
	}
	switch len(active) {
	case 0:
		return nil, nil
	case 1:
		task := active[0]
		return &task, nil
	default:
		ids := make([]string, len(active))
		for i, t := range active {
			ids[i] = t.ID
		}
		return nil, &MultipleActiveTasksError{IDs: ids}
	}
}

// ListTasks returns every task in the hierarchy in id order.
func (s *fileTaskStore) ListTasks() ([]models.Task, error) {
	var tasks []models.Task
	err := s.walkTaskFiles(func(_ string, task models.Task) error {
		tasks = append(tasks, task)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}

// FindTaskLocation resolves a task's full ancestry, including the per-story
// branch name used by the start precondition.
func (s *fileTaskStore) FindTaskLocation(id string) (*TaskLocation, error) {
	feature, story, ok := splitTaskID(id)
	if !ok {
		return nil, &TaskNotFoundError{ID: id}
	}

	featureDir, ok := findDirByPrefix(s.tasksDir(), "F"+feature+"-")
	if !ok {
		return nil, &TaskNotFoundError{ID: id}
	}
	storyDir, ok := findDirByPrefix(featureDir, "S"+story+"-")
	if !ok {
		return nil, &TaskNotFoundError{ID: id}
	}
	taskPath, ok := findFileByPrefix(storyDir, "T"+id+"-")
	if !ok {
		return nil, &TaskNotFoundError{ID: id}
	}

	loc := &TaskLocation{
		FeatureDir: featureDir,
		StoryDir:   storyDir,
		TaskPath:   taskPath,
	}

	featurePath := filepath.Join(featureDir, filepath.Base(featureDir)+".json")
	if err := readJSON(featurePath, &loc.Feature); err != nil {
		return nil, fmt.Errorf("loading feature document for task %s: %w", id, err)
	}
	storyPath := filepath.Join(storyDir, filepath.Base(storyDir)+".json")
	if err := readJSON(storyPath, &loc.Story); err != nil {
		return nil, fmt.Errorf("loading story document for task %s: %w", id, err)
	}
	if err := readJSON(taskPath, &loc.Task); err != nil {
		return nil, fmt.Errorf("loading task document %s: %w", id, err)
	}

	loc.Branch = loc.Story.Branch
	if loc.Branch == "" {
		loc.Branch = "story/" + filepath.Base(storyDir)
	}
	return loc, nil
}

// LoadIndex reads tasks/project-index.json.
func (s *fileTaskStore) LoadIndex() (*models.ProjectIndex, error) {
	var index models.ProjectIndex
	path := filepath.Join(s.tasksDir(), "project-index.json")
	if err := readJSON(path, &index); err != nil {
		if os.IsNotExist(err) {
			return &models.ProjectIndex{}, nil
		}
		return nil, fmt.Errorf("loading project index: %w", err)
	}
	return &index, nil
}

// SaveIndex persists tasks/project-index.json atomically.
func (s *fileTaskStore) SaveIndex(index *models.ProjectIndex) error {
	if err := os.MkdirAll(s.tasksDir(), 0o755); err != nil {
		return fmt.Errorf("creating tasks directory: %w", err)
	}
	path := filepath.Join(s.tasksDir(), "project-index.json")
	if err := writeJSONAtomic(path, index); err != nil {
		return fmt.Errorf("saving project index: %w", err)
	}
	return nil
}

// LoadStory reads a story document by its dotted id ("1.2").
func (s *fileTaskStore) LoadStory(id string) (*models.Story, error) {
	parts := strings.Split(id, ".")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid story id %q: expected <feature>.<story>", id)
	}
	featureDir, ok := findDirByPrefix(s.tasksDir(), "F"+parts[0]+"-")
	if !ok {
		return nil, fmt.Errorf("story %s not found", id)
	}
	storyDir, ok := findDirByPrefix(featureDir, "S"+id+"-")
	if !ok {
		return nil, fmt.Errorf("story %s not found", id)
	}
	var story models.Story
	storyPath := filepath.Join(storyDir, filepath.Base(storyDir)+".json")
	if err := readJSON(storyPath, &story); err != nil {
		return nil, fmt.Errorf("loading story %s: %w", id, err)
	}
	return &story, nil
}

// SaveStory persists a story document atomically.
func (s *fileTaskStore) SaveStory(story *models.Story) error {
	parts := strings.Split(story.ID, ".")
	if len(parts) != 2 {
		return fmt.Errorf("invalid story id %q: expected <feature>.<story>", story.ID)
	}
	featureDir, ok := findDirByPrefix(s.tasksDir(), "F"+parts[0]+"-")
	if !ok {
		return fmt.Errorf("saving story %s: feature directory not found", story.ID)
	}
	storyDir, ok := findDirByPrefix(featureDir, "S"+story.ID+"-")
	if !ok {
		return fmt.Errorf("saving story %s: story directory not found", story.ID)
	}
	storyPath := filepath.Join(storyDir, filepath.Base(storyDir)+".json")
	if err := writeJSONAtomic(storyPath, story); err != nil {
		return fmt.Errorf("saving story %s: %w", story.ID, err)
	}
	return nil
}

// RefreshStoryStatus recomputes a story's status from its tasks and persists
// it when changed. The derived status is returned either way.
func (s *fileTaskStore) RefreshStoryStatus(storyID string) (models.TaskStatus, error) {
	story, err := s.LoadStory(storyID)
	if err != nil {
		return "", err
	}
	var statuses []models.TaskStatus
	for _, taskID := range story.Tasks {
		task, err := s.LoadTask(taskID)
		if err != nil {
			return "", fmt.Errorf("refreshing story %s: %w", storyID, err)
		}
		statuses = append(statuses, task.Status)
	}
	derived := models.DeriveStoryStatus(statuses)
	if derived != story.Status {
		story.Status = derived
		if err := s.SaveStory(story); err != nil {
			return "", err
		}
	}
	return derived, nil
}
