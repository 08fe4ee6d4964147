package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/krr2020/taskflow-ai-sub003/pkg/models"
)

// writeHierarchy lays out a minimal tasks/ tree:
//
//	tasks/F1-auth/F1-auth.json
//	tasks/F1-auth/S1.1-login/S1.1-login.json
//	tasks/F1-auth/S1.1-login/T1.1.1-form.json
//	tasks/F1-auth/S1.1-login/T1.1.2-session.json
func writeHierarchy(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	storyDir := filepath.Join(base, "tasks", "F1-auth", "S1.1-login")
	if err := os.MkdirAll(storyDir, 0o755); err != nil {
		t.Fatal(err)
	}

	writeDoc(t, filepath.Join(base, "tasks", "F1-auth", "F1-auth.json"), models.Feature{
		ID: "1", Title: "Authentication", Stories: []string{"1.1"},
	})
	writeDoc(t, filepath.Join(storyDir, "S1.1-login.json"), models.Story{
		ID: "1.1", Title: "Login", Tasks: []string{"1.1.1", "1.1.2"},
	})
	writeDoc(t, filepath.Join(storyDir, "T1.1.1-form.json"), models.Task{
		ID: "1.1.1", Title: "Login form", Status: models.StatusNotStarted,
	})
	writeDoc(t, filepath.Join(storyDir, "T1.1.2-session.json"), models.Task{
		ID: "1.1.2", Title: "Session handling", Status: models.StatusNotStarted,
		Dependencies: []string{"1.1.1"},
	})
	return base
}

func writeDoc(t *testing.T, path string, doc any) {
	t.Helper()
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadTaskByDottedID(t *testing.T) {
	store := NewTaskStore(writeHierarchy(t))

	task, err := store.LoadTask("1.1.2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Title != "Session handling" {
		t.Errorf("wrong task loaded: %q", task.Title)
	}
}

func TestLoadTaskNotFound(t *testing.T) {
	store := NewTaskStore(writeHierarchy(t))

	_, err := store.LoadTask("9.9.9")
	var notFound *TaskNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected TaskNotFoundError, got %v", err)
	}
	if notFound.ID != "9.9.9" {
		t.Errorf("wrong id in error: %q", notFound.ID)
	}
}

func TestSaveTaskRoundTrip(t *testing.T) {
	base := writeHierarchy(t)
	store := NewTaskStore(base)

	task, err := store.LoadTask("1.1.1")
	if err != nil {
		t.Fatal(err)
	}
	task.Status = models.StatusImplementing
	task.Context = []string{"picked react-hook-form"}
	if err := store.SaveTask(task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reloaded, err := store.LoadTask("1.1.1")
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Status != models.StatusImplementing || len(reloaded.Context) != 1 || reloaded.Context[0] != "picked react-hook-form" {
		t.Errorf("round trip lost data: %+v", reloaded)
	}

	// The write must not leave temp artifacts behind.
	entries, err := os.ReadDir(filepath.Join(base, "tasks", "F1-auth", "S1.1-login"))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
}

func TestFindActiveTaskStates(t *testing.T) {
	base := writeHierarchy(t)
	store := NewTaskStore(base)

	active, err := store.FindActiveTask()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if active != nil {
		t.Fatalf("expected no active task, got %s", active.ID)
	}

	task, _ := store.LoadTask("1.1.1")
	task.Status = models.StatusVerifying
	if err := store.SaveTask(task); err != nil {
		t.Fatal(err)
	}

	active, err = store.FindActiveTask()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if active == nil || active.ID != "1.1.1" {
		t.Fatalf("expected 1.1.1 active, got %+v", active)
	}

	// A second active task on disk is a data-integrity error.
	task2, _ := store.LoadTask("1.1.2")
	task2.Status = models.StatusSetup
	if err := store.SaveTask(task2); err != nil {
		t.Fatal(err)
	}
	_, err = store.FindActiveTask()
	var multi *MultipleActiveTasksError
	if !errors.As(err, &multi) {
		t.Fatalf("expected MultipleActiveTasksError, got %v", err)
	}
	if len(multi.IDs) != 2 {
		t.Errorf("expected both ids reported, got %v", multi.IDs)
	}
}

func TestFindTaskLocationDefaultsBranch(t *testing.T) {
	store := NewTaskStore(writeHierarchy(t))

	loc, err := store.FindTaskLocation("1.1.1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.Feature.Title != "Authentication" || loc.Story.Title != "Login" {
		t.Errorf("ancestry not resolved: %+v", loc)
	}
	// No branch in the story document: derived from the directory name.
	if loc.Branch != "story/S1.1-login" {
		t.Errorf("unexpected branch %q", loc.Branch)
	}
}

func TestListTasksInIDOrder(t *testing.T) {
	store := NewTaskStore(writeHierarchy(t))

	tasks, err := store.ListTasks()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 2 || tasks[0].ID != "1.1.1" || tasks[1].ID != "1.1.2" {
		t.Errorf("unexpected order: %+v", tasks)
	}
}

func TestRefreshStoryStatusDerivesAndPersists(t *testing.T) {
	base := writeHierarchy(t)
	store := NewTaskStore(base)

	task, _ := store.LoadTask("1.1.1")
	task.Status = models.StatusCompleted
	if err := store.SaveTask(task); err != nil {
		t.Fatal(err)
	}
	task2, _ := store.LoadTask("1.1.2")
	task2.Status = models.StatusImplementing
	if err := store.SaveTask(task2); err != nil {
		t.Fatal(err)
	}

	derived, err := store.RefreshStoryStatus("1.1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if derived != models.StatusImplementing {
		t.Errorf("expected implementing, got %s", derived)
	}

	story, err := store.LoadStory("1.1")
	if err != nil {
		t.Fatal(err)
	}
	if story.Status != models.StatusImplementing {
		t.Errorf("derived status not persisted: %s", story.Status)
	}
}
