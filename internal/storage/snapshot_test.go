package storage

import (
	"os"
	"strings"
	"testing"

	"github.com/krr2020/taskflow-ai-sub003/pkg/models"
)

func TestWriteValidationLogNamesFileByTaskAndLabel(t *testing.T) {
	store := NewSnapshotStore(t.TempDir())

	path, err := store.WriteValidationLog("1.2.3", "validate", "=== test ===\nok\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(path, "T1.2.3-validate-") || !strings.HasSuffix(path, ".log") {
		t.Errorf("unexpected log name: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "=== test ===\nok\n" {
		t.Errorf("log content mangled: %q", data)
	}
}

func TestValidationSnapshotRoundTrip(t *testing.T) {
	store := NewSnapshotStore(t.TempDir())

	err := store.SaveValidation(ValidationSnapshot{
		TaskID: "1.2.3", Passed: false, FailedChecks: []string{"lint", "test"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap, err := store.LoadValidation("1.2.3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap == nil || snap.Passed || len(snap.FailedChecks) != 2 {
		t.Errorf("round trip lost data: %+v", snap)
	}
}

func TestPauseSnapshotLifecycle(t *testing.T) {
	store := NewSnapshotStore(t.TempDir())

	// Missing snapshot loads as nil, not as an error.
	snap, err := store.LoadPause("1.2.3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap != nil {
		t.Fatalf("expected nil, got %+v", snap)
	}

	err = store.SavePause(PauseSnapshot{
		TaskID: "1.2.3", PreviousStatus: models.StatusVerifying, Reason: "flaky CI",
	})
	if err != nil {
		t.Fatal(err)
	}
	snap, err = store.LoadPause("1.2.3")
	if err != nil {
		t.Fatal(err)
	}
	if snap == nil || snap.PreviousStatus != models.StatusVerifying || snap.Reason != "flaky CI" {
		t.Errorf("round trip lost data: %+v", snap)
	}

	if err := store.ClearPause("1.2.3"); err != nil {
		t.Fatal(err)
	}
	snap, err = store.LoadPause("1.2.3")
	if err != nil {
		t.Fatal(err)
	}
	if snap != nil {
		t.Errorf("snapshot not cleared: %+v", snap)
	}

	// Clearing twice is a no-op.
	if err := store.ClearPause("1.2.3"); err != nil {
		t.Errorf("double clear must not fail: %v", err)
	}
}
