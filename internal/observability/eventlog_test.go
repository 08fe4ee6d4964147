package observability

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestLog(t *testing.T) (EventLog, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewEventLog(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = log.Close() })
	return log, path
}

func TestLogAndReadRoundTrip(t *testing.T) {
	log, _ := newTestLog(t)

	if err := log.LogEvent("task.started", map[string]any{"task_id": "1.1.1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := log.LogEvent("task.completed", map[string]any{"task_id": "1.1.1"}); err != nil {
		t.Fatal(err)
	}

	events, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Type != "task.started" || events[0].Data["task_id"] != "1.1.1" {
		t.Errorf("round trip lost data: %+v", events[0])
	}
	if events[0].Time.IsZero() {
		t.Error("event time not set")
	}
}

func TestReadFiltersByType(t *testing.T) {
	log, _ := newTestLog(t)
	_ = log.LogEvent("task.started", nil)
	_ = log.LogEvent("task.paused", nil)
	_ = log.LogEvent("task.started", nil)

	events, err := log.Read(EventFilter{Type: "task.started"})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Errorf("expected 2 filtered events, got %d", len(events))
	}
}

func TestReadFiltersBySince(t *testing.T) {
	log, _ := newTestLog(t)
	_ = log.LogEvent("task.started", nil)

	cutoff := time.Now().UTC().Add(time.Minute)
	events, err := log.Read(EventFilter{Since: &cutoff})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 0 {
		t.Errorf("expected nothing after the cutoff, got %d", len(events))
	}
}

func TestReadLimitKeepsNewest(t *testing.T) {
	log, _ := newTestLog(t)
	_ = log.LogEvent("first", nil)
	_ = log.LogEvent("second", nil)
	_ = log.LogEvent("third", nil)

	events, err := log.Read(EventFilter{Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 || events[0].Type != "second" || events[1].Type != "third" {
		t.Errorf("expected the newest two, got %+v", events)
	}
}

func TestReadSkipsMalformedLines(t *testing.T) {
	log, path := newTestLog(t)
	_ = log.LogEvent("task.started", nil)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("{not json\n"); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()
	_ = log.LogEvent("task.completed", nil)

	events, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("malformed line should be skipped, got %d events", len(events))
	}
}

func TestReadMissingFileIsEmpty(t *testing.T) {
	log := &jsonlEventLog{path: filepath.Join(t.TempDir(), "nope.jsonl")}
	events, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected empty, got %d", len(events))
	}
}
