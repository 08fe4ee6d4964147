// Package observability records workflow events to an append-only JSONL log
// under .taskflow/events.jsonl, consumed by the status command and the web
// dashboard timeline.
package observability

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Event is one workflow occurrence: a task starting, a status change, a
// validation run, a pause or an abort.
type Event struct {
	Time time.Time      `json:"time"`
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

// EventFilter narrows a Read to a time window and/or event type.
type EventFilter struct {
	Since *time.Time
	Type  string
	// Limit caps the number of events returned, newest last. Zero means
	// unlimited.
	Limit int
}

// EventLog appends and reads workflow events.
type EventLog interface {
	LogEvent(eventType string, data map[string]any) error
	Read(filter EventFilter) ([]Event, error)
	Close() error
}

// jsonlEventLog is an append-only JSONL file with a mutex serializing
// writes. Reads reopen the file so concurrent readers see complete lines.
type jsonlEventLog struct {
	path string
	file *os.File
	mu   sync.Mutex
}

// NewEventLog opens (or creates) the JSONL event log at path.
func NewEventLog(path string) (EventLog, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening event log: %w", err)
	}
	return &jsonlEventLog{path: path, file: f}, nil
}

func (l *jsonlEventLog) LogEvent(eventType string, data map[string]any) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	event := Event{Time: time.Now().UTC(), Type: eventType, Data: data}
	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshalling event: %w", err)
	}
	line = append(line, '\n')

	if _, err := l.file.Write(line); err != nil {
		return fmt.Errorf("writing event: %w", err)
	}
	return nil
}

func (l *jsonlEventLog) Read(filter EventFilter) ([]Event, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening event log for reading: %w", err)
	}
	defer func() { _ = f.Close() }()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			continue // skip malformed lines
		}
		if filter.Since != nil && event.Time.Before(*filter.Since) {
			continue
		}
		if filter.Type != "" && event.Type != filter.Type {
			continue
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning event log: %w", err)
	}

	if filter.Limit > 0 && len(events) > filter.Limit {
		events = events[len(events)-filter.Limit:]
	}
	return events, nil
}

func (l *jsonlEventLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.file.Close(); err != nil {
		return fmt.Errorf("closing event log: %w", err)
	}
	return nil
}
