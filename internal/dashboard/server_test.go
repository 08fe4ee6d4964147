package dashboard

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krr2020/taskflow-ai-sub003/internal/observability"
	"github.com/krr2020/taskflow-ai-sub003/pkg/models"
)

type stubTasks struct {
	tasks []models.Task
	err   error
}

func (s *stubTasks) ListTasks() ([]models.Task, error) { return s.tasks, s.err }
func (s *stubTasks) LoadIndex() (*models.ProjectIndex, error) {
	return &models.ProjectIndex{Project: "demo"}, nil
}

type stubRetro struct {
	entries []models.RetroEntry
	err     error
}

func (s *stubRetro) Load() ([]models.RetroEntry, error) { return s.entries, s.err }

type stubEvents struct {
	events []observability.Event
}

func (s *stubEvents) Read(observability.EventFilter) ([]observability.Event, error) {
	return s.events, nil
}

func newTestHandler(t *testing.T, tasks *stubTasks, retro *stubRetro, events EventSource) http.Handler {
	t.Helper()
	handler, err := NewServer(tasks, retro, events).Handler()
	require.NoError(t, err)
	return handler
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestHandler(t, &stubTasks{}, &stubRetro{}, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestTasksEndpoint(t *testing.T) {
	tasks := &stubTasks{tasks: []models.Task{
		{ID: "1.1.1", Title: "Login form", Status: models.StatusImplementing, Dependencies: []string{"1.1.0"}},
	}}
	h := newTestHandler(t, tasks, &stubRetro{}, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "1.1.1", got[0]["id"])
	assert.Equal(t, "implementing", got[0]["status"])
	assert.Equal(t, []any{"1.1.0"}, got[0]["depends_on"])
}

func TestTasksEndpointRejectsWrites(t *testing.T) {
	h := newTestHandler(t, &stubTasks{}, &stubRetro{}, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/tasks", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestTasksEndpointSurfacesStoreErrors(t *testing.T) {
	h := newTestHandler(t, &stubTasks{err: errors.New("disk on fire")}, &stubRetro{}, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "disk on fire")
}

func TestRetroEndpointNormalizesNil(t *testing.T) {
	h := newTestHandler(t, &stubTasks{}, &stubRetro{entries: nil}, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/retro", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestEventsEndpointWithoutSource(t *testing.T) {
	h := newTestHandler(t, &stubTasks{}, &stubRetro{}, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestEventsEndpointWithSource(t *testing.T) {
	events := &stubEvents{events: []observability.Event{{Type: "task.started"}}}
	h := newTestHandler(t, &stubTasks{}, &stubRetro{}, events)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "task.started")
}

func TestIndexServedAtRootOnly(t *testing.T) {
	h := newTestHandler(t, &stubTasks{}, &stubRetro{}, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckListenAddr(t *testing.T) {
	cases := []struct {
		addr        string
		allowRemote bool
		wantErr     bool
	}{
		{"127.0.0.1:7353", false, false},
		{"localhost:7353", false, false},
		{"[::1]:7353", false, false},
		{"0.0.0.0:7353", false, true},
		{":7353", false, true},
		{"192.168.1.10:7353", false, true},
		{"0.0.0.0:7353", true, false},
		{"no-port-here", false, true},
	}
	for _, tc := range cases {
		err := CheckListenAddr(tc.addr, tc.allowRemote)
		if tc.wantErr {
			assert.Error(t, err, "addr %q allowRemote=%v", tc.addr, tc.allowRemote)
		} else {
			assert.NoError(t, err, "addr %q allowRemote=%v", tc.addr, tc.allowRemote)
		}
	}
}
