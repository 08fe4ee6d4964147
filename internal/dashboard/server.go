// Package dashboard serves the local read-only web view of the project:
// the task board, the retrospective ledger, and the event timeline.
package dashboard

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"mime"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/krr2020/taskflow-ai-sub003/internal/observability"
	"github.com/krr2020/taskflow-ai-sub003/pkg/models"
)

//go:embed static
var staticFiles embed.FS

func init() {
	// Serve JS and CSS with explicit MIME types even on platforms that
	// default to text/plain, which breaks ES module loading.
	_ = mime.AddExtensionType(".js", "text/javascript; charset=utf-8")
	_ = mime.AddExtensionType(".css", "text/css; charset=utf-8")
}

// TaskSource provides the task data rendered by the board view.
type TaskSource interface {
	ListTasks() ([]models.Task, error)
	LoadIndex() (*models.ProjectIndex, error)
}

// RetroSource provides the ledger entries rendered by the retro view.
type RetroSource interface {
	Load() ([]models.RetroEntry, error)
}

// EventSource provides the event timeline.
type EventSource interface {
	Read(filter observability.EventFilter) ([]observability.Event, error)
}

// Server is the dashboard HTTP server. It is read-only: no handler mutates
// project state.
type Server struct {
	tasks  TaskSource
	retro  RetroSource
	events EventSource
}

// NewServer wires a dashboard over the given data sources. events may be
// nil; the timeline endpoint then returns an empty list.
func NewServer(tasks TaskSource, retro RetroSource, events EventSource) *Server {
	return &Server{tasks: tasks, retro: retro, events: events}
}

// CheckListenAddr validates the bind address: non-loopback binds are refused
// unless allowRemote is set, since the dashboard carries no authentication.
func CheckListenAddr(listenAddr string, allowRemote bool) error {
	host, _, err := net.SplitHostPort(listenAddr)
	if err != nil {
		return fmt.Errorf("invalid listen address %q: %w", listenAddr, err)
	}
	if host == "" {
		host = "0.0.0.0"
	}
	if isLoopbackHost(host) {
		return nil
	}
	if !allowRemote {
		return fmt.Errorf("refusing remote bind to %q without --allow-remote", host)
	}
	return nil
}

func isLoopbackHost(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback()
	}
	return false
}

// Handler builds the full HTTP handler: static single-page app plus the
// JSON API.
func (s *Server) Handler() (http.Handler, error) {
	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return nil, fmt.Errorf("loading embedded static files: %w", err)
	}
	indexHTML, err := fs.ReadFile(static, "index.html")
	if err != nil {
		return nil, fmt.Errorf("loading index template: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/tasks", s.handleTasks)
	mux.HandleFunc("/api/retro", s.handleRetro)
	mux.HandleFunc("/api/events", s.handleEvents)
	mux.Handle("/assets/", http.StripPrefix("/assets/", noStore(http.FileServer(http.FS(static)))))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" && r.URL.Path != "/index.html" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(indexHTML)
	})
	return mux, nil
}

// ListenAndServe validates the address and serves until the listener fails.
func (s *Server) ListenAndServe(listenAddr string, allowRemote bool) error {
	if err := CheckListenAddr(listenAddr, allowRemote); err != nil {
		return err
	}
	handler, err := s.Handler()
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}

func noStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// taskView is the board's wire shape: the task plus its position in the
// feature/story hierarchy.
type taskView struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Status    models.TaskStatus `json:"status"`
	Skill     string            `json:"skill,omitempty"`
	Subtasks  []models.Subtask  `json:"subtasks,omitempty"`
	DependsOn []string          `json:"depends_on,omitempty"`
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	tasks, err := s.tasks.ListTasks()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	views := make([]taskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, taskView{
			ID:        t.ID,
			Title:     t.Title,
			Status:    t.Status,
			Skill:     t.Skill,
			Subtasks:  t.Subtasks,
			DependsOn: t.Dependencies,
		})
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleRetro(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	entries, err := s.retro.Load()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []models.RetroEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.events == nil {
		writeJSON(w, http.StatusOK, []observability.Event{})
		return
	}
	events, err := s.events.Read(observability.EventFilter{Limit: 200})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if events == nil {
		events = []observability.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}
