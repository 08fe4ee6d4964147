// Package mcp provides an MCP (Model Context Protocol) server that exposes
// TaskFlow project data as read-only tools for AI coding assistants.
package mcp

import (
	"context"
	"fmt"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/krr2020/taskflow-ai-sub003/internal/retro"
	"github.com/krr2020/taskflow-ai-sub003/internal/storage"
	"github.com/krr2020/taskflow-ai-sub003/pkg/models"
)

// Workflow is the subset of the state machine the MCP server queries.
type Workflow interface {
	NextEligible() (*models.Task, error)
}

// Server wraps TaskFlow services and exposes them as MCP tools. All tools
// are read-only; state changes stay in the CLI where the human is.
type Server struct {
	server   *gomcp.Server
	store    storage.TaskStore
	ledger   retro.Ledger
	workflow Workflow
}

// NewServer creates an MCP server over the given services.
func NewServer(store storage.TaskStore, ledger retro.Ledger, workflow Workflow, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		store:    store,
		ledger:   ledger,
		workflow: workflow,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "taskflow", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on stdio, blocking until the client disconnects
// or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type getTaskInput struct {
	TaskID string `json:"task_id" jsonschema:"required,the task identifier (e.g. 1.2.3)"`
}

type taskOutput struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Status    string           `json:"status"`
	Skill     string           `json:"skill,omitempty"`
	Subtasks  []models.Subtask `json:"subtasks,omitempty"`
	DependsOn []string         `json:"depends_on,omitempty"`
	Context   []string         `json:"context,omitempty"`
}

type findActiveTaskInput struct{}

type findActiveTaskOutput struct {
	Active bool       `json:"active"`
	Task   taskOutput `json:"task,omitempty"`
}

type nextTaskInput struct{}

type nextTaskOutput struct {
	Found bool       `json:"found"`
	Task  taskOutput `json:"task,omitempty"`
}

type searchRetroInput struct {
	Text string `json:"text" jsonschema:"required,error output or message to match against known failure patterns"`
}

type retroEntryOutput struct {
	ID          int    `json:"id"`
	Category    string `json:"category"`
	Pattern     string `json:"pattern"`
	Solution    string `json:"solution"`
	Count       int    `json:"count"`
	Criticality string `json:"criticality"`
}

type searchRetroOutput struct {
	Entries []retroEntryOutput `json:"entries"`
	Count   int                `json:"count"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_task",
		Description: "Get task details by ID, including status, subtasks, dependencies, and accumulated context.",
	}, s.handleGetTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "find_active_task",
		Description: "Find the task currently being worked on, if any. At most one task is ever active.",
	}, s.handleFindActiveTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "next_task",
		Description: "Find the next not-started task whose dependencies are all completed.",
	}, s.handleNextTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "search_retrospective",
		Description: "Match error output against the retrospective ledger of known failure patterns and their documented solutions.",
	}, s.handleSearchRetro)
}

// --- Tool handlers ---

func (s *Server) handleGetTask(_ context.Context, _ *gomcp.CallToolRequest, input getTaskInput) (*gomcp.CallToolResult, taskOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), taskOutput{}, nil
	}

	task, err := s.store.LoadTask(input.TaskID)
	if err != nil {
		return errorResult(fmt.Sprintf("getting task %s: %s", input.TaskID, err)), taskOutput{}, nil
	}

	return nil, taskToOutput(task), nil
}

func (s *Server) handleFindActiveTask(_ context.Context, _ *gomcp.CallToolRequest, _ findActiveTaskInput) (*gomcp.CallToolResult, findActiveTaskOutput, error) {
	task, err := s.store.FindActiveTask()
	if err != nil {
		return errorResult(fmt.Sprintf("finding active task: %s", err)), findActiveTaskOutput{}, nil
	}
	if task == nil {
		return nil, findActiveTaskOutput{Active: false}, nil
	}
	return nil, findActiveTaskOutput{Active: true, Task: taskToOutput(task)}, nil
}

func (s *Server) handleNextTask(_ context.Context, _ *gomcp.CallToolRequest, _ nextTaskInput) (*gomcp.CallToolResult, nextTaskOutput, error) {
	task, err := s.workflow.NextEligible()
	if err != nil {
		return errorResult(fmt.Sprintf("finding next task: %s", err)), nextTaskOutput{}, nil
	}
	if task == nil {
		return nil, nextTaskOutput{Found: false}, nil
	}
	return nil, nextTaskOutput{Found: true, Task: taskToOutput(task)}, nil
}

func (s *Server) handleSearchRetro(_ context.Context, _ *gomcp.CallToolRequest, input searchRetroInput) (*gomcp.CallToolResult, searchRetroOutput, error) {
	if input.Text == "" {
		return errorResult("text is required"), searchRetroOutput{}, nil
	}

	entries, err := s.ledger.Match(input.Text)
	if err != nil {
		return errorResult(fmt.Sprintf("searching retrospective: %s", err)), searchRetroOutput{}, nil
	}

	out := searchRetroOutput{
		Entries: make([]retroEntryOutput, len(entries)),
		Count:   len(entries),
	}
	for i, e := range entries {
		out.Entries[i] = retroEntryOutput{
			ID:          e.ID,
			Category:    e.Category,
			Pattern:     e.Pattern,
			Solution:    e.Solution,
			Count:       e.Count,
			Criticality: string(e.Criticality),
		}
	}
	return nil, out, nil
}

// --- Helpers ---

func taskToOutput(t *models.Task) taskOutput {
	return taskOutput{
		ID:        t.ID,
		Title:     t.Title,
		Status:    string(t.Status),
		Skill:     t.Skill,
		Subtasks:  t.Subtasks,
		DependsOn: t.Dependencies,
		Context:   t.Context,
	}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}
