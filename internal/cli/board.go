package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/krr2020/taskflow-ai-sub003/pkg/models"
)

// Board panel indices.
const (
	panelPipeline = iota
	panelWaiting
	panelRetro
	panelCount
)

type boardModel struct {
	activePanel int
	width       int
	height      int

	// Data.
	active     *models.Task
	byStatus   map[models.TaskStatus][]models.Task
	retroTop   []models.RetroEntry
	retroTotal int

	// State.
	loading bool
	err     error
}

type boardDataMsg struct {
	active     *models.Task
	byStatus   map[models.TaskStatus][]models.Task
	retroTop   []models.RetroEntry
	retroTotal int
	err        error
}

// Style definitions.
var (
	boardTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	boardPanelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)

	boardActivePanelStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(1, 2)

	boardHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("62")).
				MarginBottom(1)

	statusWorking   = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	statusCompleted = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	statusBlocked   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	statusOnHold    = lipgloss.NewStyle().Foreground(lipgloss.Color("141"))
	statusWaiting   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	critHigh   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	critMedium = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	critLow    = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))

	boardHelpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newBoardModel() boardModel {
	return boardModel{
		activePanel: panelPipeline,
		loading:     true,
		byStatus:    make(map[models.TaskStatus][]models.Task),
	}
}

func (m boardModel) Init() tea.Cmd {
	return loadBoardData
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.activePanel = (m.activePanel + 1) % panelCount
			return m, nil
		case "shift+tab":
			m.activePanel = (m.activePanel - 1 + panelCount) % panelCount
			return m, nil
		case "r":
			m.loading = true
			return m, loadBoardData
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case boardDataMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.active = msg.active
		m.byStatus = msg.byStatus
		m.retroTop = msg.retroTop
		m.retroTotal = msg.retroTotal
		m.err = nil
		return m, nil
	}

	return m, nil
}

func (m boardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := boardTitleStyle.Render(" TaskFlow Board ")
	help := boardHelpStyle.Render("tab: switch panel | r: refresh | q: quit")

	if m.loading {
		return fmt.Sprintf("%s\n\n  Loading data...\n\n%s", title, help)
	}
	if m.err != nil {
		return fmt.Sprintf("%s\n\n  Error: %s\n\n%s", title, m.err, help)
	}

	pipeline := m.renderPipelinePanel()
	waiting := m.renderWaitingPanel()
	retroPanel := m.renderRetroPanel()

	availableWidth := m.width - 2

	var body string
	if availableWidth > 120 {
		colWidth := availableWidth / 3
		pipeline = m.applyPanelStyle(panelPipeline, pipeline, colWidth-4)
		waiting = m.applyPanelStyle(panelWaiting, waiting, colWidth-4)
		retroPanel = m.applyPanelStyle(panelRetro, retroPanel, colWidth-4)
		body = lipgloss.JoinHorizontal(lipgloss.Top, pipeline, waiting, retroPanel)
	} else {
		panelWidth := availableWidth - 4
		if panelWidth < 20 {
			panelWidth = 20
		}
		pipeline = m.applyPanelStyle(panelPipeline, pipeline, panelWidth)
		waiting = m.applyPanelStyle(panelWaiting, waiting, panelWidth)
		retroPanel = m.applyPanelStyle(panelRetro, retroPanel, panelWidth)
		body = lipgloss.JoinVertical(lipgloss.Left, pipeline, waiting, retroPanel)
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, body, help)
}

func (m boardModel) applyPanelStyle(panel int, content string, width int) string {
	style := boardPanelStyle
	if m.activePanel == panel {
		style = boardActivePanelStyle
	}
	return style.Width(width).Render(content)
}

func (m boardModel) renderPipelinePanel() string {
	var b strings.Builder
	b.WriteString(boardHeaderStyle.Render("Pipeline"))
	b.WriteString("\n")

	if m.active == nil {
		b.WriteString("  No active task.\n")
	} else {
		line := fmt.Sprintf("  ▶ %s %s", m.active.ID, m.active.Title)
		b.WriteString(statusWorking.Render(line))
		b.WriteString("\n")
		for _, status := range models.ActiveStatuses {
			marker := "  "
			if status == m.active.Status {
				marker = "▸ "
			}
			b.WriteString(fmt.Sprintf("    %s%s\n", marker, status))
		}
	}

	completed := len(m.byStatus[models.StatusCompleted])
	total := 0
	for _, group := range m.byStatus {
		total += len(group)
	}
	b.WriteString(statusCompleted.Render(fmt.Sprintf("\n  %d/%d tasks completed", completed, total)))
	return b.String()
}

func (m boardModel) renderWaitingPanel() string {
	var b strings.Builder
	b.WriteString(boardHeaderStyle.Render("Waiting"))
	b.WriteString("\n")

	sections := []struct {
		status models.TaskStatus
		style  lipgloss.Style
	}{
		{models.StatusBlocked, statusBlocked},
		{models.StatusOnHold, statusOnHold},
		{models.StatusNotStarted, statusWaiting},
	}
	empty := true
	for _, sec := range sections {
		group := m.byStatus[sec.status]
		if len(group) == 0 {
			continue
		}
		empty = false
		b.WriteString(sec.style.Render(fmt.Sprintf("  %s (%d)", sec.status, len(group))))
		b.WriteString("\n")
		for i, t := range group {
			if i == 5 {
				b.WriteString(fmt.Sprintf("    … and %d more\n", len(group)-5))
				break
			}
			b.WriteString(fmt.Sprintf("    %s %s\n", t.ID, t.Title))
		}
	}
	if empty {
		b.WriteString("  Nothing waiting.")
	}
	return b.String()
}

func (m boardModel) renderRetroPanel() string {
	var b strings.Builder
	b.WriteString(boardHeaderStyle.Render("Retrospective"))
	b.WriteString("\n")

	if len(m.retroTop) == 0 {
		b.WriteString("  No recorded patterns.")
		return b.String()
	}
	for _, e := range m.retroTop {
		crit := styleForCriticality(e.Criticality).Render(fmt.Sprintf("[%s]", e.Criticality))
		b.WriteString(fmt.Sprintf("  %s ×%d %s\n", crit, e.Count, e.Pattern))
	}
	b.WriteString(fmt.Sprintf("\n  %d pattern(s) total", m.retroTotal))
	return b.String()
}

func styleForCriticality(c models.Criticality) lipgloss.Style {
	switch c {
	case models.CriticalityHigh:
		return critHigh
	case models.CriticalityMedium:
		return critMedium
	case models.CriticalityLow:
		return critLow
	default:
		return lipgloss.NewStyle()
	}
}

func loadBoardData() tea.Msg {
	result := boardDataMsg{byStatus: make(map[models.TaskStatus][]models.Task)}

	if TaskStore != nil {
		tasks, err := TaskStore.ListTasks()
		if err != nil {
			result.err = fmt.Errorf("loading tasks: %w", err)
			return result
		}
		for _, t := range tasks {
			result.byStatus[t.Status] = append(result.byStatus[t.Status], t)
			if t.Status.IsActive() {
				task := t
				result.active = &task
			}
		}
	}

	if Ledger != nil {
		entries, err := Ledger.Load()
		if err != nil {
			result.err = fmt.Errorf("loading retrospective: %w", err)
			return result
		}
		result.retroTotal = len(entries)
		// Most-seen patterns first, capped to keep the panel short.
		for i := 0; i < len(entries); i++ {
			for j := i + 1; j < len(entries); j++ {
				if entries[j].Count > entries[i].Count {
					entries[i], entries[j] = entries[j], entries[i]
				}
			}
		}
		if len(entries) > 8 {
			entries = entries[:8]
		}
		result.retroTop = entries
	}

	return result
}

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Interactive TUI board for the task pipeline",
	Long: `Launch an interactive terminal board showing the active task's pipeline
position, waiting tasks, and the most frequent retrospective patterns.

Navigate between panels with Tab, refresh with r, quit with q.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskStore == nil {
			return fmt.Errorf("task store not initialized")
		}
		p := tea.NewProgram(newBoardModel(), tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(boardCmd)
}
