// internal/tui/run_view.go
//
// Live progress view for verbose runs. It follows The Elm Architecture
// that bubbletea provides:
//
// 1. Model: the view's state (counts, current chunk, the bar)
// 2. Update: folds engine messages into new state
// 3. View: renders state to a string
//
// The engine runs in its own goroutine and feeds this view through
// Program.Send; the view never touches the accumulator.

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/sweeprig/internal/engine"
	progressmeter "github.com/kingrea/sweeprig/internal/progress"
)

const timeRound = 10 * time.Millisecond

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// ProgressMsg carries a meter update from the engine.
type ProgressMsg progressmeter.Update

// ChunkMsg announces the start of a chunk.
type ChunkMsg struct {
	Index int
	Count int
}

// DoneMsg signals a finished run with its report.
type DoneMsg struct {
	Report engine.Report
}

// ErrMsg signals a fatal run error.
type ErrMsg struct {
	Err error
}

// Model is the progress view state.
type Model struct {
	bar   progress.Model
	runID string

	done   int64
	failed int64
	total  int64
	chunk  int
	chunks int

	report   engine.Report
	finished bool
	err      error
}

// NewModel creates the view for a run with the given task total.
func NewModel(runID string, total int64) Model {
	bar := progress.New(progress.WithDefaultGradient())
	return Model{bar: bar, runID: runID, total: total}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		width := msg.Width - 4
		if width > 0 {
			m.bar.Width = width
		}
	case ProgressMsg:
		m.done = msg.Done
		m.failed = msg.Failed
		m.total = msg.Total
	case ChunkMsg:
		m.chunk = msg.Index
		m.chunks = msg.Count
	case DoneMsg:
		m.finished = true
		m.report = msg.Report
		return m, tea.Quit
	case ErrMsg:
		m.err = msg.Err
		return m, tea.Quit
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("sweeprig"))
	b.WriteString(subtleStyle.Render(fmt.Sprintf("  run %s", m.runID)))
	b.WriteString("\n\n")

	pct := 0.0
	if m.total > 0 {
		pct = float64(m.done) / float64(m.total)
	}
	b.WriteString(m.bar.ViewAs(pct))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("%d/%d tasks", m.done, m.total))
	if m.failed > 0 {
		b.WriteString(failureStyle.Render(fmt.Sprintf("  %d failed", m.failed)))
	}
	if m.chunks > 0 {
		b.WriteString(subtleStyle.Render(fmt.Sprintf("  chunk %d/%d", m.chunk, m.chunks)))
	}
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(failureStyle.Render(fmt.Sprintf("error: %v", m.err)))
		b.WriteString("\n")
	}
	if m.finished {
		b.WriteString(subtleStyle.Render(fmt.Sprintf(
			"done in %s (%d succeeded, %d failed)",
			m.report.Elapsed.Round(timeRound), m.report.Succeeded, m.report.Failed)))
		b.WriteString("\n")
	}
	return b.String()
}

// Err reports the fatal error delivered to the view, if any.
func (m Model) Err() error { return m.err }
