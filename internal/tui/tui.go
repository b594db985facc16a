// Package tui provides a Bubble Tea terminal user interface for spotify-dl.
//
// The model renders one progress line per track from the updates of a
// progress.Hub subscription and quits once the subscription is closed.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	hub "github.com/handiism/spotify-dl/internal/progress"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#1DB954")).
			MarginBottom(1)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))
)

// nameWidth is the column width of track names.
const nameWidth = 40

// trackLine is the rendered state of one bar.
type trackLine struct {
	name     string
	kind     hub.Kind
	position int64
	total    int64
	message  string
}

func (l *trackLine) percent() float64 {
	if l.kind == hub.Finished {
		return 1
	}
	if l.total <= 0 {
		return 0
	}
	return min(float64(l.position)/float64(l.total), 1)
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	updates <-chan hub.Update
	cancel  context.CancelFunc

	spinner  spinner.Model
	progress progress.Model

	lines map[int]*trackLine
	order []int

	done      bool
	cancelled bool
	width     int
}

// NewModel creates a model reading updates. cancel is called when the
// user interrupts the run.
func NewModel(updates <-chan hub.Update, cancel context.CancelFunc) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#1DB954"))

	prog := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	prog.Width = 30

	return Model{
		updates:  updates,
		cancel:   cancel,
		spinner:  sp,
		progress: prog,
		lines:    make(map[int]*trackLine),
	}
}

// Message types
type (
	// UpdateMsg carries one hub update.
	UpdateMsg struct {
		Update hub.Update
	}

	// DoneMsg is sent once the update channel is closed.
	DoneMsg struct{}
)

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForUpdate(m.updates))
}

func waitForUpdate(updates <-chan hub.Update) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-updates
		if !ok {
			return DoneMsg{}
		}
		return UpdateMsg{Update: u}
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = min(max(msg.Width-nameWidth-30, 10), 40)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.cancelled = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case UpdateMsg:
		m.apply(msg.Update)
		return m, waitForUpdate(m.updates)

	case DoneMsg:
		m.done = true
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) apply(u hub.Update) {
	line, ok := m.lines[u.ID]
	if !ok {
		line = &trackLine{}
		m.lines[u.ID] = line
		m.order = append(m.order, u.ID)
	}
	switch u.Kind {
	case hub.Created:
		line.name = u.Name
		line.total = u.Total
		line.kind = hub.Created
	case hub.Position:
		line.position = u.Position
	case hub.Message:
		line.message = u.Message
	default:
		line.kind = u.Kind
		line.message = u.Message
	}
	if line.name == "" {
		line.name = u.Name
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("spotify-dl"))
	b.WriteString("\n")

	var finished, failed, skipped int
	for _, id := range m.order {
		line := m.lines[id]
		switch line.kind {
		case hub.Finished:
			finished++
		case hub.Failed:
			failed++
		case hub.Skipped:
			skipped++
		}
		b.WriteString(m.renderLine(line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("%d/%d done", finished+failed+skipped, len(m.order))))
	if failed > 0 {
		b.WriteString(errorStyle.Render(fmt.Sprintf(" • %d failed", failed)))
	}
	b.WriteString("\n")
	if !m.done {
		b.WriteString(dimStyle.Render("ctrl+c: cancel"))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) renderLine(line *trackLine) string {
	name := truncate(line.name, nameWidth)
	name += strings.Repeat(" ", nameWidth-len([]rune(name)))

	switch line.kind {
	case hub.Finished:
		return successStyle.Render("✓ "+name) + " " + dimStyle.Render(line.message)
	case hub.Failed:
		return errorStyle.Render("✗ "+name) + " " + errorStyle.Render(line.message)
	case hub.Skipped:
		return dimStyle.Render("- " + name + " " + line.message)
	}

	status := m.progress.ViewAs(line.percent())
	if line.message != "" {
		status += " " + warningStyle.Render(line.message)
	}
	return m.spinner.View() + " " + name + " " + status
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// Cancelled reports whether the user interrupted the run.
func (m Model) Cancelled() bool {
	return m.cancelled
}

// Run renders updates until the channel is closed or the user presses
// ctrl+c, which calls cancel.
func Run(updates <-chan hub.Update, cancel context.CancelFunc) error {
	p := tea.NewProgram(NewModel(updates, cancel))
	_, err := p.Run()
	return err
}
