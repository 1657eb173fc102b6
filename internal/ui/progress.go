// Package ui renders live collection progress in a terminal, the way the
// surrounding toolchain renders its own build pipeline progress.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Status is one fixture's place in the collection pipeline.
type Status uint8

const (
	StatusQueued Status = iota
	StatusRunning
	StatusDone
	StatusError
)

// Event reports one fixture's progress, emitted as its collector advances.
type Event struct {
	Fixture string
	Status  Status
	Rows    int // row count reported for the fixture, set once Status is StatusDone
}

type fixtureItem struct {
	name   string
	status string
	rows   int
}

type eventMsg Event
type doneMsg struct{}

type progressModel struct {
	title   string
	events  <-chan Event
	spinner spinner.Model
	prog    progress.Model
	items   []fixtureItem
	index   map[string]int
	width   int
	done    bool
}

// NewProgressModel returns a Bubble Tea model that renders concurrent
// fixture collection progress.
func NewProgressModel(title string, fixtures []string, events <-chan Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	items := make([]fixtureItem, 0, len(fixtures))
	index := make(map[string]int, len(fixtures))
	for i, name := range fixtures {
		items = append(items, fixtureItem{name: name, status: "queued"})
		index[name] = i
	}
	return &progressModel{title: title, events: events, spinner: sp, prog: prog, items: items, index: index, width: 80}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listen())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.apply(Event(msg))
		return m, tea.Batch(cmd, m.listen())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		next, cmd := m.prog.Update(msg)
		m.prog = next.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := m.title
	if m.done {
		header = "done: " + header
	} else {
		header = fmt.Sprintf("%s %s", m.spinner.View(), header)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	nameWidth := m.width - 16
	if nameWidth < 16 {
		nameWidth = 16
	}
	for _, item := range m.items {
		name := runewidth.Truncate(item.name, nameWidth, "…")
		statusStyled := styleStatus(item.status).Render(fmt.Sprintf("%10s", item.status))
		if item.status == "done" {
			fmt.Fprintf(&b, "  %s %s (%d rows)\n", statusStyled, name, item.rows)
		} else {
			fmt.Fprintf(&b, "  %s %s\n", statusStyled, name)
		}
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

func (m *progressModel) listen() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) apply(ev Event) tea.Cmd {
	idx, ok := m.index[ev.Fixture]
	if !ok {
		return nil
	}
	switch ev.Status {
	case StatusRunning:
		m.items[idx].status = "collecting"
	case StatusDone:
		m.items[idx].status = "done"
		m.items[idx].rows = ev.Rows
	case StatusError:
		m.items[idx].status = "error"
	}

	finished := 0
	for _, item := range m.items {
		if item.status == "done" || item.status == "error" {
			finished++
		}
	}
	if len(m.items) == 0 {
		return nil
	}
	return m.prog.SetPercent(float64(finished) / float64(len(m.items)))
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case "done":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case "error":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case "collecting":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	}
}
