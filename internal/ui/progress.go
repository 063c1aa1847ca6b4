// Package ui renders live progress of a checking run in the terminal.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"keel/internal/driver"
)

type phaseState uint8

const (
	stateQueued phaseState = iota
	stateRunning
	stateDone
	stateFailed
)

func (s phaseState) String() string {
	switch s {
	case stateRunning:
		return "running"
	case stateDone:
		return "done"
	case stateFailed:
		return "failed"
	default:
		return "queued"
	}
}

type phaseItem struct {
	name    string
	state   phaseState
	elapsed time.Duration
	diags   int
}

type eventMsg driver.PhaseEvent
type doneMsg struct{}

type progressModel struct {
	title   string
	events  <-chan driver.PhaseEvent
	spinner spinner.Model
	prog    progress.Model
	items   []phaseItem
	index   map[string]int
	width   int
	done    bool
}

// NewProgressModel returns a Bubble Tea model that follows the phases of a
// run. The model quits once events is closed.
func NewProgressModel(title string, phases []string, events <-chan driver.PhaseEvent) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 56

	items := make([]phaseItem, len(phases))
	index := make(map[string]int, len(phases))
	for i, name := range phases {
		items[i] = phaseItem{name: name}
		index[name] = i
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   items,
		index:   index,
		width:   60,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(driver.PhaseEvent(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		// прерывание не останавливает проверку, только скрывает экран
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
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
			m.prog.Width = max(msg.Width-4, 10)
		}
	case progress.FrameMsg:
		pm, cmd := m.prog.Update(msg)
		m.prog = pm.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	header := m.title
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(header))
	b.WriteString("\n\n")
	nameWidth := max(m.width-30, 8)
	for _, item := range m.items {
		status := styleState(item.state).Render(fmt.Sprintf("%8s", item.state))
		fmt.Fprintf(&b, "  %s %s", status, runewidth.FillRight(truncate(item.name, nameWidth), nameWidth))
		if item.state == stateDone || item.state == stateFailed {
			fmt.Fprintf(&b, " %8s", item.elapsed.Round(time.Microsecond))
			if item.diags > 0 {
				fmt.Fprintf(&b, "  %d diag", item.diags)
			}
		}
		b.WriteString("\n")
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

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev driver.PhaseEvent) tea.Cmd {
	idx, ok := m.index[ev.Name]
	if !ok {
		return nil
	}
	item := &m.items[idx]
	switch {
	case ev.Status == driver.PhaseStart:
		item.state = stateRunning
	case ev.Failed:
		item.state = stateFailed
	default:
		item.state = stateDone
	}
	if ev.Status == driver.PhaseEnd {
		item.elapsed = ev.Elapsed
		item.diags = ev.Diagnostics
	}
	return m.prog.SetPercent(m.fraction())
}

// fraction counts a running phase as half done.
func (m *progressModel) fraction() float64 {
	if len(m.items) == 0 {
		return 1
	}
	total := 0.0
	for _, item := range m.items {
		switch item.state {
		case stateDone, stateFailed:
			total++
		case stateRunning:
			total += 0.5
		}
	}
	return total / float64(len(m.items))
}

func styleState(s phaseState) lipgloss.Style {
	switch s {
	case stateDone:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case stateFailed:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case stateRunning:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
