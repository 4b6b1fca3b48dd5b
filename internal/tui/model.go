package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/meowbar/meowbar/internal/daemon/engine"
	"github.com/meowbar/meowbar/internal/models"
)

// catFrames are drawn by the spinner; its speed follows the state's
// animation interval.
var catFrames = []string{"=^.^=", "=^o^=", "=^-^=", "=^o^="}

// Model is the live terminal view of the engine's output.
type Model struct {
	table        models.StateTable
	statusFile   string
	recentEvents int

	spinner spinner.Model
	state   models.CatState
	doc     *models.StatusDocument
	cause   engine.Cause
	changed time.Time
	width   int
	now     func() time.Time
}

// NewModel creates a model showing idle until the first event arrives.
func NewModel(table models.StateTable, statusFile string, recentEvents int) Model {
	if table == nil {
		table = models.DefaultStateTable()
	}
	m := Model{
		table:        table,
		statusFile:   statusFile,
		recentEvents: recentEvents,
		state:        models.StateIdle,
		doc:          models.EmptyStatus(),
		now:          time.Now,
	}
	m.changed = m.now()
	m.spinner = spinner.New(spinner.WithSpinner(m.spinnerFor(m.state)))
	return m
}

func (m Model) spinnerFor(s models.CatState) spinner.Spinner {
	return spinner.Spinner{
		Frames: catFrames,
		FPS:    m.table.Info(s).AnimationInterval,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tick())
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return tickMsg{} })
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case EngineEventMsg:
		return m.applyEvent(msg.Event), nil

	case tickMsg:
		return m, tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) applyEvent(ev engine.Event) Model {
	if ev.Document != nil {
		m.doc = ev.Document
	}
	if ev.Kind != engine.EventStateChanged {
		return m
	}
	m.state = ev.State
	m.cause = ev.Cause
	m.changed = m.now()
	m.spinner.Spinner = m.spinnerFor(ev.State)
	return m
}

// View implements tea.Model.
func (m Model) View() string {
	info := m.table.Info(m.state)

	var b strings.Builder
	b.WriteString(headerStyle.Render("MeowBar"))
	b.WriteString(hintStyle.Render("  " + m.statusFile))
	b.WriteString("\n\n")

	b.WriteString(stateStyle(info).Render(m.spinner.View()))
	b.WriteString("  ")
	b.WriteString(stateStyle(info).Render(fmt.Sprintf("%s %s", info.Emoji, info.DisplayName)))
	b.WriteString(hintStyle.Render(fmt.Sprintf("  (%s, %s ago)", m.cause, m.now().Sub(m.changed).Round(time.Second))))
	b.WriteString("\n")

	if m.state == models.StateError && m.doc.Error() != "" {
		b.WriteString(errorStyle.Render("⚠ " + m.doc.Error()))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for _, row := range m.fields() {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-13s", row[0])))
		b.WriteString(valueStyle.Render(row[1]))
		b.WriteString("\n")
	}

	if events := m.doc.RecentEvents(m.recentEvents); len(events) > 0 {
		b.WriteString("\n")
		b.WriteString(sectionHeaderStyle.Render("Recent Events"))
		b.WriteString("\n")
		for _, e := range events {
			line := e.Event
			if e.Detail != "" {
				line += ": " + e.Detail
			}
			b.WriteString(labelStyle.Render("  " + e.Time + " "))
			b.WriteString(valueStyle.Render(line))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(hintStyle.Render("q quit"))

	style := frameStyle
	if m.width > 4 {
		style = style.Width(m.width - 4)
	}
	return style.Render(b.String())
}

// fields returns the label/value rows for the session.
func (m Model) fields() [][2]string {
	var rows [][2]string
	add := func(label string, v *string) {
		if v != nil && *v != "" {
			rows = append(rows, [2]string{label, *v})
		}
	}
	addInt := func(label string, v *int) {
		if v != nil {
			rows = append(rows, [2]string{label, fmt.Sprintf("%d", *v)})
		}
	}

	add("Session", m.doc.SessionID)
	add("Last event", m.doc.LastEvent)
	add("Tool", m.doc.ToolName)
	addInt("Tool calls", m.doc.ToolCallCount)
	addInt("Prompts", m.doc.PromptCount)
	addInt("Errors", m.doc.ErrorCount)
	if elapsed, ok := m.doc.SessionDuration(m.now()); ok {
		rows = append(rows, [2]string{"Session time", elapsed.Round(time.Second).String()})
	}
	if m.doc.Timestamp != "" {
		rows = append(rows, [2]string{"Updated", m.doc.Timestamp})
	}
	return rows
}
