// Package tui is a terminal front end for the savings engine. Each field is
// a coarse slider moved with the arrow keys plus a precise number entry.
package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"savings-calculator/domain"
	"savings-calculator/service"
)

const (
	sliderWidth = 24
	largeStep   = 10
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#1A202C"))
	subtitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#718096"))
	labelStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4A5568"))
	focusStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3182CE"))
	valueStyle    = lipgloss.NewStyle().Bold(true)
	badgeStyle    = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#38A169")).
			Padding(0, 1)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C53030"))
)

// Model is the bubbletea model. It owns one engine; bubbletea delivers
// messages one at a time, so no locking is needed.
type Model struct {
	engine  *service.Engine
	ranges  domain.Ranges
	focus   int
	editing bool
	input   textinput.Model
	keys    keyMap
	help    help.Model
	status  string
}

func New(engine *service.Engine) Model {
	ti := textinput.New()
	ti.Prompt = "› "
	ti.CharLimit = 16

	m := Model{
		engine: engine,
		ranges: domain.RangesFor(engine.Policy().Variant),
		input:  ti,
		keys:   defaultKeyMap(),
		help:   help.New(),
	}
	m.focus = m.firstEditable()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Plan exposes the engine state, mainly for tests.
func (m Model) Plan() domain.SavingsPlan {
	return m.engine.Plan()
}

func (m Model) Focused() domain.Field {
	return domain.Fields[m.focus]
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.updateBrowsing(msg)
	}
	return m, nil
}

func (m Model) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Next):
		m.moveFocus(1)
	case key.Matches(msg, m.keys.Prev):
		m.moveFocus(-1)
	case key.Matches(msg, m.keys.Increase):
		m.nudge(1)
	case key.Matches(msg, m.keys.Decrease):
		m.nudge(-1)
	case key.Matches(msg, m.keys.IncreaseLg):
		m.nudge(largeStep)
	case key.Matches(msg, m.keys.DecreaseLg):
		m.nudge(-largeStep)
	case key.Matches(msg, m.keys.Type):
		field := m.Focused()
		if !m.engine.Policy().Editable(field) {
			m.status = fmt.Sprintf("%s is calculated", field)
			return m, nil
		}
		m.editing = true
		m.input.SetValue("")
		m.input.Placeholder = fmt.Sprintf("%d", service.RoundWhole(m.engine.Plan().Value(field)))
		cmd := m.input.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Auto):
		m.report(m.engine.SetAutoCalculate(!m.engine.AutoCalculate()))
	case key.Matches(msg, m.keys.CalcGoal):
		m.report(m.engine.Recompute(domain.FieldGoal))
	case key.Matches(msg, m.keys.CalcContr):
		m.report(m.engine.Recompute(domain.FieldContribution))
	case key.Matches(msg, m.keys.CalcDur):
		m.report(m.engine.Recompute(domain.FieldDuration))
	case key.Matches(msg, m.keys.Reset):
		m.engine.Reset()
	}
	return m, nil
}

func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Commit):
		value := service.CoerceInput(m.input.Value())
		m.report(m.engine.Edit(m.Focused(), value))
		m.stopEditing()
		return m, nil
	case key.Matches(msg, m.keys.Cancel):
		m.stopEditing()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) stopEditing() {
	m.editing = false
	m.input.Blur()
	m.input.SetValue("")
}

func (m *Model) moveFocus(delta int) {
	n := len(domain.Fields)
	m.focus = ((m.focus+delta)%n + n) % n
}

// nudge moves the focused slider. Slider values stay inside the field range.
func (m *Model) nudge(steps int) {
	field := m.Focused()
	r, ok := m.ranges[field]
	if !ok {
		return
	}
	value := r.Nudge(m.engine.Plan().Value(field), steps)
	m.report(m.engine.Edit(field, value))
}

func (m *Model) report(err error) {
	switch {
	case err == nil:
		m.status = ""
	case errors.Is(err, domain.ErrOutputField):
		m.status = fmt.Sprintf("%s is calculated", m.Focused())
	case errors.Is(err, domain.ErrAutoCalculateFixed):
		m.status = "auto-calculate is always on here"
	default:
		m.status = err.Error()
	}
}

func (m Model) firstEditable() int {
	policy := m.engine.Policy()
	for i, f := range domain.Fields {
		if policy.Editable(f) {
			return i
		}
	}
	return 0
}

func (m Model) View() string {
	policy := m.engine.Policy()
	view := service.NewPlanView(m.engine.Plan(), policy)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Savings Calculator"))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render(subtitle(policy)))
	b.WriteString("\n\n")

	for i, r := range m.ranges.Ordered() {
		b.WriteString(m.renderField(i == m.focus, r, view))
		b.WriteString("\n")
	}

	if policy.Toggleable {
		state := "off"
		if policy.AutoCalculate {
			state = "on"
		}
		b.WriteString(subtitleStyle.Render("auto-calculate: " + state))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) renderField(focused bool, r domain.FieldRange, view service.PlanView) string {
	label := labelStyle.Render(r.Label)
	cursor := "  "
	if focused {
		label = focusStyle.Render(r.Label)
		cursor = focusStyle.Render("› ")
	}
	if view.Calculated(r.Field) {
		label += " " + badgeStyle.Render("CALCULATED")
	}

	value := formatValue(r, view.Value(r.Field))
	line := fmt.Sprintf("%s%s\n  %s  %s", cursor, label, valueStyle.Render(value), slider(r, m.engine.Plan().Value(r.Field)))
	if focused && m.editing {
		line += "\n  " + m.input.View()
	}
	return line
}

func subtitle(policy domain.Policy) string {
	if policy.Variant == domain.VariantGoalSeeking {
		return fmt.Sprintf("Set the other two values to find the %s.", policy.Target)
	}
	return "Adjust any two values to calculate the third."
}

func formatValue(r domain.FieldRange, v int64) string {
	if r.UnitPosition == domain.UnitSuffix {
		return fmt.Sprintf("%d%s", v, r.Unit)
	}
	return fmt.Sprintf("%s%d", r.Unit, v)
}

func slider(r domain.FieldRange, v float64) string {
	span := r.Max - r.Min
	pos := 0
	if span > 0 {
		pos = int((r.Clamp(v) - r.Min) / span * sliderWidth)
	}
	if pos < 0 {
		pos = 0
	}
	if pos > sliderWidth {
		pos = sliderWidth
	}
	return "[" + strings.Repeat("=", pos) + "o" + strings.Repeat("-", sliderWidth-pos) + "]"
}
