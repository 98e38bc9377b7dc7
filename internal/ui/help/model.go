package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/punchcard/internal/keys"
	"github.com/nhle/punchcard/internal/model"
	"github.com/nhle/punchcard/internal/theme"
)

// paletteCommands describes what can be typed after ':'.
var paletteCommands = []struct{ usage, desc string }{
	{"rebuild", "repair day statistics from the punch ledger"},
	{"completed", "show or hide finished todos"},
	{"range N", "days covered by the stats panel"},
	{"restore <title>", "bring back an archived template"},
	{"export <file>", "write templates to a TOML catalog"},
	{"import <file>", "add templates from a TOML catalog"},
	{"clear", "forget recently used configurations"},
	{"quit", "save and exit"},
}

// Model is the help overlay. It scrolls when the terminal is short.
type Model struct {
	keys     *keys.KeyMap
	help     help.Model
	viewport viewport.Model
	width    int
	height   int
}

// New creates a new help view model.
func New(keys *keys.KeyMap, width, height int) Model {
	m := Model{
		keys:     keys,
		help:     help.New(),
		viewport: viewport.New(width-6, height-6),
	}
	m.SetSize(width, height)
	return m
}

// Update scrolls the overlay.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the help overlay.
func (m Model) View() string {
	return theme.PanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(m.viewport.View())
}

// SetSize updates the help view dimensions and re-renders the content.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 6
	m.help.ShowAll = true
	m.viewport.Width = max(width-6, 0)
	m.viewport.Height = max(height-6, 0)
	m.viewport.SetContent(m.content())
}

func (m Model) content() string {
	heading := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)

	var cmds strings.Builder
	for _, c := range paletteCommands {
		cmds.WriteString(theme.CategoryStyle.Render(":"+c.usage) + "  " + theme.DimmedStyle.Render(c.desc) + "\n")
	}

	punching := theme.DimmedStyle.Render(strings.Join([]string{
		"A punch records one unit of progress and completes the todo once its target is met.",
		"A second punch within a minute is ignored unless it carries a note.",
		"Goals (1x) are finished with x. With goal notes enabled, p logs progress on a goal.",
		"Weekly, monthly and yearly todos carry over until their cycle ends; daily ones start fresh.",
	}, "\n"))

	return lipgloss.JoinVertical(lipgloss.Left,
		heading.Render("Keys"),
		m.help.View(m.keys),
		"",
		heading.Render("Commands"),
		strings.TrimRight(cmds.String(), "\n"),
		"",
		heading.Render("Periods"),
		legend(),
		"",
		heading.Render("Punching"),
		punching,
	)
}

// legend explains the period badges used in the list.
func legend() string {
	entries := []struct {
		label  string
		period model.Period
	}{
		{"D daily", model.PeriodDaily},
		{"W weekly", model.PeriodWeekly},
		{"M monthly", model.PeriodMonthly},
		{"Y yearly", model.PeriodYearly},
		{"1x goal", model.PeriodOnce},
	}
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = theme.PeriodStyle(e.period).Render(e.label)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}
