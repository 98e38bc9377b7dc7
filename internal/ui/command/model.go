package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/punchcard/internal/theme"
)

// CommandMsg is emitted when the user executes a palette command.
type CommandMsg string

// InputMsg is emitted when a free-text prompt is submitted. Tag identifies
// which prompt produced it.
type InputMsg struct {
	Tag   string
	Value string
}

// Commands lists the palette commands offered as completions.
var Commands = []string{
	"rebuild",
	"clear",
	"completed",
	"range ",
	"restore ",
	"export ",
	"import ",
	"quit",
}

// Model is a single-line input panel. It serves both as the command
// palette and as a prompt for notes and reasons.
type Model struct {
	input  textinput.Model
	title  string
	tag    string
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "type a command..."
	ti.Prompt = ": "
	ti.Width = width - 6
	ti.ShowSuggestions = true
	ti.SetSuggestions(Commands)

	return Model{
		input:  ti,
		title:  "Command Palette",
		width:  width,
		height: height,
	}
}

// Update handles messages for the panel.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			value := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if m.tag != "" {
				tag := m.tag
				return m, func() tea.Msg {
					return InputMsg{Tag: tag, Value: value}
				}
			}
			if value != "" {
				return m, func() tea.Msg {
					return CommandMsg(value)
				}
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the panel.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := titleStyle.Render(m.title)
	input := m.input.View()

	content := lipgloss.JoinVertical(lipgloss.Left, title, input)

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the panel dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus opens the panel as the command palette.
func (m *Model) Focus() tea.Cmd {
	m.tag = ""
	m.title = "Command Palette"
	m.input.Prompt = ": "
	m.input.Placeholder = "type a command..."
	m.input.ShowSuggestions = true
	m.input.Reset()
	return m.input.Focus()
}

// Prompt opens the panel as a free-text prompt. The submitted value is
// delivered as an InputMsg carrying tag.
func (m *Model) Prompt(tag, title, placeholder string) tea.Cmd {
	m.tag = tag
	m.title = title
	m.input.Prompt = "> "
	m.input.Placeholder = placeholder
	m.input.ShowSuggestions = false
	m.input.Reset()
	return m.input.Focus()
}
