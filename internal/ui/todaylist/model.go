package todaylist

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/punchcard/internal/keys"
	"github.com/nhle/punchcard/internal/model"
	"github.com/nhle/punchcard/internal/theme"
)

// Model is the list of live instances for the current day.
type Model struct {
	list          list.Model
	keys          *keys.KeyMap
	showCompleted bool
	total         int
	width         int
	height        int
}

// New creates a new list model.
func New(k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height)
	l.Title = "Today"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:          l,
		keys:          k,
		showCompleted: true,
		width:         width,
		height:        height,
	}
}

// SetTodos replaces the displayed instances, keeping the cursor on the
// same instance when it is still listed.
func (m *Model) SetTodos(todos []model.Todo, showCompleted bool) tea.Cmd {
	m.showCompleted = showCompleted
	m.total = len(todos)

	selected, hadSelection := m.SelectedTodo()

	visible := make([]model.Todo, 0, len(todos))
	for _, td := range todos {
		if td.Done && !showCompleted {
			continue
		}
		visible = append(visible, td)
	}
	Order(visible)

	items := make([]list.Item, len(visible))
	cursor := 0
	for i, td := range visible {
		items[i] = TodoItem{Todo: td}
		if hadSelection && td.ID == selected.ID {
			cursor = i
		}
	}
	cmd := m.list.SetItems(items)
	m.list.Select(cursor)
	return cmd
}

// SelectedTodo returns the instance under the cursor.
func (m Model) SelectedTodo() (model.Todo, bool) {
	it, ok := m.list.SelectedItem().(TodoItem)
	if !ok {
		return model.Todo{}, false
	}
	return it.Todo, true
}

// Update handles messages for the list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the list view.
func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}
	return m.list.View()
}

// renderEmptyState shows guidance text when nothing is listed.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.total > 0 && !m.showCompleted {
		return style.Render("Everything is done for today.\nPress H to show finished tasks.")
	}

	return style.Render(
		"Nothing planned yet.\n\n" +
			"Press n to add a task.",
	)
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height)
}
