package todoform

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/punchcard/internal/model"
	"github.com/nhle/punchcard/internal/theme"
	"github.com/nhle/punchcard/internal/tracker"
)

// noHistory is the "start from scratch" choice of the history picker.
const noHistory = -1

// SubmittedMsg is dispatched when the form is completed.
type SubmittedMsg struct {
	// TodoID is the edited instance, empty when creating.
	TodoID string
	Params tracker.TaskParams

	// HistoryIndex is the recently used configuration to add, or -1.
	HistoryIndex int
}

// CancelMsg is dispatched when the user cancels the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	historyIndex    int
	title           string
	category        string
	period          model.Period
	minFrequency    string
	unit            model.Unit
	minutesPerPunch string
	description     string
}

// Model is the Bubble Tea model for the task create/edit form.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	editMode bool
	editID   string
	history  []model.HistoryItem
	width    int
	height   int
}

// New creates a new form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{historyIndex: noHistory},
		width:  width,
		height: height,
	}
}

// StartCreate initializes the form for a new task. Recently used
// configurations are offered as a shortcut when present.
func (m *Model) StartCreate(history []model.HistoryItem) tea.Cmd {
	m.editMode = false
	m.editID = ""
	m.history = history
	*m.fb = formBindings{
		historyIndex: noHistory,
		period:       model.PeriodDaily,
		minFrequency: "1",
		unit:         model.UnitCount,
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// StartEdit initializes the form for editing an existing instance.
func (m *Model) StartEdit(td model.Todo) tea.Cmd {
	m.editMode = true
	m.editID = td.ID
	m.history = nil
	*m.fb = formBindings{
		historyIndex: noHistory,
		title:        td.Title,
		category:     td.Category,
		period:       td.Period,
		minFrequency: strconv.Itoa(td.MinFrequency),
		unit:         td.Unit,
		description:  td.Description,
	}
	if td.MinutesPerPunch > 0 {
		m.fb.minutesPerPunch = strconv.Itoa(td.MinutesPerPunch)
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Task"
	if m.editMode {
		titleText = "Edit Task"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(titleText) + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	var groups []*huh.Group
	if picker := m.historyField(); picker != nil {
		groups = append(groups, huh.NewGroup(picker))
	}

	fb := m.fb
	groups = append(groups,
		huh.NewGroup(m.coreFields()...).
			WithHideFunc(func() bool { return fb.historyIndex != noHistory }),
	)

	return huh.NewForm(groups...).
		WithWidth(m.formWidth()).
		WithHeight(m.formHeight())
}

func (m *Model) historyField() huh.Field {
	if len(m.history) == 0 {
		return nil
	}
	opts := []huh.Option[int]{huh.NewOption("Start from scratch", noHistory)}
	for i, h := range m.history {
		label := fmt.Sprintf("%s (%s, %s)", h.Title, h.Category, h.Period)
		opts = append(opts, huh.NewOption(label, i))
	}
	return huh.NewSelect[int]().
		Title("Recently used").
		Options(opts...).
		Value(&m.fb.historyIndex)
}

func (m *Model) coreFields() []huh.Field {
	return []huh.Field{
		huh.NewInput().
			Title("Title").
			Placeholder("What do you want to keep doing?").
			Value(&m.fb.title).
			Validate(validateRequired("Title")),
		huh.NewInput().
			Title("Category").
			Placeholder(model.DefaultCategory).
			Value(&m.fb.category),
		huh.NewSelect[model.Period]().
			Title("Period").
			Options(
				huh.NewOption("Daily", model.PeriodDaily),
				huh.NewOption("Weekly", model.PeriodWeekly),
				huh.NewOption("Monthly", model.PeriodMonthly),
				huh.NewOption("Yearly", model.PeriodYearly),
				huh.NewOption("Once (goal)", model.PeriodOnce),
			).
			Value(&m.fb.period),
		huh.NewInput().
			Title("Punches per period").
			Value(&m.fb.minFrequency).
			Validate(validatePositive(false)),
		huh.NewSelect[model.Unit]().
			Title("Unit").
			Options(
				huh.NewOption("Count", model.UnitCount),
				huh.NewOption("Minutes", model.UnitMinutes),
			).
			Value(&m.fb.unit),
		huh.NewInput().
			Title("Minutes per punch").
			Placeholder(fmt.Sprintf("%d (minutes unit only)", model.DefaultMinutesPerPunch)).
			Value(&m.fb.minutesPerPunch).
			Validate(validatePositive(true)),
		huh.NewText().
			Title("Description").
			Placeholder("Optional details...").
			Value(&m.fb.description),
	}
}

func (m Model) handleSubmit() tea.Cmd {
	msg := SubmittedMsg{
		TodoID:       m.editID,
		HistoryIndex: m.fb.historyIndex,
		Params: tracker.TaskParams{
			Title:       m.fb.title,
			Category:    m.fb.category,
			Period:      m.fb.period,
			Unit:        m.fb.unit,
			Description: m.fb.description,
		},
	}
	msg.Params.MinFrequency, _ = strconv.Atoi(strings.TrimSpace(m.fb.minFrequency))
	msg.Params.MinutesPerPunch, _ = strconv.Atoi(strings.TrimSpace(m.fb.minutesPerPunch))

	return func() tea.Msg { return msg }
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validatePositive(optional bool) func(string) error {
	return func(s string) error {
		s = strings.TrimSpace(s)
		if s == "" && optional {
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return fmt.Errorf("enter a whole number of at least 1")
		}
		return nil
	}
}
