package app

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/hashicorp/go-hclog"

	"github.com/nhle/punchcard/internal/keys"
	"github.com/nhle/punchcard/internal/model"
	appsync "github.com/nhle/punchcard/internal/sync"
	"github.com/nhle/punchcard/internal/theme"
	"github.com/nhle/punchcard/internal/tracker"
	"github.com/nhle/punchcard/internal/ui"
	"github.com/nhle/punchcard/internal/ui/command"
	helpview "github.com/nhle/punchcard/internal/ui/help"
	"github.com/nhle/punchcard/internal/ui/stats"
	"github.com/nhle/punchcard/internal/ui/todaylist"
	"github.com/nhle/punchcard/internal/ui/todoform"
)

// dayCheckInterval is how often the app checks whether the calendar day
// changed while it was open.
const dayCheckInterval = time.Minute

// Prompt tags.
const (
	promptNote   = "note"
	promptGiveUp = "give-up"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewStats
	ViewHelp
	ViewCommand
	ViewForm
)

// dayTickMsg fires every dayCheckInterval.
type dayTickMsg time.Time

// actionResultMsg reports the outcome of a tracker operation.
type actionResultMsg struct {
	info string
	err  error
}

// Model is the root Bubble Tea model that manages view routing, layout
// and access to the tracker.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	tracker      *tracker.Tracker
	saver        *appsync.Saver
	log          hclog.Logger
	keys         *keys.KeyMap
	todayList    todaylist.Model
	statsView    stats.Model
	helpView     helpview.Model
	commandView  command.Model
	formView     todoform.Model
	day          string
	promptTodoID string
	flash        string
	flashErr     bool
	ready        bool
}

// New creates the root model. The tracker must already be restored and
// its session started; the saver must be subscribed to it.
func New(tr *tracker.Tracker, saver *appsync.Saver, logger hclog.Logger) Model {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	k := keys.DefaultKeyMap()

	m := Model{
		currentView: ViewList,
		tracker:     tr,
		saver:       saver,
		log:         logger.Named("app"),
		keys:        k,
		todayList:   todaylist.New(k, 80, 20),
		statsView:   stats.New(k, 80, 20),
		helpView:    helpview.New(k, 80, 20),
		commandView: command.New(80, 20),
		formView:    todoform.New(80, 20),
		day:         tr.Today(),
	}
	m.todayList.SetTodos(tr.Todos(), tr.UIConfig().ShowCompleted)
	return m
}

// Init starts the background saver and the day-change ticker.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.saver.Start(),
		tickDay(),
	)
}

func tickDay() tea.Cmd {
	return tea.Tick(dayCheckInterval, func(t time.Time) tea.Msg {
		return dayTickMsg(t)
	})
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.todayList.SetSize(w, h)
		m.statsView.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		m.formView.SetSize(w, h)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case dayTickMsg:
		if today := m.tracker.Today(); today != m.day {
			m.day = today
			_, report := m.tracker.Materialize()
			m.log.Info("day changed", "day", today, "generated", report.Generated, "rolled_over", report.RolledOver)
			m.setFlash(describeMaterialize(report), nil)
			m.refreshList()
		}
		return m, tickDay()

	case appsync.SaveResultMsg:
		if msg.Error != nil {
			m.setFlash("", msg.Error)
		}
		return m, m.saver.WaitForNextResult()

	case actionResultMsg:
		m.setFlash(msg.info, msg.err)
		m.refreshList()
		return m, nil

	case todoform.SubmittedMsg:
		m.currentView = ViewList
		return m, m.submitForm(msg)

	case todoform.CancelMsg:
		m.currentView = ViewList
		return m, nil

	case stats.BackMsg:
		m.currentView = ViewList
		return m, nil

	case command.CommandMsg:
		m.currentView = ViewList
		return m, m.executeCommand(string(msg))

	case command.InputMsg:
		m.currentView = ViewList
		return m, m.handlePrompt(msg)

	case tea.KeyMsg:
		if cmd, handled := m.handleGlobalKey(msg); handled {
			return m, cmd
		}
		if m.currentView == ViewList {
			if cmd, handled := m.handleListKey(msg); handled {
				return m, cmd
			}
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKey processes keys that work regardless of the current view.
func (m *Model) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	inputFocused := m.currentView == ViewForm || m.currentView == ViewCommand

	switch {
	case msg.String() == "ctrl+c":
		return m.quit(), true

	case inputFocused && key.Matches(msg, m.keys.Back):
		if m.currentView == ViewCommand {
			m.currentView = ViewList
			return nil, true
		}
		return nil, false

	case inputFocused:
		return nil, false

	case key.Matches(msg, m.keys.Quit):
		if m.currentView == ViewList {
			return m.quit(), true
		}
		m.currentView = ViewList
		return nil, true

	case key.Matches(msg, m.keys.Help):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return nil, true

	case key.Matches(msg, m.keys.Command):
		m.previousView = m.currentView
		m.currentView = ViewCommand
		return m.commandView.Focus(), true

	case key.Matches(msg, m.keys.Back) && m.currentView == ViewHelp:
		m.currentView = m.previousView
		return nil, true
	}
	return nil, false
}

// handleListKey processes actions on the selected instance.
func (m *Model) handleListKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.New):
		m.currentView = ViewForm
		return m.formView.StartCreate(m.tracker.History()), true

	case key.Matches(msg, m.keys.Refresh):
		return m.rematerialize(), true

	case key.Matches(msg, m.keys.ToggleCompleted):
		cfg := m.tracker.UIConfig()
		cfg.ShowCompleted = !cfg.ShowCompleted
		m.tracker.SetUIConfig(cfg)
		m.refreshList()
		return nil, true

	case key.Matches(msg, m.keys.Stats):
		var selected *model.Todo
		if td, ok := m.todayList.SelectedTodo(); ok {
			selected = &td
		}
		m.statsView.SetSummary(stats.Collect(m.tracker, selected, m.tracker.UIConfig().StatsRangeDays))
		m.currentView = ViewStats
		return nil, true
	}

	td, ok := m.todayList.SelectedTodo()
	if !ok {
		return nil, false
	}

	switch {
	case key.Matches(msg, m.keys.Punch):
		return m.punch(td, ""), true

	case key.Matches(msg, m.keys.PunchNote):
		m.promptTodoID = td.ID
		m.currentView = ViewCommand
		return m.commandView.Prompt(promptNote, "Note for "+td.Title, "what did you do?"), true

	case key.Matches(msg, m.keys.Done):
		return m.toggleDone(td), true

	case key.Matches(msg, m.keys.Edit):
		m.currentView = ViewForm
		return m.formView.StartEdit(td), true

	case key.Matches(msg, m.keys.Archive):
		return m.archive(td), true

	case key.Matches(msg, m.keys.GiveUp):
		m.promptTodoID = td.ID
		m.currentView = ViewCommand
		return m.commandView.Prompt(promptGiveUp, "Give up "+td.Title, "reason (optional)"), true

	case key.Matches(msg, m.keys.Delete):
		return m.deleteTodo(td), true
	}
	return nil, false
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.todayList, cmd = m.todayList.Update(msg)
	case ViewStats:
		m.statsView, cmd = m.statsView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewForm:
		m.formView, cmd = m.formView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("punchcard  "+m.day, m.saveStatus())
	summary := m.layout.RenderSummary(m.summaryParts()...)
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.statusText())

	return m.layout.RenderWithFrame(header, summary, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewList:
		return m.todayList.View()
	case ViewStats:
		return m.statsView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewForm:
		return m.formView.View()
	default:
		return ""
	}
}

// summaryParts returns the streak and today's totals for the summary line.
func (m Model) summaryParts() []string {
	today := m.tracker.TodayTotals()
	parts := []string{
		fmt.Sprintf("streak %d (best %d)", m.tracker.CurrentStreak(), m.tracker.MaxStreak()),
		fmt.Sprintf("%d punch(es) today", today.PunchInsTotal),
	}
	if today.MinutesTotal > 0 {
		parts = append(parts, fmt.Sprintf("%dm", today.MinutesTotal))
	}
	parts = append(parts, fmt.Sprintf("%d/%d done", today.CompletedCount, today.CreatedCount))
	return parts
}

// saveStatus returns a short string describing the background writer.
func (m Model) saveStatus() string {
	st := m.saver.Status()
	switch {
	case st.State == appsync.SaveRunning:
		return "saving..."
	case st.State == appsync.SaveError:
		return "⚠ not saved"
	case st.Pending > 0:
		return fmt.Sprintf("%d unsaved", st.Pending)
	case st.LastSave.IsZero():
		return "idle"
	default:
		return "saved " + st.LastSave.Format("15:04")
	}
}

// statusText returns the flash message or keyboard hints for the status bar.
func (m Model) statusText() string {
	if m.flash != "" && m.currentView == ViewList {
		if m.flashErr {
			return theme.ErrorStyle.Render(m.flash)
		}
		return m.flash
	}

	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter submit | tab complete | esc back"
	case ViewStats:
		return "esc back | j/k scroll"
	case ViewForm:
		return "enter next | esc cancel"
	default:
		return "q quit | ? help | space punch | p note | x done | n new | s stats | : command"
	}
}

func (m *Model) setFlash(info string, err error) {
	if err != nil {
		m.flash = describeError(err)
		m.flashErr = true
		return
	}
	m.flash = info
	m.flashErr = false
}

// refreshList reloads the list from the tracker.
func (m *Model) refreshList() {
	m.todayList.SetTodos(m.tracker.Todos(), m.tracker.UIConfig().ShowCompleted)
}

// quit stops the saver, writing anything still pending, and exits.
func (m *Model) quit() tea.Cmd {
	if err := m.saver.Stop(); err != nil {
		m.log.Error("final save failed", "error", err)
	}
	return tea.Quit
}
