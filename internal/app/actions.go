package app

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/punchcard/internal/catalog"
	"github.com/nhle/punchcard/internal/model"
	"github.com/nhle/punchcard/internal/tracker"
	"github.com/nhle/punchcard/internal/ui/command"
	"github.com/nhle/punchcard/internal/ui/todoform"
)

// run executes a tracker operation off the update loop and reports its
// result as an actionResultMsg.
func run(fn func() (string, error)) tea.Cmd {
	return func() tea.Msg {
		info, err := fn()
		return actionResultMsg{info: info, err: err}
	}
}

// punch records a punch on td, optionally with a note.
func (m *Model) punch(td model.Todo, note string) tea.Cmd {
	tr := m.tracker
	return run(func() (string, error) {
		res, err := tr.PunchIn(td.ID, tracker.PunchOptions{Note: note})
		if err != nil {
			return "", err
		}
		return describePunch(td, res), nil
	})
}

// toggleDone flips the done flag of td.
func (m *Model) toggleDone(td model.Todo) tea.Cmd {
	tr := m.tracker
	return run(func() (string, error) {
		changed, err := tr.ToggleDone(td.ID, !td.Done)
		if err != nil || !changed {
			return "", err
		}
		if td.Done {
			return td.Title + " reopened", nil
		}
		return td.Title + " marked done", nil
	})
}

// archive retires the template behind td, or td itself when it has none.
func (m *Model) archive(td model.Todo) tea.Cmd {
	tr := m.tracker
	return run(func() (string, error) {
		if td.TemplateID != "" {
			if err := tr.ArchiveTemplate(td.TemplateID); err != nil {
				return "", err
			}
			return fmt.Sprintf("%s archived, restore with \":restore %s\"", td.Title, td.Title), nil
		}
		if err := tr.ArchiveTodo(td.ID); err != nil {
			return "", err
		}
		return td.Title + " archived", nil
	})
}

// deleteTodo removes td and the statistics it contributed.
func (m *Model) deleteTodo(td model.Todo) tea.Cmd {
	tr := m.tracker
	return run(func() (string, error) {
		if err := tr.DeleteTodo(td.ID); err != nil {
			return "", err
		}
		return td.Title + " deleted", nil
	})
}

// rematerialize reconciles the live list with the current time.
func (m *Model) rematerialize() tea.Cmd {
	tr := m.tracker
	return run(func() (string, error) {
		_, report := tr.Materialize()
		if msg := describeMaterialize(report); msg != "" {
			return msg, nil
		}
		return "Up to date", nil
	})
}

// submitForm creates or edits an instance from the form values.
func (m *Model) submitForm(msg todoform.SubmittedMsg) tea.Cmd {
	tr := m.tracker
	return run(func() (string, error) {
		switch {
		case msg.TodoID != "":
			changed, err := tr.ApplyEdit(msg.TodoID, msg.Params)
			if err != nil || !changed {
				return "", err
			}
			return msg.Params.Title + " updated", nil

		case msg.HistoryIndex >= 0:
			td, err := tr.AddFromHistory(msg.HistoryIndex)
			if err != nil {
				return "", err
			}
			return td.Title + " added", nil

		default:
			td, err := tr.AddTodo(msg.Params)
			if err != nil {
				return "", err
			}
			return td.Title + " added", nil
		}
	})
}

// handlePrompt completes a note or give-up prompt.
func (m *Model) handlePrompt(msg command.InputMsg) tea.Cmd {
	id := m.promptTodoID
	m.promptTodoID = ""
	td, ok := m.tracker.TodoByID(id)
	if !ok {
		m.setFlash("", fmt.Errorf("todo %s: %w", id, tracker.ErrNotFound))
		return nil
	}

	switch msg.Tag {
	case promptNote:
		return m.punch(td, msg.Value)
	case promptGiveUp:
		tr := m.tracker
		return run(func() (string, error) {
			if err := tr.GiveUpGoal(td.ID, msg.Value); err != nil {
				return "", err
			}
			return "Gave up on " + td.Title, nil
		})
	}
	return nil
}

// executeCommand handles a command string from the command palette.
func (m *Model) executeCommand(input string) tea.Cmd {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(input), " ")
	arg = strings.TrimSpace(arg)
	tr := m.tracker

	switch cmd {
	case "quit", "q":
		return m.quit()

	case "rebuild":
		return run(func() (string, error) {
			tr.RebuildDayStats()
			return "Statistics rebuilt from the punch ledger", nil
		})

	case "clear":
		return run(func() (string, error) {
			tr.ClearHistory()
			return "Recently used list cleared", nil
		})

	case "completed":
		cfg := tr.UIConfig()
		cfg.ShowCompleted = !cfg.ShowCompleted
		tr.SetUIConfig(cfg)
		m.refreshList()
		return nil

	case "range":
		return run(func() (string, error) {
			var days int
			if _, err := fmt.Sscanf(arg, "%d", &days); err != nil || days < 1 {
				return "", fmt.Errorf("range %q: %w", arg, tracker.ErrInvalidOperation)
			}
			cfg := tr.UIConfig()
			cfg.StatsRangeDays = days
			tr.SetUIConfig(cfg)
			return fmt.Sprintf("Stats cover the last %d days", days), nil
		})

	case "restore":
		return run(func() (string, error) {
			for _, tpl := range tr.Templates(true) {
				if tpl.Archived && strings.EqualFold(tpl.Title, arg) {
					if err := tr.RestoreTemplate(tpl.ID); err != nil {
						return "", err
					}
					_, report := tr.Materialize()
					return fmt.Sprintf("%s restored (%d new)", tpl.Title, report.Generated), nil
				}
			}
			return "", fmt.Errorf("archived template %q: %w", arg, tracker.ErrNotFound)
		})

	case "export":
		return run(func() (string, error) {
			if arg == "" {
				return "", fmt.Errorf("export needs a file path: %w", tracker.ErrEmptyInput)
			}
			tpls := tr.Templates(false)
			if err := catalog.WriteFile(arg, tpls); err != nil {
				return "", err
			}
			return fmt.Sprintf("Exported %d template(s) to %s", len(tpls), arg), nil
		})

	case "import":
		return run(func() (string, error) {
			if arg == "" {
				return "", fmt.Errorf("import needs a file path: %w", tracker.ErrEmptyInput)
			}
			params, err := catalog.ReadFile(arg)
			if err != nil {
				return "", err
			}
			n, err := tr.ImportTemplates(params)
			if err != nil {
				return "", err
			}
			_, report := tr.Materialize()
			return fmt.Sprintf("Imported %d template(s), %d new today", n, report.Generated), nil
		})
	}

	m.setFlash("Unknown command: "+input, nil)
	return nil
}
