package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/nhle/punchcard/internal/catalog"
	"github.com/nhle/punchcard/internal/model"
	"github.com/nhle/punchcard/internal/theme"
	"github.com/nhle/punchcard/internal/tracker"
	"github.com/nhle/punchcard/internal/ui/todaylist"
)

// withSession runs fn on an opened session and saves afterwards.
func withSession(fn func(s *session) error) error {
	s, err := openSession(false)
	if err != nil {
		return err
	}
	err = fn(s)
	if cerr := s.close(); err == nil {
		err = cerr
	}
	return err
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.ColorBorder)).
		Headers(headers...)
}

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "List today's tasks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		return withSession(func(s *session) error {
			todos := s.tracker.Todos()
			todaylist.Order(todos)

			t := newTable("ID", "", "Task", "Period", "Progress", "Category")
			shown := 0
			for _, td := range todos {
				if td.Done && !all {
					continue
				}
				mark := "○"
				if td.Done {
					mark = "✓"
				}
				t.Row(shortID(td.ID), mark, td.Title, string(td.Period), todaylist.Progress(td), td.Category)
				shown++
			}
			if shown == 0 {
				fmt.Println("Nothing to do today.")
				return nil
			}
			fmt.Println(t.String())
			fmt.Printf("streak %d, best %d\n", s.tracker.CurrentStreak(), s.tracker.MaxStreak())
			return nil
		})
	},
}

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a task",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := tracker.TaskParams{Title: strings.Join(args, " ")}
		p.Category, _ = cmd.Flags().GetString("category")
		period, _ := cmd.Flags().GetString("period")
		p.Period = model.Period(period)
		p.MinFrequency, _ = cmd.Flags().GetInt("times")
		if minutes, _ := cmd.Flags().GetBool("minutes"); minutes {
			p.Unit = model.UnitMinutes
		}
		p.MinutesPerPunch, _ = cmd.Flags().GetInt("minutes-per-punch")
		p.Description, _ = cmd.Flags().GetString("description")

		return withSession(func(s *session) error {
			td, err := s.tracker.AddTodo(p)
			var exists *tracker.ExistsError
			if errors.As(err, &exists) {
				return fmt.Errorf("%q already exists as %s (%s)", exists.Existing.Title, shortID(exists.Existing.ID), strings.ReplaceAll(string(exists.Action), "_", " "))
			}
			if err != nil {
				return err
			}
			fmt.Printf("added %s %s (%s)\n", shortID(td.ID), td.Title, td.Period)
			return nil
		})
	},
}

var punchCmd = &cobra.Command{
	Use:   "punch <task>",
	Short: "Punch in on a task",
	Long:  `Record one unit of progress. <task> is a title or an id prefix as shown by "punchcard today".`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts tracker.PunchOptions
		opts.Note, _ = cmd.Flags().GetString("note")
		opts.Minutes, _ = cmd.Flags().GetInt("minutes")

		return withSession(func(s *session) error {
			td, err := findTodo(s.tracker.Todos(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			res, err := s.tracker.PunchIn(td.ID, opts)
			if err != nil {
				return err
			}
			switch res.Outcome {
			case tracker.OutcomeAutoDone:
				fmt.Printf("%s %d/%d, done\n", td.Title, res.PunchIns, td.MinFrequency)
			case tracker.OutcomeNoteAttached:
				fmt.Printf("note added to the last punch on %s\n", td.Title)
			case tracker.OutcomeProgressLogged:
				fmt.Printf("progress logged on %s\n", td.Title)
			default:
				fmt.Printf("%s %d/%d\n", td.Title, res.PunchIns, td.MinFrequency)
			}
			return nil
		})
	},
}

var doneCmd = &cobra.Command{
	Use:   "done <task>",
	Short: "Mark a task done (or not done with --undo)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		undo, _ := cmd.Flags().GetBool("undo")
		return withSession(func(s *session) error {
			td, err := findTodo(s.tracker.Todos(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			changed, err := s.tracker.ToggleDone(td.ID, !undo)
			if err != nil {
				return err
			}
			if !changed {
				fmt.Println("no change")
				return nil
			}
			if undo {
				fmt.Printf("%s reopened\n", td.Title)
			} else {
				fmt.Printf("%s done\n", td.Title)
			}
			return nil
		})
	},
}

var archiveCmd = &cobra.Command{
	Use:   "archive <task>",
	Short: "Archive a task's template so it stops recurring",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			td, err := findTodo(s.tracker.Todos(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if td.TemplateID != "" {
				err = s.tracker.ArchiveTemplate(td.TemplateID)
			} else {
				err = s.tracker.ArchiveTodo(td.ID)
			}
			if err != nil {
				return err
			}
			fmt.Printf("%s archived\n", td.Title)
			return nil
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <task>",
	Short: "Delete a task and the statistics it contributed",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			td, err := findTodo(s.tracker.Todos(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if err := s.tracker.DeleteTodo(td.ID); err != nil {
				return err
			}
			fmt.Printf("%s deleted\n", td.Title)
			return nil
		})
	},
}

var giveUpCmd = &cobra.Command{
	Use:   "give-up <goal>",
	Short: "Give up on a one-off goal",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reason, _ := cmd.Flags().GetString("reason")
		return withSession(func(s *session) error {
			td, err := findTodo(s.tracker.Todos(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if err := s.tracker.GiveUpGoal(td.ID, reason); err != nil {
				return err
			}
			fmt.Printf("gave up on %s\n", td.Title)
			return nil
		})
	},
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Recompute daily statistics from the punch ledger",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			stats := s.tracker.RebuildDayStats()
			fmt.Printf("rebuilt %d day(s)\n", len(stats))
			return nil
		})
	},
}

var streakCmd = &cobra.Command{
	Use:   "streak",
	Short: "Show the current and best punch streaks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			fmt.Printf("current %d day(s)\nbest    %d day(s)\n", s.tracker.CurrentStreak(), s.tracker.MaxStreak())
			return nil
		})
	},
}

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Show daily punch activity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		year, _ := cmd.Flags().GetInt("year")
		days, _ := cmd.Flags().GetInt("days")
		return withSession(func(s *session) error {
			today := s.tracker.Today()
			if year == 0 {
				year, _ = strconv.Atoi(today[:4])
			}
			feed := s.tracker.Activity(year)

			t := newTable("Day", "Punches", "Minutes", "Heat")
			from := ""
			if days > 0 {
				from, _ = s.tracker.Calendar().AddDays(today, -(days - 1))
			}
			for _, d := range feed {
				if d.DayKey > today || d.DayKey < from || (days == 0 && d.Punches == 0) {
					continue
				}
				heat := theme.HeatStyle(d.Level).Render(strings.Repeat("■", d.Level+1))
				t.Row(d.DayKey, strconv.Itoa(d.Punches), strconv.Itoa(d.Minutes), heat)
			}
			fmt.Println(t.String())
			return nil
		})
	},
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List recurring task templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		archived, _ := cmd.Flags().GetBool("archived")
		return withSession(func(s *session) error {
			t := newTable("ID", "Title", "Category", "Period", "Target", "Unit", "State")
			for _, tpl := range s.tracker.Templates(archived) {
				state := "active"
				if tpl.Archived {
					state = "archived"
				}
				t.Row(shortID(tpl.ID), tpl.Title, tpl.Category, string(tpl.Period),
					strconv.Itoa(tpl.MinFrequency), string(tpl.Unit), state)
			}
			fmt.Println(t.String())
			return nil
		})
	},
}

var templatesExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write active templates as TOML (stdout when no file is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			tpls := s.tracker.Templates(false)
			if len(args) == 0 {
				return catalog.Write(os.Stdout, tpls)
			}
			if err := catalog.WriteFile(args[0], tpls); err != nil {
				return err
			}
			fmt.Printf("exported %d template(s) to %s\n", len(tpls), args[0])
			return nil
		})
	},
}

var templatesImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Add templates from a TOML catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := catalog.ReadFile(args[0])
		if err != nil {
			return err
		}
		return withSession(func(s *session) error {
			n, err := s.tracker.ImportTemplates(params)
			if err != nil {
				return err
			}
			_, report := s.tracker.Materialize()
			fmt.Printf("imported %d of %d template(s), %d new today\n", n, len(params), report.Generated)
			return nil
		})
	},
}

var templatesRestoreCmd = &cobra.Command{
	Use:   "restore <id>",
	Short: "Restore an archived template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			for _, tpl := range s.tracker.Templates(true) {
				if tpl.ID != args[0] && !(len(args[0]) >= 4 && strings.HasPrefix(tpl.ID, args[0])) {
					continue
				}
				if err := s.tracker.RestoreTemplate(tpl.ID); err != nil {
					return err
				}
				s.tracker.Materialize()
				fmt.Printf("%s restored\n", tpl.Title)
				return nil
			}
			return fmt.Errorf("template %s: %w", args[0], tracker.ErrNotFound)
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently used task configurations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		wipe, _ := cmd.Flags().GetBool("clear")
		return withSession(func(s *session) error {
			if wipe {
				s.tracker.ClearHistory()
				fmt.Println("history cleared")
				return nil
			}
			t := newTable("#", "Title", "Category", "Period", "Target", "Unit")
			for i, h := range s.tracker.History() {
				t.Row(strconv.Itoa(i), h.Title, h.Category, string(h.Period), strconv.Itoa(h.MinFrequency), string(h.Unit))
			}
			fmt.Println(t.String())
			return nil
		})
	},
}
