package todaylist

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/punchcard/internal/model"
	"github.com/nhle/punchcard/internal/theme"
)

// TodoItem wraps a model.Todo so it can be used in a bubbles/list.
type TodoItem struct {
	Todo model.Todo
}

// FilterValue returns the string used for fuzzy filtering.
func (i TodoItem) FilterValue() string { return i.Todo.Title }

// Title returns the instance title for the list.
func (i TodoItem) Title() string { return i.Todo.Title }

// Description returns a short summary line for the list.
func (i TodoItem) Description() string {
	parts := []string{
		string(i.Todo.Period),
		i.Todo.Category,
		Progress(i.Todo),
	}
	return strings.Join(parts, " | ")
}

// Progress formats punches against the target, with minutes for
// minutes-unit instances.
func Progress(td model.Todo) string {
	if td.Period == model.PeriodOnce {
		if td.Done {
			return "done"
		}
		return "goal"
	}
	s := fmt.Sprintf("%d/%d", td.PunchIns, td.MinFrequency)
	if td.Unit == model.UnitMinutes {
		s += fmt.Sprintf(" (%dm)", td.PunchIns*td.MinutesPerPunchOrDefault())
	}
	return s
}

var periodRank = map[model.Period]int{
	model.PeriodDaily:   0,
	model.PeriodWeekly:  1,
	model.PeriodMonthly: 2,
	model.PeriodYearly:  3,
	model.PeriodOnce:    4,
}

// Order sorts instances for display: open before done, then by period
// length, then by title.
func Order(todos []model.Todo) {
	sort.SliceStable(todos, func(i, j int) bool {
		a, b := todos[i], todos[j]
		if a.Done != b.Done {
			return !a.Done
		}
		if periodRank[a.Period] != periodRank[b.Period] {
			return periodRank[a.Period] < periodRank[b.Period]
		}
		return strings.ToLower(a.Title) < strings.ToLower(b.Title)
	})
}

// ItemDelegate implements list.ItemDelegate for rendering list items.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single list item line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(TodoItem)
	if !ok {
		return
	}
	td := it.Todo

	prefix := "○"
	if td.Done {
		prefix = "✓"
	}

	periodBadge := theme.PeriodStyle(td.Period).Render(periodLabel(td.Period))
	progress := theme.ProgressStyle(td.PunchIns, td.MinFrequency).Render(Progress(td))
	category := theme.CategoryStyle.Render(td.Category)

	line := fmt.Sprintf("%s %s %s  %s  %s", prefix, periodBadge, td.Title, progress, category)

	if td.Done {
		line = theme.DimmedStyle.Render(line)
	}

	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

// periodLabel returns a short label for the given period.
func periodLabel(p model.Period) string {
	switch p {
	case model.PeriodDaily:
		return "D"
	case model.PeriodWeekly:
		return "W"
	case model.PeriodMonthly:
		return "M"
	case model.PeriodYearly:
		return "Y"
	case model.PeriodOnce:
		return "1x"
	default:
		return "?"
	}
}
