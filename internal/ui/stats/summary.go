package stats

import (
	"sort"

	"github.com/nhle/punchcard/internal/model"
	"github.com/nhle/punchcard/internal/tracker"
)

// Summary is everything the stats panel shows.
type Summary struct {
	CurrentStreak int
	MaxStreak     int
	Today         model.DayStat
	Recent        []tracker.ActivityDay
	Categories    []CategoryRow

	// Selected is the instance the panel was opened for, if any.
	Selected *model.Todo
	Punches  []model.PunchRecord
	Progress []model.GoalProgress
}

// CategoryRow is one category's totals over the recent range.
type CategoryRow struct {
	Name string
	tracker.CategoryTotal
}

// Collect reads a summary from the tracker covering the last rangeDays days.
func Collect(tr *tracker.Tracker, selected *model.Todo, rangeDays int) Summary {
	if rangeDays < 1 {
		rangeDays = model.DefaultUIConfig().StatsRangeDays
	}

	s := Summary{
		CurrentStreak: tr.CurrentStreak(),
		MaxStreak:     tr.MaxStreak(),
		Today:         tr.TodayTotals(),
	}

	cal := tr.Calendar()
	today := tr.Today()
	from, err := cal.AddDays(today, -(rangeDays - 1))
	if err != nil {
		from = today
	}
	for day := from; day <= today; {
		st := tr.DayStat(day)
		s.Recent = append(s.Recent, tracker.ActivityDay{
			DayKey:  day,
			Punches: st.PunchInsTotal,
			Minutes: st.MinutesTotal,
			Level:   tracker.HeatLevel(st.PunchInsTotal),
		})
		next, err := cal.AddDays(day, 1)
		if err != nil {
			break
		}
		day = next
	}

	for name, total := range tr.CategoryTotals(from, today) {
		s.Categories = append(s.Categories, CategoryRow{Name: name, CategoryTotal: total})
	}
	sort.Slice(s.Categories, func(i, j int) bool {
		a, b := s.Categories[i], s.Categories[j]
		if a.Punches != b.Punches {
			return a.Punches > b.Punches
		}
		return a.Name < b.Name
	})

	if selected != nil {
		td := *selected
		s.Selected = &td
		s.Punches = tr.PunchRecords(td.ID)
		s.Progress = tr.GoalProgress(td.ID)
	}
	return s
}
