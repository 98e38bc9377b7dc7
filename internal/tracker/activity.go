package tracker

import (
	"time"

	"github.com/nhle/punchcard/internal/calendar"
	"github.com/nhle/punchcard/internal/model"
)

// ActivityDay is one cell of the yearly activity feed.
type ActivityDay struct {
	DayKey  string
	Punches int
	Minutes int
	Level   int
}

// heatThresholds are the punch counts at which the heat level steps up.
var heatThresholds = []int{1, 3, 6, 10}

// HeatLevel maps a day's punch count to a level from 0 to 4.
func HeatLevel(punches int) int {
	level := 0
	for _, th := range heatThresholds {
		if punches >= th {
			level++
		}
	}
	return level
}

// CategoryTotal aggregates one category over a range of days.
type CategoryTotal struct {
	Created   int
	Completed int
	Punches   int
	Minutes   int
}

// TodayTotals returns today's statistics.
func (t *Tracker) TodayTotals() model.DayStat {
	return t.DayStat(t.cal.DayKey(t.now()))
}

// Activity returns one entry per calendar day of year, January 1st first.
func (t *Tracker) Activity(year int) []ActivityDay {
	t.mu.Lock()
	defer t.mu.Unlock()

	loc := t.cal.Location()
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	end := start.AddDate(1, 0, 0)

	var out []ActivityDay
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		key := d.Format(calendar.DayKeyLayout)
		day := ActivityDay{DayKey: key}
		if st, ok := t.dayStats[key]; ok && st != nil {
			day.Punches = st.PunchInsTotal
			day.Minutes = st.MinutesTotal
		}
		day.Level = HeatLevel(day.Punches)
		out = append(out, day)
	}
	return out
}

// CategoryTotals sums the category breakdowns of every day in [from, to].
// Empty bounds are open.
func (t *Tracker) CategoryTotals(from, to string) map[string]CategoryTotal {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]CategoryTotal)
	add := func(counts map[string]int, fn func(*CategoryTotal, int)) {
		for cat, v := range counts {
			ct := out[cat]
			fn(&ct, v)
			out[cat] = ct
		}
	}
	for day, st := range t.dayStats {
		if st == nil || (from != "" && day < from) || (to != "" && day > to) {
			continue
		}
		add(st.CategoryCreated, func(c *CategoryTotal, v int) { c.Created += v })
		add(st.CategoryCompleted, func(c *CategoryTotal, v int) { c.Completed += v })
		add(st.CategoryPunchIns, func(c *CategoryTotal, v int) { c.Punches += v })
		add(st.CategoryMinutes, func(c *CategoryTotal, v int) { c.Minutes += v })
	}
	return out
}
