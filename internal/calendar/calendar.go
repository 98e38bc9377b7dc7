// Package calendar converts timestamps to local day keys and computes the
// cycle windows of recurring periods.
package calendar

import (
	"fmt"
	"time"

	"github.com/nhle/punchcard/internal/model"
)

// DayKeyLayout is the canonical day key format.
const DayKeyLayout = "2006-01-02"

// Calendar computes day keys and cycle boundaries in a fixed location.
type Calendar struct {
	loc       *time.Location
	weekStart time.Weekday
}

// New returns a Calendar for loc. A nil loc means time.Local.
func New(loc *time.Location, weekStart time.Weekday) Calendar {
	if loc == nil {
		loc = time.Local
	}
	return Calendar{loc: loc, weekStart: weekStart}
}

// ParseWeekStart maps a config value to a weekday. Anything but "sunday"
// yields Monday.
func ParseWeekStart(s string) time.Weekday {
	if s == "sunday" {
		return time.Sunday
	}
	return time.Monday
}

// Location returns the calendar's location.
func (c Calendar) Location() *time.Location {
	if c.loc == nil {
		return time.Local
	}
	return c.loc
}

// DayKey returns the YYYY-MM-DD key of t's local calendar day.
func (c Calendar) DayKey(t time.Time) string {
	return t.In(c.Location()).Format(DayKeyLayout)
}

// ParseDayKey returns local midnight of the given key.
func (c Calendar) ParseDayKey(key string) (time.Time, error) {
	t, err := time.ParseInLocation(DayKeyLayout, key, c.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing day key %q: %w", key, err)
	}
	return t, nil
}

// AddDays shifts a day key by n calendar days.
func (c Calendar) AddDays(key string, n int) (string, error) {
	t, err := c.ParseDayKey(key)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, n).Format(DayKeyLayout), nil
}

// StartOfDay returns local midnight of t's day.
func (c Calendar) StartOfDay(t time.Time) time.Time {
	t = t.In(c.Location())
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.Location())
}

// CycleStart returns the start of the cycle containing now. The second
// result is false for periods without a cycle.
func (c Calendar) CycleStart(p model.Period, now time.Time) (time.Time, bool) {
	day := c.StartOfDay(now)
	switch p {
	case model.PeriodDaily:
		return day, true
	case model.PeriodWeekly:
		back := (int(day.Weekday()) - int(c.weekStart) + 7) % 7
		return day.AddDate(0, 0, -back), true
	case model.PeriodMonthly:
		return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, c.Location()), true
	case model.PeriodYearly:
		return time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, c.Location()), true
	}
	return time.Time{}, false
}

// CycleEnd returns the exclusive end of the cycle starting at start.
func (c Calendar) CycleEnd(p model.Period, start time.Time) time.Time {
	switch p {
	case model.PeriodDaily:
		return start.AddDate(0, 0, 1)
	case model.PeriodWeekly:
		return start.AddDate(0, 0, 7)
	case model.PeriodMonthly:
		return start.AddDate(0, 1, 0)
	case model.PeriodYearly:
		return start.AddDate(1, 0, 0)
	}
	return start
}

// Window returns [start, end) of the cycle containing now.
func (c Calendar) Window(p model.Period, now time.Time) (start, end time.Time, ok bool) {
	start, ok = c.CycleStart(p, now)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	return start, c.CycleEnd(p, start), true
}

// InCycle reports whether t falls inside the cycle of p containing now.
// It is always false for non-cyclic periods.
func (c Calendar) InCycle(p model.Period, t, now time.Time) bool {
	start, end, ok := c.Window(p, now)
	if !ok {
		return false
	}
	return !t.Before(start) && t.Before(end)
}
