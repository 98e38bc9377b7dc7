package tracker

import (
	"sort"
)

// CurrentStreak counts consecutive days with at least one punch ending
// today. When today has no punch yet the run ending yesterday still counts.
func (t *Tracker) CurrentStreak() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	day := t.todayKey()
	if !t.punchedLocked(day) {
		prev, err := t.cal.AddDays(day, -1)
		if err != nil {
			return 0
		}
		day = prev
	}

	streak := 0
	for t.punchedLocked(day) {
		streak++
		prev, err := t.cal.AddDays(day, -1)
		if err != nil {
			break
		}
		day = prev
	}
	return streak
}

// MaxStreak returns the longest run of consecutive days with punches.
func (t *Tracker) MaxStreak() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	var days []string
	for day, st := range t.dayStats {
		if st != nil && st.PunchInsTotal > 0 {
			days = append(days, day)
		}
	}
	sort.Strings(days)

	longest, run := 0, 0
	prev := ""
	for _, day := range days {
		if prev != "" {
			if next, err := t.cal.AddDays(prev, 1); err == nil && next == day {
				run++
			} else {
				run = 1
			}
		} else {
			run = 1
		}
		longest = max(longest, run)
		prev = day
	}
	return longest
}

func (t *Tracker) punchedLocked(day string) bool {
	st, ok := t.dayStats[day]
	return ok && st != nil && st.PunchInsTotal > 0
}
