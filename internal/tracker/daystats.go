package tracker

import (
	"github.com/nhle/punchcard/internal/model"
)

// statLocked returns the DayStat for day, creating it on first reference.
func (t *Tracker) statLocked(day string) *model.DayStat {
	st, ok := t.dayStats[day]
	if !ok || st == nil {
		st = model.NewDayStat()
		t.dayStats[day] = st
	}
	return st
}

// bump adds delta to a category counter and deletes the entry once it is
// no longer positive.
func bump(counts map[string]int, category string, delta int) {
	k := model.CategoryOrDefault(category)
	counts[k] += delta
	if counts[k] <= 0 {
		delete(counts, k)
	}
}

func addClamped(v *int, delta int) {
	*v += delta
	if *v < 0 {
		*v = 0
	}
}

func (t *Tracker) applyCreatedLocked(day, category string, delta int) {
	st := t.statLocked(day)
	addClamped(&st.CreatedCount, delta)
	bump(st.CategoryCreated, category, delta)
	t.touch(model.KeyDayStats)
}

func (t *Tracker) applyCompletedLocked(day, category string, delta int) {
	st := t.statLocked(day)
	addClamped(&st.CompletedCount, delta)
	bump(st.CategoryCompleted, category, delta)
	t.touch(model.KeyDayStats)
}

func (t *Tracker) applyPunchLocked(day, category string, punches, minutes int) {
	st := t.statLocked(day)
	if punches != 0 {
		addClamped(&st.PunchInsTotal, punches)
		bump(st.CategoryPunchIns, category, punches)
	}
	if minutes != 0 {
		addClamped(&st.MinutesTotal, minutes)
		bump(st.CategoryMinutes, category, minutes)
	}
	t.touch(model.KeyDayStats)
}

// DayStats returns a copy of every day's statistics.
func (t *Tracker) DayStats() map[string]*model.DayStat {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]*model.DayStat, len(t.dayStats))
	for k, st := range t.dayStats {
		out[k] = st.Clone()
	}
	return out
}

// DayStat returns a copy of one day's statistics, or an empty one.
func (t *Tracker) DayStat(day string) model.DayStat {
	t.mu.Lock()
	defer t.mu.Unlock()

	if st, ok := t.dayStats[day]; ok {
		return *st.Clone()
	}
	return *model.NewDayStat()
}

// RebuildDayStats repairs the statistics from source records and returns
// the repaired map.
//
// Created and completed counters are derived from the live instances grouped
// by day key and merged with the stored values by maximum, so history of
// instances no longer in the live list survives. Punch and minute counters
// are derived from the punch ledger and overwrite the stored values for
// every day from the oldest retained record onwards.
func (t *Tracker) RebuildDayStats() map[string]*model.DayStat {
	var out map[string]*model.DayStat
	t.mutate(func() error {
		t.rebuildLocked()
		out = make(map[string]*model.DayStat, len(t.dayStats))
		for k, st := range t.dayStats {
			out[k] = st.Clone()
		}
		return nil
	})
	return out
}

func (t *Tracker) rebuildLocked() {
	grouped := make(map[string]*model.DayStat)
	group := func(day string) *model.DayStat {
		st, ok := grouped[day]
		if !ok {
			st = model.NewDayStat()
			grouped[day] = st
		}
		return st
	}

	for _, td := range t.todos {
		st := group(td.DayKey)
		st.CreatedCount++
		bump(st.CategoryCreated, td.Category, 1)
		if td.Done {
			st.CompletedCount++
			bump(st.CategoryCompleted, td.Category, 1)
		}
	}

	for day, g := range grouped {
		target := t.statLocked(day)
		target.CreatedCount = max(target.CreatedCount, g.CreatedCount)
		target.CompletedCount = max(target.CompletedCount, g.CompletedCount)
		mergeMax(target.CategoryCreated, g.CategoryCreated)
		mergeMax(target.CategoryCompleted, g.CategoryCompleted)
	}

	punches := make(map[string]*model.DayStat)
	horizon := ""
	for _, r := range t.punches {
		if horizon == "" || r.DayKey < horizon {
			horizon = r.DayKey
		}
		st, ok := punches[r.DayKey]
		if !ok {
			st = model.NewDayStat()
			punches[r.DayKey] = st
		}
		minutes := t.recordMinutesLocked(r)
		st.PunchInsTotal++
		bump(st.CategoryPunchIns, r.Category, 1)
		if minutes > 0 {
			st.MinutesTotal += minutes
			bump(st.CategoryMinutes, r.Category, minutes)
		}
	}

	for day, st := range t.dayStats {
		if horizon != "" && day < horizon {
			continue
		}
		if _, ok := punches[day]; ok {
			continue
		}
		st.PunchInsTotal = 0
		st.MinutesTotal = 0
		st.CategoryPunchIns = map[string]int{}
		st.CategoryMinutes = map[string]int{}
	}
	for day, p := range punches {
		st := t.statLocked(day)
		st.PunchInsTotal = p.PunchInsTotal
		st.MinutesTotal = p.MinutesTotal
		st.CategoryPunchIns = p.CategoryPunchIns
		st.CategoryMinutes = p.CategoryMinutes
	}

	t.touch(model.KeyDayStats)
}

func mergeMax(dst, src map[string]int) {
	for k, v := range src {
		if v > dst[k] {
			dst[k] = v
		}
	}
}

// recordMinutesLocked resolves the minutes credited by one punch record:
// the record's own snapshot first, then the owning template, then the
// default for minutes-unit tasks.
func (t *Tracker) recordMinutesLocked(r model.PunchRecord) int {
	switch r.Unit {
	case model.UnitCount:
		return 0
	case model.UnitMinutes:
		if r.Minutes > 0 {
			return r.Minutes
		}
	}

	if tpl, ok := t.templateForRecordLocked(r); ok {
		if tpl.Unit != model.UnitMinutes {
			return 0
		}
		if tpl.MinutesPerPunch > 0 {
			return tpl.MinutesPerPunch
		}
		return t.opts.DefaultMinutesPerPunch
	}

	if r.Unit == model.UnitMinutes {
		return t.opts.DefaultMinutesPerPunch
	}
	return 0
}

func (t *Tracker) templateForRecordLocked(r model.PunchRecord) (model.Template, bool) {
	if i := t.todoIndexLocked(r.TodoID); i >= 0 && t.todos[i].TemplateID != "" {
		if j := t.templateIndexLocked(t.todos[i].TemplateID); j >= 0 {
			return t.templates[j], true
		}
	}
	for _, tpl := range t.templates {
		if tpl.Title == r.TodoTitle && tpl.Category == model.CategoryOrDefault(r.Category) {
			return tpl, true
		}
	}
	return model.Template{}, false
}
