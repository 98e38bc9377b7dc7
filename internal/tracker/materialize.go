package tracker

import (
	"time"

	"github.com/nhle/punchcard/internal/model"
)

// MaterializeReport counts what a materialization changed.
type MaterializeReport struct {
	Pruned       int
	Deduplicated int
	RolledOver   int
	Missed       int
	Retired      int
	Generated    int
}

// Changed reports whether the live list was modified.
func (r MaterializeReport) Changed() bool {
	return r != MaterializeReport{}
}

// Materialize reconciles the live instances with the templates for the
// current cycle and returns the resulting list.
//
// Recurring instances created outside their template's current cycle are
// dropped, and when several remain for one template only the best is kept.
// Unfinished once-instances and non-daily instances still inside their
// cycle are carried forward to today. Daily instances never roll over.
// Finished once-instances from an earlier day move to archived history
// with their counters left on the day they were earned.
// Every active template without a live instance in its cycle gets a fresh
// one dated today. Running it again without changes in between is a no-op.
func (t *Tracker) Materialize() ([]model.Todo, MaterializeReport) {
	var (
		out    []model.Todo
		report MaterializeReport
	)
	t.mutate(func() error {
		report = t.materializeLocked()
		out = append([]model.Todo(nil), t.todos...)
		return nil
	})
	return out, report
}

func (t *Tracker) materializeLocked() MaterializeReport {
	var report MaterializeReport
	now := t.now()
	today := t.cal.DayKey(now)

	// Prune instances outside their cycle.
	var live []model.Todo
	for _, td := range t.todos {
		if td.Period == model.PeriodOnce {
			live = append(live, td)
			continue
		}
		if !t.cal.InCycle(t.periodOfLocked(td), td.CreatedAt, now) {
			report.Pruned++
			continue
		}
		live = append(live, td)
	}

	// Keep the best instance per template.
	best := make(map[string]int)
	var deduped []model.Todo
	for _, td := range live {
		if td.Period == model.PeriodOnce || td.TemplateID == "" {
			deduped = append(deduped, td)
			continue
		}
		k, seen := best[td.TemplateID]
		if !seen {
			best[td.TemplateID] = len(deduped)
			deduped = append(deduped, td)
			continue
		}
		report.Deduplicated++
		if better(td, deduped[k]) {
			deduped[k] = td
		}
	}

	// Carry unfinished work forward.
	var kept []model.Todo
	for _, td := range deduped {
		if td.DayKey == today {
			kept = append(kept, td)
			continue
		}
		switch {
		case td.Period == model.PeriodOnce:
			if td.Done {
				t.archived = append(t.archived, model.ArchivedTodo{
					Todo: td, ArchivedAt: now, Reason: model.ArchiveReasonCompleted,
				})
				t.touch(model.KeyArchivedHistory)
				report.Retired++
				continue
			}
			t.rolloverLocked(&td, today)
			report.RolledOver++
		case td.Period != model.PeriodDaily:
			// Finished instances roll forward under either policy so the
			// cycle stays covered.
			if t.opts.RolloverPolicy == model.RolloverArchiveOnMiss && !td.Done {
				t.archived = append(t.archived, model.ArchivedTodo{
					Todo: td, ArchivedAt: now, Reason: model.ArchiveReasonMissed,
				})
				t.touch(model.KeyArchivedHistory)
				report.Missed++
				continue
			}
			t.rolloverLocked(&td, today)
			report.RolledOver++
		}
		kept = append(kept, td)
	}

	// Generate instances for uncovered templates.
	covered := make(map[string]bool)
	for _, td := range kept {
		if td.TemplateID != "" && td.Period != model.PeriodOnce {
			covered[td.TemplateID] = true
		}
	}
	for _, tpl := range t.templates {
		if tpl.Archived || !tpl.Period.Recurring() || covered[tpl.ID] {
			continue
		}
		kept = append(kept, t.instanceOfLocked(tpl, now))
		covered[tpl.ID] = true
		report.Generated++
	}

	if report.Changed() {
		t.todos = kept
		t.touch(model.KeyTodos)
		t.log.Info("materialized today",
			"day", today,
			"pruned", report.Pruned,
			"deduplicated", report.Deduplicated,
			"rolled_over", report.RolledOver,
			"missed", report.Missed,
			"retired", report.Retired,
			"generated", report.Generated)
	}
	return report
}

// periodOfLocked resolves the period that governs an instance's cycle,
// preferring the owning template.
func (t *Tracker) periodOfLocked(td model.Todo) model.Period {
	if j := t.templateIndexLocked(td.TemplateID); j >= 0 && t.templates[j].Period.Recurring() {
		return t.templates[j].Period
	}
	return td.Period
}

// rolloverLocked moves an instance to today along with its created and
// completed counters, so a rebuild groups it where the increments went.
func (t *Tracker) rolloverLocked(td *model.Todo, today string) {
	t.applyCreatedLocked(td.DayKey, td.Category, -1)
	t.applyCreatedLocked(today, td.Category, 1)
	if td.Done {
		t.applyCompletedLocked(td.DayKey, td.Category, -1)
		t.applyCompletedLocked(today, td.Category, 1)
	}
	td.DayKey = today
}

func (t *Tracker) instanceOfLocked(tpl model.Template, now time.Time) model.Todo {
	td := model.Todo{
		ID:              t.opts.IDs.NewID(),
		TemplateID:      tpl.ID,
		Title:           tpl.Title,
		Category:        model.CategoryOrDefault(tpl.Category),
		Period:          tpl.Period,
		MinFrequency:    max(tpl.MinFrequency, model.DefaultMinFrequency),
		Unit:            tpl.Unit,
		MinutesPerPunch: tpl.MinutesPerPunch,
		CreatedAt:       now,
		DayKey:          t.cal.DayKey(now),
		Description:     tpl.Description,
		Deadline:        tpl.Deadline,
	}
	t.applyCreatedLocked(td.DayKey, td.Category, 1)
	return td
}

// better orders duplicate instances: more punches, then done, then newer.
func better(a, b model.Todo) bool {
	if a.PunchIns != b.PunchIns {
		return a.PunchIns > b.PunchIns
	}
	if a.Done != b.Done {
		return a.Done
	}
	return a.CreatedAt.After(b.CreatedAt)
}
