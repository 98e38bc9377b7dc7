package tracker

import (
	"fmt"
	"strings"
	"time"

	"github.com/nhle/punchcard/internal/model"
)

// TaskParams describes a task to create or the full replacement of an
// existing one.
type TaskParams struct {
	Title           string
	Category        string
	Period          model.Period
	MinFrequency    int
	Unit            model.Unit
	MinutesPerPunch int
	Description     string
	Deadline        *time.Time
}

// ParamsFromHistory converts a history item back into create parameters.
func ParamsFromHistory(h model.HistoryItem) TaskParams {
	return TaskParams{
		Title:           h.Title,
		Category:        h.Category,
		Period:          h.Period,
		MinFrequency:    h.MinFrequency,
		Unit:            h.Unit,
		MinutesPerPunch: h.MinutesPerPunch,
		Description:     h.Description,
	}
}

// ParamsFromTemplate converts a template into create parameters.
func ParamsFromTemplate(tpl model.Template) TaskParams {
	return TaskParams{
		Title:           tpl.Title,
		Category:        tpl.Category,
		Period:          tpl.Period,
		MinFrequency:    tpl.MinFrequency,
		Unit:            tpl.Unit,
		MinutesPerPunch: tpl.MinutesPerPunch,
		Description:     tpl.Description,
		Deadline:        tpl.Deadline,
	}
}

func (t *Tracker) normalizeParams(p TaskParams) (TaskParams, error) {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return p, fmt.Errorf("title: %w", ErrEmptyInput)
	}
	p.Category = model.CategoryOrDefault(strings.TrimSpace(p.Category))
	p.Description = strings.TrimSpace(p.Description)

	if p.Period == "" {
		p.Period = model.PeriodDaily
	}
	if !p.Period.Valid() {
		return p, fmt.Errorf("period %q: %w", p.Period, ErrInvalidOperation)
	}
	if p.Unit == "" {
		p.Unit = model.UnitCount
	}
	if !p.Unit.Valid() {
		return p, fmt.Errorf("unit %q: %w", p.Unit, ErrInvalidOperation)
	}

	if p.Period == model.PeriodOnce || p.MinFrequency < model.DefaultMinFrequency {
		p.MinFrequency = model.DefaultMinFrequency
	}
	switch {
	case p.Unit != model.UnitMinutes:
		p.MinutesPerPunch = 0
	case p.MinutesPerPunch <= 0:
		p.MinutesPerPunch = t.opts.DefaultMinutesPerPunch
	}
	return p, nil
}

// checkExistsLocked rejects a create or edit that would duplicate a live
// instance other than exceptID. An unfinished instance with the same natural
// key is always a duplicate; a finished one only blocks recurring tasks
// inside the same cycle.
func (t *Tracker) checkExistsLocked(p TaskParams, now time.Time, exceptID string) error {
	for _, td := range t.todos {
		if td.ID == exceptID {
			continue
		}
		if td.Title != p.Title || model.CategoryOrDefault(td.Category) != p.Category || td.Period != p.Period {
			continue
		}
		if !td.Done {
			action := ActionPunchAgain
			if td.PunchIns == 0 {
				action = ActionStartPunching
			}
			return &ExistsError{Existing: td, Action: action}
		}
		if p.Period.Recurring() && t.cal.InCycle(p.Period, td.CreatedAt, now) {
			return &ExistsError{Existing: td, Action: ActionAlreadyDone}
		}
	}
	return nil
}

func (t *Tracker) draftLocked(p TaskParams, now time.Time) model.Todo {
	return model.Todo{
		Title:           p.Title,
		Category:        p.Category,
		Period:          p.Period,
		MinFrequency:    p.MinFrequency,
		Unit:            p.Unit,
		MinutesPerPunch: p.MinutesPerPunch,
		CreatedAt:       now,
		DayKey:          t.cal.DayKey(now),
		Description:     p.Description,
		Deadline:        p.Deadline,
	}
}

// PrepareTodo validates params and returns the instance AddTodo would
// create, without an id. Nothing is mutated.
func (t *Tracker) PrepareTodo(params TaskParams) (model.Todo, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, err := t.normalizeParams(params)
	if err != nil {
		return model.Todo{}, err
	}
	now := t.now()
	if err := t.checkExistsLocked(p, now, ""); err != nil {
		return model.Todo{}, err
	}
	return t.draftLocked(p, now), nil
}

// AddTodo creates a live instance dated today. Recurring tasks are linked
// to the active template with the same title, category and period, which is
// created on first use.
func (t *Tracker) AddTodo(params TaskParams) (model.Todo, error) {
	var created model.Todo
	err := t.mutate(func() error {
		p, err := t.normalizeParams(params)
		if err != nil {
			return err
		}
		now := t.now()
		if err := t.checkExistsLocked(p, now, ""); err != nil {
			return err
		}

		td := t.draftLocked(p, now)
		td.ID = t.opts.IDs.NewID()
		if p.Period.Recurring() {
			td.TemplateID = t.findOrCreateTemplateLocked(p)
		}
		t.todos = append(t.todos, td)
		t.applyCreatedLocked(td.DayKey, td.Category, 1)
		t.updateHistoryLocked(historyItemFrom(p))
		t.touch(model.KeyTodos)

		t.log.Debug("todo added", "id", td.ID, "title", td.Title, "period", td.Period)
		created = td
		return nil
	})
	return created, err
}

// AddFromHistory creates a task from the history item at index.
func (t *Tracker) AddFromHistory(index int) (model.Todo, error) {
	t.mu.Lock()
	if index < 0 || index >= len(t.history) {
		t.mu.Unlock()
		return model.Todo{}, notFound("history item", fmt.Sprint(index))
	}
	item := t.history[index]
	t.mu.Unlock()

	return t.AddTodo(ParamsFromHistory(item))
}

// Todos returns the live instances.
func (t *Tracker) Todos() []model.Todo {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]model.Todo(nil), t.todos...)
}

// TodoByID looks up a live instance.
func (t *Tracker) TodoByID(id string) (model.Todo, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if i := t.todoIndexLocked(id); i >= 0 {
		return t.todos[i], true
	}
	return model.Todo{}, false
}

// ToggleDone sets the done flag explicitly. It reports false when the
// instance already had the requested state. A recurring instance can only
// be marked done once it has enough punches.
func (t *Tracker) ToggleDone(id string, done bool) (bool, error) {
	changed := false
	err := t.mutate(func() error {
		i := t.todoIndexLocked(id)
		if i < 0 {
			return notFound("todo", id)
		}
		td := &t.todos[i]
		if td.Done == done {
			return nil
		}
		if done && td.Period.Recurring() && td.PunchIns < td.MinFrequency {
			return fmt.Errorf("todo %s has %d of %d punches: %w",
				id, td.PunchIns, td.MinFrequency, ErrInvalidOperation)
		}

		td.Done = done
		if done {
			now := t.now()
			td.CompletedAt = &now
			t.applyCompletedLocked(td.DayKey, td.Category, 1)
		} else {
			td.CompletedAt = nil
			t.applyCompletedLocked(td.DayKey, td.Category, -1)
		}
		t.touch(model.KeyTodos)
		changed = true
		return nil
	})
	return changed, err
}

// ApplyEdit replaces the editable fields of an instance. The done state of
// recurring instances is re-derived from the punch count, the day's created
// and completed breakdowns follow a category change, and the owning template
// is updated, replaced or detached to match.
//
// Minute changes only apply to future punches; recorded punches keep their
// snapshot.
func (t *Tracker) ApplyEdit(id string, params TaskParams) (bool, error) {
	err := t.mutate(func() error {
		i := t.todoIndexLocked(id)
		if i < 0 {
			return notFound("todo", id)
		}
		p, err := t.normalizeParams(params)
		if err != nil {
			return err
		}

		old := t.todos[i]
		oldCategory := model.CategoryOrDefault(old.Category)
		keyChanged := old.Title != p.Title || oldCategory != p.Category || old.Period != p.Period
		if keyChanged {
			if err := t.checkExistsLocked(p, t.now(), id); err != nil {
				return err
			}
		}

		shouldDone := old.Done
		if p.Period.Recurring() {
			shouldDone = old.PunchIns >= p.MinFrequency
		}

		if oldCategory != p.Category {
			t.applyCreatedLocked(old.DayKey, oldCategory, -1)
			t.applyCreatedLocked(old.DayKey, p.Category, 1)
		}
		if old.Done {
			t.applyCompletedLocked(old.DayKey, oldCategory, -1)
		}
		if shouldDone {
			t.applyCompletedLocked(old.DayKey, p.Category, 1)
		}

		td := &t.todos[i]
		td.Title = p.Title
		td.Category = p.Category
		td.Period = p.Period
		td.MinFrequency = p.MinFrequency
		td.Unit = p.Unit
		td.MinutesPerPunch = p.MinutesPerPunch
		td.Description = p.Description
		td.Deadline = p.Deadline
		switch {
		case shouldDone && !old.Done:
			now := t.now()
			td.Done = true
			td.CompletedAt = &now
		case !shouldDone && old.Done:
			td.Done = false
			td.CompletedAt = nil
		}

		t.relinkTemplateLocked(td, old, p, keyChanged)
		t.touch(model.KeyTodos)
		return nil
	})
	return err == nil, err
}

// relinkTemplateLocked points an edited instance at the right template.
func (t *Tracker) relinkTemplateLocked(td *model.Todo, old model.Todo, p TaskParams, keyChanged bool) {
	if !p.Period.Recurring() {
		if old.TemplateID != "" {
			t.archiveTemplateIfOrphanLocked(old.TemplateID, td.ID)
			td.TemplateID = ""
		}
		return
	}

	if j := t.templateIndexLocked(old.TemplateID); j >= 0 && !keyChanged {
		tpl := &t.templates[j]
		tpl.MinFrequency = p.MinFrequency
		tpl.Unit = p.Unit
		tpl.MinutesPerPunch = p.MinutesPerPunch
		tpl.Description = p.Description
		tpl.Deadline = p.Deadline
		t.touch(model.KeyTemplates)
		return
	}

	td.TemplateID = t.findOrCreateTemplateLocked(p)
	if old.TemplateID != "" && old.TemplateID != td.TemplateID {
		t.archiveTemplateIfOrphanLocked(old.TemplateID, td.ID)
	}
}

// ArchiveTodo moves an instance to the archived history. Its template is
// archived when no other live instance uses it. Statistics are kept.
func (t *Tracker) ArchiveTodo(id string) error {
	return t.mutate(func() error {
		i := t.todoIndexLocked(id)
		if i < 0 {
			return notFound("todo", id)
		}
		td := t.removeTodoLocked(i)
		t.archived = append(t.archived, model.ArchivedTodo{
			Todo: td, ArchivedAt: t.now(), Reason: model.ArchiveReasonArchived,
		})
		t.touch(model.KeyArchivedHistory)
		if td.TemplateID != "" {
			t.archiveTemplateIfOrphanLocked(td.TemplateID, "")
		}
		return nil
	})
}

// DeleteTodo removes an instance together with its punch records and
// subtracts everything it contributed to the statistics.
func (t *Tracker) DeleteTodo(id string) error {
	return t.mutate(func() error {
		i := t.todoIndexLocked(id)
		if i < 0 {
			return notFound("todo", id)
		}
		td := t.todos[i]

		t.applyCreatedLocked(td.DayKey, td.Category, -1)
		if td.Done {
			t.applyCompletedLocked(td.DayKey, td.Category, -1)
		}

		kept := t.punches[:0]
		removed := 0
		for _, r := range t.punches {
			if r.TodoID != id {
				kept = append(kept, r)
				continue
			}
			t.applyPunchLocked(r.DayKey, r.Category, -1, -t.recordMinutesLocked(r))
			removed++
		}
		t.punches = kept
		if removed > 0 {
			t.touch(model.KeyPunchRecords)
		}
		t.dropGoalProgressLocked(id)
		t.removeTodoLocked(i)

		t.archived = append(t.archived, model.ArchivedTodo{
			Todo: td, ArchivedAt: t.now(), Reason: model.ArchiveReasonDeleted,
		})
		t.touch(model.KeyArchivedHistory)
		if td.TemplateID != "" {
			t.archiveTemplateIfOrphanLocked(td.TemplateID, "")
		}
		t.log.Debug("todo deleted", "id", id, "punch_records", removed)
		return nil
	})
}

func (t *Tracker) removeTodoLocked(i int) model.Todo {
	td := t.todos[i]
	t.todos = append(t.todos[:i], t.todos[i+1:]...)
	t.touch(model.KeyTodos)
	return td
}
