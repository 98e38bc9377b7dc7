package tracker

import (
	"fmt"
	"strings"

	"github.com/nhle/punchcard/internal/model"
)

func (t *Tracker) templateIndexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i := range t.templates {
		if t.templates[i].ID == id {
			return i
		}
	}
	return -1
}

// activeTemplateLocked finds the non-archived template with the natural key.
func (t *Tracker) activeTemplateLocked(title, category string, period model.Period) int {
	for i := range t.templates {
		tpl := t.templates[i]
		if !tpl.Archived && tpl.Matches(title, category, period) {
			return i
		}
	}
	return -1
}

// findOrCreateTemplateLocked returns the id of the active template matching
// p's natural key, creating one when none exists. p must be normalized and
// recurring.
func (t *Tracker) findOrCreateTemplateLocked(p TaskParams) string {
	if i := t.activeTemplateLocked(p.Title, p.Category, p.Period); i >= 0 {
		return t.templates[i].ID
	}
	tpl := model.Template{
		ID:              t.opts.IDs.NewID(),
		Title:           p.Title,
		Category:        p.Category,
		Period:          p.Period,
		MinFrequency:    p.MinFrequency,
		Unit:            p.Unit,
		MinutesPerPunch: p.MinutesPerPunch,
		Description:     p.Description,
		Deadline:        p.Deadline,
		CreatedAt:       t.now(),
	}
	t.templates = append(t.templates, tpl)
	t.touch(model.KeyTemplates)
	t.log.Debug("template created", "id", tpl.ID, "title", tpl.Title, "period", tpl.Period)
	return tpl.ID
}

// archiveTemplateIfOrphanLocked archives the template once no live instance
// other than exceptTodoID references it.
func (t *Tracker) archiveTemplateIfOrphanLocked(templateID, exceptTodoID string) {
	i := t.templateIndexLocked(templateID)
	if i < 0 || t.templates[i].Archived {
		return
	}
	for _, td := range t.todos {
		if td.ID != exceptTodoID && td.TemplateID == templateID {
			return
		}
	}
	now := t.now()
	t.templates[i].Archived = true
	t.templates[i].ArchivedAt = &now
	t.touch(model.KeyTemplates)
	t.log.Debug("template archived", "id", templateID)
}

// Templates returns the template catalog. Archived templates are included
// only when includeArchived is set.
func (t *Tracker) Templates(includeArchived bool) []model.Template {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []model.Template
	for _, tpl := range t.templates {
		if tpl.Archived && !includeArchived {
			continue
		}
		out = append(out, tpl)
	}
	return out
}

// TemplateByID looks up a template.
func (t *Tracker) TemplateByID(id string) (model.Template, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if i := t.templateIndexLocked(id); i >= 0 {
		return t.templates[i], true
	}
	return model.Template{}, false
}

// ArchiveTemplate stops a template from recurring. Its live instances move
// to the archived history.
func (t *Tracker) ArchiveTemplate(id string) error {
	return t.mutate(func() error {
		i := t.templateIndexLocked(id)
		if i < 0 {
			return notFound("template", id)
		}
		if t.templates[i].Archived {
			return fmt.Errorf("template %s is already archived: %w", id, ErrInvalidOperation)
		}

		now := t.now()
		kept := t.todos[:0]
		for _, td := range t.todos {
			if td.TemplateID == id {
				t.archived = append(t.archived, model.ArchivedTodo{
					Todo: td, ArchivedAt: now, Reason: model.ArchiveReasonArchived,
				})
				t.touch(model.KeyArchivedHistory, model.KeyTodos)
				continue
			}
			kept = append(kept, td)
		}
		t.todos = kept

		t.templates[i].Archived = true
		t.templates[i].ArchivedAt = &now
		t.touch(model.KeyTemplates)
		return nil
	})
}

// RestoreTemplate reactivates an archived template. The next materialization
// generates its instance.
func (t *Tracker) RestoreTemplate(id string) error {
	return t.mutate(func() error {
		i := t.templateIndexLocked(id)
		if i < 0 {
			return notFound("template", id)
		}
		tpl := t.templates[i]
		if !tpl.Archived {
			return fmt.Errorf("template %s is not archived: %w", id, ErrInvalidOperation)
		}
		if j := t.activeTemplateLocked(tpl.Title, tpl.Category, tpl.Period); j >= 0 {
			return fmt.Errorf("restoring template %s: %w", id, ErrAlreadyExists)
		}
		t.templates[i].Archived = false
		t.templates[i].ArchivedAt = nil
		t.touch(model.KeyTemplates)
		return nil
	})
}

// ImportTemplates adds every recurring entry of params that has no active
// template with the same natural key. It returns how many were added.
// Entries with a blank title or a non-recurring period are skipped.
func (t *Tracker) ImportTemplates(params []TaskParams) (int, error) {
	added := 0
	err := t.mutate(func() error {
		for _, raw := range params {
			p, err := t.normalizeParams(raw)
			if err != nil || !p.Period.Recurring() {
				t.log.Debug("skipping template on import", "title", raw.Title, "period", raw.Period)
				continue
			}
			if t.activeTemplateLocked(p.Title, p.Category, p.Period) >= 0 {
				continue
			}
			t.findOrCreateTemplateLocked(p)
			added++
		}
		return nil
	})
	return added, err
}

// SyncTemplatesFromTodos links legacy recurring instances without a
// template to an existing template with the same natural key, or to a new
// one. It returns the number of instances linked.
func (t *Tracker) SyncTemplatesFromTodos() int {
	linked := 0
	t.mutate(func() error {
		linked = t.syncTemplatesLocked()
		return nil
	})
	return linked
}

func (t *Tracker) syncTemplatesLocked() int {
	linked := 0
	for i := range t.todos {
		td := &t.todos[i]
		if !td.Period.Recurring() {
			continue
		}
		if td.TemplateID != "" && t.templateIndexLocked(td.TemplateID) >= 0 {
			continue
		}
		category := model.CategoryOrDefault(td.Category)
		id := ""
		if j := t.activeTemplateLocked(td.Title, category, td.Period); j >= 0 {
			id = t.templates[j].ID
		} else {
			tpl := model.Template{
				ID:              t.opts.IDs.NewID(),
				Title:           strings.TrimSpace(td.Title),
				Category:        category,
				Period:          td.Period,
				MinFrequency:    max(td.MinFrequency, model.DefaultMinFrequency),
				Unit:            td.Unit,
				MinutesPerPunch: td.MinutesPerPunch,
				Description:     td.Description,
				CreatedAt:       td.CreatedAt,
			}
			if tpl.Unit == model.UnitMinutes && tpl.MinutesPerPunch <= 0 {
				tpl.MinutesPerPunch = t.opts.DefaultMinutesPerPunch
			}
			t.templates = append(t.templates, tpl)
			id = tpl.ID
			t.touch(model.KeyTemplates)
		}
		td.TemplateID = id
		linked++
		t.touch(model.KeyTodos)
	}
	if linked > 0 {
		t.log.Info("linked legacy instances to templates", "count", linked)
	}
	return linked
}
