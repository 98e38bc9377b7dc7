package tracker

import (
	"fmt"

	"github.com/nhle/punchcard/internal/model"
)

func historyItemFrom(p TaskParams) model.HistoryItem {
	return model.HistoryItem{
		Title:           p.Title,
		Category:        p.Category,
		Period:          p.Period,
		MinFrequency:    p.MinFrequency,
		Unit:            p.Unit,
		MinutesPerPunch: p.MinutesPerPunch,
		Description:     p.Description,
	}
}

// updateHistoryLocked moves item to the front, replacing any entry with the
// same key, and trims the list to the limit.
func (t *Tracker) updateHistoryLocked(item model.HistoryItem) {
	next := []model.HistoryItem{item}
	for _, h := range t.history {
		if !h.SameKey(item) {
			next = append(next, h)
		}
	}
	if len(next) > t.opts.HistoryLimit {
		next = next[:t.opts.HistoryLimit]
	}
	t.history = next
	t.touch(model.KeyHistory)
}

// History returns the recently used configurations, most recent first.
func (t *Tracker) History() []model.HistoryItem {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]model.HistoryItem(nil), t.history...)
}

// RemoveHistoryItem drops the history entry at index.
func (t *Tracker) RemoveHistoryItem(index int) error {
	return t.mutate(func() error {
		if index < 0 || index >= len(t.history) {
			return notFound("history item", fmt.Sprint(index))
		}
		t.history = append(t.history[:index], t.history[index+1:]...)
		t.touch(model.KeyHistory)
		return nil
	})
}

// ClearHistory empties the history.
func (t *Tracker) ClearHistory() {
	t.mutate(func() error {
		if len(t.history) > 0 {
			t.history = nil
			t.touch(model.KeyHistory)
		}
		return nil
	})
}
