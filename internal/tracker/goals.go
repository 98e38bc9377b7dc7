package tracker

import (
	"fmt"
	"strings"

	"github.com/nhle/punchcard/internal/model"
)

// GiveUpGoal abandons a once-instance. The instance leaves the live list and
// is recorded with its progress notes in the abandoned goals.
func (t *Tracker) GiveUpGoal(id, reason string) error {
	return t.mutate(func() error {
		i := t.todoIndexLocked(id)
		if i < 0 {
			return notFound("todo", id)
		}
		if t.todos[i].Period != model.PeriodOnce {
			return fmt.Errorf("giving up recurring todo %s: %w", id, ErrInvalidOperation)
		}

		goal := model.AbandonedGoal{
			Todo:        t.todos[i],
			AbandonedAt: t.now(),
			Reason:      strings.TrimSpace(reason),
			Progress:    t.goalProgressLocked(id),
		}
		t.dropGoalProgressLocked(id)
		t.removeTodoLocked(i)
		t.abandoned = append(t.abandoned, goal)
		t.touch(model.KeyAbandonedGoals)
		return nil
	})
}

// AbandonedGoals returns the goals given up on, oldest first.
func (t *Tracker) AbandonedGoals() []model.AbandonedGoal {
	t.mu.Lock()
	defer t.mu.Unlock()
	return cloneSnapshot(model.Snapshot{AbandonedGoals: t.abandoned}).AbandonedGoals
}

// ArchivedHistory returns instances removed from the live list, oldest
// first.
func (t *Tracker) ArchivedHistory() []model.ArchivedTodo {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]model.ArchivedTodo(nil), t.archived...)
}

// GoalProgress returns the progress notes of a live once-instance.
func (t *Tracker) GoalProgress(todoID string) []model.GoalProgress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.goalProgressLocked(todoID)
}

func (t *Tracker) goalProgressLocked(todoID string) []model.GoalProgress {
	var out []model.GoalProgress
	for _, gp := range t.goalProgress {
		if gp.TodoID == todoID {
			out = append(out, gp)
		}
	}
	return out
}

func (t *Tracker) dropGoalProgressLocked(todoID string) {
	kept := t.goalProgress[:0]
	for _, gp := range t.goalProgress {
		if gp.TodoID != todoID {
			kept = append(kept, gp)
		}
	}
	if len(kept) != len(t.goalProgress) {
		t.goalProgress = kept
		t.touch(model.KeyGoalProgress)
	}
}
