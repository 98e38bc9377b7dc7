package tracker

import (
	"fmt"
	"strings"

	"github.com/nhle/punchcard/internal/model"
)

// PunchOptions carries the optional inputs of a punch.
type PunchOptions struct {
	Note string

	// Minutes overrides the instance's minutes per punch for minutes-unit
	// instances. Zero means no override.
	Minutes int
}

// Outcome classifies a successful punch.
type Outcome string

const (
	OutcomeOK             Outcome = "ok"
	OutcomeAutoDone       Outcome = "auto_done"
	OutcomeNoteAttached   Outcome = "note_attached"
	OutcomeProgressLogged Outcome = "progress_logged"
)

// PunchResult describes what a punch did.
type PunchResult struct {
	Outcome  Outcome
	PunchIns int

	// RecordID is the punch record created or annotated, or the goal
	// progress entry for OutcomeProgressLogged.
	RecordID string
}

// PunchIn records one progress event against a live instance.
//
// Once-instances cannot be punched, except that a note is logged as goal
// progress when goal progress notes are enabled. A repeat punch without a
// note inside the debounce window of a note-less record is rejected with
// ErrTooFrequent; a repeat punch with a note attaches the note to that record
// instead.
func (t *Tracker) PunchIn(id string, opts PunchOptions) (PunchResult, error) {
	var res PunchResult
	err := t.mutate(func() error {
		i := t.todoIndexLocked(id)
		if i < 0 {
			return notFound("todo", id)
		}
		td := &t.todos[i]
		note := strings.TrimSpace(opts.Note)
		now := t.now()

		if td.Period == model.PeriodOnce {
			if !t.opts.GoalProgressNotes || note == "" {
				return fmt.Errorf("punching once-instance %s: %w", id, ErrInvalidOperation)
			}
			gp := model.GoalProgress{
				ID:        t.opts.IDs.NewID(),
				TodoID:    id,
				Timestamp: now,
				DayKey:    t.cal.DayKey(now),
				Note:      note,
			}
			t.goalProgress = append(t.goalProgress, gp)
			t.touch(model.KeyGoalProgress)
			res = PunchResult{Outcome: OutcomeProgressLogged, PunchIns: td.PunchIns, RecordID: gp.ID}
			return nil
		}

		if j := t.lastPunchLocked(id); j >= 0 && t.opts.DebounceWindow > 0 {
			prior := &t.punches[j]
			if now.Sub(prior.Timestamp) < t.opts.DebounceWindow && prior.Note == "" {
				if note == "" {
					return fmt.Errorf("punching %s: %w", id, ErrTooFrequent)
				}
				prior.Note = note
				t.touch(model.KeyPunchRecords)
				res = PunchResult{Outcome: OutcomeNoteAttached, PunchIns: td.PunchIns, RecordID: prior.ID}
				return nil
			}
		}

		minutes := 0
		if td.Unit == model.UnitMinutes {
			minutes = td.MinutesPerPunch
			if opts.Minutes > 0 {
				minutes = opts.Minutes
			}
			if minutes <= 0 {
				minutes = t.opts.DefaultMinutesPerPunch
			}
		}

		td.PunchIns++
		rec := model.PunchRecord{
			ID:        t.opts.IDs.NewID(),
			TodoID:    td.ID,
			TodoTitle: td.Title,
			Category:  model.CategoryOrDefault(td.Category),
			Timestamp: now,
			DayKey:    t.cal.DayKey(now),
			Unit:      td.Unit,
			Minutes:   minutes,
			Note:      note,
		}
		t.appendPunchLocked(rec)
		t.applyPunchLocked(rec.DayKey, rec.Category, 1, minutes)

		res = PunchResult{Outcome: OutcomeOK, PunchIns: td.PunchIns, RecordID: rec.ID}
		if !td.Done && td.PunchIns >= td.MinFrequency {
			td.Done = true
			td.CompletedAt = &now
			t.applyCompletedLocked(td.DayKey, td.Category, 1)
			res.Outcome = OutcomeAutoDone
		}
		t.touch(model.KeyTodos)
		return nil
	})
	return res, err
}

// lastPunchLocked returns the index of the newest record for todoID.
func (t *Tracker) lastPunchLocked(todoID string) int {
	for j := len(t.punches) - 1; j >= 0; j-- {
		if t.punches[j].TodoID == todoID {
			return j
		}
	}
	return -1
}

// appendPunchLocked appends to the ledger and drops the oldest records past
// the cap. Dropped records keep their contribution to the statistics.
func (t *Tracker) appendPunchLocked(r model.PunchRecord) {
	t.punches = append(t.punches, r)
	if over := len(t.punches) - t.opts.MaxPunchRecords; over > 0 {
		t.punches = append([]model.PunchRecord(nil), t.punches[over:]...)
	}
	t.touch(model.KeyPunchRecords)
}

func (t *Tracker) punchIndexLocked(id string) int {
	for j := range t.punches {
		if t.punches[j].ID == id {
			return j
		}
	}
	return -1
}

// UpdatePunchNote replaces the note of a punch record.
func (t *Tracker) UpdatePunchNote(recordID, note string) error {
	return t.mutate(func() error {
		j := t.punchIndexLocked(recordID)
		if j < 0 {
			return notFound("punch record", recordID)
		}
		t.punches[j].Note = strings.TrimSpace(note)
		t.touch(model.KeyPunchRecords)
		return nil
	})
}

// CorrectPunchMinutes changes the minutes credited by a minutes-unit record
// and patches the record's day by the difference.
func (t *Tracker) CorrectPunchMinutes(recordID string, minutes int) error {
	return t.mutate(func() error {
		j := t.punchIndexLocked(recordID)
		if j < 0 {
			return notFound("punch record", recordID)
		}
		if minutes <= 0 {
			return fmt.Errorf("minutes %d: %w", minutes, ErrInvalidOperation)
		}
		r := t.punches[j]
		if t.recordMinutesLocked(r) == 0 && r.Unit != model.UnitMinutes {
			return fmt.Errorf("record %s is not counted in minutes: %w", recordID, ErrInvalidOperation)
		}

		delta := minutes - t.recordMinutesLocked(r)
		t.punches[j].Unit = model.UnitMinutes
		t.punches[j].Minutes = minutes
		t.touch(model.KeyPunchRecords)
		if delta != 0 {
			t.applyPunchLocked(r.DayKey, r.Category, 0, delta)
		}
		return nil
	})
}

// PunchRecords returns the ledger oldest first, limited to one instance
// when todoID is not empty.
func (t *Tracker) PunchRecords(todoID string) []model.PunchRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []model.PunchRecord
	for _, r := range t.punches {
		if todoID == "" || r.TodoID == todoID {
			out = append(out, r)
		}
	}
	return out
}
