package app

import (
	"errors"
	"fmt"

	"github.com/nhle/punchcard/internal/model"
	"github.com/nhle/punchcard/internal/tracker"
)

// describeError turns a tracker rejection into a status bar message.
func describeError(err error) string {
	var exists *tracker.ExistsError
	if errors.As(err, &exists) {
		switch exists.Action {
		case tracker.ActionStartPunching:
			return fmt.Sprintf("%q is already on today's list, start punching it", exists.Existing.Title)
		case tracker.ActionPunchAgain:
			return fmt.Sprintf("%q is already on today's list, punch it again", exists.Existing.Title)
		case tracker.ActionAlreadyDone:
			return fmt.Sprintf("%q is already done for this %s", exists.Existing.Title, cycleNoun(exists.Existing.Period))
		}
	}

	switch tracker.KindOf(err) {
	case tracker.KindNone:
		return ""
	case tracker.KindNotFound:
		return "That task no longer exists"
	case tracker.KindEmpty:
		return "A title is required"
	case tracker.KindTooFrequent:
		return "Punched a moment ago, add a note to annotate it instead"
	case tracker.KindExists:
		return "That already exists"
	case tracker.KindInvalid:
		return "Not possible here: " + err.Error()
	default:
		return "Error: " + err.Error()
	}
}

// describePunch summarizes a successful punch.
func describePunch(td model.Todo, res tracker.PunchResult) string {
	switch res.Outcome {
	case tracker.OutcomeAutoDone:
		return fmt.Sprintf("%s done for this %s", td.Title, cycleNoun(td.Period))
	case tracker.OutcomeNoteAttached:
		return fmt.Sprintf("Note added to the last punch on %s", td.Title)
	case tracker.OutcomeProgressLogged:
		return fmt.Sprintf("Progress logged on %s", td.Title)
	default:
		return fmt.Sprintf("%s %d/%d", td.Title, res.PunchIns, td.MinFrequency)
	}
}

// describeMaterialize summarizes a materialization pass, or returns an
// empty string when nothing changed.
func describeMaterialize(r tracker.MaterializeReport) string {
	if !r.Changed() {
		return ""
	}
	s := fmt.Sprintf("%d new, %d rolled over", r.Generated, r.RolledOver)
	if r.Missed > 0 {
		s += fmt.Sprintf(", %d missed", r.Missed)
	}
	if r.Retired > 0 {
		s += fmt.Sprintf(", %d finished goals archived", r.Retired)
	}
	if n := r.Pruned + r.Deduplicated; n > 0 {
		s += fmt.Sprintf(", %d stale removed", n)
	}
	return s
}

func cycleNoun(p model.Period) string {
	switch p {
	case model.PeriodWeekly:
		return "week"
	case model.PeriodMonthly:
		return "month"
	case model.PeriodYearly:
		return "year"
	case model.PeriodOnce:
		return "goal"
	default:
		return "day"
	}
}
