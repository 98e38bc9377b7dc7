package tracker

import (
	"errors"
	"fmt"

	"github.com/nhle/punchcard/internal/model"
)

// Rejections returned by tracker operations. Callers match them with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrEmptyInput       = errors.New("empty input")
	ErrTooFrequent      = errors.New("too frequent")
	ErrAlreadyExists    = errors.New("already exists")
)

// Kind is the discriminant of a rejection as seen by the presentation layer.
type Kind string

const (
	KindNone        Kind = ""
	KindNotFound    Kind = "not_found"
	KindInvalid     Kind = "invalid"
	KindEmpty       Kind = "empty"
	KindTooFrequent Kind = "too_frequent"
	KindExists      Kind = "exists"
	KindUnknown     Kind = "unknown"
)

// KindOf maps err to its rejection kind. A nil error yields KindNone.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidOperation):
		return KindInvalid
	case errors.Is(err, ErrEmptyInput):
		return KindEmpty
	case errors.Is(err, ErrTooFrequent):
		return KindTooFrequent
	case errors.Is(err, ErrAlreadyExists):
		return KindExists
	}
	return KindUnknown
}

// SuggestedAction tells the caller what to do with an existing instance.
type SuggestedAction string

const (
	ActionStartPunching SuggestedAction = "start_punching"
	ActionPunchAgain    SuggestedAction = "punch_again"
	ActionAlreadyDone   SuggestedAction = "already_done"
)

// ExistsError is returned when a create would duplicate a live instance.
type ExistsError struct {
	Existing model.Todo
	Action   SuggestedAction
}

func (e *ExistsError) Error() string {
	return fmt.Sprintf("todo %q (%s, %s) already exists: %s",
		e.Existing.Title, e.Existing.Category, e.Existing.Period, e.Action)
}

func (e *ExistsError) Unwrap() error { return ErrAlreadyExists }

func notFound(what, id string) error {
	return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
}
