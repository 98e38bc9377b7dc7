package tracker_test

import (
	"errors"
	"testing"
	"time"

	"github.com/nhle/punchcard/internal/model"
	"github.com/nhle/punchcard/internal/tracker"
	"github.com/nhle/punchcard/tests/testutil"
)

// 2024-03-04 is a Monday.
func day(d, h, m int) time.Time {
	return time.Date(2024, time.March, d, h, m, 0, 0, time.UTC)
}

func newTracker(t *testing.T, start time.Time, mod ...func(*tracker.Options)) (*tracker.Tracker, *testutil.Clock) {
	t.Helper()
	clock := testutil.NewClock(start)
	opts := tracker.Options{
		Clock:          clock,
		IDs:            &testutil.SeqIDs{},
		Location:       time.UTC,
		WeekStart:      time.Monday,
		DebounceWindow: time.Minute,
	}
	for _, fn := range mod {
		fn(&opts)
	}
	return tracker.New(opts), clock
}

func mustAdd(t *testing.T, tr *tracker.Tracker, p tracker.TaskParams) model.Todo {
	t.Helper()
	td, err := tr.AddTodo(p)
	if err != nil {
		t.Fatalf("AddTodo(%q): %v", p.Title, err)
	}
	return td
}

func mustPunch(t *testing.T, tr *tracker.Tracker, id string) tracker.PunchResult {
	t.Helper()
	res, err := tr.PunchIn(id, tracker.PunchOptions{})
	if err != nil {
		t.Fatalf("PunchIn(%s): %v", id, err)
	}
	return res
}

func TestSubscribeReceivesChangedKeys(t *testing.T) {
	tr, _ := newTracker(t, day(4, 9, 0))

	var changes []tracker.Change
	tr.Subscribe(func(c tracker.Change) { changes = append(changes, c) })

	td := mustAdd(t, tr, tracker.TaskParams{Title: "Read", Period: model.PeriodDaily})
	if len(changes) != 1 {
		t.Fatalf("got %d changes, want 1", len(changes))
	}
	want := map[model.Key]bool{
		model.KeyTodos: true, model.KeyTemplates: true,
		model.KeyDayStats: true, model.KeyHistory: true,
	}
	for _, k := range changes[0].Keys {
		if !want[k] {
			t.Errorf("unexpected key %q", k)
		}
		delete(want, k)
	}
	if len(want) != 0 {
		t.Errorf("missing keys: %v", want)
	}
	if changes[0].Seq == 0 {
		t.Error("change has no sequence number")
	}
	if len(changes[0].Snapshot.Todos) != 1 || changes[0].Snapshot.Todos[0].ID != td.ID {
		t.Errorf("snapshot todos = %+v", changes[0].Snapshot.Todos)
	}

	// The snapshot is a copy.
	changes[0].Snapshot.Todos[0].Title = "mutated"
	if got, _ := tr.TodoByID(td.ID); got.Title != "Read" {
		t.Errorf("snapshot aliases tracker state: title %q", got.Title)
	}

	// Rejected operations that touch nothing do not notify.
	if _, err := tr.PunchIn("missing", tracker.PunchOptions{}); !errors.Is(err, tracker.ErrNotFound) {
		t.Fatalf("PunchIn(missing) = %v, want ErrNotFound", err)
	}
	if len(changes) != 1 {
		t.Errorf("rejected punch notified observers")
	}

	mustPunch(t, tr, td.ID)
	if len(changes) != 2 || changes[1].Seq <= changes[0].Seq {
		t.Errorf("sequence did not increase: %+v", changes)
	}
}

func TestRestoreDefaultsUIConfig(t *testing.T) {
	tr, _ := newTracker(t, day(4, 9, 0))
	tr.Restore(model.Snapshot{})
	if got := tr.UIConfig(); got != model.DefaultUIConfig() {
		t.Errorf("UIConfig = %+v, want defaults", got)
	}

	tr.SetUIConfig(model.UIConfig{Theme: "dark", StatsRangeDays: 30})
	if got := tr.Snapshot().UIConfig.Theme; got != "dark" {
		t.Errorf("theme = %q, want dark", got)
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want tracker.Kind
	}{
		{nil, tracker.KindNone},
		{tracker.ErrNotFound, tracker.KindNotFound},
		{tracker.ErrInvalidOperation, tracker.KindInvalid},
		{tracker.ErrEmptyInput, tracker.KindEmpty},
		{tracker.ErrTooFrequent, tracker.KindTooFrequent},
		{&tracker.ExistsError{Action: tracker.ActionPunchAgain}, tracker.KindExists},
		{errors.New("boom"), tracker.KindUnknown},
	}
	for _, tt := range tests {
		if got := tracker.KindOf(tt.err); got != tt.want {
			t.Errorf("KindOf(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestStartSessionLinksLegacyInstances(t *testing.T) {
	tr, clock := newTracker(t, day(5, 8, 0))
	tr.Restore(model.Snapshot{
		Todos: []model.Todo{{
			ID: "legacy", Title: "Stretch", Period: model.PeriodDaily,
			MinFrequency: 1, Unit: model.UnitCount,
			CreatedAt: day(4, 7, 0), DayKey: "2024-03-04",
		}},
	})

	var notified int
	tr.Subscribe(func(tracker.Change) { notified++ })

	report := tr.StartSession()
	if report.Linked != 1 {
		t.Errorf("Linked = %d, want 1", report.Linked)
	}
	if notified != 1 {
		t.Errorf("notified %d times, want 1", notified)
	}

	tpls := tr.Templates(false)
	if len(tpls) != 1 || tpls[0].Title != "Stretch" || tpls[0].Category != model.DefaultCategory {
		t.Fatalf("templates = %+v", tpls)
	}

	// The Monday instance lapsed; a Tuesday instance comes from the new template.
	todos := tr.Todos()
	if len(todos) != 1 {
		t.Fatalf("got %d todos, want 1", len(todos))
	}
	if todos[0].ID == "legacy" || todos[0].DayKey != "2024-03-05" || todos[0].TemplateID != tpls[0].ID {
		t.Errorf("todo = %+v", todos[0])
	}

	clock.Advance(time.Hour)
	if again := tr.StartSession(); again.Linked != 0 || again.Materialize.Changed() {
		t.Errorf("second session start changed state: %+v", again)
	}
}
