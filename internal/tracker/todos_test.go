package tracker_test

import (
	"errors"
	"testing"
	"time"

	"github.com/nhle/punchcard/internal/model"
	"github.com/nhle/punchcard/internal/tracker"
)

func TestAddTodoNormalizesParams(t *testing.T) {
	tr, _ := newTracker(t, day(4, 9, 0))

	td := mustAdd(t, tr, tracker.TaskParams{Title: "  Read  ", MinFrequency: -2})
	if td.Title != "Read" || td.Category != model.DefaultCategory ||
		td.Period != model.PeriodDaily || td.Unit != model.UnitCount || td.MinFrequency != 1 {
		t.Errorf("normalized todo = %+v", td)
	}
	if td.DayKey != "2024-03-04" || td.TemplateID == "" {
		t.Errorf("todo = %+v", td)
	}

	once := mustAdd(t, tr, tracker.TaskParams{Title: "Move out", Period: model.PeriodOnce, MinFrequency: 4})
	if once.MinFrequency != 1 || once.TemplateID != "" {
		t.Errorf("once todo = %+v", once)
	}

	st := tr.DayStat("2024-03-04")
	if st.CreatedCount != 2 || st.CategoryCreated[model.DefaultCategory] != 2 {
		t.Errorf("day stat = %+v", st)
	}
}

func TestAddTodoRejectsBadInput(t *testing.T) {
	tr, _ := newTracker(t, day(4, 9, 0))

	tests := []struct {
		name   string
		params tracker.TaskParams
		want   error
	}{
		{"blank title", tracker.TaskParams{Title: "   "}, tracker.ErrEmptyInput},
		{"unknown period", tracker.TaskParams{Title: "x", Period: "hourly"}, tracker.ErrInvalidOperation},
		{"unknown unit", tracker.TaskParams{Title: "x", Unit: "liters"}, tracker.ErrInvalidOperation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tr.AddTodo(tt.params); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
	if len(tr.Todos()) != 0 || len(tr.Templates(true)) != 0 {
		t.Error("rejected adds mutated state")
	}
}

func TestPrepareTodoReportsExisting(t *testing.T) {
	tr, clock := newTracker(t, day(4, 9, 0))
	params := tracker.TaskParams{Title: "Walk", Category: "health", MinFrequency: 2}

	draft, err := tr.PrepareTodo(params)
	if err != nil {
		t.Fatalf("PrepareTodo: %v", err)
	}
	if draft.ID != "" || draft.Title != "Walk" || len(tr.Todos()) != 0 {
		t.Errorf("PrepareTodo mutated state or assigned id: %+v", draft)
	}

	td := mustAdd(t, tr, params)

	wantAction := func(action tracker.SuggestedAction) {
		t.Helper()
		_, err := tr.PrepareTodo(params)
		var exists *tracker.ExistsError
		if !errors.As(err, &exists) {
			t.Fatalf("err = %v, want *ExistsError", err)
		}
		if exists.Action != action || exists.Existing.ID != td.ID {
			t.Errorf("exists = %+v, want action %q", exists, action)
		}
		if !errors.Is(err, tracker.ErrAlreadyExists) {
			t.Error("ExistsError does not match ErrAlreadyExists")
		}
	}

	wantAction(tracker.ActionStartPunching)
	mustPunch(t, tr, td.ID)
	wantAction(tracker.ActionPunchAgain)
	clock.Advance(2 * time.Minute)
	mustPunch(t, tr, td.ID)
	wantAction(tracker.ActionAlreadyDone)

	// A different category is a different task.
	if _, err := tr.PrepareTodo(tracker.TaskParams{Title: "Walk", Category: "dog"}); err != nil {
		t.Errorf("other category: %v", err)
	}
}

func TestAddFromHistory(t *testing.T) {
	tr, clock := newTracker(t, day(4, 9, 0))
	td := mustAdd(t, tr, tracker.TaskParams{Title: "Stretch", Category: "health", MinFrequency: 2})
	if err := tr.ArchiveTodo(td.ID); err != nil {
		t.Fatalf("ArchiveTodo: %v", err)
	}

	clock.Advance(time.Hour)
	again, err := tr.AddFromHistory(0)
	if err != nil {
		t.Fatalf("AddFromHistory: %v", err)
	}
	if again.Title != "Stretch" || again.Category != "health" || again.MinFrequency != 2 {
		t.Errorf("todo = %+v", again)
	}
	if again.TemplateID == td.TemplateID {
		t.Error("archived template reused")
	}
	if _, err := tr.AddFromHistory(5); !errors.Is(err, tracker.ErrNotFound) {
		t.Errorf("out of range err = %v", err)
	}
}

func TestHistoryIsCappedAndDeduplicated(t *testing.T) {
	tr, _ := newTracker(t, day(4, 9, 0), func(o *tracker.Options) { o.HistoryLimit = 3 })
	for _, title := range []string{"a", "b", "c", "d"} {
		td := mustAdd(t, tr, tracker.TaskParams{Title: title})
		if err := tr.ArchiveTodo(td.ID); err != nil {
			t.Fatalf("ArchiveTodo: %v", err)
		}
	}
	mustAdd(t, tr, tracker.TaskParams{Title: "b"})

	hist := tr.History()
	var titles []string
	for _, h := range hist {
		titles = append(titles, h.Title)
	}
	if len(titles) != 3 || titles[0] != "b" || titles[1] != "d" || titles[2] != "c" {
		t.Errorf("history = %v, want [b d c]", titles)
	}

	if err := tr.RemoveHistoryItem(1); err != nil {
		t.Fatalf("RemoveHistoryItem: %v", err)
	}
	if got := tr.History(); len(got) != 2 || got[1].Title != "c" {
		t.Errorf("history after remove = %+v", got)
	}
	tr.ClearHistory()
	if len(tr.History()) != 0 {
		t.Error("history not cleared")
	}
}

func TestToggleDone(t *testing.T) {
	tr, _ := newTracker(t, day(4, 9, 0))
	td := mustAdd(t, tr, tracker.TaskParams{Title: "Clean", MinFrequency: 2})

	if _, err := tr.ToggleDone(td.ID, true); !errors.Is(err, tracker.ErrInvalidOperation) {
		t.Errorf("done without punches err = %v", err)
	}
	if changed, err := tr.ToggleDone(td.ID, false); changed || err != nil {
		t.Errorf("no-op toggle = %v, %v", changed, err)
	}
	if _, err := tr.ToggleDone("nope", true); !errors.Is(err, tracker.ErrNotFound) {
		t.Errorf("unknown id err = %v", err)
	}

	once := mustAdd(t, tr, tracker.TaskParams{Title: "Call bank", Period: model.PeriodOnce})
	if changed, err := tr.ToggleDone(once.ID, true); !changed || err != nil {
		t.Fatalf("ToggleDone(true) = %v, %v", changed, err)
	}
	if got := tr.DayStat("2024-03-04").CompletedCount; got != 1 {
		t.Errorf("completed = %d, want 1", got)
	}
	if changed, err := tr.ToggleDone(once.ID, false); !changed || err != nil {
		t.Fatalf("ToggleDone(false) = %v, %v", changed, err)
	}
	if got, _ := tr.TodoByID(once.ID); got.Done || got.CompletedAt != nil {
		t.Errorf("todo = %+v", got)
	}
	if got := tr.DayStat("2024-03-04").CompletedCount; got != 0 {
		t.Errorf("completed = %d, want 0", got)
	}
}

func TestApplyEditRederivesDoneAndCategory(t *testing.T) {
	tr, clock := newTracker(t, day(4, 9, 0))
	td := mustAdd(t, tr, tracker.TaskParams{Title: "Cardio", Category: "sport", Period: model.PeriodWeekly, MinFrequency: 3})
	mustPunch(t, tr, td.ID)
	clock.Advance(2 * time.Minute)
	mustPunch(t, tr, td.ID)

	ok, err := tr.ApplyEdit(td.ID, tracker.TaskParams{
		Title: "Cardio", Category: "health", Period: model.PeriodWeekly, MinFrequency: 2,
	})
	if err != nil || !ok {
		t.Fatalf("ApplyEdit = %v, %v", ok, err)
	}

	got, _ := tr.TodoByID(td.ID)
	if !got.Done || got.CompletedAt == nil || got.Category != "health" {
		t.Errorf("edited todo = %+v", got)
	}
	st := tr.DayStat("2024-03-04")
	if st.CompletedCount != 1 || st.CategoryCompleted["health"] != 1 {
		t.Errorf("completed = %d %+v", st.CompletedCount, st.CategoryCompleted)
	}
	if st.CreatedCount != 1 || st.CategoryCreated["health"] != 1 || st.CategoryCreated["sport"] != 0 {
		t.Errorf("created = %d %+v", st.CreatedCount, st.CategoryCreated)
	}
	if st.CategoryPunchIns["sport"] != 2 {
		t.Errorf("punch breakdown = %+v, want history kept under sport", st.CategoryPunchIns)
	}

	// The natural key changed, so the instance moved to a new template and
	// the old one was archived.
	if got.TemplateID == td.TemplateID {
		t.Error("template not replaced after category change")
	}
	if old, _ := tr.TemplateByID(td.TemplateID); !old.Archived {
		t.Error("orphaned template not archived")
	}

	// Raising the threshold again un-completes it.
	if _, err := tr.ApplyEdit(td.ID, tracker.TaskParams{
		Title: "Cardio", Category: "health", Period: model.PeriodWeekly, MinFrequency: 5,
	}); err != nil {
		t.Fatalf("ApplyEdit: %v", err)
	}
	if got, _ := tr.TodoByID(td.ID); got.Done || got.CompletedAt != nil {
		t.Errorf("todo still done: %+v", got)
	}
	if tpl, _ := tr.TemplateByID(got.TemplateID); tpl.MinFrequency != 5 {
		t.Errorf("template min frequency = %d, want 5", tpl.MinFrequency)
	}
	if c := tr.DayStat("2024-03-04").CompletedCount; c != 0 {
		t.Errorf("completed = %d, want 0", c)
	}
}

func TestApplyEditToOnceDetachesTemplate(t *testing.T) {
	tr, _ := newTracker(t, day(4, 9, 0))
	td := mustAdd(t, tr, tracker.TaskParams{Title: "Paint fence", Period: model.PeriodMonthly})

	if _, err := tr.ApplyEdit(td.ID, tracker.TaskParams{Title: "Paint fence", Period: model.PeriodOnce}); err != nil {
		t.Fatalf("ApplyEdit: %v", err)
	}
	got, _ := tr.TodoByID(td.ID)
	if got.TemplateID != "" || got.Period != model.PeriodOnce {
		t.Errorf("todo = %+v", got)
	}
	if len(tr.Templates(false)) != 0 {
		t.Errorf("active templates = %+v", tr.Templates(false))
	}
}

func TestApplyEditRejections(t *testing.T) {
	tr, _ := newTracker(t, day(4, 9, 0))
	a := mustAdd(t, tr, tracker.TaskParams{Title: "A"})
	mustAdd(t, tr, tracker.TaskParams{Title: "B"})

	if _, err := tr.ApplyEdit("nope", tracker.TaskParams{Title: "x"}); !errors.Is(err, tracker.ErrNotFound) {
		t.Errorf("unknown id err = %v", err)
	}
	if ok, err := tr.ApplyEdit(a.ID, tracker.TaskParams{Title: ""}); ok || !errors.Is(err, tracker.ErrEmptyInput) {
		t.Errorf("blank title = %v, %v", ok, err)
	}
	if _, err := tr.ApplyEdit(a.ID, tracker.TaskParams{Title: "B"}); !errors.Is(err, tracker.ErrAlreadyExists) {
		t.Errorf("collision err = %v", err)
	}
}

func TestApplyEditRejectsFinishedInstanceInCycle(t *testing.T) {
	tr, clock := newTracker(t, day(4, 9, 0))
	run := mustAdd(t, tr, tracker.TaskParams{Title: "Run", Period: model.PeriodWeekly, MinFrequency: 1})
	mustPunch(t, tr, run.ID)
	swim := mustAdd(t, tr, tracker.TaskParams{Title: "Swim", Period: model.PeriodWeekly, MinFrequency: 2})
	clock.Advance(2 * time.Minute)
	mustPunch(t, tr, swim.ID)

	ok, err := tr.ApplyEdit(swim.ID, tracker.TaskParams{Title: "Run", Period: model.PeriodWeekly, MinFrequency: 2})
	if ok || !errors.Is(err, tracker.ErrAlreadyExists) {
		t.Fatalf("ApplyEdit = %v, %v; want exists", ok, err)
	}
	var exists *tracker.ExistsError
	if !errors.As(err, &exists) || exists.Action != tracker.ActionAlreadyDone || exists.Existing.ID != run.ID {
		t.Errorf("exists = %+v", exists)
	}

	got, _ := tr.TodoByID(swim.ID)
	if got.Title != "Swim" || got.PunchIns != 1 {
		t.Errorf("rejected edit changed the instance: %+v", got)
	}
	perTemplate := make(map[string]int)
	for _, td := range tr.Todos() {
		perTemplate[td.TemplateID]++
	}
	for id, n := range perTemplate {
		if n > 1 {
			t.Errorf("template %s has %d live instances", id, n)
		}
	}

	// Editing an instance without changing its key still succeeds.
	if ok, err := tr.ApplyEdit(run.ID, tracker.TaskParams{
		Title: "Run", Period: model.PeriodWeekly, MinFrequency: 1, Description: "5k",
	}); !ok || err != nil {
		t.Errorf("self edit = %v, %v", ok, err)
	}
}

func TestArchiveTodoArchivesOrphanTemplate(t *testing.T) {
	tr, clock := newTracker(t, day(4, 9, 0))
	td := mustAdd(t, tr, tracker.TaskParams{Title: "Vitamins"})
	mustPunch(t, tr, td.ID)

	if err := tr.ArchiveTodo(td.ID); err != nil {
		t.Fatalf("ArchiveTodo: %v", err)
	}
	if _, ok := tr.TodoByID(td.ID); ok {
		t.Error("archived todo still live")
	}
	tpl, _ := tr.TemplateByID(td.TemplateID)
	if !tpl.Archived || tpl.ArchivedAt == nil {
		t.Errorf("template = %+v", tpl)
	}
	if st := tr.DayStat("2024-03-04"); st.CreatedCount != 1 || st.PunchInsTotal != 1 {
		t.Errorf("archive changed stats: %+v", st)
	}

	clock.Set(day(5, 9, 0))
	if todos, _ := tr.Materialize(); len(todos) != 0 {
		t.Errorf("archived template regenerated: %+v", todos)
	}

	if err := tr.RestoreTemplate(td.TemplateID); err != nil {
		t.Fatalf("RestoreTemplate: %v", err)
	}
	if todos, _ := tr.Materialize(); len(todos) != 1 {
		t.Errorf("restored template not materialized: %+v", todos)
	}
}

func TestRestoreTemplateCollision(t *testing.T) {
	tr, _ := newTracker(t, day(4, 9, 0))
	td := mustAdd(t, tr, tracker.TaskParams{Title: "Yoga"})
	if err := tr.ArchiveTodo(td.ID); err != nil {
		t.Fatalf("ArchiveTodo: %v", err)
	}
	mustAdd(t, tr, tracker.TaskParams{Title: "Yoga"})

	if err := tr.RestoreTemplate(td.TemplateID); !errors.Is(err, tracker.ErrAlreadyExists) {
		t.Errorf("err = %v, want ErrAlreadyExists", err)
	}
	if err := tr.RestoreTemplate("nope"); !errors.Is(err, tracker.ErrNotFound) {
		t.Errorf("unknown template err = %v", err)
	}
}

func TestArchiveTemplateMovesLiveInstances(t *testing.T) {
	tr, _ := newTracker(t, day(4, 9, 0))
	td := mustAdd(t, tr, tracker.TaskParams{Title: "Budget", Period: model.PeriodMonthly})

	if err := tr.ArchiveTemplate(td.TemplateID); err != nil {
		t.Fatalf("ArchiveTemplate: %v", err)
	}
	if len(tr.Todos()) != 0 {
		t.Error("live instance kept")
	}
	if a := tr.ArchivedHistory(); len(a) != 1 || a[0].Reason != model.ArchiveReasonArchived {
		t.Errorf("archived = %+v", a)
	}
	if err := tr.ArchiveTemplate(td.TemplateID); !errors.Is(err, tracker.ErrInvalidOperation) {
		t.Errorf("double archive err = %v", err)
	}
}

func TestImportTemplates(t *testing.T) {
	tr, _ := newTracker(t, day(4, 9, 0))
	mustAdd(t, tr, tracker.TaskParams{Title: "Run", Period: model.PeriodWeekly})

	added, err := tr.ImportTemplates([]tracker.TaskParams{
		{Title: "Run", Period: model.PeriodWeekly},
		{Title: "Swim", Period: model.PeriodWeekly, MinFrequency: 2},
		{Title: "Once", Period: model.PeriodOnce},
		{Title: " "},
	})
	if err != nil {
		t.Fatalf("ImportTemplates: %v", err)
	}
	if added != 1 {
		t.Errorf("added = %d, want 1", added)
	}
	if n := len(tr.Templates(false)); n != 2 {
		t.Errorf("templates = %d, want 2", n)
	}
}

func TestDeleteTodoSubtractsContributions(t *testing.T) {
	tr, clock := newTracker(t, day(4, 9, 0))
	keep := mustAdd(t, tr, tracker.TaskParams{Title: "Keep", Category: "x"})
	gone := mustAdd(t, tr, tracker.TaskParams{Title: "Gone", Category: "x", Unit: model.UnitMinutes})
	mustPunch(t, tr, keep.ID)
	mustPunch(t, tr, gone.ID)

	if err := tr.DeleteTodo(gone.ID); err != nil {
		t.Fatalf("DeleteTodo: %v", err)
	}
	st := tr.DayStat("2024-03-04")
	if st.CreatedCount != 1 || st.CompletedCount != 1 || st.PunchInsTotal != 1 || st.MinutesTotal != 0 {
		t.Errorf("day stat = %+v", st)
	}
	if st.CategoryMinutes["x"] != 0 || st.CategoryPunchIns["x"] != 1 {
		t.Errorf("breakdowns = %+v / %+v", st.CategoryPunchIns, st.CategoryMinutes)
	}
	if recs := tr.PunchRecords(""); len(recs) != 1 || recs[0].TodoID != keep.ID {
		t.Errorf("records = %+v", recs)
	}
	if err := tr.DeleteTodo(gone.ID); !errors.Is(err, tracker.ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}

	clock.Advance(time.Hour)
	before := tr.DayStats()
	after := tr.RebuildDayStats()
	if before["2024-03-04"].PunchInsTotal != after["2024-03-04"].PunchInsTotal ||
		before["2024-03-04"].CreatedCount != after["2024-03-04"].CreatedCount {
		t.Errorf("rebuild disagrees after delete: %+v vs %+v", before["2024-03-04"], after["2024-03-04"])
	}
}
