package tracker_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/nhle/punchcard/internal/model"
	"github.com/nhle/punchcard/internal/tracker"
)

func TestRebuildMatchesIncrementalUpdates(t *testing.T) {
	tr, clock := newTracker(t, day(4, 8, 0))

	read := mustAdd(t, tr, tracker.TaskParams{Title: "Read", Category: "mind", MinFrequency: 2})
	run := mustAdd(t, tr, tracker.TaskParams{Title: "Run", Category: "sport", Period: model.PeriodWeekly, MinFrequency: 3})
	piano := mustAdd(t, tr, tracker.TaskParams{Title: "Piano", Category: "music", Unit: model.UnitMinutes, MinutesPerPunch: 20})
	trip := mustAdd(t, tr, tracker.TaskParams{Title: "Plan trip", Period: model.PeriodOnce})
	scrap := mustAdd(t, tr, tracker.TaskParams{Title: "Scrap", Category: "mind"})

	step := func() { clock.Advance(3 * time.Minute) }
	mustPunch(t, tr, read.ID)
	step()
	mustPunch(t, tr, read.ID)
	step()
	mustPunch(t, tr, run.ID)
	step()
	res, err := tr.PunchIn(piano.ID, tracker.PunchOptions{Minutes: 45})
	if err != nil {
		t.Fatalf("PunchIn: %v", err)
	}
	if err := tr.CorrectPunchMinutes(res.RecordID, 35); err != nil {
		t.Fatalf("CorrectPunchMinutes: %v", err)
	}
	step()
	mustPunch(t, tr, scrap.ID)
	for _, done := range []bool{true, false, true} {
		if _, err := tr.ToggleDone(trip.ID, done); err != nil {
			t.Fatalf("ToggleDone(%v): %v", done, err)
		}
	}
	if err := tr.DeleteTodo(scrap.ID); err != nil {
		t.Fatalf("DeleteTodo: %v", err)
	}

	// Next day: rollover, generation, the finished goal retires and more
	// punches.
	clock.Set(day(5, 8, 0))
	tr.Materialize()
	for _, td := range tr.Todos() {
		if td.Period == model.PeriodOnce {
			continue
		}
		step()
		mustPunch(t, tr, td.ID)
	}
	if _, err := tr.ApplyEdit(run.ID, tracker.TaskParams{
		Title: "Run", Category: "cardio", Period: model.PeriodWeekly, MinFrequency: 2,
	}); err != nil {
		t.Fatalf("ApplyEdit: %v", err)
	}
	if _, ok := tr.TodoByID(trip.ID); ok {
		t.Error("finished goal still live on the next day")
	}

	clock.Set(day(6, 8, 0))
	tr.Materialize()

	incremental := tr.DayStats()
	rebuilt := tr.RebuildDayStats()
	if !reflect.DeepEqual(incremental, rebuilt) {
		for k := range rebuilt {
			if !reflect.DeepEqual(incremental[k], rebuilt[k]) {
				t.Errorf("%s:\nincremental %+v\nrebuilt     %+v", k, incremental[k], rebuilt[k])
			}
		}
		t.FailNow()
	}

	again := tr.RebuildDayStats()
	if !reflect.DeepEqual(rebuilt, again) {
		t.Error("rebuild is not idempotent")
	}
}

func TestRebuildRepairsDrift(t *testing.T) {
	tr, _ := newTracker(t, day(5, 12, 0))
	tr.Restore(model.Snapshot{
		Templates: []model.Template{{
			ID: "tpl", Title: "Piano", Category: "music", Period: model.PeriodDaily,
			MinFrequency: 1, Unit: model.UnitMinutes, MinutesPerPunch: 25,
		}},
		Todos: []model.Todo{{
			ID: "t1", TemplateID: "tpl", Title: "Piano", Category: "music",
			Period: model.PeriodDaily, MinFrequency: 1, Unit: model.UnitMinutes,
			PunchIns: 2, Done: true, CreatedAt: day(5, 7, 0), DayKey: "2024-03-05",
		}},
		PunchRecords: []model.PunchRecord{
			{ID: "p1", TodoID: "t1", TodoTitle: "Piano", Category: "music", DayKey: "2024-03-05", Unit: model.UnitMinutes, Minutes: 10},
			// A legacy record without a unit resolves minutes through the template.
			{ID: "p2", TodoID: "t1", TodoTitle: "Piano", Category: "music", DayKey: "2024-03-05"},
		},
		DayStats: map[string]*model.DayStat{
			"2024-03-04": {CreatedCount: 3, PunchInsTotal: 9, MinutesTotal: 99},
			"2024-03-05": {PunchInsTotal: 7, MinutesTotal: 500, CategoryPunchIns: map[string]int{"ghost": 7}},
		},
	})

	stats := tr.RebuildDayStats()

	got := stats["2024-03-05"]
	if got.CreatedCount != 1 || got.CompletedCount != 1 {
		t.Errorf("created/completed = %d/%d, want 1/1", got.CreatedCount, got.CompletedCount)
	}
	if got.PunchInsTotal != 2 || got.MinutesTotal != 35 {
		t.Errorf("punches/minutes = %d/%d, want 2/35", got.PunchInsTotal, got.MinutesTotal)
	}
	if !reflect.DeepEqual(got.CategoryPunchIns, map[string]int{"music": 2}) {
		t.Errorf("category punches = %+v", got.CategoryPunchIns)
	}

	// Days before the oldest retained record keep their history.
	if old := stats["2024-03-04"]; old.CreatedCount != 3 || old.PunchInsTotal != 9 || old.MinutesTotal != 99 {
		t.Errorf("pre-ledger day = %+v", old)
	}
}

func TestRebuildWithEmptyLedgerClearsPunches(t *testing.T) {
	tr, _ := newTracker(t, day(5, 12, 0))
	tr.Restore(model.Snapshot{
		DayStats: map[string]*model.DayStat{
			"2024-03-04": {CreatedCount: 2, PunchInsTotal: 4, MinutesTotal: 30},
		},
	})
	got := tr.RebuildDayStats()["2024-03-04"]
	if got.CreatedCount != 2 || got.PunchInsTotal != 0 || got.MinutesTotal != 0 {
		t.Errorf("day stat = %+v", got)
	}
}

func TestCurrentStreak(t *testing.T) {
	punched := func(days ...string) map[string]*model.DayStat {
		m := make(map[string]*model.DayStat)
		for _, d := range days {
			st := model.NewDayStat()
			st.PunchInsTotal = 1
			m[d] = st
		}
		return m
	}

	tests := []struct {
		name  string
		stats map[string]*model.DayStat
		want  int
	}{
		{"three days ending today", punched("2024-03-10", "2024-03-09", "2024-03-08", "2024-03-06"), 3},
		{"run ending yesterday", punched("2024-03-09", "2024-03-08"), 2},
		{"gap before yesterday", punched("2024-03-08", "2024-03-07"), 0},
		{"nothing", nil, 0},
		{"across month boundary", punched("2024-03-10", "2024-03-09", "2024-03-08", "2024-03-07",
			"2024-03-06", "2024-03-05", "2024-03-04", "2024-03-03", "2024-03-02", "2024-03-01", "2024-02-29"), 11},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, _ := newTracker(t, day(10, 18, 0))
			tr.Restore(model.Snapshot{DayStats: tt.stats})
			if got := tr.CurrentStreak(); got != tt.want {
				t.Errorf("CurrentStreak = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCurrentStreakIgnoresZeroDays(t *testing.T) {
	tr, _ := newTracker(t, day(10, 18, 0))
	tr.Restore(model.Snapshot{DayStats: map[string]*model.DayStat{
		"2024-03-10": {PunchInsTotal: 2},
		"2024-03-09": {PunchInsTotal: 1},
		"2024-03-08": {PunchInsTotal: 4},
		"2024-03-07": {CreatedCount: 5},
		"2024-03-06": {PunchInsTotal: 1},
	}})
	if got := tr.CurrentStreak(); got != 3 {
		t.Errorf("CurrentStreak = %d, want 3", got)
	}
}

func TestMaxStreak(t *testing.T) {
	tr, _ := newTracker(t, day(30, 18, 0))
	stats := map[string]*model.DayStat{}
	for _, d := range []string{
		"2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01", "2024-03-02",
		"2024-03-10", "2024-03-11", "2024-03-12",
	} {
		stats[d] = &model.DayStat{PunchInsTotal: 1}
	}
	stats["2024-03-05"] = &model.DayStat{CreatedCount: 1}
	tr.Restore(model.Snapshot{DayStats: stats})

	if got := tr.MaxStreak(); got != 5 {
		t.Errorf("MaxStreak = %d, want 5", got)
	}
	if got := tr.CurrentStreak(); got != 0 {
		t.Errorf("CurrentStreak = %d, want 0", got)
	}
}

func TestActivityFeed(t *testing.T) {
	tr, _ := newTracker(t, day(10, 18, 0))
	tr.Restore(model.Snapshot{DayStats: map[string]*model.DayStat{
		"2024-01-01": {PunchInsTotal: 1},
		"2024-03-10": {PunchInsTotal: 7, MinutesTotal: 60},
		"2023-12-31": {PunchInsTotal: 20},
	}})

	days := tr.Activity(2024)
	if len(days) != 366 {
		t.Fatalf("got %d days, want 366", len(days))
	}
	if days[0].DayKey != "2024-01-01" || days[0].Level != 1 {
		t.Errorf("first day = %+v", days[0])
	}
	march10 := days[31+29+9]
	if march10.DayKey != "2024-03-10" || march10.Level != 3 || march10.Minutes != 60 {
		t.Errorf("2024-03-10 = %+v", march10)
	}

	for punches, want := range map[int]int{0: 0, 1: 1, 2: 1, 3: 2, 5: 2, 6: 3, 9: 3, 10: 4, 50: 4} {
		if got := tracker.HeatLevel(punches); got != want {
			t.Errorf("HeatLevel(%d) = %d, want %d", punches, got, want)
		}
	}
}

func TestCategoryTotals(t *testing.T) {
	tr, _ := newTracker(t, day(10, 18, 0))
	tr.Restore(model.Snapshot{DayStats: map[string]*model.DayStat{
		"2024-03-08": {CategoryPunchIns: map[string]int{"sport": 2}, CategoryMinutes: map[string]int{"sport": 30}},
		"2024-03-09": {CategoryPunchIns: map[string]int{"sport": 1, "mind": 4}, CategoryCreated: map[string]int{"mind": 1}},
		"2024-03-10": {CategoryPunchIns: map[string]int{"sport": 5}},
	}})

	got := tr.CategoryTotals("2024-03-08", "2024-03-09")
	want := map[string]tracker.CategoryTotal{
		"sport": {Punches: 3, Minutes: 30},
		"mind":  {Punches: 4, Created: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CategoryTotals = %+v, want %+v", got, want)
	}
	if all := tr.CategoryTotals("", ""); all["sport"].Punches != 8 {
		t.Errorf("open range sport punches = %d, want 8", all["sport"].Punches)
	}
}

func TestTodayTotals(t *testing.T) {
	tr, _ := newTracker(t, day(4, 9, 0))
	td := mustAdd(t, tr, tracker.TaskParams{Title: "Read"})
	mustPunch(t, tr, td.ID)

	got := tr.TodayTotals()
	if got.CreatedCount != 1 || got.PunchInsTotal != 1 || got.CompletedCount != 1 {
		t.Errorf("TodayTotals = %+v", got)
	}
}
