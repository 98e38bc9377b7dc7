package stats_test

import (
	"testing"
	"time"

	"github.com/nhle/punchcard/internal/model"
	"github.com/nhle/punchcard/internal/tracker"
	"github.com/nhle/punchcard/internal/ui/stats"
	"github.com/nhle/punchcard/tests/testutil"
)

func TestCollect(t *testing.T) {
	clock := testutil.NewClock(time.Date(2024, time.March, 6, 9, 0, 0, 0, time.UTC))
	tr := tracker.New(tracker.Options{Clock: clock, IDs: &testutil.SeqIDs{}, Location: time.UTC})
	tr.Restore(model.Snapshot{DayStats: map[string]*model.DayStat{
		"2024-03-01": {PunchInsTotal: 9, CategoryPunchIns: map[string]int{"old": 9}},
		"2024-03-04": {PunchInsTotal: 2, CategoryPunchIns: map[string]int{"mind": 2}},
		"2024-03-05": {PunchInsTotal: 3, MinutesTotal: 40, CategoryPunchIns: map[string]int{"sport": 3}},
	}})

	td, err := tr.AddTodo(tracker.TaskParams{Title: "Read", Category: "mind", MinFrequency: 2})
	if err != nil {
		t.Fatalf("AddTodo: %v", err)
	}
	if _, err := tr.PunchIn(td.ID, tracker.PunchOptions{Note: "chapter 3"}); err != nil {
		t.Fatalf("PunchIn: %v", err)
	}

	s := stats.Collect(tr, &td, 3)

	if len(s.Recent) != 3 || s.Recent[0].DayKey != "2024-03-04" || s.Recent[2].DayKey != "2024-03-06" {
		t.Fatalf("recent = %+v", s.Recent)
	}
	if s.Recent[1].Minutes != 40 || s.Recent[1].Level != 2 {
		t.Errorf("2024-03-05 = %+v", s.Recent[1])
	}
	if s.CurrentStreak != 3 || s.Today.PunchInsTotal != 1 {
		t.Errorf("streak %d, today %+v", s.CurrentStreak, s.Today)
	}

	if len(s.Categories) != 2 || s.Categories[0].Name != "mind" || s.Categories[0].Punches != 3 {
		t.Errorf("categories = %+v", s.Categories)
	}
	for _, c := range s.Categories {
		if c.Name == "old" {
			t.Error("category outside the range included")
		}
	}

	if s.Selected == nil || len(s.Punches) != 1 || s.Punches[0].Note != "chapter 3" {
		t.Errorf("selected punches = %+v", s.Punches)
	}
}
