package model

import "time"

// DayStat holds the counters for one calendar day.
type DayStat struct {
	CreatedCount      int            `json:"created_count"`
	CompletedCount    int            `json:"completed_count"`
	PunchInsTotal     int            `json:"punch_ins_total"`
	MinutesTotal      int            `json:"minutes_total"`
	CategoryCreated   map[string]int `json:"category_created"`
	CategoryCompleted map[string]int `json:"category_completed"`
	CategoryPunchIns  map[string]int `json:"category_punch_ins"`
	CategoryMinutes   map[string]int `json:"category_minutes"`
}

// NewDayStat returns an empty DayStat with initialized breakdowns.
func NewDayStat() *DayStat {
	return &DayStat{
		CategoryCreated:   map[string]int{},
		CategoryCompleted: map[string]int{},
		CategoryPunchIns:  map[string]int{},
		CategoryMinutes:   map[string]int{},
	}
}

// Clone returns a deep copy.
func (s *DayStat) Clone() *DayStat {
	c := *s
	c.CategoryCreated = cloneCounts(s.CategoryCreated)
	c.CategoryCompleted = cloneCounts(s.CategoryCompleted)
	c.CategoryPunchIns = cloneCounts(s.CategoryPunchIns)
	c.CategoryMinutes = cloneCounts(s.CategoryMinutes)
	return &c
}

// IsZero reports whether every counter and breakdown is empty.
func (s *DayStat) IsZero() bool {
	return s.CreatedCount == 0 && s.CompletedCount == 0 &&
		s.PunchInsTotal == 0 && s.MinutesTotal == 0 &&
		len(s.CategoryCreated) == 0 && len(s.CategoryCompleted) == 0 &&
		len(s.CategoryPunchIns) == 0 && len(s.CategoryMinutes) == 0
}

func cloneCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// PunchRecord is an immutable ledger entry for one punch.
type PunchRecord struct {
	ID        string    `json:"id"`
	TodoID    string    `json:"todo_id"`
	TodoTitle string    `json:"todo_title"`
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
	DayKey    string    `json:"day_key"`
	Unit      Unit      `json:"unit,omitempty"`
	Minutes   int       `json:"minutes,omitempty"`
	Note      string    `json:"note,omitempty"`
}
