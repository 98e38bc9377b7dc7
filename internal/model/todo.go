package model

import "time"

// Template is a recurring task definition independent of any day's instance.
type Template struct {
	ID              string     `json:"id" toml:"id"`
	Title           string     `json:"title" toml:"title"`
	Category        string     `json:"category" toml:"category"`
	Period          Period     `json:"period" toml:"period"`
	MinFrequency    int        `json:"min_frequency" toml:"min_frequency"`
	Unit            Unit       `json:"unit" toml:"unit"`
	MinutesPerPunch int        `json:"minutes_per_punch,omitempty" toml:"minutes_per_punch,omitempty"`
	Description     string     `json:"description,omitempty" toml:"description,omitempty"`
	Deadline        *time.Time `json:"deadline,omitempty" toml:"deadline,omitempty"`
	CreatedAt       time.Time  `json:"created_at" toml:"created_at"`
	Archived        bool       `json:"archived,omitempty" toml:"archived,omitempty"`
	ArchivedAt      *time.Time `json:"archived_at,omitempty" toml:"archived_at,omitempty"`
}

// Matches reports whether the template has the given natural key.
func (t Template) Matches(title, category string, period Period) bool {
	return t.Title == title && t.Category == category && t.Period == period
}

// Todo is a concrete, dated instance of a template or an ad-hoc task.
type Todo struct {
	ID              string     `json:"id"`
	TemplateID      string     `json:"template_id,omitempty"`
	Title           string     `json:"title"`
	Category        string     `json:"category"`
	Period          Period     `json:"period"`
	MinFrequency    int        `json:"min_frequency"`
	Unit            Unit       `json:"unit"`
	MinutesPerPunch int        `json:"minutes_per_punch,omitempty"`
	PunchIns        int        `json:"punch_ins"`
	Done            bool       `json:"done"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	DayKey          string     `json:"day_key"`
	Description     string     `json:"description,omitempty"`
	Deadline        *time.Time `json:"deadline,omitempty"`
}

// MinutesPerPunchOrDefault returns the minutes credited per punch, or zero
// for count-unit instances.
func (t Todo) MinutesPerPunchOrDefault() int {
	if t.Unit != UnitMinutes {
		return 0
	}
	if t.MinutesPerPunch > 0 {
		return t.MinutesPerPunch
	}
	return DefaultMinutesPerPunch
}

// ArchiveReason explains why an instance left the live list.
type ArchiveReason string

const (
	ArchiveReasonArchived  ArchiveReason = "archived"
	ArchiveReasonMissed    ArchiveReason = "missed"
	ArchiveReasonDeleted   ArchiveReason = "deleted"
	ArchiveReasonCompleted ArchiveReason = "completed"
)

// ArchivedTodo is the snapshot of an instance removed from the live list.
type ArchivedTodo struct {
	Todo       Todo          `json:"todo"`
	ArchivedAt time.Time     `json:"archived_at"`
	Reason     ArchiveReason `json:"reason"`
}

// GoalProgress is a free-text progress entry against a once-instance.
type GoalProgress struct {
	ID        string    `json:"id"`
	TodoID    string    `json:"todo_id"`
	Timestamp time.Time `json:"timestamp"`
	DayKey    string    `json:"day_key"`
	Note      string    `json:"note"`
}

// AbandonedGoal records a once-instance the user gave up on.
type AbandonedGoal struct {
	Todo        Todo           `json:"todo"`
	AbandonedAt time.Time      `json:"abandoned_at"`
	Reason      string         `json:"reason,omitempty"`
	Progress    []GoalProgress `json:"progress,omitempty"`
}

// HistoryItem is a recently used task configuration.
type HistoryItem struct {
	Title           string `json:"title"`
	Category        string `json:"category"`
	Period          Period `json:"period"`
	MinFrequency    int    `json:"min_frequency"`
	Unit            Unit   `json:"unit"`
	MinutesPerPunch int    `json:"minutes_per_punch,omitempty"`
	Description     string `json:"description,omitempty"`
}

// SameKey reports whether two history items share title, category and period.
func (h HistoryItem) SameKey(o HistoryItem) bool {
	return h.Title == o.Title && h.Category == o.Category && h.Period == o.Period
}

// UIConfig holds presentation settings the core stores but never interprets.
type UIConfig struct {
	Theme          string `json:"theme"`
	ShowCompleted  bool   `json:"show_completed"`
	StatsRangeDays int    `json:"stats_range_days"`
}

// DefaultUIConfig returns the presentation defaults.
func DefaultUIConfig() UIConfig {
	return UIConfig{Theme: "default", ShowCompleted: true, StatsRangeDays: 7}
}
