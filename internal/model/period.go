package model

// Period is the recurrence cycle of a template or instance.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
	PeriodOnce    Period = "once"
)

// Valid reports whether p is one of the known periods.
func (p Period) Valid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly, PeriodOnce:
		return true
	}
	return false
}

// Recurring reports whether p describes a cyclic period.
func (p Period) Recurring() bool {
	return p.Valid() && p != PeriodOnce
}

// Unit is how punches on an instance are measured.
type Unit string

const (
	UnitCount   Unit = "count"
	UnitMinutes Unit = "minutes"
)

// Valid reports whether u is one of the known units.
func (u Unit) Valid() bool {
	return u == UnitCount || u == UnitMinutes
}

// Defaults applied when a field is missing or out of range.
const (
	DefaultCategory        = "uncategorized"
	DefaultMinutesPerPunch = 15
	DefaultMinFrequency    = 1
	HistoryLimit           = 10
	MaxPunchRecords        = 5000
)

// CategoryOrDefault returns c, or DefaultCategory when c is blank.
func CategoryOrDefault(c string) string {
	if c == "" {
		return DefaultCategory
	}
	return c
}
