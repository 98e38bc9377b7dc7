package model

// Key is a logical key in the persistence store.
type Key string

const (
	KeyTodos           Key = "todos"
	KeyTemplates       Key = "templates"
	KeyDayStats        Key = "day-statistics"
	KeyHistory         Key = "history"
	KeyPunchRecords    Key = "punch-records"
	KeyAbandonedGoals  Key = "abandoned-goals"
	KeyArchivedHistory Key = "archived-history"
	KeyUIConfig        Key = "ui-configuration"
	KeyGoalProgress    Key = "goal-progress"
)

// AllKeys lists every logical key in load order.
var AllKeys = []Key{
	KeyTodos,
	KeyTemplates,
	KeyDayStats,
	KeyHistory,
	KeyPunchRecords,
	KeyAbandonedGoals,
	KeyArchivedHistory,
	KeyUIConfig,
	KeyGoalProgress,
}

// Snapshot is a self-contained copy of the whole tracker state.
type Snapshot struct {
	Todos           []Todo
	Templates       []Template
	DayStats        map[string]*DayStat
	History         []HistoryItem
	PunchRecords    []PunchRecord
	AbandonedGoals  []AbandonedGoal
	ArchivedHistory []ArchivedTodo
	GoalProgress    []GoalProgress
	UIConfig        UIConfig
}
