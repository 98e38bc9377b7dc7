// Package tracker is the recurring-task engine: it materializes live
// instances from templates, records punches, keeps per-day statistics and
// derives streaks.
package tracker

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/nhle/punchcard/internal/calendar"
	"github.com/nhle/punchcard/internal/model"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time { return f() }

// IDGenerator mints opaque identifiers.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator produces random UUIDs.
type UUIDGenerator struct{}

// NewID returns a new random UUID string.
func (UUIDGenerator) NewID() string { return uuid.New().String() }

// Options configures a Tracker. Zero values fall back to defaults.
type Options struct {
	Clock     Clock
	IDs       IDGenerator
	Logger    hclog.Logger
	Location  *time.Location
	WeekStart time.Weekday

	DebounceWindow         time.Duration
	DefaultMinutesPerPunch int
	MaxPunchRecords        int
	HistoryLimit           int
	RolloverPolicy         string
	GoalProgressNotes      bool
}

// OptionsFromConfig converts the tracker section of the app config.
func OptionsFromConfig(cfg model.TrackerConfig) Options {
	return Options{
		WeekStart:              calendar.ParseWeekStart(cfg.WeekStart),
		DebounceWindow:         time.Duration(cfg.DebounceSeconds) * time.Second,
		DefaultMinutesPerPunch: cfg.DefaultMinutesPerPunch,
		MaxPunchRecords:        cfg.MaxPunchRecords,
		HistoryLimit:           cfg.HistoryLimit,
		RolloverPolicy:         cfg.RolloverPolicy,
		GoalProgressNotes:      cfg.GoalProgressNotes,
	}
}

func (o Options) withDefaults() Options {
	if o.Clock == nil {
		o.Clock = ClockFunc(time.Now)
	}
	if o.IDs == nil {
		o.IDs = UUIDGenerator{}
	}
	if o.Logger == nil {
		o.Logger = hclog.NewNullLogger()
	}
	if o.DebounceWindow < 0 {
		o.DebounceWindow = 0
	}
	if o.DefaultMinutesPerPunch <= 0 {
		o.DefaultMinutesPerPunch = model.DefaultMinutesPerPunch
	}
	if o.MaxPunchRecords <= 0 {
		o.MaxPunchRecords = model.MaxPunchRecords
	}
	if o.HistoryLimit <= 0 {
		o.HistoryLimit = model.HistoryLimit
	}
	if o.RolloverPolicy != model.RolloverArchiveOnMiss {
		o.RolloverPolicy = model.RolloverRollForward
	}
	return o
}

// Change is published to observers after every state mutation.
type Change struct {
	// Seq increases with every change. Observers can be called from
	// several goroutines at once, so deliveries may arrive out of order;
	// a Change with a lower Seq than one already seen is stale.
	Seq uint64

	// Keys lists the logical store keys whose content changed.
	Keys []model.Key

	// Snapshot is a deep copy of the state after the mutation.
	Snapshot model.Snapshot
}

// Observer receives change notifications. It must not call back into the
// tracker synchronously with a mutating operation.
type Observer func(Change)

// Tracker owns the in-memory state graph. All methods are safe to call from
// multiple goroutines; mutations are serialized.
type Tracker struct {
	mu   sync.Mutex
	opts Options
	cal  calendar.Calendar
	log  hclog.Logger

	todos        []model.Todo
	templates    []model.Template
	dayStats     map[string]*model.DayStat
	history      []model.HistoryItem
	punches      []model.PunchRecord
	abandoned    []model.AbandonedGoal
	archived     []model.ArchivedTodo
	goalProgress []model.GoalProgress
	ui           model.UIConfig

	observers []Observer
	dirty     map[model.Key]bool
	seq       uint64
}

// New creates an empty tracker.
func New(opts Options) *Tracker {
	opts = opts.withDefaults()
	return &Tracker{
		opts:     opts,
		cal:      calendar.New(opts.Location, opts.WeekStart),
		log:      opts.Logger.Named("tracker"),
		dayStats: make(map[string]*model.DayStat),
		ui:       model.DefaultUIConfig(),
		dirty:    make(map[model.Key]bool),
	}
}

// Calendar returns the calendar the tracker computes day keys with.
func (t *Tracker) Calendar() calendar.Calendar {
	return t.cal
}

// Subscribe registers an observer for change notifications.
func (t *Tracker) Subscribe(o Observer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observers = append(t.observers, o)
}

// Restore replaces the whole state with s. No notification is emitted since
// the state came from the store.
func (t *Tracker) Restore(s model.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s = cloneSnapshot(s)
	t.todos = s.Todos
	t.templates = s.Templates
	t.dayStats = s.DayStats
	t.history = s.History
	t.punches = s.PunchRecords
	t.abandoned = s.AbandonedGoals
	t.archived = s.ArchivedHistory
	t.goalProgress = s.GoalProgress
	t.ui = s.UIConfig
	if t.ui == (model.UIConfig{}) {
		t.ui = model.DefaultUIConfig()
	}
	t.dirty = make(map[model.Key]bool)
}

// Snapshot returns a deep copy of the current state.
func (t *Tracker) Snapshot() model.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Tracker) snapshotLocked() model.Snapshot {
	return cloneSnapshot(model.Snapshot{
		Todos:           t.todos,
		Templates:       t.templates,
		DayStats:        t.dayStats,
		History:         t.history,
		PunchRecords:    t.punches,
		AbandonedGoals:  t.abandoned,
		ArchivedHistory: t.archived,
		GoalProgress:    t.goalProgress,
		UIConfig:        t.ui,
	})
}

// UIConfig returns the stored presentation settings.
func (t *Tracker) UIConfig() model.UIConfig {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ui
}

// SetUIConfig replaces the stored presentation settings.
func (t *Tracker) SetUIConfig(cfg model.UIConfig) {
	t.mutate(func() error {
		t.ui = cfg
		t.touch(model.KeyUIConfig)
		return nil
	})
}

// mutate runs fn under the lock and notifies observers afterwards with the
// keys fn touched.
func (t *Tracker) mutate(fn func() error) error {
	t.mu.Lock()
	err := fn()
	change, ok := t.takeChangeLocked()
	observers := t.observers
	t.mu.Unlock()

	if ok {
		for _, o := range observers {
			o(change)
		}
	}
	return err
}

func (t *Tracker) touch(keys ...model.Key) {
	for _, k := range keys {
		t.dirty[k] = true
	}
}

func (t *Tracker) takeChangeLocked() (Change, bool) {
	if len(t.dirty) == 0 {
		return Change{}, false
	}
	var keys []model.Key
	for _, k := range model.AllKeys {
		if t.dirty[k] {
			keys = append(keys, k)
		}
	}
	t.dirty = make(map[model.Key]bool)
	if len(t.observers) == 0 {
		return Change{}, false
	}
	t.seq++
	return Change{Seq: t.seq, Keys: keys, Snapshot: t.snapshotLocked()}, true
}

func (t *Tracker) now() time.Time {
	return t.opts.Clock.Now()
}

func (t *Tracker) todayKey() string {
	return t.cal.DayKey(t.now())
}

// Today returns the day key of the tracker's current time.
func (t *Tracker) Today() string {
	return t.todayKey()
}

func (t *Tracker) todoIndexLocked(id string) int {
	for i := range t.todos {
		if t.todos[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneSnapshot(s model.Snapshot) model.Snapshot {
	out := model.Snapshot{
		Todos:           append([]model.Todo(nil), s.Todos...),
		Templates:       append([]model.Template(nil), s.Templates...),
		DayStats:        make(map[string]*model.DayStat, len(s.DayStats)),
		History:         append([]model.HistoryItem(nil), s.History...),
		PunchRecords:    append([]model.PunchRecord(nil), s.PunchRecords...),
		ArchivedHistory: append([]model.ArchivedTodo(nil), s.ArchivedHistory...),
		GoalProgress:    append([]model.GoalProgress(nil), s.GoalProgress...),
		UIConfig:        s.UIConfig,
	}
	for k, st := range s.DayStats {
		if st != nil {
			out.DayStats[k] = st.Clone()
		}
	}
	if len(s.AbandonedGoals) > 0 {
		out.AbandonedGoals = make([]model.AbandonedGoal, len(s.AbandonedGoals))
		for i, g := range s.AbandonedGoals {
			g.Progress = append([]model.GoalProgress(nil), g.Progress...)
			out.AbandonedGoals[i] = g
		}
	}
	return out
}
