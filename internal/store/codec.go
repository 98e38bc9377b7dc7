package store

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/nhle/punchcard/internal/calendar"
	"github.com/nhle/punchcard/internal/model"
)

// Loader reads and writes tracker snapshots through a KV. Stored blobs are
// normalized field by field on load: a missing or mistyped field falls back
// to its default and an unparseable blob loads as empty.
type Loader struct {
	kv  KV
	cal calendar.Calendar
	log hclog.Logger
	now func() time.Time
}

// NewLoader returns a Loader. Day keys missing from stored records are
// derived with cal.
func NewLoader(kv KV, cal calendar.Calendar, logger hclog.Logger) *Loader {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Loader{kv: kv, cal: cal, log: logger.Named("store"), now: time.Now}
}

// Load reads every logical key. Only KV failures are returned.
func (l *Loader) Load(ctx context.Context) (model.Snapshot, error) {
	snap := model.Snapshot{
		DayStats: map[string]*model.DayStat{},
		UIConfig: model.DefaultUIConfig(),
	}

	for _, key := range model.AllKeys {
		raw, ok, err := l.kv.Get(ctx, string(key))
		if err != nil {
			return model.Snapshot{}, fmt.Errorf("loading %s: %w", key, err)
		}
		if !ok || len(raw) == 0 {
			continue
		}

		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			l.log.Warn("discarding unparseable blob", "key", key, "error", err)
			continue
		}
		l.decodeInto(&snap, key, v)
	}

	l.log.Debug("snapshot loaded",
		"todos", len(snap.Todos),
		"templates", len(snap.Templates),
		"days", len(snap.DayStats),
		"punch_records", len(snap.PunchRecords))
	return snap, nil
}

func (l *Loader) decodeInto(snap *model.Snapshot, key model.Key, v any) {
	switch key {
	case model.KeyTodos:
		snap.Todos = decodeList(v, l.todo)
	case model.KeyTemplates:
		snap.Templates = decodeList(v, l.template)
	case model.KeyDayStats:
		if m, ok := v.(map[string]any); ok {
			for day, raw := range m {
				if _, err := l.cal.ParseDayKey(day); err != nil {
					continue
				}
				snap.DayStats[day] = dayStat(obj(raw))
			}
		}
	case model.KeyHistory:
		snap.History = decodeHistory(v)
	case model.KeyPunchRecords:
		snap.PunchRecords = decodeList(v, l.punchRecord)
	case model.KeyAbandonedGoals:
		snap.AbandonedGoals = decodeList(v, l.abandonedGoal)
	case model.KeyArchivedHistory:
		snap.ArchivedHistory = decodeList(v, l.archivedTodo)
	case model.KeyGoalProgress:
		snap.GoalProgress = decodeList(v, l.goalProgress)
	case model.KeyUIConfig:
		snap.UIConfig = uiConfig(obj(v))
	}
}

// Encode serializes the part of s stored under key.
func Encode(s model.Snapshot, key model.Key) ([]byte, error) {
	var v any
	switch key {
	case model.KeyTodos:
		v = nonNil(s.Todos)
	case model.KeyTemplates:
		v = nonNil(s.Templates)
	case model.KeyDayStats:
		days := s.DayStats
		if days == nil {
			days = map[string]*model.DayStat{}
		}
		v = days
	case model.KeyHistory:
		v = nonNil(s.History)
	case model.KeyPunchRecords:
		v = nonNil(s.PunchRecords)
	case model.KeyAbandonedGoals:
		v = nonNil(s.AbandonedGoals)
	case model.KeyArchivedHistory:
		v = nonNil(s.ArchivedHistory)
	case model.KeyGoalProgress:
		v = nonNil(s.GoalProgress)
	case model.KeyUIConfig:
		v = s.UIConfig
	default:
		return nil, fmt.Errorf("encoding unknown key %q", key)
	}

	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", key, err)
	}
	return b, nil
}

// EncodeKeys serializes the listed keys of s.
func EncodeKeys(s model.Snapshot, keys []model.Key) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	for _, k := range keys {
		b, err := Encode(s, k)
		if err != nil {
			return nil, err
		}
		out[string(k)] = b
	}
	return out, nil
}

// Save writes the listed keys of s, atomically when the KV supports it.
func (l *Loader) Save(ctx context.Context, s model.Snapshot, keys []model.Key) error {
	blobs, err := EncodeKeys(s, keys)
	if err != nil {
		return err
	}
	return WriteBlobs(ctx, l.kv, blobs)
}

// WriteBlobs stores pre-encoded blobs.
func WriteBlobs(ctx context.Context, kv KV, blobs map[string][]byte) error {
	if b, ok := kv.(BatchKV); ok {
		return b.SetMany(ctx, blobs)
	}
	for k, v := range blobs {
		if err := kv.Set(ctx, k, v); err != nil {
			return err
		}
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// decodeList maps every object element of v with fn, skipping the rest.
func decodeList[T any](v any, fn func(map[string]any) (T, bool)) []T {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []T
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		if t, ok := fn(m); ok {
			out = append(out, t)
		}
	}
	return out
}

func (l *Loader) todo(m map[string]any) (model.Todo, bool) {
	title := strings.TrimSpace(str(m, "title"))
	if title == "" {
		return model.Todo{}, false
	}
	createdAt := timeOr(m, l.now(), "created_at", "createdAt")
	td := model.Todo{
		ID:              strOr(m, uuid.New().String(), "id"),
		TemplateID:      str(m, "template_id", "templateId"),
		Title:           title,
		Category:        model.CategoryOrDefault(str(m, "category")),
		Period:          period(m),
		MinFrequency:    max(intOr(m, model.DefaultMinFrequency, "min_frequency", "minFrequency"), model.DefaultMinFrequency),
		Unit:            unit(m),
		MinutesPerPunch: intOr(m, 0, "minutes_per_punch", "minutesPerTime"),
		PunchIns:        max(intOr(m, 0, "punch_ins", "punchIns"), 0),
		Done:            boolean(m, "done"),
		CompletedAt:     optTime(m, "completed_at", "completedAt"),
		CreatedAt:       createdAt,
		DayKey:          l.dayKey(m, createdAt),
		Description:     str(m, "description"),
		Deadline:        optTime(m, "deadline"),
	}
	td.MinutesPerPunch = minutesFor(td.Unit, td.MinutesPerPunch)
	if td.Period == model.PeriodOnce {
		td.MinFrequency = model.DefaultMinFrequency
		td.TemplateID = ""
	}
	if td.Done && td.Period.Recurring() && td.PunchIns < td.MinFrequency {
		td.Done = false
		td.CompletedAt = nil
	}
	return td, true
}

func (l *Loader) template(m map[string]any) (model.Template, bool) {
	title := strings.TrimSpace(str(m, "title"))
	p := period(m)
	if title == "" || !p.Recurring() {
		return model.Template{}, false
	}
	u := unit(m)
	return model.Template{
		ID:              strOr(m, uuid.New().String(), "id"),
		Title:           title,
		Category:        model.CategoryOrDefault(str(m, "category")),
		Period:          p,
		MinFrequency:    max(intOr(m, model.DefaultMinFrequency, "min_frequency", "minFrequency"), model.DefaultMinFrequency),
		Unit:            u,
		MinutesPerPunch: minutesFor(u, intOr(m, 0, "minutes_per_punch", "minutesPerTime")),
		Description:     str(m, "description"),
		Deadline:        optTime(m, "deadline"),
		CreatedAt:       timeOr(m, l.now(), "created_at", "createdAt"),
		Archived:        boolean(m, "archived"),
		ArchivedAt:      optTime(m, "archived_at", "archivedAt"),
	}, true
}

func (l *Loader) punchRecord(m map[string]any) (model.PunchRecord, bool) {
	ts := timeOr(m, l.now(), "timestamp")
	r := model.PunchRecord{
		ID:        strOr(m, uuid.New().String(), "id"),
		TodoID:    str(m, "todo_id", "todoId"),
		TodoTitle: strOr(m, "unknown task", "todo_title", "todoTitle"),
		Category:  model.CategoryOrDefault(str(m, "category")),
		Timestamp: ts,
		DayKey:    l.dayKey(m, ts),
		Minutes:   max(intOr(m, 0, "minutes", "minutesPerTime"), 0),
		Note:      str(m, "note"),
	}
	if u := str(m, "unit"); u != "" {
		r.Unit = unitValue(u)
	}
	return r, true
}

func (l *Loader) goalProgress(m map[string]any) (model.GoalProgress, bool) {
	note := strings.TrimSpace(str(m, "note"))
	if note == "" {
		return model.GoalProgress{}, false
	}
	ts := timeOr(m, l.now(), "timestamp")
	return model.GoalProgress{
		ID:        strOr(m, uuid.New().String(), "id"),
		TodoID:    str(m, "todo_id", "todoId"),
		Timestamp: ts,
		DayKey:    l.dayKey(m, ts),
		Note:      note,
	}, true
}

func (l *Loader) archivedTodo(m map[string]any) (model.ArchivedTodo, bool) {
	td, ok := l.todo(obj(m["todo"]))
	if !ok {
		return model.ArchivedTodo{}, false
	}
	reason := model.ArchiveReason(str(m, "reason"))
	switch reason {
	case model.ArchiveReasonArchived, model.ArchiveReasonMissed, model.ArchiveReasonDeleted, model.ArchiveReasonCompleted:
	default:
		reason = model.ArchiveReasonArchived
	}
	return model.ArchivedTodo{
		Todo:       td,
		ArchivedAt: timeOr(m, td.CreatedAt, "archived_at", "archivedAt"),
		Reason:     reason,
	}, true
}

func (l *Loader) abandonedGoal(m map[string]any) (model.AbandonedGoal, bool) {
	td, ok := l.todo(obj(m["todo"]))
	if !ok {
		return model.AbandonedGoal{}, false
	}
	return model.AbandonedGoal{
		Todo:        td,
		AbandonedAt: timeOr(m, td.CreatedAt, "abandoned_at", "abandonedAt"),
		Reason:      str(m, "reason"),
		Progress:    decodeList(m["progress"], l.goalProgress),
	}, true
}

func dayStat(m map[string]any) *model.DayStat {
	st := model.NewDayStat()
	st.CreatedCount = max(intOr(m, 0, "created_count", "createdCount"), 0)
	st.CompletedCount = max(intOr(m, 0, "completed_count", "completedCount"), 0)
	st.PunchInsTotal = max(intOr(m, 0, "punch_ins_total", "punchInsTotal"), 0)
	st.MinutesTotal = max(intOr(m, 0, "minutes_total", "minutesTotal"), 0)
	st.CategoryCreated = counts(m, "category_created", "categoryCreated")
	st.CategoryCompleted = counts(m, "category_completed", "categoryCompleted")
	st.CategoryPunchIns = counts(m, "category_punch_ins", "categoryPunchIns")
	st.CategoryMinutes = counts(m, "category_minutes", "categoryMinutes")
	return st
}

// decodeHistory accepts full items and the legacy bare-title strings.
func decodeHistory(v any) []model.HistoryItem {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []model.HistoryItem
	for _, it := range items {
		var h model.HistoryItem
		switch x := it.(type) {
		case string:
			h = model.HistoryItem{Title: strings.TrimSpace(x), Period: model.PeriodDaily, Unit: model.UnitCount}
		case map[string]any:
			h = model.HistoryItem{
				Title:           strings.TrimSpace(str(x, "title")),
				Category:        str(x, "category"),
				Period:          period(x),
				MinFrequency:    intOr(x, 0, "min_frequency", "minFrequency"),
				Unit:            unit(x),
				MinutesPerPunch: intOr(x, 0, "minutes_per_punch", "minutesPerTime"),
				Description:     str(x, "description"),
			}
		default:
			continue
		}
		if h.Title == "" {
			continue
		}
		h.Category = model.CategoryOrDefault(h.Category)
		h.MinFrequency = max(h.MinFrequency, model.DefaultMinFrequency)
		h.MinutesPerPunch = minutesFor(h.Unit, h.MinutesPerPunch)
		out = append(out, h)
		if len(out) == model.HistoryLimit {
			break
		}
	}
	return out
}

func uiConfig(m map[string]any) model.UIConfig {
	def := model.DefaultUIConfig()
	cfg := model.UIConfig{
		Theme:          strOr(m, def.Theme, "theme"),
		ShowCompleted:  def.ShowCompleted,
		StatsRangeDays: intOr(m, def.StatsRangeDays, "stats_range_days", "statsRangeDays"),
	}
	if b, ok := first(m, "show_completed", "showCompleted").(bool); ok {
		cfg.ShowCompleted = b
	}
	if cfg.StatsRangeDays <= 0 {
		cfg.StatsRangeDays = def.StatsRangeDays
	}
	return cfg
}

func (l *Loader) dayKey(m map[string]any, fallback time.Time) string {
	key := str(m, "day_key", "dayKey")
	if _, err := l.cal.ParseDayKey(key); err == nil {
		return key
	}
	return l.cal.DayKey(fallback)
}

func period(m map[string]any) model.Period {
	p := model.Period(str(m, "period"))
	if !p.Valid() {
		return model.PeriodDaily
	}
	return p
}

func unit(m map[string]any) model.Unit {
	return unitValue(str(m, "unit"))
}

// unitValue maps stored unit names, including the legacy "times", to a Unit.
func unitValue(s string) model.Unit {
	if model.Unit(s) == model.UnitMinutes {
		return model.UnitMinutes
	}
	return model.UnitCount
}

func minutesFor(u model.Unit, minutes int) int {
	if u != model.UnitMinutes {
		return 0
	}
	if minutes <= 0 {
		return model.DefaultMinutesPerPunch
	}
	return minutes
}

func obj(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// first returns the value of the first present key.
func first(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func str(m map[string]any, keys ...string) string {
	s, _ := first(m, keys...).(string)
	return s
}

func strOr(m map[string]any, def string, keys ...string) string {
	if s := str(m, keys...); s != "" {
		return s
	}
	return def
}

func intOr(m map[string]any, def int, keys ...string) int {
	f, ok := first(m, keys...).(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return int(f)
}

func boolean(m map[string]any, keys ...string) bool {
	b, _ := first(m, keys...).(bool)
	return b
}

// parseTime accepts RFC 3339 strings and unix milliseconds.
func parseTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case string:
		t, err := time.Parse(time.RFC3339Nano, x)
		return t, err == nil
	case float64:
		if x <= 0 || math.IsNaN(x) || math.IsInf(x, 0) {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(x)), true
	}
	return time.Time{}, false
}

func timeOr(m map[string]any, def time.Time, keys ...string) time.Time {
	if t, ok := parseTime(first(m, keys...)); ok {
		return t
	}
	return def
}

func optTime(m map[string]any, keys ...string) *time.Time {
	if t, ok := parseTime(first(m, keys...)); ok {
		return &t
	}
	return nil
}

func counts(m map[string]any, keys ...string) map[string]int {
	out := map[string]int{}
	src, ok := first(m, keys...).(map[string]any)
	if !ok {
		return out
	}
	for k, v := range src {
		if f, ok := v.(float64); ok && f >= 1 {
			out[k] = int(f)
		}
	}
	return out
}
