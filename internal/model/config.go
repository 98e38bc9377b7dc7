package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Rollover policies for overdue periodic instances.
const (
	RolloverRollForward   = "roll_forward"
	RolloverArchiveOnMiss = "archive_on_miss"
)

// StorageConfig holds persistence settings.
type StorageConfig struct {
	// DBPath is the SQLite database file holding the key-value blobs.
	DBPath string `mapstructure:"db_path" yaml:"db_path"`
}

// TrackerConfig tunes the engine.
type TrackerConfig struct {
	// DebounceSeconds is the window in which a repeat punch without a note
	// is rejected as a double submission.
	DebounceSeconds int `mapstructure:"debounce_seconds" yaml:"debounce_seconds"`

	// DefaultMinutesPerPunch applies to minutes-unit tasks without an explicit value.
	DefaultMinutesPerPunch int `mapstructure:"default_minutes_per_punch" yaml:"default_minutes_per_punch"`

	// MaxPunchRecords caps the punch ledger; the oldest records are dropped first.
	MaxPunchRecords int `mapstructure:"max_punch_records" yaml:"max_punch_records"`

	// HistoryLimit caps the recently-used configuration list.
	HistoryLimit int `mapstructure:"history_limit" yaml:"history_limit"`

	// RolloverPolicy is "roll_forward" or "archive_on_miss".
	RolloverPolicy string `mapstructure:"rollover_policy" yaml:"rollover_policy"`

	// GoalProgressNotes lets once-instances accept progress notes on punch.
	GoalProgressNotes bool `mapstructure:"goal_progress_notes" yaml:"goal_progress_notes"`

	// WeekStart is "monday" or "sunday".
	WeekStart string `mapstructure:"week_start" yaml:"week_start"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Tracker TrackerConfig `mapstructure:"tracker" yaml:"tracker"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
}

// DefaultConfigDir returns ~/.config/punchcard.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "punchcard")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/punchcard/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Storage: StorageConfig{
			DBPath: filepath.Join(DefaultConfigDir(), "punchcard.db"),
		},
		Tracker: TrackerConfig{
			DebounceSeconds:        60,
			DefaultMinutesPerPunch: DefaultMinutesPerPunch,
			MaxPunchRecords:        MaxPunchRecords,
			HistoryLimit:           HistoryLimit,
			RolloverPolicy:         RolloverRollForward,
			WeekStart:              "monday",
		},
		Log: LogConfig{
			Level: "info",
		},
		Display: DisplayConfig{
			Theme: "default",
		},
	}
}

// DefaultAppConfig returns the configuration used when no file exists.
func DefaultAppConfig() *AppConfig {
	return defaultAppConfig()
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	def := defaultAppConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("PUNCHCARD")
	v.AutomaticEnv()

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("storage.db_path", def.Storage.DBPath)
	v.SetDefault("tracker.debounce_seconds", def.Tracker.DebounceSeconds)
	v.SetDefault("tracker.default_minutes_per_punch", def.Tracker.DefaultMinutesPerPunch)
	v.SetDefault("tracker.max_punch_records", def.Tracker.MaxPunchRecords)
	v.SetDefault("tracker.history_limit", def.Tracker.HistoryLimit)
	v.SetDefault("tracker.rollover_policy", def.Tracker.RolloverPolicy)
	v.SetDefault("tracker.goal_progress_notes", false)
	v.SetDefault("tracker.week_start", def.Tracker.WeekStart)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.file", "")
	v.SetDefault("display.theme", def.Display.Theme)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return def, nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return def, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.normalize()

	return cfg, nil
}

// normalize replaces out-of-range values with their defaults.
func (c *AppConfig) normalize() {
	def := defaultAppConfig()
	if c.Storage.DBPath == "" {
		c.Storage.DBPath = def.Storage.DBPath
	}
	if c.Tracker.DebounceSeconds < 0 {
		c.Tracker.DebounceSeconds = def.Tracker.DebounceSeconds
	}
	if c.Tracker.DefaultMinutesPerPunch <= 0 {
		c.Tracker.DefaultMinutesPerPunch = def.Tracker.DefaultMinutesPerPunch
	}
	if c.Tracker.MaxPunchRecords <= 0 {
		c.Tracker.MaxPunchRecords = def.Tracker.MaxPunchRecords
	}
	if c.Tracker.HistoryLimit <= 0 {
		c.Tracker.HistoryLimit = def.Tracker.HistoryLimit
	}
	switch c.Tracker.RolloverPolicy {
	case RolloverRollForward, RolloverArchiveOnMiss:
	default:
		c.Tracker.RolloverPolicy = def.Tracker.RolloverPolicy
	}
	switch c.Tracker.WeekStart {
	case "monday", "sunday":
	default:
		c.Tracker.WeekStart = def.Tracker.WeekStart
	}
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("storage", cfg.Storage)
	v.Set("tracker", cfg.Tracker)
	v.Set("log", cfg.Log)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
