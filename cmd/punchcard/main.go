// punchcard is a terminal tracker for recurring tasks and the punches
// made against them.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/nhle/punchcard/internal/app"
	"github.com/nhle/punchcard/internal/model"
	"github.com/nhle/punchcard/internal/store"
	appsync "github.com/nhle/punchcard/internal/sync"
	"github.com/nhle/punchcard/internal/tracker"
)

var (
	version  = "0.1.0"
	cfgFile  string
	logLevel string
	dbPath   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "punchcard",
	Short: "Track recurring tasks by punching in",
	Long: `punchcard keeps a list of recurring tasks (daily, weekly, monthly,
yearly) and one-off goals. Every session start brings today's list up to
date: unfinished work rolls over, new cycles get fresh instances. Punch in
each time you make progress; streaks and per-category statistics follow.

Run without a subcommand to open the interactive view.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("punchcard %s\n", version)
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive view",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

// session holds everything a command needs to work on the tracker.
type session struct {
	cfg     *model.AppConfig
	log     hclog.Logger
	db      *store.SQLiteStore
	tracker *tracker.Tracker
	saver   *appsync.Saver
	logFile io.Closer
}

// openSession loads the config, opens the store, restores the snapshot and
// runs the session start steps. interactive keeps log output off the
// terminal unless a log file is configured.
func openSession(interactive bool) (*session, error) {
	cfg, err := model.LoadConfig(configPath())
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.Storage.DBPath = dbPath
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	s := &session{cfg: cfg}
	s.log, s.logFile, err = newLogger(cfg.Log, interactive)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.DBPath), 0o755); err != nil {
		s.close()
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	s.db, err = store.NewSQLiteStore(cfg.Storage.DBPath)
	if err != nil {
		s.close()
		return nil, err
	}

	opts := tracker.OptionsFromConfig(cfg.Tracker)
	opts.Logger = s.log
	opts.Location = time.Local
	s.tracker = tracker.New(opts)

	loader := store.NewLoader(s.db, s.tracker.Calendar(), s.log)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	snap, err := loader.Load(ctx)
	if err != nil {
		s.close()
		return nil, err
	}
	s.tracker.Restore(snap)

	s.saver = appsync.New(s.db, s.log)
	s.tracker.Subscribe(s.saver.Observe)

	report := s.tracker.StartSession()
	s.log.Debug("materialized",
		"generated", report.Materialize.Generated,
		"rolled_over", report.Materialize.RolledOver,
		"missed", report.Materialize.Missed,
		"linked", report.Linked)
	return s, nil
}

// close writes pending changes and releases the store.
func (s *session) close() error {
	var firstErr error
	if s.saver != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := s.saver.Flush(ctx); err != nil {
			firstErr = err
		}
		cancel()
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.logFile != nil {
		s.logFile.Close()
	}
	return firstErr
}

// newLogger builds the hclog logger described by cfg.
func newLogger(cfg model.LogConfig, interactive bool) (hclog.Logger, io.Closer, error) {
	var (
		out    io.Writer = os.Stderr
		closer io.Closer
	)
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		out, closer = f, f
	} else if interactive {
		return hclog.NewNullLogger(), nil, nil
	}

	level := hclog.LevelFromString(cfg.Level)
	if level == hclog.NoLevel {
		level = hclog.Info
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "punchcard",
		Level:  level,
		Output: out,
	}), closer, nil
}

func runTUI() error {
	s, err := openSession(true)
	if err != nil {
		return err
	}

	p := tea.NewProgram(app.New(s.tracker, s.saver, s.log), tea.WithAltScreen())
	_, runErr := p.Run()
	if err := s.close(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.config/punchcard/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database file (overrides storage.db_path)")

	addCmd.Flags().StringP("category", "C", "", "category")
	addCmd.Flags().StringP("period", "p", "daily", "period (daily, weekly, monthly, yearly, once)")
	addCmd.Flags().IntP("times", "n", 1, "punches required per period")
	addCmd.Flags().Bool("minutes", false, "measure punches in minutes")
	addCmd.Flags().Int("minutes-per-punch", 0, "minutes credited per punch")
	addCmd.Flags().StringP("description", "d", "", "description")

	punchCmd.Flags().StringP("note", "m", "", "note to attach")
	punchCmd.Flags().Int("minutes", 0, "minutes for this punch (minutes unit only)")

	doneCmd.Flags().Bool("undo", false, "mark as not done")

	giveUpCmd.Flags().StringP("reason", "r", "", "why the goal was given up")

	todayCmd.Flags().BoolP("all", "a", false, "include finished instances")

	activityCmd.Flags().IntP("year", "y", 0, "calendar year (default: current)")
	activityCmd.Flags().IntP("days", "n", 0, "only the last n days")

	templatesCmd.Flags().Bool("archived", false, "include archived templates")
	templatesCmd.AddCommand(templatesExportCmd)
	templatesCmd.AddCommand(templatesImportCmd)
	templatesCmd.AddCommand(templatesRestoreCmd)

	historyCmd.Flags().Bool("clear", false, "clear the recently used list")

	configInitCmd.Flags().BoolP("force", "f", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(todayCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(punchCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(giveUpCmd)
	rootCmd.AddCommand(rebuildCmd)
	rootCmd.AddCommand(streakCmd)
	rootCmd.AddCommand(activityCmd)
	rootCmd.AddCommand(templatesCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
}
