package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nhle/punchcard/internal/model"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath()
		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists, use --force to overwrite", path)
		}
		if err := model.SaveConfig(path, model.DefaultAppConfig()); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath()
		cfg, err := model.LoadConfig(path)
		if err != nil {
			return err
		}
		fmt.Printf("config file:       %s\n", path)
		fmt.Printf("database:          %s\n", cfg.Storage.DBPath)
		fmt.Printf("week start:        %s\n", cfg.Tracker.WeekStart)
		fmt.Printf("rollover policy:   %s\n", cfg.Tracker.RolloverPolicy)
		fmt.Printf("debounce:          %ds\n", cfg.Tracker.DebounceSeconds)
		fmt.Printf("minutes per punch: %d\n", cfg.Tracker.DefaultMinutesPerPunch)
		fmt.Printf("punch ledger cap:  %d\n", cfg.Tracker.MaxPunchRecords)
		fmt.Printf("history limit:     %d\n", cfg.Tracker.HistoryLimit)
		fmt.Printf("goal notes:        %t\n", cfg.Tracker.GoalProgressNotes)
		fmt.Printf("log level:         %s\n", cfg.Log.Level)
		return nil
	},
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return model.DefaultConfigPath()
}
