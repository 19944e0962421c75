package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kirillkom/pension-intake/internal/config"
)

var configCommand = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration after validation",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "input_dir: %s\nquarantine_dir: %s\nsnapshot_path: %s\n", cfg.InputDir, cfg.QuarantineDir, cfg.SnapshotPath)
		fmt.Fprintf(out, "archive_backend: %s\ndb_driver: %s\ndb_table: %s\n", cfg.ArchiveBackend, cfg.DBDriver, cfg.DBTable)
		fmt.Fprintf(out, "workflow: %+v\n", cfg.Workflow())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCommand)
}

func loadConfig(path string) (config.Config, error) {
	cfg := config.Load()
	if path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
