package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kirillkom/pension-intake/internal/bootstrap"
	"github.com/kirillkom/pension-intake/internal/observability/logging"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Process every image in the input directory once",
	Long: `Runs one closed batch: extract text from every image, write the extraction snapshot,
quarantine rejected forms, then archive and persist each valid record.

Exits non-zero only when the batch could not run (configuration, startup, listing or snapshot failure).
Per-record failures are logged and quarantined.`,
	RunE: runBatchCmd,
}

func init() {
	rootCmd.AddCommand(runCommand)
}

func runBatchCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger, logFile, err := logging.NewJSONLoggerWithFile("pension-intake", cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer logFile.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("bootstrap failed", "error", err)
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer app.Close()

	summary, err := app.Runner.Run(ctx)
	if err != nil {
		logger.Error("batch aborted", "error", err)
		return err
	}

	counts := summary.Counts()
	fmt.Fprintf(cmd.OutOrStdout(), "inputs=%d persisted=%d quarantined_invalid=%d quarantined_failed=%d extract_failed=%d skipped=%d\n",
		counts.Inputs, counts.Persisted, counts.QuarantinedInvalid, counts.QuarantinedFailed, counts.ExtractFailed, len(summary.Skipped))
	return nil
}
