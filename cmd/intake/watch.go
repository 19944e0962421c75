package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kirillkom/pension-intake/internal/bootstrap"
	"github.com/kirillkom/pension-intake/internal/infrastructure/queue/nats"
	"github.com/kirillkom/pension-intake/internal/observability/logging"
)

var watchCommand = &cobra.Command{
	Use:   "watch",
	Short: "Print record-persisted events as JSON lines until interrupted",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		logger := logging.NewJSONLogger("pension-intake-watch", cfg.LogLevel)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		subscriber, err := bootstrap.NewEventSubscriber(cfg, logger)
		if err != nil {
			return err
		}
		defer subscriber.Close()

		enc := json.NewEncoder(cmd.OutOrStdout())
		logger.Info("watching record events", "subject", cfg.NATSSubject)
		return subscriber.SubscribeRecordPersisted(ctx, func(_ context.Context, event nats.RecordPersisted) error {
			if err := enc.Encode(event); err != nil {
				return fmt.Errorf("print event: %w", err)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(watchCommand)
}
