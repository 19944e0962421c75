package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/api/option"

	"github.com/kirillkom/pension-intake/internal/config"
	"github.com/kirillkom/pension-intake/internal/core/fields"
	"github.com/kirillkom/pension-intake/internal/core/ports"
	"github.com/kirillkom/pension-intake/internal/core/usecase"
	"github.com/kirillkom/pension-intake/internal/infrastructure/inbox/localdir"
	"github.com/kirillkom/pension-intake/internal/infrastructure/queue/nats"
	"github.com/kirillkom/pension-intake/internal/infrastructure/recognition/vision"
	"github.com/kirillkom/pension-intake/internal/infrastructure/render/pdf"
	"github.com/kirillkom/pension-intake/internal/infrastructure/report/xlsx"
	"github.com/kirillkom/pension-intake/internal/infrastructure/repository/sqlstore"
	"github.com/kirillkom/pension-intake/internal/infrastructure/resilience"
	"github.com/kirillkom/pension-intake/internal/infrastructure/snapshot/jsonfile"
	"github.com/kirillkom/pension-intake/internal/infrastructure/storage/gcs"
	"github.com/kirillkom/pension-intake/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/pension-intake/internal/observability/metrics"
)

const serviceName = "pension-intake"

type App struct {
	Config config.Config
	Runner ports.BatchRunner

	closers []func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (_ *App, err error) {
	app := &App{Config: cfg}
	defer func() {
		if err != nil {
			app.Close()
		}
	}()

	executor := resilience.NewExecutor(resilienceConfig(cfg), logger)

	inbox, err := localdir.New(cfg.InputDir, cfg.QuarantineDir)
	if err != nil {
		return nil, fmt.Errorf("init inbox: %w", err)
	}

	recognizer, err := vision.New(ctx, vision.Options{
		RequestsPerSecond:  cfg.VisionRequestsPerSecond,
		ClientOptions:      visionClientOptions(cfg),
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init text recognizer: %w", err)
	}

	objects, err := app.objectPublisher(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := app.recordStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	workflow := cfg.Workflow()
	opts := []usecase.BatchOption{
		usecase.WithLogger(logger),
		usecase.WithImageExtension(cfg.ImageExtension),
		usecase.WithCallTimeout(cfg.CallTimeout),
		usecase.WithMetrics(metrics.NewBatchMetrics(serviceName, cfg.MetricsTextfile)),
	}
	if cfg.ReportPath != "" {
		opts = append(opts, usecase.WithReporter(xlsx.New(cfg.ReportPath)))
	}
	if cfg.NATSURL != "" {
		events, err := nats.New(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			ResilienceExecutor: executor,
			Logger:             logger,
		})
		if err != nil {
			return nil, fmt.Errorf("init event publisher: %w", err)
		}
		app.closers = append(app.closers, events.Close)
		opts = append(opts, usecase.WithEvents(events))
	}

	app.Runner = usecase.NewBatchUseCase(
		inbox,
		usecase.NewExtractTextUseCase(recognizer),
		jsonfile.New(cfg.SnapshotPath),
		fields.NewValidator(workflow),
		fields.NewMapper(fields.DefaultAliases(), workflow, nil),
		usecase.NewArchivePublishUseCase(pdf.NewRenderer(""), objects, workflow, nil),
		store,
		opts...,
	)
	return app, nil
}

// NewEventSubscriber connects to the event subject only, for tailing persisted records.
func NewEventSubscriber(cfg config.Config, logger *slog.Logger) (*nats.Publisher, error) {
	if cfg.NATSURL == "" {
		return nil, fmt.Errorf("NATS_URL is not configured")
	}
	return nats.New(cfg.NATSURL, cfg.NATSSubject, nats.Options{Logger: logger})
}

func (a *App) objectPublisher(ctx context.Context, cfg config.Config) (ports.ObjectPublisher, error) {
	switch cfg.ArchiveBackend {
	case config.ArchiveBackendLocalFS:
		storage, err := localfs.New(cfg.ArchiveLocalPath)
		if err != nil {
			return nil, fmt.Errorf("init local archive: %w", err)
		}
		return storage, nil
	default:
		var opts []option.ClientOption
		if cfg.GCSCredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.GCSCredentialsFile))
		}
		publisher, err := gcs.New(ctx, cfg.ArchiveBucket, opts...)
		if err != nil {
			return nil, fmt.Errorf("init gcs archive: %w", err)
		}
		a.closers = append(a.closers, func() { _ = publisher.Close() })
		return publisher, nil
	}
}

func (a *App) recordStore(ctx context.Context, cfg config.Config) (ports.RecordStore, error) {
	dialect, err := sqlstore.DialectFor(cfg.DBDriver)
	if err != nil {
		return nil, err
	}
	db, err := sqlstore.OpenDB(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a.closers = append(a.closers, func() { _ = db.Close() })

	store, err := sqlstore.NewRecordStore(db, dialect, cfg.DBTable)
	if err != nil {
		return nil, err
	}
	if cfg.DBEnsureSchema {
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
	}
	return store, nil
}

func visionClientOptions(cfg config.Config) []option.ClientOption {
	var opts []option.ClientOption
	if cfg.VisionEndpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.VisionEndpoint))
	}
	if cfg.VisionCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.VisionCredentialsFile))
	}
	return opts
}

func resilienceConfig(cfg config.Config) resilience.Config {
	rc := resilience.DefaultConfig()
	rc.MaxAttempts = cfg.RetryMaxAttempts
	rc.BreakerEnabled = cfg.BreakerEnabled
	return rc
}

// Close releases adapters in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
