package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/pension-intake/internal/core/domain"
	"github.com/kirillkom/pension-intake/internal/infrastructure/resilience"
)

// RecordPersisted is the event body announced for every completed record.
type RecordPersisted struct {
	ArtifactName    string  `json:"artifactName"`
	PensionID       *string `json:"pensionID"`
	Provider        *string `json:"provider"`
	Company         *string `json:"company"`
	DocumentType    string  `json:"documentType"`
	UploadTimestamp string  `json:"uploadTimestamp"`
}

func NewRecordPersisted(rec domain.CanonicalRecord) RecordPersisted {
	return RecordPersisted{
		ArtifactName:    rec.ArchivalArtifactName,
		PensionID:       rec.PensionID,
		Provider:        rec.PensionProvider,
		Company:         rec.CompanyName,
		DocumentType:    rec.DocumentType,
		UploadTimestamp: rec.UploadTimestamp,
	}
}

type Options struct {
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
	Logger               *slog.Logger
}

type Publisher struct {
	conn     *nats.Conn
	subject  string
	executor *resilience.Executor
	logger   *slog.Logger
}

func New(url, subject string, options Options) (*Publisher, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 10
	}
	retryOnFailedConnect := false
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := nats.Connect(
		url,
		nats.Name("pension-intake"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Publisher{
		conn:     conn,
		subject:  subject,
		executor: options.ResilienceExecutor,
		logger:   logger,
	}, nil
}

// Close flushes pending events before closing the connection.
func (p *Publisher) Close() {
	if p.conn == nil {
		return
	}
	if err := p.conn.FlushTimeout(5 * time.Second); err != nil {
		p.logger.Warn("nats flush on close", "error", err)
	}
	p.conn.Close()
}

func (p *Publisher) PublishRecordPersisted(ctx context.Context, rec domain.CanonicalRecord) error {
	payload, err := json.Marshal(NewRecordPersisted(rec))
	if err != nil {
		return fmt.Errorf("marshal record event: %w", err)
	}

	call := func(_ context.Context) error {
		if err := p.conn.Publish(p.subject, payload); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}

	if p.executor != nil {
		err = p.executor.Execute(ctx, "nats.publish", call, classifyNATSError)
	} else {
		err = call(ctx)
	}
	return resilience.WrapTemporary("nats publish", err, classifyNATSError)
}

// SubscribeRecordPersisted delivers events to handler until ctx is done, then drains.
func (p *Publisher) SubscribeRecordPersisted(ctx context.Context, handler func(context.Context, RecordPersisted) error) error {
	sub, err := p.conn.Subscribe(p.subject, func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}
		var event RecordPersisted
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			p.logger.Warn("malformed record event", "subject", msg.Subject, "error", err)
			return
		}
		if err := handler(ctx, event); err != nil {
			p.logger.Error("record event handler failed", "artifact", event.ArtifactName, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}
	if err := p.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	return nil
}
