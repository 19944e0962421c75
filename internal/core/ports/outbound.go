package ports

import (
	"context"
	"io"
	"time"

	"github.com/kirillkom/pension-intake/internal/core/domain"
)

// TextRecognizer returns the text annotations detected in one image, full-page text first.
type TextRecognizer interface {
	DetectText(ctx context.Context, imagePath string) ([]string, error)
}

// DocumentRenderer wraps one image into a single-page document.
type DocumentRenderer interface {
	RenderSinglePage(ctx context.Context, imagePath string) ([]byte, error)
}

// ObjectPublisher stores a finished artifact with flat string metadata.
// It returns only after the storage layer confirmed the write.
type ObjectPublisher interface {
	Publish(ctx context.Context, key string, data io.Reader, metadata map[string]string) error
}

// RecordStore persists canonical records.
type RecordStore interface {
	Insert(ctx context.Context, records []domain.CanonicalRecord) error
}

// Inbox enumerates the input directory and relocates files into the holding area.
type Inbox interface {
	List(ctx context.Context) ([]domain.InputImage, error)
	Quarantine(ctx context.Context, name string) error
}

// SnapshotWriter checkpoints the extracted dataset before validation.
type SnapshotWriter interface {
	WriteSnapshot(ctx context.Context, docs []domain.ExtractedDocument) error
}

// EventPublisher announces records that completed the pipeline.
type EventPublisher interface {
	PublishRecordPersisted(ctx context.Context, record domain.CanonicalRecord) error
}

// BatchMetrics observes stage durations and terminal item states.
type BatchMetrics interface {
	ObserveStage(stage string, duration time.Duration, err error)
	FinishItem(item domain.ItemOutcome)
	FinishBatch(summary domain.BatchSummary) error
}

// BatchReporter writes a human-readable outcome report.
type BatchReporter interface {
	WriteReport(ctx context.Context, summary domain.BatchSummary) error
}
