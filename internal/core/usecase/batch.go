package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/pension-intake/internal/core/domain"
	"github.com/kirillkom/pension-intake/internal/core/fields"
	"github.com/kirillkom/pension-intake/internal/core/ports"
)

const (
	stageExtract = "extract"
	stageArchive = "archive"
	stagePersist = "persist"
)

type BatchOption func(*BatchUseCase)

func WithLogger(logger *slog.Logger) BatchOption {
	return func(uc *BatchUseCase) {
		if logger != nil {
			uc.logger = logger
		}
	}
}

// WithImageExtension restricts the batch to files with ext; other files are skipped.
func WithImageExtension(ext string) BatchOption {
	return func(uc *BatchUseCase) { uc.imageExt = ext }
}

// WithCallTimeout bounds every external call; zero leaves calls unbounded.
func WithCallTimeout(timeout time.Duration) BatchOption {
	return func(uc *BatchUseCase) { uc.callTimeout = timeout }
}

func WithEvents(events ports.EventPublisher) BatchOption {
	return func(uc *BatchUseCase) { uc.events = events }
}

func WithMetrics(metrics ports.BatchMetrics) BatchOption {
	return func(uc *BatchUseCase) { uc.metrics = metrics }
}

func WithReporter(reporter ports.BatchReporter) BatchOption {
	return func(uc *BatchUseCase) { uc.reporter = reporter }
}

// BatchUseCase drives one closed batch: extract and parse everything up front,
// checkpoint, partition, quarantine rejects, then archive and persist each valid
// record in isolation.
type BatchUseCase struct {
	inbox     ports.Inbox
	extractor *ExtractTextUseCase
	snapshot  ports.SnapshotWriter
	validator *fields.Validator
	mapper    *fields.Mapper
	publisher *ArchivePublishUseCase
	store     ports.RecordStore

	imageExt    string
	callTimeout time.Duration
	logger      *slog.Logger
	events      ports.EventPublisher
	metrics     ports.BatchMetrics
	reporter    ports.BatchReporter
}

func NewBatchUseCase(
	inbox ports.Inbox,
	extractor *ExtractTextUseCase,
	snapshot ports.SnapshotWriter,
	validator *fields.Validator,
	mapper *fields.Mapper,
	publisher *ArchivePublishUseCase,
	store ports.RecordStore,
	opts ...BatchOption,
) *BatchUseCase {
	uc := &BatchUseCase{
		inbox:     inbox,
		extractor: extractor,
		snapshot:  snapshot,
		validator: validator,
		mapper:    mapper,
		publisher: publisher,
		store:     store,
		imageExt:  ".jpg",
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

type batchEntry struct {
	doc    domain.ExtractedDocument
	record domain.CanonicalRecord
	item   *domain.ItemOutcome
}

func (uc *BatchUseCase) Run(ctx context.Context) (domain.BatchSummary, error) {
	uc.logger.Info("starting batch")

	images, err := uc.inbox.List(ctx)
	if err != nil {
		return domain.BatchSummary{}, fmt.Errorf("list input directory: %w", err)
	}

	var (
		skipped   []string
		items     []*domain.ItemOutcome
		extracted []*batchEntry
	)
	for _, img := range images {
		if !domain.HasExtension(img.Name, uc.imageExt) {
			uc.logger.Warn("not a valid image file", "file", img.Name)
			skipped = append(skipped, img.Name)
			continue
		}
		item := domain.NewItemOutcome(img.Name)
		items = append(items, item)
		if doc, ok := uc.extractItem(ctx, img, item); ok {
			extracted = append(extracted, &batchEntry{doc: doc, item: item})
		}
	}

	docs := make([]domain.ExtractedDocument, 0, len(extracted))
	for _, entry := range extracted {
		docs = append(docs, entry.doc)
	}
	if err := uc.snapshot.WriteSnapshot(ctx, docs); err != nil {
		return summarize(items, skipped), fmt.Errorf("write extraction snapshot: %w", err)
	}
	uc.logger.Info("extraction snapshot saved", "documents", len(docs))

	var valid, invalid []*batchEntry
	for _, entry := range extracted {
		if uc.validator.IsValid(entry.doc.Data) {
			uc.advance(entry.item, domain.StateValid)
			valid = append(valid, entry)
		} else {
			uc.advance(entry.item, domain.StateInvalid)
			invalid = append(invalid, entry)
		}
	}
	uc.logger.Info("validation complete", "valid_records", len(valid), "invalid_files", len(invalid))

	for _, entry := range invalid {
		uc.quarantine(ctx, entry.doc.File)
		entry.item.Reason = domain.QuarantineInvalid
		entry.item.QuarantineKey = entry.doc.File
		uc.advance(entry.item, domain.StateQuarantined)
	}

	for _, entry := range valid {
		entry.record = uc.mapper.Map(entry.doc)
		uc.advance(entry.item, domain.StateMapped)
	}
	for _, entry := range valid {
		uc.processRecord(ctx, entry)
	}

	summary := summarize(items, skipped)
	uc.finish(ctx, summary)
	return summary, nil
}

func (uc *BatchUseCase) extractItem(ctx context.Context, img domain.InputImage, item *domain.ItemOutcome) (domain.ExtractedDocument, bool) {
	var text string
	start := time.Now()
	err := isolate(func() error {
		callCtx, cancel := uc.callContext(ctx)
		defer cancel()
		var extractErr error
		text, extractErr = uc.extractor.Extract(callCtx, img)
		return extractErr
	})
	uc.observeStage(stageExtract, time.Since(start), err)

	if err != nil {
		item.Error = err.Error()
		uc.advance(item, domain.StateExtractFailed)
		if domain.IsKind(err, domain.ErrNoTextDetected) {
			uc.logger.Warn("no text detected", "file", img.Name)
		} else {
			uc.logger.Error("text extraction failed", "file", img.Name, "error", err)
		}
		return domain.ExtractedDocument{}, false
	}
	uc.advance(item, domain.StateExtracted)

	doc := domain.ExtractedDocument{
		Source:  img,
		File:    img.Name,
		RawText: text,
		Data:    fields.Parse(text),
	}
	uc.advance(item, domain.StateParsed)
	return doc, true
}

func (uc *BatchUseCase) processRecord(ctx context.Context, entry *batchEntry) {
	rec := &entry.record
	item := entry.item

	err := isolate(func() error { return uc.archiveAndPersist(ctx, rec, item) })
	item.ArtifactName = rec.ArchivalArtifactName
	if err == nil {
		uc.advance(item, domain.StateDone)
		uc.logger.Info("record processed", "file", item.File, "artifact", rec.ArchivalArtifactName)
		uc.announce(ctx, *rec)
		return
	}

	item.Error = err.Error()
	uc.logger.Error("record processing failed",
		"file", item.File,
		"artifact", rec.ArchivalArtifactName,
		"state", item.State,
		"error", err,
	)

	key := rec.QuarantineKey()
	if key != item.File {
		uc.logger.Warn("quarantining by artifact name, source image stays in the input directory",
			"file", item.File, "artifact", key)
	}
	uc.quarantine(ctx, key)
	item.Reason = domain.QuarantineFailed
	item.QuarantineKey = key
	uc.advance(item, domain.StateQuarantined)
}

func (uc *BatchUseCase) archiveAndPersist(ctx context.Context, rec *domain.CanonicalRecord, item *domain.ItemOutcome) error {
	start := time.Now()
	callCtx, cancel := uc.callContext(ctx)
	artifact, err := uc.publisher.Publish(callCtx, rec)
	cancel()
	uc.observeStage(stageArchive, time.Since(start), err)
	if err != nil {
		return err
	}
	uc.logger.Info("artifact published", "file", item.File, "key", artifact.Key)
	if err := item.Advance(domain.StateArchived); err != nil {
		return err
	}

	start = time.Now()
	callCtx, cancel = uc.callContext(ctx)
	err = uc.store.Insert(callCtx, []domain.CanonicalRecord{*rec})
	cancel()
	uc.observeStage(stagePersist, time.Since(start), err)
	if err != nil {
		return domain.WrapError(domain.ErrPersistence, "insert record", err)
	}
	return item.Advance(domain.StatePersisted)
}

// quarantine is best-effort: failures are logged and never reach the caller.
func (uc *BatchUseCase) quarantine(ctx context.Context, name string) {
	err := isolate(func() error { return uc.inbox.Quarantine(ctx, name) })
	if err != nil {
		uc.logger.Error("quarantine failed", "file", name, "error", domain.WrapError(domain.ErrQuarantine, "move file", err))
		return
	}
	uc.logger.Info("file quarantined", "file", name)
}

func (uc *BatchUseCase) announce(ctx context.Context, rec domain.CanonicalRecord) {
	if uc.events == nil {
		return
	}
	if err := uc.events.PublishRecordPersisted(ctx, rec); err != nil {
		uc.logger.Warn("record event not published", "artifact", rec.ArchivalArtifactName, "error", err)
	}
}

func (uc *BatchUseCase) finish(ctx context.Context, summary domain.BatchSummary) {
	counts := summary.Counts()
	if uc.metrics != nil {
		for _, item := range summary.Items {
			uc.metrics.FinishItem(item)
		}
		if err := uc.metrics.FinishBatch(summary); err != nil {
			uc.logger.Error("write batch metrics", "error", err)
		}
	}
	if uc.reporter != nil {
		if err := uc.reporter.WriteReport(ctx, summary); err != nil {
			uc.logger.Error("write batch report", "error", err)
		}
	}
	if !counts.Complete() {
		uc.logger.Error("batch finished with unfinished items", "unfinished", counts.Unfinished)
	}
	uc.logger.Info("process complete",
		"inputs", counts.Inputs,
		"persisted", counts.Persisted,
		"quarantined_invalid", counts.QuarantinedInvalid,
		"quarantined_failed", counts.QuarantinedFailed,
		"extract_failed", counts.ExtractFailed,
		"skipped", len(summary.Skipped),
	)
}

// advance applies a transition the orchestrator is about to make. An illegal one is
// a bug in the orchestrator, so it is logged and the state is forced.
func (uc *BatchUseCase) advance(item *domain.ItemOutcome, to domain.ItemState) {
	if err := item.Advance(to); err != nil {
		uc.logger.Error("state machine violation", "error", err)
		item.State = to
	}
}

func (uc *BatchUseCase) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if uc.callTimeout > 0 {
		return context.WithTimeout(ctx, uc.callTimeout)
	}
	return context.WithCancel(ctx)
}

func (uc *BatchUseCase) observeStage(stage string, duration time.Duration, err error) {
	if uc.metrics != nil {
		uc.metrics.ObserveStage(stage, duration, err)
	}
}

// isolate runs fn, converting a panic into an error so one item cannot take the batch down.
func isolate(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recovered panic: %v", r)
		}
	}()
	return fn()
}

func summarize(items []*domain.ItemOutcome, skipped []string) domain.BatchSummary {
	summary := domain.BatchSummary{
		Items:   make([]domain.ItemOutcome, 0, len(items)),
		Skipped: skipped,
	}
	for _, item := range items {
		summary.Items = append(summary.Items, *item)
	}
	return summary
}
