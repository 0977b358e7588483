package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bizai/internal/amqp"
	"bizai/internal/journal"
	"bizai/internal/sheets"
)

// ExportTracker remembers which entries reached the spreadsheet.
type ExportTracker interface {
	IsExported(ctx context.Context, id string) (bool, error)
	MarkExported(ctx context.Context, id string, at time.Time) (bool, error)
}

// ExportWorker copies upload events to an external sheet.
type ExportWorker struct {
	exporter sheets.UploadExporter
	recorder journal.Recorder
	tracker  ExportTracker
	now      func() time.Time
}

// NewExportWorker wires the exporter with optional local bookkeeping. recorder
// stores the event locally (idempotent by ID); tracker prevents duplicate rows
// when a message is redelivered.
func NewExportWorker(exporter sheets.UploadExporter, recorder journal.Recorder, tracker ExportTracker) *ExportWorker {
	return &ExportWorker{
		exporter: exporter,
		recorder: recorder,
		tracker:  tracker,
		now:      time.Now,
	}
}

// HandleUploadEvent processes one event from AMQP. A returned error requeues it.
func (w *ExportWorker) HandleUploadEvent(ctx context.Context, msg *amqp.UploadEventMessage) error {
	entry := msg.Entry()

	slog.InfoContext(ctx, "Processing upload event",
		"entry_id", entry.ID,
		"module", entry.Module.String(),
		"outcome", entry.Outcome)

	if w.recorder != nil {
		if err := w.recorder.Record(ctx, entry); err != nil {
			return fmt.Errorf("record entry: %w", err)
		}
	}

	if w.tracker != nil {
		done, err := w.tracker.IsExported(ctx, entry.ID)
		if err != nil {
			return fmt.Errorf("check export state: %w", err)
		}
		if done {
			slog.InfoContext(ctx, "Upload event already exported, skipping", "entry_id", entry.ID)
			return nil
		}
	}

	if w.exporter == nil {
		slog.WarnContext(ctx, "No exporter configured, skipping export", "entry_id", entry.ID)
		return nil
	}

	ref, err := w.exporter.ExportUpload(ctx, entry)
	if err != nil {
		return fmt.Errorf("export entry: %w", err)
	}

	if w.tracker != nil {
		if _, err := w.tracker.MarkExported(ctx, entry.ID, w.now()); err != nil {
			// The row is already in the sheet; requeueing would duplicate it.
			slog.ErrorContext(ctx, "Failed to mark entry exported",
				"entry_id", entry.ID,
				"error", err)
		}
	}

	slog.InfoContext(ctx, "Exported upload event",
		"entry_id", entry.ID,
		"ref", ref)
	return nil
}
