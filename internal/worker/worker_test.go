package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"bizai/internal/amqp"
	"bizai/internal/core"
	"bizai/internal/journal"
	"bizai/internal/sheets/memory"
)

type fakeTracker struct {
	exported map[string]bool
	markErr  error
}

func (f *fakeTracker) IsExported(_ context.Context, id string) (bool, error) {
	return f.exported[id], nil
}

func (f *fakeTracker) MarkExported(_ context.Context, id string, _ time.Time) (bool, error) {
	if f.markErr != nil {
		return false, f.markErr
	}
	was := f.exported[id]
	f.exported[id] = true
	return !was, nil
}

type failingExporter struct{}

func (failingExporter) ExportUpload(context.Context, journal.Entry) (string, error) {
	return "", errors.New("quota exceeded")
}

func eventMessage(id string) *amqp.UploadEventMessage {
	return amqp.NewUploadEventMessage(journal.Entry{
		ID:        id,
		Module:    core.ModuleInventory,
		FileName:  "stock.csv",
		Outcome:   journal.OutcomeLoaded,
		CreatedAt: time.Now(),
	})
}

func TestExportWorker_ExportsOnce(t *testing.T) {
	ctx := context.Background()
	sheet := memory.New()
	store := journal.NewMemoryStore(10)
	tracker := &fakeTracker{exported: map[string]bool{}}
	w := NewExportWorker(sheet, store, tracker)

	msg := eventMessage("abc")
	if err := w.HandleUploadEvent(ctx, msg); err != nil {
		t.Fatal(err)
	}
	// redelivery
	if err := w.HandleUploadEvent(ctx, msg); err != nil {
		t.Fatal(err)
	}

	if n := len(sheet.Rows()); n != 1 {
		t.Errorf("exported rows = %d, want 1", n)
	}
	if !tracker.exported["abc"] {
		t.Error("entry not marked exported")
	}
	if store.Len() != 2 {
		t.Errorf("recorder calls stored %d entries", store.Len())
	}
}

func TestExportWorker_ExportFailureRequeues(t *testing.T) {
	w := NewExportWorker(failingExporter{}, nil, nil)
	if err := w.HandleUploadEvent(context.Background(), eventMessage("x")); err == nil {
		t.Error("expected error so the message is requeued")
	}
}

func TestExportWorker_MarkFailureDoesNotRequeue(t *testing.T) {
	tracker := &fakeTracker{exported: map[string]bool{}, markErr: errors.New("db locked")}
	w := NewExportWorker(memory.New(), nil, tracker)
	if err := w.HandleUploadEvent(context.Background(), eventMessage("y")); err != nil {
		t.Errorf("HandleUploadEvent() error = %v, want nil", err)
	}
}

func TestParseSchedule(t *testing.T) {
	tests := []struct {
		expr    string
		wantErr bool
	}{
		{"0 3 * * *", false},
		{"*/15 * * * 1-5", false},
		{"0 3 * *", true},
		{"@every 1h", true},
		{"", true},
	}
	for _, tt := range tests {
		_, err := ParseSchedule(tt.expr)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSchedule(%q) error = %v, wantErr %v", tt.expr, err, tt.wantErr)
		}
	}
}

func TestRetentionJob(t *testing.T) {
	ctx := context.Background()
	store := journal.NewMemoryStore(10)
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	_ = store.Record(ctx, journal.Entry{ID: "old", CreatedAt: now.Add(-40 * 24 * time.Hour)})
	_ = store.Record(ctx, journal.Entry{ID: "new", CreatedAt: now.Add(-time.Hour)})

	job, err := NewRetentionJob(store, "0 3 * * *", 30*24*time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	job.now = func() time.Time { return now }

	if next := job.Next(now); !next.Equal(time.Date(2025, 6, 11, 3, 0, 0, 0, time.UTC)) {
		t.Errorf("Next() = %v", next)
	}

	n, err := job.PruneOnce(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 || store.Len() != 1 {
		t.Errorf("PruneOnce() = %d, remaining %d", n, store.Len())
	}

	if _, err := NewRetentionJob(store, "0 3 * * *", 0); err == nil {
		t.Error("expected error for zero retention")
	}
}

func TestRetentionJob_RunStopsOnCancel(t *testing.T) {
	job, err := NewRetentionJob(journal.NewMemoryStore(1), "0 3 * * *", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- job.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
}
