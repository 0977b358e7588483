package journal

import (
	"context"
	"time"

	"bizai/internal/log"
)

// Publisher emits an event for each recorded entry.
type Publisher interface {
	PublishUploadEvent(ctx context.Context, e Entry) error
}

// PublishingStore records to an inner store and then publishes the entry.
// A failed publish is logged and does not fail the record.
type PublishingStore struct {
	inner     Store
	publisher Publisher
	logger    *log.Logger
}

// NewPublishingStore wraps inner.
func NewPublishingStore(inner Store, publisher Publisher, logger *log.Logger) *PublishingStore {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &PublishingStore{
		inner:     inner,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentJournal),
	}
}

// Record implements Recorder.
func (s *PublishingStore) Record(ctx context.Context, e Entry) error {
	if err := s.inner.Record(ctx, e); err != nil {
		return err
	}
	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.PublishUploadEvent(ctx, e); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish upload event",
			log.FieldEntryID, e.ID,
			log.FieldModule, e.Module.String(),
			log.FieldError, err.Error())
	}
	return nil
}

// Recent implements Lister.
func (s *PublishingStore) Recent(ctx context.Context, limit int) ([]Entry, error) {
	return s.inner.Recent(ctx, limit)
}

// PruneBefore implements Pruner.
func (s *PublishingStore) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.inner.PruneBefore(ctx, cutoff)
}
