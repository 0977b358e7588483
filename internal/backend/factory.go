package backend

import (
	"context"
	"errors"
	"fmt"

	"bizai/internal/amqp"
	"bizai/internal/journal"
	"bizai/internal/log"
	"bizai/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
	dial   func(url, exchange, queue string) (journal.Publisher, func() error, error)
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) *DefaultFactory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
		dial:   dialAMQP,
	}
}

func dialAMQP(url, exchange, queue string) (journal.Publisher, func() error, error) {
	c, err := amqp.NewClient(url, exchange, queue)
	if err != nil {
		return nil, nil, err
	}
	return c, c.Close, nil
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		store   journal.Store
		cleanup []func() error
	)
	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite journal: %w", err)
		}
		store = repo
		cleanup = append(cleanup, repo.Close)
		f.logger.Info("Initialized SQLite journal", "db_path", config.SQLiteDBPath)
	case MemoryBackend:
		store = journal.NewMemoryStore(config.MemoryCapacity)
		f.logger.Info("Initialized memory journal")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	res := &BackendResult{Journal: store}
	if config.AMQPURL != "" {
		publisher, closeFn, err := f.dial(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			// uploads must keep working without the broker
			f.logger.Warn("Failed to initialize AMQP client, continuing without upload events", log.FieldError, err)
		} else {
			res.Journal = journal.NewPublishingStore(store, publisher, f.logger)
			res.Publishing = true
			cleanup = append(cleanup, closeFn)
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	res.Cleanup = func() error {
		var errs []error
		for i := len(cleanup) - 1; i >= 0; i-- {
			if err := cleanup[i](); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
	return res, nil
}
