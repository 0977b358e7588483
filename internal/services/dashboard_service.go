package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"bizai/internal/core"
	"bizai/internal/journal"
	"bizai/internal/log"
)

// ExpenseSummarizer fetches the expense summary shown on the dashboard.
type ExpenseSummarizer interface {
	ExpenseSummary(ctx context.Context) (core.ExpenseSummary, error)
}

// Dashboard is everything the dashboard page shows beyond the catalog.
type Dashboard struct {
	Summary     *core.ExpenseSummary
	SummaryErr  error
	Recent      []journal.Entry
	ActivityErr error
}

// DashboardService gathers dashboard data.
type DashboardService struct {
	journal journal.Lister
	logger  *log.Logger
	limit   int
}

// NewDashboardService creates a dashboard service showing up to limit recent
// uploads. lister may be nil.
func NewDashboardService(lister journal.Lister, logger *log.Logger, limit int) *DashboardService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	if limit <= 0 {
		limit = 10
	}
	return &DashboardService{journal: lister, logger: logger.WithComponent(log.ComponentHTTP), limit: limit}
}

// Load fetches the expense summary and the recent journal entries
// concurrently. Neither failure fails the page.
func (s *DashboardService) Load(ctx context.Context, backend ExpenseSummarizer) Dashboard {
	var d Dashboard

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sum, err := backend.ExpenseSummary(gctx)
		if err != nil {
			s.logger.WarnContext(ctx, "Expense summary unavailable", log.FieldError, err)
			d.SummaryErr = err
			return nil
		}
		d.Summary = &sum
		return nil
	})
	if s.journal != nil {
		g.Go(func() error {
			entries, err := s.journal.Recent(gctx, s.limit)
			if err != nil {
				s.logger.WarnContext(ctx, "Upload journal unavailable", log.FieldError, err)
				d.ActivityErr = err
				return nil
			}
			d.Recent = entries
			return nil
		})
	}
	_ = g.Wait()
	return d
}
