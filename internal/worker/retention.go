package worker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"bizai/internal/journal"
)

// ParseSchedule parses a standard 5-field cron expression
// (minute hour day-of-month month day-of-week).
func ParseSchedule(expr string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(strings.TrimSpace(expr))
	if err != nil {
		return nil, fmt.Errorf("invalid cron schedule %q: %w", expr, err)
	}
	return sched, nil
}

// RetentionJob prunes journal entries older than the retention window on a
// cron schedule.
type RetentionJob struct {
	pruner    journal.Pruner
	schedule  cron.Schedule
	retention time.Duration
	now       func() time.Time
}

// NewRetentionJob parses expr and returns a job ready to Run.
func NewRetentionJob(pruner journal.Pruner, expr string, retention time.Duration) (*RetentionJob, error) {
	sched, err := ParseSchedule(expr)
	if err != nil {
		return nil, err
	}
	if retention <= 0 {
		return nil, fmt.Errorf("retention must be positive, got %s", retention)
	}
	return &RetentionJob{
		pruner:    pruner,
		schedule:  sched,
		retention: retention,
		now:       time.Now,
	}, nil
}

// Next returns the next scheduled run after t.
func (j *RetentionJob) Next(t time.Time) time.Time {
	return j.schedule.Next(t)
}

// PruneOnce removes everything created before now minus the retention window.
func (j *RetentionJob) PruneOnce(ctx context.Context) (int64, error) {
	cutoff := j.now().Add(-j.retention)
	n, err := j.pruner.PruneBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune journal: %w", err)
	}
	slog.InfoContext(ctx, "Journal retention completed",
		"removed", n,
		"cutoff", cutoff.Format(time.RFC3339))
	return n, nil
}

// Run blocks, pruning at every scheduled time until ctx is cancelled.
func (j *RetentionJob) Run(ctx context.Context) error {
	for {
		now := j.now()
		next := j.schedule.Next(now)
		wait := next.Sub(now)
		slog.InfoContext(ctx, "Next journal retention run",
			"at", next.Format("Mon Jan 2 15:04"),
			"in", wait.Round(time.Minute).String())

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		if _, err := j.PruneOnce(ctx); err != nil {
			slog.ErrorContext(ctx, "Journal retention failed", "error", err)
		}
	}
}
