// Package journal records metadata about upload attempts: which module, which
// file, how it went. It never stores file content or analytics results.
package journal

import (
	"context"
	"time"

	"github.com/google/uuid"

	"bizai/internal/core"
)

// Outcome of an upload attempt.
const (
	OutcomeLoaded = "loaded"
	OutcomeError  = "error"
)

// Entry is one upload attempt.
type Entry struct {
	ID        string
	Module    core.Module
	FileName  string
	SizeBytes int64
	Source    core.UploadSource
	Outcome   string
	Error     string
	Duration  time.Duration
	CreatedAt time.Time
}

// NewEntry fills ID and CreatedAt.
func NewEntry(module core.Module, file core.File, source core.UploadSource) Entry {
	return Entry{
		ID:        uuid.NewString(),
		Module:    module,
		FileName:  file.Name,
		SizeBytes: file.Size,
		Source:    source,
		CreatedAt: time.Now().UTC(),
	}
}

// Succeeded reports whether the attempt reached the loaded state.
func (e Entry) Succeeded() bool { return e.Outcome == OutcomeLoaded }

// Recorder stores upload entries.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// Lister returns the most recent entries, newest first.
type Lister interface {
	Recent(ctx context.Context, limit int) ([]Entry, error)
}

// Pruner removes entries created before a cutoff and reports how many went.
type Pruner interface {
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Store is the full journal surface used by the server.
type Store interface {
	Recorder
	Lister
	Pruner
}

// Counts tallies entries by module and outcome.
func Counts(entries []Entry) map[core.Module]map[string]int {
	out := make(map[core.Module]map[string]int)
	for _, e := range entries {
		byOutcome, ok := out[e.Module]
		if !ok {
			byOutcome = make(map[string]int)
			out[e.Module] = byOutcome
		}
		byOutcome[e.Outcome]++
	}
	return out
}
