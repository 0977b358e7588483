package journal

import (
	"context"
	"sync"
	"time"
)

// DefaultCapacity bounds the in-memory journal.
const DefaultCapacity = 500

// MemoryStore keeps the newest entries in a fixed-size ring.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
	next    int
	full    bool
}

// NewMemoryStore returns a ring of the given capacity.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryStore{entries: make([]Entry, capacity)}
}

// Record implements Recorder.
func (s *MemoryStore) Record(_ context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[s.next] = e
	s.next = (s.next + 1) % len(s.entries)
	if s.next == 0 {
		s.full = true
	}
	return nil
}

// Recent implements Lister.
func (s *MemoryStore) Recent(_ context.Context, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := s.lenLocked()
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]Entry, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (s.next - i + len(s.entries)) % len(s.entries)
		out = append(out, s.entries[idx])
	}
	return out, nil
}

// PruneBefore implements Pruner.
func (s *MemoryStore) PruneBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.lenLocked()
	kept := make([]Entry, 0, n)
	// oldest first so the ring order is preserved on rebuild
	for i := n; i >= 1; i-- {
		idx := (s.next - i + len(s.entries)) % len(s.entries)
		if !s.entries[idx].CreatedAt.Before(cutoff) {
			kept = append(kept, s.entries[idx])
		}
	}

	removed := int64(n - len(kept))
	if removed == 0 {
		return 0, nil
	}

	s.entries = make([]Entry, len(s.entries))
	copy(s.entries, kept)
	s.next = len(kept) % len(s.entries)
	s.full = len(kept) == len(s.entries)
	return removed, nil
}

// Len returns the number of stored entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lenLocked()
}

func (s *MemoryStore) lenLocked() int {
	if s.full {
		return len(s.entries)
	}
	return s.next
}
