package journal

import (
	"context"
	"errors"
	"testing"
	"time"

	"bizai/internal/core"
)

func entryAt(id string, at time.Time) Entry {
	return Entry{ID: id, Module: core.ModuleFraud, Outcome: OutcomeLoaded, CreatedAt: at}
}

func TestMemoryStore_RecentNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(3)
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c", "d"} {
		if err := s.Record(ctx, entryAt(id, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"d", "c", "b"}
	if len(got) != len(want) {
		t.Fatalf("Recent() len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Errorf("Recent()[%d] = %s, want %s", i, got[i].ID, want[i])
		}
	}

	got, _ = s.Recent(ctx, 1)
	if len(got) != 1 || got[0].ID != "d" {
		t.Errorf("Recent(1) = %+v", got)
	}
}

func TestMemoryStore_PruneBefore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(4)
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c", "d", "e"} {
		_ = s.Record(ctx, entryAt(id, base.Add(time.Duration(i)*time.Hour)))
	}

	removed, err := s.PruneBefore(ctx, base.Add(3*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if removed != 2 { // b, c
		t.Errorf("PruneBefore() removed = %d, want 2", removed)
	}
	got, _ := s.Recent(ctx, 0)
	if len(got) != 2 || got[0].ID != "e" || got[1].ID != "d" {
		t.Errorf("after prune Recent() = %+v", got)
	}

	_ = s.Record(ctx, entryAt("f", base.Add(6*time.Hour)))
	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}
}

type fakePublisher struct {
	published []string
	err       error
}

func (p *fakePublisher) PublishUploadEvent(_ context.Context, e Entry) error {
	p.published = append(p.published, e.ID)
	return p.err
}

func TestPublishingStore(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore(10)
	pub := &fakePublisher{err: errors.New("broker down")}
	s := NewPublishingStore(inner, pub, nil)

	if err := s.Record(ctx, entryAt("x", time.Now())); err != nil {
		t.Fatalf("Record() error = %v, want publish failure swallowed", err)
	}
	if len(pub.published) != 1 {
		t.Errorf("published = %v", pub.published)
	}
	if inner.Len() != 1 {
		t.Errorf("inner Len() = %d, want 1", inner.Len())
	}
}

func TestNewEntryAndCounts(t *testing.T) {
	e := NewEntry(core.ModuleExpense, core.File{Name: "q1.csv", Size: 42}, core.SourceDrop)
	if e.ID == "" || e.CreatedAt.IsZero() {
		t.Fatalf("NewEntry() = %+v", e)
	}
	if e.FileName != "q1.csv" || e.SizeBytes != 42 || e.Source != core.SourceDrop {
		t.Errorf("NewEntry() fields = %+v", e)
	}

	counts := Counts([]Entry{
		{Module: core.ModuleExpense, Outcome: OutcomeLoaded},
		{Module: core.ModuleExpense, Outcome: OutcomeError},
		{Module: core.ModuleExpense, Outcome: OutcomeLoaded},
	})
	if counts[core.ModuleExpense][OutcomeLoaded] != 2 || counts[core.ModuleExpense][OutcomeError] != 1 {
		t.Errorf("Counts() = %v", counts)
	}
	if len(counts[core.ModuleFraud]) != 0 {
		t.Errorf("Counts() has fraud entries: %v", counts[core.ModuleFraud])
	}

	if !(Entry{Outcome: OutcomeLoaded}).Succeeded() || (Entry{Outcome: OutcomeError}).Succeeded() {
		t.Error("Succeeded() does not follow the outcome")
	}
}
