package cache

import (
	"sync"
	"testing"
	"time"
)

func TestLRUCache_GetSetEvict(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	if _, ok := c.Get("a"); !ok { // a becomes most recent
		t.Fatal("expected a present")
	}
	c.Set("c", 3) // evicts b

	if _, ok := c.Get("b"); ok {
		t.Error("expected b evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v", v, ok)
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}
}

func TestLRUCache_Expiry(t *testing.T) {
	c := NewLRUCache[string](10, time.Minute)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("k", "v")
	now = now.Add(2 * time.Minute)

	if _, ok := c.Get("k"); ok {
		t.Error("expected expired entry to be missing")
	}

	c.Set("x", "1")
	c.Set("y", "2")
	now = now.Add(2 * time.Minute)
	if n := c.CleanExpired(); n != 2 {
		t.Errorf("CleanExpired() = %d, want 2", n)
	}
}

func TestLRUCache_Update(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)

	got := c.Update("n", func(cur int, found bool) (int, bool) {
		if found {
			t.Error("expected missing key on first update")
		}
		return cur + 1, true
	})
	if got != 1 {
		t.Errorf("first Update = %d, want 1", got)
	}

	c.Update("n", func(cur int, found bool) (int, bool) { return cur + 1, true })
	if v, _ := c.Get("n"); v != 2 {
		t.Errorf("after second Update = %d, want 2", v)
	}

	c.Update("n", func(cur int, found bool) (int, bool) { return 0, false })
	if _, ok := c.Get("n"); ok {
		t.Error("expected key removed when keep=false")
	}
}

func TestLRUCache_ConcurrentUpdate(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Update("counter", func(cur int, _ bool) (int, bool) { return cur + 1, true })
		}()
	}
	wg.Wait()

	if v, _ := c.Get("counter"); v != 50 {
		t.Errorf("counter = %d, want 50", v)
	}
}

func TestManager_Sweep(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)
	now := time.Now()
	c.now = func() time.Time { return now }
	c.Set("a", 1)
	now = now.Add(time.Hour)

	m := NewManager(nil)
	m.Register("sessions", c)
	removed := m.Sweep()
	if removed["sessions"] != 1 {
		t.Errorf("Sweep() removed = %v", removed)
	}

	m.StartCleanup(time.Hour)
	m.Stop()
	m.Stop() // idempotent
}
