package watch

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"bizai/internal/core"
	"bizai/internal/log"
)

func quietLogger() *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Output = io.Discard
	return log.New(cfg)
}

type received struct {
	mu    sync.Mutex
	files map[string]string
	got   chan string
}

func newReceived() *received {
	return &received{files: make(map[string]string), got: make(chan string, 8)}
}

func (r *received) handle(_ context.Context, f core.File) error {
	body, err := io.ReadAll(f.Content)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.files[f.Name] = string(body)
	r.mu.Unlock()
	r.got <- f.Name
	return nil
}

func startWatcher(t *testing.T, dir string, fn FileFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	w := New(dir, fn, quietLogger()).WithSettle(50 * time.Millisecond)
	go func() { errc <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-errc; err != nil {
			t.Errorf("Run() error = %v", err)
		}
	})
	// let the watch register before files are created
	time.Sleep(100 * time.Millisecond)
}

func TestWatcher_UploadsOnlyCSV(t *testing.T) {
	dir := t.TempDir()
	rec := newReceived()
	startWatcher(t, dir, rec.handle)

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "Sales.CSV"), []byte("a,b\n1,2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case name := <-rec.got:
		if name != "Sales.CSV" {
			t.Fatalf("uploaded %q, want Sales.CSV", name)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for upload")
	}

	select {
	case name := <-rec.got:
		t.Errorf("unexpected second upload %q", name)
	case <-time.After(300 * time.Millisecond):
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.files["Sales.CSV"] != "a,b\n1,2\n" {
		t.Errorf("content = %q", rec.files["Sales.CSV"])
	}
}

func TestWatcher_HandlerErrorKeepsWatching(t *testing.T) {
	dir := t.TempDir()
	calls := make(chan string, 4)
	startWatcher(t, dir, func(_ context.Context, f core.File) error {
		calls <- f.Name
		return errors.New("backend down")
	})

	for _, name := range []string{"a.csv", "b.csv"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		select {
		case got := <-calls:
			if got != name {
				t.Errorf("got %q, want %q", got, name)
			}
		case <-time.After(3 * time.Second):
			t.Fatalf("timed out waiting for %s", name)
		}
	}
}

func TestWatcher_MissingDir(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "nope"), func(context.Context, core.File) error { return nil }, quietLogger())
	if err := w.Run(context.Background()); err == nil {
		t.Error("expected error for a missing folder")
	}
}
