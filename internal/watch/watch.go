// Package watch uploads CSV files as they land in a drop folder.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"bizai/internal/core"
	"bizai/internal/log"
)

// DefaultSettle is how long a file must stay quiet before it is handed on.
// Copies into the folder arrive as several write events.
const DefaultSettle = 500 * time.Millisecond

// FileFunc receives every accepted file. Content is open only for the
// duration of the call.
type FileFunc func(ctx context.Context, f core.File) error

// Watcher feeds files created in one directory through the drop rule of the
// upload control: only names ending in ".csv" are passed on.
type Watcher struct {
	dir    string
	onFile FileFunc
	settle time.Duration
	logger *log.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer
	ready   chan string
	done    chan struct{}
}

// New creates a watcher for dir.
func New(dir string, onFile FileFunc, logger *log.Logger) *Watcher {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Watcher{
		dir:     dir,
		onFile:  onFile,
		settle:  DefaultSettle,
		logger:  logger.WithComponent(log.ComponentWatch),
		pending: make(map[string]*time.Timer),
		ready:   make(chan string, 16),
	}
}

// WithSettle overrides DefaultSettle.
func (w *Watcher) WithSettle(d time.Duration) *Watcher {
	if d > 0 {
		w.settle = d
	}
	return w
}

// Run blocks until ctx is cancelled. Files are handled one at a time in the
// order they settle.
func (w *Watcher) Run(ctx context.Context) error {
	info, err := os.Stat(w.dir)
	if err != nil {
		return fmt.Errorf("drop folder: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("drop folder %s is not a directory", w.dir)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		if err := fw.Close(); err != nil {
			w.logger.Warn("Failed to close watcher", log.FieldError, err)
		}
	}()
	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	w.done = make(chan struct{})
	defer w.stop()

	w.logger.InfoContext(ctx, "Watching drop folder", "dir", w.dir)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
				w.schedule(event.Name)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			w.logger.WarnContext(ctx, "Watcher error", log.FieldError, err)

		case path := <-w.ready:
			w.process(ctx, path)
		}
	}
}

// schedule (re)starts the settle timer of path.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		if w.pending[path] == t {
			delete(w.pending, path)
		}
		w.mu.Unlock()

		select {
		case w.ready <- path:
		case <-w.done:
		}
	})
	w.pending[path] = t
}

func (w *Watcher) stop() {
	w.mu.Lock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()
	close(w.done)
}

func (w *Watcher) process(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		// removed again before it settled, or a subfolder
		return
	}

	fh, err := os.Open(path)
	if err != nil {
		w.logger.WarnContext(ctx, "Cannot open dropped file", log.FieldError, err, log.FieldFileName, path)
		return
	}
	defer fh.Close()

	f := core.File{Name: filepath.Base(path), Size: info.Size(), Content: fh}
	var uploadErr error
	control := core.UploadControl{OnUpload: func(f core.File) {
		uploadErr = w.onFile(ctx, f)
	}}
	if !control.Drop(&f) {
		w.logger.DebugContext(ctx, "Ignoring non-CSV file", log.FieldFileName, f.Name)
		return
	}
	if uploadErr != nil {
		w.logger.WarnContext(ctx, "Dropped file upload failed",
			log.FieldError, uploadErr,
			log.FieldFileName, f.Name,
			log.FieldOperation, log.OpUpload)
	}
}
