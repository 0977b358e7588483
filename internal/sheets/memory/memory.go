// Package memory is an in-process UploadExporter used when no spreadsheet is
// configured and in tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"bizai/internal/journal"
	ports "bizai/internal/sheets"
)

type Store struct {
	mu   sync.Mutex
	rows [][]any
}

var _ ports.UploadExporter = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// ExportUpload stores the row and returns a synthetic row reference.
func (s *Store) ExportUpload(_ context.Context, e journal.Entry) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, ports.Row(e))
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Rows returns a copy of the exported rows.
func (s *Store) Rows() [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]any, len(s.rows))
	copy(out, s.rows)
	return out
}
