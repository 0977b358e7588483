// Package storage is the SQLite implementation of the upload journal.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"bizai/internal/core"
	"bizai/internal/journal"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the connection; used by the readiness probe.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

const insertEntry = `
INSERT INTO upload_journal (id, module, file_name, size_bytes, source, outcome, error, duration_ms, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO NOTHING`

// Record implements journal.Recorder. Re-recording an ID is a no-op.
func (r *SQLiteRepository) Record(ctx context.Context, e journal.Entry) error {
	_, err := r.db.ExecContext(ctx, insertEntry,
		e.ID,
		e.Module.String(),
		e.FileName,
		e.SizeBytes,
		e.Source.String(),
		e.Outcome,
		e.Error,
		e.Duration.Milliseconds(),
		e.CreatedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}

	slog.DebugContext(ctx, "Upload entry saved to SQLite",
		"entry_id", e.ID,
		"module", e.Module.String(),
		"outcome", e.Outcome)
	return nil
}

const selectRecent = `
SELECT id, module, file_name, size_bytes, source, outcome, error, duration_ms, created_at
FROM upload_journal
ORDER BY created_at DESC, id DESC
LIMIT ?`

// Recent implements journal.Lister.
func (r *SQLiteRepository) Recent(ctx context.Context, limit int) ([]journal.Entry, error) {
	if limit <= 0 {
		limit = -1 // sqlite: no limit
	}
	rows, err := r.db.QueryContext(ctx, selectRecent, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent entries: %w", err)
	}
	defer rows.Close()

	var out []journal.Entry
	for rows.Next() {
		var (
			e                journal.Entry
			module, source   string
			durationMs, atMs int64
		)
		if err := rows.Scan(&e.ID, &module, &e.FileName, &e.SizeBytes, &source, &e.Outcome, &e.Error, &durationMs, &atMs); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		e.Module = core.Module(module)
		e.Source = core.UploadSource(source)
		e.Duration = time.Duration(durationMs) * time.Millisecond
		e.CreatedAt = time.UnixMilli(atMs).UTC()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal entries: %w", err)
	}
	return out, nil
}

// PruneBefore implements journal.Pruner.
func (r *SQLiteRepository) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM upload_journal WHERE created_at < ?`, cutoff.UTC().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("prune journal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune journal rows affected: %w", err)
	}
	return n, nil
}

// MarkExported stamps an entry as copied to the spreadsheet. It returns false
// when the entry was already exported or does not exist.
func (r *SQLiteRepository) MarkExported(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE upload_journal SET exported_at = ? WHERE id = ? AND exported_at IS NULL`,
		at.UTC().UnixMilli(), id)
	if err != nil {
		return false, fmt.Errorf("mark exported: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark exported rows affected: %w", err)
	}
	return n > 0, nil
}

// PendingExport counts entries not yet copied to the spreadsheet.
func (r *SQLiteRepository) PendingExport(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM upload_journal WHERE exported_at IS NULL`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count pending export: %w", err)
	}
	return n, nil
}

// IsExported reports whether the entry has already been copied to the spreadsheet.
func (r *SQLiteRepository) IsExported(ctx context.Context, id string) (bool, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM upload_journal WHERE id = ? AND exported_at IS NOT NULL`, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check exported: %w", err)
	}
	return n > 0, nil
}
