package sheets

import (
	"context"

	"bizai/internal/journal"
)

// Ports for outbound adapters.
type (
	// UploadExporter appends journal entries to an external activity log.
	UploadExporter interface {
		ExportUpload(ctx context.Context, e journal.Entry) (rowRef string, err error)
	}
)

// Header is the column layout written by every exporter.
var Header = []string{"ID", "Date", "Module", "File", "Size (bytes)", "Source", "Outcome", "Error", "Duration (ms)"}

// Row renders an entry in Header order.
func Row(e journal.Entry) []any {
	return []any{
		e.ID,
		e.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		e.Module.String(),
		e.FileName,
		e.SizeBytes,
		e.Source.String(),
		e.Outcome,
		e.Error,
		e.Duration.Milliseconds(),
	}
}
