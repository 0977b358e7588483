package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"bizai/internal/core"
	"bizai/internal/journal"
)

// UploadEventMessage announces one upload attempt. It carries the journal
// metadata only; file content and analytics results never leave the server.
type UploadEventMessage struct {
	ID         string    `json:"id"`
	Module     string    `json:"module"`
	FileName   string    `json:"file_name"`
	SizeBytes  int64     `json:"size_bytes"`
	Source     string    `json:"source"`
	Outcome    string    `json:"outcome"`
	Error      string    `json:"error,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewUploadEventMessage builds a message from a journal entry.
func NewUploadEventMessage(e journal.Entry) *UploadEventMessage {
	return &UploadEventMessage{
		ID:         e.ID,
		Module:     e.Module.String(),
		FileName:   e.FileName,
		SizeBytes:  e.SizeBytes,
		Source:     e.Source.String(),
		Outcome:    e.Outcome,
		Error:      e.Error,
		DurationMs: e.Duration.Milliseconds(),
		CreatedAt:  e.CreatedAt,
		Timestamp:  time.Now(),
	}
}

// Entry converts the message back to a journal entry.
func (m *UploadEventMessage) Entry() journal.Entry {
	return journal.Entry{
		ID:        m.ID,
		Module:    core.Module(m.Module),
		FileName:  m.FileName,
		SizeBytes: m.SizeBytes,
		Source:    core.UploadSource(m.Source),
		Outcome:   m.Outcome,
		Error:     m.Error,
		Duration:  time.Duration(m.DurationMs) * time.Millisecond,
		CreatedAt: m.CreatedAt,
	}
}

// ToJSON converts the message to JSON bytes
func (m *UploadEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// UploadEventMessageFromJSON decodes and validates a message body.
func UploadEventMessageFromJSON(data []byte) (*UploadEventMessage, error) {
	var msg UploadEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == "" {
		return nil, fmt.Errorf("upload event without id")
	}
	return &msg, nil
}
