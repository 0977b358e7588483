package amqp

import (
	"context"
	"errors"
	"testing"
	"time"

	"bizai/internal/core"
	"bizai/internal/journal"
)

type fakeAck struct {
	acked   int
	nacked  int
	requeue bool
}

func (f *fakeAck) Ack(bool) error { f.acked++; return nil }

func (f *fakeAck) Nack(_ bool, requeue bool) error {
	f.nacked++
	f.requeue = requeue
	return nil
}

func sampleEntry() journal.Entry {
	return journal.Entry{
		ID:        "3f1c",
		Module:    core.ModuleGreenGrid,
		FileName:  "usage.csv",
		SizeBytes: 2048,
		Source:    core.SourceDrop,
		Outcome:   journal.OutcomeLoaded,
		Duration:  250 * time.Millisecond,
		CreatedAt: time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestUploadEventMessage_RoundTrip(t *testing.T) {
	body, err := NewUploadEventMessage(sampleEntry()).ToJSON()
	if err != nil {
		t.Fatal(err)
	}
	msg, err := UploadEventMessageFromJSON(body)
	if err != nil {
		t.Fatal(err)
	}

	got := msg.Entry()
	want := sampleEntry()
	if got.ID != want.ID || got.Module != want.Module || got.Source != want.Source {
		t.Errorf("Entry() = %+v, want %+v", got, want)
	}
	if got.Duration != want.Duration || !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("Entry() timing = %v/%v", got.Duration, got.CreatedAt)
	}
}

func TestUploadEventMessageFromJSON_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "nope"},
		{"missing id", `{"module":"fraud"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := UploadEventMessageFromJSON([]byte(tt.body)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestProcess_Settlement(t *testing.T) {
	ctx := context.Background()
	valid, _ := NewUploadEventMessage(sampleEntry()).ToJSON()

	tests := []struct {
		name        string
		body        []byte
		handlerErr  error
		wantAck     int
		wantNack    int
		wantRequeue bool
	}{
		{"success acks", valid, nil, 1, 0, false},
		{"handler failure requeues", valid, errors.New("sheets down"), 0, 1, true},
		{"bad body is dropped", []byte("{"), nil, 0, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &fakeAck{}
			calls := 0
			process(ctx, tt.body, ack, func(context.Context, *UploadEventMessage) error {
				calls++
				return tt.handlerErr
			})
			if ack.acked != tt.wantAck || ack.nacked != tt.wantNack || ack.requeue != tt.wantRequeue {
				t.Errorf("ack=%d nack=%d requeue=%v", ack.acked, ack.nacked, ack.requeue)
			}
			if tt.wantNack == 1 && !tt.wantRequeue && calls != 0 {
				t.Error("handler called for undecodable body")
			}
		})
	}
}
