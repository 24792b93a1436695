package audit

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Event is the canonical diagnostic record emitted by the session layer.
// It carries token metadata only — presence, length, decoded expiry —
// never raw token values.
type Event struct {
	ID                  string            `json:"id,omitempty"`
	Timestamp           time.Time         `json:"timestamp"`
	EventType           string            `json:"event_type"`
	RequestID           string            `json:"request_id,omitempty"`
	StatusCode          int               `json:"status_code,omitempty"`
	AccessTokenPresent  bool              `json:"access_token_present"`
	AccessTokenLength   int               `json:"access_token_length,omitempty"`
	RefreshTokenPresent bool              `json:"refresh_token_present"`
	ExpiresAt           int64             `json:"expires_at,omitempty"`
	Error               string            `json:"error,omitempty"`
	Metadata            map[string]string `json:"metadata,omitempty"`
}

// Sink receives emitted diagnostic events.
type Sink interface {
	Emit(ctx context.Context, event Event)
}

// NoOpSink drops diagnostic events.
type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, Event) {}

// ChannelSink writes diagnostic events into a buffered channel.
type ChannelSink struct {
	events chan Event
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan Event, buffer),
	}
}

func (s *ChannelSink) Emit(ctx context.Context, event Event) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

func (s *ChannelSink) Events() <-chan Event {
	return s.events
}

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

func (s *JSONWriterSink) Emit(ctx context.Context, event Event) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}
