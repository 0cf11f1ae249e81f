package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Event is one typed message of the streaming delivery protocol. A
// request's stream is `start → [source_chunks] → chunk* → [sources] →
// complete`, or ends with a single `error` after any failure.
type Event struct {
	Type    string `json:"type"`
	Content any    `json:"content,omitempty"`
}

// Event type names, fixed by the client contract.
const (
	eventStart        = "start"
	eventSourceChunks = "source_chunks"
	eventChunk        = "chunk"
	eventSources      = "sources"
	eventComplete     = "complete"
	eventError        = "error"
)

// EventWriter frames Events as Server-Sent Events and flushes each one so
// the client sees progress as it happens.
type EventWriter struct {
	w       io.Writer
	flusher http.Flusher
}

// NewEventWriter prepares a response for SSE streaming.
func NewEventWriter(w http.ResponseWriter) (*EventWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support flushing")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // disable nginx buffering

	return &EventWriter{w: w, flusher: flusher}, nil
}

// Send writes one event as a JSON payload on a data line. The payload is
// a single JSON object, so no multi-line framing is needed.
func (ew *EventWriter) Send(event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if _, err := fmt.Fprintf(ew.w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	ew.flusher.Flush()
	return nil
}
