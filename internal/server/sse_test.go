package server

import (
	"bufio"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventWriter_SetsStreamingHeaders(t *testing.T) {
	rec := httptest.NewRecorder()

	_, err := NewEventWriter(rec)
	require.NoError(t, err)

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "no", rec.Header().Get("X-Accel-Buffering"))
}

func TestEventWriter_FramesEventsAsDataLines(t *testing.T) {
	rec := httptest.NewRecorder()
	ew, err := NewEventWriter(rec)
	require.NoError(t, err)

	require.NoError(t, ew.Send(Event{Type: eventStart}))
	require.NoError(t, ew.Send(Event{Type: eventChunk, Content: "Olá"}))

	events := decodeEvents(t, rec.Body.String())
	require.Len(t, events, 2)
	assert.Equal(t, eventStart, events[0].Type)
	assert.Equal(t, eventChunk, events[1].Type)
	assert.Equal(t, "Olá", events[1].Content)
}

// decodedEvent mirrors Event with a decoded JSON payload.
type decodedEvent struct {
	Type    string `json:"type"`
	Content any    `json:"content"`
}

// decodeEvents parses an SSE body into its typed events.
func decodeEvents(t *testing.T, body string) []decodedEvent {
	t.Helper()

	var events []decodedEvent
	scanner := bufio.NewScanner(strings.NewReader(body))
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev decodedEvent
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev))
		events = append(events, ev)
	}
	require.NoError(t, scanner.Err())
	return events
}
