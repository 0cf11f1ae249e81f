package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/AbnerMSaconi/UCDB-IA/internal/chain"
	"github.com/AbnerMSaconi/UCDB-IA/internal/history"
)

// chatRequest is the POST /chat body. Stateless clients that keep no
// session cookie may replay their transcript as a flat question/answer
// list instead.
type chatRequest struct {
	Message string   `json:"message"`
	History []string `json:"history,omitempty"`
}

// greetings short-circuit small talk: no retrieval, no generation call.
var greetings = map[string]bool{
	"ola":     true,
	"olá":     true,
	"oi":      true,
	"bom dia": true,
	"boa tarde": true,
	"boa noite": true,
	"hello":   true,
	"hi":      true,
}

const greetingReply = "Olá! Como posso ajudar você hoje? 😊"

// Caller-facing failure messages. Internal error details are logged, not
// echoed.
const (
	msgEmptyMessage     = "Mensagem vazia"
	msgIndexUnavailable = "Sistema de consulta não está disponível. Verifique os documentos e o LLM."
	msgServerError      = "Ocorreu um erro no servidor. Tente novamente."
)

// handleChat answers one question over a one-directional SSE stream. The
// stream always carries exactly one terminal event: `complete` on success
// or `error` after any failure, including panics in the pipeline.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	sessionID := s.sessionID(w, r)

	ew, err := NewEventWriter(w)
	if err != nil {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	// `start` goes out before any retrieval or generation work so the
	// client can show a pending indicator immediately.
	if err := ew.Send(Event{Type: eventStart}); err != nil {
		return
	}

	terminated := false
	fail := func(message string) {
		if terminated {
			return
		}
		terminated = true
		_ = ew.Send(Event{Type: eventError, Content: message})
	}
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("panic in chat pipeline", "panic", rec)
			fail(msgServerError)
		}
	}()

	question := strings.TrimSpace(req.Message)
	if question == "" {
		fail(msgEmptyMessage)
		return
	}

	if isGreeting(question) {
		s.streamText(r, ew, greetingReply)
		_ = ew.Send(Event{Type: eventComplete})
		return
	}

	s.logger.Info("question received", "session", sessionID, "chars", len(question))

	turns := s.history.Get(sessionID)
	if len(turns) == 0 && len(req.History) > 0 {
		turns = history.FromMessages(req.History)
	}
	answer, err := s.system.Ask(r.Context(), question, turns)
	if err != nil {
		s.logger.Error("answer pipeline failed", "session", sessionID, "error", err)
		if errors.Is(err, chain.ErrIndexUnavailable) {
			fail(msgIndexUnavailable)
		} else {
			fail(msgServerError)
		}
		return
	}

	// Citations precede the text so the client can render them
	// alongside the streamed answer.
	if len(answer.Passages) > 0 {
		if err := ew.Send(Event{Type: eventSourceChunks, Content: answer.Passages}); err != nil {
			return
		}
	}

	if !s.streamText(r, ew, answer.Text) {
		return
	}

	if len(answer.Sources) > 0 {
		if err := ew.Send(Event{Type: eventSources, Content: answer.Sources}); err != nil {
			return
		}
	}

	s.history.Append(sessionID, historyTurn(question, answer.Text))

	terminated = true
	_ = ew.Send(Event{Type: eventComplete})
}

// streamText delivers the answer as accumulated prefixes cut at word
// boundaries, with a small delay between events so the client renders
// progressively. Each chunk payload is the full text so far, not a delta.
// Returns false when the client went away.
func (s *Server) streamText(r *http.Request, ew *EventWriter, text string) bool {
	runes := []rune(text)
	for i := 1; i < len(runes); i++ {
		if !unicode.IsSpace(runes[i]) || unicode.IsSpace(runes[i-1]) {
			continue
		}
		if err := ew.Send(Event{Type: eventChunk, Content: string(runes[:i])}); err != nil {
			return false
		}
		if s.streamDelay > 0 {
			select {
			case <-r.Context().Done():
				return false
			case <-time.After(s.streamDelay):
			}
		}
	}
	return ew.Send(Event{Type: eventChunk, Content: text}) == nil
}

func isGreeting(message string) bool {
	normalized := strings.ToLower(strings.TrimSpace(message))
	normalized = strings.TrimRight(normalized, "?!.")
	return greetings[strings.TrimSpace(normalized)]
}
