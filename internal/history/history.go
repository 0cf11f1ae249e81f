// Package history keeps a bounded per-session log of conversation turns.
// The session identifier is an opaque token minted by the HTTP layer and
// round-tripped by the client; this store only uses it as a key.
package history

import (
	"strings"
	"sync"
)

// DefaultWindow is the number of turn-pairs kept per session.
const DefaultWindow = 4

// Turn is one completed question/answer pair. Storing the pair as the
// unit keeps the log structurally aligned: there is no way to persist a
// question without its answer.
type Turn struct {
	Question string
	Answer   string
}

// Store holds session histories in memory. Sessions are never explicitly
// destroyed; they expire with the process, matching the enclosing
// session's own lifetime.
type Store struct {
	mu       sync.Mutex
	window   int
	sessions map[string][]Turn
}

// NewStore creates a Store keeping at most window turn-pairs per session.
func NewStore(window int) *Store {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Store{
		window:   window,
		sessions: make(map[string][]Turn),
	}
}

// Append records one completed turn and truncates the session to the most
// recent window turns. The whole read-append-truncate runs under one lock,
// so two requests racing on the same session both land before truncation.
func (s *Store) Append(sessionID string, turn Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := append(s.sessions[sessionID], turn)
	if len(turns) > s.window {
		turns = turns[len(turns)-s.window:]
	}
	s.sessions[sessionID] = turns
}

// Get returns a copy of the session's turns, oldest first.
func (s *Store) Get(sessionID string) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := s.sessions[sessionID]
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}

// Render flattens turns into the alternating transcript block the prompt
// templates embed.
func Render(turns []Turn) string {
	if len(turns) == 0 {
		return ""
	}
	var b strings.Builder
	for _, turn := range turns {
		b.WriteString("Pergunta: ")
		b.WriteString(turn.Question)
		b.WriteString("\nResposta: ")
		b.WriteString(turn.Answer)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// FromMessages rebuilds turns from a flat alternating user/assistant log,
// as imported from an external transcript. An odd-length log has its
// dangling question dropped rather than failing the request.
func FromMessages(messages []string) []Turn {
	if len(messages)%2 != 0 {
		messages = messages[:len(messages)-1]
	}
	turns := make([]Turn, 0, len(messages)/2)
	for i := 0; i+1 < len(messages); i += 2 {
		turns = append(turns, Turn{Question: messages[i], Answer: messages[i+1]})
	}
	return turns
}
