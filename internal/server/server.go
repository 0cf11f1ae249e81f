// Package server is the HTTP façade: it accepts questions, streams
// answers back as typed SSE events, mints the opaque session token and
// exposes the manifest's topics for discovery UIs.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/AbnerMSaconi/UCDB-IA/internal/chain"
	"github.com/AbnerMSaconi/UCDB-IA/internal/history"
)

// sessionCookie round-trips the opaque session identifier. The core never
// validates it; it is only a history key.
const sessionCookie = "ucdb_session"

// Pinger is the health probe the index backend provides.
type Pinger interface {
	Health(ctx context.Context) error
}

// Server owns the HTTP routes and their dependencies.
type Server struct {
	system      *chain.System
	history     *history.Store
	index       Pinger
	streamDelay time.Duration
	logger      *slog.Logger
}

// Config holds the server's dependencies.
type Config struct {
	System      *chain.System
	History     *history.Store
	Index       Pinger
	StreamDelay time.Duration
	Logger      *slog.Logger
}

// New creates the server and its route table.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		system:      cfg.System,
		history:     cfg.History,
		index:       cfg.Index,
		streamDelay: cfg.StreamDelay,
		logger:      logger,
	}
}

// Register installs the chat routes on mux. Callers may add further
// routes (landing page, MCP transport) on the same mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("GET /topics", s.handleTopics)
	mux.HandleFunc("GET /health", s.handleHealth)
}

// Handler returns a route table with only the chat routes installed.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	return mux
}

// HTTPServer wraps the handler in an http.Server tuned for streaming:
// WriteTimeout stays zero because SSE responses outlive any fixed bound.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// sessionID returns the request's session token, minting and setting one
// on first contact.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// handleTopics lists the distinct topic labels of the indexed corpus.
func (s *Server) handleTopics(w http.ResponseWriter, r *http.Request) {
	topics := s.system.Topics()
	if topics == nil {
		topics = []string{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"topics": topics})
}

func historyTurn(question, answer string) history.Turn {
	return history.Turn{Question: question, Answer: answer}
}
