package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// healthResponse is the JSON body of the /health endpoint.
type healthResponse struct {
	Status    string `json:"status"`
	Index     string `json:"index"`
	Timestamp string `json:"timestamp"`
}

// handleHealth probes the index backend and reports connectivity.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	err := s.index.Health(ctx)

	resp := healthResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")

	if err != nil {
		resp.Status = "unhealthy"
		resp.Index = "disconnected"
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(resp)
		return
	}

	resp.Status = "healthy"
	resp.Index = "connected"
	_ = json.NewEncoder(w).Encode(resp)
}
