package chain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/AbnerMSaconi/UCDB-IA/internal/history"
	"github.com/AbnerMSaconi/UCDB-IA/internal/index"
)

// System coordinates the retrieval-augmented pipeline behind a run-once
// initialization gate. Initialization (corpus ingestion) happens on the
// first request, exactly once per process; both success and failure are
// memoized so repeated requests never retry an expensive failing sync.
type System struct {
	once     sync.Once
	initErr  error
	ingestor *index.Ingestor
	manifest *index.Manifest
	chain    *Chain
	logger   *slog.Logger
}

// NewSystem wires the coordinator. The chain is only usable after Ready
// reports success.
func NewSystem(ingestor *index.Ingestor, manifest *index.Manifest, c *Chain, logger *slog.Logger) *System {
	if logger == nil {
		logger = slog.Default()
	}
	return &System{
		ingestor: ingestor,
		manifest: manifest,
		chain:    c,
		logger:   logger,
	}
}

// Ready initializes the index on first call and reports the memoized
// outcome thereafter. Concurrent callers block until the single
// initialization run finishes.
func (s *System) Ready(ctx context.Context) error {
	s.once.Do(func() {
		s.logger.Info("initializing retrieval system")

		// Ingestion serves the whole process, not the request that
		// happened to trigger it. Detach from the caller's context so a
		// client disconnect mid-sync cannot poison the memoized outcome
		// for every later request.
		result, err := s.ingestor.Sync(context.WithoutCancel(ctx))
		if err != nil {
			if errors.Is(err, index.ErrNoCorpus) {
				s.logger.Warn("no corpus documents found")
			} else {
				s.logger.Error("retrieval system initialization failed", "error", err)
			}
			s.initErr = fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
			return
		}

		if s.manifest.Len() == 0 {
			s.logger.Warn("corpus yielded no indexable documents")
			s.initErr = fmt.Errorf("%w: every corpus file failed to index", ErrIndexUnavailable)
			return
		}

		s.logger.Info("retrieval system ready",
			"files", s.manifest.Len(),
			"indexed_now", result.IndexedFiles,
			"chunks_added", result.TotalChunks,
		)
	})
	return s.initErr
}

// Ask answers one question. It refuses with ErrIndexUnavailable until
// Ready has succeeded.
func (s *System) Ask(ctx context.Context, question string, turns []history.Turn) (*Answer, error) {
	if err := s.Ready(ctx); err != nil {
		return nil, err
	}
	return s.chain.Answer(ctx, question, turns)
}

// Topics exposes the manifest's distinct topic labels for discovery UIs.
func (s *System) Topics() []string {
	return s.manifest.Topics()
}
