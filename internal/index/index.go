// Package index persists embedded document chunks and answers
// nearest-neighbor queries over them. It owns the manifest of indexed
// source files and the ingestion pipeline that keeps both in step.
package index

import (
	"context"
	"errors"

	"github.com/AbnerMSaconi/UCDB-IA/internal/corpus"
)

var (
	// ErrNoCorpus means no source files exist at all. Distinguishable
	// from an index that exists but matches nothing.
	ErrNoCorpus = errors.New("no corpus files available")

	// ErrIndexUnreachable marks a vector backend that cannot be reached.
	ErrIndexUnreachable = errors.New("vector index unreachable")

	// ErrDimensionMismatch marks vectors whose length disagrees with the
	// index's configured dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// ScoredChunk is one retrieval hit: a stored chunk with its similarity
// score, higher is more similar.
type ScoredChunk struct {
	Chunk corpus.Chunk
	Score float64
}

// VectorIndex is the storage capability the rest of the system relies on:
// incremental addition and k-nearest retrieval. Implementations must allow
// concurrent Search calls; Add/RemoveSource/Persist exclude them.
type VectorIndex interface {
	// Add stores chunks with their vectors. len(chunks) == len(vectors).
	Add(ctx context.Context, chunks []corpus.Chunk, vectors [][]float32) error
	// Search returns up to limit chunks nearest to the query vector,
	// most similar first.
	Search(ctx context.Context, vector []float32, limit int) ([]ScoredChunk, error)
	// RemoveSource drops every chunk belonging to one source file.
	RemoveSource(ctx context.Context, source string) error
	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)
	// Persist makes the current contents durable. Backends that are
	// durable per operation may no-op.
	Persist(ctx context.Context) error
	// Health probes the backend's reachability.
	Health(ctx context.Context) error
	// Close releases backend resources.
	Close() error
}
