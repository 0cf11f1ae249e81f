package index

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AbnerMSaconi/UCDB-IA/internal/corpus"
)

// Embedder is the slice of the embedding client ingestion needs.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// SyncResult reports what one ingestion run did.
type SyncResult struct {
	TotalFiles   int
	NewFiles     int
	IndexedFiles int
	TotalChunks  int
	FailedFiles  []FailedFile
	Duration     time.Duration
}

// FailedFile records one source file that could not be indexed. It is not
// added to the manifest, so the next sync retries it.
type FailedFile struct {
	Name   string
	Reason string
}

// Ingestor keeps the vector index and manifest in step with the corpus.
// Not re-entrant: callers serialize Sync (the chain's system coordinator
// runs it at most once per process).
type Ingestor struct {
	source   corpus.Source
	splitter *corpus.Splitter
	embedder Embedder
	index    VectorIndex
	manifest *Manifest
	logger   *slog.Logger
}

// NewIngestor wires an ingestion pipeline.
func NewIngestor(source corpus.Source, splitter *corpus.Splitter, embedder Embedder, index VectorIndex, manifest *Manifest, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{
		source:   source,
		splitter: splitter,
		embedder: embedder,
		index:    index,
		manifest: manifest,
		logger:   logger,
	}
}

// Sync diffs the corpus against the manifest and indexes whatever is new.
// With no new files it is a no-op, leaving index and manifest untouched —
// process restarts stay fast. A single file's failure is logged and
// skipped; it never aborts the remaining files. Returns ErrNoCorpus when
// no source files exist at all.
func (ing *Ingestor) Sync(ctx context.Context) (*SyncResult, error) {
	start := time.Now()
	result := &SyncResult{}

	names, err := ing.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list corpus: %w", err)
	}
	if len(names) == 0 {
		return nil, ErrNoCorpus
	}
	result.TotalFiles = len(names)

	var newFiles []string
	for _, name := range names {
		if !ing.manifest.Has(name) {
			newFiles = append(newFiles, name)
		}
	}
	result.NewFiles = len(newFiles)

	if len(newFiles) == 0 {
		result.Duration = time.Since(start)
		ing.logger.Info("corpus already indexed", "files", result.TotalFiles)
		return result, nil
	}

	ing.logger.Info("indexing corpus", "total", result.TotalFiles, "new", result.NewFiles)

	type indexed struct {
		name  string
		topic string
	}
	var done []indexed

	for _, name := range newFiles {
		chunks, topic, err := ing.indexFile(ctx, name)
		if err != nil {
			ing.logger.Warn("failed to index file", "file", name, "error", err)
			result.FailedFiles = append(result.FailedFiles, FailedFile{
				Name:   name,
				Reason: err.Error(),
			})
			continue
		}
		result.IndexedFiles++
		result.TotalChunks += chunks
		done = append(done, indexed{name: name, topic: topic})
		ing.logger.Info("indexed file", "file", name, "chunks", chunks)
	}

	if len(done) > 0 {
		// Index before manifest: a crash between the two leaves files
		// out of the manifest, and the next sync re-embeds them on top
		// of a RemoveSource/idempotent-upsert index, so nothing is lost
		// and nothing duplicates.
		if err := ing.index.Persist(ctx); err != nil {
			return nil, fmt.Errorf("persist index: %w", err)
		}
		for _, d := range done {
			ing.manifest.Put(d.name, d.topic)
		}
		if err := ing.manifest.Persist(); err != nil {
			return nil, fmt.Errorf("persist manifest: %w", err)
		}
	}

	result.Duration = time.Since(start)
	ing.logger.Info("sync complete",
		"indexed", result.IndexedFiles,
		"failed", len(result.FailedFiles),
		"chunks", result.TotalChunks,
		"duration", result.Duration,
	)
	return result, nil
}

// indexFile runs one file through fetch → extract → split → embed → add.
// Returns the chunk count and the document's topic label.
func (ing *Ingestor) indexFile(ctx context.Context, name string) (int, string, error) {
	data, err := ing.source.Fetch(ctx, name)
	if err != nil {
		return 0, "", fmt.Errorf("fetch: %w", err)
	}

	doc, err := corpus.Extract(name, data)
	if err != nil {
		return 0, "", fmt.Errorf("extract: %w", err)
	}

	chunks := ing.splitter.Split(doc)
	if len(chunks) == 0 {
		return 0, "", fmt.Errorf("no content extracted")
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors, err := ing.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, "", fmt.Errorf("embed: %w", err)
	}
	if len(vectors) != len(chunks) {
		return 0, "", fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	// A crashed prior run may have written chunks the manifest never
	// recorded. Clear them so re-embedding cannot duplicate.
	if err := ing.index.RemoveSource(ctx, name); err != nil {
		return 0, "", fmt.Errorf("clear stale chunks: %w", err)
	}
	if err := ing.index.Add(ctx, chunks, vectors); err != nil {
		return 0, "", fmt.Errorf("store chunks: %w", err)
	}

	return len(chunks), doc.Topic, nil
}
