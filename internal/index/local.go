package index

import (
	"context"
	"encoding/gob"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/AbnerMSaconi/UCDB-IA/internal/corpus"
)

// snapshotName is the on-disk file holding a Local index.
const snapshotName = "index.gob"

// localSnapshot is the gob-encoded durable form of a Local index.
type localSnapshot struct {
	Dimension int
	Chunks    []corpus.Chunk
	Vectors   [][]float32
}

// Local is a brute-force cosine-similarity index kept in memory and
// snapshotted to disk. It suits the single-tenant corpus sizes this
// service runs against, where an exact scan is cheaper than operating a
// vector database. Searches run concurrently under a read lock; the one
// writer (ingestion) takes the write lock.
type Local struct {
	mu        sync.RWMutex
	path      string
	dimension int
	chunks    []corpus.Chunk
	vectors   [][]float32
}

// OpenLocal loads the snapshot under dir when one exists, otherwise
// returns an empty index that will persist there.
func OpenLocal(dir string) (*Local, error) {
	l := &Local{path: filepath.Join(dir, snapshotName)}

	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return l, nil
		}
		return nil, fmt.Errorf("open index snapshot: %w", err)
	}
	defer f.Close()

	var snap localSnapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode index snapshot: %w", err)
	}
	l.dimension = snap.Dimension
	l.chunks = snap.Chunks
	l.vectors = snap.Vectors
	return l, nil
}

func (l *Local) Add(ctx context.Context, chunks []corpus.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks and vectors length mismatch: %d != %d", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.dimension == 0 {
		l.dimension = len(vectors[0])
	}
	for i, v := range vectors {
		if len(v) != l.dimension {
			return fmt.Errorf("%w: vector %d has %d dimensions, expected %d",
				ErrDimensionMismatch, i, len(v), l.dimension)
		}
	}

	for i := range chunks {
		l.chunks = append(l.chunks, chunks[i])
		l.vectors = append(l.vectors, normalize(vectors[i]))
	}
	return nil
}

func (l *Local) Search(ctx context.Context, vector []float32, limit int) ([]ScoredChunk, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if limit <= 0 {
		limit = 1
	}
	if l.dimension != 0 && len(vector) != l.dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, expected %d",
			ErrDimensionMismatch, len(vector), l.dimension)
	}

	query := normalize(vector)
	results := make([]ScoredChunk, 0, len(l.chunks))
	for i := range l.vectors {
		results = append(results, ScoredChunk{
			Chunk: l.chunks[i],
			Score: float64(dot(l.vectors[i], query)),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (l *Local) RemoveSource(ctx context.Context, source string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	chunks := l.chunks[:0]
	vectors := l.vectors[:0]
	for i := range l.chunks {
		if l.chunks[i].Source == source {
			continue
		}
		chunks = append(chunks, l.chunks[i])
		vectors = append(vectors, l.vectors[i])
	}
	l.chunks = chunks
	l.vectors = vectors
	return nil
}

func (l *Local) Count(ctx context.Context) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.chunks), nil
}

// Persist snapshots the index atomically: write to a temp file, fsync,
// rename. A crash mid-persist leaves the previous snapshot in place.
func (l *Local) Persist(ctx context.Context) error {
	l.mu.RLock()
	snap := localSnapshot{
		Dimension: l.dimension,
		Chunks:    l.chunks,
		Vectors:   l.vectors,
	}
	l.mu.RUnlock()

	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".index-*.gob")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	if err := gob.NewEncoder(tmp).Encode(&snap); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmpName, l.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publish snapshot: %w", err)
	}
	return nil
}

func (l *Local) Close() error { return nil }

// Health reports readiness. A loaded Local index has no remote backend to
// probe, so it is always healthy.
func (l *Local) Health(ctx context.Context) error { return nil }

func dot(a, b []float32) float32 {
	n := min(len(a), len(b))
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// normalize returns the unit-length copy of v so dot products are cosine
// similarities.
func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	inv := float32(1 / math.Sqrt(sum))
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x * inv
	}
	return out
}
