package chain

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbnerMSaconi/UCDB-IA/internal/corpus"
	"github.com/AbnerMSaconi/UCDB-IA/internal/index"
)

// countingEmbedder serves both the ingestion and query sides with flat
// vectors, counting batch calls so tests can assert how often ingestion
// actually ran.
type countingEmbedder struct {
	batches atomic.Int32
}

func (e *countingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	e.batches.Add(1)
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = []float32{1, 0, 0}
	}
	return vectors, nil
}

func (e *countingEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

// deadlineEmbedder honors cancellation the way the real backend client
// does: a canceled context aborts the batch immediately.
type deadlineEmbedder struct {
	countingEmbedder
}

func (e *deadlineEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.countingEmbedder.Embed(ctx, texts)
}

func newTestSystem(t *testing.T, corpusDir string) (*System, *countingEmbedder) {
	t.Helper()

	embedder := &countingEmbedder{}
	return newTestSystemWith(t, corpusDir, embedder), embedder
}

type systemEmbedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

func newTestSystemWith(t *testing.T, corpusDir string, embedder systemEmbedder) *System {
	t.Helper()

	dataDir := t.TempDir()
	idx, err := index.OpenLocal(dataDir)
	require.NoError(t, err)
	manifest, err := index.OpenManifest(filepath.Join(dataDir, "manifest.json"))
	require.NoError(t, err)

	splitter := corpus.NewSplitter(812, 64)
	ingestor := index.NewIngestor(corpus.NewDir(corpusDir), splitter, embedder, idx, manifest, nil)

	gen := &fakeGenerator{replies: []string{"resposta gerada"}}
	c := New(embedder, gen, idx, Options{TopK: 4, FetchK: 10}, nil)

	return NewSystem(ingestor, manifest, c, nil)
}

func TestSystem_ReadyRunsIngestionOnce(t *testing.T) {
	corpusDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(corpusDir, "intro.txt"), []byte("X equals Y."), 0o644))

	system, embedder := newTestSystem(t, corpusDir)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, system.Ready(context.Background()))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), embedder.batches.Load(), "ingestion must run exactly once")
}

func TestSystem_ReadySurvivesCanceledFirstCaller(t *testing.T) {
	corpusDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(corpusDir, "intro.txt"), []byte("X equals Y."), 0o644))

	embedder := &deadlineEmbedder{}
	system := newTestSystemWith(t, corpusDir, embedder)

	// The first caller disconnects before ingestion finishes. The sync
	// still has to complete, or its failure would be memoized and every
	// later request would be refused.
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, system.Ready(canceled))
	assert.Equal(t, int32(1), embedder.batches.Load())

	answer, err := system.Ask(context.Background(), "O que é X?", nil)
	require.NoError(t, err)
	assert.Equal(t, "resposta gerada", answer.Text)
}

func TestSystem_EmptyCorpusMemoizesFailure(t *testing.T) {
	system, embedder := newTestSystem(t, t.TempDir())

	err := system.Ready(context.Background())
	require.ErrorIs(t, err, ErrIndexUnavailable)

	// The failure is memoized: no retry on the next call.
	err = system.Ready(context.Background())
	assert.ErrorIs(t, err, ErrIndexUnavailable)
	assert.Equal(t, int32(0), embedder.batches.Load())

	_, err = system.Ask(context.Background(), "pergunta", nil)
	assert.ErrorIs(t, err, ErrIndexUnavailable)
}

func TestSystem_AskAnswersFromIndexedCorpus(t *testing.T) {
	corpusDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(corpusDir, "intro.txt"), []byte("X equals Y."), 0o644))

	system, _ := newTestSystem(t, corpusDir)

	answer, err := system.Ask(context.Background(), "O que é X?", nil)
	require.NoError(t, err)

	assert.Equal(t, "resposta gerada", answer.Text)
	require.NotEmpty(t, answer.Sources)
	assert.Equal(t, "intro.txt (p. 1)", answer.Sources[0])
	assert.Equal(t, []string{"Intro"}, system.Topics())
}
