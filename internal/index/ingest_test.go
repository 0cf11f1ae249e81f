package index

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbnerMSaconi/UCDB-IA/internal/corpus"
)

// memSource is an in-memory corpus for ingestion tests.
type memSource struct {
	files map[string][]byte
	order []string
}

func newMemSource() *memSource {
	return &memSource{files: make(map[string][]byte)}
}

func (s *memSource) put(name string, content string) {
	if _, ok := s.files[name]; !ok {
		s.order = append(s.order, name)
	}
	s.files[name] = []byte(content)
}

func (s *memSource) List(ctx context.Context) ([]string, error) {
	return append([]string(nil), s.order...), nil
}

func (s *memSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	data, ok := s.files[name]
	if !ok {
		return nil, fmt.Errorf("no such file %q", name)
	}
	return data, nil
}

// stubEmbedder returns flat vectors and can be told to fail for texts
// containing a marker string.
type stubEmbedder struct {
	calls    int
	failWord string
}

func (e *stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	e.calls++
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		if e.failWord != "" && strings.Contains(text, e.failWord) {
			return nil, errors.New("embedding backend rejected batch")
		}
		vectors[i] = []float32{float32(len(text)), 1, 0}
	}
	return vectors, nil
}

func newTestIngestor(t *testing.T, source corpus.Source, embedder Embedder) (*Ingestor, *Local, *Manifest) {
	t.Helper()
	dir := t.TempDir()

	idx, err := OpenLocal(dir)
	require.NoError(t, err)
	manifest, err := OpenManifest(filepath.Join(dir, "manifest.json"))
	require.NoError(t, err)

	splitter := corpus.NewSplitter(812, 64)
	return NewIngestor(source, splitter, embedder, idx, manifest, nil), idx, manifest
}

func TestIngestor_EmptyCorpusReturnsErrNoCorpus(t *testing.T) {
	ing, _, _ := newTestIngestor(t, newMemSource(), &stubEmbedder{})

	_, err := ing.Sync(context.Background())
	assert.ErrorIs(t, err, ErrNoCorpus)
}

func TestIngestor_SyncIsIdempotent(t *testing.T) {
	ctx := context.Background()
	source := newMemSource()
	source.put("intro.txt", "X equals Y.")
	embedder := &stubEmbedder{}

	ing, idx, manifest := newTestIngestor(t, source, embedder)

	first, err := ing.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.IndexedFiles)
	assert.Equal(t, 1, manifest.Len())

	countAfterFirst, err := idx.Count(ctx)
	require.NoError(t, err)
	embedsAfterFirst := embedder.calls

	second, err := ing.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, second.NewFiles)
	assert.Equal(t, 0, second.IndexedFiles)
	assert.Equal(t, embedsAfterFirst, embedder.calls, "no re-embedding on a clean re-sync")

	countAfterSecond, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, countAfterFirst, countAfterSecond)
}

func TestIngestor_IncrementalSyncIndexesOnlyNewFiles(t *testing.T) {
	ctx := context.Background()
	source := newMemSource()
	source.put("intro.txt", "X equals Y.")

	ing, idx, manifest := newTestIngestor(t, source, &stubEmbedder{})

	_, err := ing.Sync(ctx)
	require.NoError(t, err)
	before, err := idx.Count(ctx)
	require.NoError(t, err)

	source.put("extra.txt", "Z equals W.")

	result, err := ing.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalFiles)
	assert.Equal(t, 1, result.NewFiles)
	assert.Equal(t, 1, result.IndexedFiles)

	after, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, before+1, after)
	assert.True(t, manifest.Has("extra.txt"))
	assert.Equal(t, "Extra", manifest.Topic("extra.txt"))
}

func TestIngestor_FailedFileIsSkippedAndRetriedNextSync(t *testing.T) {
	ctx := context.Background()
	source := newMemSource()
	source.put("good.txt", "Conteúdo bom.")
	source.put("bad.txt", "Conteúdo VENENO aqui.")

	embedder := &stubEmbedder{failWord: "VENENO"}
	ing, _, manifest := newTestIngestor(t, source, embedder)

	result, err := ing.Sync(ctx)
	require.NoError(t, err, "a single bad file must not abort the run")

	assert.Equal(t, 1, result.IndexedFiles)
	require.Len(t, result.FailedFiles, 1)
	assert.Equal(t, "bad.txt", result.FailedFiles[0].Name)

	assert.True(t, manifest.Has("good.txt"))
	assert.False(t, manifest.Has("bad.txt"), "failed files stay out of the manifest")

	// Fix the file; the next sync picks it up because the manifest
	// never recorded it.
	source.put("bad.txt", "Conteúdo corrigido.")
	retry, err := ing.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, retry.IndexedFiles)
	assert.True(t, manifest.Has("bad.txt"))
}

func TestIngestor_ManifestPersistedAfterSync(t *testing.T) {
	ctx := context.Background()
	source := newMemSource()
	source.put("intro.txt", "X equals Y.")

	dir := t.TempDir()
	idx, err := OpenLocal(dir)
	require.NoError(t, err)
	manifestPath := filepath.Join(dir, "manifest.json")
	manifest, err := OpenManifest(manifestPath)
	require.NoError(t, err)

	ing := NewIngestor(source, corpus.NewSplitter(812, 64), &stubEmbedder{}, idx, manifest, nil)
	_, err = ing.Sync(ctx)
	require.NoError(t, err)

	// Both the snapshot and the manifest survive a process restart.
	reopenedManifest, err := OpenManifest(manifestPath)
	require.NoError(t, err)
	assert.True(t, reopenedManifest.Has("intro.txt"))

	reopenedIndex, err := OpenLocal(dir)
	require.NoError(t, err)
	count, err := reopenedIndex.Count(ctx)
	require.NoError(t, err)
	assert.Greater(t, count, 0)
}
