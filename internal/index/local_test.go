package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbnerMSaconi/UCDB-IA/internal/corpus"
)

func chunk(source string, page, ordinal int, text string) corpus.Chunk {
	return corpus.Chunk{Source: source, Page: page, Ordinal: ordinal, Text: text}
}

func TestLocal_SearchOrdersByCosineSimilarity(t *testing.T) {
	ctx := context.Background()
	idx, err := OpenLocal(t.TempDir())
	require.NoError(t, err)

	err = idx.Add(ctx,
		[]corpus.Chunk{
			chunk("a.txt", 0, 0, "perto"),
			chunk("a.txt", 0, 1, "longe"),
			chunk("a.txt", 0, 2, "médio"),
		},
		[][]float32{
			{1, 0, 0},
			{0, 1, 0},
			{1, 1, 0},
		},
	)
	require.NoError(t, err)

	hits, err := idx.Search(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	assert.Equal(t, "perto", hits[0].Chunk.Text)
	assert.Equal(t, "médio", hits[1].Chunk.Text)
	assert.Greater(t, hits[0].Score, hits[1].Score)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
}

func TestLocal_AddRejectsDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	idx, err := OpenLocal(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, idx.Add(ctx, []corpus.Chunk{chunk("a.txt", 0, 0, "x")}, [][]float32{{1, 0, 0}}))

	err = idx.Add(ctx, []corpus.Chunk{chunk("b.txt", 0, 0, "y")}, [][]float32{{1, 0}})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = idx.Search(ctx, []float32{1, 0}, 1)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestLocal_RemoveSource(t *testing.T) {
	ctx := context.Background()
	idx, err := OpenLocal(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, idx.Add(ctx,
		[]corpus.Chunk{
			chunk("a.txt", 0, 0, "x"),
			chunk("b.txt", 0, 0, "y"),
			chunk("a.txt", 1, 1, "z"),
		},
		[][]float32{{1, 0}, {0, 1}, {1, 1}},
	))

	require.NoError(t, idx.RemoveSource(ctx, "a.txt"))

	count, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	hits, err := idx.Search(ctx, []float32{1, 1}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "b.txt", hits[0].Chunk.Source)
}

func TestLocal_PersistAndReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	idx, err := OpenLocal(dir)
	require.NoError(t, err)
	require.NoError(t, idx.Add(ctx, []corpus.Chunk{chunk("a.txt", 0, 0, "conteúdo")}, [][]float32{{1, 0, 0}}))
	require.NoError(t, idx.Persist(ctx))

	reopened, err := OpenLocal(dir)
	require.NoError(t, err)

	count, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	hits, err := reopened.Search(ctx, []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "conteúdo", hits[0].Chunk.Text)
}
