package index

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManifest_PersistAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")

	m, err := OpenManifest(path)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Len())

	m.Put("grafos.pdf", "Teoria dos grafos")
	m.Put("calculo.pdf", "Cálculo I")
	require.NoError(t, m.Persist())

	reopened, err := OpenManifest(path)
	require.NoError(t, err)
	assert.Equal(t, 2, reopened.Len())
	assert.True(t, reopened.Has("grafos.pdf"))
	assert.Equal(t, "Teoria dos grafos", reopened.Topic("grafos.pdf"))
	assert.False(t, reopened.Has("outro.pdf"))
}

func TestManifest_MissingFileStartsEmpty(t *testing.T) {
	m, err := OpenManifest(filepath.Join(t.TempDir(), "nonexistent.json"))
	require.NoError(t, err)
	assert.Equal(t, 0, m.Len())
}

func TestManifest_TopicsDistinctSorted(t *testing.T) {
	m, err := OpenManifest(filepath.Join(t.TempDir(), "manifest.json"))
	require.NoError(t, err)

	m.Put("a.pdf", "Zoologia")
	m.Put("b.pdf", "Algoritmos")
	m.Put("c.pdf", "Algoritmos")
	m.Put("d.pdf", "")

	assert.Equal(t, []string{"Algoritmos", "Zoologia"}, m.Topics())
	assert.Equal(t, []string{"a.pdf", "b.pdf", "c.pdf", "d.pdf"}, m.Sources())
}
