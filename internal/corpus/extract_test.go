package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_PlainText(t *testing.T) {
	doc, err := Extract("teoria_dos_grafos.txt", []byte("Um grafo é um par de conjuntos."))
	require.NoError(t, err)

	assert.Equal(t, "teoria_dos_grafos.txt", doc.Source)
	assert.Equal(t, "Teoria dos grafos", doc.Topic)
	require.Len(t, doc.Pages, 1)
	assert.Equal(t, 0, doc.Pages[0].Number)
	assert.Equal(t, "Um grafo é um par de conjuntos.", doc.Pages[0].Text)
}

func TestExtract_UnsupportedFormat(t *testing.T) {
	_, err := Extract("planilha.xlsx", []byte("dados"))
	assert.Error(t, err)
}

func TestExtract_MarkdownTitleBecomesTopic(t *testing.T) {
	input := `# Estruturas de Dados

Listas e árvores.

## Listas

Uma lista encadeada guarda ponteiros.
`
	doc, err := Extract("estruturas.md", []byte(input))
	require.NoError(t, err)

	assert.Equal(t, "Estruturas de Dados", doc.Topic)
	require.Len(t, doc.Pages, 1)
	assert.Contains(t, doc.Pages[0].Text, "Listas e árvores.")
	assert.Contains(t, doc.Pages[0].Text, "Uma lista encadeada guarda ponteiros.")
	assert.NotContains(t, doc.Pages[0].Text, "# Estruturas", "markup must not reach the embedder")
}

func TestExtract_MarkdownWithoutTitleUsesFileName(t *testing.T) {
	doc, err := Extract("notas-de-aula.md", []byte("Só um parágrafo solto."))
	require.NoError(t, err)
	assert.Equal(t, "Notas de aula", doc.Topic)
}

func TestExtract_MarkdownKeepsCodeBlocks(t *testing.T) {
	input := "# Algoritmos\n\n```go\nfunc soma(a, b int) int { return a + b }\n```\n"
	doc, err := Extract("algoritmos.md", []byte(input))
	require.NoError(t, err)
	assert.Contains(t, doc.Pages[0].Text, "func soma(a, b int) int")
}

func TestHumanizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"teoria_dos_grafos.pdf", "Teoria dos grafos"},
		{"calculo-1.pdf", "Calculo 1"},
		{"intro.txt", "Intro"},
		{"álgebra_linear.md", "Álgebra linear"},
	}

	for _, tt := range tests {
		if got := humanizeName(tt.in); got != tt.want {
			t.Errorf("humanizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("a.pdf"))
	assert.True(t, Supported("a.MD"))
	assert.True(t, Supported("a.txt"))
	assert.False(t, Supported("a.docx"))
	assert.False(t, Supported("semextensao"))
}

func TestDir_ListFiltersUnsupported(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "x")
	writeFile(t, dir, "b.pdf", "x")
	writeFile(t, dir, "ignorado.docx", "x")

	names, err := NewDir(dir).List(t.Context())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.txt", "b.pdf"}, names)
}

func TestDir_MissingDirectoryIsEmptyCorpus(t *testing.T) {
	names, err := NewDir("/nonexistent/corpus").List(t.Context())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestDir_FetchRejectsPathTraversal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "conteúdo")

	d := NewDir(dir)

	data, err := d.Fetch(t.Context(), "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "conteúdo", string(data))

	_, err = d.Fetch(t.Context(), "../escape.txt")
	assert.Error(t, err)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
