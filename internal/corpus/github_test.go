package corpus

import (
	"testing"

	"github.com/google/go-github/v81/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeContents(t *testing.T) {
	t.Run("base64 encoded", func(t *testing.T) {
		fc := &github.RepositoryContent{
			Content:  github.Ptr("b2zDoSBtdW5kbw=="),
			Encoding: github.Ptr("base64"),
		}
		data, err := decodeContents(fc, "docs/ola.txt")
		require.NoError(t, err)
		assert.Equal(t, "olá mundo", string(data))
	})

	t.Run("plain text", func(t *testing.T) {
		fc := &github.RepositoryContent{Content: github.Ptr("conteúdo")}
		data, err := decodeContents(fc, "docs/plain.txt")
		require.NoError(t, err)
		assert.Equal(t, "conteúdo", string(data))
	})

	t.Run("nil response", func(t *testing.T) {
		_, err := decodeContents(nil, "docs/dir")
		assert.ErrorContains(t, err, "no file content")
	})

	t.Run("oversized file has no inline content", func(t *testing.T) {
		// Over 1 MB the contents API returns only a download URL.
		fc := &github.RepositoryContent{
			DownloadURL: github.Ptr("https://example.com/big.pdf"),
		}
		_, err := decodeContents(fc, "docs/big.pdf")
		require.Error(t, err)
		assert.ErrorContains(t, err, "docs/big.pdf")
	})

	t.Run("invalid base64", func(t *testing.T) {
		fc := &github.RepositoryContent{
			Content:  github.Ptr("%%%"),
			Encoding: github.Ptr("base64"),
		}
		_, err := decodeContents(fc, "docs/bad.txt")
		assert.ErrorContains(t, err, "decode content")
	})
}

func TestParseRepo(t *testing.T) {
	owner, repo, err := ParseRepo("ucdb/apostilas")
	require.NoError(t, err)
	assert.Equal(t, "ucdb", owner)
	assert.Equal(t, "apostilas", repo)

	for _, slug := range []string{"", "semrepo", "/repo", "owner/"} {
		_, _, err := ParseRepo(slug)
		assert.Error(t, err, slug)
	}
}
