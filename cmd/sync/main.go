// Package main provides the one-shot corpus indexing CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/AbnerMSaconi/UCDB-IA/internal/backend"
	"github.com/AbnerMSaconi/UCDB-IA/internal/config"
	"github.com/AbnerMSaconi/UCDB-IA/internal/corpus"
	"github.com/AbnerMSaconi/UCDB-IA/internal/index"
)

var rootCmd = &cobra.Command{
	Use:   "ucdb-sync",
	Short: "UCDB corpus indexing tool",
	Long:  "CLI tool for building the UCDB-IA passage index ahead of serving",
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Index new corpus documents",
	Long: `Indexes corpus documents that are not yet in the manifest.

This command:
1. Lists the corpus (local directory or GitHub repository)
2. Diffs it against the manifest to find new files
3. Extracts, chunks and embeds each new file
4. Upserts the passages into the vector index
5. Persists the index and then the manifest

Already-indexed files are skipped, so running sync twice is a no-op.

Environment variables:
  CORPUS_DIR          local corpus directory (default: pdfs)
  CORPUS_GITHUB_REPO  owner/repo to read the corpus from instead
  DATA_DIR            index and manifest location (default: embeddings)
  EMBEDDING_BASE_URL  OpenAI-compatible embedding endpoint
  INDEX_BACKEND       "local" or "qdrant" (default: local)`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	start := time.Now()

	fmt.Println("Starting sync...")
	fmt.Println()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	embedClient := backend.NewClient(cfg.EmbeddingBaseURL, cfg.APIKey, cfg.EmbeddingTimeout)
	embedder := backend.NewEmbedder(embedClient, cfg.EmbeddingModel, cfg.EmbedBatchSize)

	var source corpus.Source
	if cfg.GitHubRepo != "" {
		owner, repo, err := corpus.ParseRepo(cfg.GitHubRepo)
		if err != nil {
			return err
		}
		fmt.Printf("Corpus: github.com/%s/%s/%s\n", owner, repo, cfg.GitHubPath)
		source, err = corpus.NewGitHubSource(owner, repo, cfg.GitHubPath)
		if err != nil {
			return fmt.Errorf("failed to create GitHub source: %w", err)
		}
	} else {
		fmt.Printf("Corpus: %s\n", cfg.CorpusDir)
		source = corpus.NewDir(cfg.CorpusDir)
	}

	var idx index.VectorIndex
	var err error
	switch cfg.IndexBackend {
	case "qdrant":
		fmt.Printf("Connecting to Qdrant at %s:%d...\n", cfg.QdrantHost, cfg.QdrantPort)
		idx, err = index.NewQdrant(cfg.QdrantHost, cfg.QdrantPort, cfg.QdrantCollection)
	default:
		fmt.Printf("Index: %s\n", cfg.DataDir)
		idx, err = index.OpenLocal(cfg.DataDir)
	}
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer idx.Close()

	manifest, err := index.OpenManifest(filepath.Join(cfg.DataDir, "manifest.json"))
	if err != nil {
		return fmt.Errorf("failed to open manifest: %w", err)
	}

	splitter := corpus.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	ingestor := index.NewIngestor(source, splitter, embedder, idx, manifest, slog.Default())

	fmt.Println()
	fmt.Println("Indexing documents...")
	result, err := ingestor.Sync(ctx)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	fmt.Println()
	fmt.Println("Sync complete!")
	fmt.Printf("  Files in corpus: %d\n", result.TotalFiles)
	fmt.Printf("  New files: %d\n", result.NewFiles)
	fmt.Printf("  Indexed: %d\n", result.IndexedFiles)
	fmt.Printf("  Chunks: %d\n", result.TotalChunks)
	fmt.Printf("  Duration: %s\n", result.Duration.Round(time.Second))

	if len(result.FailedFiles) > 0 {
		fmt.Println()
		fmt.Println("Failed files:")
		for _, failed := range result.FailedFiles {
			fmt.Printf("  - %s: %s\n", failed.Name, failed.Reason)
		}
	}

	fmt.Println()
	fmt.Printf("Total time: %s\n", time.Since(start).Round(time.Second))

	return nil
}
