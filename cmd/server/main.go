// Package main provides the UCDB-IA chat server entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/AbnerMSaconi/UCDB-IA/internal/backend"
	"github.com/AbnerMSaconi/UCDB-IA/internal/chain"
	"github.com/AbnerMSaconi/UCDB-IA/internal/config"
	"github.com/AbnerMSaconi/UCDB-IA/internal/corpus"
	"github.com/AbnerMSaconi/UCDB-IA/internal/history"
	"github.com/AbnerMSaconi/UCDB-IA/internal/index"
	mcpserver "github.com/AbnerMSaconi/UCDB-IA/internal/mcp"
	"github.com/AbnerMSaconi/UCDB-IA/internal/server"
)

var rootCmd = &cobra.Command{
	Use:   "ucdb-ia",
	Short: "Assistente acadêmico da UCDB",
	Long:  "Retrieval-augmented chat server over the UCDB document corpus.",
	RunE:  runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP chat server",
	Long: `Starts the SSE chat server.

Endpoints:
  POST /chat    ask a question, answer streamed as SSE events
  GET  /topics  distinct topic labels of the indexed corpus
  GET  /health  index backend connectivity
  /mcp          Model Context Protocol over Streamable HTTP

The corpus is indexed lazily on the first question; restart after adding
documents is not required, a new file is picked up on the next cold start.`,
	RunE: runServe,
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server on stdio",
	Long:  "Serves the search_passages, ask, list_topics and index_status tools over stdin/stdout for local MCP clients.",
	RunE:  runMCP,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
}

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// components is everything the wiring produces that a command may need.
type components struct {
	cfg      *config.Config
	system   *chain.System
	history  *history.Store
	embedder *backend.Embedder
	index    index.VectorIndex
	manifest *index.Manifest
	logger   *slog.Logger
}

func buildComponents(ctx context.Context) (*components, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	embedClient := backend.NewClient(cfg.EmbeddingBaseURL, cfg.APIKey, cfg.EmbeddingTimeout)
	embedder := backend.NewEmbedder(embedClient, cfg.EmbeddingModel, cfg.EmbedBatchSize)

	genClient := backend.NewClient(cfg.LLMBaseURL, cfg.APIKey, cfg.GenerationTimeout)
	generator := backend.NewGenerator(genClient, backend.SamplingParams{
		Model:            cfg.GenerationModel,
		MaxTokens:        cfg.MaxTokens,
		Temperature:      cfg.Temperature,
		TopP:             cfg.TopP,
		FrequencyPenalty: cfg.FrequencyPenalty,
		PresencePenalty:  cfg.PresencePenalty,
		Stop:             cfg.StopSequences,
	})

	var source corpus.Source
	if cfg.GitHubRepo != "" {
		owner, repo, err := corpus.ParseRepo(cfg.GitHubRepo)
		if err != nil {
			return nil, err
		}
		source, err = corpus.NewGitHubSource(owner, repo, cfg.GitHubPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create GitHub source: %w", err)
		}
	} else {
		source = corpus.NewDir(cfg.CorpusDir)
	}

	var idx index.VectorIndex
	var err error
	switch cfg.IndexBackend {
	case "qdrant":
		idx, err = index.NewQdrant(cfg.QdrantHost, cfg.QdrantPort, cfg.QdrantCollection)
	default:
		idx, err = index.OpenLocal(cfg.DataDir)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}

	manifest, err := index.OpenManifest(manifestPath(cfg.DataDir))
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}

	splitter := corpus.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	ingestor := index.NewIngestor(source, splitter, embedder, idx, manifest, logger)

	ragChain := chain.New(embedder, generator, idx, chain.Options{
		TopK:   cfg.TopK,
		FetchK: cfg.FetchK,
	}, logger)

	return &components{
		cfg:      cfg,
		system:   chain.NewSystem(ingestor, manifest, ragChain, logger),
		history:  history.NewStore(cfg.HistoryWindow),
		embedder: embedder,
		index:    idx,
		manifest: manifest,
		logger:   logger,
	}, nil
}

func manifestPath(dataDir string) string {
	return filepath.Join(dataDir, "manifest.json")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	comps, err := buildComponents(ctx)
	if err != nil {
		return err
	}
	defer comps.index.Close()

	srv := server.New(server.Config{
		System:      comps.system,
		History:     comps.history,
		Index:       comps.index,
		StreamDelay: comps.cfg.StreamDelay,
		Logger:      comps.logger,
	})

	mcpSrv := mcpserver.NewServer(&mcpserver.Config{
		System:   comps.system,
		Embedder: comps.embedder,
		Index:    comps.index,
		Manifest: comps.manifest,
	})

	mux := http.NewServeMux()
	srv.Register(mux)
	mux.Handle("/mcp", mcpserver.NewHTTPHandler(mcpSrv, nil))
	mux.Handle("/", mcpserver.NewLandingHandler())

	httpSrv := srv.HTTPServer(comps.cfg.ListenAddr)
	httpSrv.Handler = mux

	errCh := make(chan error, 1)
	go func() {
		comps.logger.Info("chat server listening", "addr", comps.cfg.ListenAddr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	comps.logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return httpSrv.Shutdown(shutdownCtx)
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	comps, err := buildComponents(ctx)
	if err != nil {
		return err
	}
	defer comps.index.Close()

	mcpSrv := mcpserver.NewServer(&mcpserver.Config{
		System:   comps.system,
		Embedder: comps.embedder,
		Index:    comps.index,
		Manifest: comps.manifest,
	})

	comps.logger.Info("mcp server on stdio")
	return mcpSrv.Run(ctx)
}
