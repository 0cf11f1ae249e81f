package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/AbnerMSaconi/UCDB-IA/internal/chain"
	"github.com/AbnerMSaconi/UCDB-IA/internal/index"
)

// QueryEmbedder turns a query string into an embedding vector.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Server wraps the MCP server with dependencies.
type Server struct {
	server   *mcp.Server
	system   *chain.System
	embedder QueryEmbedder
	index    index.VectorIndex
	manifest *index.Manifest
}

// Config holds server dependencies.
type Config struct {
	System   *chain.System
	Embedder QueryEmbedder
	Index    index.VectorIndex
	Manifest *index.Manifest
}

// NewServer creates a configured MCP server with tools registered.
func NewServer(cfg *Config) *Server {
	impl := &mcp.Implementation{
		Name:    "ucdb-ia-server",
		Version: "v0.1.0",
	}

	server := mcp.NewServer(impl, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_passages",
		Description: "Search the indexed corpus semantically. Returns the most similar passages with source file and page.",
	}, makeSearchHandler(cfg.System, cfg.Embedder, cfg.Index))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question from the indexed corpus using the full retrieval-augmented pipeline. Returns the answer text and citation labels.",
	}, makeAskHandler(cfg.System))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_topics",
		Description: "List the distinct topic labels of the indexed corpus.",
	}, makeTopicsHandler(cfg.System))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "index_status",
		Description: "Report the current index status: indexed file count, passage count and topic labels.",
	}, makeStatusHandler(cfg.System, cfg.Index, cfg.Manifest))

	return &Server{
		server:   server,
		system:   cfg.System,
		embedder: cfg.Embedder,
		index:    cfg.Index,
		manifest: cfg.Manifest,
	}
}

// Run starts the server with stdio transport (blocks until the client
// disconnects).
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// MCPServer returns the underlying MCP server instance.
// Used by transport handlers that need to wrap the server.
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}
