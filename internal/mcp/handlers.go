package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/AbnerMSaconi/UCDB-IA/internal/chain"
	"github.com/AbnerMSaconi/UCDB-IA/internal/index"
)

// makeSearchHandler creates the search_passages tool handler.
// Search flow:
// 1. Ensure the index is initialized (first call triggers ingestion)
// 2. Generate an embedding for the query text
// 3. Search passages by vector similarity
// 4. Filter by the minimum score threshold
func makeSearchHandler(system *chain.System, embedder QueryEmbedder, idx index.VectorIndex) func(
	context.Context, *mcp.CallToolRequest, SearchPassagesInput,
) (*mcp.CallToolResult, SearchPassagesOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SearchPassagesInput) (
		*mcp.CallToolResult, SearchPassagesOutput, error,
	) {
		if err := system.Ready(ctx); err != nil {
			return nil, SearchPassagesOutput{}, fmt.Errorf("index not available: %w", err)
		}

		maxResults := input.MaxResults
		if maxResults <= 0 {
			maxResults = 4
		}

		vector, err := embedder.EmbedQuery(ctx, input.Query)
		if err != nil {
			return nil, SearchPassagesOutput{}, fmt.Errorf("failed to embed query: %w", err)
		}

		hits, err := idx.Search(ctx, vector, maxResults)
		if err != nil {
			return nil, SearchPassagesOutput{}, fmt.Errorf("search failed: %w", err)
		}

		results := make([]PassageResult, 0, len(hits))
		for _, hit := range hits {
			if hit.Score < input.MinScore {
				continue
			}
			results = append(results, PassageResult{
				Source: hit.Chunk.Source,
				Page:   hit.Chunk.Page + 1,
				Score:  hit.Score,
				Text:   hit.Chunk.Text,
			})
		}

		if len(results) == 0 {
			return nil, SearchPassagesOutput{
				Results: []PassageResult{},
				Message: "No matching passages found. Try broader search terms.",
			}, nil
		}

		return nil, SearchPassagesOutput{Results: results}, nil
	}
}

// makeAskHandler creates the ask tool handler. It runs the full
// retrieve-then-generate pipeline with no conversation history.
func makeAskHandler(system *chain.System) func(
	context.Context, *mcp.CallToolRequest, AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AskInput) (
		*mcp.CallToolResult, AskOutput, error,
	) {
		answer, err := system.Ask(ctx, input.Question, nil)
		if err != nil {
			return nil, AskOutput{}, fmt.Errorf("failed to answer: %w", err)
		}

		sources := answer.Sources
		if sources == nil {
			sources = []string{}
		}

		return nil, AskOutput{
			Answer:  answer.Text,
			Sources: sources,
		}, nil
	}
}

// makeTopicsHandler creates the list_topics tool handler.
func makeTopicsHandler(system *chain.System) func(
	context.Context, *mcp.CallToolRequest, ListTopicsInput,
) (*mcp.CallToolResult, ListTopicsOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListTopicsInput) (
		*mcp.CallToolResult, ListTopicsOutput, error,
	) {
		if err := system.Ready(ctx); err != nil {
			return nil, ListTopicsOutput{}, fmt.Errorf("index not available: %w", err)
		}

		topics := system.Topics()
		if topics == nil {
			topics = []string{}
		}

		return nil, ListTopicsOutput{
			Topics: topics,
			Count:  len(topics),
		}, nil
	}
}

// makeStatusHandler creates the index_status tool handler.
func makeStatusHandler(system *chain.System, idx index.VectorIndex, manifest *index.Manifest) func(
	context.Context, *mcp.CallToolRequest, StatusInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input StatusInput) (
		*mcp.CallToolResult, StatusOutput, error,
	) {
		if err := system.Ready(ctx); err != nil {
			return nil, StatusOutput{}, fmt.Errorf("index not available: %w", err)
		}

		chunks, err := idx.Count(ctx)
		if err != nil {
			return nil, StatusOutput{}, fmt.Errorf("failed to count passages: %w", err)
		}

		topics := system.Topics()
		if topics == nil {
			topics = []string{}
		}

		sources := manifest.Sources()
		files := make([]IndexedFile, 0, len(sources))
		for _, source := range sources {
			files = append(files, IndexedFile{Source: source, Topic: manifest.Topic(source)})
		}

		return nil, StatusOutput{
			IndexedFiles:  manifest.Len(),
			IndexedChunks: chunks,
			Topics:        topics,
			Files:         files,
		}, nil
	}
}
