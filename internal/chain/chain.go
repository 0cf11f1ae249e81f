// Package chain orchestrates one retrieval-augmented answer: condense the
// question against conversation history, retrieve the nearest passages,
// generate from a fixed instruction template and post-process the result.
package chain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/AbnerMSaconi/UCDB-IA/internal/backend"
	"github.com/AbnerMSaconi/UCDB-IA/internal/history"
	"github.com/AbnerMSaconi/UCDB-IA/internal/index"
)

// QueryEmbedder embeds a single query string.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Generator sends a rendered prompt to the generation backend.
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Retriever is the search slice of the vector index.
type Retriever interface {
	Search(ctx context.Context, vector []float32, limit int) ([]index.ScoredChunk, error)
}

// Answer is the chain's output: the cleaned text, the passages backing it
// and their aggregated citation labels.
type Answer struct {
	Text     string
	Passages []Passage
	Sources  []string
}

// Options tune retrieval breadth.
type Options struct {
	// TopK is how many passages feed the prompt.
	TopK int
	// FetchK is the larger pool sampled before the final top-k cut,
	// giving the store room for secondary heuristics.
	FetchK int
}

// Chain runs the condense → retrieve → generate pipeline. Stateless
// across invocations; safe for concurrent use.
type Chain struct {
	embedder  QueryEmbedder
	generator Generator
	retriever Retriever
	opts      Options
	logger    *slog.Logger
}

// New creates a Chain.
func New(embedder QueryEmbedder, generator Generator, retriever Retriever, opts Options, logger *slog.Logger) *Chain {
	if opts.TopK <= 0 {
		opts.TopK = 4
	}
	if opts.FetchK < opts.TopK {
		opts.FetchK = opts.TopK
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{
		embedder:  embedder,
		generator: generator,
		retriever: retriever,
		opts:      opts,
		logger:    logger,
	}
}

// Answer produces one answer for question given the session's prior
// turns. Failures of the embedding or generation backends fail the
// request; an empty generation does not — the fixed apology substitutes.
func (c *Chain) Answer(ctx context.Context, question string, turns []history.Turn) (*Answer, error) {
	condensed := c.condense(ctx, question, turns)

	vector, err := c.embedder.EmbedQuery(ctx, condensed)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	hits, err := c.retriever.Search(ctx, vector, c.opts.FetchK)
	if err != nil {
		return nil, fmt.Errorf("retrieve passages: %w", err)
	}
	if len(hits) > c.opts.TopK {
		hits = hits[:c.opts.TopK]
	}

	// The prompt carries the ORIGINAL question; the condensed form was
	// for retrieval only.
	prompt := renderAnswerPrompt(turns, joinPassages(hits), question)

	raw, err := c.generator.Complete(ctx, prompt)
	if err != nil && !errors.Is(err, backend.ErrEmptyGeneration) {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	text := Clean(StripEchoedPreamble(TrimSentinel(raw)))
	if strings.TrimSpace(text) == "" {
		text = Apology
	}

	passages := passagesFrom(hits)
	return &Answer{
		Text:     text,
		Passages: passages,
		Sources:  AggregateLabels(passages),
	}, nil
}

// condense reformulates a follow-up into a standalone question. With no
// history the question passes through unchanged. The condensation call
// tolerates the same failures as generation: on error the original
// question is used so the request survives.
func (c *Chain) condense(ctx context.Context, question string, turns []history.Turn) string {
	if len(turns) == 0 {
		return question
	}

	prompt := renderCondensePrompt(turns, question)
	rewritten, err := c.generator.Complete(ctx, prompt)
	if err != nil {
		c.logger.Warn("condense failed, using original question", "error", err)
		return question
	}

	rewritten = TrimSentinel(rewritten)
	rewritten = strings.TrimSpace(strings.Trim(rewritten, `"`))
	if rewritten == "" {
		return question
	}
	return rewritten
}

// joinPassages concatenates retrieved texts into the prompt's context
// block.
func joinPassages(hits []index.ScoredChunk) string {
	parts := make([]string, 0, len(hits))
	for _, hit := range hits {
		parts = append(parts, hit.Chunk.Text)
	}
	return strings.Join(parts, "\n\n")
}
