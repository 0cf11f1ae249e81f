package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
)

// SamplingParams carries the decoding knobs forwarded to the generation
// backend with every prompt. The stop-sequence list must match the
// deployed model's delimiter tokens or truncation will be incorrect; that
// contract is fixed at deployment time, not validated here.
type SamplingParams struct {
	Model            string
	MaxTokens        int
	Temperature      float64
	TopP             float64
	FrequencyPenalty float64
	PresencePenalty  float64
	Stop             []string
}

// Generator sends fully-assembled prompts to the generation backend.
// It is stateless: one call per answer, no backend-side streaming.
type Generator struct {
	client *openai.Client
	params SamplingParams
}

// NewGenerator creates a Generator with the given sampling parameters.
func NewGenerator(client *openai.Client, params SamplingParams) *Generator {
	return &Generator{client: client, params: params}
}

// Complete sends the rendered prompt and returns the generated text.
// A transport or API failure maps to ErrBackendUnreachable; a blank
// completion maps to ErrEmptyGeneration.
func (g *Generator) Complete(ctx context.Context, prompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model: openai.ChatModel(g.params.Model),
	}
	if g.params.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(g.params.MaxTokens))
	}
	params.Temperature = openai.Float(g.params.Temperature)
	params.TopP = openai.Float(g.params.TopP)
	params.FrequencyPenalty = openai.Float(g.params.FrequencyPenalty)
	params.PresencePenalty = openai.Float(g.params.PresencePenalty)
	if len(g.params.Stop) > 0 {
		params.Stop = openai.ChatCompletionNewParamsStopUnion{
			OfStringArray: g.params.Stop,
		}
	}

	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBackendUnreachable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: response carried no choices", ErrEmptyGeneration)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyGeneration
	}
	return text, nil
}
