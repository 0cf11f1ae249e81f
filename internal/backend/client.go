// Package backend talks to the embedding and generation services over the
// OpenAI-compatible HTTP API that llama.cpp's server exposes. The two
// services run as separate processes in the reference deployment, so each
// gets its own client with its own base URL and timeout.
package backend

import (
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// NewClient builds an OpenAI-compatible client for the given base URL.
// The timeout bounds every outbound call; the backends must fail fast
// rather than hang a request task indefinitely.
func NewClient(baseURL, apiKey string, timeout time.Duration) *openai.Client {
	opts := []option.RequestOption{
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}
	client := openai.NewClient(opts...)
	return &client
}
