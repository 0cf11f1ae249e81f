// Package config centralizes environment-backed configuration for the
// UCDB-IA service. A .env file is loaded by the binaries (via godotenv)
// before Load runs; in production the values come straight from the
// environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds every tunable the service reads at startup.
type Config struct {
	// HTTP
	ListenAddr string

	// Generation backend (llama.cpp server or any OpenAI-compatible API)
	LLMBaseURL        string
	GenerationModel   string
	MaxTokens         int
	Temperature       float64
	TopP              float64
	FrequencyPenalty  float64
	PresencePenalty   float64
	StopSequences     []string
	GenerationTimeout time.Duration

	// Embedding backend
	EmbeddingBaseURL string
	EmbeddingModel   string
	EmbeddingTimeout time.Duration
	EmbedBatchSize   int

	// API key shared by both backends. llama.cpp ignores it, hosted
	// OpenAI-compatible endpoints require it.
	APIKey string

	// Corpus and index
	CorpusDir       string
	DataDir         string
	ChunkSize       int
	ChunkOverlap    int
	TopK            int
	FetchK          int
	IndexBackend    string // "local" or "qdrant"
	QdrantHost      string
	QdrantPort      int
	QdrantCollection string

	// Optional remote corpus (GitHub). When set ("owner/repo"), the
	// ingestor reads documents from the repository path instead of
	// CorpusDir.
	GitHubRepo string
	GitHubPath string

	// Conversation
	HistoryWindow int // turn-pairs kept per session
	StreamDelay   time.Duration
}

// Load builds a Config from the environment, falling back to the defaults
// the service shipped with.
func Load() *Config {
	return &Config{
		ListenAddr: getEnv("LISTEN_ADDR", ":8000"),

		LLMBaseURL:        getEnv("LLM_BASE_URL", "http://localhost:8080/v1"),
		GenerationModel:   getEnv("LLM_MODEL", "local"),
		MaxTokens:         getEnvInt("MAX_TOKENS", 10240),
		Temperature:       getEnvFloat("TEMPERATURE", 0.8),
		TopP:              getEnvFloat("TOP_P", 0.9),
		FrequencyPenalty:  getEnvFloat("FREQUENCY_PENALTY", 0.2),
		PresencePenalty:   getEnvFloat("PRESENCE_PENALTY", 0.2),
		StopSequences:     []string{"Pergunta:", "Resposta:"},
		GenerationTimeout: getEnvDuration("LLM_TIMEOUT", 120*time.Second),

		EmbeddingBaseURL: getEnv("EMBEDDING_BASE_URL", "http://localhost:8081/v1"),
		EmbeddingModel:   getEnv("EMBEDDING_MODEL", "local"),
		EmbeddingTimeout: getEnvDuration("EMBEDDING_TIMEOUT", 30*time.Second),
		EmbedBatchSize:   getEnvInt("EMBED_BATCH_SIZE", 32),

		APIKey: getEnv("OPENAI_API_KEY", "sk-no-key-required"),

		CorpusDir:        getEnv("CORPUS_DIR", "pdfs"),
		DataDir:          getEnv("DATA_DIR", "embeddings"),
		ChunkSize:        getEnvInt("CHUNK_SIZE", 812),
		ChunkOverlap:     getEnvInt("CHUNK_OVERLAP", 64),
		TopK:             getEnvInt("RETRIEVAL_K", 4),
		FetchK:           getEnvInt("RETRIEVAL_FETCH_K", 10),
		IndexBackend:     getEnv("INDEX_BACKEND", "local"),
		QdrantHost:       getEnv("QDRANT_HOST", "localhost"),
		QdrantPort:       getEnvInt("QDRANT_PORT", 6334),
		QdrantCollection: getEnv("QDRANT_COLLECTION", "passages"),

		GitHubRepo: getEnv("CORPUS_GITHUB_REPO", ""),
		GitHubPath: getEnv("CORPUS_GITHUB_PATH", "docs"),

		HistoryWindow: getEnvInt("HISTORY_WINDOW", 4),
		StreamDelay:   getEnvDuration("STREAM_DELAY", 5*time.Millisecond),
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		// Bare numbers are treated as seconds, matching the original
		// deployment's .env files.
		if i, err := strconv.Atoi(v); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return defaultValue
}

// Validate catches configurations that would only fail deep inside a
// request.
func (c *Config) Validate() error {
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk overlap %d must be smaller than chunk size %d", c.ChunkOverlap, c.ChunkSize)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("retrieval k must be positive, got %d", c.TopK)
	}
	if c.FetchK < c.TopK {
		c.FetchK = c.TopK
	}
	switch c.IndexBackend {
	case "local", "qdrant":
	default:
		return fmt.Errorf("unknown index backend %q", c.IndexBackend)
	}
	return nil
}
