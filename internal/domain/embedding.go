package domain

import (
	"context"
)

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker verifies provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingMode tells whether vectors come from a real model or the hash fallback.
type EmbeddingMode string

const (
	// EmbeddingModeModel means vectors come from the configured model.
	EmbeddingModeModel EmbeddingMode = "model"
	// EmbeddingModePseudo means vectors are hash-derived and carry no semantics.
	EmbeddingModePseudo EmbeddingMode = "pseudo"
)

// EmbeddingResult carries the embedding vector and token usage through the decorator chain.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
	Mode         EmbeddingMode
}
