package mindvault

import "context"

// Embedder converts text to vector embeddings.
// Vectors must have the dimension set with WithVectorDimensions.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult carries the embedding vector and token counts.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Oracle is a language model that answers a prompt with free text,
// expected to contain one JSON object.
type Oracle interface {
	Complete(ctx context.Context, req OracleRequest) (OracleResponse, error)
}

// OracleRequest is one prompt, optionally with an image to look at.
type OracleRequest struct {
	Prompt   string
	ImageURL string
}

// OracleResponse is the raw model answer.
type OracleResponse struct {
	Text        string
	TotalTokens int
}
