package search

import (
	"context"
	"time"

	"github.com/kailas-cloud/mindvault/internal/domain"
	"github.com/kailas-cloud/mindvault/internal/domain/item"
	"github.com/kailas-cloud/mindvault/internal/domain/search/query"
)

// Repository reads owner-scoped items.
type Repository interface {
	Find(ctx context.Context, q item.Query) ([]item.Item, error)
}

// Extractor turns query text into facets. It must not fail; an empty
// filter means nothing was detected.
type Extractor interface {
	Extract(ctx context.Context, q string, today time.Time) query.Filter
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
