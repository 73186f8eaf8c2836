package item

import (
	"context"

	"github.com/kailas-cloud/mindvault/internal/domain"
	domitem "github.com/kailas-cloud/mindvault/internal/domain/item"
	"github.com/kailas-cloud/mindvault/internal/usecase/classify"
)

// Repository defines the storage contract for items.
type Repository interface {
	Create(ctx context.Context, it *domitem.Item) error
	Get(ctx context.Context, owner, id string) (domitem.Item, error)
	Delete(ctx context.Context, owner, id string) error
	Find(ctx context.Context, q domitem.Query) ([]domitem.Item, error)
}

// Classifier assigns the machine-derived fields of a new item.
type Classifier interface {
	Classify(ctx context.Context, in classify.Input) domitem.Classification
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
