package mcp

import (
	"context"

	domitem "github.com/kailas-cloud/mindvault/internal/domain/item"
	"github.com/kailas-cloud/mindvault/internal/domain/search/request"
	"github.com/kailas-cloud/mindvault/internal/domain/search/result"
	itemuc "github.com/kailas-cloud/mindvault/internal/usecase/item"
)

// Searcher runs owner-scoped searches.
type Searcher interface {
	Search(ctx context.Context, req *request.Request) (result.Response, error)
}

// Items saves and lists vault items.
type Items interface {
	Save(ctx context.Context, owner string, in itemuc.SaveInput) (domitem.Item, error)
	List(ctx context.Context, owner string, limit int) ([]domitem.Item, error)
}
