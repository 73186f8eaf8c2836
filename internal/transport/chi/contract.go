package chi

import (
	"context"

	domitem "github.com/kailas-cloud/mindvault/internal/domain/item"
	"github.com/kailas-cloud/mindvault/internal/domain/search/request"
	"github.com/kailas-cloud/mindvault/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/mindvault/internal/usecase/health"
	itemuc "github.com/kailas-cloud/mindvault/internal/usecase/item"
)

// Searcher runs owner-scoped searches.
type Searcher interface {
	Search(ctx context.Context, req *request.Request) (result.Response, error)
}

// Items manages saved items.
type Items interface {
	Save(ctx context.Context, owner string, in itemuc.SaveInput) (domitem.Item, error)
	List(ctx context.Context, owner string, limit int) ([]domitem.Item, error)
	Get(ctx context.Context, owner, id string) (domitem.Item, error)
	Delete(ctx context.Context, owner, id string) error
}

// HealthChecker produces the readiness report.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
