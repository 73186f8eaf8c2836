package mindvault

import (
	"context"
	"time"

	domitem "github.com/kailas-cloud/mindvault/internal/domain/item"
	"github.com/kailas-cloud/mindvault/internal/domain/search/request"
	"github.com/kailas-cloud/mindvault/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/mindvault/internal/usecase/health"
	itemuc "github.com/kailas-cloud/mindvault/internal/usecase/item"
)

// --- itemUseCase mock ---

type mockItemUC struct {
	saveFn   func(ctx context.Context, owner string, in itemuc.SaveInput) (domitem.Item, error)
	listFn   func(ctx context.Context, owner string, limit int) ([]domitem.Item, error)
	getFn    func(ctx context.Context, owner, id string) (domitem.Item, error)
	deleteFn func(ctx context.Context, owner, id string) error
}

func (m *mockItemUC) Save(ctx context.Context, owner string, in itemuc.SaveInput) (domitem.Item, error) {
	return m.saveFn(ctx, owner, in)
}

func (m *mockItemUC) List(ctx context.Context, owner string, limit int) ([]domitem.Item, error) {
	return m.listFn(ctx, owner, limit)
}

func (m *mockItemUC) Get(ctx context.Context, owner, id string) (domitem.Item, error) {
	return m.getFn(ctx, owner, id)
}

func (m *mockItemUC) Delete(ctx context.Context, owner, id string) error {
	return m.deleteFn(ctx, owner, id)
}

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn func(ctx context.Context, req *request.Request) (result.Response, error)
}

func (m *mockSearchUC) Search(ctx context.Context, req *request.Request) (result.Response, error) {
	return m.searchFn(ctx, req)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(_ context.Context) healthuc.Report {
	return m.report
}

var testCreatedAt = time.Date(2024, 11, 10, 9, 30, 0, 0, time.UTC)

func mustItem(id, owner string, f domitem.Fields) domitem.Item {
	it, err := domitem.New(id, owner, f, nil, testCreatedAt)
	if err != nil {
		panic(err)
	}
	return it
}

func testVault(owner string, items itemUseCase, search searchUseCase) *Vault {
	c := &Client{itemSvc: items, searchSvc: search, location: time.UTC}
	return c.Vault(owner)
}
