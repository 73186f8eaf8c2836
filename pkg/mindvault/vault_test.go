package mindvault

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/kailas-cloud/mindvault/internal/domain"
	domitem "github.com/kailas-cloud/mindvault/internal/domain/item"
	"github.com/kailas-cloud/mindvault/internal/domain/search/mode"
	"github.com/kailas-cloud/mindvault/internal/domain/search/request"
	"github.com/kailas-cloud/mindvault/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/mindvault/internal/usecase/health"
	itemuc "github.com/kailas-cloud/mindvault/internal/usecase/item"
)

// --- Save ---

func TestVault_Save(t *testing.T) {
	price := 2500.0
	mock := &mockItemUC{
		saveFn: func(_ context.Context, owner string, in itemuc.SaveInput) (domitem.Item, error) {
			if owner != "alice" {
				t.Errorf("owner = %q, want alice", owner)
			}
			if in.PageText != "page" || in.Price == nil || *in.Price != price {
				t.Errorf("input = %+v", in)
			}
			return mustItem("id-1", owner, domitem.Fields{
				Title:     in.Title,
				URL:       in.URL,
				Type:      domitem.TypeProduct,
				TopicUser: in.TopicUser,
				Price:     in.Price,
			}), nil
		},
	}

	v := testVault("alice", mock, nil)
	it, err := v.Save(context.Background(), SaveRequest{
		Title:     "Running shoes",
		URL:       "https://www.amazon.in/dp/B0",
		TopicUser: []string{"fitness"},
		Price:     &price,
		PageText:  "page",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if it.ID != "id-1" || it.Type != "product" || it.Category != "fitness" {
		t.Errorf("item = %+v", it)
	}
	if it.Price == nil || *it.Price != price {
		t.Errorf("Price = %v, want %v", it.Price, price)
	}
}

func TestVault_Save_InvalidInput(t *testing.T) {
	mock := &mockItemUC{
		saveFn: func(context.Context, string, itemuc.SaveInput) (domitem.Item, error) {
			return domitem.Item{}, domain.NewValidationError("title", "is required")
		},
	}

	_, err := testVault("alice", mock, nil).Save(context.Background(), SaveRequest{})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

// --- Get / List / Delete ---

func TestVault_Get_NotFound(t *testing.T) {
	mock := &mockItemUC{
		getFn: func(_ context.Context, owner, id string) (domitem.Item, error) {
			if owner != "bob" || id != "x" {
				t.Errorf("Get(%q, %q)", owner, id)
			}
			return domitem.Item{}, domain.ErrItemNotFound
		},
	}

	_, err := testVault("bob", mock, nil).Get(context.Background(), "x")
	if !errors.Is(err, ErrItemNotFound) {
		t.Errorf("err = %v, want ErrItemNotFound", err)
	}
}

func TestVault_List(t *testing.T) {
	mock := &mockItemUC{
		listFn: func(_ context.Context, owner string, limit int) ([]domitem.Item, error) {
			if limit != 5 {
				t.Errorf("limit = %d, want 5", limit)
			}
			return []domitem.Item{
				mustItem("b", owner, domitem.Fields{Title: "Newer"}),
				mustItem("a", owner, domitem.Fields{Title: "Older"}),
			}, nil
		},
	}

	items, err := testVault("alice", mock, nil).List(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 || items[0].ID != "b" || items[1].Title != "Older" {
		t.Errorf("items = %+v", items)
	}
	if items[0].Category != domitem.DefaultCategory {
		t.Errorf("Category = %q, want %q", items[0].Category, domitem.DefaultCategory)
	}
}

func TestVault_Delete(t *testing.T) {
	var deleted string
	mock := &mockItemUC{
		deleteFn: func(_ context.Context, _, id string) error {
			deleted = id
			return nil
		},
	}

	if err := testVault("alice", mock, nil).Delete(context.Background(), "id-7"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != "id-7" {
		t.Errorf("deleted = %q, want id-7", deleted)
	}
}

func TestVault_Delete_StoreFailure(t *testing.T) {
	mock := &mockItemUC{
		deleteFn: func(context.Context, string, string) error {
			return fmt.Errorf("del: %w", domain.ErrStoreFailure)
		},
	}

	err := testVault("alice", mock, nil).Delete(context.Background(), "id-7")
	if !errors.Is(err, ErrStoreFailure) {
		t.Errorf("err = %v, want ErrStoreFailure", err)
	}
}

// --- Search ---

func TestVault_Search(t *testing.T) {
	it := mustItem("a", "alice", domitem.Fields{Title: "Attention is all you need", TopicAuto: "AI"})
	mock := &mockSearchUC{
		searchFn: func(_ context.Context, req *request.Request) (result.Response, error) {
			if req.Owner() != "alice" || req.Limit() != 3 || req.SortBy() != request.SortDate {
				t.Errorf("request = owner %q limit %d sort %q", req.Owner(), req.Limit(), req.SortBy())
			}
			if echo := req.Echo(); echo.Type != "link" || echo.DateRange != "month" {
				t.Errorf("echo = %+v", echo)
			}
			return result.Response{
				Query:           req.Query(),
				DetectedFilters: []string{"Topic: AI"},
				Mode:            mode.Semantic,
				Results:         []result.Result{result.New(it, 0.82)},
			}, nil
		},
	}

	resp, err := testVault("alice", nil, mock).Search(context.Background(), SearchRequest{
		Query:     "ai papers",
		Limit:     3,
		SortBy:    "date",
		Type:      "link",
		DateRange: "month",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Query != "ai papers" || resp.Mode != "semantic" {
		t.Errorf("resp = %+v", resp)
	}
	if len(resp.DetectedFilters) != 1 || resp.DetectedFilters[0] != "Topic: AI" {
		t.Errorf("DetectedFilters = %v", resp.DetectedFilters)
	}
	if len(resp.Results) != 1 || resp.Results[0].ID != "a" || resp.Results[0].Similarity != 0.82 {
		t.Errorf("Results = %+v", resp.Results)
	}
}

func TestVault_Search_InvalidFilter(t *testing.T) {
	mock := &mockSearchUC{
		searchFn: func(context.Context, *request.Request) (result.Response, error) {
			t.Fatal("search must not run with an invalid filter")
			return result.Response{}, nil
		},
	}

	_, err := testVault("alice", nil, mock).Search(context.Background(), SearchRequest{DateRange: "decade"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

// --- Health ---

func TestClient_Health(t *testing.T) {
	c := &Client{healthSvc: &mockHealthUC{report: healthuc.Report{
		Status: healthuc.Degraded,
		Checks: map[string]healthuc.CheckResult{
			"database":  healthuc.CheckOK,
			"embedding": healthuc.CheckFallback,
		},
	}}}

	h := c.Health(context.Background())
	if h.Status != "degraded" {
		t.Errorf("Status = %q, want degraded", h.Status)
	}
	if h.Checks["embedding"] != "fallback" || h.Checks["database"] != "ok" {
		t.Errorf("Checks = %v", h.Checks)
	}
}
