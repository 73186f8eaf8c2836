package mindvault

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/mindvault/internal/domain/search/request"
	itemuc "github.com/kailas-cloud/mindvault/internal/usecase/item"
)

// Vault manages and searches the items of a single owner.
type Vault struct {
	owner    string
	items    itemUseCase
	search   searchUseCase
	location *time.Location
	obs      *observer
}

// Save classifies, embeds and stores a new item.
func (v *Vault) Save(ctx context.Context, req SaveRequest) (_ Item, err error) {
	start := time.Now()
	defer func() { v.obs.observe("save", v.owner, start, err) }()

	it, err := v.items.Save(ctx, v.owner, itemuc.SaveInput{
		Title:        req.Title,
		URL:          req.URL,
		FileURL:      req.FileURL,
		ImageURL:     req.ImageURL,
		Type:         req.Type,
		Reason:       req.Reason,
		TopicAuto:    req.TopicAuto,
		TopicUser:    req.TopicUser,
		Price:        req.Price,
		SelectedText: req.SelectedText,
		Description:  req.Description,
		PageText:     req.PageText,
	})
	if err != nil {
		return Item{}, fmt.Errorf("save item: %w", err)
	}
	return fromInternalItem(&it), nil
}

// Get retrieves one item by ID.
func (v *Vault) Get(ctx context.Context, id string) (_ Item, err error) {
	start := time.Now()
	defer func() { v.obs.observe("get", v.owner, start, err) }()

	it, err := v.items.Get(ctx, v.owner, id)
	if err != nil {
		return Item{}, fmt.Errorf("get item: %w", err)
	}
	return fromInternalItem(&it), nil
}

// List returns the newest items first. A non-positive limit lists up to the service cap.
func (v *Vault) List(ctx context.Context, limit int) (_ []Item, err error) {
	start := time.Now()
	defer func() { v.obs.observe("list", v.owner, start, err) }()

	items, err := v.items.List(ctx, v.owner, limit)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	out := make([]Item, len(items))
	for i := range items {
		out[i] = fromInternalItem(&items[i])
	}
	return out, nil
}

// Delete removes one item by ID.
func (v *Vault) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { v.obs.observe("delete", v.owner, start, err) }()

	if err = v.items.Delete(ctx, v.owner, id); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// Search runs a natural language query with optional manual filters.
// An empty query with no filters returns the newest items.
func (v *Vault) Search(ctx context.Context, sr SearchRequest) (_ SearchResponse, err error) {
	start := time.Now()
	defer func() { v.obs.observe("search", v.owner, start, err) }()

	req, err := toInternalRequest(v.owner, sr, v.location)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("search: %w", err)
	}
	resp, err := v.search.Search(ctx, &req)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("search: %w", err)
	}
	v.obs.searched(string(resp.Mode), len(resp.Results))
	return fromInternalResponse(&resp), nil
}

func toInternalRequest(owner string, sr SearchRequest, loc *time.Location) (request.Request, error) {
	return request.New(owner, sr.Query, request.Facets{
		Type:      sr.Type,
		Reason:    sr.Reason,
		TopicUser: sr.TopicUser,
		TopicAuto: sr.TopicAuto,
		Category:  sr.Category,
		DateRange: sr.DateRange,
		From:      sr.From,
		To:        sr.To,
	}, sr.Limit, request.SortBy(sr.SortBy), loc)
}
