package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mindvault/internal/domain"
	domitem "github.com/kailas-cloud/mindvault/internal/domain/item"
	"github.com/kailas-cloud/mindvault/internal/domain/search/request"
	itemuc "github.com/kailas-cloud/mindvault/internal/usecase/item"
)

// Handlers implements the MCP tools for a single owner.
type Handlers struct {
	search    Searcher
	items     Items
	owner     string
	loc       *time.Location
	listLimit int
	logger    *zap.Logger
}

// NewHandlers creates tool handlers acting as owner.
func NewHandlers(search Searcher, items Items, owner string, logger *zap.Logger) *Handlers {
	return &Handlers{
		search:    search,
		items:     items,
		owner:     owner,
		loc:       time.UTC,
		listLimit: 10,
		logger:    logger,
	}
}

// WithLocation sets the timezone for named date ranges.
func (h *Handlers) WithLocation(loc *time.Location) *Handlers {
	if loc != nil {
		h.loc = loc
	}
	return h
}

// WithListLimit sets the default list_items size.
func (h *Handlers) WithListLimit(n int) *Handlers {
	if n > 0 {
		h.listLimit = n
	}
	return h
}

type itemSummary struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	URL        string   `json:"url,omitempty"`
	Type       string   `json:"type"`
	Reason     string   `json:"reason,omitempty"`
	Category   string   `json:"category"`
	Keywords   []string `json:"keywords,omitempty"`
	Summary    string   `json:"summary,omitempty"`
	Price      *float64 `json:"price,omitempty"`
	CreatedAt  string   `json:"createdAt"`
	Similarity *float64 `json:"similarity,omitempty"`
}

// SearchItems handles the search_items tool.
func (h *Handlers) SearchItems(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	facets := request.Facets{
		Type:      req.GetString("type", ""),
		Reason:    req.GetString("reason", ""),
		Category:  req.GetString("category", ""),
		DateRange: req.GetString("date_range", ""),
	}
	limit := req.GetInt("limit", request.DefaultLimit)
	if limit <= 0 {
		limit = request.DefaultLimit
	}

	sreq, err := request.New(h.owner, req.GetString("query", ""), facets, limit, request.SortRelevance, h.loc)
	if err != nil {
		return h.toolError(err, "Failed to search items"), nil
	}

	resp, err := h.search.Search(ctx, &sreq)
	if err != nil {
		return h.toolError(err, "Failed to search items"), nil
	}

	results := make([]itemSummary, len(resp.Results))
	for i := range resp.Results {
		it := resp.Results[i].Item()
		score := resp.Results[i].Score()
		results[i] = summarize(&it)
		results[i].Similarity = &score
	}
	return jsonResult(map[string]any{
		"query":     resp.Query,
		"aiFilters": resp.DetectedFilters,
		"count":     len(results),
		"results":   results,
	})
}

// SaveItem handles the save_item tool.
func (h *Handlers) SaveItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError("title argument is required and must be a string"), nil
	}

	it, err := h.items.Save(ctx, h.owner, itemuc.SaveInput{
		Title:        title,
		URL:          req.GetString("url", ""),
		SelectedText: req.GetString("text", ""),
		TopicUser:    stringArray(req, "topics"),
	})
	if err != nil {
		return h.toolError(err, "Failed to save item"), nil
	}

	return jsonResult(map[string]any{
		"success": true,
		"item":    summarize(&it),
	})
}

// ListItems handles the list_items tool.
func (h *Handlers) ListItems(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", h.listLimit)
	if limit <= 0 {
		limit = h.listLimit
	}

	items, err := h.items.List(ctx, h.owner, limit)
	if err != nil {
		return h.toolError(err, "Failed to fetch items"), nil
	}

	out := make([]itemSummary, len(items))
	for i := range items {
		out[i] = summarize(&items[i])
	}
	return jsonResult(map[string]any{
		"count": len(out),
		"items": out,
	})
}

// toolError reports validation problems verbatim and hides everything else behind fallback.
func (h *Handlers) toolError(err error, fallback string) *mcp.CallToolResult {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrUnauthenticated):
		return mcp.NewToolResultError(err.Error())
	default:
		h.logger.Error("mcp tool failed", zap.Error(err))
		return mcp.NewToolResultError(fallback)
	}
}

func summarize(it *domitem.Item) itemSummary {
	s := itemSummary{
		ID:        it.ID(),
		Title:     it.Title(),
		URL:       it.URL(),
		Type:      string(it.Type()),
		Reason:    it.Reason(),
		Category:  it.Category(),
		Keywords:  it.Keywords(),
		Summary:   it.Summary(),
		CreatedAt: it.CreatedAt().Format(time.RFC3339),
	}
	if p, ok := it.Price(); ok {
		s.Price = &p
	}
	return s
}

func stringArray(req mcp.CallToolRequest, key string) []string {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return nil
	}
	switch v := args[key].(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	case string:
		var out []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError("failed to marshal response"), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
