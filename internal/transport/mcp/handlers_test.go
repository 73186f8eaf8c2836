package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mindvault/internal/domain"
	domitem "github.com/kailas-cloud/mindvault/internal/domain/item"
	"github.com/kailas-cloud/mindvault/internal/domain/search/mode"
	"github.com/kailas-cloud/mindvault/internal/domain/search/request"
	"github.com/kailas-cloud/mindvault/internal/domain/search/result"
	itemuc "github.com/kailas-cloud/mindvault/internal/usecase/item"
)

// --- Mocks ---

type fakeSearcher struct {
	got  *request.Request
	resp result.Response
	err  error
}

func (f *fakeSearcher) Search(_ context.Context, req *request.Request) (result.Response, error) {
	f.got = req
	if f.err != nil {
		return result.Response{}, f.err
	}
	resp := f.resp
	resp.Query = req.Query()
	return resp, nil
}

type fakeItems struct {
	saveOwner string
	saved     itemuc.SaveInput
	listOwner string
	listLimit int
	list      []domitem.Item
	err       error
}

func (f *fakeItems) Save(_ context.Context, owner string, in itemuc.SaveInput) (domitem.Item, error) {
	if f.err != nil {
		return domitem.Item{}, f.err
	}
	f.saveOwner, f.saved = owner, in
	return domitem.New("id-1", owner, domitem.Fields{Title: in.Title, URL: in.URL, TopicUser: in.TopicUser}, nil, testNow)
}

func (f *fakeItems) List(_ context.Context, owner string, limit int) ([]domitem.Item, error) {
	f.listOwner, f.listLimit = owner, limit
	return f.list, f.err
}

var testNow = time.Date(2024, 11, 10, 12, 0, 0, 0, time.UTC)

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T, want TextContent", res.Content[0])
	}
	return text.Text
}

// --- Tests ---

func TestSearchItems(t *testing.T) {
	it, err := domitem.New("a", "alice", domitem.Fields{Title: "AI paper", TopicAuto: "AI"}, nil, testNow)
	if err != nil {
		t.Fatal(err)
	}
	search := &fakeSearcher{resp: result.Response{
		DetectedFilters: []string{"Topic: AI"},
		Mode:            mode.Semantic,
		Results:         []result.Result{result.New(it, 0.9)},
	}}
	h := NewHandlers(search, &fakeItems{}, "alice", zap.NewNop())

	res, err := h.SearchItems(context.Background(), callRequest("search_items", map[string]any{
		"query":      "ai papers",
		"limit":      float64(5),
		"type":       "link",
		"date_range": "week",
	}))
	if err != nil {
		t.Fatalf("SearchItems: %v", err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}

	if search.got.Owner() != "alice" || search.got.Limit() != 5 {
		t.Errorf("request owner/limit = %q/%d", search.got.Owner(), search.got.Limit())
	}
	if echo := search.got.Echo(); echo.Type != "link" || echo.DateRange != "week" {
		t.Errorf("echo = %+v", echo)
	}

	var body struct {
		Query   string        `json:"query"`
		Count   int           `json:"count"`
		Results []itemSummary `json:"results"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Query != "ai papers" || body.Count != 1 {
		t.Errorf("body = %+v", body)
	}
	if s := body.Results[0].Similarity; s == nil || *s != 0.9 {
		t.Errorf("similarity = %v, want 0.9", s)
	}
}

func TestSearchItems_Errors(t *testing.T) {
	h := NewHandlers(&fakeSearcher{}, &fakeItems{}, "alice", zap.NewNop())
	res, _ := h.SearchItems(context.Background(), callRequest("search_items", map[string]any{"type": "spaceship"}))
	if !res.IsError || !strings.Contains(resultText(t, res), "type") {
		t.Errorf("invalid type: %+v", res)
	}

	failing := &fakeSearcher{err: fmt.Errorf("find: %w", domain.ErrStoreFailure)}
	h = NewHandlers(failing, &fakeItems{}, "alice", zap.NewNop())
	res, _ = h.SearchItems(context.Background(), callRequest("search_items", map[string]any{"query": "x"}))
	if !res.IsError || resultText(t, res) != "Failed to search items" {
		t.Errorf("store failure: %q", resultText(t, res))
	}
}

func TestSaveItem(t *testing.T) {
	items := &fakeItems{}
	h := NewHandlers(&fakeSearcher{}, items, "alice", zap.NewNop())

	res, err := h.SaveItem(context.Background(), callRequest("save_item", map[string]any{
		"title":  "Go memory model",
		"url":    "https://go.dev/ref/mem",
		"text":   "happens before",
		"topics": []any{"golang", " ", "concurrency"},
	}))
	if err != nil {
		t.Fatalf("SaveItem: %v", err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}
	if items.saveOwner != "alice" || items.saved.SelectedText != "happens before" {
		t.Errorf("saved = %+v as %q", items.saved, items.saveOwner)
	}
	if got := items.saved.TopicUser; len(got) != 2 || got[0] != "golang" || got[1] != "concurrency" {
		t.Errorf("topics = %v", got)
	}
	if !strings.Contains(resultText(t, res), `"category": "golang"`) {
		t.Errorf("result = %s", resultText(t, res))
	}
}

func TestSaveItem_RequiresTitle(t *testing.T) {
	items := &fakeItems{}
	h := NewHandlers(&fakeSearcher{}, items, "alice", zap.NewNop())

	res, _ := h.SaveItem(context.Background(), callRequest("save_item", map[string]any{"url": "https://x.io"}))
	if !res.IsError {
		t.Error("missing title must be a tool error")
	}
	if items.saveOwner != "" {
		t.Error("item saved without a title")
	}
}

func TestSaveItem_TopicsAsString(t *testing.T) {
	items := &fakeItems{}
	h := NewHandlers(&fakeSearcher{}, items, "alice", zap.NewNop())

	_, _ = h.SaveItem(context.Background(), callRequest("save_item", map[string]any{
		"title":  "x",
		"topics": "a, b",
	}))
	if got := items.saved.TopicUser; len(got) != 2 || got[1] != "b" {
		t.Errorf("topics = %v", got)
	}
}

func TestListItems_DefaultLimit(t *testing.T) {
	items := &fakeItems{}
	h := NewHandlers(&fakeSearcher{}, items, "alice", zap.NewNop()).WithListLimit(7)

	res, err := h.ListItems(context.Background(), callRequest("list_items", map[string]any{}))
	if err != nil || res.IsError {
		t.Fatalf("ListItems: %v %+v", err, res)
	}
	if items.listOwner != "alice" || items.listLimit != 7 {
		t.Errorf("list owner/limit = %q/%d, want alice/7", items.listOwner, items.listLimit)
	}

	_, _ = h.ListItems(context.Background(), callRequest("list_items", map[string]any{"limit": float64(3)}))
	if items.listLimit != 3 {
		t.Errorf("explicit limit = %d, want 3", items.listLimit)
	}
}
