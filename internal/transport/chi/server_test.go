package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mindvault/internal/domain"
	domitem "github.com/kailas-cloud/mindvault/internal/domain/item"
	"github.com/kailas-cloud/mindvault/internal/domain/search/mode"
	"github.com/kailas-cloud/mindvault/internal/domain/search/request"
	"github.com/kailas-cloud/mindvault/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/mindvault/internal/usecase/health"
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
	resp.Filters = req.Echo()
	return resp, nil
}

type fakeItems struct {
	saved     itemuc.SaveInput
	saveOwner string
	listLimit int
	items     map[string]domitem.Item
	err       error
}

func (f *fakeItems) Save(_ context.Context, owner string, in itemuc.SaveInput) (domitem.Item, error) {
	if f.err != nil {
		return domitem.Item{}, f.err
	}
	if strings.TrimSpace(in.Title) == "" {
		return domitem.Item{}, domain.NewValidationError("title", "is required")
	}
	f.saved, f.saveOwner = in, owner
	return domitem.New("new-id", owner, domitem.Fields{Title: in.Title, URL: in.URL, TopicUser: in.TopicUser}, nil, testNow)
}

func (f *fakeItems) List(_ context.Context, owner string, limit int) ([]domitem.Item, error) {
	f.listLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	var out []domitem.Item
	for _, it := range f.items {
		if it.Owner() == owner {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeItems) Get(_ context.Context, owner, id string) (domitem.Item, error) {
	if f.err != nil {
		return domitem.Item{}, f.err
	}
	it, ok := f.items[id]
	if !ok || it.Owner() != owner {
		return domitem.Item{}, domain.ErrItemNotFound
	}
	return it, nil
}

func (f *fakeItems) Delete(ctx context.Context, owner, id string) error {
	if _, err := f.Get(ctx, owner, id); err != nil {
		return err
	}
	delete(f.items, id)
	return nil
}

type fakeHealth struct{ report healthuc.Report }

func (f *fakeHealth) Check(context.Context) healthuc.Report { return f.report }

var testNow = time.Date(2024, 11, 10, 12, 0, 0, 0, time.UTC)

func mustItem(t *testing.T, id, owner string, f domitem.Fields) domitem.Item {
	t.Helper()
	it, err := domitem.New(id, owner, f, nil, testNow)
	if err != nil {
		t.Fatalf("domitem.New: %v", err)
	}
	return it
}

type harness struct {
	search *fakeSearcher
	items  *fakeItems
	health *fakeHealth
	router http.Handler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		search: &fakeSearcher{},
		items:  &fakeItems{items: map[string]domitem.Item{}},
		health: &fakeHealth{report: healthuc.Report{
			Status: healthuc.Healthy,
			Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckOK},
		}},
	}
	srv := NewServer(h.search, h.items, h.health, zap.NewNop()).WithSearchDefaults(20, 50, time.UTC)
	h.router = srv.Router(testAuth())
	return h
}

func (h *harness) do(t *testing.T, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, http.NoBody)
	}
	req.Header.Set("Authorization", "Bearer secret")
	rr := httptest.NewRecorder()
	h.router.ServeHTTP(rr, req)

	var out map[string]any
	if strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, target, err, rr.Body.String())
		}
	}
	return rr, out
}

// --- Tests ---

func TestSearchItems_ResponseShape(t *testing.T) {
	h := newHarness(t)
	it := mustItem(t, "i1", "alice", domitem.Fields{Title: "AI notes", TopicAuto: "AI"})
	h.search.resp = result.Response{
		DetectedFilters: []string{"Topic: AI"},
		Mode:            mode.Semantic,
		Results:         []result.Result{result.New(it, 0.87)},
	}

	rr, body := h.do(t, "GET", "/api/search?q=ai+stuff&type=link&limit=7", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rr.Code, rr.Body.String())
	}

	if h.search.got.Owner() != "alice" {
		t.Errorf("owner = %q, want alice", h.search.got.Owner())
	}
	if h.search.got.Limit() != 7 {
		t.Errorf("limit = %d, want 7", h.search.got.Limit())
	}
	if body["success"] != true || body["query"] != "ai stuff" || body["count"] != float64(1) {
		t.Errorf("unexpected envelope: %v", body)
	}
	if af, _ := body["aiFilters"].([]any); len(af) != 1 || af[0] != "Topic: AI" {
		t.Errorf("aiFilters = %v", body["aiFilters"])
	}

	filters, _ := body["filters"].(map[string]any)
	if filters["type"] != "link" || filters["reason"] != "all" || filters["dateRange"] != "all" {
		t.Errorf("filters = %v", filters)
	}
	if v, ok := filters["from"]; !ok || v != nil {
		t.Errorf("filters.from = %v, want null", v)
	}

	results, _ := body["results"].([]any)
	first, _ := results[0].(map[string]any)
	if first["id"] != "i1" || first["similarity"] != 0.87 {
		t.Errorf("result = %v", first)
	}
}

func TestSearchItems_EmptyIsNotError(t *testing.T) {
	h := newHarness(t)
	h.search.resp = result.Response{Mode: mode.Lexical}

	rr, body := h.do(t, "GET", "/api/search?q=nothing", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if body["count"] != float64(0) {
		t.Errorf("count = %v, want 0", body["count"])
	}
	if results, ok := body["results"].([]any); !ok || len(results) != 0 {
		t.Errorf("results = %v, want []", body["results"])
	}
	if v, ok := body["aiFilters"]; !ok || v != nil {
		t.Errorf("aiFilters = %v, want null", v)
	}
}

func TestSearchItems_AbsentQueryIsNull(t *testing.T) {
	h := newHarness(t)
	h.search.resp = result.Response{Mode: mode.Recent}

	rr, body := h.do(t, "GET", "/api/search?type=link", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if v, ok := body["query"]; !ok || v != nil {
		t.Errorf("query = %v, want null", v)
	}
}

func TestSearchItems_LimitDefaultsAndCap(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", 20},
		{"&limit=10", 10},
		{"&limit=500", 50},
	}
	for _, tt := range tests {
		h := newHarness(t)
		rr, _ := h.do(t, "GET", "/api/search?q=x"+tt.query, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%q: status = %d", tt.query, rr.Code)
		}
		if got := h.search.got.Limit(); got != tt.want {
			t.Errorf("%q: limit = %d, want %d", tt.query, got, tt.want)
		}
	}
}

func TestSearchItems_BadParams(t *testing.T) {
	tests := []string{
		"/api/search?limit=abc",
		"/api/search?limit=-1",
		"/api/search?type=spaceship",
		"/api/search?dateRange=decade",
		"/api/search?from=yesterday",
		"/api/search?sortBy=random",
	}
	for _, target := range tests {
		h := newHarness(t)
		rr, body := h.do(t, "GET", target, "")
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rr.Code)
		}
		if body["success"] != false {
			t.Errorf("%s: success = %v, want false", target, body["success"])
		}
		if h.search.got != nil {
			t.Errorf("%s: search ran on invalid input", target)
		}
	}
}

func TestSearchItems_StoreFailure(t *testing.T) {
	h := newHarness(t)
	h.search.err = fmt.Errorf("find items: %w", domain.ErrStoreFailure)

	rr, body := h.do(t, "GET", "/api/search?q=anything", "")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	if body["error"] != msgSearchFailed {
		t.Errorf("error = %v, want %q", body["error"], msgSearchFailed)
	}
	if _, ok := body["results"]; ok {
		t.Error("failed search must not carry results")
	}
}

func TestCreateItem(t *testing.T) {
	h := newHarness(t)

	rr, body := h.do(t, "POST", "/api/items",
		`{"title":"Rust book","url":"https://example.com","topicUser":["reading"],"price":499}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (%s)", rr.Code, rr.Body.String())
	}
	if h.items.saveOwner != "alice" {
		t.Errorf("owner = %q, want alice", h.items.saveOwner)
	}
	if h.items.saved.Price == nil || *h.items.saved.Price != 499 {
		t.Errorf("price = %v, want 499", h.items.saved.Price)
	}
	item, _ := body["item"].(map[string]any)
	if item["id"] != "new-id" || item["category"] != "reading" {
		t.Errorf("item = %v", item)
	}
}

func TestCreateItem_Invalid(t *testing.T) {
	h := newHarness(t)

	rr, _ := h.do(t, "POST", "/api/items", `{"title":`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("malformed body: status = %d, want 400", rr.Code)
	}

	rr, body := h.do(t, "POST", "/api/items", `{"title":"  "}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("blank title: status = %d, want 400", rr.Code)
	}
	if msg, _ := body["error"].(string); !strings.Contains(msg, "title") {
		t.Errorf("error = %q, want it to name the title field", msg)
	}
}

func TestItemsCRUD_OwnerScoped(t *testing.T) {
	h := newHarness(t)
	h.items.items["mine"] = mustItem(t, "mine", "alice", domitem.Fields{Title: "mine"})
	h.items.items["theirs"] = mustItem(t, "theirs", "bob", domitem.Fields{Title: "theirs"})

	rr, body := h.do(t, "GET", "/api/items?limit=5", "")
	if rr.Code != http.StatusOK || body["count"] != float64(1) {
		t.Fatalf("list: status = %d body = %v", rr.Code, body)
	}
	if h.items.listLimit != 5 {
		t.Errorf("list limit = %d, want 5", h.items.listLimit)
	}

	if rr, _ := h.do(t, "GET", "/api/items/mine", ""); rr.Code != http.StatusOK {
		t.Errorf("get own: status = %d, want 200", rr.Code)
	}
	if rr, _ := h.do(t, "GET", "/api/items/theirs", ""); rr.Code != http.StatusNotFound {
		t.Errorf("get foreign: status = %d, want 404", rr.Code)
	}
	if rr, _ := h.do(t, "DELETE", "/api/items/theirs", ""); rr.Code != http.StatusNotFound {
		t.Errorf("delete foreign: status = %d, want 404", rr.Code)
	}
	if _, ok := h.items.items["theirs"]; !ok {
		t.Error("foreign item was deleted")
	}
	if rr, _ := h.do(t, "DELETE", "/api/items/mine", ""); rr.Code != http.StatusOK {
		t.Errorf("delete own: status = %d, want 200", rr.Code)
	}
	if rr, _ := h.do(t, "GET", "/api/items/mine", ""); rr.Code != http.StatusNotFound {
		t.Errorf("get deleted: status = %d, want 404", rr.Code)
	}
}

func TestListItems_StoreFailure(t *testing.T) {
	h := newHarness(t)
	h.items.err = errors.Join(domain.ErrStoreFailure, errors.New("connection refused"))

	rr, body := h.do(t, "GET", "/api/items", "")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	if body["error"] != msgListFailed {
		t.Errorf("error = %v, internals must not leak", body["error"])
	}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		status healthuc.Status
		want   int
	}{
		{healthuc.Healthy, http.StatusOK},
		{healthuc.Degraded, http.StatusOK},
		{healthuc.Unhealthy, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		h := newHarness(t)
		h.health.report = healthuc.Report{
			Status: tt.status,
			Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckOK, "oracle": healthuc.CheckFallback},
		}

		req := httptest.NewRequest("GET", "/health", http.NoBody)
		rr := httptest.NewRecorder()
		h.router.ServeHTTP(rr, req)

		if rr.Code != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.status, rr.Code, tt.want)
		}
		var body struct {
			Status string            `json:"status"`
			Checks map[string]string `json:"checks"`
		}
		if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Status != string(tt.status) || body.Checks["oracle"] != "fallback" {
			t.Errorf("%s: body = %+v", tt.status, body)
		}
	}
}

func TestMetricsEndpoint_NoAuth(t *testing.T) {
	h := newHarness(t)
	req := httptest.NewRequest("GET", "/metrics", http.NoBody)
	rr := httptest.NewRecorder()
	h.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}

func TestRouter_UnauthenticatedSearch(t *testing.T) {
	h := newHarness(t)
	req := httptest.NewRequest("GET", "/api/search?q=x", http.NoBody)
	rr := httptest.NewRecorder()
	h.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rr.Code)
	}
	if h.search.got != nil {
		t.Error("search ran without an owner")
	}
}

func TestJSONRecoverer(t *testing.T) {
	handler := JSONRecoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q, want application/json", ct)
	}
}
