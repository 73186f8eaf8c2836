package item

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/kailas-cloud/mindvault/internal/db"
	domitem "github.com/kailas-cloud/mindvault/internal/domain/item"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	jsonSetFn     func(ctx context.Context, key, path string, data []byte) error
	jsonGetFn     func(ctx context.Context, key string, paths ...string) ([]byte, error)
	delFn         func(ctx context.Context, key string) error
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	searchListFn  func(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error)
}

func (m *mockStore) JSONSet(ctx context.Context, key, path string, data []byte) error {
	if m.jsonSetFn != nil {
		return m.jsonSetFn(ctx, key, path, data)
	}
	return nil
}

func (m *mockStore) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	if m.jsonGetFn != nil {
		return m.jsonGetFn(ctx, key, paths...)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) SearchList(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error) {
	if m.searchListFn != nil {
		return m.searchListFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, "mindvault:", "mindvault:items:idx", 1000), ms
}

var baseTime = time.Date(2024, 11, 10, 12, 0, 0, 0, time.UTC)

func testItem(t *testing.T, id, owner, title string, age time.Duration, mutate ...func(*domitem.Fields)) domitem.Item {
	t.Helper()
	f := domitem.Fields{Title: title, Type: domitem.TypeText, Keywords: []string{"go"}}
	for _, m := range mutate {
		m(&f)
	}
	it, err := domitem.New(id, owner, f, []float32{0.6, 0.8}, baseTime.Add(-age))
	if err != nil {
		t.Fatalf("item.New: %v", err)
	}
	return it
}

// entries encodes items the way FT.SEARCH RETURN $ hands them back.
func entries(t *testing.T, prefix string, items ...domitem.Item) *db.SearchResult {
	t.Helper()
	res := &db.SearchResult{Total: len(items)}
	for i := range items {
		data, err := json.Marshal(toDoc(&items[i]))
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		res.Entries = append(res.Entries, db.SearchEntry{
			Key:    prefix + items[i].ID(),
			Fields: map[string]string{db.JSONDocumentField: string(data)},
		})
	}
	return res
}

// pagedStore answers SearchList from items (newest first), honouring Offset and Limit.
func pagedStore(t *testing.T, items []domitem.Item, calls *[]db.ListQuery) func(context.Context, *db.ListQuery) (*db.SearchResult, error) {
	t.Helper()
	return func(_ context.Context, q *db.ListQuery) (*db.SearchResult, error) {
		*calls = append(*calls, *q)
		lo := min(q.Offset, len(items))
		hi := min(q.Offset+q.Limit, len(items))
		res := entries(t, "mindvault:item:", items[lo:hi]...)
		res.Total = len(items)
		return res, nil
	}
}
