// Package item persists saved items as RedisJSON documents behind an FT index.
package item

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/mindvault/internal/db"
	"github.com/kailas-cloud/mindvault/internal/domain"
	domitem "github.com/kailas-cloud/mindvault/internal/domain/item"
	"github.com/kailas-cloud/mindvault/internal/domain/search/filter"
)

// store is the consumer interface for items (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Del(ctx context.Context, key string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	SearchList(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error)
}

// Repo implements the item repository consumed by the item and search services.
type Repo struct {
	store        store
	prefix       string
	index        *db.IndexDefinition
	candidateCap int
}

// New creates an item repository. keyPrefix namespaces every key (e.g. "mindvault:").
func New(s store, keyPrefix, indexName string, candidateCap int) *Repo {
	if candidateCap <= 0 {
		candidateCap = 1000
	}
	return &Repo{
		store:        s,
		prefix:       keyPrefix + "item:",
		index:        indexDefinition(indexName, keyPrefix+"item:"),
		candidateCap: candidateCap,
	}
}

func indexDefinition(name, prefix string) *db.IndexDefinition {
	return db.NewIndex(name).
		OnJSON().
		Prefix(prefix).
		Tag("$." + domitem.FieldOwner).As(domitem.FieldOwner).CaseSensitive().
		Tag("$." + domitem.FieldType).As(domitem.FieldType).
		Numeric("$." + domitem.FieldCreatedAt).As(domitem.FieldCreatedAt).Sortable().
		Numeric("$." + domitem.FieldPrice).As(domitem.FieldPrice).
		MustBuild()
}

// EnsureIndex creates the FT index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	err := r.store.CreateIndex(ctx, r.index)
	if err == nil || errors.Is(err, db.ErrIndexExists) {
		return nil
	}
	return fmt.Errorf("create index %s: %w: %w", r.index.Name, domain.ErrStoreFailure, err)
}

// Create stores a new item.
func (r *Repo) Create(ctx context.Context, it *domitem.Item) error {
	data, err := json.Marshal(toDoc(it))
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}
	key := r.key(it.ID())
	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return fmt.Errorf("json.set %s: %w: %w", key, domain.ErrStoreFailure, err)
	}
	return nil
}

// Get returns an item owned by owner. Another owner's item is reported as not found.
func (r *Repo) Get(ctx context.Context, owner, id string) (domitem.Item, error) {
	key := r.key(id)
	raw, err := r.store.JSONGet(ctx, key, "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domitem.Item{}, domain.ErrItemNotFound
		}
		return domitem.Item{}, fmt.Errorf("json.get %s: %w: %w", key, domain.ErrStoreFailure, err)
	}
	doc, err := decodeJSONGet(raw)
	if err != nil {
		return domitem.Item{}, fmt.Errorf("decode %s: %w: %w", key, domain.ErrStoreFailure, err)
	}
	if doc.OwnerKey != owner {
		return domitem.Item{}, domain.ErrItemNotFound
	}
	return doc.toDomain(), nil
}

// Delete removes an item owned by owner.
func (r *Repo) Delete(ctx context.Context, owner, id string) error {
	if _, err := r.Get(ctx, owner, id); err != nil {
		return err
	}
	key := r.key(id)
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w: %w", key, domain.ErrStoreFailure, err)
	}
	return nil
}

// Find returns the owner's items matching q.Filter, newest first unless q.Order
// says otherwise. Conditions the index can answer are pushed to FT.SEARCH; the
// full expression is then evaluated in process on every candidate. Pages are
// read newest first until candidateCap items match or the index runs out, so
// the cap bounds matches, not scanned documents.
func (r *Repo) Find(ctx context.Context, q domitem.Query) ([]domitem.Item, error) {
	if strings.TrimSpace(q.Owner) == "" {
		return nil, domain.ErrUnauthenticated
	}

	expr, err := withOwner(q.Owner, q.Filter)
	if err != nil {
		return nil, fmt.Errorf("owner filter: %w", err)
	}
	pushed, exact := r.pushdown(expr)

	want := r.candidateCap
	if q.Order == domitem.OrderNewest && q.Limit > 0 && q.Limit < want {
		want = q.Limit
	}
	page := r.candidateCap
	if exact {
		page = want
	}

	var items []domitem.Item
	for offset := 0; len(items) < want; {
		res, err := r.store.SearchList(ctx, &db.ListQuery{
			IndexName: r.index.Name,
			Filters:   pushed,
			SortBy:    domitem.FieldCreatedAt,
			Desc:      true,
			Offset:    offset,
			Limit:     page,
		})
		if err != nil {
			return nil, fmt.Errorf("search %s: %w: %w", r.index.Name, domain.ErrStoreFailure, err)
		}

		for _, e := range res.Entries {
			it, ok := decodeEntry(e)
			// Owner is re-checked here even though the index filtered on it.
			if !ok || it.Owner() != q.Owner || !expr.Matches(&it) {
				continue
			}
			items = append(items, it)
			if len(items) == want {
				break
			}
		}

		offset += len(res.Entries)
		if len(res.Entries) < page || offset >= res.Total {
			break
		}
	}

	if q.Order == domitem.OrderTitle {
		sortByTitle(items)
	}
	if q.Limit > 0 && len(items) > q.Limit {
		items = items[:q.Limit]
	}
	if items == nil {
		items = []domitem.Item{}
	}
	return items, nil
}

func decodeEntry(e db.SearchEntry) (domitem.Item, bool) {
	raw, ok := e.Fields[db.JSONDocumentField]
	if !ok {
		return domitem.Item{}, false
	}
	var doc itemDoc
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return domitem.Item{}, false
	}
	return doc.toDomain(), true
}

// pushdown keeps the conditions the index can evaluate. exact reports whether
// nothing was left behind, so the server result needs no further filtering.
func (r *Repo) pushdown(expr filter.Expression) (filter.Expression, bool) {
	exact := true
	var must []filter.Condition
	for _, c := range expr.Must() {
		if r.indexable(c) {
			must = append(must, c)
		} else {
			exact = false
		}
	}
	var should []filter.Condition
	for _, c := range expr.Should() {
		if !r.indexable(c) {
			should, exact = nil, false
			break
		}
		should = append(should, c)
	}
	pushed, err := filter.NewExpression(must, should)
	if err != nil {
		return filter.Expression{}, false
	}
	return pushed, exact
}

func (r *Repo) indexable(c filter.Condition) bool {
	switch {
	case c.IsMatch():
		return r.index.Has(c.Key(), db.IndexFieldTag)
	case c.IsRange():
		return r.index.Has(c.Key(), db.IndexFieldNumeric)
	}
	return false
}

func (r *Repo) key(id string) string {
	return r.prefix + id
}

func withOwner(owner string, expr filter.Expression) (filter.Expression, error) {
	oc, err := filter.NewMatch(domitem.FieldOwner, owner)
	if err != nil {
		return filter.Expression{}, err
	}
	must := append([]filter.Condition{oc}, expr.Must()...)
	return filter.NewExpression(must, expr.Should())
}

// decodeJSONGet accepts both the JSONPath form (`[{...}]`) and a bare object.
func decodeJSONGet(raw []byte) (itemDoc, error) {
	var doc itemDoc
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var docs []itemDoc
		if err := json.Unmarshal(raw, &docs); err != nil {
			return itemDoc{}, err
		}
		if len(docs) == 0 {
			return itemDoc{}, errors.New("empty JSON.GET result")
		}
		return docs[0], nil
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return itemDoc{}, err
	}
	return doc, nil
}
