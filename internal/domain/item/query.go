package item

import "github.com/kailas-cloud/mindvault/internal/domain/search/filter"

// Order is the sort order of a listing.
type Order int

const (
	// OrderNewest sorts by createdAt descending.
	OrderNewest Order = iota
	// OrderTitle sorts by title ascending, ties newest first.
	OrderTitle
)

// Query selects items for one owner.
type Query struct {
	Owner  string
	Filter filter.Expression
	Order  Order
	// Limit truncates the result; 0 returns every match up to the store's candidate cap.
	Limit int
}
