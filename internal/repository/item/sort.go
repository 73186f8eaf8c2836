package item

import (
	"slices"
	"strings"

	domitem "github.com/kailas-cloud/mindvault/internal/domain/item"
)

// sortByTitle orders case-insensitively by title; the stable sort keeps the
// newest-first retrieval order among equal titles.
func sortByTitle(items []domitem.Item) {
	slices.SortStableFunc(items, func(a, b domitem.Item) int {
		return strings.Compare(strings.ToLower(a.Title()), strings.ToLower(b.Title()))
	})
}
