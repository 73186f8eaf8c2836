package db

import "github.com/kailas-cloud/mindvault/internal/domain/search/filter"

// ListQuery is the input for a filtered, sorted FT.SEARCH listing.
//
// Only Match (TAG) and Range (NUMERIC) conditions are sent to the server.
// Pattern conditions, and any should-group containing one, are left for the
// caller to evaluate in process.
type ListQuery struct {
	IndexName    string
	Filters      filter.Expression
	SortBy       string
	Desc         bool
	Offset       int
	Limit        int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Fields map[string]string
}

// JSONDocumentField is the pseudo-field FT.SEARCH uses for a whole JSON document.
const JSONDocumentField = "$"
