// Package mode names the retrieval branch a search ran through.
package mode

// Mode is the retrieval branch.
type Mode string

// Retrieval branches, in planner order.
const (
	// Semantic ranks filtered candidates by embedding similarity.
	Semantic Mode = "semantic"
	// Filter returns filtered candidates in sort order, unranked.
	Filter Mode = "filter"
	// Lexical does a broad text match over the raw query and ranks by field weights.
	Lexical Mode = "lexical"
	// Recent returns the newest items.
	Recent Mode = "recent"
)

// IsValid checks if the mode is one of the known branches.
func (m Mode) IsValid() bool {
	return m == Semantic || m == Filter || m == Lexical || m == Recent
}

// Select picks the branch for a request.
func Select(hasQuery, hasFilter bool) Mode {
	switch {
	case hasQuery && hasFilter:
		return Semantic
	case hasFilter:
		return Filter
	case hasQuery:
		return Lexical
	default:
		return Recent
	}
}

// Ranked reports whether the branch computes per-item relevance.
func (m Mode) Ranked() bool { return m == Semantic || m == Lexical }
