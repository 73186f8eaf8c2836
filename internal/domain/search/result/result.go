package result

import (
	"github.com/kailas-cloud/mindvault/internal/domain/item"
	"github.com/kailas-cloud/mindvault/internal/domain/search/mode"
	"github.com/kailas-cloud/mindvault/internal/domain/search/request"
)

// NeutralScore is assigned when there is no ranking signal.
const NeutralScore = 1.0

// Result is a single search hit with its transient relevance.
type Result struct {
	item  item.Item
	score float64
}

// New creates a search result; score is clamped to [0, 1].
func New(it item.Item, score float64) Result {
	return Result{item: it, score: Clamp(score)}
}

// Item returns the matched item.
func (r *Result) Item() item.Item { return r.item }

// Score returns the relevance score in [0, 1].
func (r *Result) Score() float64 { return r.score }

// Clamp bounds a score to [0, 1].
func Clamp(s float64) float64 {
	switch {
	case s != s || s < 0: // NaN or negative
		return 0
	case s > 1:
		return 1
	}
	return s
}

// Response is the full outcome of a search.
type Response struct {
	Query           string
	DetectedFilters []string
	Filters         request.Echo
	Mode            mode.Mode
	Results         []Result
}

// Count returns the number of results.
func (r *Response) Count() int { return len(r.Results) }
