package request

import (
	"strings"
	"time"

	"github.com/kailas-cloud/mindvault/internal/domain"
	"github.com/kailas-cloud/mindvault/internal/domain/item"
	"github.com/kailas-cloud/mindvault/internal/domain/search/query"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 2048
	DefaultLimit   = 20
	MaxLimit       = 100
)

// all is the wire value meaning "no constraint" for every manual facet.
const all = "all"

// SortBy is the ordering for unranked results.
type SortBy string

// Sort orders.
const (
	SortRelevance SortBy = "relevance"
	SortTitle     SortBy = "title"
	SortDate      SortBy = "date"
)

// IsValid reports whether s is a known order.
func (s SortBy) IsValid() bool {
	return s == SortRelevance || s == SortTitle || s == SortDate
}

// Facets are the raw manual filter parameters; "" and "all" mean unset.
type Facets struct {
	Type      string
	Reason    string
	TopicUser string
	TopicAuto string
	Category  string
	DateRange string
	From      string
	To        string
}

// Echo is the effective manual filter state reported back to the caller.
type Echo struct {
	Type      string  `json:"type"`
	Reason    string  `json:"reason"`
	TopicUser string  `json:"topicUser"`
	TopicAuto string  `json:"topicAuto"`
	Category  string  `json:"category"`
	DateRange string  `json:"dateRange"`
	From      *string `json:"from"`
	To        *string `json:"to"`
}

// Request is a validated search query scoped to one owner.
type Request struct {
	owner     string
	query     string
	limit     int
	sortBy    SortBy
	facets    Facets
	itemType  item.Type
	dateRange query.NamedRange
	from      *time.Time
	to        *time.Time
	loc       *time.Location
}

// New validates and normalizes search parameters.
// Defaults: limit=20, sortBy=relevance, dateRange=all. Limit is clamped to MaxLimit.
// Date-only from/to values are read in loc.
func New(owner, q string, f Facets, limit int, sortBy SortBy, loc *time.Location) (Request, error) {
	if strings.TrimSpace(owner) == "" {
		return Request{}, domain.ErrUnauthenticated
	}
	q = strings.TrimSpace(q)
	if len(q) > MaxQueryLength {
		return Request{}, domain.NewValidationError("q", "too long")
	}
	if limit < 0 {
		return Request{}, domain.NewValidationError("limit", "must be positive")
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if sortBy == "" {
		sortBy = SortRelevance
	}
	if !sortBy.IsValid() {
		return Request{}, domain.NewValidationError("sortBy", "must be relevance, title or date")
	}
	if loc == nil {
		loc = time.UTC
	}

	f = normalize(f)
	r := Request{owner: owner, query: q, limit: limit, sortBy: sortBy, facets: f, loc: loc}

	if f.Type != "" {
		t, ok := item.ParseType(f.Type)
		if !ok {
			return Request{}, domain.NewValidationError("type", "is not a known item type")
		}
		r.itemType = t
	}
	if f.DateRange != "" {
		nr := query.NamedRange(strings.ToLower(f.DateRange))
		if !nr.IsValid() {
			return Request{}, domain.NewValidationError("dateRange", "must be today, week, month, year or all")
		}
		r.dateRange = nr
	}
	if f.From != "" {
		t, err := query.ParseDay(f.From, loc)
		if err != nil {
			return Request{}, domain.NewValidationError("from", err.Error())
		}
		r.from = &t
	}
	if f.To != "" {
		t, err := query.ParseDay(f.To, loc)
		if err != nil {
			return Request{}, domain.NewValidationError("to", err.Error())
		}
		r.to = &t
	}
	return r, nil
}

// Owner returns the owner every result is scoped to.
func (r *Request) Owner() string { return r.owner }

// Query returns the trimmed query text; empty when absent.
func (r *Request) Query() string { return r.query }

// HasQuery reports whether query text was supplied.
func (r *Request) HasQuery() bool { return r.query != "" }

// Limit returns the maximum number of results.
func (r *Request) Limit() int { return r.limit }

// SortBy returns the order for unranked results.
func (r *Request) SortBy() SortBy { return r.sortBy }

// Manual returns the caller-supplied facets as a QueryFilter.
// Explicit from/to take precedence over a named range resolved against now.
func (r *Request) Manual(now time.Time) query.Filter {
	var f query.Filter
	if r.itemType != "" {
		f.Type = query.Manual(r.itemType)
	}
	if r.facets.Reason != "" {
		f.Reason = query.Manual(r.facets.Reason)
	}
	if r.facets.Category != "" {
		f.Category = query.Manual(r.facets.Category)
	}
	if r.facets.TopicAuto != "" {
		f.TopicAuto = query.Manual(r.facets.TopicAuto)
	}
	if r.facets.TopicUser != "" {
		f.TopicUser = query.Manual(r.facets.TopicUser)
	}
	switch {
	case r.from != nil || r.to != nil:
		f.Dates = query.Manual(query.DayRange(r.from, r.to))
	case r.dateRange != "":
		if dr, ok := r.dateRange.Resolve(now.In(r.loc)); ok {
			f.Dates = query.Manual(dr)
		}
	}
	return f
}

// Echo reports the manual facets with "all" for unset values.
func (r *Request) Echo() Echo {
	e := Echo{
		Type:      orAll(r.facets.Type),
		Reason:    orAll(r.facets.Reason),
		TopicUser: orAll(r.facets.TopicUser),
		TopicAuto: orAll(r.facets.TopicAuto),
		Category:  orAll(r.facets.Category),
		DateRange: orAll(r.facets.DateRange),
	}
	if r.facets.From != "" {
		v := r.facets.From
		e.From = &v
	}
	if r.facets.To != "" {
		v := r.facets.To
		e.To = &v
	}
	return e
}

func normalize(f Facets) Facets {
	clean := func(s string) string {
		s = strings.TrimSpace(s)
		if strings.EqualFold(s, all) {
			return ""
		}
		return s
	}
	return Facets{
		Type:      clean(f.Type),
		Reason:    clean(f.Reason),
		TopicUser: clean(f.TopicUser),
		TopicAuto: clean(f.TopicAuto),
		Category:  clean(f.Category),
		DateRange: clean(f.DateRange),
		From:      strings.TrimSpace(f.From),
		To:        strings.TrimSpace(f.To),
	}
}

func orAll(s string) string {
	if s == "" {
		return all
	}
	return s
}
