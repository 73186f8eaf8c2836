// Package extract turns free-text search queries into tagged query filters
// using the language model, with deterministic fallbacks.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mindvault/internal/domain"
	"github.com/kailas-cloud/mindvault/internal/domain/item"
	"github.com/kailas-cloud/mindvault/internal/domain/search/query"
	"github.com/kailas-cloud/mindvault/internal/heuristic"
	"github.com/kailas-cloud/mindvault/internal/logger"
)

// Oracle is the language model the extractor consults.
type Oracle interface {
	Complete(ctx context.Context, req domain.OracleRequest) (domain.OracleResponse, error)
}

// Extractor is the structured filter extractor. It never fails: every
// degradation yields a (possibly empty) filter.
type Extractor struct {
	oracle    Oracle
	logger    *zap.Logger
	malformed atomic.Bool
}

// New creates an Extractor. A nil oracle makes every extraction empty.
func New(oracle Oracle, logger *zap.Logger) *Extractor {
	return &Extractor{oracle: oracle, logger: logger}
}

// reply is the lenient shape of the model's JSON. Fields are loosely typed
// because models mix strings, numbers and nulls freely.
type reply struct {
	Type       any `json:"type"`
	Topic      any `json:"topic"`
	Reason     any `json:"reason"`
	PriceRange any `json:"priceRange"`
	Keywords   any `json:"keywords"`
	DateRange  any `json:"dateRange"`
}

// Extract returns the facets the query text implies. Every set facet is
// tagged extracted. An unreachable oracle yields an empty filter.
func (e *Extractor) Extract(ctx context.Context, q string, today time.Time) query.Filter {
	q = strings.TrimSpace(q)
	if q == "" || e.oracle == nil {
		return query.Filter{}
	}
	log := logger.FromContextOr(ctx, e.logger)

	resp, err := e.oracle.Complete(ctx, domain.OracleRequest{
		Purpose: domain.OraclePurposeFilter,
		Prompt:  buildPrompt(q, today),
	})
	if err != nil {
		log.Debug("Filter extraction skipped", zap.Error(err))
		return query.Filter{}
	}

	var f query.Filter
	if f, err = parse(resp.Text, today); err != nil {
		if e.malformed.CompareAndSwap(false, true) {
			log.Warn("Oracle reply had no usable JSON, guessing filters",
				zap.String("component", "extractor"),
				zap.String("mode", "heuristic"),
				zap.Error(err),
			)
		}
		f = heuristic.GuessFilter(resp.Text, today)
	} else {
		e.malformed.Store(false)
	}

	if d, ok := heuristic.ResolveRelativeDate(q, today); ok {
		f.Dates = query.Extracted(d)
	}
	return f
}

var errNoObject = errors.New("no JSON object in reply")

func parse(text string, today time.Time) (query.Filter, error) {
	raw, ok := heuristic.FirstObject(text)
	if !ok {
		return query.Filter{}, errNoObject
	}
	var r reply
	if err := json.Unmarshal(raw, &r); err != nil {
		return query.Filter{}, err
	}

	var f query.Filter
	if s, ok := str(r.Type); ok {
		if t, ok := item.ParseType(s); ok {
			f.Type = query.Extracted(t)
		}
	}
	if s, ok := str(r.Topic); ok {
		f.Topic = query.Extracted(s)
	}
	if s, ok := str(r.Reason); ok {
		f.Reason = query.Extracted(strings.ToLower(s))
	}
	if p, ok := priceRange(r.PriceRange); ok {
		f.Price = query.Extracted(p)
	}
	if kw := heuristic.CleanKeywords(list(r.Keywords)); len(kw) > 0 {
		f.Keywords = query.Extracted(kw)
	}
	if d, ok := dateRange(r.DateRange, today.Location()); ok {
		f.Dates = query.Extracted(d)
	}
	return f, nil
}

// str reads a non-empty string; JSON null, "null", "none" and "all" count as unset.
func str(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "null", "none", "all", "n/a":
		return "", false
	}
	return s, true
}

// list accepts an array of strings or a single comma-separated string.
func list(v any) []string {
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := str(e); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if _, ok := str(t); !ok {
			return nil
		}
		return strings.Split(t, ",")
	}
	return nil
}

// priceRange reads [min, max]. A missing minimum is 0 and a missing maximum is open.
func priceRange(v any) (query.PriceRange, bool) {
	arr, ok := v.([]any)
	if !ok || len(arr) != 2 {
		return query.PriceRange{}, false
	}
	lo, hasLo := bound(arr[0])
	hi, hasHi := bound(arr[1])
	switch {
	case !hasLo && !hasHi:
		return query.PriceRange{}, false
	case !hasHi:
		return query.PriceRange{Min: math.Max(lo, 0), Max: math.Inf(1)}, true
	}
	return query.NewPriceRange(lo, hi), true
}

func bound(v any) (float64, bool) {
	if n, ok := v.(float64); ok && n == 0 {
		return 0, true
	}
	return heuristic.ParsePrice(v)
}

func dateRange(v any, loc *time.Location) (query.DateRange, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return query.DateRange{}, false
	}
	from := day(m["from"], loc)
	to := day(m["to"], loc)
	if from == nil && to == nil {
		return query.DateRange{}, false
	}
	return query.DayRange(from, to), true
}

func day(v any, loc *time.Location) *time.Time {
	s, ok := str(v)
	if !ok {
		return nil
	}
	t, err := query.ParseDay(s, loc)
	if err != nil {
		return nil
	}
	return &t
}
