// Package query holds the request-scoped QueryFilter: every facet a search may
// narrow or broaden by, tagged with where it came from.
package query

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/mindvault/internal/domain/item"
)

// Source is the provenance of a facet.
type Source string

const (
	// SourceExtracted marks facets parsed from the query text.
	SourceExtracted Source = "extracted"
	// SourceManual marks facets the caller supplied explicitly.
	SourceManual Source = "manual"
)

// Facet is an optional value with provenance.
type Facet[T any] struct {
	value  T
	source Source
	set    bool
}

// Extracted creates a facet parsed from query text.
func Extracted[T any](v T) Facet[T] { return Facet[T]{value: v, source: SourceExtracted, set: true} }

// Manual creates a caller-supplied facet.
func Manual[T any](v T) Facet[T] { return Facet[T]{value: v, source: SourceManual, set: true} }

// Get returns the value and whether the facet is set.
func (f Facet[T]) Get() (T, bool) { return f.value, f.set }

// Value returns the value (zero when unset).
func (f Facet[T]) Value() T { return f.value }

// IsSet reports whether the facet carries a value.
func (f Facet[T]) IsSet() bool { return f.set }

// Source returns the provenance; empty when unset.
func (f Facet[T]) Source() Source { return f.source }

func (f Facet[T]) or(other Facet[T]) Facet[T] {
	if f.set {
		return f
	}
	return other
}

// PriceRange is an inclusive numeric price interval. Max is +Inf when open.
type PriceRange struct {
	Min float64
	Max float64
}

// NewPriceRange orders the bounds and clamps a negative minimum to zero.
func NewPriceRange(lo, hi float64) PriceRange {
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo < 0 {
		lo = 0
	}
	return PriceRange{Min: lo, Max: hi}
}

// IsOpen reports whether the range has no upper bound.
func (p PriceRange) IsOpen() bool { return math.IsInf(p.Max, 1) }

func (p PriceRange) String() string {
	if p.IsOpen() {
		return "₹" + formatNumber(p.Min) + "+"
	}
	return "₹" + formatNumber(p.Min) + "-" + formatNumber(p.Max)
}

// DateRange bounds createdAt. Either side may be open.
// Label names a predefined range ("week") and replaces the dates in descriptions.
type DateRange struct {
	From  *time.Time
	To    *time.Time
	Label string
}

// IsZero reports whether neither bound is set.
func (d DateRange) IsZero() bool { return d.From == nil && d.To == nil }

func (d DateRange) String() string {
	switch {
	case d.Label != "":
		return d.Label
	case d.From != nil && d.To != nil:
		return fmt.Sprintf("%s to %s", day(*d.From), day(*d.To))
	case d.From != nil:
		return "From " + day(*d.From)
	case d.To != nil:
		return "Until " + day(*d.To)
	}
	return ""
}

// Filter is the explicit, tagged form of everything a search filters by.
// Type, Reason, Topic, Category, TopicAuto, TopicUser and Keywords broaden
// results (any match qualifies); Price and Dates always narrow them.
type Filter struct {
	Type      Facet[item.Type]
	Reason    Facet[string]
	Topic     Facet[string]
	Category  Facet[string]
	TopicAuto Facet[string]
	TopicUser Facet[string]
	Price     Facet[PriceRange]
	Keywords  Facet[[]string]
	Dates     Facet[DateRange]
}

// Merge layers manual facets over extracted ones.
// Manual type and reason replace extracted ones; an extracted date range wins
// over a manual one; every other facet is taken from whichever side set it.
func (f Filter) Merge(manual Filter) Filter {
	return Filter{
		Type:      manual.Type.or(f.Type),
		Reason:    manual.Reason.or(f.Reason),
		Topic:     f.Topic.or(manual.Topic),
		Category:  manual.Category.or(f.Category),
		TopicAuto: manual.TopicAuto.or(f.TopicAuto),
		TopicUser: manual.TopicUser.or(f.TopicUser),
		Price:     f.Price.or(manual.Price),
		Keywords:  f.Keywords.or(manual.Keywords),
		Dates:     f.Dates.or(manual.Dates),
	}
}

// IsEmpty reports whether no facet is set.
func (f Filter) IsEmpty() bool {
	return !f.Type.set && !f.Reason.set && !f.Topic.set && !f.Category.set &&
		!f.TopicAuto.set && !f.TopicUser.set && !f.Price.set && !f.Keywords.set && !f.Dates.set
}

// Describe renders the set facets as human-readable strings.
func (f Filter) Describe() []string {
	var out []string
	if v, ok := f.Type.Get(); ok {
		out = append(out, "Type: "+string(v))
	}
	if v, ok := f.Topic.Get(); ok {
		out = append(out, "Topic: "+v)
	}
	if v, ok := f.Category.Get(); ok {
		out = append(out, "Category: "+v)
	}
	if v, ok := f.TopicAuto.Get(); ok {
		out = append(out, "Topic: "+v)
	}
	if v, ok := f.TopicUser.Get(); ok {
		out = append(out, "Tag: "+v)
	}
	if v, ok := f.Reason.Get(); ok {
		out = append(out, "Reason: "+v)
	}
	if v, ok := f.Price.Get(); ok {
		out = append(out, "Price: "+v.String())
	}
	if v, ok := f.Keywords.Get(); ok {
		out = append(out, "Keywords: "+strings.Join(v, ", "))
	}
	if v, ok := f.Dates.Get(); ok {
		out = append(out, "Date: "+v.String())
	}
	return out
}

func day(t time.Time) string { return t.Format(time.DateOnly) }

func formatNumber(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
