// Package filter is the boolean predicate language shared by the planner and the store.
package filter

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxConditionsPerGroup is the maximum number of conditions per filter group.
const MaxConditionsPerGroup = 128

// Record is anything a filter can be evaluated against.
// Values returns every string value of a field (one for scalars, many for lists);
// Number returns a numeric field and whether it is set.
type Record interface {
	Values(field string) []string
	Number(field string) (float64, bool)
}

// Expression is a structured filter: every must condition holds AND,
// when should is non-empty, at least one should condition holds.
type Expression struct {
	must   []Condition
	should []Condition
}

// NewExpression validates and creates a filter Expression.
func NewExpression(must, should []Condition) (Expression, error) {
	if len(must) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many must conditions (max %d)", MaxConditionsPerGroup)
	}
	if len(should) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many should conditions (max %d)", MaxConditionsPerGroup)
	}
	return Expression{must: must, should: should}, nil
}

// Must returns the AND-class conditions.
func (e Expression) Must() []Condition { return e.must }

// Should returns the OR-class conditions.
func (e Expression) Should() []Condition { return e.should }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool {
	return len(e.must) == 0 && len(e.should) == 0
}

// Matches evaluates the expression against r.
func (e Expression) Matches(r Record) bool {
	for _, c := range e.must {
		if !c.Matches(r) {
			return false
		}
	}
	if len(e.should) == 0 {
		return true
	}
	for _, c := range e.should {
		if c.Matches(r) {
			return true
		}
	}
	return false
}

// Condition is a single filter clause: an exact match, a pattern, or a numeric range.
type Condition struct {
	key       string
	match     string
	pattern   *regexp.Regexp
	rangeExpr *Range
}

// NewMatch creates an exact match condition. On a list field it means membership.
func NewMatch(key, match string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if match == "" {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	return Condition{key: key, match: match}, nil
}

// NewPattern creates a case-insensitive regular expression condition.
func NewPattern(key, expr string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if strings.TrimSpace(expr) == "" {
		return Condition{}, fmt.Errorf("pattern is required for key %q", key)
	}
	re, err := regexp.Compile("(?i)" + expr)
	if err != nil {
		return Condition{}, fmt.Errorf("invalid pattern for key %q: %w", key, err)
	}
	return Condition{key: key, pattern: re}, nil
}

// NewContains creates a case-insensitive substring condition.
func NewContains(key, text string) (Condition, error) {
	return NewPattern(key, regexp.QuoteMeta(strings.TrimSpace(text)))
}

// NewAnyOf creates a case-insensitive condition matching any of the given substrings.
func NewAnyOf(key string, texts []string) (Condition, error) {
	quoted := make([]string, 0, len(texts))
	for _, t := range texts {
		if t = strings.TrimSpace(t); t != "" {
			quoted = append(quoted, regexp.QuoteMeta(t))
		}
	}
	return NewPattern(key, strings.Join(quoted, "|"))
}

// NewRange creates a numeric range condition.
func NewRange(key string, r Range) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	return Condition{key: key, rangeExpr: &r}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Match returns the exact match value.
func (c Condition) Match() string { return c.match }

// Pattern returns the compiled pattern, nil unless IsPattern.
func (c Condition) Pattern() *regexp.Regexp { return c.pattern }

// Range returns the numeric range expression.
func (c Condition) Range() *Range { return c.rangeExpr }

// IsMatch reports whether this is a match condition.
func (c Condition) IsMatch() bool { return c.match != "" }

// IsPattern reports whether this is a pattern condition.
func (c Condition) IsPattern() bool { return c.pattern != nil }

// IsRange reports whether this is a range condition.
func (c Condition) IsRange() bool { return c.rangeExpr != nil }

// Matches evaluates the condition against r.
func (c Condition) Matches(r Record) bool {
	switch {
	case c.rangeExpr != nil:
		v, ok := r.Number(c.key)
		return ok && c.rangeExpr.Contains(v)
	case c.pattern != nil:
		for _, v := range r.Values(c.key) {
			if v != "" && c.pattern.MatchString(v) {
				return true
			}
		}
	case c.match != "":
		for _, v := range r.Values(c.key) {
			if v == c.match {
				return true
			}
		}
	}
	return false
}

// String renders the condition for debug logs.
func (c Condition) String() string {
	switch {
	case c.rangeExpr != nil:
		return fmt.Sprintf("%s in %s", c.key, c.rangeExpr)
	case c.pattern != nil:
		return fmt.Sprintf("%s ~ /%s/", c.key, strings.TrimPrefix(c.pattern.String(), "(?i)"))
	default:
		return fmt.Sprintf("%s = %q", c.key, c.match)
	}
}

// Range is a numeric range with gt/gte/lt/lte boundaries.
type Range struct {
	gt  *float64
	gte *float64
	lt  *float64
	lte *float64
}

// NewRangeFilter validates and creates a Range.
// At least one boundary required. gt/gte and lt/lte are mutually exclusive.
func NewRangeFilter(gt, gte, lt, lte *float64) (Range, error) {
	if gt == nil && gte == nil && lt == nil && lte == nil {
		return Range{}, fmt.Errorf("at least one range boundary is required")
	}
	if gt != nil && gte != nil {
		return Range{}, fmt.Errorf("cannot specify both gt and gte")
	}
	if lt != nil && lte != nil {
		return Range{}, fmt.Errorf("cannot specify both lt and lte")
	}
	return Range{gt: gt, gte: gte, lt: lt, lte: lte}, nil
}

// Between creates an inclusive range; a nil bound is open.
func Between(lo, hi *float64) (Range, error) {
	return NewRangeFilter(nil, lo, nil, hi)
}

// GT returns the lower exclusive bound.
func (r Range) GT() *float64 { return r.gt }

// GTE returns the lower inclusive bound.
func (r Range) GTE() *float64 { return r.gte }

// LT returns the upper exclusive bound.
func (r Range) LT() *float64 { return r.lt }

// LTE returns the upper inclusive bound.
func (r Range) LTE() *float64 { return r.lte }

// Contains reports whether v satisfies every boundary.
func (r Range) Contains(v float64) bool {
	if r.gt != nil && v <= *r.gt {
		return false
	}
	if r.gte != nil && v < *r.gte {
		return false
	}
	if r.lt != nil && v >= *r.lt {
		return false
	}
	if r.lte != nil && v > *r.lte {
		return false
	}
	return true
}

func (r Range) String() string {
	lo, hi := "-inf", "+inf"
	open, closing := "[", "]"
	switch {
	case r.gt != nil:
		lo, open = fmt.Sprint(*r.gt), "("
	case r.gte != nil:
		lo = fmt.Sprint(*r.gte)
	}
	switch {
	case r.lt != nil:
		hi, closing = fmt.Sprint(*r.lt), ")"
	case r.lte != nil:
		hi = fmt.Sprint(*r.lte)
	}
	return open + lo + ", " + hi + closing
}
