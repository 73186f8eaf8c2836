package search

import (
	"regexp"
	"strings"

	"github.com/kailas-cloud/mindvault/internal/domain/item"
	"github.com/kailas-cloud/mindvault/internal/domain/search/filter"
	"github.com/kailas-cloud/mindvault/internal/domain/search/query"
)

// maxQueryTerms bounds the per-term conditions of the lexical branch.
const maxQueryTerms = 16

// Fields the lexical branch matches the whole query against.
var lexicalFields = []string{
	item.FieldTitle, item.FieldDescription, item.FieldSelectedText, item.FieldReason,
	item.FieldTopicAuto, item.FieldCategory, item.FieldPlatform, item.FieldSummary, item.FieldKeywords,
}

// Fields each term of a multi-word query is matched against.
var termFields = []string{
	item.FieldKeywords, item.FieldTitle, item.FieldDescription, item.FieldTopicAuto, item.FieldTopicUser,
}

// exprBuilder collects conditions and keeps the first construction error.
type exprBuilder struct {
	must   []filter.Condition
	should []filter.Condition
	err    error
}

func (b *exprBuilder) and(c filter.Condition, err error) {
	if b.keep(err) {
		b.must = append(b.must, c)
	}
}

func (b *exprBuilder) or(c filter.Condition, err error) {
	if b.keep(err) {
		b.should = append(b.should, c)
	}
}

func (b *exprBuilder) keep(err error) bool {
	if err != nil && b.err == nil {
		b.err = err
	}
	return err == nil
}

func (b *exprBuilder) build() (filter.Expression, error) {
	if b.err != nil {
		return filter.Expression{}, b.err
	}
	return filter.NewExpression(b.must, b.should)
}

// buildExpression turns a QueryFilter into a store predicate.
// Price and dates narrow (must); every other facet broadens (should).
// The owner condition is added by the repository.
func buildExpression(f query.Filter) (filter.Expression, error) {
	var b exprBuilder

	if p, ok := f.Price.Get(); ok {
		lo := p.Min
		var hi *float64
		if !p.IsOpen() {
			hi = &p.Max
		}
		r, err := filter.Between(&lo, hi)
		if b.keep(err) {
			b.and(filter.NewRange(item.FieldPrice, r))
		}
	}
	if d, ok := f.Dates.Get(); ok && !d.IsZero() {
		var lo, hi *float64
		if d.From != nil {
			v := float64(d.From.UnixMilli())
			lo = &v
		}
		if d.To != nil {
			v := float64(d.To.UnixMilli())
			hi = &v
		}
		r, err := filter.Between(lo, hi)
		if b.keep(err) {
			b.and(filter.NewRange(item.FieldCreatedAt, r))
		}
	}

	if t, ok := f.Type.Get(); ok {
		b.or(filter.NewMatch(item.FieldType, string(t)))
	}
	if r, ok := f.Reason.Get(); ok {
		b.or(filter.NewContains(item.FieldReason, r))
	}
	if v, ok := f.Topic.Get(); ok {
		b.or(filter.NewContains(item.FieldTopicAuto, v))
		b.or(exactly(item.FieldTopicUser, v))
		b.or(filter.NewContains(item.FieldCategory, v))
	}
	// Manual facets name a whole value; they never match by substring.
	if v, ok := f.Category.Get(); ok {
		b.or(exactly(item.FieldTopicAuto, v))
		b.or(exactly(item.FieldCategory, v))
		b.or(exactly(item.FieldTopicUser, v))
	}
	if v, ok := f.TopicAuto.Get(); ok {
		b.or(exactly(item.FieldTopicAuto, v))
		b.or(exactly(item.FieldCategory, v))
	}
	if v, ok := f.TopicUser.Get(); ok {
		b.or(exactly(item.FieldTopicUser, v))
		b.or(exactly(item.FieldCategory, v))
	}
	if kw, ok := f.Keywords.Get(); ok && len(kw) > 0 {
		for _, k := range kw {
			if strings.TrimSpace(k) != "" {
				b.or(filter.NewContains(item.FieldKeywords, k))
			}
		}
		for _, field := range []string{item.FieldTitle, item.FieldDescription, item.FieldSelectedText} {
			b.or(filter.NewAnyOf(field, kw))
		}
	}
	return b.build()
}

// lexicalExpression is the broad OR match of the raw query used when no
// facet was detected.
func lexicalExpression(q string) (filter.Expression, error) {
	var b exprBuilder
	for _, field := range lexicalFields {
		b.or(filter.NewContains(field, q))
	}
	if terms := queryTerms(q); len(terms) > 1 {
		for _, term := range terms {
			for _, field := range termFields {
				b.or(filter.NewContains(field, term))
			}
		}
	}
	return b.build()
}

// queryTerms splits q on whitespace, dropping case-insensitive duplicates.
func queryTerms(q string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range strings.Fields(q) {
		lt := strings.ToLower(t)
		if seen[lt] {
			continue
		}
		seen[lt] = true
		out = append(out, t)
		if len(out) == maxQueryTerms {
			break
		}
	}
	return out
}

// exactly matches a whole value case-insensitively.
func exactly(key, v string) (filter.Condition, error) {
	return filter.NewPattern(key, "^"+regexp.QuoteMeta(strings.TrimSpace(v))+"$")
}
