package search

import (
	"strings"

	"github.com/kailas-cloud/mindvault/internal/domain/item"
	"github.com/kailas-cloud/mindvault/internal/domain/search/result"
	"github.com/kailas-cloud/mindvault/internal/domain/vector"
)

// Base scores for lexical ranking.
const (
	semanticFallbackBase = 0.1
	lexicalBase          = 0.3
)

// Lexical boosts, highest first. A title hit must always outweigh a body hit.
const (
	weightTitle        = 0.4
	weightKeywords     = 0.3
	weightSummary      = 0.25
	weightTopicAuto    = 0.2
	weightDescription  = 0.2
	weightTopicUser    = 0.15
	weightSelectedText = 0.1
)

// lexicalScore adds a boost per field that contains q, case-insensitively, capped at 1.
func lexicalScore(it *item.Item, q string, base float64) float64 {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return result.Clamp(base)
	}
	contains := func(s string) bool { return s != "" && strings.Contains(strings.ToLower(s), q) }
	anyOf := func(list []string) bool {
		for _, s := range list {
			if contains(s) {
				return true
			}
		}
		return false
	}

	score := base
	if contains(it.Title()) {
		score += weightTitle
	}
	if anyOf(it.Keywords()) {
		score += weightKeywords
	}
	if contains(it.Summary()) {
		score += weightSummary
	}
	if contains(it.TopicAuto()) {
		score += weightTopicAuto
	}
	if contains(it.Description()) {
		score += weightDescription
	}
	if anyOf(it.TopicUser()) {
		score += weightTopicUser
	}
	if contains(it.SelectedText()) {
		score += weightSelectedText
	}
	return result.Clamp(score)
}

// semanticScore is the cosine similarity to the query vector, or the lexical
// score when the item has no comparable embedding.
func semanticScore(it *item.Item, queryVec []float32, q string) float64 {
	emb := it.Embedding()
	if len(queryVec) == 0 || len(emb) != len(queryVec) {
		return lexicalScore(it, q, semanticFallbackBase)
	}
	return result.Clamp(vector.Cosine(queryVec, emb))
}
