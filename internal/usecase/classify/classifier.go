// Package classify assigns type, reason, platform, topic, keywords, summary
// and price to items at save time.
package classify

import (
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mindvault/internal/domain"
	"github.com/kailas-cloud/mindvault/internal/domain/item"
	"github.com/kailas-cloud/mindvault/internal/heuristic"
	"github.com/kailas-cloud/mindvault/internal/logger"
)

// Oracle is the language model the classifier consults.
type Oracle interface {
	Complete(ctx context.Context, req domain.OracleRequest) (domain.OracleResponse, error)
}

// Input is what the caller knows about a new item. Type, Reason, TopicAuto
// and Price are hints; the classifier may replace them.
type Input struct {
	Title        string
	URL          string
	ImageURL     string
	Type         item.Type
	Reason       string
	TopicAuto    string
	Price        *float64
	PageText     string
	SelectedText string
	Description  string
}

// Classifier runs the oracle, then heuristic and URL fallbacks.
type Classifier struct {
	oracle    Oracle
	logger    *zap.Logger
	malformed atomic.Bool
}

// New creates a Classifier. A nil oracle leaves only the URL rules.
func New(oracle Oracle, logger *zap.Logger) *Classifier {
	return &Classifier{oracle: oracle, logger: logger}
}

type reply struct {
	Type      any `json:"type"`
	Reason    any `json:"reason"`
	Platform  any `json:"platform"`
	TopicAuto any `json:"topicAuto"`
	Keywords  any `json:"keywords"`
	Summary   any `json:"summary"`
	Price     any `json:"price"`
}

// Classify never fails. Without any signal the result is type text,
// reason "to view later", topic "general" and platform generic.
func (c *Classifier) Classify(ctx context.Context, in Input) item.Classification {
	base := defaults(in)
	if c.oracle == nil {
		return applyURL(base, in.URL)
	}
	log := logger.FromContextOr(ctx, c.logger)

	visual := isVisual(in)
	req := domain.OracleRequest{
		Purpose: domain.OraclePurposeClassify,
		Prompt:  buildPrompt(in, visual),
	}
	if visual {
		req.ImageURL = imageOf(in)
	}

	resp, err := c.oracle.Complete(ctx, req)
	if err != nil {
		log.Debug("Classification by URL only", zap.Error(err))
		return applyURL(base, in.URL)
	}

	raw, ok := heuristic.FirstObject(resp.Text)
	var r reply
	if ok {
		ok = json.Unmarshal(raw, &r) == nil
	}
	if !ok {
		if c.malformed.CompareAndSwap(false, true) {
			log.Warn("Oracle reply had no usable JSON, guessing classification",
				zap.String("component", "classifier"),
				zap.String("mode", "heuristic"),
			)
		}
		return applyURL(overlayGuess(base, heuristic.GuessClassification(resp.Text)), in.URL)
	}
	c.malformed.Store(false)

	return merge(base, r, in)
}

// defaults seeds a classification from the caller's hints.
func defaults(in Input) item.Classification {
	c := item.DefaultClassification()
	if in.Type.Valid() {
		c.Type = in.Type
	}
	if r := strings.TrimSpace(in.Reason); r != "" {
		c.Reason = r
	}
	if t := strings.TrimSpace(in.TopicAuto); t != "" {
		c.TopicAuto = t
	}
	if in.Price != nil {
		p := *in.Price
		c.Price = &p
	}
	return c
}

// merge layers a parsed oracle reply over base, field by field.
func merge(base item.Classification, r reply, in Input) item.Classification {
	c := base
	c.Type = mergeType(r.Type, in.URL, base.Type)
	if s, ok := str(r.Reason); ok && item.IsKnownReason(s) {
		c.Reason = strings.ToLower(s)
	}
	if s, ok := str(r.TopicAuto); ok {
		c.TopicAuto = s
	}
	if s, ok := str(r.Platform); ok {
		c.Platform = strings.ToLower(s)
	} else {
		c.Platform = heuristic.DetectPlatform(in.URL)
	}
	if kw := heuristic.CleanKeywords(list(r.Keywords)); len(kw) > 0 {
		c.Keywords = kw
	}
	if s, ok := str(r.Summary); ok {
		c.Summary = s
	}
	c.Price = mergePrice(r.Price, in)
	return c
}

func mergeType(v any, url string, fallback item.Type) item.Type {
	if s, ok := str(v); ok {
		if t, ok := item.ParseType(s); ok {
			return t
		}
	}
	if t, ok := heuristic.TypeFromURL(url); ok {
		return t
	}
	return fallback
}

// mergePrice prefers the oracle's price, then the caller's, then a price
// scraped from marketplace page text.
func mergePrice(v any, in Input) *float64 {
	if p, ok := heuristic.ParsePrice(v); ok {
		return &p
	}
	if in.Price != nil {
		p := *in.Price
		return &p
	}
	if heuristic.IsShopURL(in.URL) {
		text := strings.Join([]string{in.PageText, in.SelectedText, in.Description}, " ")
		if p, ok := heuristic.ExtractPrice(text); ok {
			return &p
		}
	}
	return nil
}

// overlayGuess takes the guessed fields that differ from the defaults.
func overlayGuess(base, g item.Classification) item.Classification {
	def := item.DefaultClassification()
	if g.Type != def.Type {
		base.Type = g.Type
	}
	if g.Reason != def.Reason {
		base.Reason = g.Reason
	}
	if g.TopicAuto != def.TopicAuto {
		base.TopicAuto = g.TopicAuto
	}
	if g.Platform != def.Platform {
		base.Platform = g.Platform
	}
	if len(g.Keywords) > 0 {
		base.Keywords = g.Keywords
	}
	if g.Summary != "" {
		base.Summary = g.Summary
	}
	if base.Price == nil && g.Price != nil {
		base.Price = g.Price
	}
	return base
}

// applyURL lets the URL decide type and platform. Marketplaces and video
// hosts also set the reason.
func applyURL(c item.Classification, rawURL string) item.Classification {
	if strings.TrimSpace(rawURL) == "" {
		return c
	}
	u := heuristic.ClassifyURL(rawURL)
	c.Type = u.Type
	c.Platform = u.Platform
	if u.Reason != item.DefaultReason {
		c.Reason = u.Reason
	}
	return c
}

func isVisual(in Input) bool {
	if in.Type.IsVisual() {
		return imageOf(in) != ""
	}
	if in.ImageURL != "" {
		return true
	}
	t, ok := heuristic.TypeFromURL(in.URL)
	return ok && t.IsVisual()
}

func imageOf(in Input) string {
	if in.ImageURL != "" {
		return in.ImageURL
	}
	return in.URL
}

func str(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "null", "none", "n/a":
		return "", false
	}
	return s, true
}

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
		return strings.Split(t, ",")
	}
	return nil
}
