// Package search is the query planner and ranker.
package search

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/mindvault/internal/domain"
	"github.com/kailas-cloud/mindvault/internal/domain/item"
	"github.com/kailas-cloud/mindvault/internal/domain/search/filter"
	"github.com/kailas-cloud/mindvault/internal/domain/search/mode"
	"github.com/kailas-cloud/mindvault/internal/domain/search/query"
	"github.com/kailas-cloud/mindvault/internal/domain/search/request"
	"github.com/kailas-cloud/mindvault/internal/domain/search/result"
	"github.com/kailas-cloud/mindvault/internal/logger"
	"github.com/kailas-cloud/mindvault/internal/metrics"
)

// DefaultThreshold is the minimum relevance kept by the semantic branch.
const DefaultThreshold = 0.1

// Options tune the planner.
type Options struct {
	// Threshold drops semantic results scoring at or below it.
	Threshold float64
	// Location is the owner-facing timezone relative dates resolve in.
	Location *time.Location
	// Now overrides the clock (tests).
	Now func() time.Time
}

// Service plans and ranks searches over one owner's items.
type Service struct {
	repo      Repository
	extractor Extractor
	embed     Embedder
	threshold float64
	loc       *time.Location
	now       func() time.Time
	logger    *zap.Logger
}

// New creates a search service. extractor and embed may be nil.
func New(repo Repository, extractor Extractor, embed Embedder, opts Options, logger *zap.Logger) *Service {
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		repo:      repo,
		extractor: extractor,
		embed:     embed,
		threshold: opts.Threshold,
		loc:       opts.Location,
		now:       opts.Now,
		logger:    logger,
	}
}

// Search runs one search. Only store failures and a missing owner are
// returned as errors; oracle and embedding trouble degrade the ranking.
func (s *Service) Search(ctx context.Context, req *request.Request) (result.Response, error) {
	if req.Owner() == "" {
		return result.Response{}, domain.ErrUnauthenticated
	}
	log := logger.FromContextOr(ctx, s.logger)
	now := s.now().In(s.loc)

	extracted, queryVec := s.analyze(ctx, req.Query(), now)
	merged := extracted.Merge(req.Manual(now))
	branch := mode.Select(req.HasQuery(), !merged.IsEmpty())

	var (
		results []result.Result
		err     error
	)
	switch branch {
	case mode.Semantic:
		results, err = s.searchSemantic(ctx, req, merged, queryVec)
	case mode.Filter:
		results, err = s.searchFilter(ctx, req, merged)
	case mode.Lexical:
		results, err = s.searchLexical(ctx, req)
	default:
		results, err = s.searchRecent(ctx, req)
	}
	if err != nil {
		return result.Response{}, err
	}

	metrics.SearchRequestsTotal.WithLabelValues(string(branch)).Inc()
	metrics.SearchResults.WithLabelValues(string(branch)).Observe(float64(len(results)))
	log.Debug("Search planned",
		zap.String("branch", string(branch)),
		zap.Strings("detected", merged.Describe()),
		zap.Int("results", len(results)),
	)

	return result.Response{
		Query:           req.Query(),
		DetectedFilters: merged.Describe(),
		Filters:         req.Echo(),
		Mode:            branch,
		Results:         results,
	}, nil
}

// analyze extracts facets and embeds the query concurrently. Neither step
// can fail the search.
func (s *Service) analyze(ctx context.Context, q string, now time.Time) (query.Filter, []float32) {
	if q == "" {
		return query.Filter{}, nil
	}
	var (
		extracted query.Filter
		vec       []float32
	)
	g, gctx := errgroup.WithContext(ctx)
	if s.extractor != nil {
		g.Go(func() error {
			extracted = s.extractor.Extract(gctx, q, now)
			return nil
		})
	}
	if s.embed != nil {
		g.Go(func() error {
			res, err := s.embed.Embed(gctx, q)
			if err != nil {
				logger.FromContextOr(ctx, s.logger).Warn("Query embedding failed, ranking lexically",
					zap.String("component", "search"),
					zap.String("mode", "lexical"),
					zap.Error(err),
				)
				return nil
			}
			vec = res.Embedding
			return nil
		})
	}
	_ = g.Wait()
	return extracted, vec
}

func (s *Service) searchSemantic(
	ctx context.Context, req *request.Request, f query.Filter, queryVec []float32,
) ([]result.Result, error) {
	expr, err := buildExpression(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	items, err := s.find(ctx, req.Owner(), expr, item.OrderNewest, 0)
	if err != nil {
		return nil, err
	}

	results := make([]result.Result, 0, len(items))
	for i := range items {
		results = append(results, result.New(items[i], semanticScore(&items[i], queryVec, req.Query())))
	}
	sortByScore(results)

	kept := results[:0]
	for _, r := range results {
		if r.Score() > s.threshold {
			kept = append(kept, r)
		}
	}
	return truncate(kept, req.Limit()), nil
}

func (s *Service) searchFilter(ctx context.Context, req *request.Request, f query.Filter) ([]result.Result, error) {
	expr, err := buildExpression(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	order := item.OrderNewest
	if req.SortBy() == request.SortTitle {
		order = item.OrderTitle
	}
	items, err := s.find(ctx, req.Owner(), expr, order, req.Limit())
	if err != nil {
		return nil, err
	}
	return neutral(items), nil
}

func (s *Service) searchLexical(ctx context.Context, req *request.Request) ([]result.Result, error) {
	expr, err := lexicalExpression(req.Query())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	items, err := s.find(ctx, req.Owner(), expr, item.OrderNewest, 0)
	if err != nil {
		return nil, err
	}

	results := make([]result.Result, 0, len(items))
	for i := range items {
		results = append(results, result.New(items[i], lexicalScore(&items[i], req.Query(), lexicalBase)))
	}
	sortByScore(results)
	return truncate(results, req.Limit()), nil
}

func (s *Service) searchRecent(ctx context.Context, req *request.Request) ([]result.Result, error) {
	items, err := s.find(ctx, req.Owner(), filter.Expression{}, item.OrderNewest, req.Limit())
	if err != nil {
		return nil, err
	}
	return neutral(items), nil
}

func (s *Service) find(
	ctx context.Context, owner string, expr filter.Expression, order item.Order, limit int,
) ([]item.Item, error) {
	items, err := s.repo.Find(ctx, item.Query{Owner: owner, Filter: expr, Order: order, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("find items: %w", err)
	}
	return items, nil
}

// sortByScore orders descending; equal scores keep retrieval order.
func sortByScore(rs []result.Result) {
	slices.SortStableFunc(rs, func(a, b result.Result) int {
		switch {
		case a.Score() > b.Score():
			return -1
		case a.Score() < b.Score():
			return 1
		}
		return 0
	})
}

func neutral(items []item.Item) []result.Result {
	out := make([]result.Result, 0, len(items))
	for _, it := range items {
		out = append(out, result.New(it, result.NeutralScore))
	}
	return out
}

func truncate(rs []result.Result, limit int) []result.Result {
	if limit > 0 && len(rs) > limit {
		return rs[:limit]
	}
	return rs
}
