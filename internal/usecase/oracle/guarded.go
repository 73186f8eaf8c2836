// Package oracle bounds language model calls with a timeout and a token budget.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mindvault/internal/domain"
	"github.com/kailas-cloud/mindvault/internal/metrics"
)

// Budget is the local interface for budget enforcement.
type Budget interface {
	Check(ctx context.Context) error
	Record(tokens int64)
	RemainingDaily() int64
	RemainingMonthly() int64
}

// Guarded decorates an oracle. Every failure it returns wraps either
// domain.ErrOracleUnavailable or domain.ErrOracleBudgetExceeded.
type Guarded struct {
	inner   domain.Oracle
	timeout time.Duration
	budget  Budget
	logger  *zap.Logger
	down    atomic.Bool
}

// NewGuarded wraps inner. A nil inner makes every call unavailable; budget may be nil.
func NewGuarded(inner domain.Oracle, timeout time.Duration, budget Budget, logger *zap.Logger) *Guarded {
	return &Guarded{
		inner:   inner,
		timeout: timeout,
		budget:  budget,
		logger:  logger.With(zap.String("component", "oracle")),
	}
}

// Enabled reports whether a model is configured at all.
func (g *Guarded) Enabled() bool { return g.inner != nil }

// Available reports whether the last call succeeded (true before any call).
func (g *Guarded) Available() bool { return g.inner != nil && !g.down.Load() }

// Complete implements domain.Oracle.
func (g *Guarded) Complete(ctx context.Context, req domain.OracleRequest) (domain.OracleResponse, error) {
	purpose := string(req.Purpose)
	if g.inner == nil {
		metrics.OracleRequestsTotal.WithLabelValues(purpose, "disabled").Inc()
		return domain.OracleResponse{}, fmt.Errorf("oracle disabled: %w", domain.ErrOracleUnavailable)
	}

	if g.budget != nil {
		if err := g.budget.Check(ctx); err != nil {
			metrics.OracleRequestsTotal.WithLabelValues(purpose, "budget_exceeded").Inc()
			g.logger.Warn("Oracle budget exhausted, using fallback",
				zap.String("purpose", purpose),
				zap.String("mode", "fallback"),
			)
			return domain.OracleResponse{}, fmt.Errorf("budget check: %w", err)
		}
	}

	callCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := g.inner.Complete(callCtx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.OracleRequestsTotal.WithLabelValues(purpose, "error").Inc()
		if ctx.Err() == nil && g.down.CompareAndSwap(false, true) {
			g.logger.Warn("Oracle unavailable, using fallback",
				zap.String("purpose", purpose),
				zap.String("mode", "fallback"),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		}
		if errors.Is(err, domain.ErrOracleUnavailable) {
			return domain.OracleResponse{}, err
		}
		return domain.OracleResponse{}, fmt.Errorf("oracle call: %w: %w", domain.ErrOracleUnavailable, err)
	}

	if g.down.CompareAndSwap(true, false) {
		g.logger.Info("Oracle recovered", zap.String("purpose", purpose))
	}
	metrics.OracleRequestsTotal.WithLabelValues(purpose, "success").Inc()
	if resp.TotalTokens > 0 {
		metrics.OracleTokensTotal.WithLabelValues(purpose).Add(float64(resp.TotalTokens))
		if g.budget != nil {
			g.budget.Record(int64(resp.TotalTokens))
			metrics.OracleBudgetTokensRemaining.WithLabelValues("daily").Set(float64(g.budget.RemainingDaily()))
			metrics.OracleBudgetTokensRemaining.WithLabelValues("monthly").Set(float64(g.budget.RemainingMonthly()))
		}
	}

	g.logger.Debug("Oracle call completed",
		zap.String("purpose", purpose),
		zap.Duration("duration", duration),
		zap.Int("total_tokens", resp.TotalTokens),
	)
	return resp, nil
}
