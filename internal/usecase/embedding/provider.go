// Package embedding owns the embedding provider lifecycle: a model embedder
// when one is configured and reachable, the pseudo fallback otherwise.
package embedding

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mindvault/internal/domain"
)

const (
	initTimeout = 5 * time.Second
	// DefaultCallTimeout bounds one model call; a timed out call is served by the pseudo vector.
	DefaultCallTimeout = 5 * time.Second
)

// Provider is the process-wide embedding service. Init runs once; until it
// completes, Embed waits on it. Model failures after Init degrade the single
// call to a pseudo vector and are never returned to the caller.
type Provider struct {
	model   domain.Embedder
	pseudo  *Pseudo
	timeout time.Duration
	logger  *zap.Logger

	once     sync.Once
	ready    chan struct{}
	mode     atomic.Value // domain.EmbeddingMode
	degraded atomic.Bool
}

// NewProvider creates a provider. model may be nil, which means pseudo mode.
func NewProvider(model domain.Embedder, dims int, logger *zap.Logger) *Provider {
	p := &Provider{
		model:   model,
		pseudo:  NewPseudo(dims),
		timeout: DefaultCallTimeout,
		logger:  logger.With(zap.String("component", "embedding")),
		ready:   make(chan struct{}),
	}
	p.mode.Store(domain.EmbeddingModePseudo)
	return p
}

// WithTimeout sets the per-call model deadline. Non-positive values keep the default.
func (p *Provider) WithTimeout(d time.Duration) *Provider {
	if d > 0 {
		p.timeout = d
	}
	return p
}

// Init health-checks the model once. A missing or unreachable model selects pseudo
// mode with a warning; Init itself never fails.
func (p *Provider) Init(ctx context.Context) {
	p.once.Do(func() {
		defer close(p.ready)

		if p.model == nil {
			p.logger.Warn("No embedding model configured, using pseudo vectors",
				zap.String("mode", string(domain.EmbeddingModePseudo)))
			return
		}
		if hc, ok := p.model.(domain.HealthChecker); ok {
			checkCtx, cancel := context.WithTimeout(ctx, initTimeout)
			defer cancel()
			if err := hc.HealthCheck(checkCtx); err != nil {
				p.logger.Warn("Embedding model unavailable, using pseudo vectors",
					zap.String("mode", string(domain.EmbeddingModePseudo)),
					zap.Error(err))
				return
			}
		}
		p.mode.Store(domain.EmbeddingModeModel)
		p.logger.Info("Embedding model ready", zap.String("mode", string(domain.EmbeddingModeModel)))
	})
}

// Ready reports whether Init has completed.
func (p *Provider) Ready() bool {
	select {
	case <-p.ready:
		return true
	default:
		return false
	}
}

// Mode reports the mode selected by Init.
func (p *Provider) Mode() domain.EmbeddingMode {
	return p.mode.Load().(domain.EmbeddingMode)
}

// Embed implements domain.Embedder.
func (p *Provider) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	p.Init(ctx)

	if p.Mode() == domain.EmbeddingModePseudo {
		return p.pseudo.Embed(ctx, text)
	}

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	res, err := p.model.Embed(callCtx, text)
	if err != nil {
		if ctx.Err() == nil && p.degraded.CompareAndSwap(false, true) {
			p.logger.Warn("Embedding model failed, falling back to pseudo vectors",
				zap.String("mode", string(domain.EmbeddingModePseudo)),
				zap.Error(err))
		}
		return p.pseudo.Embed(ctx, text)
	}
	if p.degraded.CompareAndSwap(true, false) {
		p.logger.Info("Embedding model recovered", zap.String("mode", string(domain.EmbeddingModeModel)))
	}
	res.Mode = domain.EmbeddingModeModel
	return res, nil
}
