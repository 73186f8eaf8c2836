package mindvault

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	dbRedis "github.com/kailas-cloud/mindvault/internal/db/redis"
	"github.com/kailas-cloud/mindvault/internal/domain"
	domitem "github.com/kailas-cloud/mindvault/internal/domain/item"
	"github.com/kailas-cloud/mindvault/internal/domain/search/request"
	"github.com/kailas-cloud/mindvault/internal/domain/search/result"
	itemrepo "github.com/kailas-cloud/mindvault/internal/repository/item"
	"github.com/kailas-cloud/mindvault/internal/usecase/classify"
	embeddinguc "github.com/kailas-cloud/mindvault/internal/usecase/embedding"
	"github.com/kailas-cloud/mindvault/internal/usecase/extract"
	healthuc "github.com/kailas-cloud/mindvault/internal/usecase/health"
	itemuc "github.com/kailas-cloud/mindvault/internal/usecase/item"
	oracleuc "github.com/kailas-cloud/mindvault/internal/usecase/oracle"
	searchuc "github.com/kailas-cloud/mindvault/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces, replaced with fakes in tests.
type itemUseCase interface {
	Save(ctx context.Context, owner string, in itemuc.SaveInput) (domitem.Item, error)
	List(ctx context.Context, owner string, limit int) ([]domitem.Item, error)
	Get(ctx context.Context, owner, id string) (domitem.Item, error)
	Delete(ctx context.Context, owner, id string) error
}

type searchUseCase interface {
	Search(ctx context.Context, req *request.Request) (result.Response, error)
}

// Client is the mindvault SDK entry point.
type Client struct {
	store     *dbRedis.Store
	itemSvc   itemUseCase
	searchSvc searchUseCase
	healthSvc healthUseCase
	location  *time.Location
	obs       *observer
}

// New creates a Client, connects to Redis and makes sure the item index exists.
// The provided context bounds the readiness check and the index creation.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("mindvault: database address required (use WithRedis)")
	}
	if cfg.vectorDimensions <= 0 {
		return nil, fmt.Errorf("mindvault: vector dimensions must be positive, got %d", cfg.vectorDimensions)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := dbRedis.NewStore(dbRedis.Config{Addrs: cfg.addrs, Password: cfg.password})
	if err != nil {
		return nil, fmt.Errorf("mindvault: create redis store: %w", err)
	}
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("mindvault: database not ready: %w", err)
	}

	repo := itemrepo.New(store, cfg.keyPrefix, cfg.keyPrefix+"items:idx", cfg.candidateCap)
	if err := repo.EnsureIndex(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("mindvault: ensure index: %w", err)
	}

	c := wireClient(ctx, store, repo, cfg)
	c.obs = obs
	return c, nil
}

func wireClient(ctx context.Context, store *dbRedis.Store, repo *itemrepo.Repo, cfg *clientConfig) *Client {
	// The internal services log through zap; SDK callers observe through slog.
	nop := zap.NewNop()

	// Nil interfaces select the pseudo embedding and the heuristic oracle fallback.
	var model domain.Embedder
	if cfg.embedder != nil {
		model = &embedderAdapter{inner: cfg.embedder}
	}
	provider := embeddinguc.NewProvider(model, cfg.vectorDimensions, nop).WithTimeout(cfg.embedTimeout)
	provider.Init(ctx)

	var inner domain.Oracle
	if cfg.oracle != nil {
		inner = &oracleAdapter{inner: cfg.oracle}
	}
	guarded := oracleuc.NewGuarded(inner, cfg.oracleTimeout, nil, nop)

	return &Client{
		store:   store,
		itemSvc: itemuc.New(repo, classify.New(guarded, nop), provider, nop),
		searchSvc: searchuc.New(repo, extract.New(guarded, nop), provider, searchuc.Options{
			Threshold: cfg.threshold,
			Location:  cfg.location,
		}, nop),
		healthSvc: healthuc.New(store, provider, guarded),
		location:  cfg.location,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", "", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Vault returns the items of one owner. Every call through it is scoped to owner.
func (c *Client) Vault(owner string) *Vault {
	return &Vault{
		owner:    owner,
		items:    c.itemSvc,
		search:   c.searchSvc,
		location: c.location,
		obs:      c.obs,
	}
}

// embedderAdapter wraps the public Embedder to satisfy domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
		Mode:         domain.EmbeddingModeModel,
	}, nil
}

// oracleAdapter wraps the public Oracle to satisfy domain.Oracle.
type oracleAdapter struct {
	inner Oracle
}

func (a *oracleAdapter) Complete(ctx context.Context, req domain.OracleRequest) (domain.OracleResponse, error) {
	r, err := a.inner.Complete(ctx, OracleRequest{Prompt: req.Prompt, ImageURL: req.ImageURL})
	if err != nil {
		return domain.OracleResponse{}, fmt.Errorf("oracle: %w", err)
	}
	return domain.OracleResponse{Text: r.Text, TotalTokens: r.TotalTokens}, nil
}
