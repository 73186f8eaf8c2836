package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mindvault/internal/config"
	dbRedis "github.com/kailas-cloud/mindvault/internal/db/redis"
	"github.com/kailas-cloud/mindvault/internal/domain"
	"github.com/kailas-cloud/mindvault/internal/metrics"
	budgetrepo "github.com/kailas-cloud/mindvault/internal/repository/budget"
	"github.com/kailas-cloud/mindvault/internal/repository/embcache"
	itemrepo "github.com/kailas-cloud/mindvault/internal/repository/item"
	openaiTransport "github.com/kailas-cloud/mindvault/internal/transport/openai"
	"github.com/kailas-cloud/mindvault/internal/usecase/classify"
	embeddinguc "github.com/kailas-cloud/mindvault/internal/usecase/embedding"
	"github.com/kailas-cloud/mindvault/internal/usecase/extract"
	healthuc "github.com/kailas-cloud/mindvault/internal/usecase/health"
	itemuc "github.com/kailas-cloud/mindvault/internal/usecase/item"
	oracleuc "github.com/kailas-cloud/mindvault/internal/usecase/oracle"
	searchuc "github.com/kailas-cloud/mindvault/internal/usecase/search"
)

// app is the composition root shared by every command.
type app struct {
	cfg       config.Config
	logger    *zap.Logger
	store     *dbRedis.Store
	embedding *embeddinguc.Provider
	oracle    *oracleuc.Guarded
	search    *searchuc.Service
	items     *itemuc.Service
	health    *healthuc.Service
}

func buildApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	metrics.Register()

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create database store: %w", err)
	}
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	logger.Info("Connected to database", zap.Strings("db_addrs", cfg.Database.Addrs))

	repo := itemrepo.New(store, cfg.Database.KeyPrefix, cfg.Database.IndexName, cfg.Database.CandidateCap)
	if err := repo.EnsureIndex(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("ensure item index: %w", err)
	}

	model, err := buildEmbedder(cfg, store, logger)
	if err != nil {
		store.Close()
		return nil, err
	}
	provider := embeddinguc.NewProvider(model, cfg.Embedding.Dimensions, logger).WithTimeout(cfg.Embedding.Timeout)
	provider.Init(ctx)
	logger.Info("Embedding provider ready",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("mode", string(provider.Mode())),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	guarded := buildOracle(ctx, cfg, store, logger)

	a := &app{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		embedding: provider,
		oracle:    guarded,
		search: searchuc.New(repo, extract.New(guarded, logger), provider, searchuc.Options{
			Threshold: cfg.Search.RelevanceThreshold,
			Location:  cfg.Search.Location(),
		}, logger),
		items:  itemuc.New(repo, classify.New(guarded, logger), provider, logger),
		health: healthuc.New(store, provider, guarded),
	}
	return a, nil
}

func (a *app) Close() {
	a.store.Close()
}

// buildEmbedder assembles the model chain: OpenAI -> Cached -> Instrumented.
// It returns nil in pseudo mode.
func buildEmbedder(cfg config.Config, store *dbRedis.Store, logger *zap.Logger) (domain.Embedder, error) {
	if cfg.Embedding.Provider != config.ProviderOpenAI {
		return nil, nil
	}

	var embedder domain.Embedder = openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})

	if cfg.Embedding.Cache.IsEnabled() {
		cached, err := embcache.New(embedder, store, embcache.Options{
			KeyPrefix:  cfg.Database.KeyPrefix,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			LRUSize:    cfg.Embedding.Cache.LRUSize,
			TTL:        cfg.Embedding.Cache.TTL,
			Hits:       metrics.EmbeddingCacheHits,
			Misses:     metrics.EmbeddingCacheMisses,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("create embedding cache: %w", err)
		}
		embedder = cached
	}

	return embeddinguc.NewInstrumentedEmbedder(embedder, cfg.Embedding.Provider, cfg.Embedding.Model, logger), nil
}

// buildOracle wraps the chat model (if enabled) with timeout and budget guards.
func buildOracle(ctx context.Context, cfg config.Config, store *dbRedis.Store, logger *zap.Logger) *oracleuc.Guarded {
	// Pass nil interfaces, not typed nil pointers: a (*T)(nil) inside an
	// interface compares non-nil.
	var inner domain.Oracle
	if cfg.Oracle.Enabled {
		inner = openaiTransport.NewOracle(&openaiTransport.OracleConfig{
			APIKey:     cfg.Oracle.APIKey,
			BaseURL:    cfg.Oracle.BaseURL,
			Model:      cfg.Oracle.Model,
			MaxRetries: cfg.Oracle.MaxRetries,
			Logger:     logger,
		})
	}

	var budget oracleuc.Budget
	b := cfg.Oracle.Budget
	if b.DailyTokens > 0 || b.MonthlyTokens > 0 {
		action := oracleuc.BudgetActionWarn
		if b.Action == string(oracleuc.BudgetActionReject) {
			action = oracleuc.BudgetActionReject
		}
		budget = oracleuc.NewBudgetTracker(b.DailyTokens, b.MonthlyTokens, action, logger).
			WithStore(ctx, budgetrepo.New(store, cfg.Database.KeyPrefix, "oracle"))
	}

	logger.Info("Oracle configured",
		zap.Bool("enabled", cfg.Oracle.Enabled),
		zap.String("model", cfg.Oracle.Model),
		zap.Bool("budget", budget != nil),
	)
	return oracleuc.NewGuarded(inner, cfg.Oracle.Timeout, budget, logger)
}
