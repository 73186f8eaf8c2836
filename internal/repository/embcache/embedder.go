// Package embcache is a two-tier embedding cache: an in-process LRU in front
// of Redis string keys.
package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mindvault/internal/db"
	"github.com/kailas-cloud/mindvault/internal/domain"
)

// store is the consumer interface for the embedding cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Options configure the cache.
type Options struct {
	KeyPrefix  string // e.g. "mindvault:"
	Model      string
	Dimensions int
	LRUSize    int
	TTL        time.Duration
	Hits       *prometheus.CounterVec // label "tier": l1, l2
	Misses     prometheus.Counter
}

// CachedEmbedder caches model embeddings. Pseudo vectors are never cached so
// a recovered model is not shadowed by fallback output.
type CachedEmbedder struct {
	inner  domain.Embedder
	store  store
	l1     *lru.Cache[string, []float32]
	opts   Options
	logger *zap.Logger
}

// New creates a caching decorator.
func New(inner domain.Embedder, s store, opts Options, logger *zap.Logger) (*CachedEmbedder, error) {
	if opts.LRUSize <= 0 {
		opts.LRUSize = 4096
	}
	l1, err := lru.New[string, []float32](opts.LRUSize)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}
	return &CachedEmbedder{inner: inner, store: s, l1: l1, opts: opts, logger: logger}, nil
}

// Embed returns a cached embedding or calls the inner embedder.
// A hit reports zero tokens, since nothing was consumed.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := c.cacheKey(text)

	if vec, ok := c.l1.Get(key); ok {
		c.hit("l1")
		return domain.EmbeddingResult{Embedding: vec, Mode: domain.EmbeddingModeModel}, nil
	}
	if vec, ok := c.getFromStore(ctx, key); ok {
		c.hit("l2")
		c.l1.Add(key, vec)
		return domain.EmbeddingResult{Embedding: vec, Mode: domain.EmbeddingModeModel}, nil
	}
	if c.opts.Misses != nil {
		c.opts.Misses.Inc()
	}

	result, err := c.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", err)
	}

	if result.Mode != domain.EmbeddingModePseudo && len(result.Embedding) > 0 {
		c.l1.Add(key, result.Embedding)
		c.putToStore(ctx, key, result.Embedding)
	}
	return result, nil
}

// HealthCheck forwards to the inner embedder when it supports health checks.
func (c *CachedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := c.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

// Len returns the number of L1 entries.
func (c *CachedEmbedder) Len() int { return c.l1.Len() }

func (c *CachedEmbedder) hit(tier string) {
	if c.opts.Hits != nil {
		c.opts.Hits.WithLabelValues(tier).Inc()
	}
}

// cacheKey hashes model and dimensions with the text, so a model change never
// returns vectors of the old space.
func (c *CachedEmbedder) cacheKey(text string) string {
	h := sha256.New()
	h.Write([]byte(c.opts.Model))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(c.opts.Dimensions)))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return c.opts.KeyPrefix + "emb_cache:" + hex.EncodeToString(h.Sum(nil))
}

func (c *CachedEmbedder) getFromStore(ctx context.Context, key string) ([]float32, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached embedding", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	vec, err := bytesToVector(data)
	if err != nil {
		c.logger.Warn("Failed to parse cached embedding", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if c.opts.Dimensions > 0 && len(vec) != c.opts.Dimensions {
		return nil, false
	}
	return vec, true
}

func (c *CachedEmbedder) putToStore(ctx context.Context, key string, vec []float32) {
	if err := c.store.SetWithTTL(ctx, key, vectorToBytes(vec), c.opts.TTL); err != nil {
		c.logger.Warn("Failed to cache embedding", zap.String("key", key), zap.Error(err))
	}
}

func vectorToBytes(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func bytesToVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding cache data: len=%d (not multiple of 4)", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}
