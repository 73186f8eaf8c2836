package mindvault

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs    []string
	password string

	keyPrefix    string
	candidateCap int

	embedder         Embedder
	vectorDimensions int
	embedTimeout     time.Duration

	oracle        Oracle
	oracleTimeout time.Duration

	threshold float64
	location  *time.Location

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

func defaultConfig() *clientConfig {
	return &clientConfig{
		keyPrefix:        "mindvault:",
		candidateCap:     1000,
		vectorDimensions: 384,
		oracleTimeout:    5 * time.Second,
		threshold:        0.1,
		location:         time.UTC,
	}
}

// WithRedis configures the client to connect to a Redis 8+ (or Redis Stack) instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithKeyPrefix namespaces every key and the search index. Default: "mindvault:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithCandidateCap bounds how many items one search reads before ranking.
// Default: 1000.
func WithCandidateCap(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.candidateCap = n
	})
}

// WithEmbedder sets the text embedding model. Without one, items are
// ranked with deterministic pseudo vectors.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithEmbeddingTimeout bounds one embedder call (default 5s). A call that runs
// out of time is ranked with a pseudo vector instead.
func WithEmbeddingTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedTimeout = d
	})
}

// WithVectorDimensions sets the embedding dimension. Default: 384.
func WithVectorDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.vectorDimensions = dim
	})
}

// WithOracle sets the language model used for filter extraction and
// classification, bounded by timeout per call (0 keeps the 5s default).
func WithOracle(o Oracle, timeout time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.oracle = o
		if timeout > 0 {
			c.oracleTimeout = timeout
		}
	})
}

// WithRelevanceThreshold sets the minimum semantic score kept. Default: 0.1.
func WithRelevanceThreshold(t float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.threshold = t
	})
}

// WithLocation sets the timezone relative dates and date-only filters
// are read in. Default: UTC.
func WithLocation(loc *time.Location) Option {
	return optionFunc(func(c *clientConfig) {
		if loc != nil {
			c.location = loc
		}
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
