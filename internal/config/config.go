package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the mindvault configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Oracle    OracleConfig    `yaml:"oracle"`
	Search    SearchConfig    `yaml:"search"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig maps bearer tokens to owner keys.
type AuthConfig struct {
	Enabled     *bool             `yaml:"enabled"`
	Tokens      map[string]string `yaml:"tokens"`
	ExemptPaths []string          `yaml:"exempt_paths"`
}

// IsEnabled reports whether bearer auth is enforced (default: true).
func (a AuthConfig) IsEnabled() bool {
	return a.Enabled == nil || *a.Enabled
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	HTTPPort          int           `yaml:"http_port"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
}

// DatabaseConfig holds Redis connection and keyspace settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	KeyPrefix        string   `yaml:"key_prefix"`
	IndexName        string   `yaml:"index_name"`
	CandidateCap     int      `yaml:"candidate_cap"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Embedding providers.
const (
	ProviderOpenAI = "openai"
	ProviderPseudo = "pseudo"
)

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string        `yaml:"provider"` // openai, pseudo (default: pseudo)
	BaseURL    string        `yaml:"base_url"`
	APIKey     string        `yaml:"api_key"`
	Model      string        `yaml:"model"`
	Dimensions int           `yaml:"dimensions"`
	Timeout    time.Duration `yaml:"timeout"`
	Cache      CacheConfig   `yaml:"cache"`
}

// CacheConfig holds embedding cache settings.
type CacheConfig struct {
	Enabled *bool         `yaml:"enabled"`
	LRUSize int           `yaml:"lru_size"`
	TTL     time.Duration `yaml:"ttl"`
}

// IsEnabled reports whether the embedding cache is on (default: true).
func (c CacheConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// OracleConfig holds language model settings.
type OracleConfig struct {
	Enabled    bool          `yaml:"enabled"`
	BaseURL    string        `yaml:"base_url"`
	APIKey     string        `yaml:"api_key"`
	Model      string        `yaml:"model"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
	Budget     BudgetConfig  `yaml:"budget"`
}

// BudgetConfig holds token budget settings.
type BudgetConfig struct {
	DailyTokens   int64  `yaml:"daily_tokens"`   // 0 = unlimited
	MonthlyTokens int64  `yaml:"monthly_tokens"` // 0 = unlimited
	Action        string `yaml:"action"`         // "reject" | "warn" (default)
}

// SearchConfig holds ranking and paging settings.
type SearchConfig struct {
	DefaultLimit       int     `yaml:"default_limit"`
	MaxLimit           int     `yaml:"max_limit"`
	RelevanceThreshold float64 `yaml:"relevance_threshold"`
	DefaultRecent      int     `yaml:"default_recent"`
	Timezone           string  `yaml:"timezone"`
}

// Location resolves the configured timezone. Call after Validate.
func (s SearchConfig) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load reads configuration by environment name (local, dev, prod).
// CONFIG_PATH, when set, points at the file directly. A .env file in the
// working directory is loaded first so its variables can be expanded.
func Load(env string) (Config, error) {
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = findConfigPath(env)
	}

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML, expands ${VAR} references, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8080
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Server.ReadHeaderTimeout <= 0 {
		c.Server.ReadHeaderTimeout = 5 * time.Second
	}
	if len(c.Database.Addrs) == 0 {
		c.Database.Addrs = []string{"localhost:6379"}
	}
	if c.Database.KeyPrefix == "" {
		c.Database.KeyPrefix = "mindvault:"
	}
	if c.Database.IndexName == "" {
		c.Database.IndexName = c.Database.KeyPrefix + "items:idx"
	}
	if c.Database.CandidateCap <= 0 {
		c.Database.CandidateCap = 1000
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = ProviderPseudo
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Embedding.Dimensions == 0 {
		c.Embedding.Dimensions = 384
	}
	if c.Embedding.Timeout <= 0 {
		c.Embedding.Timeout = 5 * time.Second
	}
	if c.Embedding.Cache.LRUSize <= 0 {
		c.Embedding.Cache.LRUSize = 4096
	}
	if c.Embedding.Cache.TTL <= 0 {
		c.Embedding.Cache.TTL = 720 * time.Hour
	}
	if c.Oracle.Model == "" {
		c.Oracle.Model = "gpt-4o-mini"
	}
	if c.Oracle.Timeout <= 0 {
		c.Oracle.Timeout = 5 * time.Second
	}
	if c.Oracle.MaxRetries == 0 {
		c.Oracle.MaxRetries = 2
	}
	if c.Oracle.Budget.Action == "" {
		c.Oracle.Budget.Action = "warn"
	}
	if c.Search.DefaultLimit <= 0 {
		c.Search.DefaultLimit = 20
	}
	if c.Search.MaxLimit <= 0 {
		c.Search.MaxLimit = 100
	}
	if c.Search.RelevanceThreshold == 0 {
		c.Search.RelevanceThreshold = 0.1
	}
	if c.Search.DefaultRecent <= 0 {
		c.Search.DefaultRecent = 10
	}
	if c.Search.Timezone == "" {
		c.Search.Timezone = "UTC"
	}
	if len(c.Auth.ExemptPaths) == 0 {
		c.Auth.ExemptPaths = []string{"/health", "/metrics"}
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port must be between 1 and 65535, got %d", c.Server.HTTPPort)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	switch c.Embedding.Provider {
	case ProviderOpenAI, ProviderPseudo:
	default:
		return fmt.Errorf("embedding.provider must be %q or %q, got %q",
			ProviderOpenAI, ProviderPseudo, c.Embedding.Provider)
	}
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding.dimensions must be positive, got %d", c.Embedding.Dimensions)
	}
	switch c.Oracle.Budget.Action {
	case "", "warn", "reject":
		// ok
	default:
		return fmt.Errorf("oracle.budget.action must be \"warn\" or \"reject\", got %q", c.Oracle.Budget.Action)
	}
	if c.Oracle.MaxRetries < 0 {
		return fmt.Errorf("oracle.max_retries must not be negative, got %d", c.Oracle.MaxRetries)
	}
	if t := c.Search.RelevanceThreshold; t < 0 || t > 1 {
		return fmt.Errorf("search.relevance_threshold must be within [0, 1], got %v", t)
	}
	if c.Search.DefaultLimit > c.Search.MaxLimit {
		return fmt.Errorf("search.default_limit %d exceeds search.max_limit %d",
			c.Search.DefaultLimit, c.Search.MaxLimit)
	}
	if _, err := time.LoadLocation(c.Search.Timezone); err != nil {
		return fmt.Errorf("search.timezone %q: %w", c.Search.Timezone, err)
	}
	if c.Auth.IsEnabled() && len(c.Auth.Tokens) == 0 {
		return fmt.Errorf("auth.tokens is required when auth is enabled")
	}
	for token, owner := range c.Auth.Tokens {
		if strings.TrimSpace(token) == "" || strings.TrimSpace(owner) == "" {
			return fmt.Errorf("auth.tokens entries need a non-empty token and owner")
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
