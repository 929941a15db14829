// Package config loads the wheretobuy configuration file.
//
// Values come from a YAML file layered over defaults, then from a small set
// of environment variables for credentials and endpoints. The resulting
// Config is the only place credentials live; it is handed to constructors
// explicitly.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/poiesic/wheretobuy/ai"
	"github.com/poiesic/wheretobuy/audit"
	"github.com/poiesic/wheretobuy/cascade"
	"github.com/poiesic/wheretobuy/verify"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file values.
const (
	EnvSerpAPIKey = "SERPAPI_KEY"
	EnvOpenAIKey  = "OPENAI_API_KEY"
	EnvOpenAIHost = "OPENAI_BASE_URL"
	EnvDatabase   = "WHERETOBUY_DB"
	EnvRedisAddr  = "REDIS_ADDR"
)

// Config is the full application configuration.
type Config struct {
	LogLevel string         `yaml:"log_level"`
	Database DatabaseConfig `yaml:"database"`
	Search   SearchConfig   `yaml:"search"`
	AI       AIConfig       `yaml:"ai"`
	Verify   VerifyConfig   `yaml:"verify"`
	Cascade  CascadeConfig  `yaml:"cascade"`
	Cache    CacheConfig    `yaml:"cache"`
	Audit    AuditConfig    `yaml:"audit"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Batch    BatchConfig    `yaml:"batch"`
	Server   ServerConfig   `yaml:"server"`
}

// DatabaseConfig selects where products and placements are stored.
type DatabaseConfig struct {
	// Path is the badger directory holding the catalog and placements.
	Path string `yaml:"path"`

	// ResultsDriver optionally mirrors placements into a SQL table:
	// "sqlite" or "postgres". Empty disables the mirror.
	ResultsDriver string `yaml:"results_driver"`
	ResultsDSN    string `yaml:"results_dsn"`
}

// SearchConfig configures the SerpAPI backend.
type SearchConfig struct {
	SerpAPIKey   string        `yaml:"serpapi_key"`
	Language     string        `yaml:"language"`
	Country      string        `yaml:"country"`
	Timeout      time.Duration `yaml:"timeout"`
	ImageEnabled bool          `yaml:"image_enabled"`
}

// AIConfig configures the embedding and advisor models.
type AIConfig struct {
	Host           string `yaml:"host"`
	EmbeddingModel string `yaml:"embedding_model"`
	AdvisorModel   string `yaml:"advisor_model"`
	APIKey         string `yaml:"api_key"`
	Region         string `yaml:"region"`
	MaxSuggestions int    `yaml:"max_suggestions"`
}

// VerifyConfig configures scoring and the verification policy. Zero
// thresholds use the defaults of the selected scorer.
type VerifyConfig struct {
	Scorer           string   `yaml:"scorer"`
	NameThreshold    float64  `yaml:"name_threshold"`
	HighThreshold    float64  `yaml:"high_threshold"`
	BrandThreshold   float64  `yaml:"brand_threshold"`
	VarietalPenalty  float64  `yaml:"varietal_penalty"`
	BrandFallback    string   `yaml:"brand_fallback"`
	Allowlist        []string `yaml:"allowlist"`
	NegativeKeywords []string `yaml:"negative_keywords"`
}

// CascadeConfig mirrors cascade.Config.
type CascadeConfig struct {
	ImageWhenInsufficient bool          `yaml:"image_when_insufficient"`
	MinMatches            int           `yaml:"min_matches"`
	RequireLikely         bool          `yaml:"require_likely"`
	Fallback              bool          `yaml:"fallback"`
	MaxResults            int           `yaml:"max_results"`
	GenericRetailer       string        `yaml:"generic_retailer"`
	RetryAttempts         int           `yaml:"retry_attempts"`
	RetryDelay            time.Duration `yaml:"retry_delay"`
}

// CacheConfig enables the Redis response cache when RedisAddr is set, or
// an in-process cache of MemoryEntries responses otherwise.
type CacheConfig struct {
	RedisAddr     string        `yaml:"redis_addr"`
	MemoryEntries int           `yaml:"memory_entries"`
	Password      string        `yaml:"password"`
	DB            int           `yaml:"db"`
	TTL           time.Duration `yaml:"ttl"`
}

// AuditConfig configures the verification audit file. Empty File disables it.
type AuditConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// CatalogConfig configures catalog imports.
type CatalogConfig struct {
	ImageBaseURL string `yaml:"image_base_url"`
	HeaderRow    int    `yaml:"header_row"`
}

// BatchConfig configures batch runs. Zero workers means NumCPU/2.
type BatchConfig struct {
	Workers int `yaml:"workers"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the built-in configuration.
func Default() *Config {
	aiDefaults := ai.DefaultConfig()
	cascadeDefaults := cascade.DefaultConfig()
	auditDefaults := audit.DefaultConfig()
	return &Config{
		LogLevel: "info",
		Database: DatabaseConfig{Path: "data/wheretobuy"},
		Search: SearchConfig{
			Language:     "en",
			Country:      "uk",
			Timeout:      30 * time.Second,
			ImageEnabled: true,
		},
		AI: AIConfig{
			Host:           aiDefaults.AdvisorHost,
			EmbeddingModel: aiDefaults.EmbeddingModel,
			AdvisorModel:   aiDefaults.AdvisorModel,
			Region:         aiDefaults.Region,
			MaxSuggestions: aiDefaults.MaxSuggestions,
		},
		Verify: VerifyConfig{
			Scorer:        "lexical",
			BrandFallback: string(verify.BrandFallbackAllowlistOrHighScore),
		},
		Cascade: CascadeConfig{
			ImageWhenInsufficient: cascadeDefaults.ImageWhenInsufficient,
			MinMatches:            cascadeDefaults.MinMatches,
			RequireLikely:         cascadeDefaults.RequireLikely,
			Fallback:              cascadeDefaults.FallbackEnabled,
			MaxResults:            cascadeDefaults.MaxResults,
			GenericRetailer:       cascadeDefaults.GenericRetailer,
			RetryAttempts:         cascadeDefaults.RetryAttempts,
			RetryDelay:            cascadeDefaults.RetryDelay,
		},
		Cache: CacheConfig{TTL: 24 * time.Hour},
		Audit: AuditConfig{
			File:       auditDefaults.Filename,
			MaxSizeMB:  auditDefaults.MaxSizeMB,
			MaxBackups: auditDefaults.MaxBackups,
			MaxAgeDays: auditDefaults.MaxAgeDays,
		},
		Catalog: CatalogConfig{HeaderRow: 1},
		Server:  ServerConfig{Addr: ":8080"},
	}
}

// Load reads path over the defaults and applies environment overrides.
// An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, err
		}
	}

	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides credentials and endpoints from the environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(EnvSerpAPIKey, &c.Search.SerpAPIKey)
	set(EnvOpenAIKey, &c.AI.APIKey)
	set(EnvOpenAIHost, &c.AI.Host)
	set(EnvDatabase, &c.Database.Path)
	set(EnvRedisAddr, &c.Cache.RedisAddr)
}

// Validate checks the values that are not validated by the component
// configs they are converted into.
func (c *Config) Validate() error {
	switch c.Verify.Scorer {
	case "lexical", "semantic":
	default:
		return fmt.Errorf("config: unknown scorer %q", c.Verify.Scorer)
	}
	switch c.Database.ResultsDriver {
	case "", "sqlite", "postgres":
	default:
		return fmt.Errorf("config: unknown results driver %q", c.Database.ResultsDriver)
	}
	if c.Database.ResultsDriver != "" && c.Database.ResultsDSN == "" {
		return errors.New("config: results_dsn is required with results_driver")
	}
	if _, err := c.VerifyPolicyConfig(); err != nil {
		return err
	}
	return c.CascadePolicy().Validate()
}

// AIProviderConfig converts to an ai.Config.
func (c *Config) AIProviderConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithHost(c.AI.Host),
		ai.WithEmbeddingModel(c.AI.EmbeddingModel),
		ai.WithAdvisorModel(c.AI.AdvisorModel),
		ai.WithAPIKey(c.AI.APIKey),
		ai.WithRegion(c.AI.Region),
		ai.WithMaxSuggestions(c.AI.MaxSuggestions),
	)
}

// VerifyPolicyConfig converts to a verify.Config, starting from the
// defaults of the selected scorer.
func (c *Config) VerifyPolicyConfig() (verify.Config, error) {
	v := verify.ConfigFor(c.Verify.Scorer)
	if c.Verify.NameThreshold != 0 {
		v.NameThreshold = c.Verify.NameThreshold
	}
	if c.Verify.HighThreshold != 0 {
		v.HighThreshold = c.Verify.HighThreshold
	}
	if c.Verify.BrandThreshold != 0 {
		v.BrandThreshold = c.Verify.BrandThreshold
	}
	if c.Verify.VarietalPenalty != 0 {
		v.VarietalPenalty = c.Verify.VarietalPenalty
	}
	if c.Verify.BrandFallback != "" {
		mode, err := verify.ParseBrandFallback(c.Verify.BrandFallback)
		if err != nil {
			return v, err
		}
		v.BrandFallback = mode
	}
	if len(c.Verify.Allowlist) > 0 {
		v.Allowlist = append([]string(nil), c.Verify.Allowlist...)
	}
	maxScore := 100.0
	if c.Verify.Scorer == "semantic" {
		maxScore = 1
	}
	return v, v.Validate(maxScore)
}

// CascadePolicy converts to a cascade.Config.
func (c *Config) CascadePolicy() *cascade.Config {
	return cascade.NewConfig(
		cascade.WithImageWhenInsufficient(c.Cascade.ImageWhenInsufficient, c.Cascade.MinMatches),
		cascade.WithRequireLikely(c.Cascade.RequireLikely),
		cascade.WithFallback(c.Cascade.Fallback),
		cascade.WithMaxResults(c.Cascade.MaxResults),
		cascade.WithGenericRetailer(c.Cascade.GenericRetailer),
		cascade.WithRetry(c.Cascade.RetryAttempts, c.Cascade.RetryDelay),
	)
}

// AuditFile converts to an audit.Config.
func (c *Config) AuditFile() audit.Config {
	return audit.Config{
		Filename:   c.Audit.File,
		MaxSizeMB:  c.Audit.MaxSizeMB,
		MaxBackups: c.Audit.MaxBackups,
		MaxAgeDays: c.Audit.MaxAgeDays,
		Compress:   true,
	}
}
