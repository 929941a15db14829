// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"errors"
	"strings"
)

// Config holds configuration for AI service providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "https://api.openai.com/v1" or "http://localhost:11434/v1"
	EmbeddingHost string

	// AdvisorHost is the base URL for the chat service used for retailer suggestions.
	AdvisorHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "text-embedding-3-small", "embeddinggemma"
	EmbeddingModel string

	// AdvisorModel is the chat model identifier used for retailer suggestions.
	// Example: "gpt-4o-mini", "qwen2.5:3b"
	AdvisorModel string

	// APIKey authenticates against hosted APIs. Local OpenAI-compatible
	// servers accept any token, so an empty key is sent as "none".
	APIKey string

	// Region is the market the advisor is asked to recommend retailers in.
	// Default: "UK"
	Region string

	// MaxSuggestions caps the number of retailers the advisor returns (1-10).
	// Default: 3
	MaxSuggestions int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithAdvisorHost sets the advisor service host URL.
func WithAdvisorHost(host string) ConfigOption {
	return func(c *Config) {
		c.AdvisorHost = host
	}
}

// WithHost sets both embedding and advisor hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.AdvisorHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithAdvisorModel sets the advisor model identifier.
func WithAdvisorModel(model string) ConfigOption {
	return func(c *Config) {
		c.AdvisorModel = model
	}
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithRegion sets the market the advisor recommends retailers in.
func WithRegion(region string) ConfigOption {
	return func(c *Config) {
		c.Region = region
	}
}

// WithMaxSuggestions sets the maximum number of advisor suggestions.
func WithMaxSuggestions(n int) ConfigOption {
	return func(c *Config) {
		c.MaxSuggestions = n
	}
}

// DefaultConfig returns a Config targeting the hosted OpenAI API.
// The API key is left empty and must be injected by the caller.
func DefaultConfig() *Config {
	defaultHost := "https://api.openai.com/v1"
	return &Config{
		EmbeddingHost:  defaultHost,
		AdvisorHost:    defaultHost,
		EmbeddingModel: "text-embedding-3-small",
		AdvisorModel:   "gpt-4o-mini",
		Region:         "UK",
		MaxSuggestions: 3,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithHost("http://localhost:11434/v1"),
//	    WithEmbeddingModel("embeddinggemma"),
//	    WithAdvisorModel("qwen2.5:3b"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It adds the /v1 suffix to hosts if missing, which is required
// by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	c.EmbeddingHost = normalizeHost(c.EmbeddingHost)
	c.AdvisorHost = normalizeHost(c.AdvisorHost)
	c.Region = strings.TrimSpace(c.Region)
}

func normalizeHost(host string) string {
	if host == "" || strings.HasSuffix(host, "/v1") {
		return host
	}
	return strings.TrimSuffix(host, "/") + "/v1"
}

// Token returns the bearer token to send, "none" when no key is configured.
func (c *Config) Token() string {
	if c.APIKey == "" {
		return "none"
	}
	return c.APIKey
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.AdvisorHost == "" {
		return errors.New("ai config: AdvisorHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.AdvisorModel == "" {
		return errors.New("ai config: AdvisorModel is required")
	}
	if c.Region == "" {
		return errors.New("ai config: Region is required")
	}
	if c.MaxSuggestions < 1 || c.MaxSuggestions > 10 {
		return errors.New("ai config: MaxSuggestions must be between 1 and 10")
	}
	return nil
}
