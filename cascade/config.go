package cascade

import (
	"fmt"
	"strings"
	"time"
)

// DefaultGenericRetailer is the store named in the synthesized suggestion
// used when the fallback advisor fails or returns nothing.
const DefaultGenericRetailer = "Generic UK Beverage Retailer"

// Config holds the cascade policy knobs.
type Config struct {
	// ImageWhenInsufficient runs image search when text search found some
	// matches but fewer than MinMatches. When false, image search only runs
	// after text search found no match at all.
	ImageWhenInsufficient bool

	// MinMatches is the number of Verified or Likely matches that counts as
	// sufficient when ImageWhenInsufficient is set.
	// Default: 1
	MinMatches int

	// RequireLikely keeps a result slot for the best Likely match when
	// Verified matches would otherwise fill every slot.
	RequireLikely bool

	// FallbackEnabled runs the generative fallback when no stage matched.
	// Default: true
	FallbackEnabled bool

	// MaxResults caps the number of places returned.
	// Default: 3
	MaxResults int

	// GenericRetailer names the synthesized fallback store.
	GenericRetailer string

	// RetryAttempts is how many times a backend call is tried before the
	// stage is declared unavailable.
	// Default: 2
	RetryAttempts int

	// RetryDelay is the base backoff delay, doubled on each retry.
	// Default: 500ms
	RetryDelay time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithImageWhenInsufficient enables image search for partial text results.
func WithImageWhenInsufficient(enabled bool, minMatches int) ConfigOption {
	return func(c *Config) {
		c.ImageWhenInsufficient = enabled
		c.MinMatches = minMatches
	}
}

// WithRequireLikely sets whether a Likely match must be surfaced.
func WithRequireLikely(required bool) ConfigOption {
	return func(c *Config) {
		c.RequireLikely = required
	}
}

// WithFallback enables or disables the generative fallback stage.
func WithFallback(enabled bool) ConfigOption {
	return func(c *Config) {
		c.FallbackEnabled = enabled
	}
}

// WithMaxResults sets the result limit.
func WithMaxResults(n int) ConfigOption {
	return func(c *Config) {
		c.MaxResults = n
	}
}

// WithGenericRetailer sets the synthesized fallback store name.
func WithGenericRetailer(name string) ConfigOption {
	return func(c *Config) {
		c.GenericRetailer = name
	}
}

// WithRetry sets backend retry attempts and base delay.
func WithRetry(attempts int, delay time.Duration) ConfigOption {
	return func(c *Config) {
		c.RetryAttempts = attempts
		c.RetryDelay = delay
	}
}

// DefaultConfig returns the default cascade policy.
func DefaultConfig() *Config {
	return &Config{
		ImageWhenInsufficient: false,
		MinMatches:            1,
		RequireLikely:         false,
		FallbackEnabled:       true,
		MaxResults:            3,
		GenericRetailer:       DefaultGenericRetailer,
		RetryAttempts:         2,
		RetryDelay:            500 * time.Millisecond,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize trims the generic retailer name and restores its default when blank.
func (c *Config) Normalize() {
	c.GenericRetailer = strings.TrimSpace(c.GenericRetailer)
	if c.GenericRetailer == "" {
		c.GenericRetailer = DefaultGenericRetailer
	}
}

// Validate checks that the configuration is usable.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.MinMatches < 1 {
		return fmt.Errorf("%w: MinMatches must be at least 1", ErrInvalidConfig)
	}
	if c.MaxResults < 1 {
		return fmt.Errorf("%w: MaxResults must be at least 1", ErrInvalidConfig)
	}
	if c.RetryAttempts < 1 {
		return fmt.Errorf("%w: RetryAttempts must be at least 1", ErrInvalidConfig)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("%w: RetryDelay must not be negative", ErrInvalidConfig)
	}
	return nil
}
