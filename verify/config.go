package verify

import (
	"fmt"
)

// BrandFallback selects what happens to a candidate that passed the name
// gate but whose listing does not mention the target producer.
type BrandFallback string

const (
	// BrandFallbackAllowlistOrHighScore grants Likely when the store is on
	// the allowlist or the name score reaches HighThreshold.
	BrandFallbackAllowlistOrHighScore BrandFallback = "allowlist_or_high_score"

	// BrandFallbackAllowlistOnly grants Likely only for allowlisted stores.
	BrandFallbackAllowlistOnly BrandFallback = "allowlist_only"

	// BrandFallbackReject rejects every candidate without a brand match.
	BrandFallbackReject BrandFallback = "reject"
)

// ParseBrandFallback parses a fallback mode name.
func ParseBrandFallback(s string) (BrandFallback, error) {
	switch mode := BrandFallback(s); mode {
	case BrandFallbackAllowlistOrHighScore, BrandFallbackAllowlistOnly, BrandFallbackReject:
		return mode, nil
	}
	return "", fmt.Errorf("%w: unknown brand fallback %q", ErrInvalidConfig, s)
}

// DefaultAllowlist holds retailer name fragments, in Strict-normalized form,
// that are trusted enough to grant Likely when the brand is not in the title.
var DefaultAllowlist = []string{
	"amazon",
	"ebay",
	"tesco",
	"sainsbury",
	"waitrose",
	"asda",
	"morrisons",
	"ocado",
	"marks spencer",
	"co op",
	"aldi",
	"lidl",
	"costco",
	"booths",
	"majestic",
	"laithwaites",
	"the wine society",
	"virgin wines",
	"naked wines",
	"oddbins",
	"berry bros",
	"the whisky exchange",
	"master of malt",
	"harvey nichols",
	"selfridges",
	"fortnum",
	"slurp",
	"vinvm",
}

// Config holds the thresholds and knobs of a verification policy.
// Name and high thresholds are on the scorer's scale; BrandThreshold is a
// 0-100 partial ratio.
type Config struct {
	NameThreshold   float64
	HighThreshold   float64
	BrandThreshold  float64
	VarietalPenalty float64
	BrandFallback   BrandFallback
	Allowlist       []string
}

// LexicalConfig returns defaults for a 0-100 lexical scorer.
func LexicalConfig() Config {
	return Config{
		NameThreshold:   80,
		HighThreshold:   92,
		BrandThreshold:  90,
		VarietalPenalty: 0.9,
		BrandFallback:   BrandFallbackAllowlistOrHighScore,
		Allowlist:       append([]string(nil), DefaultAllowlist...),
	}
}

// SemanticConfig returns defaults for a cosine similarity scorer.
func SemanticConfig() Config {
	cfg := LexicalConfig()
	cfg.NameThreshold = 0.75
	cfg.HighThreshold = 0.85
	return cfg
}

// ConfigFor returns the defaults matching a scorer strategy name.
func ConfigFor(scorerName string) Config {
	if scorerName == "semantic" {
		return SemanticConfig()
	}
	return LexicalConfig()
}

// Validate checks that the configuration is usable with a scorer whose
// identical-input score is maxScore.
func (c Config) Validate(maxScore float64) error {
	if c.NameThreshold <= 0 || c.NameThreshold > maxScore {
		return fmt.Errorf("%w: NameThreshold must be in (0, %g]", ErrInvalidConfig, maxScore)
	}
	if c.HighThreshold < c.NameThreshold || c.HighThreshold > maxScore {
		return fmt.Errorf("%w: HighThreshold must be in [NameThreshold, %g]", ErrInvalidConfig, maxScore)
	}
	if c.BrandThreshold <= 0 || c.BrandThreshold > 100 {
		return fmt.Errorf("%w: BrandThreshold must be in (0, 100]", ErrInvalidConfig)
	}
	if c.VarietalPenalty <= 0 || c.VarietalPenalty > 1 {
		return fmt.Errorf("%w: VarietalPenalty must be in (0, 1]", ErrInvalidConfig)
	}
	if _, err := ParseBrandFallback(string(c.BrandFallback)); err != nil {
		return err
	}
	return nil
}
