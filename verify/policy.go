package verify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/wheretobuy/core"
	"github.com/poiesic/wheretobuy/match"
)

// Policy classifies candidates into Verified, Likely or Rejected.
// It holds no per-request state and is safe for concurrent use.
type Policy struct {
	scorer    match.Scorer
	config    Config
	allowlist []string
	logger    *slog.Logger
}

// Option configures a Policy.
type Option func(*Policy) error

// WithConfig replaces the scorer's default configuration.
func WithConfig(cfg Config) Option {
	return func(p *Policy) error {
		p.config = cfg
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Policy) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPolicy creates a policy over the given scorer. Without WithConfig the
// defaults for the scorer's strategy are used.
func NewPolicy(scorer match.Scorer, opts ...Option) (*Policy, error) {
	if scorer == nil {
		return nil, ErrScorerRequired
	}

	p := &Policy{
		scorer: scorer,
		config: ConfigFor(scorer.Name()),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	if err := p.config.Validate(scorer.Max()); err != nil {
		return nil, err
	}

	for _, fragment := range p.config.Allowlist {
		if fragment = match.Strict(fragment); fragment != "" {
			p.allowlist = append(p.allowlist, fragment)
		}
	}
	p.logger = p.logger.With("component", "verify", "scorer", scorer.Name())

	return p, nil
}

// Config returns the active configuration.
func (p *Policy) Config() Config {
	return p.config
}

// ScorerName returns the scoring strategy in use.
func (p *Policy) ScorerName() string {
	return p.scorer.Name()
}

// Evaluate verifies candidates against the target and returns one outcome
// per candidate in input order. Candidates are expected to have passed the
// negative keyword filter already. An error is returned only when scoring
// fails; the target is never modified.
func (p *Policy) Evaluate(ctx context.Context, target core.Target, candidates []core.Candidate) ([]core.VerifiedCandidate, error) {
	results := make([]core.VerifiedCandidate, len(candidates))
	vintage := strings.TrimSpace(target.Vintage)

	// Vintage gate, before any scoring
	pending := make([]int, 0, len(candidates))
	names := make([]string, 0, len(candidates))
	for i, c := range candidates {
		if vintage != "" && !strings.Contains(c.ProductName, vintage) {
			results[i] = reject(c, 0, fmt.Sprintf("vintage %s not found in listing name", vintage))
			continue
		}
		pending = append(pending, i)
		names = append(names, c.ProductName)
	}

	if len(pending) == 0 {
		return results, nil
	}

	scores, err := p.scorer.Score(ctx, target.Description(), names)
	if err != nil {
		p.logger.Error("scoring failed", "candidates", len(names), "err", err)
		return nil, err
	}
	if len(scores) != len(names) {
		return nil, fmt.Errorf("%w: scorer returned %d scores for %d candidates", match.ErrScoring, len(scores), len(names))
	}

	for j, i := range pending {
		results[i] = p.classify(target, candidates[i], scores[j])
	}

	return results, nil
}

func (p *Policy) classify(target core.Target, c core.Candidate, score float64) core.VerifiedCandidate {
	cfg := p.config

	if score < cfg.NameThreshold {
		return reject(c, score, fmt.Sprintf("name similarity %s below threshold %s",
			p.fmtScore(score), p.fmtScore(cfg.NameThreshold)))
	}

	name := match.Strict(c.ProductName)
	producer := match.Strict(target.Producer)
	var reason string

	if producer != "" {
		brand := brandScore(producer, name)
		if brand < cfg.BrandThreshold {
			return p.brandFallback(c, score, target.Producer, brand)
		}
		reason = fmt.Sprintf("name similarity %s, producer %q found in listing", p.fmtScore(score), target.Producer)
	} else {
		reason = fmt.Sprintf("name similarity %s, no producer to check", p.fmtScore(score))
	}

	if varietal := match.Strict(target.Varietal); varietal != "" && !strings.Contains(name, varietal) {
		penalized := score * cfg.VarietalPenalty
		return accept(c, core.TierLikely, penalized, fmt.Sprintf("%s; varietal %q missing, confidence %s x %g",
			reason, target.Varietal, p.fmtScore(score), cfg.VarietalPenalty))
	}

	return accept(c, core.TierVerified, score, reason)
}

func (p *Policy) brandFallback(c core.Candidate, score float64, producer string, brand float64) core.VerifiedCandidate {
	cfg := p.config
	missing := fmt.Sprintf("producer %q not found in listing (brand %.1f)", producer, brand)
	allowlisted := p.Allowlisted(c.StoreName)
	high := score >= cfg.HighThreshold

	switch cfg.BrandFallback {
	case BrandFallbackReject:
		return reject(c, score, missing)
	case BrandFallbackAllowlistOnly:
		if allowlisted {
			return accept(c, core.TierLikely, score, fmt.Sprintf("%s; store %q on retailer allowlist, name similarity %s",
				missing, c.StoreName, p.fmtScore(score)))
		}
		return reject(c, score, fmt.Sprintf("%s; store %q not on retailer allowlist", missing, c.StoreName))
	default:
		if allowlisted {
			return accept(c, core.TierLikely, score, fmt.Sprintf("%s; store %q on retailer allowlist, name similarity %s",
				missing, c.StoreName, p.fmtScore(score)))
		}
		if high {
			return accept(c, core.TierLikely, score, fmt.Sprintf("%s; name similarity %s reaches high threshold %s",
				missing, p.fmtScore(score), p.fmtScore(cfg.HighThreshold)))
		}
		return reject(c, score, fmt.Sprintf("%s; store %q not on retailer allowlist and name similarity %s below high threshold %s",
			missing, c.StoreName, p.fmtScore(score), p.fmtScore(cfg.HighThreshold)))
	}
}

// Allowlisted reports whether the store name contains an allowlist fragment.
func (p *Policy) Allowlisted(store string) bool {
	s := " " + match.Strict(store) + " "
	for _, fragment := range p.allowlist {
		if strings.Contains(s, " "+fragment+" ") {
			return true
		}
	}
	return false
}

// brandScore is 100 when the producer occurs in the name, otherwise the
// best partial ratio of the producer against the name.
func brandScore(producer, name string) float64 {
	if strings.Contains(name, producer) {
		return 100
	}
	return match.PartialRatio(producer, name)
}

func (p *Policy) fmtScore(v float64) string {
	if p.scorer.Max() <= 1 {
		return fmt.Sprintf("%.3f", v)
	}
	return fmt.Sprintf("%.1f", v)
}

func accept(c core.Candidate, tier core.Tier, score float64, reason string) core.VerifiedCandidate {
	return core.VerifiedCandidate{
		Candidate: c,
		IsMatch:   true,
		Tier:      tier,
		Score:     score,
		Reason:    tier.String() + ": " + reason,
	}
}

func reject(c core.Candidate, score float64, reason string) core.VerifiedCandidate {
	return core.VerifiedCandidate{
		Candidate: c,
		IsMatch:   false,
		Tier:      core.TierRejected,
		Score:     score,
		Reason:    "Rejected: " + reason,
	}
}
