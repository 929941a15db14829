package wheretobuy

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/poiesic/wheretobuy/ai"
	"github.com/poiesic/wheretobuy/ai/openai"
	"github.com/poiesic/wheretobuy/audit"
	"github.com/poiesic/wheretobuy/backend"
	"github.com/poiesic/wheretobuy/backend/serpapi"
	"github.com/poiesic/wheretobuy/cache"
	"github.com/poiesic/wheretobuy/cascade"
	"github.com/poiesic/wheretobuy/config"
	"github.com/poiesic/wheretobuy/match"
	"github.com/poiesic/wheretobuy/storage"
	"github.com/poiesic/wheretobuy/storage/badger"
	"github.com/poiesic/wheretobuy/storage/sqlstore"
	"github.com/poiesic/wheretobuy/verify"
)

// Open builds a Locator from configuration: the badger catalog, the
// optional SQL results mirror, the AI provider, SerpAPI search with an
// optional Redis or in-process cache, and the audit trail.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*Locator, error) {
	logger := slog.Default()
	probe := &Locator{logger: logger}
	for _, opt := range opts {
		if err := opt(probe); err != nil {
			return nil, err
		}
	}
	logger = probe.logger

	repos, err := badger.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", cfg.Database.Path, err)
	}

	// closers are handed to the Locator on success and released here on failure.
	var mirror storage.PlacementRepository
	var closers []io.Closer
	fail := func(err error) (*Locator, error) {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i].Close()
		}
		if mirror != nil {
			mirror.Close()
		}
		repos.Close()
		return nil, err
	}

	if cfg.Database.ResultsDriver != "" {
		mirror, err = sqlstore.Open(ctx, cfg.Database.ResultsDriver, cfg.Database.ResultsDSN)
		if err != nil {
			return fail(fmt.Errorf("open results table: %w", err))
		}
	}

	provider, err := openai.NewProvider(cfg.AIProviderConfig())
	if err != nil {
		return fail(err)
	}
	closers = append(closers, provider)

	policy, err := newPolicy(cfg, provider, logger)
	if err != nil {
		return fail(err)
	}

	serp, err := serpapi.NewClient(serpapi.Config{
		APIKey:   cfg.Search.SerpAPIKey,
		Language: cfg.Search.Language,
		Country:  cfg.Search.Country,
		Timeout:  cfg.Search.Timeout,
	})
	if err != nil {
		return fail(err)
	}
	var text backend.TextSearcher = serp
	var image backend.ImageSearcher
	if cfg.Search.ImageEnabled {
		image = serp
	}

	var client cache.Client
	switch {
	case cfg.Cache.RedisAddr != "":
		redisClient, err := cache.NewRedisClient(cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		if err != nil {
			return fail(err)
		}
		client = redisClient
	case cfg.Cache.MemoryEntries > 0:
		client = cache.NewMemoryClient(cfg.Cache.MemoryEntries)
	}
	if client != nil {
		closers = append(closers, client)

		cacheOpts := []cache.Option{cache.WithTTL(cfg.Cache.TTL), cache.WithLogger(logger)}
		if image != nil {
			cacheOpts = append(cacheOpts, cache.WithImageSearcher(image))
		}
		cached, err := cache.NewSearcher(client, text, cacheOpts...)
		if err != nil {
			return fail(err)
		}
		text = cached
		if image != nil {
			image = cached
		}
	}

	orchOpts := []cascade.Option{
		cascade.WithAdvisor(provider.Advisor()),
		cascade.WithKeywordFilter(match.NewKeywordFilter(cfg.Verify.NegativeKeywords...)),
		cascade.WithConfig(cfg.CascadePolicy()),
		cascade.WithLogger(logger),
	}
	if image != nil {
		orchOpts = append(orchOpts, cascade.WithImageSearcher(image))
	}
	if cfg.Audit.File != "" {
		trail, err := audit.Open(cfg.AuditFile())
		if err != nil {
			return fail(err)
		}
		closers = append(closers, trail)
		orchOpts = append(orchOpts, cascade.WithMonitor(trail))
	}

	orchestrator, err := cascade.NewOrchestrator(text, policy, orchOpts...)
	if err != nil {
		return fail(err)
	}

	// The Locator closes the repositories itself, so only the badger
	// handle is registered from the bundle.
	locatorOpts := append([]Option{}, opts...)
	locatorOpts = append(locatorOpts, WithCloser(repos.Backend()))
	for _, c := range closers {
		locatorOpts = append(locatorOpts, WithCloser(c))
	}
	if mirror != nil {
		locatorOpts = append(locatorOpts, WithMirror(mirror))
	}

	locator, err := NewLocator(repos.Products, repos.Placements, orchestrator, locatorOpts...)
	if err != nil {
		return fail(err)
	}
	return locator, nil
}

func newPolicy(cfg *config.Config, provider ai.AIProvider, logger *slog.Logger) (*verify.Policy, error) {
	vc, err := cfg.VerifyPolicyConfig()
	if err != nil {
		return nil, err
	}

	var scorer match.Scorer = match.NewLexicalScorer()
	if cfg.Verify.Scorer == "semantic" {
		scorer, err = match.NewSemanticScorer(provider.Embedder())
		if err != nil {
			return nil, err
		}
	}
	return verify.NewPolicy(scorer, verify.WithConfig(vc), verify.WithLogger(logger))
}
