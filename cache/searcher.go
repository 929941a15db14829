package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/poiesic/wheretobuy/backend"
	"github.com/poiesic/wheretobuy/core"
	"github.com/poiesic/wheretobuy/match"
)

// DefaultTTL is how long cached search responses are kept.
const DefaultTTL = 24 * time.Hour

// Searcher caches text and image search responses. Cache failures are
// logged and fall through to the wrapped backend. Backend errors are never
// cached.
type Searcher struct {
	client Client
	text   backend.TextSearcher
	image  backend.ImageSearcher
	ttl    time.Duration
	logger *slog.Logger
}

var (
	_ backend.TextSearcher  = (*Searcher)(nil)
	_ backend.ImageSearcher = (*Searcher)(nil)
)

// Option configures a Searcher.
type Option func(*Searcher) error

// WithTTL sets the entry lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(s *Searcher) error {
		if ttl > 0 {
			s.ttl = ttl
		}
		return nil
	}
}

// WithImageSearcher also caches image searches through the given backend.
func WithImageSearcher(image backend.ImageSearcher) Option {
	return func(s *Searcher) error {
		s.image = image
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher wraps text with a cache backed by client.
func NewSearcher(client Client, text backend.TextSearcher, opts ...Option) (*Searcher, error) {
	if client == nil || text == nil {
		return nil, errors.New("cache: client and text searcher are required")
	}
	s := &Searcher{
		client: client,
		text:   text,
		ttl:    DefaultTTL,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "search-cache")
	return s, nil
}

func (s *Searcher) SearchText(ctx context.Context, query string) ([]core.Candidate, error) {
	key := Key("text", match.Normalize(query))
	return s.cached(ctx, key, func() ([]core.Candidate, error) {
		return s.text.SearchText(ctx, query)
	})
}

// SearchImage is uncached pass-through unless an image backend was given.
func (s *Searcher) SearchImage(ctx context.Context, imageURL string) ([]core.Candidate, error) {
	if s.image == nil {
		return nil, errors.New("cache: no image searcher configured")
	}
	key := Key("image", imageURL)
	return s.cached(ctx, key, func() ([]core.Candidate, error) {
		return s.image.SearchImage(ctx, imageURL)
	})
}

func (s *Searcher) cached(ctx context.Context, key string, fetch func() ([]core.Candidate, error)) ([]core.Candidate, error) {
	data, err := s.client.Get(ctx, key)
	switch {
	case err == nil:
		var candidates []core.Candidate
		if err := json.Unmarshal(data, &candidates); err == nil {
			s.logger.Debug("cache hit", "key", key, "results", len(candidates))
			return candidates, nil
		}
		s.logger.Warn("discarding undecodable cache entry", "key", key)
	case !errors.Is(err, ErrCacheMiss):
		s.logger.Warn("cache read failed", "key", key, "err", err)
	}

	candidates, err := fetch()
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(candidates); err == nil {
		if err := s.client.Set(ctx, key, data, s.ttl); err != nil {
			s.logger.Warn("cache write failed", "key", key, "err", err)
		}
	}
	return candidates, nil
}
