// Package mock provides scriptable search backends for tests.
package mock

import (
	"context"
	"sync"

	"github.com/poiesic/wheretobuy/backend"
	"github.com/poiesic/wheretobuy/core"
)

var (
	_ backend.TextSearcher  = (*Searcher)(nil)
	_ backend.ImageSearcher = (*Searcher)(nil)
)

// Searcher is a mock text and image backend. Unset funcs return the
// configured fixed results.
type Searcher struct {
	SearchTextFunc  func(ctx context.Context, query string) ([]core.Candidate, error)
	SearchImageFunc func(ctx context.Context, imageURL string) ([]core.Candidate, error)

	TextResults  []core.Candidate
	ImageResults []core.Candidate

	mu         sync.Mutex
	textCalls  []string
	imageCalls []string
}

// NewSearcher creates a mock that returns the given results.
func NewSearcher(text, image []core.Candidate) *Searcher {
	return &Searcher{TextResults: text, ImageResults: image}
}

func (s *Searcher) SearchText(ctx context.Context, query string) ([]core.Candidate, error) {
	s.mu.Lock()
	s.textCalls = append(s.textCalls, query)
	s.mu.Unlock()

	if s.SearchTextFunc != nil {
		return s.SearchTextFunc(ctx, query)
	}
	return clone(s.TextResults), nil
}

func (s *Searcher) SearchImage(ctx context.Context, imageURL string) ([]core.Candidate, error) {
	s.mu.Lock()
	s.imageCalls = append(s.imageCalls, imageURL)
	s.mu.Unlock()

	if s.SearchImageFunc != nil {
		return s.SearchImageFunc(ctx, imageURL)
	}
	return clone(s.ImageResults), nil
}

// TextCalls returns the queries received so far.
func (s *Searcher) TextCalls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.textCalls...)
}

// ImageCalls returns the image URLs received so far.
func (s *Searcher) ImageCalls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.imageCalls...)
}

// Reset clears recorded calls.
func (s *Searcher) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.textCalls = nil
	s.imageCalls = nil
}

func clone(in []core.Candidate) []core.Candidate {
	if in == nil {
		return nil
	}
	return append([]core.Candidate(nil), in...)
}
