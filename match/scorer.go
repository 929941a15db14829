package match

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/wheretobuy/ai"
)

// Scorer rates how closely each candidate name matches a target description.
// Implementations must be safe for concurrent use.
type Scorer interface {
	// Score returns one score per candidate, in input order.
	Score(ctx context.Context, target string, candidates []string) ([]float64, error)

	// Name identifies the strategy ("lexical" or "semantic").
	Name() string

	// Max is the score given to identical inputs.
	Max() float64
}

// LexicalScorer scores with the best of several fuzzy string ratios on a
// 0-100 scale. It never fails.
type LexicalScorer struct{}

var _ Scorer = (*LexicalScorer)(nil)

// NewLexicalScorer creates a lexical scorer.
func NewLexicalScorer() *LexicalScorer {
	return &LexicalScorer{}
}

// Score returns BestRatio of the target against every candidate.
func (s *LexicalScorer) Score(_ context.Context, target string, candidates []string) ([]float64, error) {
	scores := make([]float64, len(candidates))
	for i, c := range candidates {
		scores[i] = BestRatio(target, c)
	}
	return scores, nil
}

func (s *LexicalScorer) Name() string { return "lexical" }
func (s *LexicalScorer) Max() float64 { return 100 }

// SemanticScorer scores with the cosine similarity of embeddings.
// The target and all candidates go to the embedder in a single request.
type SemanticScorer struct {
	embedder ai.Embedder
	logger   *slog.Logger
}

var _ Scorer = (*SemanticScorer)(nil)

// NewSemanticScorer creates a semantic scorer over the given embedder.
func NewSemanticScorer(embedder ai.Embedder) (*SemanticScorer, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	return &SemanticScorer{
		embedder: embedder,
		logger:   slog.Default().With("component", "semantic-scorer"),
	}, nil
}

// Score embeds [target, candidates...] in one call and returns the cosine
// similarity of each candidate vector to the target vector.
func (s *SemanticScorer) Score(ctx context.Context, target string, candidates []string) ([]float64, error) {
	if len(candidates) == 0 {
		return []float64{}, nil
	}

	texts := make([]string, 0, len(candidates)+1)
	texts = append(texts, Normalize(target))
	for _, c := range candidates {
		texts = append(texts, Normalize(c))
	}

	vectors, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScoring, err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: %w: sent %d texts, got %d vectors",
			ErrScoring, ai.ErrEmbeddingCount, len(texts), len(vectors))
	}

	scores := make([]float64, len(candidates))
	for i := range candidates {
		scores[i] = CosineSimilarity(vectors[0], vectors[i+1])
	}
	s.logger.Debug("scored candidates", "count", len(candidates))
	return scores, nil
}

func (s *SemanticScorer) Name() string { return "semantic" }
func (s *SemanticScorer) Max() float64 { return 1 }
