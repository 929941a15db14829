package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity scoring.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedTexts generates vector embeddings for multiple text strings in one request.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Advisor proposes retailers for a product when no search listing could be verified.
// Implementations must be thread-safe for concurrent use.
type Advisor interface {
	// SuggestRetailers returns stores likely to sell the described product.
	// Suggestions are opinions and are never verified against listings.
	// Returns an error wrapping ErrMalformedResponse when the reply could not
	// be parsed into at least one suggestion.
	SuggestRetailers(ctx context.Context, description string) ([]Suggestion, error)
}

// Suggestion is one retailer proposed by an Advisor.
type Suggestion struct {
	// StoreName is the retailer name. Always populated.
	StoreName string

	// URL is the retailer or product page, empty when the advisor gave none.
	URL string

	// Reason is the advisor's rationale for the suggestion.
	Reason string
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Advisor returns the retailer suggestion service.
	// The returned Advisor is safe for concurrent use.
	Advisor() Advisor

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
