// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.Advisor,
// and ai.AIProvider for use in unit tests. The mocks allow tests to run without
// external AI service dependencies and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	vectors, err := mockProvider.Embedder().EmbedTexts(ctx, texts)
//
//	// Custom behavior injection
//	advisor := mock.NewMockAdvisor()
//	advisor.SuggestRetailersFunc = func(ctx context.Context, desc string) ([]ai.Suggestion, error) {
//	    return nil, errors.New("backend down")
//	}
//
//	// Check call counts
//	count := advisor.CallCount()
//
// # Default Behavior
//
//   - MockEmbedder: Returns unit bag-of-words vectors, so shared words raise cosine similarity
//   - MockAdvisor: Returns one suggestion naming a generic merchant
//   - MockProvider: Aggregates mock embedder and advisor
package mock
