package mock

import (
	"context"
	"sync"

	"github.com/poiesic/wheretobuy/ai"
)

// MockAdvisor is a test double for ai.Advisor.
type MockAdvisor struct {
	// SuggestRetailersFunc is called by SuggestRetailers if set.
	// If nil, returns a single suggestion naming a generic merchant.
	SuggestRetailersFunc func(ctx context.Context, description string) ([]ai.Suggestion, error)

	mu           sync.Mutex
	callCount    int
	descriptions []string
}

// NewMockAdvisor creates a mock advisor with default behavior.
func NewMockAdvisor() *MockAdvisor {
	return &MockAdvisor{}
}

// SuggestRetailers returns the injected result or a default suggestion.
func (m *MockAdvisor) SuggestRetailers(ctx context.Context, description string) ([]ai.Suggestion, error) {
	m.mu.Lock()
	m.callCount++
	m.descriptions = append(m.descriptions, description)
	m.mu.Unlock()

	if m.SuggestRetailersFunc != nil {
		return m.SuggestRetailersFunc(ctx, description)
	}

	return []ai.Suggestion{{
		StoreName: "Mock Wine Merchant",
		URL:       "https://merchant.example",
		Reason:    "Stocks " + description,
	}}, nil
}

// CallCount returns the number of times SuggestRetailers was called.
func (m *MockAdvisor) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Descriptions returns the product descriptions received, in call order.
func (m *MockAdvisor) Descriptions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.descriptions))
	copy(out, m.descriptions)
	return out
}

// Reset clears the call count and injected behavior.
func (m *MockAdvisor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.descriptions = nil
	m.SuggestRetailersFunc = nil
}
