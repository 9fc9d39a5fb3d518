package mock

import (
	"context"
	"strings"
)

// MockSummarizer is a test double for ai.Summarizer.
type MockSummarizer struct {
	// SummarizeFunc is called by Summarize if set.
	// If nil, returns a deterministic truncation of the input.
	SummarizeFunc func(ctx context.Context, text string) (string, error)

	callCount int
}

// NewMockSummarizer creates a mock summarizer with default behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockSummarizer() *MockSummarizer {
	return &MockSummarizer{}
}

// Summarize returns a deterministic short form of the text.
func (m *MockSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	m.callCount++

	if m.SummarizeFunc != nil {
		return m.SummarizeFunc(ctx, text)
	}

	words := strings.Fields(text)
	if len(words) > 8 {
		words = words[:8]
	}
	return "summary: " + strings.Join(words, " "), nil
}

// CallCount returns the number of times Summarize was called.
func (m *MockSummarizer) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockSummarizer) Reset() {
	m.callCount = 0
	m.SummarizeFunc = nil
}
