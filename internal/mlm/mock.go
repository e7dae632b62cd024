package mlm

import (
	"context"

	"github.com/zesch/rwse-checker/internal/domain"
)

// ScoreCall records one Score invocation for assertions.
type ScoreCall struct {
	Sentence   string
	Candidates []string
}

// MockProvider is a configurable score provider for testing.
// Set Response and Err to control what Score returns; every invocation is
// recorded in Calls.
type MockProvider struct {
	Mask     string
	Response []domain.ScoredCandidate
	Err      error

	Calls []ScoreCall
}

func NewMockProvider() *MockProvider {
	return &MockProvider{Mask: defaultMaskToken}
}

func (m *MockProvider) MaskToken() string {
	if m.Mask == "" {
		return defaultMaskToken
	}
	return m.Mask
}

func (m *MockProvider) Score(ctx context.Context, maskedSentence string, candidates []string) ([]domain.ScoredCandidate, error) {
	m.Calls = append(m.Calls, ScoreCall{Sentence: maskedSentence, Candidates: candidates})
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Response, nil
}

// Reset clears recorded calls and configured responses.
func (m *MockProvider) Reset() {
	m.Response = nil
	m.Err = nil
	m.Calls = nil
}
