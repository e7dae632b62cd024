package service

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/zesch/rwse-checker/internal/domain"
	"github.com/zesch/rwse-checker/internal/mlm"
	"github.com/zesch/rwse-checker/internal/registry"
)

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	r, err := registry.New([][]string{
		{"their", "there"},
		{"to", "too", "two"},
	})
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	return r
}

func TestChecker_SkipsNonMembersWithoutProviderCall(t *testing.T) {
	provider := mlm.NewMockProvider()
	checker := NewCheckerService(testRegistry(t), provider, zap.NewNop())

	scores, err := checker.Check(context.Background(), "banana", "I want to buy __MASK__ cars.")
	if err != nil {
		t.Fatalf("membership miss must not be an error, got %v", err)
	}
	if len(scores) != 0 {
		t.Errorf("got %d scores for a non-member, want none", len(scores))
	}
	if len(provider.Calls) != 0 {
		t.Errorf("provider called %d times for a non-member, want 0", len(provider.Calls))
	}
}

func TestChecker_RejectsSentenceWithoutPlaceholder(t *testing.T) {
	provider := mlm.NewMockProvider()
	checker := NewCheckerService(testRegistry(t), provider, zap.NewNop())

	_, err := checker.Check(context.Background(), "there", "I want to buy these cars.")
	if !errors.Is(err, ErrMissingMaskPlaceholder) {
		t.Fatalf("error = %v, want ErrMissingMaskPlaceholder", err)
	}
	if len(provider.Calls) != 0 {
		t.Errorf("provider called %d times despite missing placeholder, want 0", len(provider.Calls))
	}
}

func TestChecker_TranslatesGenericMaskOnce(t *testing.T) {
	provider := mlm.NewMockProvider()
	provider.Response = []domain.ScoredCandidate{
		{Word: "their", Score: 0.50},
		{Word: "there", Score: 0.01},
	}
	checker := NewCheckerService(testRegistry(t), provider, zap.NewNop())

	scores, err := checker.Check(context.Background(), "there", "I want to buy __MASK__ cars.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(provider.Calls) != 1 {
		t.Fatalf("provider called %d times, want 1", len(provider.Calls))
	}
	call := provider.Calls[0]
	if call.Sentence != "I want to buy [MASK] cars." {
		t.Errorf("provider sentence = %q, want native mask token", call.Sentence)
	}
	if strings.Contains(call.Sentence, domain.GenericMask) {
		t.Error("generic placeholder leaked through to the provider")
	}
	if !reflect.DeepEqual(call.Candidates, []string{"their", "there"}) {
		t.Errorf("candidates = %v, want the token's full confusion set", call.Candidates)
	}

	// Provider order is passed through unmodified.
	if !reflect.DeepEqual(scores, provider.Response) {
		t.Errorf("scores = %v, want provider result as-is", scores)
	}
}

func TestChecker_ProviderErrorPropagates(t *testing.T) {
	provider := mlm.NewMockProvider()
	provider.Err = errors.New("model unavailable")
	checker := NewCheckerService(testRegistry(t), provider, zap.NewNop())

	_, err := checker.Check(context.Background(), "there", "I want to buy __MASK__ cars.")
	if !errors.Is(err, provider.Err) {
		t.Errorf("error = %v, want the provider error unchanged", err)
	}
}

func TestCheckSentence_ChecksOnlyMembers(t *testing.T) {
	provider := mlm.NewMockProvider()
	provider.Response = []domain.ScoredCandidate{{Word: "to", Score: 0.9}}
	checker := NewCheckerService(testRegistry(t), provider, zap.NewNop())

	tokens := []string{"I", "want", "to", "buy", "there", "cars"}
	results, err := checker.CheckSentence(context.Background(), tokens)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 (only member positions)", len(results))
	}
	if results[0].Position != 2 || results[0].Token != "to" {
		t.Errorf("results[0] = %+v, want position 2 token %q", results[0], "to")
	}
	if results[1].Position != 4 || results[1].Token != "there" {
		t.Errorf("results[1] = %+v, want position 4 token %q", results[1], "there")
	}
}

func TestCheckSentence_MasksExactlyOnePosition(t *testing.T) {
	provider := mlm.NewMockProvider()
	checker := NewCheckerService(testRegistry(t), provider, zap.NewNop())

	// "to" occurs twice; each check masks only its own position.
	tokens := []string{"to", "go", "to", "town"}
	_, err := checker.CheckSentence(context.Background(), tokens)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(provider.Calls) != 2 {
		t.Fatalf("provider called %d times, want 2", len(provider.Calls))
	}
	if got := provider.Calls[0].Sentence; got != "[MASK] go to town" {
		t.Errorf("first check masked %q, want only the first occurrence", got)
	}
	if got := provider.Calls[1].Sentence; got != "to go [MASK] town" {
		t.Errorf("second check masked %q, want only the second occurrence", got)
	}
}

func TestCheckSentence_NoMembers(t *testing.T) {
	provider := mlm.NewMockProvider()
	checker := NewCheckerService(testRegistry(t), provider, zap.NewNop())

	results, err := checker.CheckSentence(context.Background(), []string{"nothing", "suspicious", "here"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want none", len(results))
	}
	if len(provider.Calls) != 0 {
		t.Errorf("provider called %d times, want 0", len(provider.Calls))
	}
}
