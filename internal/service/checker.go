package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/zesch/rwse-checker/internal/domain"
	"github.com/zesch/rwse-checker/internal/registry"
)

var ErrMissingMaskPlaceholder = errors.New("sentence must contain the __MASK__ placeholder")

// CheckerService decides whether a token is worth scoring at all and, if
// so, delegates to the score provider with the token's full confusion set.
type CheckerService struct {
	registry *registry.Registry
	provider domain.ScoreProvider
	logger   *zap.Logger
}

func NewCheckerService(reg *registry.Registry, provider domain.ScoreProvider, logger *zap.Logger) *CheckerService {
	return &CheckerService{
		registry: reg,
		provider: provider,
		logger:   logger,
	}
}

// InConfusionSet reports whether token belongs to some confusion set.
// Exposed so callers can see what would be checked without paying for the
// provider call.
func (s *CheckerService) InConfusionSet(token string) bool {
	return s.registry.Contains(token)
}

// Check scores every member of token's confusion set at the masked
// position of sentence. A token outside every confusion set returns
// (nil, nil) without invoking the provider; that is the "nothing to check"
// outcome, not an error. The sentence must carry the generic __MASK__
// placeholder, which is translated to the provider's native mask token
// once before delegation. Provider results are returned in provider order,
// unmodified; provider failures propagate unchanged.
func (s *CheckerService) Check(ctx context.Context, token, sentence string) ([]domain.ScoredCandidate, error) {
	if !s.registry.Contains(token) {
		s.logger.Debug("token not in any confusion set, skipping provider",
			zap.String("token", token))
		return nil, nil
	}

	if !strings.Contains(sentence, domain.GenericMask) {
		return nil, ErrMissingMaskPlaceholder
	}

	candidates, err := s.registry.CandidatesFor(token)
	if err != nil {
		return nil, err
	}

	masked := strings.ReplaceAll(sentence, domain.GenericMask, s.provider.MaskToken())

	scores, err := s.provider.Score(ctx, masked, candidates)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("scored candidates",
		zap.String("token", token),
		zap.Int("candidates", len(scores)))
	return scores, nil
}

// CheckSentence checks every confusion-set member of a tokenized sentence,
// masking exactly one position per check and leaving all other tokens
// as-is. Positions outside every confusion set are skipped; each result
// carries its source index in Position so callers correlate by index.
func (s *CheckerService) CheckSentence(ctx context.Context, tokens []string) ([]domain.SentenceCheck, error) {
	var results []domain.SentenceCheck
	for i, token := range tokens {
		if !s.registry.Contains(token) {
			continue
		}

		scores, err := s.Check(ctx, token, maskPosition(tokens, i))
		if err != nil {
			return nil, fmt.Errorf("position %d: %w", i, err)
		}
		results = append(results, domain.SentenceCheck{
			Position:   i,
			Token:      token,
			Candidates: scores,
		})
	}
	return results, nil
}

func maskPosition(tokens []string, i int) string {
	parts := make([]string, len(tokens))
	copy(parts, tokens)
	parts[i] = domain.GenericMask
	return strings.Join(parts, " ")
}
