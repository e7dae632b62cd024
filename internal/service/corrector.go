package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/zesch/rwse-checker/internal/domain"
)

// DefaultMagnitude is the certainty threshold multiplier applied when a
// caller does not specify one.
const DefaultMagnitude = 10

// CorrectorService turns a checker result into a single keep-or-substitute
// decision.
type CorrectorService struct {
	checker *CheckerService
	logger  *zap.Logger
}

func NewCorrectorService(checker *CheckerService, logger *zap.Logger) *CorrectorService {
	return &CorrectorService{
		checker: checker,
		logger:  logger,
	}
}

// Correct checks token against its confusion set and decides whether a
// different member is substantially more likely at the masked position.
// An alternative qualifies when its score exceeds
// min(selfScore*magnitude, 1.0); the highest-scoring qualifier wins, ties
// keeping the first in provider order. The reported certainty is the
// likelihood ratio candidateScore/selfScore.
//
// A magnitude <= 0 degenerates the threshold so that every candidate with
// a positive score qualifies; that is a direct consequence of the formula
// and is not special-cased.
func (s *CorrectorService) Correct(ctx context.Context, token, sentence string, magnitude float64) (*domain.CorrectionDecision, error) {
	results, err := s.checker.Check(ctx, token, sentence)
	if err != nil {
		return nil, err
	}

	decision := &domain.CorrectionDecision{
		Original:   token,
		Chosen:     token,
		Candidates: results,
	}
	if len(results) == 0 {
		return decision, nil
	}

	selfScore, found := findScore(results, token)
	if !found {
		// No basis for comparison when the provider did not score the
		// original token itself.
		s.logger.Debug("original token absent from provider results",
			zap.String("token", token))
		return decision, nil
	}

	threshold := selfScore * magnitude
	if threshold > 1.0 {
		threshold = 1.0
	}

	var best domain.ScoredCandidate
	haveBest := false
	for _, r := range results {
		if r.Word == token || r.Score <= threshold {
			continue
		}
		// Strict > keeps the first qualifier on score ties.
		if !haveBest || r.Score > best.Score {
			best = r
			haveBest = true
		}
	}
	if !haveBest {
		return decision, nil
	}

	decision.Chosen = best.Word
	if selfScore > 0 {
		certainty := best.Score / selfScore
		decision.Certainty = &certainty
	}

	s.logger.Debug("substitution suggested",
		zap.String("original", token),
		zap.String("chosen", best.Word),
		zap.Float64("score", best.Score),
		zap.Float64("self_score", selfScore),
		zap.Float64("threshold", threshold))
	return decision, nil
}

func findScore(results []domain.ScoredCandidate, word string) (float64, bool) {
	for _, r := range results {
		if r.Word == word {
			return r.Score, true
		}
	}
	return 0, false
}
