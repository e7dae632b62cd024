package domain

import "context"

// ScoreProvider scores candidate words at the single masked position of a
// sentence. It is the only suspension point in a check: it may block on
// network or local model inference. Implementations are stateless from the
// caller's point of view and must be safe for concurrent use. Retry and
// timeout policy, if any, belongs to the implementation, not the caller.
type ScoreProvider interface {
	// Score returns one entry per input candidate, carrying the candidate
	// word and its likelihood at the masked position. The sentence already
	// contains the provider's native mask token. Entries are returned in
	// the order the provider ranks them, conventionally descending by
	// score.
	Score(ctx context.Context, maskedSentence string, candidates []string) ([]ScoredCandidate, error)

	// MaskToken is the provider's native mask placeholder, e.g. "[MASK]".
	MaskToken() string
}

// GroupSource lists confusion-set groups from external storage.
type GroupSource interface {
	ListGroups(ctx context.Context) ([][]string, error)
}
