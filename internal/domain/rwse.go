package domain

// GenericMask is the model-independent placeholder callers embed in
// sentences. It is translated to the active provider's native mask token
// exactly once per check, just before delegation.
const GenericMask = "__MASK__"

// ScoredCandidate pairs a confusion-set member with the likelihood the
// model assigned to it at the masked position. Scores are non-negative and
// comparable across candidates of one call, but are not required to sum
// to 1.
type ScoredCandidate struct {
	Word  string  `json:"word"`
	Score float64 `json:"score"`
}

// CorrectionDecision is the outcome of evaluating one token at one masked
// position. Chosen equals Original unless a substitution was justified.
// Certainty is the likelihood ratio of the chosen candidate over the
// original token; it is nil when no comparison was possible (token not in
// any confusion set, or its own score absent from the provider results).
type CorrectionDecision struct {
	Original   string            `json:"original"`
	Chosen     string            `json:"chosen"`
	Certainty  *float64          `json:"certainty,omitempty"`
	Candidates []ScoredCandidate `json:"candidates"`
}

// Changed reports whether the decision substitutes the original token.
func (d *CorrectionDecision) Changed() bool {
	return d.Chosen != d.Original
}

// SentenceCheck is the per-position result of checking a tokenized
// sentence. Position indexes into the caller's token slice; tokens outside
// every confusion set produce no SentenceCheck, so callers correlate by
// Position, never by output ordinal.
type SentenceCheck struct {
	Position   int               `json:"position"`
	Token      string            `json:"token"`
	Candidates []ScoredCandidate `json:"candidates"`
}
