package mlm

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/zesch/rwse-checker/internal/domain"
)

// ONNXProvider runs a masked-language model locally through ONNX Runtime.
// The score of a candidate is the softmax probability of its token id at
// the mask position. Candidates that tokenize to multiple sub-tokens are
// scored by their first sub-token, mirroring the usual fill-mask fallback
// for out-of-vocabulary targets.
type ONNXProvider struct {
	tk        *tokenizer.Tokenizer
	maskToken string
	maskID    int

	// ONNX Runtime sessions are not documented as reentrant, so runs are
	// serialized here.
	mu      sync.Mutex
	session *ort.DynamicAdvancedSession
}

func NewONNXProvider(libraryPath, modelPath, tokenizerPath, maskToken string) (*ONNXProvider, error) {
	if maskToken == "" {
		maskToken = defaultMaskToken
	}

	if !ort.IsInitialized() {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}

	tk, err := pretrained.FromFile(tokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}

	maskID, ok := tk.TokenToId(maskToken)
	if !ok {
		return nil, fmt.Errorf("tokenizer has no id for mask token %q; the model does not support fill-mask", maskToken)
	}

	session, err := ort.NewDynamicAdvancedSession(modelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"logits"}, nil)
	if err != nil {
		return nil, fmt.Errorf("open onnx session: %w", err)
	}

	return &ONNXProvider{
		tk:        tk,
		maskToken: maskToken,
		maskID:    maskID,
		session:   session,
	}, nil
}

func (p *ONNXProvider) MaskToken() string {
	return p.maskToken
}

// Close releases the ONNX Runtime session.
func (p *ONNXProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil {
		return nil
	}
	err := p.session.Destroy()
	p.session = nil
	return err
}

func (p *ONNXProvider) Score(ctx context.Context, maskedSentence string, candidates []string) ([]domain.ScoredCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	encoding, err := p.tk.EncodeSingle(maskedSentence, true)
	if err != nil {
		return nil, fmt.Errorf("encode sentence: %w", err)
	}

	maskPos := -1
	for i, id := range encoding.Ids {
		if id == p.maskID {
			maskPos = i
			break
		}
	}
	if maskPos < 0 {
		return nil, fmt.Errorf("mask token %q lost during tokenization", p.maskToken)
	}

	probs, err := p.maskProbabilities(encoding.Ids, maskPos)
	if err != nil {
		return nil, err
	}

	scores := make([]domain.ScoredCandidate, 0, len(candidates))
	for _, cand := range candidates {
		scores = append(scores, domain.ScoredCandidate{
			Word:  cand,
			Score: p.candidateScore(probs, cand),
		})
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })
	return scores, nil
}

// maskProbabilities runs the model and returns the softmax over the
// vocabulary at the mask position.
func (p *ONNXProvider) maskProbabilities(ids []int, maskPos int) ([]float64, error) {
	seqLen := len(ids)
	inputIDs := make([]int64, seqLen)
	attention := make([]int64, seqLen)
	tokenTypes := make([]int64, seqLen)
	for i, id := range ids {
		inputIDs[i] = int64(id)
		attention[i] = 1
	}

	shape := ort.NewShape(1, int64(seqLen))
	idsTensor, err := ort.NewTensor(shape, inputIDs)
	if err != nil {
		return nil, fmt.Errorf("create input_ids tensor: %w", err)
	}
	defer func() { _ = idsTensor.Destroy() }()

	attTensor, err := ort.NewTensor(shape, attention)
	if err != nil {
		return nil, fmt.Errorf("create attention_mask tensor: %w", err)
	}
	defer func() { _ = attTensor.Destroy() }()

	typeTensor, err := ort.NewTensor(shape, tokenTypes)
	if err != nil {
		return nil, fmt.Errorf("create token_type_ids tensor: %w", err)
	}
	defer func() { _ = typeTensor.Destroy() }()

	outputs := []ort.Value{nil}
	p.mu.Lock()
	if p.session == nil {
		p.mu.Unlock()
		return nil, fmt.Errorf("onnx provider is closed")
	}
	err = p.session.Run([]ort.Value{idsTensor, attTensor, typeTensor}, outputs)
	p.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("run onnx session: %w", err)
	}

	logits, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected logits tensor type %T", outputs[0])
	}
	defer func() { _ = logits.Destroy() }()

	dims := logits.GetShape()
	vocabSize := int(dims[len(dims)-1])
	data := logits.GetData()
	if len(data) < (maskPos+1)*vocabSize {
		return nil, fmt.Errorf("logits shorter than expected: %d values for position %d", len(data), maskPos)
	}

	return softmax(data[maskPos*vocabSize : (maskPos+1)*vocabSize]), nil
}

func (p *ONNXProvider) candidateScore(probs []float64, candidate string) float64 {
	id, ok := p.tk.TokenToId(candidate)
	if !ok {
		sub, err := p.tk.EncodeSingle(candidate)
		if err != nil || len(sub.Ids) == 0 {
			return 0
		}
		id = sub.Ids[0]
	}
	if id < 0 || id >= len(probs) {
		return 0
	}
	return probs[id]
}

func softmax(logits []float32) []float64 {
	max := float64(logits[0])
	for _, v := range logits[1:] {
		if float64(v) > max {
			max = float64(v)
		}
	}
	var sum float64
	out := make([]float64, len(logits))
	for i, v := range logits {
		out[i] = math.Exp(float64(v) - max)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
