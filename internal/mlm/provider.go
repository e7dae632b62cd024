package mlm

import (
	"fmt"

	"github.com/zesch/rwse-checker/internal/domain"
)

// Provider constants
const (
	ProviderHF   = "hf"
	ProviderONNX = "onnx"
	ProviderMock = "mock"
)

// Options configures provider construction. Only the fields for the
// selected provider are consulted.
type Options struct {
	Provider string

	// MaskToken is the model's native mask placeholder, e.g. "[MASK]" for
	// BERT-style models or "<mask>" for RoBERTa-style models.
	MaskToken string

	// hf
	HFAPIKey string
	HFModel  string

	// onnx
	ONNXLibraryPath   string
	ONNXModelPath     string
	ONNXTokenizerPath string
}

// NewProvider creates a masked-score provider based on opts.Provider.
// Returns an error if the provider is unknown or misconfigured.
func NewProvider(opts Options) (domain.ScoreProvider, error) {
	switch opts.Provider {
	case ProviderHF:
		if opts.HFAPIKey == "" {
			return nil, fmt.Errorf("HF_API_KEY is required for the hf provider")
		}
		return NewHFClient(opts.HFAPIKey, opts.HFModel, opts.MaskToken), nil

	case ProviderONNX:
		if opts.ONNXModelPath == "" || opts.ONNXTokenizerPath == "" {
			return nil, fmt.Errorf("ONNX_MODEL_PATH and ONNX_TOKENIZER_PATH are required for the onnx provider")
		}
		return NewONNXProvider(opts.ONNXLibraryPath, opts.ONNXModelPath, opts.ONNXTokenizerPath, opts.MaskToken)

	case ProviderMock:
		return NewMockProvider(), nil

	default:
		return nil, fmt.Errorf("unknown score provider: %s (valid options: hf, onnx, mock)", opts.Provider)
	}
}
