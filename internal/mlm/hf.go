package mlm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/zesch/rwse-checker/internal/domain"
)

const (
	hfInferenceBaseURL = "https://api-inference.huggingface.co/models"
	defaultHFModel     = "bert-base-uncased"
	defaultMaskToken   = "[MASK]"
)

// HFClient scores candidates through the Hugging Face Inference API
// fill-mask task, restricted to the supplied targets.
type HFClient struct {
	apiKey     string
	model      string
	maskToken  string
	baseURL    string
	httpClient *http.Client
}

func NewHFClient(apiKey, model, maskToken string) *HFClient {
	if model == "" {
		model = defaultHFModel
	}
	if maskToken == "" {
		maskToken = defaultMaskToken
	}
	return &HFClient{
		apiKey:     apiKey,
		model:      model,
		maskToken:  maskToken,
		baseURL:    hfInferenceBaseURL,
		httpClient: &http.Client{},
	}
}

type fillMaskRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters fillMaskParameters `json:"parameters"`
	Options    fillMaskOptions    `json:"options"`
}

type fillMaskParameters struct {
	Targets []string `json:"targets"`
}

type fillMaskOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

type fillMaskPrediction struct {
	TokenStr string  `json:"token_str"`
	Score    float64 `json:"score"`
}

type fillMaskError struct {
	Error string `json:"error"`
}

func (c *HFClient) MaskToken() string {
	return c.maskToken
}

// Score calls the fill-mask endpoint for the configured model. Predictions
// come back sorted by descending score; that order is preserved.
func (c *HFClient) Score(ctx context.Context, maskedSentence string, candidates []string) ([]domain.ScoredCandidate, error) {
	body, err := json.Marshal(fillMaskRequest{
		Inputs:     maskedSentence,
		Parameters: fillMaskParameters{Targets: candidates},
		Options:    fillMaskOptions{WaitForModel: true},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal fill-mask request: %w", err)
	}

	url := c.baseURL + "/" + c.model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create fill-mask request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fill-mask request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read fill-mask response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr fillMaskError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("fill-mask API error: %s", apiErr.Error)
		}
		return nil, fmt.Errorf("fill-mask API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var predictions []fillMaskPrediction
	if err := json.Unmarshal(respBody, &predictions); err != nil {
		return nil, fmt.Errorf("unmarshal fill-mask response: %w", err)
	}

	scores := make([]domain.ScoredCandidate, 0, len(predictions))
	for _, p := range predictions {
		// Some models return sub-token strings with surrounding whitespace.
		scores = append(scores, domain.ScoredCandidate{
			Word:  strings.TrimSpace(p.TokenStr),
			Score: p.Score,
		})
	}
	return scores, nil
}
