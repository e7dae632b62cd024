package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/zesch/rwse-checker/internal/domain"
	"github.com/zesch/rwse-checker/internal/service"
)

type CheckHandler struct {
	checker   *service.CheckerService
	corrector *service.CorrectorService
}

func NewCheckHandler(checker *service.CheckerService, corrector *service.CorrectorService) *CheckHandler {
	return &CheckHandler{checker: checker, corrector: corrector}
}

type checkRequest struct {
	Token    string `json:"token"`
	Sentence string `json:"sentence"`
}

type checkResponse struct {
	Token          string                   `json:"token"`
	InConfusionSet bool                     `json:"in_confusion_set"`
	Candidates     []domain.ScoredCandidate `json:"candidates"`
}

func (h *CheckHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Token == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}
	if req.Sentence == "" {
		writeError(w, http.StatusBadRequest, "sentence is required")
		return
	}

	candidates, err := h.checker.Check(r.Context(), req.Token, req.Sentence)
	if err != nil {
		if errors.Is(err, service.ErrMissingMaskPlaceholder) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusBadGateway, "score provider failed")
		return
	}

	if candidates == nil {
		candidates = []domain.ScoredCandidate{}
	}
	writeJSON(w, http.StatusOK, checkResponse{
		Token:          req.Token,
		InConfusionSet: h.checker.InConfusionSet(req.Token),
		Candidates:     candidates,
	})
}

type checkSentenceRequest struct {
	Tokens []string `json:"tokens"`
}

type checkSentenceResponse struct {
	Results []domain.SentenceCheck `json:"results"`
}

func (h *CheckHandler) CheckSentence(w http.ResponseWriter, r *http.Request) {
	var req checkSentenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Tokens) == 0 {
		writeError(w, http.StatusBadRequest, "tokens are required")
		return
	}

	results, err := h.checker.CheckSentence(r.Context(), req.Tokens)
	if err != nil {
		writeError(w, http.StatusBadGateway, "score provider failed")
		return
	}

	if results == nil {
		results = []domain.SentenceCheck{}
	}
	writeJSON(w, http.StatusOK, checkSentenceResponse{Results: results})
}

type correctRequest struct {
	Token     string   `json:"token"`
	Sentence  string   `json:"sentence"`
	Magnitude *float64 `json:"magnitude,omitempty"`
}

func (h *CheckHandler) Correct(w http.ResponseWriter, r *http.Request) {
	var req correctRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Token == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}
	if req.Sentence == "" {
		writeError(w, http.StatusBadRequest, "sentence is required")
		return
	}

	magnitude := float64(service.DefaultMagnitude)
	if req.Magnitude != nil {
		magnitude = *req.Magnitude
	}

	decision, err := h.corrector.Correct(r.Context(), req.Token, req.Sentence, magnitude)
	if err != nil {
		if errors.Is(err, service.ErrMissingMaskPlaceholder) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusBadGateway, "score provider failed")
		return
	}

	if decision.Candidates == nil {
		decision.Candidates = []domain.ScoredCandidate{}
	}
	writeJSON(w, http.StatusOK, decision)
}
