package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zesch/rwse-checker/internal/registry"
)

type ConfusionSetHandler struct {
	registry *registry.Registry
}

func NewConfusionSetHandler(reg *registry.Registry) *ConfusionSetHandler {
	return &ConfusionSetHandler{registry: reg}
}

type confusionSetResponse struct {
	Word    string   `json:"word"`
	Members []string `json:"members"`
}

type registryStatsResponse struct {
	Words  int `json:"words"`
	Groups int `json:"groups"`
}

// GetByWord returns the full confusion set containing the word.
func (h *ConfusionSetHandler) GetByWord(w http.ResponseWriter, r *http.Request) {
	word := chi.URLParam(r, "word")

	members, err := h.registry.CandidatesFor(word)
	if err != nil {
		if errors.Is(err, registry.ErrUnknownWord) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to look up confusion set")
		return
	}

	writeJSON(w, http.StatusOK, confusionSetResponse{
		Word:    word,
		Members: members,
	})
}

// Stats returns registry-wide counts.
func (h *ConfusionSetHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, registryStatsResponse{
		Words:  h.registry.WordCount(),
		Groups: h.registry.GroupCount(),
	})
}
