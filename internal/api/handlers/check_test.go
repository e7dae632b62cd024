package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zesch/rwse-checker/internal/domain"
	"github.com/zesch/rwse-checker/internal/mlm"
	"github.com/zesch/rwse-checker/internal/registry"
	"github.com/zesch/rwse-checker/internal/service"
)

func newTestRouter(t *testing.T, provider *mlm.MockProvider) *chi.Mux {
	t.Helper()

	reg, err := registry.New([][]string{
		{"their", "there"},
		{"to", "too", "two"},
	})
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}

	logger := zap.NewNop()
	checker := service.NewCheckerService(reg, provider, logger)
	corrector := service.NewCorrectorService(checker, logger)

	checkHandler := NewCheckHandler(checker, corrector)
	setsHandler := NewConfusionSetHandler(reg)

	r := chi.NewRouter()
	r.Post("/v1/check", checkHandler.Check)
	r.Post("/v1/check-sentence", checkHandler.CheckSentence)
	r.Post("/v1/correct", checkHandler.Correct)
	r.Get("/v1/confusion-sets/stats", setsHandler.Stats)
	r.Get("/v1/confusion-sets/{word}", setsHandler.GetByWord)
	return r
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCorrectEndpoint_Substitution(t *testing.T) {
	provider := mlm.NewMockProvider()
	provider.Response = []domain.ScoredCandidate{
		{Word: "their", Score: 0.50},
		{Word: "there", Score: 0.01},
	}
	router := newTestRouter(t, provider)

	rec := doRequest(t, router, http.MethodPost, "/v1/correct",
		`{"token":"there","sentence":"I want to buy __MASK__ cars."}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var decision domain.CorrectionDecision
	if err := json.Unmarshal(rec.Body.Bytes(), &decision); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if decision.Chosen != "their" {
		t.Errorf("chosen = %q, want %q", decision.Chosen, "their")
	}
	if decision.Certainty == nil || *decision.Certainty < 49.9 || *decision.Certainty > 50.1 {
		t.Errorf("certainty = %v, want ~50", decision.Certainty)
	}
}

func TestCorrectEndpoint_MissingPlaceholder(t *testing.T) {
	router := newTestRouter(t, mlm.NewMockProvider())

	rec := doRequest(t, router, http.MethodPost, "/v1/correct",
		`{"token":"there","sentence":"no mask in sight"}`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestCorrectEndpoint_ProviderFailure(t *testing.T) {
	provider := mlm.NewMockProvider()
	provider.Err = http.ErrHandlerTimeout
	router := newTestRouter(t, provider)

	rec := doRequest(t, router, http.MethodPost, "/v1/correct",
		`{"token":"there","sentence":"I want to buy __MASK__ cars."}`)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestCheckEndpoint_NonMember(t *testing.T) {
	provider := mlm.NewMockProvider()
	router := newTestRouter(t, provider)

	rec := doRequest(t, router, http.MethodPost, "/v1/check",
		`{"token":"banana","sentence":"I want to buy __MASK__ cars."}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp checkResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.InConfusionSet {
		t.Error("banana must not be in a confusion set")
	}
	if len(resp.Candidates) != 0 {
		t.Errorf("got %d candidates for a non-member, want 0", len(resp.Candidates))
	}
	if len(provider.Calls) != 0 {
		t.Errorf("provider called %d times, want 0", len(provider.Calls))
	}
}

func TestCheckEndpoint_ValidatesInput(t *testing.T) {
	router := newTestRouter(t, mlm.NewMockProvider())

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"missing token", `{"sentence":"__MASK__"}`},
		{"missing sentence", `{"token":"there"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodPost, "/v1/check", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestCheckSentenceEndpoint(t *testing.T) {
	provider := mlm.NewMockProvider()
	provider.Response = []domain.ScoredCandidate{{Word: "to", Score: 0.9}}
	router := newTestRouter(t, provider)

	rec := doRequest(t, router, http.MethodPost, "/v1/check-sentence",
		`{"tokens":["I","want","to","buy","there","cars"]}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp checkSentenceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(resp.Results))
	}
	if resp.Results[0].Position != 2 || resp.Results[1].Position != 4 {
		t.Errorf("positions = %d,%d, want 2,4",
			resp.Results[0].Position, resp.Results[1].Position)
	}
}

func TestConfusionSetEndpoint(t *testing.T) {
	router := newTestRouter(t, mlm.NewMockProvider())

	rec := doRequest(t, router, http.MethodGet, "/v1/confusion-sets/too", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp confusionSetResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Members) != 3 {
		t.Errorf("members = %v, want the full set", resp.Members)
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/confusion-sets/banana", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for unknown word", rec.Code)
	}
}

func TestConfusionSetStatsEndpoint(t *testing.T) {
	router := newTestRouter(t, mlm.NewMockProvider())

	rec := doRequest(t, router, http.MethodGet, "/v1/confusion-sets/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp registryStatsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Words != 5 || resp.Groups != 2 {
		t.Errorf("stats = %+v, want 5 words in 2 groups", resp)
	}
}
