package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/lexiscan/lexiscan/internal/detector"
	"github.com/lexiscan/lexiscan/internal/domain"
	"github.com/lexiscan/lexiscan/internal/processor"
)

// mockLogger implements Logger for testing
type mockLogger struct{}

func (mockLogger) Debug(string, ...any) {}
func (mockLogger) Info(string, ...any)  {}
func (mockLogger) Warn(string, ...any)  {}
func (mockLogger) Error(string, ...any) {}

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	registry, err := detector.NewRegistry(nil, nil, detector.Builtin()...)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	bp := processor.NewBatchProcessor(registry, 4, mockLogger{}, nil)
	handler := NewHandler(registry, bp, nil, nil, mockLogger{}, "lexiscan", "test")

	router := gin.New()
	SetupRoutes(router, handler, nil)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestScoreEndpoint(t *testing.T) {
	router := testRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/score", ScoreRequest{
		Detector: "spam",
		Text:     "WINNER!!! Claim your FREE cash prize $500 now, limited time offer!!!",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp ScoreResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Result == nil {
		t.Fatal("response has no result")
	}
	if resp.Result.Detector != "spam" {
		t.Errorf("detector = %q, want spam", resp.Result.Detector)
	}
	if resp.Result.Classification != detector.LabelSpam {
		t.Errorf("classification = %q (score %v), want spam",
			resp.Result.Classification, resp.Result.AggregateScore)
	}
	if len(resp.Result.MatchedTerms) == 0 {
		t.Error("result has no matched terms")
	}
}

func TestScoreEndpoint_EmptyText(t *testing.T) {
	router := testRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/score", ScoreRequest{
		Detector: "spam",
		Text:     "",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp ScoreResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Result.EmptyInput {
		t.Error("EmptyInput = false, want true")
	}
	if resp.Result.Classification != detector.LabelHam {
		t.Errorf("classification = %q, want ham", resp.Result.Classification)
	}
}

func TestScoreEndpoint_UnknownDetector(t *testing.T) {
	router := testRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/score", ScoreRequest{
		Detector: "nope",
		Text:     "anything",
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestScoreEndpoint_InvalidBody(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/score", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestScoreBatchEndpoint(t *testing.T) {
	router := testRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/score/batch", BatchScoreRequest{
		Detector: "urgency",
		Texts: []string{
			"URGENT: server down, respond ASAP!!",
			"Lunch on thursday?",
		},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp BatchScoreResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 2 || len(resp.Results) != 2 {
		t.Fatalf("total = %d, results = %d, want 2/2", resp.Total, len(resp.Results))
	}
	if resp.Results[0].Index != 0 || resp.Results[1].Index != 1 {
		t.Error("results not in input order")
	}
	first := resp.Results[0].Result
	second := resp.Results[1].Result
	if first.AggregateScore <= second.AggregateScore {
		t.Errorf("urgent text scored %v, casual text %v; expected urgent higher",
			first.AggregateScore, second.AggregateScore)
	}
}

func TestScoreBatchEndpoint_EmptyTexts(t *testing.T) {
	router := testRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/score/batch", BatchScoreRequest{
		Detector: "spam",
		Texts:    []string{},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for empty batch", w.Code)
	}
}

func TestListDetectorsEndpoint(t *testing.T) {
	router := testRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/detectors", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp DetectorsListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 6 {
		t.Errorf("total = %d, want 6 builtin detectors", resp.Total)
	}
	if resp.Detectors[0].Name != "authenticity" {
		t.Errorf("first detector = %q, want authenticity (sorted)", resp.Detectors[0].Name)
	}
}

func TestGetDetectorEndpoint(t *testing.T) {
	router := testRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/detectors/toxicity", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var profile domain.DetectorProfile
	if err := json.Unmarshal(w.Body.Bytes(), &profile); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if profile.Name != "toxicity" || len(profile.Categories) == 0 {
		t.Errorf("unexpected profile: %+v", profile)
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/detectors/absent", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestProfileEndpointsWithoutStorage(t *testing.T) {
	router := testRouter(t)

	profile := domain.DetectorProfile{
		Name:    "custom",
		Combine: domain.CombineMax,
		Categories: []domain.IndicatorCategory{
			{Name: "c", Terms: []string{"x"}},
		},
		Cutoffs: []domain.Cutoff{{LowerBound: 0, Label: "any"}},
	}

	w := doJSON(t, router, http.MethodPost, "/api/v1/profiles", profile)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("create status = %d, want 503 without storage", w.Code)
	}

	w = doJSON(t, router, http.MethodDelete, "/api/v1/profiles/custom", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("delete status = %d, want 503 without storage", w.Code)
	}
}

func TestHealthAndReady(t *testing.T) {
	router := testRouter(t)

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Errorf("health status = %d", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/ready", nil)
	if w.Code != http.StatusOK {
		t.Errorf("ready status = %d", w.Code)
	}
}
