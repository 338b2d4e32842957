package api

import (
	"github.com/lexiscan/lexiscan/internal/domain"
	"github.com/lexiscan/lexiscan/internal/processor"
)

// ScoreRequest represents a single scoring request. Sensitivity is a
// pointer so "not supplied" is distinguishable from an explicit 0.
type ScoreRequest struct {
	Detector    string   `binding:"required" json:"detector"`
	Text        string   `json:"text"`
	Sensitivity *float64 `json:"sensitivity,omitempty"`
}

// ScoreResponse represents a scoring response.
type ScoreResponse struct {
	Result *domain.ScoringResult `json:"result"`
	Error  string                `json:"error,omitempty"`
}

// BatchScoreRequest represents a batch scoring request.
type BatchScoreRequest struct {
	Detector    string   `binding:"required"              json:"detector"`
	Texts       []string `binding:"required,min=1,max=100" json:"texts"`
	Sensitivity *float64 `json:"sensitivity,omitempty"`
}

// BatchScoreResponse represents a batch scoring response. Results are
// index-aligned with the request texts.
type BatchScoreResponse struct {
	Results []*processor.ProcessResult `json:"results"`
	Total   int                        `json:"total"`
}

// DetectorResponse summarizes one registered detector.
type DetectorResponse struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Combine     string   `json:"combine"`
	Categories  []string `json:"categories"`
	Labels      []string `json:"labels"`
}

// DetectorsListResponse lists all registered detectors.
type DetectorsListResponse struct {
	Detectors []DetectorResponse `json:"detectors"`
	Total     int                `json:"total"`
}

func toDetectorResponse(p *domain.DetectorProfile) DetectorResponse {
	categories := make([]string, len(p.Categories))
	for i := range p.Categories {
		categories[i] = p.Categories[i].Name
	}
	labels := make([]string, len(p.Cutoffs))
	for i := range p.Cutoffs {
		labels[i] = p.Cutoffs[i].Label
	}
	return DetectorResponse{
		Name:        p.Name,
		Description: p.Description,
		Combine:     string(p.Combine),
		Categories:  categories,
		Labels:      labels,
	}
}
