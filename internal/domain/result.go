package domain

import "time"

// ScoringResult is the structured, explainable outcome of one scoring run.
// It is computed fresh per input text; identical inputs always produce an
// identical result, so the struct deliberately carries no timing fields.
type ScoringResult struct {
	Detector       string              `json:"detector"`
	CategoryScores map[string]float64  `json:"category_scores"`
	MatchedTerms   map[string][]string `json:"matched_terms"`
	SignalsFired   []string            `json:"signals_fired,omitempty"`
	AggregateScore float64             `json:"aggregate_score"`
	Classification string              `json:"classification"`
	Confidence     float64             `json:"confidence"`
	Sensitivity    float64             `json:"sensitivity"`
	EmptyInput     bool                `json:"empty_input,omitempty"`
}

// TopCategory returns the highest-scoring category and its score.
func (r *ScoringResult) TopCategory() (string, float64) {
	var name string
	var best float64
	for cat, score := range r.CategoryScores {
		if score > best || (score == best && (name == "" || cat < name)) {
			name = cat
			best = score
		}
	}
	return name, best
}

// ScoreRecord is the audit-trail row persisted per scoring invocation.
// The input text itself is not stored, only its length.
type ScoreRecord struct {
	ID               int64     `db:"id"                 json:"id"`
	Detector         string    `db:"detector"           json:"detector"`
	TextLength       int       `db:"text_length"        json:"text_length"`
	AggregateScore   float64   `db:"aggregate_score"    json:"aggregate_score"`
	Classification   string    `db:"classification"     json:"classification"`
	Confidence       float64   `db:"confidence"         json:"confidence"`
	Sensitivity      float64   `db:"sensitivity"        json:"sensitivity"`
	EmptyInput       bool      `db:"empty_input"        json:"empty_input"`
	ProcessingTimeMs int64     `db:"processing_time_ms" json:"processing_time_ms"`
	ScoredAt         time.Time `db:"scored_at"          json:"scored_at"`
}

// StoredProfile is the database row form of a DetectorProfile.
// Categories, signals and cutoffs are kept as JSON documents.
type StoredProfile struct {
	ID          int       `db:"id"          json:"id"`
	Name        string    `db:"name"        json:"name"`
	Description string    `db:"description" json:"description,omitempty"`
	Combine     string    `db:"combine"     json:"combine"`
	Categories  []byte    `db:"categories"  json:"-"`
	Signals     []byte    `db:"signals"     json:"-"`
	Cutoffs     []byte    `db:"cutoffs"     json:"-"`
	Sensitivity []byte    `db:"sensitivity" json:"-"`
	Enabled     bool      `db:"enabled"     json:"enabled"`
	CreatedAt   time.Time `db:"created_at"  json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"  json:"updated_at"`
}
