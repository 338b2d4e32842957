package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/lexiscan/lexiscan/internal/domain"
)

// HistoryRepository handles database operations for the scoring audit trail.
type HistoryRepository struct {
	db *sqlx.DB
}

// NewHistoryRepository creates a new history repository.
func NewHistoryRepository(db *sqlx.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// ScoringStats represents aggregate statistics over the scoring history.
type ScoringStats struct {
	TotalScored         int            `json:"total_scored"`
	AvgAggregateScore   float64        `json:"avg_aggregate_score"`
	AvgProcessingTimeMs float64        `json:"avg_processing_time_ms"`
	EmptyInputs         int            `json:"empty_inputs"`
	Labels              map[string]int `json:"labels"`
	Detectors           map[string]int `json:"detectors"`
}

// Create inserts a new scoring record.
func (r *HistoryRepository) Create(ctx context.Context, record *domain.ScoreRecord) error {
	if record.ScoredAt.IsZero() {
		record.ScoredAt = time.Now().UTC()
	}

	query := r.db.Rebind(`
		INSERT INTO scoring_history
			(detector, text_length, aggregate_score, classification, confidence, sensitivity, empty_input, processing_time_ms, scored_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := r.db.ExecContext(
		ctx,
		query,
		record.Detector,
		record.TextLength,
		record.AggregateScore,
		record.Classification,
		record.Confidence,
		record.Sensitivity,
		record.EmptyInput,
		record.ProcessingTimeMs,
		record.ScoredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create scoring record: %w", err)
	}
	return nil
}

// Recent retrieves the most recent scoring records, newest first.
func (r *HistoryRepository) Recent(ctx context.Context, detector string, limit int) ([]*domain.ScoreRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	var records []*domain.ScoreRecord
	var err error
	if detector != "" {
		query := r.db.Rebind(`
			SELECT id, detector, text_length, aggregate_score, classification, confidence, sensitivity, empty_input, processing_time_ms, scored_at
			FROM scoring_history
			WHERE detector = ?
			ORDER BY scored_at DESC, id DESC
			LIMIT ?
		`)
		err = r.db.SelectContext(ctx, &records, query, detector, limit)
	} else {
		query := r.db.Rebind(`
			SELECT id, detector, text_length, aggregate_score, classification, confidence, sensitivity, empty_input, processing_time_ms, scored_at
			FROM scoring_history
			ORDER BY scored_at DESC, id DESC
			LIMIT ?
		`)
		err = r.db.SelectContext(ctx, &records, query, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list scoring records: %w", err)
	}
	return records, nil
}

// Stats computes aggregate statistics over the scoring history.
func (r *HistoryRepository) Stats(ctx context.Context) (*ScoringStats, error) {
	stats := &ScoringStats{
		Labels:    make(map[string]int),
		Detectors: make(map[string]int),
	}

	var totals struct {
		Total       int     `db:"total"`
		AvgScore    float64 `db:"avg_score"`
		AvgTime     float64 `db:"avg_time"`
		EmptyInputs int     `db:"empty_inputs"`
	}
	err := r.db.GetContext(ctx, &totals, `
		SELECT COUNT(*) AS total,
		       COALESCE(AVG(aggregate_score), 0) AS avg_score,
		       COALESCE(AVG(processing_time_ms), 0) AS avg_time,
		       COALESCE(SUM(CASE WHEN empty_input THEN 1 ELSE 0 END), 0) AS empty_inputs
		FROM scoring_history
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to compute scoring totals: %w", err)
	}
	stats.TotalScored = totals.Total
	stats.AvgAggregateScore = totals.AvgScore
	stats.AvgProcessingTimeMs = totals.AvgTime
	stats.EmptyInputs = totals.EmptyInputs

	if err := r.countsInto(ctx, stats.Labels, "classification"); err != nil {
		return nil, err
	}
	if err := r.countsInto(ctx, stats.Detectors, "detector"); err != nil {
		return nil, err
	}

	return stats, nil
}

func (r *HistoryRepository) countsInto(ctx context.Context, dest map[string]int, column string) error {
	// column is one of two fixed identifiers, never user input
	query := fmt.Sprintf(`SELECT %s AS name, COUNT(*) AS count FROM scoring_history GROUP BY %s`, column, column)

	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to group scoring history by %s: %w", column, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return fmt.Errorf("failed to scan %s counts: %w", column, err)
		}
		dest[name] = count
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating %s counts: %w", column, err)
	}
	return nil
}

// Prune deletes records older than the cutoff and returns the count removed.
func (r *HistoryRepository) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	query := r.db.Rebind(`DELETE FROM scoring_history WHERE scored_at < ?`)
	result, err := r.db.ExecContext(ctx, query, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to prune scoring history: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return affected, nil
}
