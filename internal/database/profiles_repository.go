package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/lexiscan/lexiscan/internal/domain"
)

// ErrProfileNotFound is returned when a named profile does not exist.
var ErrProfileNotFound = errors.New("detector profile not found")

// ProfilesRepository handles database operations for stored detector
// profiles. Queries use `?` placeholders and are rebound per driver.
type ProfilesRepository struct {
	db *sqlx.DB
}

// NewProfilesRepository creates a new profiles repository.
func NewProfilesRepository(db *sqlx.DB) *ProfilesRepository {
	return &ProfilesRepository{db: db}
}

// Create inserts a new profile. The profile must already validate.
func (r *ProfilesRepository) Create(ctx context.Context, profile *domain.DetectorProfile) error {
	stored, err := encodeProfile(profile)
	if err != nil {
		return err
	}
	now := time.Now().UTC()

	query := r.db.Rebind(`
		INSERT INTO detector_profiles
			(name, description, combine, categories, signals, cutoffs, sensitivity, enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err = r.db.ExecContext(
		ctx,
		query,
		stored.Name,
		stored.Description,
		stored.Combine,
		stored.Categories,
		stored.Signals,
		stored.Cutoffs,
		stored.Sensitivity,
		true,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create profile %q: %w", profile.Name, err)
	}
	return nil
}

// GetByName retrieves a profile by name.
func (r *ProfilesRepository) GetByName(ctx context.Context, name string) (*domain.DetectorProfile, error) {
	var stored domain.StoredProfile
	query := r.db.Rebind(`
		SELECT id, name, description, combine, categories, signals, cutoffs, sensitivity, enabled, created_at, updated_at
		FROM detector_profiles
		WHERE name = ?
	`)
	if err := r.db.GetContext(ctx, &stored, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %q", ErrProfileNotFound, name)
		}
		return nil, fmt.Errorf("failed to get profile %q: %w", name, err)
	}
	return decodeProfile(&stored)
}

// ListEnabled retrieves all enabled profiles, ordered by name.
func (r *ProfilesRepository) ListEnabled(ctx context.Context) ([]*domain.DetectorProfile, error) {
	var rows []domain.StoredProfile
	query := `
		SELECT id, name, description, combine, categories, signals, cutoffs, sensitivity, enabled, created_at, updated_at
		FROM detector_profiles
		WHERE enabled = TRUE
		ORDER BY name ASC
	`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	profiles := make([]*domain.DetectorProfile, 0, len(rows))
	for i := range rows {
		profile, err := decodeProfile(&rows[i])
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

// Update replaces the stored definition of an existing profile.
func (r *ProfilesRepository) Update(ctx context.Context, profile *domain.DetectorProfile) error {
	stored, err := encodeProfile(profile)
	if err != nil {
		return err
	}

	query := r.db.Rebind(`
		UPDATE detector_profiles
		SET description = ?, combine = ?, categories = ?, signals = ?, cutoffs = ?, sensitivity = ?, updated_at = ?
		WHERE name = ?
	`)
	result, err := r.db.ExecContext(
		ctx,
		query,
		stored.Description,
		stored.Combine,
		stored.Categories,
		stored.Signals,
		stored.Cutoffs,
		stored.Sensitivity,
		time.Now().UTC(),
		stored.Name,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile %q: %w", profile.Name, err)
	}
	return requireRow(result, profile.Name)
}

// Delete removes a profile by name.
func (r *ProfilesRepository) Delete(ctx context.Context, name string) error {
	query := r.db.Rebind(`DELETE FROM detector_profiles WHERE name = ?`)
	result, err := r.db.ExecContext(ctx, query, name)
	if err != nil {
		return fmt.Errorf("failed to delete profile %q: %w", name, err)
	}
	return requireRow(result, name)
}

// Count returns the total number of stored profiles.
func (r *ProfilesRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM detector_profiles`); err != nil {
		return 0, fmt.Errorf("failed to count profiles: %w", err)
	}
	return count, nil
}

func requireRow(result sql.Result, name string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %q", ErrProfileNotFound, name)
	}
	return nil
}

func encodeProfile(profile *domain.DetectorProfile) (*domain.StoredProfile, error) {
	categories, err := json.Marshal(profile.Categories)
	if err != nil {
		return nil, fmt.Errorf("encode categories for %q: %w", profile.Name, err)
	}
	signals, err := json.Marshal(profile.Signals)
	if err != nil {
		return nil, fmt.Errorf("encode signals for %q: %w", profile.Name, err)
	}
	cutoffs, err := json.Marshal(profile.Cutoffs)
	if err != nil {
		return nil, fmt.Errorf("encode cutoffs for %q: %w", profile.Name, err)
	}
	sensitivity, err := json.Marshal(profile.Sensitivity)
	if err != nil {
		return nil, fmt.Errorf("encode sensitivity for %q: %w", profile.Name, err)
	}
	return &domain.StoredProfile{
		Name:        profile.Name,
		Description: profile.Description,
		Combine:     string(profile.Combine),
		Categories:  categories,
		Signals:     signals,
		Cutoffs:     cutoffs,
		Sensitivity: sensitivity,
	}, nil
}

func decodeProfile(stored *domain.StoredProfile) (*domain.DetectorProfile, error) {
	profile := &domain.DetectorProfile{
		Name:        stored.Name,
		Description: stored.Description,
		Combine:     domain.CombineRule(stored.Combine),
	}
	if err := json.Unmarshal(stored.Categories, &profile.Categories); err != nil {
		return nil, fmt.Errorf("decode categories for %q: %w", stored.Name, err)
	}
	if len(stored.Signals) > 0 {
		if err := json.Unmarshal(stored.Signals, &profile.Signals); err != nil {
			return nil, fmt.Errorf("decode signals for %q: %w", stored.Name, err)
		}
	}
	if err := json.Unmarshal(stored.Cutoffs, &profile.Cutoffs); err != nil {
		return nil, fmt.Errorf("decode cutoffs for %q: %w", stored.Name, err)
	}
	if len(stored.Sensitivity) > 0 {
		if err := json.Unmarshal(stored.Sensitivity, &profile.Sensitivity); err != nil {
			return nil, fmt.Errorf("decode sensitivity for %q: %w", stored.Name, err)
		}
	}
	return profile, nil
}
