package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/coindaily/entitlements/internal/database"
	"github.com/coindaily/entitlements/internal/models"
)

// ErrOverrideNotFound is returned when a user has no admin override
var ErrOverrideNotFound = errors.New("user override not found")

// OverrideRepository handles admin entitlement override database operations.
// Expired overrides stay in the table; expiry is an effect of resolution, not
// a row deletion, so the audit trail survives.
type OverrideRepository struct {
	db *database.DB
}

// NewOverrideRepository creates a new override repository
func NewOverrideRepository(db *database.DB) *OverrideRepository {
	return &OverrideRepository{db: db}
}

// Get retrieves the override for a user, expired or not
func (r *OverrideRepository) Get(ctx context.Context, userID string) (*models.UserOverride, error) {
	query := `
		SELECT user_id, tier_replacement, additional_features, expires_at,
		       created_by, created_at, updated_at
		FROM user_overrides
		WHERE user_id = $1
	`
	var o models.UserOverride
	var tierReplacement *string
	var features []string
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&o.UserID, &tierReplacement, &features, &o.ExpiresAt,
		&o.CreatedBy, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOverrideNotFound
		}
		return nil, fmt.Errorf("failed to get override: %w", err)
	}

	if tierReplacement != nil {
		tier := models.Tier(*tierReplacement)
		o.TierReplacement = &tier
	}
	o.AdditionalFeatures = make([]models.FeatureName, 0, len(features))
	for _, f := range features {
		o.AdditionalFeatures = append(o.AdditionalFeatures, models.FeatureName(f))
	}

	return &o, nil
}

// Upsert creates or replaces the override for a user
func (r *OverrideRepository) Upsert(ctx context.Context, o *models.UserOverride) error {
	now := time.Now()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now

	var tierReplacement *string
	if o.TierReplacement != nil {
		s := string(*o.TierReplacement)
		tierReplacement = &s
	}
	features := make([]string, 0, len(o.AdditionalFeatures))
	for _, f := range o.AdditionalFeatures {
		features = append(features, string(f))
	}

	query := `
		INSERT INTO user_overrides (user_id, tier_replacement, additional_features, expires_at, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			tier_replacement = EXCLUDED.tier_replacement,
			additional_features = EXCLUDED.additional_features,
			expires_at = EXCLUDED.expires_at,
			created_by = EXCLUDED.created_by,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.Exec(ctx, query,
		o.UserID, tierReplacement, features, o.ExpiresAt,
		o.CreatedBy, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert override: %w", err)
	}

	return nil
}

// Delete removes a user's override entirely
func (r *OverrideRepository) Delete(ctx context.Context, userID string) error {
	rowsAffected, err := r.db.Exec(ctx, "DELETE FROM user_overrides WHERE user_id = $1", userID)
	if err != nil {
		return fmt.Errorf("failed to delete override: %w", err)
	}

	if rowsAffected == 0 {
		return ErrOverrideNotFound
	}

	return nil
}
