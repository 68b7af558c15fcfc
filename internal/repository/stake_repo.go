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

// ErrStakeNotFound is returned when a user has no stake position
var ErrStakeNotFound = errors.New("stake position not found")

// StakeRepository handles stake position database operations. Each user has
// at most one position; staking more merges into it.
type StakeRepository struct {
	db *database.DB
}

// NewStakeRepository creates a new stake repository
func NewStakeRepository(db *database.DB) *StakeRepository {
	return &StakeRepository{db: db}
}

// Get retrieves a user's stake position
func (r *StakeRepository) Get(ctx context.Context, userID string) (*models.StakePosition, error) {
	query := `
		SELECT user_id, principal, staked_at, last_claimed_at, updated_at
		FROM stake_positions
		WHERE user_id = $1
	`
	var p models.StakePosition
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&p.UserID, &p.Principal, &p.StakedAt, &p.LastClaimedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStakeNotFound
		}
		return nil, fmt.Errorf("failed to get stake position: %w", err)
	}

	return &p, nil
}

// Upsert creates or replaces a user's stake position
func (r *StakeRepository) Upsert(ctx context.Context, p *models.StakePosition) error {
	p.UpdatedAt = time.Now()

	query := `
		INSERT INTO stake_positions (user_id, principal, staked_at, last_claimed_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			principal = EXCLUDED.principal,
			staked_at = EXCLUDED.staked_at,
			last_claimed_at = EXCLUDED.last_claimed_at,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.Exec(ctx, query,
		p.UserID, p.Principal, p.StakedAt, p.LastClaimedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert stake position: %w", err)
	}

	return nil
}

// Delete removes a user's stake position after a full unstake
func (r *StakeRepository) Delete(ctx context.Context, userID string) error {
	rowsAffected, err := r.db.Exec(ctx, "DELETE FROM stake_positions WHERE user_id = $1", userID)
	if err != nil {
		return fmt.Errorf("failed to delete stake position: %w", err)
	}

	if rowsAffected == 0 {
		return ErrStakeNotFound
	}

	return nil
}
