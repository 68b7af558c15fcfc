package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/coindaily/entitlements/internal/database"
	"github.com/coindaily/entitlements/internal/models"
)

// ErrAirdropNotFound is returned when an airdrop is not found
var ErrAirdropNotFound = errors.New("airdrop not found")

// AirdropRepository handles airdrop database operations
type AirdropRepository struct {
	db *database.DB
}

// NewAirdropRepository creates a new airdrop repository
func NewAirdropRepository(db *database.DB) *AirdropRepository {
	return &AirdropRepository{db: db}
}

const airdropColumns = `
	id, creator_id, title, description, token_name, token_symbol,
	total_amount, recipient_count, distribution_type, requirements,
	start_date, end_date, state, created_at, updated_at`

// Create inserts a new airdrop
func (r *AirdropRepository) Create(ctx context.Context, a *models.Airdrop) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.State == "" {
		a.State = models.AirdropDraft
	}
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now

	requirements := make([]string, 0, len(a.Requirements))
	for _, req := range a.Requirements {
		requirements = append(requirements, string(req))
	}

	query := `
		INSERT INTO airdrops (id, creator_id, title, description, token_name, token_symbol, total_amount, recipient_count, distribution_type, requirements, start_date, end_date, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.db.Exec(ctx, query,
		a.ID, a.CreatorID, a.Title, a.Description, a.TokenName, a.TokenSymbol,
		a.TotalAmount, a.RecipientCount, a.DistributionType, requirements,
		a.StartDate, a.EndDate, a.State, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create airdrop: %w", err)
	}

	return nil
}

// GetByID retrieves an airdrop by ID
func (r *AirdropRepository) GetByID(ctx context.Context, id string) (*models.Airdrop, error) {
	query := "SELECT" + airdropColumns + " FROM airdrops WHERE id = $1"

	rows, err := r.db.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get airdrop: %w", err)
	}
	defer rows.Close()

	airdrops, err := r.scanAirdrops(rows)
	if err != nil {
		return nil, err
	}

	if len(airdrops) == 0 {
		return nil, ErrAirdropNotFound
	}
	return &airdrops[0], nil
}

// ListByCreator returns a user's airdrops, newest first
func (r *AirdropRepository) ListByCreator(ctx context.Context, creatorID string, limit, offset int) ([]models.Airdrop, int, error) {
	if limit <= 0 {
		limit = 20
	}

	var total int
	if err := r.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM airdrops WHERE creator_id = $1",
		creatorID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count airdrops: %w", err)
	}

	query := "SELECT" + airdropColumns + `
		FROM airdrops
		WHERE creator_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, creatorID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query airdrops: %w", err)
	}
	defer rows.Close()

	airdrops, err := r.scanAirdrops(rows)
	if err != nil {
		return nil, 0, err
	}

	return airdrops, total, nil
}

// Update persists the airdrop's state and schedule
func (r *AirdropRepository) Update(ctx context.Context, a *models.Airdrop) error {
	a.UpdatedAt = time.Now()

	query := `
		UPDATE airdrops
		SET state = $2, start_date = $3, end_date = $4, updated_at = $5
		WHERE id = $1
	`
	rowsAffected, err := r.db.Exec(ctx, query,
		a.ID, a.State, a.StartDate, a.EndDate, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update airdrop: %w", err)
	}

	if rowsAffected == 0 {
		return ErrAirdropNotFound
	}

	return nil
}

// scanAirdrops scans rows into airdrop structs
func (r *AirdropRepository) scanAirdrops(rows pgx.Rows) ([]models.Airdrop, error) {
	var airdrops []models.Airdrop

	for rows.Next() {
		var a models.Airdrop
		var requirements []string
		err := rows.Scan(
			&a.ID, &a.CreatorID, &a.Title, &a.Description, &a.TokenName, &a.TokenSymbol,
			&a.TotalAmount, &a.RecipientCount, &a.DistributionType, &requirements,
			&a.StartDate, &a.EndDate, &a.State, &a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan airdrop: %w", err)
		}

		a.Requirements = make([]models.AirdropRequirement, 0, len(requirements))
		for _, req := range requirements {
			a.Requirements = append(a.Requirements, models.AirdropRequirement(req))
		}

		airdrops = append(airdrops, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating airdrops: %w", err)
	}

	return airdrops, nil
}
