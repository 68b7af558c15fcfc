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

// ErrCampaignNotFound is returned when a boost campaign is not found
var ErrCampaignNotFound = errors.New("boost campaign not found")

// CampaignRepository handles boost campaign database operations
type CampaignRepository struct {
	db *database.DB
}

// NewCampaignRepository creates a new campaign repository
func NewCampaignRepository(db *database.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

const campaignColumns = `
	id, owner_id, target_type, title, description, position, duration_days,
	cost, state, submitted_at, approved_at, activated_at, expires_at,
	created_at, updated_at`

// Create inserts a new boost campaign
func (r *CampaignRepository) Create(ctx context.Context, c *models.BoostCampaign) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.State == "" {
		c.State = models.CampaignDraft
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	query := `
		INSERT INTO boost_campaigns (id, owner_id, target_type, title, description, position, duration_days, cost, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.Exec(ctx, query,
		c.ID, c.OwnerID, c.TargetType, c.Title, c.Description,
		c.Position, c.DurationDays, c.Cost, c.State, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}

	return nil
}

// GetByID retrieves a boost campaign by ID
func (r *CampaignRepository) GetByID(ctx context.Context, id string) (*models.BoostCampaign, error) {
	query := "SELECT" + campaignColumns + " FROM boost_campaigns WHERE id = $1"

	var c models.BoostCampaign
	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.OwnerID, &c.TargetType, &c.Title, &c.Description,
		&c.Position, &c.DurationDays, &c.Cost, &c.State,
		&c.SubmittedAt, &c.ApprovedAt, &c.ActivatedAt, &c.ExpiresAt,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCampaignNotFound
		}
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}

	return &c, nil
}

// ListByOwner returns a user's boost campaigns, newest first
func (r *CampaignRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]models.BoostCampaign, int, error) {
	if limit <= 0 {
		limit = 20
	}

	var total int
	if err := r.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM boost_campaigns WHERE owner_id = $1",
		ownerID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count campaigns: %w", err)
	}

	query := "SELECT" + campaignColumns + `
		FROM boost_campaigns
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query campaigns: %w", err)
	}
	defer rows.Close()

	campaigns, err := r.scanCampaigns(rows)
	if err != nil {
		return nil, 0, err
	}

	return campaigns, total, nil
}

// ListPending returns campaigns awaiting admin review, oldest first
func (r *CampaignRepository) ListPending(ctx context.Context, limit, offset int) ([]models.BoostCampaign, error) {
	if limit <= 0 {
		limit = 50
	}

	query := "SELECT" + campaignColumns + `
		FROM boost_campaigns
		WHERE state = $1
		ORDER BY submitted_at ASC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, models.CampaignPendingApproval, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending campaigns: %w", err)
	}
	defer rows.Close()

	return r.scanCampaigns(rows)
}

// TransitionState persists the campaign's state and timestamps only while
// the stored state still equals from. Zero matched rows means another writer
// moved the campaign first; nothing is written and false is returned.
func (r *CampaignRepository) TransitionState(ctx context.Context, c *models.BoostCampaign, from models.CampaignState) (bool, error) {
	query := `
		UPDATE boost_campaigns
		SET state = $2, cost = $3, submitted_at = $4, approved_at = $5,
		    activated_at = $6, expires_at = $7, updated_at = $8
		WHERE id = $1 AND state = $9
	`
	rowsAffected, err := r.db.Exec(ctx, query,
		c.ID, c.State, c.Cost, c.SubmittedAt, c.ApprovedAt,
		c.ActivatedAt, c.ExpiresAt, c.UpdatedAt, from)
	if err != nil {
		return false, fmt.Errorf("failed to transition campaign: %w", err)
	}

	return rowsAffected > 0, nil
}

// scanCampaigns scans rows into campaign structs
func (r *CampaignRepository) scanCampaigns(rows pgx.Rows) ([]models.BoostCampaign, error) {
	var campaigns []models.BoostCampaign

	for rows.Next() {
		var c models.BoostCampaign
		err := rows.Scan(
			&c.ID, &c.OwnerID, &c.TargetType, &c.Title, &c.Description,
			&c.Position, &c.DurationDays, &c.Cost, &c.State,
			&c.SubmittedAt, &c.ApprovedAt, &c.ActivatedAt, &c.ExpiresAt,
			&c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan campaign: %w", err)
		}
		campaigns = append(campaigns, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating campaigns: %w", err)
	}

	return campaigns, nil
}
