package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/coindaily/entitlements/internal/database"
	"github.com/coindaily/entitlements/internal/models"
)

var (
	// ErrUserNotFound is returned when a user is not found
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned when trying to create a user that already exists
	ErrUserExists = errors.New("user already exists")
)

// UserRepository handles user database operations
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Tier == "" {
		user.Tier = models.TierFree
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (id, email, tier, ce_points, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.Email, user.Tier, user.CEPoints, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUserExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID. The JOY balance is read from the token
// account so the user row never carries a second copy of it.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT u.id, u.email, u.tier, u.ce_points,
		       COALESCE(ta.balance, 0) AS joy_balance,
		       u.created_at, u.updated_at
		FROM users u
		LEFT JOIN token_accounts ta ON ta.user_id = u.id
		WHERE u.id = $1
	`
	var user models.User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.Tier, &user.CEPoints,
		&user.JoyBalance, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return &user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT u.id, u.email, u.tier, u.ce_points,
		       COALESCE(ta.balance, 0) AS joy_balance,
		       u.created_at, u.updated_at
		FROM users u
		LEFT JOIN token_accounts ta ON ta.user_id = u.id
		WHERE u.email = $1
	`
	var user models.User
	err := r.db.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.Tier, &user.CEPoints,
		&user.JoyBalance, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}

// UpdateTier updates a user's subscription tier
func (r *UserRepository) UpdateTier(ctx context.Context, userID string, tier models.Tier) error {
	if !models.IsValidTier(tier) {
		return fmt.Errorf("invalid tier: %s", tier)
	}

	query := `UPDATE users SET tier = $2, updated_at = $3 WHERE id = $1`
	rowsAffected, err := r.db.Exec(ctx, query, userID, tier, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update tier: %w", err)
	}

	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// AddCEPoints adds engagement points to a user. CE points are a score, not a
// spendable balance, so they bypass the token ledger.
func (r *UserRepository) AddCEPoints(ctx context.Context, userID string, points int64) error {
	query := `
		UPDATE users
		SET ce_points = ce_points + $2,
		    updated_at = $3
		WHERE id = $1
	`
	rowsAffected, err := r.db.Exec(ctx, query, userID, points, time.Now())
	if err != nil {
		return fmt.Errorf("failed to add ce points: %w", err)
	}

	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// isUniqueViolation checks if an error is a unique constraint violation
func isUniqueViolation(err error) bool {
	// PostgreSQL unique violation error code is 23505
	if err == nil {
		return false
	}
	errMsg := err.Error()
	return strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "23505")
}
