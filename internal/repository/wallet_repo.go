package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/coindaily/entitlements/internal/database"
	"github.com/coindaily/entitlements/internal/ledger"
	"github.com/coindaily/entitlements/internal/models"
)

// WalletRepository persists token accounts and ledger entries. It implements
// ledger.Store: Apply runs the balance mutation and the entry append in one
// transaction, with the affordability check folded into the UPDATE predicate
// so concurrent debits serialize on the account row.
type WalletRepository struct {
	db *database.DB
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *database.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// CreateAccount creates a token account with an opening balance
func (r *WalletRepository) CreateAccount(ctx context.Context, userID string, balance int64) error {
	if balance < 0 {
		return models.NewValidationError("balance", "opening balance must not be negative")
	}

	query := `
		INSERT INTO token_accounts (user_id, balance, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, userID, balance, time.Now())
	if err != nil {
		return fmt.Errorf("failed to create token account: %w", err)
	}

	return nil
}

// Apply atomically adds entry.Delta to the account balance and appends the
// entry. The conditional UPDATE both mutates and checks affordability: a debit
// that would go negative matches zero rows and nothing is written.
func (r *WalletRepository) Apply(ctx context.Context, entry *models.LedgerEntry) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE token_accounts
			SET balance = balance + $2,
			    updated_at = $3
			WHERE user_id = $1 AND balance + $2 >= 0
		`, entry.UserID, entry.Delta, entry.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to apply balance delta: %w", err)
		}

		if tag.RowsAffected() == 0 {
			var exists bool
			if err := tx.QueryRow(ctx,
				"SELECT EXISTS(SELECT 1 FROM token_accounts WHERE user_id = $1)",
				entry.UserID,
			).Scan(&exists); err != nil {
				return fmt.Errorf("failed to check token account: %w", err)
			}
			if !exists {
				return ledger.ErrAccountNotFound
			}
			return ledger.ErrInsufficientBalance
		}

		var campaignID *string
		if entry.CampaignID != "" {
			campaignID = &entry.CampaignID
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO ledger_entries (id, user_id, delta, reason, campaign_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, entry.ID, entry.UserID, entry.Delta, entry.Reason, campaignID, entry.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to append ledger entry: %w", err)
		}

		return nil
	})
}

// Balance returns the current balance for a user's token account
func (r *WalletRepository) Balance(ctx context.Context, userID string) (int64, error) {
	var balance int64
	err := r.db.QueryRow(ctx,
		"SELECT balance FROM token_accounts WHERE user_id = $1",
		userID,
	).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ledger.ErrAccountNotFound
		}
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}

	return balance, nil
}

// Entries returns a user's ledger history, newest first
func (r *WalletRepository) Entries(ctx context.Context, userID string, limit, offset int) ([]models.LedgerEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, delta, reason, campaign_id, created_at
		FROM ledger_entries
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []models.LedgerEntry
	for rows.Next() {
		var e models.LedgerEntry
		var campaignID *string
		if err := rows.Scan(&e.ID, &e.UserID, &e.Delta, &e.Reason, &campaignID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		if campaignID != nil {
			e.CampaignID = *campaignID
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger entries: %w", err)
	}

	return entries, nil
}
