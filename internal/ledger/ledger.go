// Package ledger owns the spendable JOY balance of every user. All balance
// mutations go through Debit and Credit, each successful mutation appends
// exactly one immutable LedgerEntry, and the sum of a user's entries always
// equals the current balance.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/coindaily/entitlements/internal/clock"
	"github.com/coindaily/entitlements/internal/models"
)

var (
	// ErrInsufficientBalance is returned when a debit would take the balance
	// below zero. The balance and entry log are left untouched.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrAccountNotFound is returned when the user has no token account.
	ErrAccountNotFound = errors.New("token account not found")
)

// Store persists token accounts and their entry logs. Apply must be atomic:
// the balance check and the mutation happen as one indivisible step, so two
// concurrent debits can never both pass an affordability check against a
// stale balance.
type Store interface {
	// Apply adds entry.Delta to the user's balance and appends the entry.
	// A negative delta that would make the balance negative fails with
	// ErrInsufficientBalance and leaves no partial effects.
	Apply(ctx context.Context, entry *models.LedgerEntry) error
	// Balance returns the user's current spendable balance.
	Balance(ctx context.Context, userID string) (int64, error)
	// Entries returns the user's ledger history, newest first.
	Entries(ctx context.Context, userID string, limit, offset int) ([]models.LedgerEntry, error)
}

// Ledger performs affordability-checked balance mutations.
type Ledger struct {
	store Store
	clock clock.Clock
}

// New creates a ledger over the given store.
func New(store Store, clk clock.Clock) *Ledger {
	return &Ledger{store: store, clock: clk}
}

// Debit removes amount from the user's balance, recording reason and an
// optional related campaign. Returns ErrInsufficientBalance without mutating
// anything when the user cannot afford the full amount; the requested spend
// is never silently truncated.
func (l *Ledger) Debit(ctx context.Context, userID string, amount int64, reason models.LedgerReason, campaignID string) (*models.LedgerEntry, error) {
	if amount <= 0 {
		return nil, models.NewValidationError("amount", "debit amount must be positive")
	}
	entry := l.newEntry(userID, -amount, reason, campaignID)
	if err := l.store.Apply(ctx, entry); err != nil {
		return nil, fmt.Errorf("debit %d from %s: %w", amount, userID, err)
	}
	return entry, nil
}

// Credit adds amount to the user's balance, recording reason.
func (l *Ledger) Credit(ctx context.Context, userID string, amount int64, reason models.LedgerReason, campaignID string) (*models.LedgerEntry, error) {
	if amount <= 0 {
		return nil, models.NewValidationError("amount", "credit amount must be positive")
	}
	entry := l.newEntry(userID, amount, reason, campaignID)
	if err := l.store.Apply(ctx, entry); err != nil {
		return nil, fmt.Errorf("credit %d to %s: %w", amount, userID, err)
	}
	return entry, nil
}

// Balance returns the user's current spendable balance.
func (l *Ledger) Balance(ctx context.Context, userID string) (int64, error) {
	return l.store.Balance(ctx, userID)
}

// History returns the user's ledger entries, newest first.
func (l *Ledger) History(ctx context.Context, userID string, limit, offset int) ([]models.LedgerEntry, error) {
	return l.store.Entries(ctx, userID, limit, offset)
}

func (l *Ledger) newEntry(userID string, delta int64, reason models.LedgerReason, campaignID string) *models.LedgerEntry {
	return &models.LedgerEntry{
		ID:         uuid.New().String(),
		UserID:     userID,
		Delta:      delta,
		Reason:     reason,
		CampaignID: campaignID,
		CreatedAt:  l.clock.Now().UTC(),
	}
}
