package service

import (
	"context"
	"log"

	"github.com/coindaily/entitlements/internal/ledger"
	"github.com/coindaily/entitlements/internal/models"
	"github.com/coindaily/entitlements/internal/repository"
)

// WalletService exposes balances and ledger history, plus the admin-only
// credit operations.
type WalletService struct {
	users       *repository.UserRepository
	ledger      *ledger.Ledger
	maxPageSize int
}

// NewWalletService creates a new wallet service
func NewWalletService(users *repository.UserRepository, l *ledger.Ledger, maxPageSize int) *WalletService {
	return &WalletService{
		users:       users,
		ledger:      l,
		maxPageSize: maxPageSize,
	}
}

// WalletView is a user's token holdings at a glance.
type WalletView struct {
	UserID     string `json:"user_id"`
	JoyBalance int64  `json:"joy_balance"`
	CEPoints   int64  `json:"ce_points"`
}

// Get returns a user's JOY balance and engagement points.
func (s *WalletService) Get(ctx context.Context, userID string) (*WalletView, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	balance, err := s.ledger.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &WalletView{
		UserID:     userID,
		JoyBalance: balance,
		CEPoints:   user.CEPoints,
	}, nil
}

// History returns a user's ledger entries, newest first. The page size is
// clamped to the configured maximum.
func (s *WalletService) History(ctx context.Context, userID string, limit, offset int) ([]models.LedgerEntry, error) {
	if limit <= 0 || limit > s.maxPageSize {
		limit = s.maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.ledger.History(ctx, userID, limit, offset)
}

// TopUp credits purchased JOY tokens to a user.
func (s *WalletService) TopUp(ctx context.Context, userID string, amount int64) (*models.LedgerEntry, error) {
	entry, err := s.ledger.Credit(ctx, userID, amount, models.ReasonTopUp, "")
	if err != nil {
		return nil, err
	}

	log.Printf("[wallet] Topped up %d JOY for %s", amount, userID)
	return entry, nil
}

// AdminAdjust applies a signed admin correction to a user's balance. A
// negative delta still cannot take the balance below zero.
func (s *WalletService) AdminAdjust(ctx context.Context, userID string, delta int64) (*models.LedgerEntry, error) {
	if delta == 0 {
		return nil, models.NewValidationError("delta", "adjustment must not be zero")
	}

	var entry *models.LedgerEntry
	var err error
	if delta > 0 {
		entry, err = s.ledger.Credit(ctx, userID, delta, models.ReasonAdminAdjustment, "")
	} else {
		entry, err = s.ledger.Debit(ctx, userID, -delta, models.ReasonAdminAdjustment, "")
	}
	if err != nil {
		return nil, err
	}

	log.Printf("[wallet] Admin adjustment of %d JOY for %s", delta, userID)
	return entry, nil
}
