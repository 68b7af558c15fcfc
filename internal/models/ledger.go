package models

import (
	"fmt"
	"time"
)

// LedgerReason records why a balance mutation happened.
type LedgerReason string

// Ledger mutation reasons
const (
	ReasonBoostCharge     LedgerReason = "boost_charge"
	ReasonStake           LedgerReason = "stake"
	ReasonUnstake         LedgerReason = "unstake"
	ReasonStakingReward   LedgerReason = "staking_reward"
	ReasonAirdropClaim    LedgerReason = "airdrop_claim"
	ReasonTopUp           LedgerReason = "top_up"
	ReasonAdminAdjustment LedgerReason = "admin_adjustment"
)

// LedgerEntry is an immutable, append-only record of one balance mutation.
// Entries are never edited or deleted; the sum of all deltas for a user
// equals that user's current balance.
type LedgerEntry struct {
	ID         string       `json:"id" db:"id"`
	UserID     string       `json:"user_id" db:"user_id"`
	Delta      int64        `json:"delta" db:"delta"`
	Reason     LedgerReason `json:"reason" db:"reason"`
	CampaignID string       `json:"campaign_id,omitempty" db:"campaign_id"`
	CreatedAt  time.Time    `json:"created_at" db:"created_at"`
}

// TokenAccount tracks a user's spendable JOY balance. The balance is mutated
// only through ledger debits and credits and never goes negative.
type TokenAccount struct {
	UserID    string    `json:"user_id" db:"user_id"`
	Balance   int64     `json:"balance" db:"balance"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ValidationError reports a malformed or out-of-range input, naming the
// specific field at fault. It is always raised before any state mutation.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NewValidationError creates a validation error for a field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
