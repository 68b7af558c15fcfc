package models

import "time"

// User represents a platform account. JoyBalance is the spendable JOY token
// balance owned by the ledger; CEPoints is a separate, non-spendable
// engagement score.
type User struct {
	ID         string    `json:"id" db:"id"`
	Email      string    `json:"email" db:"email"`
	Tier       Tier      `json:"tier" db:"tier"`
	JoyBalance int64     `json:"joy_balance" db:"joy_balance"`
	CEPoints   int64     `json:"ce_points" db:"ce_points"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
