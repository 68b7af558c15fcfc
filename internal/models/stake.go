package models

import "time"

// StakePosition tracks a user's staked JOY principal. Rewards accrue on
// demand: the position carries the instant accrual was last settled, and the
// reward for the elapsed interval is computed at claim time rather than by a
// background ticker.
type StakePosition struct {
	UserID        string    `json:"user_id" db:"user_id"`
	Principal     int64     `json:"principal" db:"principal"`
	StakedAt      time.Time `json:"staked_at" db:"staked_at"`
	LastClaimedAt time.Time `json:"last_claimed_at" db:"last_claimed_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
