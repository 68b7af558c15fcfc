// Package pricing derives the cost of every paid action: boost campaign
// prices, airdrop per-recipient shares and staking reward accrual. All
// functions are pure lookups or derivations over validated input.
package pricing

import (
	"time"

	"github.com/coindaily/entitlements/internal/models"
)

// SecondsPerYear is the accrual denominator for staking rewards.
const SecondsPerYear = 365 * 24 * 60 * 60

// boostCosts is the canonical JOY price table for boost campaigns, keyed by
// duration in days and display position. The table is fixed catalog data;
// prices rise with duration and with position aggressiveness
// (trending >= featured >= top for any duration).
var boostCosts = map[int]map[models.BoostPosition]int64{
	1:  {models.PositionTop: 10, models.PositionFeatured: 15, models.PositionTrending: 20},
	3:  {models.PositionTop: 25, models.PositionFeatured: 40, models.PositionTrending: 50},
	7:  {models.PositionTop: 50, models.PositionFeatured: 80, models.PositionTrending: 120},
	14: {models.PositionTop: 90, models.PositionFeatured: 150, models.PositionTrending: 220},
	30: {models.PositionTop: 180, models.PositionFeatured: 300, models.PositionTrending: 450},
}

// BoostDurations lists the allowed campaign durations in days, ascending.
var BoostDurations = []int{1, 3, 7, 14, 30}

// BoostCost returns the JOY cost of a boost campaign for the given duration
// and position. Unknown durations and positions are validation errors.
func BoostCost(durationDays int, position models.BoostPosition) (int64, error) {
	row, ok := boostCosts[durationDays]
	if !ok {
		return 0, models.NewValidationError("duration_days", "must be one of 1, 3, 7, 14 or 30")
	}
	cost, ok := row[position]
	if !ok {
		return 0, models.NewValidationError("position", "must be top, featured or trending")
	}
	return cost, nil
}

// PerRecipientShare returns the amount each airdrop recipient receives:
// totalAmount split across recipientCount, kept to 4 decimal places the way
// the campaign creator sees it previewed.
func PerRecipientShare(totalAmount float64, recipientCount int) (float64, error) {
	if totalAmount <= 0 {
		return 0, models.NewValidationError("total_amount", "must be greater than zero")
	}
	if recipientCount <= 0 {
		return 0, models.NewValidationError("recipient_count", "must be a positive integer")
	}
	return roundTo4(totalAmount / float64(recipientCount)), nil
}

// StakingReward returns the JOY reward accrued on a staked principal over the
// elapsed interval at the platform-wide APY. Accrual is computed on demand at
// claim time; fractional tokens are dropped.
func StakingReward(principal int64, apy float64, elapsed time.Duration) int64 {
	if principal <= 0 || apy <= 0 || elapsed <= 0 {
		return 0
	}
	reward := float64(principal) * apy * (elapsed.Seconds() / SecondsPerYear)
	return int64(reward)
}

func roundTo4(v float64) float64 {
	return float64(int64(v*10000+0.5)) / 10000
}
