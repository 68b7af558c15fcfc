package models

// Tier is a named subscription level. Tiers form a strict total order:
// free < basic < premium < vip < enterprise.
type Tier string

// Subscription tier constants
const (
	TierFree       Tier = "free"
	TierBasic      Tier = "basic"
	TierPremium    Tier = "premium"
	TierVIP        Tier = "vip"
	TierEnterprise Tier = "enterprise"
)

// AllTiers lists every tier in ascending order.
var AllTiers = []Tier{TierFree, TierBasic, TierPremium, TierVIP, TierEnterprise}

// IsValidTier checks if a tier is valid
func IsValidTier(tier Tier) bool {
	switch tier {
	case TierFree, TierBasic, TierPremium, TierVIP, TierEnterprise:
		return true
	default:
		return false
	}
}

// TierPriority returns the rank of a tier in the total order
// (higher = more privileges). Unknown tiers rank 0.
func TierPriority(tier Tier) int {
	switch tier {
	case TierEnterprise:
		return 5
	case TierVIP:
		return 4
	case TierPremium:
		return 3
	case TierBasic:
		return 2
	case TierFree:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether t ranks at or above other.
func (t Tier) AtLeast(other Tier) bool {
	return TierPriority(t) >= TierPriority(other)
}
