package models

import "time"

// AirdropState is the lifecycle state of an airdrop.
type AirdropState string

// Airdrop states. Draft -> Scheduled -> Active -> Completed.
const (
	AirdropDraft     AirdropState = "draft"
	AirdropScheduled AirdropState = "scheduled"
	AirdropActive    AirdropState = "active"
	AirdropCompleted AirdropState = "completed"
)

// DistributionType controls how an airdrop splits tokens across recipients.
type DistributionType string

// Distribution types
const (
	DistributionEqual    DistributionType = "equal"
	DistributionWeighted DistributionType = "weighted"
	DistributionRandom   DistributionType = "random"
)

// IsValidDistributionType checks if a distribution type is valid.
func IsValidDistributionType(d DistributionType) bool {
	switch d {
	case DistributionEqual, DistributionWeighted, DistributionRandom:
		return true
	default:
		return false
	}
}

// AirdropRequirement is a closed set of eligibility conditions an airdrop can
// impose on recipients.
type AirdropRequirement string

// Airdrop recipient requirements
const (
	RequireMinFollowers      AirdropRequirement = "min_followers"
	RequireVerifiedAccount   AirdropRequirement = "verified_account"
	RequireActiveUser        AirdropRequirement = "active_user"
	RequirePremiumSubscriber AirdropRequirement = "premium_subscriber"
)

// IsValidRequirement checks if an airdrop requirement is part of the closed set.
func IsValidRequirement(r AirdropRequirement) bool {
	switch r {
	case RequireMinFollowers, RequireVerifiedAccount, RequireActiveUser, RequirePremiumSubscriber:
		return true
	default:
		return false
	}
}

// Airdrop is a creator-defined distribution of a token amount across a set of
// recipients. The per-recipient amount is derived from TotalAmount and
// RecipientCount and is never stored independently of its inputs.
type Airdrop struct {
	ID               string               `json:"id" db:"id"`
	CreatorID        string               `json:"creator_id" db:"creator_id"`
	Title            string               `json:"title" db:"title"`
	Description      string               `json:"description,omitempty" db:"description"`
	TokenName        string               `json:"token_name" db:"token_name"`
	TokenSymbol      string               `json:"token_symbol,omitempty" db:"token_symbol"`
	TotalAmount      float64              `json:"total_amount" db:"total_amount"`
	RecipientCount   int                  `json:"recipient_count" db:"recipient_count"`
	DistributionType DistributionType     `json:"distribution_type" db:"distribution_type"`
	Requirements     []AirdropRequirement `json:"requirements" db:"requirements"`
	StartDate        *time.Time           `json:"start_date,omitempty" db:"start_date"`
	EndDate          *time.Time           `json:"end_date,omitempty" db:"end_date"`
	State            AirdropState         `json:"state" db:"state"`
	CreatedAt        time.Time            `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at" db:"updated_at"`
}

// CompletionDue reports whether an active airdrop has run past its end date.
func (a *Airdrop) CompletionDue(now time.Time) bool {
	return a.State == AirdropActive && a.EndDate != nil && !a.EndDate.After(now)
}
