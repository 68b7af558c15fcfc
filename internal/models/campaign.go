package models

import "time"

// CampaignState is the lifecycle state of a boost campaign.
type CampaignState string

// Boost campaign states. Draft -> PendingApproval -> Approved -> Active ->
// Expired, with Rejected terminal and reachable only from PendingApproval.
const (
	CampaignDraft           CampaignState = "draft"
	CampaignPendingApproval CampaignState = "pending_approval"
	CampaignApproved        CampaignState = "approved"
	CampaignActive          CampaignState = "active"
	CampaignExpired         CampaignState = "expired"
	CampaignRejected        CampaignState = "rejected"
)

// IsTerminal reports whether the state admits no further transitions.
func (s CampaignState) IsTerminal() bool {
	return s == CampaignExpired || s == CampaignRejected
}

// BoostPosition is the display slot a boost campaign pays for.
type BoostPosition string

// Boost positions, from least to most aggressive
const (
	PositionTop      BoostPosition = "top"
	PositionFeatured BoostPosition = "featured"
	PositionTrending BoostPosition = "trending"
)

// IsValidPosition checks if a boost position is valid.
func IsValidPosition(p BoostPosition) bool {
	switch p {
	case PositionTop, PositionFeatured, PositionTrending:
		return true
	default:
		return false
	}
}

// BoostTarget is the kind of content a boost campaign promotes.
type BoostTarget string

// Boostable content types
const (
	BoostTargetPost     BoostTarget = "post"
	BoostTargetArticle  BoostTarget = "article"
	BoostTargetPodcast  BoostTarget = "podcast"
	BoostTargetToken    BoostTarget = "token"
	BoostTargetComment  BoostTarget = "comment"
	BoostTargetStore    BoostTarget = "store"
	BoostTargetProduct  BoostTarget = "product"
	BoostTargetTraining BoostTarget = "training"
)

// IsValidBoostTarget checks if a boost target type is valid.
func IsValidBoostTarget(t BoostTarget) bool {
	switch t {
	case BoostTargetPost, BoostTargetArticle, BoostTargetPodcast, BoostTargetToken,
		BoostTargetComment, BoostTargetStore, BoostTargetProduct, BoostTargetTraining:
		return true
	default:
		return false
	}
}

// BoostCampaign is a paid, time-boxed promotion of a piece of content to a
// privileged display position. Cost is pinned from the pricing table at
// submission; JOY tokens are deducted only when an administrator approves.
type BoostCampaign struct {
	ID           string        `json:"id" db:"id"`
	OwnerID      string        `json:"owner_id" db:"owner_id"`
	TargetType   BoostTarget   `json:"target_type" db:"target_type"`
	Title        string        `json:"title" db:"title"`
	Description  string        `json:"description,omitempty" db:"description"`
	Position     BoostPosition `json:"position" db:"position"`
	DurationDays int           `json:"duration_days" db:"duration_days"`
	Cost         int64         `json:"cost" db:"cost"`
	State        CampaignState `json:"state" db:"state"`
	SubmittedAt  *time.Time    `json:"submitted_at,omitempty" db:"submitted_at"`
	ApprovedAt   *time.Time    `json:"approved_at,omitempty" db:"approved_at"`
	ActivatedAt  *time.Time    `json:"activated_at,omitempty" db:"activated_at"`
	ExpiresAt    *time.Time    `json:"expires_at,omitempty" db:"expires_at"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" db:"updated_at"`
}

// ExpiryDue reports whether an active campaign has run past its duration.
// Expiry is evaluated lazily, when the campaign is next read.
func (c *BoostCampaign) ExpiryDue(now time.Time) bool {
	return c.State == CampaignActive && c.ExpiresAt != nil && !c.ExpiresAt.After(now)
}
