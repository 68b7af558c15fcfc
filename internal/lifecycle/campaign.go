// Package lifecycle drives paid actions from request through administrator
// approval to activation and expiry. Approval is the economic event: the
// ledger is debited at the PendingApproval -> Approved transition and nowhere
// else.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/coindaily/entitlements/internal/clock"
	"github.com/coindaily/entitlements/internal/ledger"
	"github.com/coindaily/entitlements/internal/models"
	"github.com/coindaily/entitlements/internal/pricing"
)

// ErrInvalidTransition is returned for a genuinely illegal lifecycle
// transition. Re-applying a transition that already happened (re-approving an
// approved campaign, re-entering a terminal state) is a no-op instead.
var ErrInvalidTransition = errors.New("invalid lifecycle transition")

// ErrFeatureNotAllowed is returned when the submitting user's entitlement
// does not cover the requested action.
var ErrFeatureNotAllowed = errors.New("feature not allowed for tier")

// CampaignStore persists campaign state transitions. TransitionState is the
// concurrency guard: it writes c only while the stored state still equals
// from, so two writers racing for the same transition cannot both win.
type CampaignStore interface {
	// GetByID returns the campaign's current persisted state.
	GetByID(ctx context.Context, id string) (*models.BoostCampaign, error)
	// TransitionState persists c if the stored state still equals from,
	// reporting whether this writer won the claim. A lost claim writes
	// nothing.
	TransitionState(ctx context.Context, c *models.BoostCampaign, from models.CampaignState) (bool, error)
}

// CampaignLifecycle owns boost campaign state transitions.
type CampaignLifecycle struct {
	ledger *ledger.Ledger
	store  CampaignStore
	clock  clock.Clock
}

// NewCampaignLifecycle creates a campaign lifecycle over the given ledger and
// campaign store.
func NewCampaignLifecycle(l *ledger.Ledger, store CampaignStore, clk clock.Clock) *CampaignLifecycle {
	return &CampaignLifecycle{ledger: l, store: store, clock: clk}
}

// Submit moves a campaign from Draft to PendingApproval. It validates the
// title, the pricing parameters and the owner's entitlement for the target
// content type, and pins the campaign cost from the pricing table. No tokens
// are deducted at submission time. The caller persists the campaign; a
// submitted campaign has no row to claim yet.
func (cl *CampaignLifecycle) Submit(c *models.BoostCampaign, ent *models.EffectiveEntitlement) error {
	switch c.State {
	case models.CampaignPendingApproval:
		return nil
	case models.CampaignDraft:
	default:
		return transitionError(c.State, models.CampaignPendingApproval)
	}

	if strings.TrimSpace(c.Title) == "" {
		return models.NewValidationError("title", "must not be empty")
	}
	if !models.IsValidBoostTarget(c.TargetType) {
		return models.NewValidationError("target_type", "unknown boost target")
	}

	if !ent.HasFeature(models.FeatureBoostContent) {
		return fmt.Errorf("%w: boosting requires feature %s", ErrFeatureNotAllowed, models.FeatureBoostContent)
	}
	if required, ok := requiredFeature(c.TargetType); ok && !ent.HasFeature(required) {
		return fmt.Errorf("%w: boosting a %s requires feature %s", ErrFeatureNotAllowed, c.TargetType, required)
	}

	cost, err := pricing.BoostCost(c.DurationDays, c.Position)
	if err != nil {
		return err
	}

	now := cl.clock.Now().UTC()
	c.Cost = cost
	c.State = models.CampaignPendingApproval
	c.SubmittedAt = &now
	c.UpdatedAt = now
	return nil
}

// Approve moves a campaign from PendingApproval to Approved, debiting the
// owner's balance for the pinned cost. This is the only transition that
// touches the ledger.
//
// The state claim happens before the debit: only the writer that moves the
// row out of PendingApproval charges the owner, so a duplicate approval --
// concurrent or repeated -- can never debit twice. It observes the campaign
// already approved and returns a nil entry. If the debit fails the claim is
// released and the campaign stays reviewable in PendingApproval.
func (cl *CampaignLifecycle) Approve(ctx context.Context, c *models.BoostCampaign) (*models.LedgerEntry, error) {
	switch c.State {
	case models.CampaignApproved:
		return nil, nil
	case models.CampaignPendingApproval:
	default:
		return nil, transitionError(c.State, models.CampaignApproved)
	}

	now := cl.clock.Now().UTC()
	c.State = models.CampaignApproved
	c.ApprovedAt = &now
	c.UpdatedAt = now

	claimed, err := cl.store.TransitionState(ctx, c, models.CampaignPendingApproval)
	if err != nil {
		return nil, err
	}
	if !claimed {
		// Another writer moved the campaign first; pick up its result.
		current, err := cl.store.GetByID(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		*c = *current
		if c.State == models.CampaignApproved {
			return nil, nil
		}
		return nil, transitionError(c.State, models.CampaignApproved)
	}

	entry, err := cl.ledger.Debit(ctx, c.OwnerID, c.Cost, models.ReasonBoostCharge, c.ID)
	if err != nil {
		// Release the claim so the campaign stays reviewable.
		c.State = models.CampaignPendingApproval
		c.ApprovedAt = nil
		c.UpdatedAt = now
		if _, revertErr := cl.store.TransitionState(ctx, c, models.CampaignApproved); revertErr != nil {
			return nil, fmt.Errorf("release approval claim for %s: %v (debit failed: %w)", c.ID, revertErr, err)
		}
		return nil, err
	}

	return entry, nil
}

// Reject moves a campaign from PendingApproval to the Rejected terminal
// state. No ledger mutation is performed. The claim guard keeps a reject
// from overwriting a concurrent approval.
func (cl *CampaignLifecycle) Reject(ctx context.Context, c *models.BoostCampaign) error {
	switch c.State {
	case models.CampaignRejected:
		return nil
	case models.CampaignPendingApproval:
	default:
		return transitionError(c.State, models.CampaignRejected)
	}

	now := cl.clock.Now().UTC()
	c.State = models.CampaignRejected
	c.UpdatedAt = now

	claimed, err := cl.store.TransitionState(ctx, c, models.CampaignPendingApproval)
	if err != nil {
		return err
	}
	if !claimed {
		current, err := cl.store.GetByID(ctx, c.ID)
		if err != nil {
			return err
		}
		*c = *current
		if c.State == models.CampaignRejected {
			return nil
		}
		return transitionError(c.State, models.CampaignRejected)
	}

	return nil
}

// Activate moves an approved campaign to Active and starts its duration
// clock.
func (cl *CampaignLifecycle) Activate(ctx context.Context, c *models.BoostCampaign) error {
	switch c.State {
	case models.CampaignActive:
		return nil
	case models.CampaignApproved:
	default:
		return transitionError(c.State, models.CampaignActive)
	}

	now := cl.clock.Now().UTC()
	expires := now.AddDate(0, 0, c.DurationDays)
	c.State = models.CampaignActive
	c.ActivatedAt = &now
	c.ExpiresAt = &expires
	c.UpdatedAt = now

	claimed, err := cl.store.TransitionState(ctx, c, models.CampaignApproved)
	if err != nil {
		return err
	}
	if !claimed {
		current, err := cl.store.GetByID(ctx, c.ID)
		if err != nil {
			return err
		}
		*c = *current
		if c.State == models.CampaignActive {
			return nil
		}
		return transitionError(c.State, models.CampaignActive)
	}

	return nil
}

// ExpireIfDue moves an active campaign past its duration to Expired.
// Expiry is evaluated lazily, when the campaign is next read. The return
// value reports whether this call performed the transition; losing the
// persist claim to a concurrent reader is not an error.
func (cl *CampaignLifecycle) ExpireIfDue(ctx context.Context, c *models.BoostCampaign) (bool, error) {
	now := cl.clock.Now().UTC()
	if !c.ExpiryDue(now) {
		return false, nil
	}

	c.State = models.CampaignExpired
	c.UpdatedAt = now

	claimed, err := cl.store.TransitionState(ctx, c, models.CampaignActive)
	if err != nil {
		return false, err
	}
	if !claimed {
		current, err := cl.store.GetByID(ctx, c.ID)
		if err != nil {
			return false, err
		}
		*c = *current
		return false, nil
	}

	return true, nil
}

// requiredFeature maps a boost target to the entitlement feature needed to
// author that content type, when one applies.
func requiredFeature(target models.BoostTarget) (models.FeatureName, bool) {
	switch target {
	case models.BoostTargetArticle:
		return models.FeatureCreateArticles, true
	case models.BoostTargetPodcast:
		return models.FeatureCreatePodcasts, true
	default:
		return "", false
	}
}

func transitionError(from, to models.CampaignState) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}
