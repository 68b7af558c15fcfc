package service

import (
	"context"
	"fmt"
	"log"

	"github.com/coindaily/entitlements/internal/lifecycle"
	"github.com/coindaily/entitlements/internal/models"
	"github.com/coindaily/entitlements/internal/pricing"
	"github.com/coindaily/entitlements/internal/repository"
)

// AirdropService handles airdrop creation and lifecycle. Creating an airdrop
// gates on the creator's entitlement but never debits the JOY ledger; the
// distributed token is funded out of band.
type AirdropService struct {
	airdrops     *repository.AirdropRepository
	entitlements *EntitlementService
	lifecycle    *lifecycle.AirdropLifecycle
}

// NewAirdropService creates a new airdrop service
func NewAirdropService(
	airdrops *repository.AirdropRepository,
	entitlements *EntitlementService,
	lc *lifecycle.AirdropLifecycle,
) *AirdropService {
	return &AirdropService{
		airdrops:     airdrops,
		entitlements: entitlements,
		lifecycle:    lc,
	}
}

// PerRecipientShare quotes how much each recipient of an airdrop receives.
func (s *AirdropService) PerRecipientShare(totalAmount float64, recipientCount int) (float64, error) {
	return pricing.PerRecipientShare(totalAmount, recipientCount)
}

// Create validates and stores a new airdrop in the Scheduled state. The
// creator needs the create_airdrops feature; distribution type and any
// recipient requirements must come from their closed sets.
func (s *AirdropService) Create(ctx context.Context, a *models.Airdrop) (*models.Airdrop, error) {
	ent, err := s.entitlements.GetEffective(ctx, a.CreatorID)
	if err != nil {
		return nil, err
	}
	if !ent.HasFeature(models.FeatureCreateAirdrops) {
		return nil, fmt.Errorf("%w: creating airdrops requires feature %s",
			lifecycle.ErrFeatureNotAllowed, models.FeatureCreateAirdrops)
	}

	if a.DistributionType == "" {
		a.DistributionType = models.DistributionEqual
	}
	if !models.IsValidDistributionType(a.DistributionType) {
		return nil, models.NewValidationError("distribution_type", "must be equal, weighted or random")
	}
	for _, req := range a.Requirements {
		if !models.IsValidRequirement(req) {
			return nil, models.NewValidationError("requirements", fmt.Sprintf("unknown requirement %q", req))
		}
	}

	a.State = models.AirdropDraft
	if err := s.lifecycle.Schedule(a); err != nil {
		return nil, err
	}

	if err := s.airdrops.Create(ctx, a); err != nil {
		return nil, err
	}

	share, _ := pricing.PerRecipientShare(a.TotalAmount, a.RecipientCount)
	log.Printf("[airdrop] Airdrop %s created by %s (%s, %.4f x %d recipients = %.4f each)",
		a.ID, a.CreatorID, a.TokenName, a.TotalAmount, a.RecipientCount, share)
	return a, nil
}

// Activate moves a scheduled airdrop to Active.
func (s *AirdropService) Activate(ctx context.Context, airdropID string) (*models.Airdrop, error) {
	a, err := s.airdrops.GetByID(ctx, airdropID)
	if err != nil {
		return nil, err
	}

	if err := s.lifecycle.Activate(a); err != nil {
		return nil, err
	}

	if err := s.airdrops.Update(ctx, a); err != nil {
		return nil, err
	}

	return a, nil
}

// Complete moves an active airdrop to the Completed terminal state.
func (s *AirdropService) Complete(ctx context.Context, airdropID string) (*models.Airdrop, error) {
	a, err := s.airdrops.GetByID(ctx, airdropID)
	if err != nil {
		return nil, err
	}

	if err := s.lifecycle.Complete(a); err != nil {
		return nil, err
	}

	if err := s.airdrops.Update(ctx, a); err != nil {
		return nil, err
	}

	return a, nil
}

// Get returns an airdrop, completing it first if its end date has passed.
func (s *AirdropService) Get(ctx context.Context, airdropID string) (*models.Airdrop, error) {
	a, err := s.airdrops.GetByID(ctx, airdropID)
	if err != nil {
		return nil, err
	}

	s.completeIfDue(ctx, a)
	return a, nil
}

// ListByCreator returns a user's airdrops, applying lazy completion to each.
func (s *AirdropService) ListByCreator(ctx context.Context, creatorID string, limit, offset int) ([]models.Airdrop, int, error) {
	airdrops, total, err := s.airdrops.ListByCreator(ctx, creatorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	for i := range airdrops {
		s.completeIfDue(ctx, &airdrops[i])
	}

	return airdrops, total, nil
}

func (s *AirdropService) completeIfDue(ctx context.Context, a *models.Airdrop) {
	if !s.lifecycle.CompleteIfDue(a) {
		return
	}
	if err := s.airdrops.Update(ctx, a); err != nil {
		log.Printf("[airdrop] Failed to persist completion of airdrop %s: %v", a.ID, err)
	}
}
