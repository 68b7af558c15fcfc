package service

import (
	"context"
	"log"

	"github.com/coindaily/entitlements/internal/lifecycle"
	"github.com/coindaily/entitlements/internal/models"
	"github.com/coindaily/entitlements/internal/pricing"
	"github.com/coindaily/entitlements/internal/repository"
)

// BoostService handles boost campaign pricing, submission and lifecycle.
type BoostService struct {
	campaigns    *repository.CampaignRepository
	entitlements *EntitlementService
	lifecycle    *lifecycle.CampaignLifecycle
}

// NewBoostService creates a new boost service
func NewBoostService(
	campaigns *repository.CampaignRepository,
	entitlements *EntitlementService,
	lc *lifecycle.CampaignLifecycle,
) *BoostService {
	return &BoostService{
		campaigns:    campaigns,
		entitlements: entitlements,
		lifecycle:    lc,
	}
}

// Price quotes the JOY cost of a boost without creating anything.
func (s *BoostService) Price(durationDays int, position models.BoostPosition) (int64, error) {
	return pricing.BoostCost(durationDays, position)
}

// PriceTable returns the full boost price table keyed by duration.
func (s *BoostService) PriceTable() map[int]map[models.BoostPosition]int64 {
	table := make(map[int]map[models.BoostPosition]int64, len(pricing.BoostDurations))
	for _, days := range pricing.BoostDurations {
		row := make(map[models.BoostPosition]int64, 3)
		for _, pos := range []models.BoostPosition{models.PositionTop, models.PositionFeatured, models.PositionTrending} {
			cost, err := pricing.BoostCost(days, pos)
			if err != nil {
				continue
			}
			row[pos] = cost
		}
		table[days] = row
	}
	return table
}

// Submit validates a new boost campaign against the owner's entitlement,
// pins its cost from the price table, and stores it pending admin approval.
// No tokens are deducted here.
func (s *BoostService) Submit(ctx context.Context, c *models.BoostCampaign) (*models.BoostCampaign, error) {
	ent, err := s.entitlements.GetEffective(ctx, c.OwnerID)
	if err != nil {
		return nil, err
	}

	c.State = models.CampaignDraft
	if err := s.lifecycle.Submit(c, ent); err != nil {
		return nil, err
	}

	if err := s.campaigns.Create(ctx, c); err != nil {
		return nil, err
	}

	log.Printf("[boost] Campaign %s submitted by %s (%s/%s, %dd, cost=%d)",
		c.ID, c.OwnerID, c.TargetType, c.Position, c.DurationDays, c.Cost)
	return c, nil
}

// Approve debits the owner for the pinned cost and moves the campaign to
// Approved. The lifecycle claims the state transition before debiting, so an
// insufficient balance leaves the campaign pending and a duplicate approval
// never charges twice.
func (s *BoostService) Approve(ctx context.Context, campaignID string) (*models.BoostCampaign, error) {
	c, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	entry, err := s.lifecycle.Approve(ctx, c)
	if err != nil {
		return nil, err
	}
	if entry != nil {
		log.Printf("[boost] Campaign %s approved, charged %d JOY from %s", c.ID, c.Cost, c.OwnerID)
	}

	return c, nil
}

// Reject moves a pending campaign to Rejected without touching the ledger.
func (s *BoostService) Reject(ctx context.Context, campaignID string) (*models.BoostCampaign, error) {
	c, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	if err := s.lifecycle.Reject(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

// Activate moves an approved campaign to Active and starts its duration
// clock.
func (s *BoostService) Activate(ctx context.Context, campaignID string) (*models.BoostCampaign, error) {
	c, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	if err := s.lifecycle.Activate(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

// Get returns a campaign, expiring it first if its duration has run out.
func (s *BoostService) Get(ctx context.Context, campaignID string) (*models.BoostCampaign, error) {
	c, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	s.expireIfDue(ctx, c)
	return c, nil
}

// ListByOwner returns a user's campaigns, applying lazy expiry to each.
func (s *BoostService) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]models.BoostCampaign, int, error) {
	campaigns, total, err := s.campaigns.ListByOwner(ctx, ownerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	for i := range campaigns {
		s.expireIfDue(ctx, &campaigns[i])
	}

	return campaigns, total, nil
}

// ListPending returns campaigns awaiting admin review, oldest first.
func (s *BoostService) ListPending(ctx context.Context, limit, offset int) ([]models.BoostCampaign, error) {
	return s.campaigns.ListPending(ctx, limit, offset)
}

func (s *BoostService) expireIfDue(ctx context.Context, c *models.BoostCampaign) {
	if _, err := s.lifecycle.ExpireIfDue(ctx, c); err != nil {
		log.Printf("[boost] Failed to persist expiry of campaign %s: %v", c.ID, err)
	}
}
