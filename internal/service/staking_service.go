package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/coindaily/entitlements/internal/clock"
	"github.com/coindaily/entitlements/internal/ledger"
	"github.com/coindaily/entitlements/internal/lifecycle"
	"github.com/coindaily/entitlements/internal/models"
	"github.com/coindaily/entitlements/internal/pricing"
	"github.com/coindaily/entitlements/internal/repository"
)

// ErrNothingStaked is returned when a user with no stake position tries to
// unstake or claim.
var ErrNothingStaked = errors.New("nothing staked")

// StakeStore persists stake positions.
type StakeStore interface {
	Get(ctx context.Context, userID string) (*models.StakePosition, error)
	Upsert(ctx context.Context, p *models.StakePosition) error
	Delete(ctx context.Context, userID string) error
}

// EntitlementSource resolves a user's effective entitlement.
type EntitlementSource interface {
	GetEffective(ctx context.Context, userID string) (*models.EffectiveEntitlement, error)
}

// StakingService handles staking JOY tokens and on-demand reward accrual.
// Rewards are settled whenever the principal changes, so an interval's reward
// is always computed against the principal that was actually staked for it.
type StakingService struct {
	stakes       StakeStore
	ledger       *ledger.Ledger
	entitlements EntitlementSource
	clock        clock.Clock
	apy          float64
}

// NewStakingService creates a new staking service
func NewStakingService(
	stakes StakeStore,
	l *ledger.Ledger,
	entitlements EntitlementSource,
	clk clock.Clock,
	apy float64,
) *StakingService {
	return &StakingService{
		stakes:       stakes,
		ledger:       l,
		entitlements: entitlements,
		clock:        clk,
		apy:          apy,
	}
}

// PositionView is a stake position with its unclaimed reward preview.
type PositionView struct {
	Position      *models.StakePosition `json:"position"`
	AccruedReward int64                 `json:"accrued_reward"`
	APY           float64               `json:"apy"`
}

// Position returns the user's stake position with the reward accrued since
// the last claim. Returns ErrNothingStaked when the user has no position.
func (s *StakingService) Position(ctx context.Context, userID string) (*PositionView, error) {
	p, err := s.stakes.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrStakeNotFound) {
			return nil, ErrNothingStaked
		}
		return nil, err
	}

	return &PositionView{
		Position:      p,
		AccruedReward: s.accrued(p),
		APY:           s.apy,
	}, nil
}

// Stake moves amount JOY from the user's spendable balance into their stake
// position. The stake is debited before any accrued reward is settled: a
// stake the user cannot afford fails without paying anything out, leaving the
// accrual window untouched for the next settle.
func (s *StakingService) Stake(ctx context.Context, userID string, amount int64) (*models.StakePosition, error) {
	if amount <= 0 {
		return nil, models.NewValidationError("amount", "stake amount must be positive")
	}

	ent, err := s.entitlements.GetEffective(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ent.HasFeature(models.FeatureStakeTokens) {
		return nil, fmt.Errorf("%w: staking requires feature %s",
			lifecycle.ErrFeatureNotAllowed, models.FeatureStakeTokens)
	}

	now := s.clock.Now().UTC()
	p, err := s.stakes.Get(ctx, userID)
	if errors.Is(err, repository.ErrStakeNotFound) {
		p = &models.StakePosition{UserID: userID, StakedAt: now, LastClaimedAt: now}
	} else if err != nil {
		return nil, err
	}

	if _, err := s.ledger.Debit(ctx, userID, amount, models.ReasonStake, ""); err != nil {
		return nil, err
	}

	if p.Principal > 0 {
		if _, err := s.settle(ctx, p); err != nil {
			return nil, err
		}
	}

	p.Principal += amount
	if err := s.stakes.Upsert(ctx, p); err != nil {
		return nil, err
	}

	log.Printf("[staking] %s staked %d JOY (principal now %d)", userID, amount, p.Principal)
	return p, nil
}

// Unstake returns amount JOY from the stake position to the spendable
// balance, settling accrued rewards first. Unstaking more than the principal
// is a validation error; unstaking everything removes the position.
func (s *StakingService) Unstake(ctx context.Context, userID string, amount int64) (*models.StakePosition, error) {
	if amount <= 0 {
		return nil, models.NewValidationError("amount", "unstake amount must be positive")
	}

	p, err := s.stakes.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrStakeNotFound) {
			return nil, ErrNothingStaked
		}
		return nil, err
	}

	if amount > p.Principal {
		return nil, models.NewValidationError("amount", "cannot unstake more than the staked principal")
	}

	if _, err := s.settle(ctx, p); err != nil {
		return nil, err
	}

	if _, err := s.ledger.Credit(ctx, userID, amount, models.ReasonUnstake, ""); err != nil {
		return nil, err
	}

	p.Principal -= amount
	if p.Principal == 0 {
		if err := s.stakes.Delete(ctx, userID); err != nil {
			return nil, err
		}
	} else if err := s.stakes.Upsert(ctx, p); err != nil {
		return nil, err
	}

	log.Printf("[staking] %s unstaked %d JOY (principal now %d)", userID, amount, p.Principal)
	return p, nil
}

// Claim credits the reward accrued since the last claim to the user's
// spendable balance. A zero accrual is not an error; it just claims nothing.
func (s *StakingService) Claim(ctx context.Context, userID string) (int64, error) {
	p, err := s.stakes.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrStakeNotFound) {
			return 0, ErrNothingStaked
		}
		return 0, err
	}

	reward, err := s.settle(ctx, p)
	if err != nil {
		return 0, err
	}

	if reward > 0 {
		log.Printf("[staking] %s claimed %d JOY reward", userID, reward)
	}
	return reward, nil
}

// accrued computes the reward earned since the last claim at the platform APY.
func (s *StakingService) accrued(p *models.StakePosition) int64 {
	elapsed := s.clock.Now().UTC().Sub(p.LastClaimedAt)
	return pricing.StakingReward(p.Principal, s.apy, elapsed)
}

// settle credits any accrued reward and persists the advanced accrual window
// in the same step. An interval that has paid out is never available to a
// later settle, and a failed credit leaves the window where it was.
func (s *StakingService) settle(ctx context.Context, p *models.StakePosition) (int64, error) {
	now := s.clock.Now().UTC()
	reward := pricing.StakingReward(p.Principal, s.apy, now.Sub(p.LastClaimedAt))
	if reward > 0 {
		if _, err := s.ledger.Credit(ctx, p.UserID, reward, models.ReasonStakingReward, ""); err != nil {
			return 0, err
		}
	}
	p.LastClaimedAt = now
	if err := s.stakes.Upsert(ctx, p); err != nil {
		return 0, err
	}
	return reward, nil
}
