package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coindaily/entitlements/internal/clock"
	"github.com/coindaily/entitlements/internal/ledger"
	"github.com/coindaily/entitlements/internal/lifecycle"
	"github.com/coindaily/entitlements/internal/models"
	"github.com/coindaily/entitlements/internal/repository"
)

// memStakeStore is an in-memory StakeStore for exercising the service
// without Postgres.
type memStakeStore struct {
	mu        sync.Mutex
	positions map[string]models.StakePosition
}

func newMemStakeStore() *memStakeStore {
	return &memStakeStore{positions: make(map[string]models.StakePosition)}
}

func (s *memStakeStore) Get(ctx context.Context, userID string) (*models.StakePosition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.positions[userID]
	if !ok {
		return nil, repository.ErrStakeNotFound
	}
	return &p, nil
}

func (s *memStakeStore) Upsert(ctx context.Context, p *models.StakePosition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions[p.UserID] = *p
	return nil
}

func (s *memStakeStore) Delete(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.positions[userID]; !ok {
		return repository.ErrStakeNotFound
	}
	delete(s.positions, userID)
	return nil
}

// stored reads the persisted position, bypassing the copy the service holds.
func (s *memStakeStore) stored(t *testing.T, userID string) models.StakePosition {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.positions[userID]
	require.True(t, ok, "no stored position for %s", userID)
	return p
}

type grantStaking struct{}

func (grantStaking) GetEffective(ctx context.Context, userID string) (*models.EffectiveEntitlement, error) {
	return &models.EffectiveEntitlement{
		Tier:     models.TierBasic,
		Features: map[models.FeatureName]bool{models.FeatureStakeTokens: true},
	}, nil
}

type denyStaking struct{}

func (denyStaking) GetEffective(ctx context.Context, userID string) (*models.EffectiveEntitlement, error) {
	return &models.EffectiveEntitlement{
		Tier:     models.TierFree,
		Features: map[models.FeatureName]bool{},
	}, nil
}

type stakingFixture struct {
	service *StakingService
	ledger  *ledger.Ledger
	stakes  *memStakeStore
	clock   *clock.Fixed
}

// newStakingFixture builds a staking service at 12% APY over in-memory
// stores, crediting user-1 with the given spendable balance.
func newStakingFixture(t *testing.T, balance int64) *stakingFixture {
	t.Helper()
	clk := clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	l := ledger.New(ledger.NewMemStore(), clk)
	if balance > 0 {
		_, err := l.Credit(context.Background(), "user-1", balance, models.ReasonTopUp, "")
		require.NoError(t, err)
	}
	stakes := newMemStakeStore()
	return &stakingFixture{
		service: NewStakingService(stakes, l, grantStaking{}, clk, 0.12),
		ledger:  l,
		stakes:  stakes,
		clock:   clk,
	}
}

// seedPosition stores an existing position whose accrual window starts at the
// fixture clock's current instant.
func (f *stakingFixture) seedPosition(principal int64) {
	now := f.clock.Now().UTC()
	f.stakes.positions["user-1"] = models.StakePosition{
		UserID:        "user-1",
		Principal:     principal,
		StakedAt:      now,
		LastClaimedAt: now,
	}
}

func (f *stakingFixture) balance(t *testing.T) int64 {
	t.Helper()
	balance, err := f.ledger.Balance(context.Background(), "user-1")
	require.NoError(t, err)
	return balance
}

// halfYear advances the clock by exactly half the accrual year, so 1000 JOY
// at 12% APY accrues a reward of 60.
func (f *stakingFixture) halfYear() {
	f.clock.Advance(365 * 12 * time.Hour)
}

func TestStakeDebitsPrincipal(t *testing.T) {
	ctx := context.Background()
	f := newStakingFixture(t, 500)

	p, err := f.service.Stake(ctx, "user-1", 200)
	require.NoError(t, err)
	assert.Equal(t, int64(200), p.Principal)
	assert.Equal(t, int64(300), f.balance(t))
	assert.Equal(t, int64(200), f.stakes.stored(t, "user-1").Principal)
}

// An unaffordable stake must fail before any accrued reward moves: the
// stored accrual window stays where it was, and the reward for that interval
// is paid exactly once by the next successful settle.
func TestUnaffordableStakeLeavesAccrualWindowIntact(t *testing.T) {
	ctx := context.Background()
	f := newStakingFixture(t, 10)
	f.seedPosition(1000)
	windowStart := f.stakes.stored(t, "user-1").LastClaimedAt

	f.halfYear()

	_, err := f.service.Stake(ctx, "user-1", 200)
	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)
	assert.Equal(t, int64(10), f.balance(t), "a failed stake must not pay out the pending reward")
	assert.Equal(t, windowStart, f.stakes.stored(t, "user-1").LastClaimedAt,
		"a failed stake must not advance the accrual window")

	reward, err := f.service.Claim(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(60), reward)
	assert.Equal(t, int64(70), f.balance(t))

	// The interval is spent; claiming again pays nothing.
	reward, err = f.service.Claim(ctx, "user-1")
	require.NoError(t, err)
	assert.Zero(t, reward)
	assert.Equal(t, int64(70), f.balance(t))
}

func TestClaimPersistsAdvancedWindow(t *testing.T) {
	ctx := context.Background()
	f := newStakingFixture(t, 0)
	f.seedPosition(1000)

	f.halfYear()

	reward, err := f.service.Claim(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(60), reward)
	assert.Equal(t, f.clock.Now().UTC(), f.stakes.stored(t, "user-1").LastClaimedAt)

	reward, err = f.service.Claim(ctx, "user-1")
	require.NoError(t, err)
	assert.Zero(t, reward, "a claimed interval must not pay twice")
	assert.Equal(t, int64(60), f.balance(t))
}

// Staking on top of an existing position settles the old principal's reward
// first, so the new principal does not earn retroactively.
func TestStakeSettlesExistingPrincipalFirst(t *testing.T) {
	ctx := context.Background()
	f := newStakingFixture(t, 500)
	f.seedPosition(1000)

	f.halfYear()

	p, err := f.service.Stake(ctx, "user-1", 200)
	require.NoError(t, err)
	assert.Equal(t, int64(1200), p.Principal)
	// 500 - 200 staked + 60 reward on the old principal.
	assert.Equal(t, int64(360), f.balance(t))

	stored := f.stakes.stored(t, "user-1")
	assert.Equal(t, int64(1200), stored.Principal)
	assert.Equal(t, f.clock.Now().UTC(), stored.LastClaimedAt)
}

func TestUnstakeReturnsPrincipalAndSettlesReward(t *testing.T) {
	ctx := context.Background()
	f := newStakingFixture(t, 0)
	f.seedPosition(1000)

	f.halfYear()

	p, err := f.service.Unstake(ctx, "user-1", 1000)
	require.NoError(t, err)
	assert.Zero(t, p.Principal)
	assert.Equal(t, int64(1060), f.balance(t))

	// Unstaking everything removes the position.
	_, err = f.service.Position(ctx, "user-1")
	assert.ErrorIs(t, err, ErrNothingStaked)
}

func TestUnstakeMoreThanPrincipal(t *testing.T) {
	ctx := context.Background()
	f := newStakingFixture(t, 0)
	f.seedPosition(100)

	var vErr *models.ValidationError
	_, err := f.service.Unstake(ctx, "user-1", 101)
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "amount", vErr.Field)
	assert.Equal(t, int64(100), f.stakes.stored(t, "user-1").Principal)
}

func TestStakeRequiresEntitlement(t *testing.T) {
	ctx := context.Background()
	f := newStakingFixture(t, 500)
	f.service = NewStakingService(f.stakes, f.ledger, denyStaking{}, f.clock, 0.12)

	_, err := f.service.Stake(ctx, "user-1", 200)
	assert.ErrorIs(t, err, lifecycle.ErrFeatureNotAllowed)
	assert.Equal(t, int64(500), f.balance(t))
}

func TestUnstakeAndClaimWithNoPosition(t *testing.T) {
	ctx := context.Background()
	f := newStakingFixture(t, 0)

	_, err := f.service.Unstake(ctx, "user-1", 10)
	assert.ErrorIs(t, err, ErrNothingStaked)

	_, err = f.service.Claim(ctx, "user-1")
	assert.ErrorIs(t, err, ErrNothingStaked)
}
