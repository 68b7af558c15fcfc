package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coindaily/entitlements/internal/clock"
	"github.com/coindaily/entitlements/internal/entitlement"
	"github.com/coindaily/entitlements/internal/ledger"
	"github.com/coindaily/entitlements/internal/models"
)

// memCampaignStore is an in-memory CampaignStore with the same claim
// semantics as the Postgres repository: a transition writes only while the
// stored state still matches.
type memCampaignStore struct {
	mu        sync.Mutex
	campaigns map[string]models.BoostCampaign
}

func newMemCampaignStore() *memCampaignStore {
	return &memCampaignStore{campaigns: make(map[string]models.BoostCampaign)}
}

func (s *memCampaignStore) put(c *models.BoostCampaign) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.campaigns[c.ID] = *c
}

func (s *memCampaignStore) GetByID(ctx context.Context, id string) (*models.BoostCampaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.campaigns[id]
	if !ok {
		return nil, fmt.Errorf("campaign %s not found", id)
	}
	return &c, nil
}

func (s *memCampaignStore) TransitionState(ctx context.Context, c *models.BoostCampaign, from models.CampaignState) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.campaigns[c.ID]
	if !ok || cur.State != from {
		return false, nil
	}
	s.campaigns[c.ID] = *c
	return true, nil
}

// stateOf reads the persisted state, bypassing the in-memory copy under test.
func (s *memCampaignStore) stateOf(t *testing.T, id string) models.CampaignState {
	t.Helper()
	c, err := s.GetByID(context.Background(), id)
	require.NoError(t, err)
	return c.State
}

type campaignFixture struct {
	lifecycle *CampaignLifecycle
	ledger    *ledger.Ledger
	store     *memCampaignStore
	clock     *clock.Fixed
}

func newCampaignFixture(t *testing.T, balance int64) *campaignFixture {
	t.Helper()
	clk := clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	l := ledger.New(ledger.NewMemStore(), clk)
	if balance > 0 {
		_, err := l.Credit(context.Background(), "owner-1", balance, models.ReasonTopUp, "")
		require.NoError(t, err)
	}
	store := newMemCampaignStore()
	return &campaignFixture{
		lifecycle: NewCampaignLifecycle(l, store, clk),
		ledger:    l,
		store:     store,
		clock:     clk,
	}
}

// submit runs Submit and persists the pending campaign, as the service layer
// does after a successful submission.
func (f *campaignFixture) submit(t *testing.T, c *models.BoostCampaign, ent *models.EffectiveEntitlement) {
	t.Helper()
	require.NoError(t, f.lifecycle.Submit(c, ent))
	f.store.put(c)
}

func draftCampaign() *models.BoostCampaign {
	return &models.BoostCampaign{
		ID:           "camp-1",
		OwnerID:      "owner-1",
		TargetType:   models.BoostTargetPost,
		Title:        "Promote my market recap",
		Position:     models.PositionTop,
		DurationDays: 1,
		State:        models.CampaignDraft,
	}
}

func basicEntitlement(t *testing.T) *models.EffectiveEntitlement {
	t.Helper()
	ent, err := entitlement.Resolve(&models.User{ID: "owner-1", Tier: models.TierBasic}, nil, time.Now())
	require.NoError(t, err)
	return ent
}

// User with balance 100 submits a 1-day top boost (cost 10): submission does
// not touch the balance; approval debits exactly 10, leaving 90 and one entry
// with delta -10.
func TestApprovalIsTheEconomicEvent(t *testing.T) {
	ctx := context.Background()
	f := newCampaignFixture(t, 100)
	c := draftCampaign()

	f.submit(t, c, basicEntitlement(t))
	assert.Equal(t, models.CampaignPendingApproval, c.State)
	assert.Equal(t, int64(10), c.Cost)

	balance, err := f.ledger.Balance(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance, "submission must not touch the balance")

	entry, err := f.lifecycle.Approve(ctx, c)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, int64(-10), entry.Delta)
	assert.Equal(t, models.ReasonBoostCharge, entry.Reason)
	assert.Equal(t, "camp-1", entry.CampaignID)
	assert.Equal(t, models.CampaignApproved, c.State)
	assert.Equal(t, models.CampaignApproved, f.store.stateOf(t, "camp-1"))

	balance, err = f.ledger.Balance(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, int64(90), balance)
}

// User with balance 5 cannot afford the 10-cost approval: the call fails with
// ErrInsufficientBalance, the balance stays 5, no entry is created and the
// campaign stays pending both in memory and in the store.
func TestApproveInsufficientFunds(t *testing.T) {
	ctx := context.Background()
	f := newCampaignFixture(t, 5)
	c := draftCampaign()

	f.submit(t, c, basicEntitlement(t))

	_, err := f.lifecycle.Approve(ctx, c)
	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)
	assert.Equal(t, models.CampaignPendingApproval, c.State)
	assert.Equal(t, models.CampaignPendingApproval, f.store.stateOf(t, "camp-1"),
		"a failed debit must release the approval claim")

	balance, err := f.ledger.Balance(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), balance)

	entries, err := f.ledger.History(ctx, "owner-1", 0, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1) // just the top-up

	// After a top-up the same campaign is still approvable.
	_, err = f.ledger.Credit(ctx, "owner-1", 100, models.ReasonTopUp, "")
	require.NoError(t, err)
	entry, err := f.lifecycle.Approve(ctx, c)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, models.CampaignApproved, f.store.stateOf(t, "camp-1"))
}

func TestDuplicateApprovalIsNoOp(t *testing.T) {
	ctx := context.Background()
	f := newCampaignFixture(t, 100)
	c := draftCampaign()

	f.submit(t, c, basicEntitlement(t))

	_, err := f.lifecycle.Approve(ctx, c)
	require.NoError(t, err)

	entry, err := f.lifecycle.Approve(ctx, c)
	require.NoError(t, err)
	assert.Nil(t, entry, "second approval must not debit again")

	balance, err := f.ledger.Balance(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, int64(90), balance)
}

// Two admins race to approve the same pending campaign, each holding their
// own copy of the row. Only the one that wins the state claim debits; the
// loser observes the completed approval as a no-op.
func TestConcurrentApprovalDebitsOnce(t *testing.T) {
	ctx := context.Background()
	f := newCampaignFixture(t, 100)
	c := draftCampaign()

	f.submit(t, c, basicEntitlement(t))

	stale := *c // second admin's read of the same pending row

	entry, err := f.lifecycle.Approve(ctx, c)
	require.NoError(t, err)
	require.NotNil(t, entry)

	entry2, err := f.lifecycle.Approve(ctx, &stale)
	require.NoError(t, err)
	assert.Nil(t, entry2, "losing the claim must not debit")
	assert.Equal(t, models.CampaignApproved, stale.State)

	balance, err := f.ledger.Balance(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, int64(90), balance, "owner must be charged exactly once")

	charges := 0
	entries, err := f.ledger.History(ctx, "owner-1", 0, 0)
	require.NoError(t, err)
	for _, e := range entries {
		if e.Reason == models.ReasonBoostCharge {
			charges++
		}
	}
	assert.Equal(t, 1, charges)
}

// A reject racing a completed approval loses the claim and must not clobber
// the approved state.
func TestRejectLosesRaceAgainstApproval(t *testing.T) {
	ctx := context.Background()
	f := newCampaignFixture(t, 100)
	c := draftCampaign()

	f.submit(t, c, basicEntitlement(t))
	stale := *c

	_, err := f.lifecycle.Approve(ctx, c)
	require.NoError(t, err)

	err = f.lifecycle.Reject(ctx, &stale)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, models.CampaignApproved, f.store.stateOf(t, "camp-1"))
}

func TestSubmitValidation(t *testing.T) {
	f := newCampaignFixture(t, 100)
	var vErr *models.ValidationError

	c := draftCampaign()
	c.Title = "   "
	err := f.lifecycle.Submit(c, basicEntitlement(t))
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "title", vErr.Field)
	assert.Equal(t, models.CampaignDraft, c.State)

	c = draftCampaign()
	c.DurationDays = 2
	err = f.lifecycle.Submit(c, basicEntitlement(t))
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "duration_days", vErr.Field)

	c = draftCampaign()
	c.Position = "sidebar"
	err = f.lifecycle.Submit(c, basicEntitlement(t))
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "position", vErr.Field)

	c = draftCampaign()
	c.TargetType = "banner"
	err = f.lifecycle.Submit(c, basicEntitlement(t))
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "target_type", vErr.Field)
}

func TestSubmitRequiresEntitlement(t *testing.T) {
	f := newCampaignFixture(t, 100)

	// Free tier cannot boost at all.
	freeEnt, err := entitlement.Resolve(&models.User{ID: "owner-1", Tier: models.TierFree}, nil, time.Now())
	require.NoError(t, err)
	c := draftCampaign()
	assert.ErrorIs(t, f.lifecycle.Submit(c, freeEnt), ErrFeatureNotAllowed)

	// Basic tier can boost posts but not podcasts.
	c = draftCampaign()
	c.TargetType = models.BoostTargetPodcast
	assert.ErrorIs(t, f.lifecycle.Submit(c, basicEntitlement(t)), ErrFeatureNotAllowed)
}

func TestRejectPerformsNoLedgerMutation(t *testing.T) {
	ctx := context.Background()
	f := newCampaignFixture(t, 100)
	c := draftCampaign()

	f.submit(t, c, basicEntitlement(t))
	require.NoError(t, f.lifecycle.Reject(ctx, c))
	assert.Equal(t, models.CampaignRejected, c.State)
	assert.Equal(t, models.CampaignRejected, f.store.stateOf(t, "camp-1"))

	balance, err := f.ledger.Balance(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance)

	// Terminal re-entry is a no-op.
	require.NoError(t, f.lifecycle.Reject(ctx, c))

	// Approving a rejected campaign is a genuinely illegal transition.
	_, err = f.lifecycle.Approve(ctx, c)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestActivateAndLazyExpiry(t *testing.T) {
	ctx := context.Background()
	f := newCampaignFixture(t, 100)
	c := draftCampaign()

	f.submit(t, c, basicEntitlement(t))
	_, err := f.lifecycle.Approve(ctx, c)
	require.NoError(t, err)

	require.NoError(t, f.lifecycle.Activate(ctx, c))
	assert.Equal(t, models.CampaignActive, c.State)
	require.NotNil(t, c.ExpiresAt)
	assert.Equal(t, models.CampaignActive, f.store.stateOf(t, "camp-1"))

	// Not yet due.
	expired, err := f.lifecycle.ExpireIfDue(ctx, c)
	require.NoError(t, err)
	assert.False(t, expired)
	assert.Equal(t, models.CampaignActive, c.State)

	f.clock.Advance(25 * time.Hour)
	expired, err = f.lifecycle.ExpireIfDue(ctx, c)
	require.NoError(t, err)
	assert.True(t, expired)
	assert.Equal(t, models.CampaignExpired, c.State)
	assert.Equal(t, models.CampaignExpired, f.store.stateOf(t, "camp-1"))

	// Expired is terminal and idempotent.
	expired, err = f.lifecycle.ExpireIfDue(ctx, c)
	require.NoError(t, err)
	assert.False(t, expired)
	assert.ErrorIs(t, f.lifecycle.Activate(ctx, c), ErrInvalidTransition)
}

func TestActivateFromDraftIsIllegal(t *testing.T) {
	ctx := context.Background()
	f := newCampaignFixture(t, 100)
	c := draftCampaign()
	assert.ErrorIs(t, f.lifecycle.Activate(ctx, c), ErrInvalidTransition)
}
