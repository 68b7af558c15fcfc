package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coindaily/entitlements/internal/clock"
	"github.com/coindaily/entitlements/internal/models"
)

func newAirdropFixture() (*AirdropLifecycle, *clock.Fixed) {
	clk := clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	return NewAirdropLifecycle(clk), clk
}

func draftAirdrop() *models.Airdrop {
	return &models.Airdrop{
		ID:               "drop-1",
		CreatorID:        "creator-1",
		Title:            "Community launch airdrop",
		TokenName:        "JOY",
		TotalAmount:      10000,
		RecipientCount:   2547,
		DistributionType: models.DistributionEqual,
		State:            models.AirdropDraft,
	}
}

func TestAirdropHappyPath(t *testing.T) {
	al, _ := newAirdropFixture()
	a := draftAirdrop()

	require.NoError(t, al.Schedule(a))
	assert.Equal(t, models.AirdropScheduled, a.State)

	require.NoError(t, al.Activate(a))
	assert.Equal(t, models.AirdropActive, a.State)

	require.NoError(t, al.Complete(a))
	assert.Equal(t, models.AirdropCompleted, a.State)

	// Terminal re-entry is a no-op.
	require.NoError(t, al.Complete(a))
}

func TestAirdropScheduleValidation(t *testing.T) {
	al, _ := newAirdropFixture()
	var vErr *models.ValidationError

	a := draftAirdrop()
	a.Title = ""
	err := al.Schedule(a)
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "title", vErr.Field)
	assert.Equal(t, models.AirdropDraft, a.State)

	a = draftAirdrop()
	a.TotalAmount = 0
	err = al.Schedule(a)
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "total_amount", vErr.Field)

	a = draftAirdrop()
	a.RecipientCount = -1
	err = al.Schedule(a)
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "recipient_count", vErr.Field)

	a = draftAirdrop()
	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)
	a.StartDate = &start
	a.EndDate = &end
	err = al.Schedule(a)
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "end_date", vErr.Field)
}

func TestAirdropScheduleWithOnlyOneDate(t *testing.T) {
	al, _ := newAirdropFixture()

	a := draftAirdrop()
	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	a.StartDate = &start
	require.NoError(t, al.Schedule(a))

	a = draftAirdrop()
	end := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	a.EndDate = &end
	require.NoError(t, al.Schedule(a))
}

func TestAirdropIllegalTransitions(t *testing.T) {
	al, _ := newAirdropFixture()

	a := draftAirdrop()
	assert.ErrorIs(t, al.Activate(a), ErrInvalidTransition)
	assert.ErrorIs(t, al.Complete(a), ErrInvalidTransition)

	require.NoError(t, al.Schedule(a))
	assert.ErrorIs(t, al.Complete(a), ErrInvalidTransition)

	// Re-scheduling a scheduled airdrop is a no-op.
	require.NoError(t, al.Schedule(a))
}

func TestAirdropLazyCompletion(t *testing.T) {
	al, clk := newAirdropFixture()
	a := draftAirdrop()

	end := clk.Now().Add(48 * time.Hour)
	a.EndDate = &end

	require.NoError(t, al.Schedule(a))
	require.NoError(t, al.Activate(a))

	assert.False(t, al.CompleteIfDue(a))
	assert.Equal(t, models.AirdropActive, a.State)

	clk.Advance(49 * time.Hour)
	assert.True(t, al.CompleteIfDue(a))
	assert.Equal(t, models.AirdropCompleted, a.State)
	assert.False(t, al.CompleteIfDue(a))
}
