package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coindaily/entitlements/internal/clock"
	"github.com/coindaily/entitlements/internal/models"
)

func newTestLedger() *Ledger {
	clk := clock.NewFixed(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	return New(NewMemStore(), clk)
}

func TestCreditThenDebit(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger()

	entry, err := l.Credit(ctx, "user-1", 100, models.ReasonTopUp, "")
	require.NoError(t, err)
	assert.Equal(t, int64(100), entry.Delta)
	assert.NotEmpty(t, entry.ID)

	entry, err = l.Debit(ctx, "user-1", 40, models.ReasonBoostCharge, "camp-1")
	require.NoError(t, err)
	assert.Equal(t, int64(-40), entry.Delta)
	assert.Equal(t, "camp-1", entry.CampaignID)

	balance, err := l.Balance(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(60), balance)
}

func TestDebitInsufficientBalance(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger()

	_, err := l.Credit(ctx, "user-1", 5, models.ReasonTopUp, "")
	require.NoError(t, err)

	_, err = l.Debit(ctx, "user-1", 10, models.ReasonBoostCharge, "camp-1")
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// Balance unchanged, no entry appended.
	balance, err := l.Balance(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), balance)

	entries, err := l.History(ctx, "user-1", 0, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDebitUnknownUser(t *testing.T) {
	l := newTestLedger()
	_, err := l.Debit(context.Background(), "ghost", 1, models.ReasonBoostCharge, "")
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestMutationAmountValidation(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger()
	var vErr *models.ValidationError

	_, err := l.Debit(ctx, "user-1", 0, models.ReasonBoostCharge, "")
	assert.ErrorAs(t, err, &vErr)

	_, err = l.Debit(ctx, "user-1", -5, models.ReasonBoostCharge, "")
	assert.ErrorAs(t, err, &vErr)

	_, err = l.Credit(ctx, "user-1", 0, models.ReasonTopUp, "")
	assert.ErrorAs(t, err, &vErr)
}

// The sum of all entry deltas for a user always equals the current balance.
func TestLedgerConservation(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger()

	_, err := l.Credit(ctx, "user-1", 500, models.ReasonTopUp, "")
	require.NoError(t, err)
	_, err = l.Debit(ctx, "user-1", 120, models.ReasonBoostCharge, "camp-1")
	require.NoError(t, err)
	_, err = l.Credit(ctx, "user-1", 30, models.ReasonStakingReward, "")
	require.NoError(t, err)
	_, err = l.Debit(ctx, "user-1", 600, models.ReasonBoostCharge, "camp-2")
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	_, err = l.Debit(ctx, "user-1", 200, models.ReasonStake, "")
	require.NoError(t, err)

	entries, err := l.History(ctx, "user-1", 0, 0)
	require.NoError(t, err)

	var sum int64
	for _, e := range entries {
		sum += e.Delta
	}

	balance, err := l.Balance(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, balance, sum)
	assert.Equal(t, int64(210), balance)
}

func TestHistoryNewestFirstWithPaging(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger()

	for i := 0; i < 5; i++ {
		_, err := l.Credit(ctx, "user-1", int64(i+1), models.ReasonTopUp, "")
		require.NoError(t, err)
	}

	entries, err := l.History(ctx, "user-1", 2, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(5), entries[0].Delta)
	assert.Equal(t, int64(4), entries[1].Delta)

	entries, err = l.History(ctx, "user-1", 2, 4)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1), entries[0].Delta)

	entries, err = l.History(ctx, "user-1", 10, 99)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// Many concurrent debits against one account must never drive the balance
// negative: exactly balance/amount of them can succeed.
func TestConcurrentDebitsNeverOverspend(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger()

	_, err := l.Credit(ctx, "user-1", 100, models.ReasonTopUp, "")
	require.NoError(t, err)

	const workers = 50
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.Debit(ctx, "user-1", 10, models.ReasonBoostCharge, ""); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)

	balance, err := l.Balance(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
	assert.GreaterOrEqual(t, balance, int64(0))
}

func TestEntryTimestampFromClock(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	clk := clock.NewFixed(now)
	l := New(NewMemStore(), clk)

	entry, err := l.Credit(ctx, "user-1", 10, models.ReasonTopUp, "")
	require.NoError(t, err)
	assert.Equal(t, now, entry.CreatedAt)

	clk.Advance(time.Hour)
	entry, err = l.Credit(ctx, "user-1", 10, models.ReasonTopUp, "")
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), entry.CreatedAt)
}
