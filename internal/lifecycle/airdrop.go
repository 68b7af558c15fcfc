package lifecycle

import (
	"fmt"
	"strings"

	"github.com/coindaily/entitlements/internal/clock"
	"github.com/coindaily/entitlements/internal/models"
)

// AirdropLifecycle owns airdrop state transitions: Draft -> Scheduled ->
// Active -> Completed. Creating or scheduling an airdrop does not debit the
// creator's JOY balance; the distributed token is funded out of band.
type AirdropLifecycle struct {
	clock clock.Clock
}

// NewAirdropLifecycle creates an airdrop lifecycle.
func NewAirdropLifecycle(clk clock.Clock) *AirdropLifecycle {
	return &AirdropLifecycle{clock: clk}
}

// Schedule validates a draft airdrop and moves it to Scheduled.
func (al *AirdropLifecycle) Schedule(a *models.Airdrop) error {
	switch a.State {
	case models.AirdropScheduled:
		return nil
	case models.AirdropDraft:
	default:
		return airdropTransitionError(a.State, models.AirdropScheduled)
	}

	if strings.TrimSpace(a.Title) == "" {
		return models.NewValidationError("title", "must not be empty")
	}
	if a.TotalAmount <= 0 {
		return models.NewValidationError("total_amount", "must be greater than zero")
	}
	if a.RecipientCount <= 0 {
		return models.NewValidationError("recipient_count", "must be a positive integer")
	}
	if a.StartDate != nil && a.EndDate != nil && !a.StartDate.Before(*a.EndDate) {
		return models.NewValidationError("end_date", "must be after start date")
	}

	a.State = models.AirdropScheduled
	a.UpdatedAt = al.clock.Now().UTC()
	return nil
}

// Activate moves a scheduled airdrop to Active.
func (al *AirdropLifecycle) Activate(a *models.Airdrop) error {
	switch a.State {
	case models.AirdropActive:
		return nil
	case models.AirdropScheduled:
	default:
		return airdropTransitionError(a.State, models.AirdropActive)
	}

	a.State = models.AirdropActive
	a.UpdatedAt = al.clock.Now().UTC()
	return nil
}

// Complete moves an active airdrop to the Completed terminal state.
func (al *AirdropLifecycle) Complete(a *models.Airdrop) error {
	switch a.State {
	case models.AirdropCompleted:
		return nil
	case models.AirdropActive:
	default:
		return airdropTransitionError(a.State, models.AirdropCompleted)
	}

	a.State = models.AirdropCompleted
	a.UpdatedAt = al.clock.Now().UTC()
	return nil
}

// CompleteIfDue completes an active airdrop whose end date has passed.
// Evaluated lazily on read; returns whether a transition happened.
func (al *AirdropLifecycle) CompleteIfDue(a *models.Airdrop) bool {
	now := al.clock.Now().UTC()
	if !a.CompletionDue(now) {
		return false
	}
	a.State = models.AirdropCompleted
	a.UpdatedAt = now
	return true
}

func airdropTransitionError(from, to models.AirdropState) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}
