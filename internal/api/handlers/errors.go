package handlers

import (
	"errors"
	"net/http"

	"github.com/coindaily/entitlements/internal/api/response"
	"github.com/coindaily/entitlements/internal/entitlement"
	"github.com/coindaily/entitlements/internal/ledger"
	"github.com/coindaily/entitlements/internal/lifecycle"
	"github.com/coindaily/entitlements/internal/models"
	"github.com/coindaily/entitlements/internal/repository"
	"github.com/coindaily/entitlements/internal/service"
)

// writeServiceError maps domain errors onto HTTP responses so every handler
// reports the same status for the same failure class.
func writeServiceError(w http.ResponseWriter, err error) {
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		response.ValidationFailed(w, validationErr.Field, validationErr.Message)
		return
	}

	switch {
	case errors.Is(err, ledger.ErrInsufficientBalance):
		response.PaymentRequired(w, "Insufficient JOY balance")
	case errors.Is(err, lifecycle.ErrFeatureNotAllowed):
		response.Forbidden(w, "Your subscription tier does not allow this action")
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		response.Conflict(w, err.Error())
	case errors.Is(err, entitlement.ErrUnknownTier):
		response.BadRequest(w, err.Error())
	case errors.Is(err, service.ErrNothingStaked):
		response.NotFound(w, "No stake position found")
	case errors.Is(err, repository.ErrUserNotFound):
		response.NotFound(w, "User not found")
	case errors.Is(err, repository.ErrCampaignNotFound):
		response.NotFound(w, "Boost campaign not found")
	case errors.Is(err, repository.ErrAirdropNotFound):
		response.NotFound(w, "Airdrop not found")
	case errors.Is(err, repository.ErrOverrideNotFound):
		response.NotFound(w, "Override not found")
	case errors.Is(err, ledger.ErrAccountNotFound):
		response.NotFound(w, "Token account not found")
	default:
		response.InternalError(w, "")
	}
}
