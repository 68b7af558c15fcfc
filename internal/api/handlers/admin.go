package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/coindaily/entitlements/internal/api/request"
	"github.com/coindaily/entitlements/internal/api/response"
	"github.com/coindaily/entitlements/internal/auth"
	"github.com/coindaily/entitlements/internal/models"
	"github.com/coindaily/entitlements/internal/service"
)

// AdminHandler handles administrator-only HTTP requests: entitlement
// overrides, campaign review and wallet corrections.
type AdminHandler struct {
	entitlements *service.EntitlementService
	boosts       *service.BoostService
	wallet       *service.WalletService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	entitlements *service.EntitlementService,
	boosts *service.BoostService,
	wallet *service.WalletService,
) *AdminHandler {
	return &AdminHandler{
		entitlements: entitlements,
		boosts:       boosts,
		wallet:       wallet,
	}
}

// GetUserEntitlement handles GET /api/v1/admin/users/{id}/entitlement
// Resolves any user's effective entitlement, override included.
func (h *AdminHandler) GetUserEntitlement(w http.ResponseWriter, r *http.Request) {
	userID := request.GetURLParam(r, "id")

	ent, err := h.entitlements.GetEffective(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, ent)
}

// SetOverrideRequest is the body for setting a user override
type SetOverrideRequest struct {
	TierReplacement    *models.Tier         `json:"tier_replacement"`
	AdditionalFeatures []models.FeatureName `json:"additional_features"`
	ExpiresAt          *time.Time           `json:"expires_at"`
}

// SetOverride handles PUT /api/v1/admin/users/{id}/override
func (h *AdminHandler) SetOverride(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetClaims(r.Context())
	userID := request.GetURLParam(r, "id")

	var req SetOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	override := &models.UserOverride{
		UserID:             userID,
		TierReplacement:    req.TierReplacement,
		AdditionalFeatures: req.AdditionalFeatures,
		ExpiresAt:          req.ExpiresAt,
		CreatedBy:          claims.UserID,
	}

	if err := h.entitlements.SetOverride(r.Context(), override); err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, override)
}

// GetOverride handles GET /api/v1/admin/users/{id}/override
func (h *AdminHandler) GetOverride(w http.ResponseWriter, r *http.Request) {
	userID := request.GetURLParam(r, "id")

	override, err := h.entitlements.GetOverride(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, override)
}

// ClearOverride handles DELETE /api/v1/admin/users/{id}/override
func (h *AdminHandler) ClearOverride(w http.ResponseWriter, r *http.Request) {
	userID := request.GetURLParam(r, "id")

	if err := h.entitlements.ClearOverride(r.Context(), userID); err != nil {
		writeServiceError(w, err)
		return
	}

	response.JSON(w, http.StatusNoContent, nil)
}

// ListPendingBoosts handles GET /api/v1/admin/boosts/pending
// Returns campaigns awaiting review, oldest first.
func (h *AdminHandler) ListPendingBoosts(w http.ResponseWriter, r *http.Request) {
	limit := request.GetQueryIntWithRange(r, "limit", 50, 1, 100)
	offset := request.GetQueryInt(r, "offset", 0)

	campaigns, err := h.boosts.ListPending(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, campaigns)
}

// ApproveBoost handles POST /api/v1/admin/boosts/{id}/approve
// Approval charges the owner the pinned campaign cost.
func (h *AdminHandler) ApproveBoost(w http.ResponseWriter, r *http.Request) {
	id := request.GetURLParam(r, "id")

	campaign, err := h.boosts.Approve(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, campaign)
}

// RejectBoost handles POST /api/v1/admin/boosts/{id}/reject
func (h *AdminHandler) RejectBoost(w http.ResponseWriter, r *http.Request) {
	id := request.GetURLParam(r, "id")

	campaign, err := h.boosts.Reject(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, campaign)
}

// AdjustWalletRequest is the body for admin wallet corrections
type AdjustWalletRequest struct {
	Delta int64 `json:"delta"`
}

// AdjustWallet handles POST /api/v1/admin/users/{id}/wallet/adjust
func (h *AdminHandler) AdjustWallet(w http.ResponseWriter, r *http.Request) {
	userID := request.GetURLParam(r, "id")

	var req AdjustWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	entry, err := h.wallet.AdminAdjust(r.Context(), userID, req.Delta)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, entry)
}

// TopUpRequest is the body for crediting purchased tokens
type TopUpRequest struct {
	Amount int64 `json:"amount"`
}

// TopUpWallet handles POST /api/v1/admin/users/{id}/wallet/topup
func (h *AdminHandler) TopUpWallet(w http.ResponseWriter, r *http.Request) {
	userID := request.GetURLParam(r, "id")

	var req TopUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	entry, err := h.wallet.TopUp(r.Context(), userID, req.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, entry)
}
