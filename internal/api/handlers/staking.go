package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/coindaily/entitlements/internal/api/response"
	"github.com/coindaily/entitlements/internal/auth"
	"github.com/coindaily/entitlements/internal/service"
)

// StakingHandler handles staking HTTP requests
type StakingHandler struct {
	staking *service.StakingService
}

// NewStakingHandler creates a new staking handler
func NewStakingHandler(staking *service.StakingService) *StakingHandler {
	return &StakingHandler{staking: staking}
}

// StakeRequest is the body for stake and unstake operations
type StakeRequest struct {
	Amount int64 `json:"amount"`
}

// GetPosition handles GET /api/v1/staking
// Returns the stake position with the unclaimed reward preview.
func (h *StakingHandler) GetPosition(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetClaims(r.Context())

	view, err := h.staking.Position(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, view)
}

// Stake handles POST /api/v1/staking/stake
func (h *StakingHandler) Stake(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetClaims(r.Context())

	var req StakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	position, err := h.staking.Stake(r.Context(), claims.UserID, req.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, position)
}

// Unstake handles POST /api/v1/staking/unstake
func (h *StakingHandler) Unstake(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetClaims(r.Context())

	var req StakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	position, err := h.staking.Unstake(r.Context(), claims.UserID, req.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, position)
}

// Claim handles POST /api/v1/staking/claim
// Credits the accrued reward to the spendable balance.
func (h *StakingHandler) Claim(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetClaims(r.Context())

	reward, err := h.staking.Claim(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, map[string]int64{"reward": reward})
}
