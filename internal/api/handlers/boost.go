package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/coindaily/entitlements/internal/api/request"
	"github.com/coindaily/entitlements/internal/api/response"
	"github.com/coindaily/entitlements/internal/auth"
	"github.com/coindaily/entitlements/internal/models"
	"github.com/coindaily/entitlements/internal/service"
)

// BoostHandler handles boost campaign HTTP requests
type BoostHandler struct {
	boosts *service.BoostService
}

// NewBoostHandler creates a new boost handler
func NewBoostHandler(boosts *service.BoostService) *BoostHandler {
	return &BoostHandler{boosts: boosts}
}

// GetPrice handles GET /api/v1/boosts/price?duration_days=7&position=featured
// Without parameters it returns the whole price table.
func (h *BoostHandler) GetPrice(w http.ResponseWriter, r *http.Request) {
	durationDays := request.GetQueryInt(r, "duration_days", 0)
	position := request.GetQueryString(r, "position", "")

	if durationDays == 0 && position == "" {
		response.Success(w, h.boosts.PriceTable())
		return
	}

	cost, err := h.boosts.Price(durationDays, models.BoostPosition(position))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, map[string]interface{}{
		"duration_days": durationDays,
		"position":      position,
		"cost":          cost,
	})
}

// SubmitBoostRequest is the body for creating a boost campaign
type SubmitBoostRequest struct {
	TargetType   models.BoostTarget   `json:"target_type"`
	Title        string               `json:"title"`
	Description  string               `json:"description"`
	Position     models.BoostPosition `json:"position"`
	DurationDays int                  `json:"duration_days"`
}

// Submit handles POST /api/v1/boosts
// Creates a campaign pending admin approval. No tokens are charged yet.
func (h *BoostHandler) Submit(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetClaims(r.Context())

	var req SubmitBoostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	campaign := &models.BoostCampaign{
		OwnerID:      claims.UserID,
		TargetType:   req.TargetType,
		Title:        req.Title,
		Description:  req.Description,
		Position:     req.Position,
		DurationDays: req.DurationDays,
	}

	created, err := h.boosts.Submit(r.Context(), campaign)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Created(w, created)
}

// Get handles GET /api/v1/boosts/{id}
func (h *BoostHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetClaims(r.Context())
	id := request.GetURLParam(r, "id")

	campaign, err := h.boosts.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if campaign.OwnerID != claims.UserID && !claims.Admin {
		response.NotFound(w, "Boost campaign not found")
		return
	}

	response.Success(w, campaign)
}

// List handles GET /api/v1/boosts
// Returns the authenticated user's campaigns, newest first.
func (h *BoostHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetClaims(r.Context())

	limit := request.GetQueryIntWithRange(r, "limit", 20, 1, 100)
	offset := request.GetQueryInt(r, "offset", 0)

	campaigns, total, err := h.boosts.ListByOwner(r.Context(), claims.UserID, limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pagination := response.NewPagination(total, limit, offset)
	response.SuccessWithPagination(w, campaigns, pagination)
}

// Activate handles POST /api/v1/boosts/{id}/activate
// Owners start their approved campaigns.
func (h *BoostHandler) Activate(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetClaims(r.Context())
	id := request.GetURLParam(r, "id")

	campaign, err := h.boosts.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if campaign.OwnerID != claims.UserID && !claims.Admin {
		response.NotFound(w, "Boost campaign not found")
		return
	}

	activated, err := h.boosts.Activate(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, activated)
}
