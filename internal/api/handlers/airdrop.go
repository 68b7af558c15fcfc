package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coindaily/entitlements/internal/api/request"
	"github.com/coindaily/entitlements/internal/api/response"
	"github.com/coindaily/entitlements/internal/auth"
	"github.com/coindaily/entitlements/internal/models"
	"github.com/coindaily/entitlements/internal/service"
)

// AirdropHandler handles airdrop HTTP requests
type AirdropHandler struct {
	airdrops *service.AirdropService
}

// NewAirdropHandler creates a new airdrop handler
func NewAirdropHandler(airdrops *service.AirdropService) *AirdropHandler {
	return &AirdropHandler{airdrops: airdrops}
}

// CreateAirdropRequest is the body for creating an airdrop
type CreateAirdropRequest struct {
	Title            string                      `json:"title"`
	Description      string                      `json:"description"`
	TokenName        string                      `json:"token_name"`
	TokenSymbol      string                      `json:"token_symbol"`
	TotalAmount      float64                     `json:"total_amount"`
	RecipientCount   int                         `json:"recipient_count"`
	DistributionType models.DistributionType     `json:"distribution_type"`
	Requirements     []models.AirdropRequirement `json:"requirements"`
	StartDate        *time.Time                  `json:"start_date"`
	EndDate          *time.Time                  `json:"end_date"`
}

// Create handles POST /api/v1/airdrops
// The response includes the derived per-recipient share.
func (h *AirdropHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetClaims(r.Context())

	var req CreateAirdropRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	airdrop := &models.Airdrop{
		CreatorID:        claims.UserID,
		Title:            req.Title,
		Description:      req.Description,
		TokenName:        req.TokenName,
		TokenSymbol:      req.TokenSymbol,
		TotalAmount:      req.TotalAmount,
		RecipientCount:   req.RecipientCount,
		DistributionType: req.DistributionType,
		Requirements:     req.Requirements,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
	}

	created, err := h.airdrops.Create(r.Context(), airdrop)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	share, err := h.airdrops.PerRecipientShare(created.TotalAmount, created.RecipientCount)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Created(w, map[string]interface{}{
		"airdrop":             created,
		"per_recipient_share": share,
	})
}

// Get handles GET /api/v1/airdrops/{id}
func (h *AirdropHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetClaims(r.Context())
	id := request.GetURLParam(r, "id")

	airdrop, err := h.airdrops.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if airdrop.CreatorID != claims.UserID && !claims.Admin {
		response.NotFound(w, "Airdrop not found")
		return
	}

	response.Success(w, airdrop)
}

// List handles GET /api/v1/airdrops
// Returns the authenticated user's airdrops, newest first.
func (h *AirdropHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetClaims(r.Context())

	limit := request.GetQueryIntWithRange(r, "limit", 20, 1, 100)
	offset := request.GetQueryInt(r, "offset", 0)

	airdrops, total, err := h.airdrops.ListByCreator(r.Context(), claims.UserID, limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pagination := response.NewPagination(total, limit, offset)
	response.SuccessWithPagination(w, airdrops, pagination)
}

// Activate handles POST /api/v1/airdrops/{id}/activate
func (h *AirdropHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.airdrops.Activate)
}

// Complete handles POST /api/v1/airdrops/{id}/complete
func (h *AirdropHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.airdrops.Complete)
}

func (h *AirdropHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, id string) (*models.Airdrop, error),
) {
	claims := auth.GetClaims(r.Context())
	id := request.GetURLParam(r, "id")

	airdrop, err := h.airdrops.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if airdrop.CreatorID != claims.UserID && !claims.Admin {
		response.NotFound(w, "Airdrop not found")
		return
	}

	updated, err := fn(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, updated)
}
