package handlers

import (
	"net/http"

	"github.com/coindaily/entitlements/internal/api/response"
	"github.com/coindaily/entitlements/internal/auth"
	"github.com/coindaily/entitlements/internal/entitlement"
	"github.com/coindaily/entitlements/internal/models"
	"github.com/coindaily/entitlements/internal/service"
)

// EntitlementHandler handles entitlement resolution HTTP requests
type EntitlementHandler struct {
	entitlements *service.EntitlementService
}

// NewEntitlementHandler creates a new entitlement handler
func NewEntitlementHandler(entitlements *service.EntitlementService) *EntitlementHandler {
	return &EntitlementHandler{entitlements: entitlements}
}

// GetMyEntitlement handles GET /api/v1/user/entitlement
// Returns the authenticated user's resolved entitlement snapshot.
func (h *EntitlementHandler) GetMyEntitlement(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetClaims(r.Context())

	ent, err := h.entitlements.GetEffective(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, ent)
}

// TierInfo describes one catalog tier for the public tier listing.
type TierInfo struct {
	Tier            models.Tier                 `json:"tier"`
	Features        map[models.FeatureName]bool `json:"features"`
	Limits          map[models.LimitName]int    `json:"limits"`
	SupportPriority int                         `json:"support_priority"`
}

// ListTiers handles GET /api/v1/tiers
// Returns the full tier catalog in ascending tier order.
func (h *EntitlementHandler) ListTiers(w http.ResponseWriter, r *http.Request) {
	tiers := make([]TierInfo, 0, len(models.AllTiers))
	for _, tier := range models.AllTiers {
		features, err := entitlement.FeaturesFor(tier)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		limits, err := entitlement.LimitsFor(tier)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		priority, err := entitlement.SupportPriorityFor(tier)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		tiers = append(tiers, TierInfo{
			Tier:            tier,
			Features:        features,
			Limits:          limits,
			SupportPriority: priority,
		})
	}

	response.Success(w, tiers)
}
