package handlers

import (
	"net/http"

	"github.com/coindaily/entitlements/internal/api/request"
	"github.com/coindaily/entitlements/internal/api/response"
	"github.com/coindaily/entitlements/internal/auth"
	"github.com/coindaily/entitlements/internal/service"
)

// WalletHandler handles wallet HTTP requests
type WalletHandler struct {
	wallet *service.WalletService
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(wallet *service.WalletService) *WalletHandler {
	return &WalletHandler{wallet: wallet}
}

// GetWallet handles GET /api/v1/wallet
// Returns the JOY balance and engagement points.
func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetClaims(r.Context())

	wallet, err := h.wallet.Get(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, wallet)
}

// GetHistory handles GET /api/v1/wallet/history
// Returns the user's ledger entries, newest first.
func (h *WalletHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetClaims(r.Context())

	limit := request.GetQueryInt(r, "limit", 50)
	offset := request.GetQueryInt(r, "offset", 0)

	entries, err := h.wallet.History(r.Context(), claims.UserID, limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, entries)
}
