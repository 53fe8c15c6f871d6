package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/wallet-balances/internal/application/services"
)

// WalletHandler handles HTTP requests for configured wallets
type WalletHandler struct {
	service *services.SettingsService
	logger  *zap.Logger
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(service *services.SettingsService, logger *zap.Logger) *WalletHandler {
	return &WalletHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the wallet routes
func (h *WalletHandler) RegisterRoutes(r chi.Router) {
	r.Get("/wallets", h.ListWallets)
	r.Post("/wallets", h.AddWallet)
	r.Delete("/wallets/{id}", h.DeleteWallet)
}

// AddWalletRequest is the body of POST /api/v1/wallets
type AddWalletRequest struct {
	Label   string `json:"label"`
	Address string `json:"address"`
}

// ListWallets handles GET /api/v1/wallets
func (h *WalletHandler) ListWallets(w http.ResponseWriter, r *http.Request) {
	response, err := h.service.ListWallets(r.Context())
	if err != nil {
		h.logger.Error("Failed to list wallets", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to list wallets")
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// AddWallet handles POST /api/v1/wallets.
// Malformed addresses are stored and flagged; each balance query reports them as invalid.
func (h *WalletHandler) AddWallet(w http.ResponseWriter, r *http.Request) {
	var req AddWalletRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	wallet, err := h.service.AddWallet(r.Context(), req.Label, req.Address)
	if err != nil {
		h.logger.Error("Failed to add wallet", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to add wallet")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{"data": wallet})
}

// DeleteWallet handles DELETE /api/v1/wallets/{id}
func (h *WalletHandler) DeleteWallet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid wallet id")
		return
	}

	deleted, err := h.service.DeleteWallet(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to delete wallet", zap.Error(err), zap.Int64("id", id))
		respondError(w, http.StatusInternalServerError, "Failed to delete wallet")
		return
	}

	if !deleted {
		respondError(w, http.StatusNotFound, "wallet not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
