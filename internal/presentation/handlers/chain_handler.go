package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/wallet-balances/internal/application/services"
	"github.com/bimakw/wallet-balances/internal/domain/entities"
)

// ChainHandler handles HTTP requests for configured chains
type ChainHandler struct {
	service *services.SettingsService
	logger  *zap.Logger
}

// NewChainHandler creates a new chain handler
func NewChainHandler(service *services.SettingsService, logger *zap.Logger) *ChainHandler {
	return &ChainHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the chain routes
func (h *ChainHandler) RegisterRoutes(r chi.Router) {
	r.Get("/chains", h.ListChains)
	r.Post("/chains", h.SaveChain)
	r.Delete("/chains/{name}", h.DeleteChain)
}

// SaveChainRequest is the body of POST /api/v1/chains
type SaveChainRequest struct {
	Name   string `json:"name"`
	RPCURL string `json:"rpc_url"`
}

// ListChains handles GET /api/v1/chains
func (h *ChainHandler) ListChains(w http.ResponseWriter, r *http.Request) {
	response, err := h.service.ListChains(r.Context())
	if err != nil {
		h.logger.Error("Failed to list chains", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to list chains")
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// SaveChain handles POST /api/v1/chains; an existing name gets its URL replaced
func (h *ChainHandler) SaveChain(w http.ResponseWriter, r *http.Request) {
	var req SaveChainRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	chain, err := h.service.SaveChain(r.Context(), req.Name, req.RPCURL)
	if err != nil {
		if errors.Is(err, entities.ErrInvalidChain) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Failed to save chain", zap.Error(err), zap.String("chain", req.Name))
		respondError(w, http.StatusInternalServerError, "Failed to save chain")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"data": chain})
}

// DeleteChain handles DELETE /api/v1/chains/{name}
func (h *ChainHandler) DeleteChain(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	deleted, err := h.service.DeleteChain(r.Context(), name)
	if err != nil {
		h.logger.Error("Failed to delete chain", zap.Error(err), zap.String("chain", name))
		respondError(w, http.StatusInternalServerError, "Failed to delete chain")
		return
	}

	if !deleted {
		respondError(w, http.StatusNotFound, "chain not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
