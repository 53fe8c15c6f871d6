package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/wallet-balances/internal/application/services"
	"github.com/bimakw/wallet-balances/internal/domain/entities"
)

// BalanceHandler handles HTTP requests for balance aggregations
type BalanceHandler struct {
	service     *services.BalanceService
	logger      *zap.Logger
	submitLimit func(http.Handler) http.Handler
}

// NewBalanceHandler creates a new balance handler.
// submitLimit, when non-nil, wraps only the submission route.
func NewBalanceHandler(service *services.BalanceService, submitLimit func(http.Handler) http.Handler, logger *zap.Logger) *BalanceHandler {
	return &BalanceHandler{
		service:     service,
		logger:      logger,
		submitLimit: submitLimit,
	}
}

// RegisterRoutes registers the balance query routes
func (h *BalanceHandler) RegisterRoutes(r chi.Router) {
	r.Route("/balances/queries", func(r chi.Router) {
		if h.submitLimit != nil {
			r.With(h.submitLimit).Post("/", h.StartQuery)
		} else {
			r.Post("/", h.StartQuery)
		}
		r.Get("/current", h.CurrentQuery)
		r.Get("/{generation}", h.GetQuery)
	})
}

// StartQuery handles POST /api/v1/balances/queries.
// Omitted chain or wallet lists are read from the stored settings.
func (h *BalanceHandler) StartQuery(w http.ResponseWriter, r *http.Request) {
	var req services.StartQueryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	response, err := h.service.StartQuery(r.Context(), req)
	if err != nil {
		if errors.Is(err, entities.ErrInvalidChain) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if errors.Is(err, services.ErrAggregatorClosed) {
			respondError(w, http.StatusServiceUnavailable, "shutting down")
			return
		}
		h.logger.Error("Failed to start balance query", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to start balance query")
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/balances/queries/%d", response.Data.Generation))
	respondJSON(w, http.StatusAccepted, response)
}

// GetQuery handles GET /api/v1/balances/queries/{generation}
func (h *BalanceHandler) GetQuery(w http.ResponseWriter, r *http.Request) {
	generation, err := strconv.ParseUint(chi.URLParam(r, "generation"), 10, 64)
	if err != nil || generation == 0 {
		respondError(w, http.StatusBadRequest, "invalid generation")
		return
	}

	response, err := h.service.GetQuery(r.Context(), generation)
	if err != nil {
		h.respondQueryError(w, err)
		return
	}

	h.respondQuery(w, r, response)
}

// CurrentQuery handles GET /api/v1/balances/queries/current
func (h *BalanceHandler) CurrentQuery(w http.ResponseWriter, r *http.Request) {
	response, err := h.service.CurrentQuery()
	if err != nil {
		h.respondQueryError(w, err)
		return
	}

	h.respondQuery(w, r, response)
}

// respondQuery adds the rendered grid when ?display=true, collapsing failures with ?collapse=true
func (h *BalanceHandler) respondQuery(w http.ResponseWriter, r *http.Request, response *services.QueryResponse) {
	if queryBool(r, "display") {
		response.Data.Grid = response.Data.AggregationSnapshot.Display(queryBool(r, "collapse"))
	}
	respondJSON(w, http.StatusOK, response)
}

func (h *BalanceHandler) respondQueryError(w http.ResponseWriter, err error) {
	if errors.Is(err, services.ErrTaskNotFound) {
		respondError(w, http.StatusNotFound, "balance query not found")
		return
	}
	h.logger.Error("Failed to get balance query", zap.Error(err))
	respondError(w, http.StatusInternalServerError, "Failed to get balance query")
}

func queryBool(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}
