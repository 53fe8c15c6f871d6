package handlers

import (
	"context"
	"net/http"
	"time"
)

// HealthChecker defines the interface for health checking components
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// ActivityReporter exposes the aggregation currently running, if any
type ActivityReporter interface {
	ActiveGeneration() (uint64, bool)
}

// HealthHandler handles health check requests
type HealthHandler struct {
	db         HealthChecker
	cache      HealthChecker
	aggregator ActivityReporter
}

// NewHealthHandler creates a new health handler. cache and aggregator may be nil.
func NewHealthHandler(db, cache HealthChecker, aggregator ActivityReporter) *HealthHandler {
	return &HealthHandler{
		db:         db,
		cache:      cache,
		aggregator: aggregator,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status           string            `json:"status"`
	Timestamp        string            `json:"timestamp"`
	Services         map[string]string `json:"services"`
	ActiveGeneration *uint64           `json:"active_generation,omitempty"`
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  make(map[string]string),
	}

	// Database holds the chain and wallet settings
	if err := h.db.HealthCheck(ctx); err != nil {
		response.Status = "unhealthy"
		response.Services["database"] = "unhealthy: " + err.Error()
	} else {
		response.Services["database"] = "healthy"
	}

	// Cache only backs lookups of finished snapshots
	if h.cache != nil {
		if err := h.cache.HealthCheck(ctx); err != nil {
			if response.Status == "healthy" {
				response.Status = "degraded"
			}
			response.Services["cache"] = "unhealthy: " + err.Error()
		} else {
			response.Services["cache"] = "healthy"
		}
	}

	if h.aggregator != nil {
		if generation, ok := h.aggregator.ActiveGeneration(); ok {
			response.ActiveGeneration = &generation
			response.Services["aggregator"] = "running"
		} else {
			response.Services["aggregator"] = "idle"
		}
	}

	status := http.StatusOK
	if response.Status == "unhealthy" {
		status = http.StatusServiceUnavailable
	}

	respondJSON(w, status, response)
}

// Ready handles GET /ready (Kubernetes readiness probe)
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.HealthCheck(ctx); err != nil {
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Live handles GET /live (Kubernetes liveness probe)
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("alive"))
}
