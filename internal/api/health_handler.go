package api

import (
	"context"
	"net/http"

	"github.com/opendeck/opendeck-api/internal/api/shared"
	"github.com/opendeck/opendeck-api/internal/generation"
)

// Pinger reports database connectivity.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports the liveness of the service and its dependencies.
type HealthHandler struct {
	db       Pinger
	provider generation.Provider
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db Pinger, provider generation.Provider) *HealthHandler {
	return &HealthHandler{db: db, provider: provider}
}

// Health handles GET /healthz requests. It checks the database and the
// generation provider and returns 503 when either is unavailable.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:   "ok",
		Database: "ok",
		Provider: "ok",
	}
	status := http.StatusOK

	if err := h.db.PingContext(r.Context()); err != nil {
		resp.Status = "degraded"
		resp.Database = err.Error()
		status = http.StatusServiceUnavailable
	}

	if err := h.provider.HealthCheck(r.Context()); err != nil {
		resp.Status = "degraded"
		resp.Provider = err.Error()
		status = http.StatusServiceUnavailable
	}

	shared.RespondWithJSON(w, r, status, resp)
}
