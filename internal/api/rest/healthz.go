package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/lessonforge/lessonforge-backend/internal/repository"
)

// HealthzHandler handles health check endpoints
type HealthzHandler struct {
	store *repository.Store
}

// NewHealthzHandler creates a new healthz handler
func NewHealthzHandler(store *repository.Store) *HealthzHandler {
	return &HealthzHandler{store: store}
}

// Live handles GET /healthz/live - liveness probe (process is alive)
func (h *HealthzHandler) Live(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /healthz/ready - readiness probe (dependencies are healthy)
func (h *HealthzHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.store != nil {
		if err := h.store.Ping(ctx); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status": "unhealthy",
				"reason": "database_unavailable",
				"error":  err.Error(),
			})
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
