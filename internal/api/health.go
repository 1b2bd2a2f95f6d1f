package api

import (
	"context"
	"net/http"
	"time"

	"github.com/sakjin112/personal-ai-assistant/server/internal/api/respond"
	"github.com/sakjin112/personal-ai-assistant/server/internal/store"
)

// HealthHandler reports service health from a live store probe.
type HealthHandler struct {
	pinger store.HealthPinger
}

func NewHealthHandler(p store.HealthPinger) *HealthHandler { return &HealthHandler{pinger: p} }

// CheckHealth handles GET /api/health. Always 200; the body carries the
// healthy/unhealthy verdict.
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	if err := h.pinger.HealthPing(ctx); err != nil {
		status = "unhealthy"
	}
	respond.WriteJSON(w, http.StatusOK, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
