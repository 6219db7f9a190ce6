package handler

import (
	"log/slog"
	"net/http"
	"time"
)

// HealthHandler serves the health-check endpoint.
type HealthHandler struct {
	logger *slog.Logger
	mode   string
}

// NewHealthHandler creates a HealthHandler reporting the given operating mode.
func NewHealthHandler(logger *slog.Logger, mode string) *HealthHandler {
	return &HealthHandler{logger: logger, mode: mode}
}

// HealthCheck responds with a simple JSON status.
// GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"mode":      h.mode,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
