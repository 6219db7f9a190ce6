package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/tempowatch/sentinel/internal/domain"
)

// DashboardHandler serves the latest dashboard state.
type DashboardHandler struct {
	store  domain.MetricsStore
	pair   string
	logger *slog.Logger
}

// NewDashboardHandler creates a DashboardHandler for the monitored pair.
func NewDashboardHandler(store domain.MetricsStore, pair string, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{store: store, pair: pair, logger: logHandler(logger, "dashboard")}
}

// GetDashboard returns the latest persisted dashboard state.
// GET /api/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	state, err := h.store.GetDashboard(r.Context(), h.pair)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no dashboard available yet")
		return
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "get dashboard failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}
	writeJSON(w, http.StatusOK, state)
}
