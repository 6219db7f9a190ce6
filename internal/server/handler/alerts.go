package handler

import (
	"log/slog"
	"net/http"

	"github.com/tempowatch/sentinel/internal/domain"
)

const (
	defaultAlertLimit = 50
	maxAlertLimit     = 500
)

// AlertsHandler serves persisted alerts.
type AlertsHandler struct {
	store  domain.AlertStore
	pair   string
	logger *slog.Logger
}

// NewAlertsHandler creates an AlertsHandler for the monitored pair.
func NewAlertsHandler(store domain.AlertStore, pair string, logger *slog.Logger) *AlertsHandler {
	return &AlertsHandler{store: store, pair: pair, logger: logHandler(logger, "alerts")}
}

// ListAlerts returns recent alerts, newest first.
// GET /api/alerts?limit=50&offset=0
func (h *AlertsHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultAlertLimit, maxAlertLimit)
	offset := queryInt(r, "offset", 0, 0)

	alerts, err := h.store.ListRecent(r.Context(), h.pair, limit, offset)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list alerts failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to load alerts")
		return
	}
	if alerts == nil {
		alerts = []domain.SentinelAlert{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"pair":   h.pair,
		"alerts": alerts,
		"limit":  limit,
		"offset": offset,
	})
}
