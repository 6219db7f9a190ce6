package handler

import (
	"log/slog"
	"net/http"

	"github.com/tempowatch/sentinel/internal/domain"
)

const (
	defaultHistoryLimit = 60
	maxHistoryLimit     = 500
)

// HistoryHandler serves metric time series for sparklines.
type HistoryHandler struct {
	store  domain.MetricsStore
	pair   string
	logger *slog.Logger
}

// NewHistoryHandler creates a HistoryHandler for the monitored pair.
func NewHistoryHandler(store domain.MetricsStore, pair string, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{store: store, pair: pair, logger: logHandler(logger, "history")}
}

// GetPSI returns recent PSI points, oldest first.
// GET /api/history/psi?limit=60
func (h *HistoryHandler) GetPSI(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, domain.MetricPSI)
}

// GetSpread returns recent spread-percent points, oldest first.
// GET /api/history/spread?limit=60
func (h *HistoryHandler) GetSpread(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, domain.MetricSpread)
}

func (h *HistoryHandler) serve(w http.ResponseWriter, r *http.Request, metric domain.MetricName) {
	limit := queryInt(r, "limit", defaultHistoryLimit, maxHistoryLimit)
	points, err := h.store.ListRecent(r.Context(), h.pair, metric, limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list history failed",
			slog.String("metric", string(metric)),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	if points == nil {
		points = []domain.HistoryPoint{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"pair":   h.pair,
		"metric": metric,
		"points": points,
	})
}
