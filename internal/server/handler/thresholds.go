package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tempowatch/sentinel/internal/domain"
	"github.com/tempowatch/sentinel/internal/monitor"
)

// ThresholdsHandler exposes the runtime alert thresholds.
type ThresholdsHandler struct {
	manager *monitor.ThresholdManager
	logger  *slog.Logger
}

// NewThresholdsHandler creates a ThresholdsHandler over the shared manager.
func NewThresholdsHandler(manager *monitor.ThresholdManager, logger *slog.Logger) *ThresholdsHandler {
	return &ThresholdsHandler{manager: manager, logger: logHandler(logger, "thresholds")}
}

// GetThresholds returns the active threshold set.
// GET /api/thresholds
func (h *ThresholdsHandler) GetThresholds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.Current())
}

// UpdateThresholds validates and installs a new threshold set. The update
// applies to subsequent engine cycles.
// PUT /api/thresholds
func (h *ThresholdsHandler) UpdateThresholds(w http.ResponseWriter, r *http.Request) {
	// Start from the current set so partial updates keep unmentioned knobs.
	t := h.manager.Current()
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.manager.Update(t); err != nil {
		if errors.Is(err, domain.ErrInvalidThresholds) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "update thresholds failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to update thresholds")
		return
	}

	h.logger.InfoContext(r.Context(), "thresholds updated")
	writeJSON(w, http.StatusOK, h.manager.Current())
}
