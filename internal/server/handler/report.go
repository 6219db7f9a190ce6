package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/tempowatch/sentinel/internal/domain"
	"github.com/tempowatch/sentinel/internal/engine"
)

// ReportHandler generates the export document from the latest dashboard.
type ReportHandler struct {
	store   domain.MetricsStore
	archive domain.ReportArchive
	pair    string
	logger  *slog.Logger
}

// NewReportHandler creates a ReportHandler. archive may be nil; the
// ?archive=true option then returns an error.
func NewReportHandler(store domain.MetricsStore, archive domain.ReportArchive, pair string, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{store: store, archive: archive, pair: pair, logger: logHandler(logger, "report")}
}

// GetReport assembles the report from the latest persisted dashboard state.
// With ?archive=true the document is also uploaded to object storage and the
// storage key is returned in the X-Archive-Key header.
// GET /api/report
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
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

	now := time.Now().UTC()
	doc := engine.GenerateReport(state, now)

	if r.URL.Query().Get("archive") == "true" {
		if h.archive == nil {
			writeError(w, http.StatusBadRequest, "report archival is not configured")
			return
		}
		body, err := marshalIndented(doc)
		if err != nil {
			h.logger.ErrorContext(r.Context(), "marshal report failed", slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "failed to serialize report")
			return
		}
		key, err := h.archive.Store(r.Context(), h.pair, now, body)
		if err != nil {
			h.logger.ErrorContext(r.Context(), "archive report failed", slog.String("error", err.Error()))
			writeError(w, http.StatusBadGateway, "failed to archive report")
			return
		}
		w.Header().Set("X-Archive-Key", key)
	}

	writeJSON(w, http.StatusOK, doc)
}
