// Package server hosts the HTTP API and WebSocket endpoint.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/tempowatch/sentinel/internal/server/handler"
	"github.com/tempowatch/sentinel/internal/server/middleware"
	"github.com/tempowatch/sentinel/internal/server/ws"
)

// Config holds server settings.
type Config struct {
	Port        int
	APIKey      string
	CORSOrigins []string
}

// Handlers aggregates the API handlers mounted by the server.
type Handlers struct {
	Health     *handler.HealthHandler
	Dashboard  *handler.DashboardHandler
	History    *handler.HistoryHandler
	Alerts     *handler.AlertsHandler
	Report     *handler.ReportHandler
	Thresholds *handler.ThresholdsHandler
}

// Server is the HTTP API server.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a Server with all routes and middleware wired. hub may be nil;
// the /ws route is then omitted.
func New(cfg Config, h Handlers, hub *ws.Hub, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", h.Health.HealthCheck)
	mux.HandleFunc("GET /api/dashboard", h.Dashboard.GetDashboard)
	mux.HandleFunc("GET /api/history/psi", h.History.GetPSI)
	mux.HandleFunc("GET /api/history/spread", h.History.GetSpread)
	mux.HandleFunc("GET /api/alerts", h.Alerts.ListAlerts)
	mux.HandleFunc("GET /api/report", h.Report.GetReport)
	mux.HandleFunc("GET /api/thresholds", h.Thresholds.GetThresholds)
	mux.HandleFunc("PUT /api/thresholds", h.Thresholds.UpdateThresholds)

	if hub != nil {
		mux.HandleFunc("GET /ws", hub.HandleWS)
	}

	// CORS runs outermost so preflight requests short-circuit before auth.
	var root http.Handler = mux
	root = middleware.Auth(cfg.APIKey)(root)
	root = middleware.Logging(logger)(root)
	root = middleware.CORS(cfg.CORSOrigins)(root)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      root,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger.With(slog.String("component", "server")),
	}
}

// Start runs the server until it fails or Shutdown is called. A clean
// shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Info("starting http server", slog.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.httpServer.Shutdown(ctx)
}
