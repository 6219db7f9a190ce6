package app

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tempowatch/sentinel/internal/monitor"
	"github.com/tempowatch/sentinel/internal/server"
	"github.com/tempowatch/sentinel/internal/server/handler"
	"github.com/tempowatch/sentinel/internal/server/ws"
)

// MonitorMode runs the polling loop without the HTTP API. Dashboards and
// alerts still land in Postgres and on the signal bus for other consumers.
func (a *App) MonitorMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting monitor mode")
	return a.newMonitor(deps, false).Run(ctx)
}

// ServerMode serves the HTTP API and WebSocket endpoint over previously
// persisted state. No polling loop runs; another instance is expected to
// feed the stores and the bus.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting server mode")

	g, ctx := errgroup.WithContext(ctx)
	a.startServer(ctx, g, deps)
	return waitGroup(g)
}

// FullMode runs the polling loop and the HTTP API in one process.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	g, ctx := errgroup.WithContext(ctx)
	mon := a.newMonitor(deps, false)
	g.Go(func() error {
		return mon.Run(ctx)
	})
	if a.cfg.Server.Enabled {
		a.startServer(ctx, g, deps)
	}
	return waitGroup(g)
}

// MockMode is FullMode driven entirely by the synthetic generator. No chain
// connection is made; useful for demos and frontend development.
func (a *App) MockMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting mock mode")

	g, ctx := errgroup.WithContext(ctx)
	mon := a.newMonitor(deps, true)
	g.Go(func() error {
		return mon.Run(ctx)
	})
	if a.cfg.Server.Enabled {
		a.startServer(ctx, g, deps)
	}
	return waitGroup(g)
}

// newMonitor assembles the polling loop. mockOnly drops the live source so
// every cycle reads from the generator.
func (a *App) newMonitor(deps *Dependencies, mockOnly bool) *monitor.Monitor {
	mdeps := monitor.Deps{
		Live:     deps.Live,
		Fallback: deps.Fallback,
		Cache:    deps.Cache,
		Store:    deps.Store,
		Alerts:   deps.Alerts,
		Bus:      deps.Bus,
		Archive:  deps.Archive,
		Notifier: deps.Notifier,
	}
	if mockOnly {
		mdeps.Live = nil
	}
	return monitor.New(monitor.Config{
		Pair:          a.cfg.Monitor.Pair,
		Interval:      a.cfg.Monitor.Interval.Duration,
		CacheTTL:      a.cfg.Monitor.CacheTTL.Duration,
		FallbackAfter: a.cfg.Monitor.FallbackAfter,
		HistoryKeep:   a.cfg.Monitor.HistoryKeep,
		ArchiveEvery:  a.cfg.Monitor.ArchiveEvery.Duration,
	}, mdeps, deps.Thresholds, a.logger)
}

// startServer adds the HTTP server and WebSocket hub goroutines to g.
func (a *App) startServer(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	pair := a.cfg.Monitor.Pair

	hub := ws.NewHub(deps.Bus, pair, a.logger)
	g.Go(func() error {
		err := hub.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	srv := server.New(server.Config{
		Port:        a.cfg.Server.Port,
		APIKey:      a.cfg.Server.APIKey,
		CORSOrigins: a.cfg.Server.CORSOrigins,
	}, server.Handlers{
		Health:     handler.NewHealthHandler(a.logger, a.cfg.Mode),
		Dashboard:  handler.NewDashboardHandler(deps.Store, pair, a.logger),
		History:    handler.NewHistoryHandler(deps.Store, pair, a.logger),
		Alerts:     handler.NewAlertsHandler(deps.Alerts, pair, a.logger),
		Report:     handler.NewReportHandler(deps.Store, deps.Archive, pair, a.logger),
		Thresholds: handler.NewThresholdsHandler(deps.Thresholds, a.logger),
	}, hub, a.logger)

	g.Go(srv.Start)

	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
}

func waitGroup(g *errgroup.Group) error {
	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
