// Package monitor runs the polling loop: fetch a snapshot, run the metrics
// engine, persist history, publish to the signal bus, and deliver alert
// notifications.
package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tempowatch/sentinel/internal/domain"
	"github.com/tempowatch/sentinel/internal/engine"
)

// Config tunes the polling loop.
type Config struct {
	// Pair labels the monitored market, e.g. "AlphaUSD-PathUSD".
	Pair string
	// Interval between engine cycles.
	Interval time.Duration
	// CacheTTL is the snapshot freshness window; a cached snapshot younger
	// than this is reused instead of refetching.
	CacheTTL time.Duration
	// FallbackAfter is the number of consecutive live-fetch failures before
	// switching to the mock generator.
	FallbackAfter int
	// HistoryKeep bounds retained points per metric series.
	HistoryKeep int
	// ArchiveEvery is the interval between report uploads to object
	// storage. Zero disables periodic archival.
	ArchiveEvery time.Duration
}

// Deps are the collaborators the monitor drives. Cache, Bus, Alerts,
// Archive, and Notifier may be nil; the corresponding step is skipped.
type Deps struct {
	Live     domain.BookSource
	Fallback domain.BookSource
	Cache    domain.SnapshotCache
	Store    domain.MetricsStore
	Alerts   domain.AlertStore
	Bus      domain.SignalBus
	Archive  domain.ReportArchive
	Notifier domain.Notifier
}

// Monitor owns one pair's polling loop.
type Monitor struct {
	cfg        Config
	deps       Deps
	thresholds *ThresholdManager
	tracker    *engine.PSITracker
	log        *slog.Logger

	failures  int
	usingMock bool
}

// New wires a monitor. The threshold manager is shared with the API layer so
// runtime updates reach subsequent cycles.
func New(cfg Config, deps Deps, thresholds *ThresholdManager, logger *slog.Logger) *Monitor {
	return &Monitor{
		cfg:        cfg,
		deps:       deps,
		thresholds: thresholds,
		tracker:    engine.NewPSITracker(),
		log:        logger.With("component", "monitor", "pair", cfg.Pair),
	}
}

// Run polls until ctx is cancelled. The first cycle runs immediately.
func (m *Monitor) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ticker := time.NewTicker(m.cfg.Interval)
		defer ticker.Stop()
		for {
			if err := m.Cycle(ctx); err != nil && !errors.Is(err, context.Canceled) {
				m.log.Error("cycle failed", "err", err)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
	})

	if m.deps.Archive != nil && m.cfg.ArchiveEvery > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(m.cfg.ArchiveEvery)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-ticker.C:
					if err := m.archiveReport(ctx); err != nil {
						m.log.Error("report archival failed", "err", err)
					}
				}
			}
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Cycle runs one fetch-compute-persist-publish pass.
func (m *Monitor) Cycle(ctx context.Context) error {
	snap, source, err := m.snapshot(ctx)
	if err != nil {
		return fmt.Errorf("monitor: snapshot: %w", err)
	}

	state := engine.BuildDashboard(m.cfg.Pair, snap, m.tracker, m.thresholds.Current())

	m.log.Debug("cycle complete",
		"source", source,
		"psi", state.PSI.Value,
		"level", state.PSI.Level,
		"spread_pct", state.Spread.Percentage,
		"alerts", len(state.Alerts))

	m.persist(ctx, snap, state)
	m.publish(ctx, state)
	m.notify(ctx, state.Alerts)
	return nil
}

// snapshot resolves the cycle's orderbook: fresh cache entry, then the live
// source, then the fallback generator after repeated failures.
func (m *Monitor) snapshot(ctx context.Context) (domain.OrderbookSnapshot, string, error) {
	if m.deps.Cache != nil {
		cached, err := m.deps.Cache.Get(ctx, m.cfg.Pair)
		if err == nil && time.Since(cached.Timestamp) < m.cfg.CacheTTL {
			return cached, "cache", nil
		}
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			m.log.Warn("snapshot cache read failed", "err", err)
		}
	}

	source := m.deps.Live
	if source == nil || m.usingMock {
		source = m.deps.Fallback
	}

	snap, err := source.Fetch(ctx)
	if err != nil {
		if source != m.deps.Fallback {
			m.failures++
			m.log.Warn("live fetch failed", "failures", m.failures, "err", err)
			if m.failures >= m.cfg.FallbackAfter {
				m.log.Warn("switching to fallback source", "after_failures", m.failures)
				m.usingMock = true
				m.tracker.Reset(m.cfg.Pair)
				snap, err = m.deps.Fallback.Fetch(ctx)
				if err == nil {
					m.cacheSnapshot(ctx, snap)
					return snap, m.deps.Fallback.Name(), nil
				}
			}
		}
		return domain.OrderbookSnapshot{}, "", err
	}

	if m.usingMock && source == m.deps.Fallback && m.deps.Live != nil {
		// Probe the live source so we recover once it is healthy again.
		if live, liveErr := m.deps.Live.Fetch(ctx); liveErr == nil {
			m.log.Info("live source recovered")
			m.usingMock = false
			m.failures = 0
			m.cacheSnapshot(ctx, live)
			return live, m.deps.Live.Name(), nil
		}
	}
	if source == m.deps.Live {
		m.failures = 0
	}

	m.cacheSnapshot(ctx, snap)
	return snap, source.Name(), nil
}

func (m *Monitor) cacheSnapshot(ctx context.Context, snap domain.OrderbookSnapshot) {
	if m.deps.Cache == nil {
		return
	}
	if err := m.deps.Cache.Put(ctx, m.cfg.Pair, snap, m.cfg.CacheTTL); err != nil {
		m.log.Warn("snapshot cache write failed", "err", err)
	}
}

func (m *Monitor) persist(ctx context.Context, snap domain.OrderbookSnapshot, state domain.DashboardState) {
	if m.deps.Store != nil {
		now := snap.Timestamp
		if err := m.deps.Store.AppendPoint(ctx, m.cfg.Pair, domain.MetricPSI,
			domain.HistoryPoint{Time: now, Value: float64(state.PSI.Value)}); err != nil {
			m.log.Warn("append psi point failed", "err", err)
		}
		if err := m.deps.Store.AppendPoint(ctx, m.cfg.Pair, domain.MetricSpread,
			domain.HistoryPoint{Time: now, Value: state.Spread.Percentage}); err != nil {
			m.log.Warn("append spread point failed", "err", err)
		}
		if err := m.deps.Store.PutDashboard(ctx, state); err != nil {
			m.log.Warn("store dashboard failed", "err", err)
		}
		if m.cfg.HistoryKeep > 0 {
			if err := m.deps.Store.Prune(ctx, m.cfg.Pair, m.cfg.HistoryKeep); err != nil {
				m.log.Warn("prune history failed", "err", err)
			}
		}
	}
	if m.deps.Alerts != nil && len(state.Alerts) > 0 {
		if err := m.deps.Alerts.Insert(ctx, m.cfg.Pair, state.Alerts); err != nil {
			m.log.Warn("store alerts failed", "err", err)
		}
	}
}

func (m *Monitor) publish(ctx context.Context, state domain.DashboardState) {
	if m.deps.Bus == nil {
		return
	}
	if err := m.deps.Bus.PublishDashboard(ctx, state); err != nil {
		m.log.Warn("publish dashboard failed", "err", err)
	}
	for _, a := range state.Alerts {
		if err := m.deps.Bus.PublishAlert(ctx, a); err != nil {
			m.log.Warn("publish alert failed", "type", a.Type, "err", err)
		}
	}
}

// notify forwards warning and critical alerts; info stays on the dashboard.
func (m *Monitor) notify(ctx context.Context, alerts []domain.SentinelAlert) {
	if m.deps.Notifier == nil {
		return
	}
	for _, a := range alerts {
		if a.Severity == domain.SeverityInfo {
			continue
		}
		if err := m.deps.Notifier.Notify(ctx, m.cfg.Pair, a); err != nil {
			m.log.Warn("notify failed", "type", a.Type, "err", err)
		}
	}
}

// archiveReport uploads a report built from the latest stored dashboard.
func (m *Monitor) archiveReport(ctx context.Context) error {
	if m.deps.Store == nil {
		return nil
	}
	state, err := m.deps.Store.GetDashboard(ctx, m.cfg.Pair)
	if err != nil {
		return fmt.Errorf("monitor: load dashboard: %w", err)
	}
	now := time.Now().UTC()
	doc := engine.GenerateReport(state, now)
	body, err := marshalReport(doc)
	if err != nil {
		return err
	}
	key, err := m.deps.Archive.Store(ctx, m.cfg.Pair, now, body)
	if err != nil {
		return fmt.Errorf("monitor: archive report: %w", err)
	}
	m.log.Info("report archived", "key", key)
	return nil
}

func marshalReport(doc engine.ReportDocument) ([]byte, error) {
	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("monitor: marshal report: %w", err)
	}
	return body, nil
}
