package domain

import (
	"context"
	"time"
)

// BookSource produces orderbook snapshots for a pair. Implementations: the
// on-chain client and the deterministic mock generator.
type BookSource interface {
	// Fetch returns a fresh snapshot. Errors wrap ErrSourceUnavailable when
	// the underlying source cannot be reached.
	Fetch(ctx context.Context) (OrderbookSnapshot, error)
	// Name identifies the source in logs ("tempo", "mock").
	Name() string
}

// SnapshotCache holds the most recent snapshot per pair with a freshness TTL.
type SnapshotCache interface {
	// Put stores the snapshot under the pair key with the given TTL.
	Put(ctx context.Context, pair string, snap OrderbookSnapshot, ttl time.Duration) error
	// Get returns the cached snapshot, or ErrNotFound on miss or expiry.
	Get(ctx context.Context, pair string) (OrderbookSnapshot, error)
}

// SignalBus fans out dashboard updates and alerts to subscribers.
type SignalBus interface {
	// PublishDashboard broadcasts a full dashboard state.
	PublishDashboard(ctx context.Context, state DashboardState) error
	// PublishAlert broadcasts a single alert.
	PublishAlert(ctx context.Context, alert SentinelAlert) error
	// Subscribe returns a channel of raw JSON payloads for the given
	// channels. The channel closes when ctx is cancelled.
	Subscribe(ctx context.Context, channels ...string) (<-chan BusMessage, error)
	Close() error
}

// BusMessage is one payload received from the signal bus.
type BusMessage struct {
	Channel string
	Payload []byte
}

// MetricName identifies a persisted scalar time series.
type MetricName string

const (
	MetricPSI    MetricName = "psi"
	MetricSpread MetricName = "spread"
)

// MetricsStore persists metric history points and the latest dashboard state.
type MetricsStore interface {
	// AppendPoint records one observation for a pair's metric series.
	AppendPoint(ctx context.Context, pair string, metric MetricName, p HistoryPoint) error
	// ListRecent returns up to limit most recent points, oldest first.
	ListRecent(ctx context.Context, pair string, metric MetricName, limit int) ([]HistoryPoint, error)
	// PutDashboard stores the latest dashboard document for the pair.
	PutDashboard(ctx context.Context, state DashboardState) error
	// GetDashboard returns the latest stored dashboard, or ErrNotFound.
	GetDashboard(ctx context.Context, pair string) (DashboardState, error)
	// Prune drops points beyond keep per series for the pair.
	Prune(ctx context.Context, pair string, keep int) error
}

// AlertStore persists generated alerts.
type AlertStore interface {
	Insert(ctx context.Context, pair string, alerts []SentinelAlert) error
	// ListRecent returns up to limit most recent alerts, newest first,
	// skipping offset rows.
	ListRecent(ctx context.Context, pair string, limit, offset int) ([]SentinelAlert, error)
}

// ReportArchive stores generated report documents in object storage.
type ReportArchive interface {
	// Store uploads the serialized report and returns its storage key.
	Store(ctx context.Context, pair string, generatedAt time.Time, body []byte) (string, error)
}

// Notifier delivers alerts to external channels.
type Notifier interface {
	Notify(ctx context.Context, pair string, alert SentinelAlert) error
}
