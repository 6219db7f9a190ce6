package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tempowatch/sentinel/internal/domain"
)

// MetricsStore implements domain.MetricsStore on the metric_points and
// dashboards tables.
type MetricsStore struct {
	pool *pgxpool.Pool
}

// NewMetricsStore creates a MetricsStore backed by the given Client.
func NewMetricsStore(c *Client) *MetricsStore {
	return &MetricsStore{pool: c.Pool()}
}

// AppendPoint records one observation for a pair's metric series.
func (s *MetricsStore) AppendPoint(ctx context.Context, pair string, metric domain.MetricName, p domain.HistoryPoint) error {
	const q = `INSERT INTO metric_points (pair, metric, ts, value) VALUES ($1, $2, $3, $4)`
	if _, err := s.pool.Exec(ctx, q, pair, string(metric), p.Time, p.Value); err != nil {
		return fmt.Errorf("postgres: append %s point for %s: %w", metric, pair, err)
	}
	return nil
}

// ListRecent returns up to limit most recent points, oldest first.
func (s *MetricsStore) ListRecent(ctx context.Context, pair string, metric domain.MetricName, limit int) ([]domain.HistoryPoint, error) {
	const q = `
		SELECT ts, value FROM metric_points
		WHERE pair = $1 AND metric = $2
		ORDER BY ts DESC
		LIMIT $3`
	rows, err := s.pool.Query(ctx, q, pair, string(metric), limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list %s points for %s: %w", metric, pair, err)
	}
	defer rows.Close()

	var points []domain.HistoryPoint
	for rows.Next() {
		var p domain.HistoryPoint
		if err := rows.Scan(&p.Time, &p.Value); err != nil {
			return nil, fmt.Errorf("postgres: scan %s point: %w", metric, err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list %s points for %s: %w", metric, pair, err)
	}

	// The query reads newest first; callers want chronological order.
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
	return points, nil
}

// PutDashboard upserts the latest dashboard document for the pair.
func (s *MetricsStore) PutDashboard(ctx context.Context, state domain.DashboardState) error {
	body, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("postgres: marshal dashboard %s: %w", state.Pair, err)
	}
	const q = `
		INSERT INTO dashboards (pair, state, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (pair) DO UPDATE SET state = EXCLUDED.state, updated_at = NOW()`
	if _, err := s.pool.Exec(ctx, q, state.Pair, body); err != nil {
		return fmt.Errorf("postgres: put dashboard %s: %w", state.Pair, err)
	}
	return nil
}

// GetDashboard returns the latest stored dashboard, or domain.ErrNotFound.
func (s *MetricsStore) GetDashboard(ctx context.Context, pair string) (domain.DashboardState, error) {
	const q = `SELECT state FROM dashboards WHERE pair = $1`
	var body []byte
	err := s.pool.QueryRow(ctx, q, pair).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.DashboardState{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.DashboardState{}, fmt.Errorf("postgres: get dashboard %s: %w", pair, err)
	}

	var state domain.DashboardState
	if err := json.Unmarshal(body, &state); err != nil {
		return domain.DashboardState{}, fmt.Errorf("postgres: decode dashboard %s: %w", pair, err)
	}
	return state, nil
}

// Prune drops points beyond keep per series for the pair.
func (s *MetricsStore) Prune(ctx context.Context, pair string, keep int) error {
	const q = `
		DELETE FROM metric_points
		WHERE pair = $1 AND metric = $2 AND id NOT IN (
			SELECT id FROM metric_points
			WHERE pair = $1 AND metric = $2
			ORDER BY ts DESC
			LIMIT $3
		)`
	for _, metric := range []domain.MetricName{domain.MetricPSI, domain.MetricSpread} {
		if _, err := s.pool.Exec(ctx, q, pair, string(metric), keep); err != nil {
			return fmt.Errorf("postgres: prune %s points for %s: %w", metric, pair, err)
		}
	}
	return nil
}

// Compile-time interface check.
var _ domain.MetricsStore = (*MetricsStore)(nil)
