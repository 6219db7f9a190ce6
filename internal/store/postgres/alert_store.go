package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tempowatch/sentinel/internal/domain"
)

// AlertStore implements domain.AlertStore on the alerts table.
type AlertStore struct {
	pool *pgxpool.Pool
}

// NewAlertStore creates an AlertStore backed by the given Client.
func NewAlertStore(c *Client) *AlertStore {
	return &AlertStore{pool: c.Pool()}
}

// Insert persists a batch of alerts in one round trip.
func (s *AlertStore) Insert(ctx context.Context, pair string, alerts []domain.SentinelAlert) error {
	if len(alerts) == 0 {
		return nil
	}

	const q = `
		INSERT INTO alerts (id, pair, ts, type, severity, title, message, data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING`

	batch := &pgx.Batch{}
	for _, a := range alerts {
		var data []byte
		if a.Data != nil {
			var err error
			data, err = json.Marshal(a.Data)
			if err != nil {
				return fmt.Errorf("postgres: marshal alert data %s: %w", a.ID, err)
			}
		}
		batch.Queue(q, a.ID, pair, a.Timestamp, string(a.Type), string(a.Severity), a.Title, a.Message, data)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range alerts {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("postgres: insert alerts for %s: %w", pair, err)
		}
	}
	return nil
}

// ListRecent returns up to limit most recent alerts, newest first, skipping
// offset rows.
func (s *AlertStore) ListRecent(ctx context.Context, pair string, limit, offset int) ([]domain.SentinelAlert, error) {
	const q = `
		SELECT id, ts, type, severity, title, message, data FROM alerts
		WHERE pair = $1
		ORDER BY ts DESC
		LIMIT $2 OFFSET $3`
	rows, err := s.pool.Query(ctx, q, pair, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("postgres: list alerts for %s: %w", pair, err)
	}
	defer rows.Close()

	var alerts []domain.SentinelAlert
	for rows.Next() {
		var a domain.SentinelAlert
		var typ, severity string
		var data []byte
		if err := rows.Scan(&a.ID, &a.Timestamp, &typ, &severity, &a.Title, &a.Message, &data); err != nil {
			return nil, fmt.Errorf("postgres: scan alert: %w", err)
		}
		a.Type = domain.AlertType(typ)
		a.Severity = domain.AlertSeverity(severity)
		if len(data) > 0 {
			if err := json.Unmarshal(data, &a.Data); err != nil {
				return nil, fmt.Errorf("postgres: decode alert data %s: %w", a.ID, err)
			}
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list alerts for %s: %w", pair, err)
	}
	return alerts, nil
}

// Compile-time interface check.
var _ domain.AlertStore = (*AlertStore)(nil)
