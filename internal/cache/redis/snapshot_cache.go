package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tempowatch/sentinel/internal/domain"
)

// SnapshotCache implements domain.SnapshotCache as one JSON blob per pair
// with a TTL matching the freshness window.
//
// Key schema:
//
//	snap:{pair} - JSON-encoded OrderbookSnapshot
type SnapshotCache struct {
	rdb *redis.Client
}

// NewSnapshotCache creates a SnapshotCache backed by the given Client.
func NewSnapshotCache(c *Client) *SnapshotCache {
	return &SnapshotCache{rdb: c.Underlying()}
}

func snapKey(pair string) string { return "snap:" + pair }

// Put stores the snapshot with the given TTL.
func (sc *SnapshotCache) Put(ctx context.Context, pair string, snap domain.OrderbookSnapshot, ttl time.Duration) error {
	body, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("redis: marshal snapshot %s: %w", pair, err)
	}
	if err := sc.rdb.Set(ctx, snapKey(pair), body, ttl).Err(); err != nil {
		return fmt.Errorf("redis: put snapshot %s: %w", pair, err)
	}
	return nil
}

// Get returns the cached snapshot, or domain.ErrNotFound on miss or expiry.
func (sc *SnapshotCache) Get(ctx context.Context, pair string) (domain.OrderbookSnapshot, error) {
	raw, err := sc.rdb.Get(ctx, snapKey(pair)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.OrderbookSnapshot{}, domain.ErrNotFound
		}
		return domain.OrderbookSnapshot{}, fmt.Errorf("redis: get snapshot %s: %w", pair, err)
	}
	var snap domain.OrderbookSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return domain.OrderbookSnapshot{}, fmt.Errorf("redis: decode snapshot %s: %w", pair, err)
	}
	return snap, nil
}

// Compile-time interface check.
var _ domain.SnapshotCache = (*SnapshotCache)(nil)
