package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/tempowatch/sentinel/internal/domain"
)

// Pub/Sub channels carried by the bus.
const (
	ChannelDashboard = "ch:dashboard"
	ChannelAlert     = "ch:alert"
)

// alertStream keeps a durable trail of recent alerts alongside the ephemeral
// pub/sub fan-out.
const alertStream = "stream:alerts"

// streamMaxLen is the approximate maximum stream length, enforced via
// XADD MAXLEN ~.
const streamMaxLen int64 = 10000

// SignalBus implements domain.SignalBus using Redis Pub/Sub for fan-out and
// a Redis Stream for durable recent alerts.
type SignalBus struct {
	rdb *redis.Client
}

// NewSignalBus creates a SignalBus backed by the given Client.
func NewSignalBus(c *Client) *SignalBus {
	return &SignalBus{rdb: c.Underlying()}
}

// PublishDashboard broadcasts a dashboard state as JSON on ch:dashboard.
func (sb *SignalBus) PublishDashboard(ctx context.Context, state domain.DashboardState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("redis: marshal dashboard: %w", err)
	}
	if err := sb.rdb.Publish(ctx, ChannelDashboard, payload).Err(); err != nil {
		return fmt.Errorf("redis: publish %s: %w", ChannelDashboard, err)
	}
	return nil
}

// PublishAlert broadcasts an alert on ch:alert and appends it to the durable
// alert stream.
func (sb *SignalBus) PublishAlert(ctx context.Context, alert domain.SentinelAlert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("redis: marshal alert: %w", err)
	}
	if err := sb.rdb.Publish(ctx, ChannelAlert, payload).Err(); err != nil {
		return fmt.Errorf("redis: publish %s: %w", ChannelAlert, err)
	}
	args := &redis.XAddArgs{
		Stream: alertStream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]interface{}{"payload": payload},
	}
	if err := sb.rdb.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("redis: stream append %s: %w", alertStream, err)
	}
	return nil
}

// Subscribe creates a Pub/Sub subscription on the given channels and returns
// a read-only channel of payloads. The subscription closes when the context
// is cancelled; the returned channel is closed at that point as well.
func (sb *SignalBus) Subscribe(ctx context.Context, channels ...string) (<-chan domain.BusMessage, error) {
	pubsub := sb.rdb.Subscribe(ctx, channels...)

	// Verify the subscription is established.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("redis: subscribe %v: %w", channels, err)
	}

	out := make(chan domain.BusMessage, 128)
	go func() {
		defer close(out)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- domain.BusMessage{Channel: msg.Channel, Payload: []byte(msg.Payload)}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// Close is a no-op; the underlying client's lifecycle is owned by Client.
func (sb *SignalBus) Close() error { return nil }

// Compile-time interface check.
var _ domain.SignalBus = (*SignalBus)(nil)
