package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/cabfleet/taxi-api/internal/domain"
)

// event is the wire shape published to Redis. The record uses the same JSON
// representation clients see (the 15-field whitelist), so subscribers and API
// consumers agree on field names.
type event struct {
	Kind domain.EventKind `json:"kind"`
	Taxi domain.Taxi      `json:"record"`
}

// RedisNotifier publishes change events to a Redis pub/sub channel.
// Subscribers interested in fleet changes (dashboards, downstream syncs)
// consume the channel; this service never reads it back.
type RedisNotifier struct {
	client  *redis.Client
	channel string
	log     *slog.Logger
}

// NewRedisNotifier constructs a RedisNotifier publishing to channel on client.
func NewRedisNotifier(client *redis.Client, channel string, log *slog.Logger) *RedisNotifier {
	return &RedisNotifier{client: client, channel: channel, log: log}
}

// Changed publishes the event as JSON. Publish failures are logged and
// swallowed: losing an event must not fail the mutation that produced it.
func (n *RedisNotifier) Changed(ctx context.Context, kind domain.EventKind, taxi domain.Taxi) {
	payload, err := json.Marshal(event{Kind: kind, Taxi: taxi})
	if err != nil {
		n.log.ErrorContext(ctx, "marshal change event", "error", err)
		return
	}

	if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		n.log.WarnContext(ctx, "publish change event",
			"channel", n.channel,
			"kind", string(kind),
			"id", taxi.ID.String(),
			"error", err,
		)
	}
}
