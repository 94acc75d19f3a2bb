package notify

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

const channelPrefix = "duet:pairing:"

// Channel is the redis pub/sub channel for a pairing.
func Channel(pairingID string) string {
	return channelPrefix + pairingID
}

// RedisNotifier publishes events on a per-pairing redis channel so every
// service instance can relay them to its own websocket clients.
type RedisNotifier struct {
	rdb redis.UniversalClient
	now func() time.Time
}

func NewRedisNotifier(rdb redis.UniversalClient) *RedisNotifier {
	return &RedisNotifier{
		rdb: rdb,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (n *RedisNotifier) Publish(ctx context.Context, pairingID, event string, payload any) {
	data, err := encode(pairingID, event, payload, n.now())
	if err != nil {
		slog.Error("failed to encode event", "error", err, "event", event)
		return
	}

	if err := n.rdb.Publish(ctx, Channel(pairingID), string(data)).Err(); err != nil {
		slog.Warn("failed to publish event", "error", err, "event", event, "pairing_id", pairingID)
	}
}

// Relay forwards events published by any instance to the local hub until ctx
// is done.
func Relay(ctx context.Context, rdb redis.UniversalClient, hub *Hub) {
	sub := rdb.PSubscribe(ctx, channelPrefix+"*")
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			pairingID := strings.TrimPrefix(msg.Channel, channelPrefix)
			hub.broadcastRaw(pairingID, []byte(msg.Payload))
		}
	}
}
