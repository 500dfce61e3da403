package feed

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/Charbel-5/moondev-coding-challenge/internal/domain/submission"
)

const eventsChannel = "submissions.events"

// Bus routes published events to the local hub, via redis pub/sub when a
// client is configured so every instance sees every mutation. Without
// redis it degrades to single-instance in-process delivery.
type Bus struct {
	hub    *Hub
	rdb    *redis.Client
	logger *slog.Logger
}

func NewBus(hub *Hub, rdb *redis.Client, logger *slog.Logger) *Bus {
	return &Bus{hub: hub, rdb: rdb, logger: logger}
}

func (b *Bus) Publish(ctx context.Context, event submission.Event) {
	if b.rdb == nil {
		b.hub.Publish(event)
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("encode feed event", "error", err)
		b.hub.Publish(event)
		return
	}
	if err := b.rdb.Publish(ctx, eventsChannel, payload).Err(); err != nil {
		// Fall back to local delivery so at least this instance's
		// subscribers converge.
		b.logger.Error("publish feed event to redis", "error", err)
		b.hub.Publish(event)
	}
}

// Run pumps redis messages into the local hub until ctx is cancelled.
// Redis delivers channel messages in publish order, so per-submission
// ordering survives the hop.
func (b *Bus) Run(ctx context.Context) {
	if b.rdb == nil {
		return
	}
	pubsub := b.rdb.Subscribe(ctx, eventsChannel)
	defer pubsub.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-pubsub.Channel():
			if !ok {
				return
			}
			var event submission.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.logger.Error("decode feed event", "error", err)
				continue
			}
			b.hub.Publish(event)
		}
	}
}
