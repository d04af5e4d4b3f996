package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"pcshop-storefront/internal/logger"
)

// Channel is the Redis pub/sub channel carrying cart events.
const Channel = "pcshop:cart-events"

// RedisBus shares cart events between storefront instances over Redis
// pub/sub. Each subscriber holds its own subscription.
type RedisBus struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
	buffer  int
}

func NewRedisBus(client *redis.Client, l *zap.Logger) *RedisBus {
	return &RedisBus{
		client:  client,
		channel: Channel,
		logger:  logger.OrNop(l),
		buffer:  defaultBuffer,
	}
}

func (b *RedisBus) Publish(ctx context.Context, ev CartChanged) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding cart event: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("publishing cart event: %w", err)
	}
	return nil
}

func (b *RedisBus) Subscribe(ctx context.Context) (<-chan CartChanged, func(), error) {
	subCtx, cancel := context.WithCancel(ctx)

	pubsub := b.client.Subscribe(subCtx, b.channel)
	if _, err := pubsub.Receive(subCtx); err != nil {
		cancel()
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("subscribing to cart events: %w", err)
	}

	out := make(chan CartChanged, b.buffer)
	go func() {
		defer func() {
			_ = pubsub.Close()
			close(out)
		}()

		msgs := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev CartChanged
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					b.logger.Warn("Failed to decode cart event", zap.Error(err))
					continue
				}
				if subCtx.Err() != nil {
					return
				}
				select {
				case out <- ev:
				default:
					b.logger.Debug("Dropped cart event for slow subscriber", zap.String("user_id", ev.UserID))
				}
			}
		}
	}()

	return out, cancel, nil
}

func (b *RedisBus) Close() error {
	return b.client.Close()
}
