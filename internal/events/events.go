// Package events broadcasts cart changes to every interested view, such as
// the navbar badge, so they can refetch.
package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CartChanged says a user's cart was modified. Subscribers refetch the
// cart or its count; the event itself carries no snapshot.
type CartChanged struct {
	UserID string    `json:"userId"`
	At     time.Time `json:"at"`
}

// Bus fans cart events out to any number of subscribers. Each subscriber
// receives every event published after it subscribed, until it cancels.
type Bus interface {
	Publish(ctx context.Context, ev CartChanged) error
	Subscribe(ctx context.Context) (<-chan CartChanged, func(), error)
	Close() error
}

// ErrClosed is returned by operations on a closed bus.
var ErrClosed = errors.New("event bus closed")

const defaultBuffer = 16

// NewBus returns a Redis-backed bus when redisURL is set, and an in-process
// bus otherwise.
func NewBus(ctx context.Context, redisURL string, logger *zap.Logger) (Bus, error) {
	if redisURL == "" {
		return NewLocalBus(logger), nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return NewRedisBus(client, logger), nil
}
