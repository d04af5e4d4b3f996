package events

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"pcshop-storefront/internal/logger"
)

// LocalBus is an in-process Bus. Publishers never block: a subscriber whose
// buffer is full misses that event.
type LocalBus struct {
	logger *zap.Logger
	buffer int

	mu     sync.RWMutex
	subs   map[uint64]chan CartChanged
	nextID uint64
	closed bool
}

func NewLocalBus(l *zap.Logger) *LocalBus {
	return &LocalBus{
		logger: logger.OrNop(l),
		buffer: defaultBuffer,
		subs:   make(map[uint64]chan CartChanged),
	}
}

func (b *LocalBus) Publish(ctx context.Context, ev CartChanged) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}
	for id, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			b.logger.Debug("Dropped cart event for slow subscriber",
				zap.Uint64("subscriber", id),
				zap.String("user_id", ev.UserID),
			)
		}
	}
	return nil
}

// Subscribe registers a subscriber. The returned cancel func is idempotent
// and also runs when ctx is done; it closes the channel.
func (b *LocalBus) Subscribe(ctx context.Context) (<-chan CartChanged, func(), error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, nil, ErrClosed
	}
	id := b.nextID
	b.nextID++
	ch := make(chan CartChanged, b.buffer)
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			b.mu.Lock()
			if c, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(c)
			}
			b.mu.Unlock()
		})
	}
	stop := context.AfterFunc(ctx, unsubscribe)
	return ch, func() {
		stop()
		unsubscribe()
	}, nil
}

// Subscribers returns the number of live subscribers.
func (b *LocalBus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *LocalBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
	return nil
}
