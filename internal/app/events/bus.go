// internal/app/events/bus.go
package events

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Bus is the fire-and-forget emission boundary between the matchmaking core
// and the notification system.
type Bus interface {
	Publish(ctx context.Context, evt Event)
}

// InProcBus is an in-process pub/sub Bus. Publish never blocks: slow
// subscribers drop events rather than stalling the publisher.
type InProcBus struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
	log  *zap.Logger
}

// NewInProcBus creates an empty bus.
func NewInProcBus(logger *zap.Logger) *InProcBus {
	return &InProcBus{
		subs: make(map[chan Event]struct{}),
		log:  logger,
	}
}

// Subscribe registers a new subscriber. The returned cancel function removes
// the subscription and closes the channel.
func (b *InProcBus) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber.
func (b *InProcBus) Publish(_ context.Context, evt Event) {
	b.mu.RLock()
	for ch := range b.subs {
		select {
		case ch <- evt:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()

	b.log.Info("domain event published",
		zap.String("event_id", evt.ID),
		zap.String("type", evt.Type),
		zap.String("session_id", evt.SessionID))
}
