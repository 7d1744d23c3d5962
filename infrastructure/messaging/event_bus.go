// Package messaging implements the in-process change notifier: an
// at-least-once fanout of domain events to registered consumers.
package messaging

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"notegraph/domain/events"
)

type subscription struct {
	id      int
	handler func(events.DomainEvent)
}

// EventBus fans domain events out to subscribers in-process. Delivery is
// synchronous and at-least-once; consumers deduplicate by aggregate id and
// version. A panicking consumer is isolated so one bad handler cannot take
// the publisher down.
type EventBus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string][]subscription
	logger *zap.Logger
}

// NewEventBus creates an empty bus
func NewEventBus(logger *zap.Logger) *EventBus {
	return &EventBus{
		subs:   make(map[string][]subscription),
		logger: logger,
	}
}

// Subscribe registers a handler for an event type. Subscribing to "*"
// receives every event. The returned function removes the subscription.
func (b *EventBus) Subscribe(eventType string, handler func(events.DomainEvent)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs[eventType] = append(b.subs[eventType], subscription{id: id, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		list := b.subs[eventType]
		for i, s := range list {
			if s.id == id {
				b.subs[eventType] = append(list[:i], list[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers events to every matching subscriber
func (b *EventBus) Publish(ctx context.Context, evts ...events.DomainEvent) {
	for _, evt := range evts {
		b.mu.RLock()
		handlers := make([]func(events.DomainEvent), 0,
			len(b.subs[evt.GetEventType()])+len(b.subs["*"]))
		for _, s := range b.subs[evt.GetEventType()] {
			handlers = append(handlers, s.handler)
		}
		for _, s := range b.subs["*"] {
			handlers = append(handlers, s.handler)
		}
		b.mu.RUnlock()

		for _, h := range handlers {
			b.deliver(h, evt)
		}
	}
}

func (b *EventBus) deliver(handler func(events.DomainEvent), evt events.DomainEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Event consumer panicked",
				zap.String("event_type", evt.GetEventType()),
				zap.Any("panic", r))
		}
	}()
	handler(evt)
}
