// Package redis relays change notifications across instances over a Redis
// pub/sub channel, so clients connected to one instance hear about edits
// accepted on another.
package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"notegraph/domain/events"
)

// Notification is the wire form of a relayed event. Source identifies the
// publishing instance so subscribers can skip their own messages.
type Notification struct {
	Source      string          `json:"source"`
	EventType   string          `json:"event_type"`
	AggregateID string          `json:"aggregate_id"`
	Version     int64           `json:"version"`
	Payload     json.RawMessage `json:"payload"`
}

// Event adapts the notification for the in-process bus, so local
// subscribers hear about changes accepted on other instances.
func (n Notification) Event() RemoteEvent {
	return RemoteEvent{
		BaseEvent: events.BaseEvent{
			AggregateID: n.AggregateID,
			EventType:   n.EventType,
			Timestamp:   time.Now(),
			Version:     n.Version,
		},
		Payload: n.Payload,
	}
}

// RemoteEvent is a relayed event received from another instance
type RemoteEvent struct {
	events.BaseEvent
	Payload json.RawMessage `json:"payload"`
}

// Notifier publishes domain events to a Redis channel and forwards
// notifications received from other instances to a local handler.
type Notifier struct {
	client  *redis.Client
	channel string
	source  string
	logger  *zap.Logger
}

// NewNotifier connects to Redis and verifies the connection
func NewNotifier(ctx context.Context, addr, password, channel string, logger *zap.Logger) (*Notifier, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &Notifier{
		client:  client,
		channel: channel,
		source:  uuid.NewString(),
		logger:  logger,
	}, nil
}

// Close releases the Redis connection
func (n *Notifier) Close() error {
	return n.client.Close()
}

// Publish relays domain events to the channel. Failures are logged, not
// returned; local consumers already got the event through the in-process
// bus and remote delivery is best effort on top of at-least-once.
func (n *Notifier) Publish(ctx context.Context, evts ...events.DomainEvent) {
	for _, evt := range evts {
		payload, err := json.Marshal(evt)
		if err != nil {
			n.logger.Error("Failed to marshal event for relay",
				zap.String("event_type", evt.GetEventType()), zap.Error(err))
			continue
		}
		note := Notification{
			Source:      n.source,
			EventType:   evt.GetEventType(),
			AggregateID: evt.GetAggregateID(),
			Version:     evt.GetVersion(),
			Payload:     payload,
		}
		data, err := json.Marshal(note)
		if err != nil {
			continue
		}
		if err := n.client.Publish(ctx, n.channel, data).Err(); err != nil {
			n.logger.Warn("Failed to relay event to Redis",
				zap.String("event_type", evt.GetEventType()), zap.Error(err))
		}
	}
}

// Run subscribes to the channel and forwards received notifications to
// handler until the context is cancelled.
func (n *Notifier) Run(ctx context.Context, handler func(Notification)) {
	pubsub := n.client.Subscribe(ctx, n.channel)
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
			var note Notification
			if err := json.Unmarshal([]byte(msg.Payload), &note); err != nil {
				n.logger.Warn("Dropping malformed notification", zap.Error(err))
				continue
			}
			if note.Source == n.source {
				continue
			}
			handler(note)
		}
	}
}
