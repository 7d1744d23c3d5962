package messaging

import (
	"context"

	"notegraph/application/ports"
	"notegraph/domain/events"
)

// FanoutPublisher delivers every event to each wrapped publisher, used to
// pair the in-process bus with the cross-instance relay.
type FanoutPublisher struct {
	targets []ports.EventPublisher
}

// NewFanoutPublisher composes publishers
func NewFanoutPublisher(targets ...ports.EventPublisher) *FanoutPublisher {
	return &FanoutPublisher{targets: targets}
}

// Publish delivers events to every target
func (f *FanoutPublisher) Publish(ctx context.Context, evts ...events.DomainEvent) {
	for _, t := range f.targets {
		t.Publish(ctx, evts...)
	}
}
