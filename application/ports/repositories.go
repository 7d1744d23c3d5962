package ports

import (
	"context"

	"notegraph/domain/core/entities"
	"notegraph/domain/core/valueobjects"
	"notegraph/domain/events"
	"notegraph/domain/ot"
)

// DocumentRepository defines the interface for document persistence
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type DocumentRepository interface {
	// Load retrieves a document's current content and version
	Load(ctx context.Context, id valueobjects.DocumentID) (*entities.Document, error)

	// Save persists a document snapshot (create or update)
	Save(ctx context.Context, doc *entities.Document) error

	// AppendOperation appends an accepted operation to the document's log.
	// version is the version the operation produced.
	AppendOperation(ctx context.Context, id valueobjects.DocumentID, version int64, op ot.Operation) error

	// Delete removes a document
	Delete(ctx context.Context, id valueobjects.DocumentID) error

	// List retrieves all documents
	List(ctx context.Context) ([]*entities.Document, error)

	// ResolveTitle maps a title to the id of an existing document
	ResolveTitle(ctx context.Context, title string) (valueobjects.DocumentID, bool)
}

// EventPublisher publishes domain events to the change notifier fan-out.
// Delivery is at-least-once; consumers deduplicate by aggregate id and
// version.
type EventPublisher interface {
	Publish(ctx context.Context, evts ...events.DomainEvent)
}

// EventSubscriber registers change consumers (search indexing, UI refresh)
type EventSubscriber interface {
	// Subscribe registers a handler for an event type. The returned
	// function removes the subscription.
	Subscribe(eventType string, handler func(events.DomainEvent)) func()
}

// EventBus is the full change notifier surface
type EventBus interface {
	EventPublisher
	EventSubscriber
}
