package events

import (
	"time"

	"notegraph/domain/core/entities"
	"notegraph/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int64
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int64     `json:"version"`
}

func (e BaseEvent) GetAggregateID() string   { return e.AggregateID }
func (e BaseEvent) GetEventType() string     { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time  { return e.Timestamp }
func (e BaseEvent) GetVersion() int64        { return e.Version }

// Document events

// DocumentChanged is raised when an operation is accepted into a document's
// authoritative history. Delivery to consumers is at-least-once; they
// deduplicate by (aggregate id, version).
type DocumentChanged struct {
	BaseEvent
	DocumentID valueobjects.DocumentID `json:"document_id"`
	SessionID  string                  `json:"session_id"`
}

// NewDocumentChanged creates a DocumentChanged event
func NewDocumentChanged(docID valueobjects.DocumentID, version int64, sessionID string) DocumentChanged {
	return DocumentChanged{
		BaseEvent: BaseEvent{
			AggregateID: docID.String(),
			EventType:   "document.changed",
			Timestamp:   time.Now(),
			Version:     version,
		},
		DocumentID: docID,
		SessionID:  sessionID,
	}
}

// Graph events

// GraphChanged is raised after a document's outgoing edges are replaced by
// a link extraction pass, carrying the exact delta.
type GraphChanged struct {
	BaseEvent
	DocumentID   valueobjects.DocumentID `json:"document_id"`
	AddedEdges   []entities.Link         `json:"added_edges"`
	RemovedEdges []entities.Link         `json:"removed_edges"`
}

// NewGraphChanged creates a GraphChanged event
func NewGraphChanged(docID valueobjects.DocumentID, version int64, added, removed []entities.Link) GraphChanged {
	return GraphChanged{
		BaseEvent: BaseEvent{
			AggregateID: docID.String(),
			EventType:   "graph.changed",
			Timestamp:   time.Now(),
			Version:     version,
		},
		DocumentID:   docID,
		AddedEdges:   added,
		RemovedEdges: removed,
	}
}

// Session events

// SessionJoined is raised when a session connects to a document
type SessionJoined struct {
	BaseEvent
	DocumentID valueobjects.DocumentID `json:"document_id"`
	SessionID  string                  `json:"session_id"`
}

// NewSessionJoined creates a SessionJoined event
func NewSessionJoined(docID valueobjects.DocumentID, sessionID string, version int64) SessionJoined {
	return SessionJoined{
		BaseEvent: BaseEvent{
			AggregateID: docID.String(),
			EventType:   "session.joined",
			Timestamp:   time.Now(),
			Version:     version,
		},
		DocumentID: docID,
		SessionID:  sessionID,
	}
}

// SessionLeft is raised when a session disconnects or times out
type SessionLeft struct {
	BaseEvent
	DocumentID valueobjects.DocumentID `json:"document_id"`
	SessionID  string                  `json:"session_id"`
}

// NewSessionLeft creates a SessionLeft event
func NewSessionLeft(docID valueobjects.DocumentID, sessionID string, version int64) SessionLeft {
	return SessionLeft{
		BaseEvent: BaseEvent{
			AggregateID: docID.String(),
			EventType:   "session.left",
			Timestamp:   time.Now(),
			Version:     version,
		},
		DocumentID: docID,
		SessionID:  sessionID,
	}
}

// EditsDiscarded is raised when a session is torn down with a non-empty
// pending buffer. The edits are gone; the event is what makes that loss
// visible to the client instead of silent.
type EditsDiscarded struct {
	BaseEvent
	DocumentID   valueobjects.DocumentID `json:"document_id"`
	SessionID    string                  `json:"session_id"`
	PendingCount int                     `json:"pending_count"`
}

// NewEditsDiscarded creates an EditsDiscarded event
func NewEditsDiscarded(docID valueobjects.DocumentID, sessionID string, pendingCount int) EditsDiscarded {
	return EditsDiscarded{
		BaseEvent: BaseEvent{
			AggregateID: docID.String(),
			EventType:   "session.edits_discarded",
			Timestamp:   time.Now(),
			Version:     0,
		},
		DocumentID:   docID,
		SessionID:    sessionID,
		PendingCount: pendingCount,
	}
}

// DocumentCreated is raised when a document is created through the command
// side, so graph consumers can register the node before any edit settles.
type DocumentCreated struct {
	BaseEvent
	DocumentID valueobjects.DocumentID `json:"document_id"`
	Title      string                  `json:"title"`
}

// NewDocumentCreated creates a DocumentCreated event
func NewDocumentCreated(docID valueobjects.DocumentID, title string, version int64) DocumentCreated {
	return DocumentCreated{
		BaseEvent: BaseEvent{
			AggregateID: docID.String(),
			EventType:   "document.created",
			Timestamp:   time.Now(),
			Version:     version,
		},
		DocumentID: docID,
		Title:      title,
	}
}

// DocumentDeleted is raised when a document is removed. Inbound links from
// surviving documents stay in the graph as broken backlink sources.
type DocumentDeleted struct {
	BaseEvent
	DocumentID valueobjects.DocumentID `json:"document_id"`
}

// NewDocumentDeleted creates a DocumentDeleted event
func NewDocumentDeleted(docID valueobjects.DocumentID, version int64) DocumentDeleted {
	return DocumentDeleted{
		BaseEvent: BaseEvent{
			AggregateID: docID.String(),
			EventType:   "document.deleted",
			Timestamp:   time.Now(),
			Version:     version,
		},
		DocumentID: docID,
	}
}
