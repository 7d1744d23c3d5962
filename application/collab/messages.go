package collab

import (
	"encoding/json"

	"notegraph/domain/ot"
)

// Message types carried on a session channel. The transport frames and
// authenticates; these payloads are the whole protocol the core speaks.
const (
	MessageSubmit   = "submit"
	MessageAccepted = "accepted"
	MessageCatchUp  = "catch_up"
	MessageSnapshot = "snapshot"
	MessagePresence = "presence"
	MessageError    = "error"
)

// Envelope wraps a typed payload for the wire
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// NewEnvelope marshals a payload into an envelope
func NewEnvelope(msgType string, payload interface{}) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: msgType, Payload: data}, nil
}

// Submit is a client's edit, computed against BaseVersion
type Submit struct {
	BaseVersion int64          `json:"base_version"`
	Ops         []ot.Component `json:"ops"`
}

// Accepted announces an operation accepted into the authoritative history.
// The carried ops are the transformed form, valid against Version-1; the
// author's own acceptance doubles as its acknowledgment.
type Accepted struct {
	Version   int64          `json:"version"`
	SessionID string         `json:"session_id"`
	Ops       []ot.Component `json:"ops"`
}

// CatchUp replays a span of history to a rejoining session as one composed
// operation covering (FromVersion, ToVersion]
type CatchUp struct {
	FromVersion int64          `json:"from_version"`
	ToVersion   int64          `json:"to_version"`
	Ops         []ot.Component `json:"ops"`
}

// Snapshot is the full document state sent on join or resync
type Snapshot struct {
	SessionID  string `json:"session_id"`
	DocumentID string `json:"document_id"`
	Version    int64  `json:"version"`
	Content    string `json:"content"`
}

// Presence carries a session's cursor and selection for remote display
type Presence struct {
	SessionID      string `json:"session_id"`
	Cursor         int    `json:"cursor"`
	SelectionStart int    `json:"selection_start"`
	SelectionEnd   int    `json:"selection_end"`
}

// ErrorMessage reports a failed submission back on the session's channel.
// Kind matches the error taxonomy, so clients can pick the right recovery:
// resync for FUTURE_VERSION_REJECTED, full reload for HISTORY_TRUNCATED.
type ErrorMessage struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}
