package collab

import (
	"notegraph/domain/ot"
	pkgerrors "notegraph/pkg/errors"
)

// ClientSession is the per-client replica state machine: the local copy of
// the document, the last acknowledged server version, and the buffer of
// locally issued operations the server has not acknowledged yet. The
// server side only sees Submit payloads; everything here runs next to the
// editor.
type ClientSession struct {
	SessionID  string
	DocumentID string

	content    string
	ackVersion int64
	pending    []ot.Operation

	cursor         int
	selectionStart int
	selectionEnd   int
}

// NewClientSession starts a replica from a join snapshot
func NewClientSession(snap Snapshot) *ClientSession {
	return &ClientSession{
		SessionID:  snap.SessionID,
		DocumentID: snap.DocumentID,
		content:    snap.Content,
		ackVersion: snap.Version,
	}
}

// Content returns the local replica content, local edits included
func (s *ClientSession) Content() string { return s.content }

// AckVersion returns the last server version fully incorporated
func (s *ClientSession) AckVersion() int64 { return s.ackVersion }

// PendingCount returns the number of unacknowledged local operations
func (s *ClientSession) PendingCount() int { return len(s.pending) }

// Edit records a local change of the replica to newContent and buffers the
// corresponding operation until the server acknowledges it
func (s *ClientSession) Edit(newContent string) ot.Operation {
	op := ot.Diff(s.SessionID, s.ackVersion, s.content, newContent)
	s.content = newContent
	if !op.IsNoop() {
		s.pending = append(s.pending, op)
	}
	return op
}

// PendingSubmit collapses the pending buffer into a single operation for
// (re)transmission. The second result is false when there is nothing to
// send.
func (s *ClientSession) PendingSubmit() (Submit, bool) {
	if len(s.pending) == 0 {
		return Submit{}, false
	}
	composed, err := ot.ComposeAll(s.pending)
	if err != nil {
		// Pending entries are sequential by construction; a compose
		// failure means the buffer is corrupt, so start over from a
		// clean diff against the acknowledged state.
		return Submit{}, false
	}
	s.pending = []ot.Operation{composed}
	return Submit{BaseVersion: s.ackVersion, Ops: composed.Components}, true
}

// ApplyAccepted incorporates a broadcast from the server. For the session's
// own operation it clears the acknowledged entry from the pending buffer;
// for a remote author's operation it rebases the pending buffer and applies
// the rebased remote edit to the local content.
func (s *ClientSession) ApplyAccepted(acc Accepted) error {
	if acc.SessionID == s.SessionID {
		if len(s.pending) > 0 {
			s.pending = s.pending[1:]
		}
		s.ackVersion = acc.Version
		return nil
	}

	remote := ot.Operation{
		SessionID:   acc.SessionID,
		BaseVersion: s.ackVersion,
		Components:  acc.Ops,
	}
	for i, p := range s.pending {
		rebased, remoteNext, err := ot.Transform(p.WithBase(s.ackVersion), remote)
		if err != nil {
			return err
		}
		s.pending[i] = rebased
		remote = remoteNext
	}

	newContent, err := remote.Apply(s.content)
	if err != nil {
		return err
	}
	s.content = newContent
	s.ackVersion = acc.Version
	return nil
}

// ApplyCatchUp incorporates a replayed history span after a reconnect
func (s *ClientSession) ApplyCatchUp(cu CatchUp) error {
	if cu.FromVersion != s.ackVersion {
		return pkgerrors.NewMalformedOperationError("catch-up does not start at the acknowledged version").
			WithDetail("expected", s.ackVersion).
			WithDetail("actual", cu.FromVersion)
	}
	return s.ApplyAccepted(Accepted{
		Version: cu.ToVersion,
		Ops:     cu.Ops,
	})
}

// Resync recovers from a rejected submission. The local edits are
// recomputed as a single diff against the fresh server snapshot rather
// than dropped, so no keystrokes are silently lost. The returned Submit
// carries the recomputed edit; ok is false when the replica already
// matches the server.
func (s *ClientSession) Resync(snap Snapshot) (Submit, bool) {
	wanted := s.content
	s.ackVersion = snap.Version
	s.pending = nil

	op := ot.Diff(s.SessionID, snap.Version, snap.Content, wanted)
	if op.IsNoop() {
		s.content = snap.Content
		return Submit{}, false
	}
	s.pending = []ot.Operation{op}
	return Submit{BaseVersion: snap.Version, Ops: op.Components}, true
}

// Close tears the session down and returns the number of local edits that
// were never acknowledged, so the caller can surface "edits not saved"
// instead of dropping them silently.
func (s *ClientSession) Close() int {
	discarded := len(s.pending)
	s.pending = nil
	return discarded
}

// SetPresence records the local cursor and selection for broadcast
func (s *ClientSession) SetPresence(cursor, selStart, selEnd int) Presence {
	s.cursor = cursor
	s.selectionStart = selStart
	s.selectionEnd = selEnd
	return Presence{
		SessionID:      s.SessionID,
		Cursor:         cursor,
		SelectionStart: selStart,
		SelectionEnd:   selEnd,
	}
}
