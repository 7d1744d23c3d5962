package collab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notegraph/domain/ot"
	pkgerrors "notegraph/pkg/errors"
)

func newReplica(sessionID, content string, version int64) *ClientSession {
	return NewClientSession(Snapshot{
		SessionID:  sessionID,
		DocumentID: "doc-1",
		Version:    version,
		Content:    content,
	})
}

func TestEditBuffersUntilAcked(t *testing.T) {
	s := newReplica("alice", "hello", 0)

	op := s.Edit("hello world")
	assert.False(t, op.IsNoop())
	assert.Equal(t, "hello world", s.Content())
	assert.Equal(t, 1, s.PendingCount())

	// A no-change edit buffers nothing.
	s.Edit("hello world")
	assert.Equal(t, 1, s.PendingCount())
}

func TestPendingSubmitComposesBuffer(t *testing.T) {
	s := newReplica("alice", "ab", 0)
	s.Edit("aXb")
	s.Edit("aXYb")
	require.Equal(t, 2, s.PendingCount())

	sub, ok := s.PendingSubmit()
	require.True(t, ok)
	assert.Equal(t, int64(0), sub.BaseVersion)
	// The buffer collapses to one entry so a retransmission resends the
	// same composed operation.
	assert.Equal(t, 1, s.PendingCount())

	composed := ot.Operation{SessionID: "alice", Components: sub.Ops}
	applied, err := composed.Apply("ab")
	require.NoError(t, err)
	assert.Equal(t, "aXYb", applied)

	_, ok = newReplica("idle", "ab", 0).PendingSubmit()
	assert.False(t, ok)
}

func TestOwnAcceptanceClearsPendingHead(t *testing.T) {
	s := newReplica("alice", "ab", 0)
	s.Edit("aXb")
	sub, _ := s.PendingSubmit()

	err := s.ApplyAccepted(Accepted{Version: 1, SessionID: "alice", Ops: sub.Ops})
	require.NoError(t, err)
	assert.Equal(t, 0, s.PendingCount())
	assert.Equal(t, int64(1), s.AckVersion())
	assert.Equal(t, "aXb", s.Content())
}

func TestRemoteAcceptanceRebasesPending(t *testing.T) {
	s := newReplica("bob", "ab", 0)
	s.Edit("aYb")

	// Alice's insert at the same position was accepted first; her session
	// id orders first, so Y lands after X.
	remote := ot.NewBuilder("alice", 0).Retain(1).Insert("X").Retain(1).Build()
	err := s.ApplyAccepted(Accepted{Version: 1, SessionID: "alice", Ops: remote.Components})
	require.NoError(t, err)

	assert.Equal(t, "aXYb", s.Content())
	assert.Equal(t, int64(1), s.AckVersion())
	assert.Equal(t, 1, s.PendingCount())

	// The rebased pending operation still applies cleanly after the ack.
	sub, ok := s.PendingSubmit()
	require.True(t, ok)
	assert.Equal(t, int64(1), sub.BaseVersion)
}

func TestApplyCatchUpRequiresContiguity(t *testing.T) {
	s := newReplica("bob", "hello", 3)

	err := s.ApplyCatchUp(CatchUp{FromVersion: 1, ToVersion: 5})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeMalformedOperation))

	span := ot.NewBuilder("", 3).Retain(5).Insert("!!").Build()
	err = s.ApplyCatchUp(CatchUp{FromVersion: 3, ToVersion: 5, Ops: span.Components})
	require.NoError(t, err)
	assert.Equal(t, "hello!!", s.Content())
	assert.Equal(t, int64(5), s.AckVersion())
}

func TestResyncRecomputesLocalEdits(t *testing.T) {
	s := newReplica("bob", "hello", 2)
	s.Edit("hello world")
	s.Edit("hello world!")

	// The server moved on while bob's submissions were failing; resync
	// re-expresses the local edits against the fresh snapshot.
	sub, ok := s.Resync(Snapshot{Version: 7, Content: "hey hello"})
	require.True(t, ok)
	assert.Equal(t, int64(7), sub.BaseVersion)
	assert.Equal(t, int64(7), s.AckVersion())
	assert.Equal(t, 1, s.PendingCount())

	op := ot.Operation{SessionID: "bob", Components: sub.Ops}
	applied, err := op.Apply("hey hello")
	require.NoError(t, err)
	assert.Equal(t, "hello world!", applied)
	assert.Equal(t, "hello world!", s.Content())
}

func TestResyncWithNoDivergenceAdoptsSnapshot(t *testing.T) {
	s := newReplica("bob", "same", 2)

	sub, ok := s.Resync(Snapshot{Version: 4, Content: "same"})
	assert.False(t, ok)
	assert.Empty(t, sub.Ops)
	assert.Equal(t, int64(4), s.AckVersion())
	assert.Equal(t, 0, s.PendingCount())
}

func TestCloseReportsUnacknowledgedEdits(t *testing.T) {
	s := newReplica("bob", "ab", 0)
	s.Edit("abc")
	s.Edit("abcd")

	assert.Equal(t, 2, s.Close())
	assert.Equal(t, 0, s.PendingCount())
	assert.Equal(t, 0, newReplica("idle", "ab", 0).Close())
}

func TestPresenceRoundTrip(t *testing.T) {
	s := newReplica("alice", "hello", 0)
	p := s.SetPresence(3, 1, 4)
	assert.Equal(t, "alice", p.SessionID)
	assert.Equal(t, 3, p.Cursor)
	assert.Equal(t, 1, p.SelectionStart)
	assert.Equal(t, 4, p.SelectionEnd)
}
