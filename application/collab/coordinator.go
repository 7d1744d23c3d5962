package collab

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"notegraph/application/ports"
	"notegraph/domain/core/entities"
	"notegraph/domain/core/valueobjects"
	"notegraph/domain/events"
	"notegraph/domain/ot"
	pkgerrors "notegraph/pkg/errors"
	"notegraph/pkg/observability"
)

// SendFunc delivers an envelope to one session's transport. It must not
// block: a slow or disconnected session is the transport's problem, never
// the coordinator's.
type SendFunc func(Envelope)

// SettleFunc runs after a settled edit batch with the document's current
// content. The link service hangs its extraction pass here.
type SettleFunc func(ctx context.Context, docID valueobjects.DocumentID, content string, version int64)

type sessionHandle struct {
	id        string
	ack       int64
	send      SendFunc
	lastSeen  time.Time
	discarded int // submissions rejected and not yet surfaced as saved
}

// Coordinator owns one document's authoritative state: content, version,
// history, and the set of connected sessions. Every mutation of that triple
// goes through the coordinator's mutex, which is the single-writer
// discipline that makes acceptance atomic. Coordinators for different
// documents run fully in parallel.
type Coordinator struct {
	mu       sync.Mutex
	doc      *entities.Document
	sessions map[string]*sessionHandle

	repo      ports.DocumentRepository
	publisher ports.EventPublisher
	settle    SettleFunc
	logger    *zap.Logger
	metrics   *observability.Metrics

	historyLimit int
	settleDelay  time.Duration
	settleTimer  *time.Timer
	settleDirty  bool
}

// NewCoordinator creates the coordinator for a loaded document
func NewCoordinator(
	doc *entities.Document,
	repo ports.DocumentRepository,
	publisher ports.EventPublisher,
	settle SettleFunc,
	historyLimit int,
	settleDelay time.Duration,
	logger *zap.Logger,
	metrics *observability.Metrics,
) *Coordinator {
	return &Coordinator{
		doc:          doc,
		sessions:     make(map[string]*sessionHandle),
		repo:         repo,
		publisher:    publisher,
		settle:       settle,
		logger:       logger,
		metrics:      metrics,
		historyLimit: historyLimit,
		settleDelay:  settleDelay,
	}
}

// DocumentID returns the coordinated document's id
func (c *Coordinator) DocumentID() valueobjects.DocumentID {
	return c.doc.ID()
}

// SessionCount returns the number of connected sessions
func (c *Coordinator) SessionCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}

// JoinResult is the initial state handed to a joining session: a full
// snapshot for first joins, or a composed catch-up for rejoins.
type JoinResult struct {
	Snapshot *Snapshot
	CatchUp  *CatchUp
}

// Join connects a session. ackVersion below zero requests a full snapshot;
// otherwise the session is caught up from that version with one composed
// operation covering everything it missed.
func (c *Coordinator) Join(ctx context.Context, sessionID string, ackVersion int64, send SendFunc) (*JoinResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := &JoinResult{}
	if ackVersion < 0 || ackVersion == c.doc.Version() {
		result.Snapshot = &Snapshot{
			SessionID:  sessionID,
			DocumentID: c.doc.ID().String(),
			Version:    c.doc.Version(),
			Content:    c.doc.Content(),
		}
	} else {
		missed, err := c.doc.HistorySince(ackVersion)
		if err != nil {
			// Too far behind, or ahead of the server: hand over a
			// fresh snapshot instead of failing the join.
			if !pkgerrors.IsType(err, pkgerrors.ErrorTypeHistoryTruncated) &&
				!pkgerrors.IsType(err, pkgerrors.ErrorTypeFutureVersion) {
				return nil, err
			}
			result.Snapshot = &Snapshot{
				SessionID:  sessionID,
				DocumentID: c.doc.ID().String(),
				Version:    c.doc.Version(),
				Content:    c.doc.Content(),
			}
		} else {
			composed, err := ot.ComposeAll(missed)
			if err != nil {
				return nil, err
			}
			result.CatchUp = &CatchUp{
				FromVersion: ackVersion,
				ToVersion:   c.doc.Version(),
				Ops:         composed.Components,
			}
		}
	}

	c.sessions[sessionID] = &sessionHandle{
		id:       sessionID,
		ack:      c.doc.Version(),
		send:     send,
		lastSeen: time.Now(),
	}
	if c.metrics != nil {
		c.metrics.ActiveSessions.Inc()
	}
	c.publisher.Publish(ctx, events.NewSessionJoined(c.doc.ID(), sessionID, c.doc.Version()))
	return result, nil
}

// Submit runs the acceptance protocol for one operation: fetch the history
// the submitter has not seen, transform the operation over it in version
// order, apply, append, increment, broadcast. The whole step holds the
// document lock, so no other acceptance interleaves.
func (c *Coordinator) Submit(ctx context.Context, sessionID string, sub Submit) (Accepted, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	handle, ok := c.sessions[sessionID]
	if !ok {
		return Accepted{}, pkgerrors.NewNotFoundError("session")
	}
	handle.lastSeen = time.Now()

	op := ot.Operation{
		SessionID:   sessionID,
		BaseVersion: sub.BaseVersion,
		Components:  sub.Ops,
	}

	concurrent, err := c.doc.HistorySince(sub.BaseVersion)
	if err != nil {
		return Accepted{}, c.rejectLocked(handle, err)
	}
	for _, h := range concurrent {
		if h.SessionID == sessionID {
			// A session's next submission must be parented past its own
			// accepted operations; the client buffers until acked.
			return Accepted{}, c.rejectLocked(handle, pkgerrors.NewMalformedOperationError("submission not parented past the session's own history"))
		}
		// Each pass rebases op onto the history entry's base, so after the
		// loop it is valid against the current version.
		op = op.WithBase(h.BaseVersion)
		if op, _, err = ot.Transform(op, h); err != nil {
			return Accepted{}, c.rejectLocked(handle, err)
		}
	}

	// Validate against current content before touching durable state, so a
	// malformed operation is rejected whole.
	accepted := op.WithBase(c.doc.Version())
	if _, err := accepted.Apply(c.doc.Content()); err != nil {
		return Accepted{}, c.rejectLocked(handle, err)
	}

	newVersion := c.doc.Version() + 1
	if err := c.repo.AppendOperation(ctx, c.doc.ID(), newVersion, accepted); err != nil {
		return Accepted{}, c.rejectLocked(handle, pkgerrors.NewDatabaseError("append operation", err))
	}
	if _, err := c.doc.ApplyAccepted(accepted); err != nil {
		// Cannot happen after the pre-apply check; treat as corruption.
		return Accepted{}, pkgerrors.NewInternalError("accepted operation failed to apply", err)
	}
	c.doc.TrimHistory(c.historyLimit)

	ack := Accepted{
		Version:   newVersion,
		SessionID: sessionID,
		Ops:       accepted.Components,
	}
	handle.ack = newVersion

	env, err := NewEnvelope(MessageAccepted, ack)
	if err == nil {
		start := time.Now()
		for _, h := range c.sessions {
			if h.id != sessionID {
				h.send(env)
			}
		}
		if c.metrics != nil {
			c.metrics.BroadcastLatency.Observe(time.Since(start).Seconds())
		}
	}

	if c.metrics != nil {
		c.metrics.OperationsAccepted.WithLabelValues(c.doc.ID().String()).Inc()
		c.metrics.TransformDepth.Observe(float64(len(concurrent)))
	}
	c.publisher.Publish(ctx, events.NewDocumentChanged(c.doc.ID(), newVersion, sessionID))
	c.scheduleSettleLocked(ctx)
	return ack, nil
}

// rejectLocked records a failed submission on the session so the loss is
// surfaced at teardown, and counts the rejection. Callers hold the lock.
func (c *Coordinator) rejectLocked(handle *sessionHandle, err error) error {
	handle.discarded++
	if c.metrics != nil {
		reason := "internal"
		if appErr := pkgerrors.GetAppError(err); appErr != nil {
			reason = string(appErr.Type)
		}
		c.metrics.OperationsRejected.WithLabelValues(reason).Inc()
	}
	return err
}

// Snapshot returns the current authoritative state, used to hand a fresh
// baseline to a session recovering from a rejected submission.
func (c *Coordinator) Snapshot(sessionID string) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if h, ok := c.sessions[sessionID]; ok {
		h.ack = c.doc.Version()
	}
	return Snapshot{
		SessionID:  sessionID,
		DocumentID: c.doc.ID().String(),
		Version:    c.doc.Version(),
		Content:    c.doc.Content(),
	}
}

// ReplaceContent accepts a whole-text save as one server-authored edit.
// It diffs the new content against the authoritative state, appends the
// result at the next version, and broadcasts it to every session, so a
// REST save serializes through the same acceptance path as live edits.
// Returns the resulting version, unchanged when the save is a no-op.
func (c *Coordinator) ReplaceContent(ctx context.Context, content string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	op := ot.Diff("", c.doc.Version(), c.doc.Content(), content)
	if op.IsNoop() {
		return c.doc.Version(), nil
	}

	newVersion := c.doc.Version() + 1
	if err := c.repo.AppendOperation(ctx, c.doc.ID(), newVersion, op); err != nil {
		return 0, pkgerrors.NewDatabaseError("append operation", err)
	}
	if _, err := c.doc.ApplyAccepted(op); err != nil {
		return 0, pkgerrors.NewInternalError("accepted operation failed to apply", err)
	}
	c.doc.TrimHistory(c.historyLimit)

	if env, err := NewEnvelope(MessageAccepted, Accepted{
		Version: newVersion,
		Ops:     op.Components,
	}); err == nil {
		for _, h := range c.sessions {
			h.send(env)
		}
	}

	if c.metrics != nil {
		c.metrics.OperationsAccepted.WithLabelValues(c.doc.ID().String()).Inc()
	}
	c.publisher.Publish(ctx, events.NewDocumentChanged(c.doc.ID(), newVersion, ""))
	c.scheduleSettleLocked(ctx)
	return newVersion, nil
}

// Rename updates the title and reports whether it changed
func (c *Coordinator) Rename(ctx context.Context, title string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if title == c.doc.Title() || title == "" {
		return false
	}
	c.doc.Rename(title)
	c.scheduleSettleLocked(ctx)
	return true
}

// UpdatePresence broadcasts a session's cursor and selection to the others
func (c *Coordinator) UpdatePresence(sessionID string, p Presence) {
	c.mu.Lock()
	defer c.mu.Unlock()

	handle, ok := c.sessions[sessionID]
	if !ok {
		return
	}
	handle.lastSeen = time.Now()
	p.SessionID = sessionID

	if env, err := NewEnvelope(MessagePresence, p); err == nil {
		for _, h := range c.sessions {
			if h.id != sessionID {
				h.send(env)
			}
		}
	}
}

// Heartbeat marks a session as alive
func (c *Coordinator) Heartbeat(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if h, ok := c.sessions[sessionID]; ok {
		h.lastSeen = time.Now()
	}
}

// Leave disconnects a session cleanly
func (c *Coordinator) Leave(ctx context.Context, sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(ctx, sessionID, false)
}

// ExpireStale tears down sessions without a heartbeat inside timeout and
// returns their ids. Discarded submissions are surfaced as events, not
// silently dropped.
func (c *Coordinator) ExpireStale(ctx context.Context, timeout time.Duration) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := time.Now().Add(-timeout)
	var expired []string
	for id, h := range c.sessions {
		if h.lastSeen.Before(cutoff) {
			expired = append(expired, id)
			timeoutErr := pkgerrors.NewSessionTimeoutError(id, h.discarded)
			if env, err := NewEnvelope(MessageError, ErrorMessage{
				Kind:    string(timeoutErr.Type),
				Message: timeoutErr.Message,
			}); err == nil {
				h.send(env)
			}
			c.removeLocked(ctx, id, true)
		}
	}
	return expired
}

// FlushSettle runs any pending settle pass immediately
func (c *Coordinator) FlushSettle(ctx context.Context) {
	c.mu.Lock()
	if c.settleTimer != nil {
		c.settleTimer.Stop()
		c.settleTimer = nil
	}
	dirty := c.settleDirty
	c.settleDirty = false
	snap := entities.ReconstructDocument(c.doc.ID(), c.doc.Title(), c.doc.Content(), c.doc.Version())
	c.mu.Unlock()

	if dirty {
		c.runSettle(ctx, snap)
	}
}

func (c *Coordinator) removeLocked(ctx context.Context, sessionID string, timedOut bool) {
	h, ok := c.sessions[sessionID]
	if !ok {
		return
	}
	delete(c.sessions, sessionID)
	if c.metrics != nil {
		c.metrics.ActiveSessions.Dec()
	}

	if h.discarded > 0 || timedOut {
		c.publisher.Publish(ctx, events.NewEditsDiscarded(c.doc.ID(), sessionID, h.discarded))
	}
	c.publisher.Publish(ctx, events.NewSessionLeft(c.doc.ID(), sessionID, c.doc.Version()))
}

// scheduleSettleLocked debounces link extraction behind the edit stream so
// the graph is refreshed per settled batch, not per keystroke. Callers hold
// the lock.
func (c *Coordinator) scheduleSettleLocked(ctx context.Context) {
	c.settleDirty = true
	if c.settleTimer != nil {
		c.settleTimer.Reset(c.settleDelay)
		return
	}
	c.settleTimer = time.AfterFunc(c.settleDelay, func() {
		c.mu.Lock()
		c.settleTimer = nil
		dirty := c.settleDirty
		c.settleDirty = false
		snap := entities.ReconstructDocument(c.doc.ID(), c.doc.Title(), c.doc.Content(), c.doc.Version())
		c.mu.Unlock()

		if dirty {
			c.runSettle(context.WithoutCancel(ctx), snap)
		}
	})
}

// runSettle persists a snapshot and invokes the settle hook outside the lock
func (c *Coordinator) runSettle(ctx context.Context, snap *entities.Document) {
	if err := c.repo.Save(ctx, snap); err != nil {
		c.logger.Error("Failed to persist document snapshot",
			zap.String("document_id", snap.ID().String()),
			zap.Int64("version", snap.Version()),
			zap.Error(err),
		)
	}
	if c.settle != nil {
		c.settle(ctx, snap.ID(), snap.Content(), snap.Version())
	}
}
