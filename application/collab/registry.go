package collab

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"notegraph/application/ports"
	"notegraph/domain/core/valueobjects"
	"notegraph/pkg/observability"
)

// registryEntry pairs a coordinator with its lease count. A lease is held
// from Acquire to Release, independent of whether a session has joined
// yet, so a coordinator handed out for a connection that is still in the
// middle of its handshake can never be dropped underneath it.
type registryEntry struct {
	coord  *Coordinator
	leases int
}

// Registry tracks the live coordinators, one per document with at least
// one leaseholder. Documents nobody holds have no coordinator and no
// in-memory state beyond what the repository holds; the first Acquire
// loads the document and spins one up, the last Release flushes and drops
// it. Each Acquire must be paired with exactly one Release.
type Registry struct {
	mu           sync.Mutex
	coordinators map[string]*registryEntry

	repo      ports.DocumentRepository
	publisher ports.EventPublisher
	settle    SettleFunc
	logger    *zap.Logger
	metrics   *observability.Metrics

	historyLimit   int
	settleDelay    time.Duration
	sessionTimeout time.Duration
}

// NewRegistry creates an empty coordinator registry
func NewRegistry(
	repo ports.DocumentRepository,
	publisher ports.EventPublisher,
	settle SettleFunc,
	historyLimit int,
	settleDelay time.Duration,
	sessionTimeout time.Duration,
	logger *zap.Logger,
	metrics *observability.Metrics,
) *Registry {
	return &Registry{
		coordinators:   make(map[string]*registryEntry),
		repo:           repo,
		publisher:      publisher,
		settle:         settle,
		logger:         logger,
		metrics:        metrics,
		historyLimit:   historyLimit,
		settleDelay:    settleDelay,
		sessionTimeout: sessionTimeout,
	}
}

// Acquire leases the coordinator for a document, loading the document and
// activating a coordinator if none is live yet. The lease keeps the
// coordinator in the registry until the matching Release, which is what
// makes acquire-then-join safe against a concurrent last-session leave.
func (r *Registry) Acquire(ctx context.Context, docID valueobjects.DocumentID) (*Coordinator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.coordinators[docID.String()]; ok {
		e.leases++
		return e.coord, nil
	}

	doc, err := r.repo.Load(ctx, docID)
	if err != nil {
		return nil, err
	}

	coord := NewCoordinator(doc, r.repo, r.publisher, r.settle,
		r.historyLimit, r.settleDelay, r.logger, r.metrics)
	r.coordinators[docID.String()] = &registryEntry{coord: coord, leases: 1}
	if r.metrics != nil {
		r.metrics.ActiveDocuments.Set(float64(len(r.coordinators)))
	}
	r.logger.Info("Coordinator activated",
		zap.String("document_id", docID.String()),
		zap.Int64("version", doc.Version()))
	return coord, nil
}

// Lookup returns the live coordinator for a document, if any. The result
// carries no lease; callers that will operate on the coordinator should
// Acquire instead.
func (r *Registry) Lookup(docID valueobjects.DocumentID) (*Coordinator, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.coordinators[docID.String()]
	if !ok {
		return nil, false
	}
	return e.coord, true
}

// Release returns one lease. When the last lease goes, the coordinator is
// dropped and any pending settle flushed. Releasing an already-evicted
// document is a no-op.
func (r *Registry) Release(ctx context.Context, docID valueobjects.DocumentID) {
	r.mu.Lock()
	e, ok := r.coordinators[docID.String()]
	if !ok {
		r.mu.Unlock()
		return
	}
	e.leases--
	if e.leases > 0 {
		r.mu.Unlock()
		return
	}
	delete(r.coordinators, docID.String())
	if r.metrics != nil {
		r.metrics.ActiveDocuments.Set(float64(len(r.coordinators)))
	}
	r.mu.Unlock()

	e.coord.FlushSettle(ctx)
	r.logger.Info("Coordinator released",
		zap.String("document_id", docID.String()))
}

// Evict force-drops a document's coordinator regardless of leases, used
// when the document itself is deleted. Connected sessions are expired so
// their unsaved edits are surfaced before the state goes away; outstanding
// leaseholders see their later Release turn into a no-op.
func (r *Registry) Evict(ctx context.Context, docID valueobjects.DocumentID) {
	r.mu.Lock()
	e, ok := r.coordinators[docID.String()]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(r.coordinators, docID.String())
	if r.metrics != nil {
		r.metrics.ActiveDocuments.Set(float64(len(r.coordinators)))
	}
	r.mu.Unlock()

	e.coord.ExpireStale(ctx, 0)
}

// ActiveCount returns the number of live coordinators
func (r *Registry) ActiveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.coordinators)
}

// Run ticks the session reaper until the context is cancelled. Sessions
// that miss heartbeats past the configured timeout are expired. Coordinator
// lifetime is lease-driven, so the sweep only tears down sessions; the
// transports holding the leases notice the expiry and release.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.shutdown()
			return
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

func (r *Registry) sweep(ctx context.Context) {
	r.mu.Lock()
	live := make([]*Coordinator, 0, len(r.coordinators))
	for _, e := range r.coordinators {
		live = append(live, e.coord)
	}
	r.mu.Unlock()

	for _, coord := range live {
		expired := coord.ExpireStale(ctx, r.sessionTimeout)
		if len(expired) > 0 {
			r.logger.Info("Expired stale sessions",
				zap.String("document_id", coord.DocumentID().String()),
				zap.Strings("session_ids", expired))
		}
	}
}

// shutdown flushes every live coordinator so no settled-but-unpersisted
// state is lost on exit.
func (r *Registry) shutdown() {
	r.mu.Lock()
	live := make([]*Coordinator, 0, len(r.coordinators))
	for _, e := range r.coordinators {
		live = append(live, e.coord)
	}
	r.coordinators = make(map[string]*registryEntry)
	r.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, coord := range live {
		coord.FlushSettle(ctx)
	}
	if r.metrics != nil {
		r.metrics.ActiveDocuments.Set(0)
	}
}
