package services

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"notegraph/application/ports"
	"notegraph/domain/core/aggregates"
	"notegraph/domain/core/entities"
	"notegraph/domain/core/valueobjects"
	"notegraph/domain/events"
	domainservices "notegraph/domain/services"
	"notegraph/pkg/observability"
)

type fixedResolver struct {
	titles map[string]valueobjects.DocumentID
}

func (r *fixedResolver) ResolveTitle(_ context.Context, title string) (valueobjects.DocumentID, bool) {
	id, ok := r.titles[valueobjects.NormalizeTitle(title)]
	return id, ok
}

type capturePublisher struct {
	published []events.DomainEvent
}

func (p *capturePublisher) Publish(_ context.Context, evts ...events.DomainEvent) {
	p.published = append(p.published, evts...)
}

func (p *capturePublisher) ofType(eventType string) []events.DomainEvent {
	var out []events.DomainEvent
	for _, evt := range p.published {
		if evt.GetEventType() == eventType {
			out = append(out, evt)
		}
	}
	return out
}

type listRepo struct {
	ports.DocumentRepository
	docs []*entities.Document
}

func (r *listRepo) List(_ context.Context) ([]*entities.Document, error) {
	return r.docs, nil
}

func newTestService(resolver *fixedResolver) (*LinkService, *aggregates.LinkGraph, *capturePublisher) {
	graph := aggregates.NewLinkGraph()
	publisher := &capturePublisher{}
	svc := NewLinkService(
		graph,
		domainservices.NewLinkExtractor(resolver),
		publisher,
		zap.NewNop(),
		observability.NewMetrics(prometheus.NewRegistry()),
	)
	return svc, graph, publisher
}

func TestRefreshAppliesEdgeDelta(t *testing.T) {
	ctx := context.Background()
	alpha := valueobjects.NewDocumentID()
	beta := valueobjects.NewDocumentID()
	resolver := &fixedResolver{titles: map[string]valueobjects.DocumentID{
		valueobjects.NormalizeTitle("Beta"): beta,
	}}
	svc, graph, publisher := newTestService(resolver)
	svc.RegisterDocument(ctx, alpha, "Alpha", 0)
	svc.RegisterDocument(ctx, beta, "Beta", 0)

	svc.Refresh(ctx, alpha, "see [[Beta]]", 1)

	backs := graph.Backlinks(beta)
	require.Len(t, backs, 1)
	assert.True(t, backs[0].From.Equals(alpha))
	assert.False(t, backs[0].Broken)
	require.Len(t, publisher.ofType("graph.changed"), 1)

	// Removing the reference removes the edge and raises a second delta.
	svc.Refresh(ctx, alpha, "no links here", 2)
	assert.Empty(t, graph.Backlinks(beta))
	assert.Len(t, publisher.ofType("graph.changed"), 2)

	// An unchanged edge set is not an event.
	svc.Refresh(ctx, alpha, "still no links", 3)
	assert.Len(t, publisher.ofType("graph.changed"), 2)
}

func TestRefreshUnresolvedTitleCreatesPlaceholder(t *testing.T) {
	ctx := context.Background()
	alpha := valueobjects.NewDocumentID()
	resolver := &fixedResolver{titles: map[string]valueobjects.DocumentID{}}
	svc, graph, publisher := newTestService(resolver)
	svc.RegisterDocument(ctx, alpha, "Alpha", 0)

	svc.Refresh(ctx, alpha, "future note: [[Gamma]]", 1)

	placeholder := valueobjects.NewPlaceholderID("Gamma")
	view, ok := graph.Node(placeholder)
	require.True(t, ok)
	assert.True(t, view.Placeholder)
	assert.Equal(t, 1, view.InDegree)
	deltas := len(publisher.ofType("graph.changed"))

	// Creating the named document adopts the placeholder's links on the
	// spot. Alpha is not re-extracted; registration alone must do it.
	gamma := valueobjects.NewDocumentID()
	resolver.titles[valueobjects.NormalizeTitle("Gamma")] = gamma
	svc.RegisterDocument(ctx, gamma, "Gamma", 1)

	backs := graph.Backlinks(gamma)
	require.Len(t, backs, 1)
	assert.True(t, backs[0].From.Equals(alpha))
	assert.False(t, backs[0].Broken)
	assert.Len(t, publisher.ofType("graph.changed"), deltas+1)

	// The placeholder node is gone and alpha's outgoing edge points at
	// the real document now.
	_, ok = graph.Node(placeholder)
	assert.False(t, ok)
	out := graph.Outgoing(alpha)
	require.Len(t, out, 1)
	assert.True(t, out[0].To.Equals(gamma))

	// A later extraction of alpha resolves the same target, so the edge
	// set is unchanged and no further delta goes out.
	svc.Refresh(ctx, alpha, "future note: [[Gamma]]", 2)
	assert.Len(t, publisher.ofType("graph.changed"), deltas+1)
}

func TestRemoveDocumentKeepsBrokenBacklinks(t *testing.T) {
	ctx := context.Background()
	alpha := valueobjects.NewDocumentID()
	beta := valueobjects.NewDocumentID()
	resolver := &fixedResolver{titles: map[string]valueobjects.DocumentID{
		valueobjects.NormalizeTitle("Beta"): beta,
	}}
	svc, graph, publisher := newTestService(resolver)
	svc.RegisterDocument(ctx, alpha, "Alpha", 0)
	svc.RegisterDocument(ctx, beta, "Beta", 0)
	svc.Refresh(ctx, beta, "back to [[Alpha]]", 1)
	svc.Refresh(ctx, alpha, "see [[Beta]]", 1)

	svc.RemoveDocument(ctx, beta, 2)

	// Alpha's outgoing edge to the removed note survives as a tombstone
	// target, so the backlink stays visible and marked broken.
	view, ok := graph.Node(beta)
	require.True(t, ok)
	assert.True(t, view.Removed)
	assert.NotEmpty(t, publisher.ofType("graph.changed"))
}

func TestRebuildSeedsGraphFromStore(t *testing.T) {
	ctx := context.Background()
	alpha := valueobjects.NewDocumentID()
	beta := valueobjects.NewDocumentID()
	resolver := &fixedResolver{titles: map[string]valueobjects.DocumentID{
		valueobjects.NormalizeTitle("Alpha"): alpha,
		valueobjects.NormalizeTitle("Beta"):  beta,
	}}
	svc, graph, _ := newTestService(resolver)

	repo := &listRepo{docs: []*entities.Document{
		entities.ReconstructDocument(alpha, "Alpha", "see [[Beta]]", 3),
		entities.ReconstructDocument(beta, "Beta", "see [[Alpha]]", 1),
	}}
	require.NoError(t, svc.Rebuild(ctx, repo))

	assert.Equal(t, 2, graph.EdgeCount())
	require.Len(t, graph.Backlinks(alpha), 1)
	require.Len(t, graph.Backlinks(beta), 1)

	path, found := graph.ShortestPath(alpha, beta)
	require.True(t, found)
	assert.Len(t, path, 2)
}
