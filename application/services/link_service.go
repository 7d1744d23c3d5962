package services

import (
	"context"

	"go.uber.org/zap"

	"notegraph/application/ports"
	"notegraph/domain/core/aggregates"
	"notegraph/domain/core/valueobjects"
	"notegraph/domain/events"
	"notegraph/domain/services"
	"notegraph/pkg/observability"
)

// LinkService keeps the link graph consistent with settled document
// content. It runs the extraction pass behind the settle debounce, swaps
// the document's outgoing edge set atomically, and publishes the exact
// delta so consumers patch incrementally instead of reloading.
type LinkService struct {
	graph     *aggregates.LinkGraph
	extractor *services.LinkExtractor
	publisher ports.EventPublisher
	logger    *zap.Logger
	metrics   *observability.Metrics
}

// NewLinkService creates the link maintenance service
func NewLinkService(
	graph *aggregates.LinkGraph,
	extractor *services.LinkExtractor,
	publisher ports.EventPublisher,
	logger *zap.Logger,
	metrics *observability.Metrics,
) *LinkService {
	return &LinkService{
		graph:     graph,
		extractor: extractor,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
	}
}

// Refresh re-extracts a document's links from settled content and applies
// the resulting edge set to the graph. The coordinator calls this as its
// settle hook, so the graph always reflects a settled state, never a
// mid-burst one.
func (s *LinkService) Refresh(ctx context.Context, docID valueobjects.DocumentID, content string, version int64) {
	links := s.extractor.Extract(ctx, docID, content)
	added, removed := s.graph.UpsertEdges(docID, links)

	if s.metrics != nil {
		s.metrics.LinkExtractions.Inc()
		s.metrics.GraphEdges.Set(float64(s.graph.EdgeCount()))
	}
	if len(added) == 0 && len(removed) == 0 {
		return
	}

	s.logger.Debug("Link graph updated",
		zap.String("document_id", docID.String()),
		zap.Int("added", len(added)),
		zap.Int("removed", len(removed)))
	s.publisher.Publish(ctx, events.NewGraphChanged(docID, version, added, removed))
}

// RegisterDocument makes a document a real graph node. Links that were
// parked on a placeholder for its title move onto the document, and the
// adopted edges go out as a graph delta so backlinks resolve immediately.
func (s *LinkService) RegisterDocument(ctx context.Context, docID valueobjects.DocumentID, title string, version int64) {
	adopted := s.graph.RegisterDocument(docID, title)
	if s.metrics != nil {
		s.metrics.GraphEdges.Set(float64(s.graph.EdgeCount()))
	}
	if len(adopted) > 0 {
		s.logger.Debug("Placeholder links adopted",
			zap.String("document_id", docID.String()),
			zap.Int("adopted", len(adopted)))
		s.publisher.Publish(ctx, events.NewGraphChanged(docID, version, adopted, nil))
	}
}

// RemoveDocument detaches a deleted document from the graph. Inbound links
// from surviving documents stay as broken backlink sources.
func (s *LinkService) RemoveDocument(ctx context.Context, docID valueobjects.DocumentID, version int64) {
	removed := s.graph.RemoveDocument(docID)
	if s.metrics != nil {
		s.metrics.GraphEdges.Set(float64(s.graph.EdgeCount()))
	}
	if len(removed) > 0 {
		s.publisher.Publish(ctx, events.NewGraphChanged(docID, version, nil, removed))
	}
}

// Rebuild seeds the graph from every stored document, used once at
// startup so backlinks are available before any editing session settles.
func (s *LinkService) Rebuild(ctx context.Context, repo ports.DocumentRepository) error {
	docs, err := repo.List(ctx)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		s.graph.RegisterDocument(doc.ID(), doc.Title())
	}
	for _, doc := range docs {
		links := s.extractor.Extract(ctx, doc.ID(), doc.Content())
		s.graph.UpsertEdges(doc.ID(), links)
	}
	if s.metrics != nil {
		s.metrics.GraphEdges.Set(float64(s.graph.EdgeCount()))
	}
	s.logger.Info("Link graph rebuilt",
		zap.Int("documents", len(docs)),
		zap.Int("edges", s.graph.EdgeCount()))
	return nil
}
