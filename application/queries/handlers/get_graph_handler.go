package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"notegraph/application/queries"
	"notegraph/application/queries/models"
	"notegraph/domain/core/aggregates"
	"notegraph/domain/core/valueobjects"
	pkgerrors "notegraph/pkg/errors"
)

// GetGraphDataHandler serves whole-graph snapshots for rendering
type GetGraphDataHandler struct {
	graph  *aggregates.LinkGraph
	logger *zap.Logger
}

// NewGetGraphDataHandler creates a new handler instance
func NewGetGraphDataHandler(graph *aggregates.LinkGraph, logger *zap.Logger) *GetGraphDataHandler {
	return &GetGraphDataHandler{graph: graph, logger: logger}
}

// Handle executes the get graph data query
func (h *GetGraphDataHandler) Handle(ctx context.Context, query queries.GetGraphDataQuery) (*models.GraphReadModel, error) {
	nodes := h.graph.Nodes()
	edges := h.graph.Edges()

	out := &models.GraphReadModel{
		Nodes: make([]models.GraphNodeReadModel, 0, len(nodes)),
		Edges: make([]models.GraphEdgeReadModel, 0, len(edges)),
	}
	for _, n := range nodes {
		out.Nodes = append(out.Nodes, models.GraphNodeReadModel{
			ID:          n.ID.String(),
			Title:       n.Title,
			Placeholder: n.Placeholder,
			Removed:     n.Removed,
			InDegree:    n.InDegree,
			OutDegree:   n.OutDegree,
		})
	}
	for _, e := range edges {
		out.Edges = append(out.Edges, models.GraphEdgeReadModel{
			FromID: e.From.String(),
			ToID:   e.To.String(),
			Anchor: e.Anchor,
		})
	}
	return out, nil
}

// GetShortestPathHandler answers path queries between two documents
type GetShortestPathHandler struct {
	graph  *aggregates.LinkGraph
	logger *zap.Logger
}

// NewGetShortestPathHandler creates a new handler instance
func NewGetShortestPathHandler(graph *aggregates.LinkGraph, logger *zap.Logger) *GetShortestPathHandler {
	return &GetShortestPathHandler{graph: graph, logger: logger}
}

// Handle executes the shortest path query
func (h *GetShortestPathHandler) Handle(ctx context.Context, query queries.GetShortestPathQuery) (*models.PathReadModel, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}
	fromID, err := valueobjects.NewDocumentIDFromString(query.FromID)
	if err != nil {
		return nil, pkgerrors.NewValidationError("invalid from id")
	}
	toID, err := valueobjects.NewDocumentIDFromString(query.ToID)
	if err != nil {
		return nil, pkgerrors.NewValidationError("invalid to id")
	}

	path, found := h.graph.ShortestPath(fromID, toID)
	out := &models.PathReadModel{Found: found}
	for _, id := range path {
		out.Path = append(out.Path, id.String())
	}
	return out, nil
}

// GetConnectedComponentHandler answers reachability queries
type GetConnectedComponentHandler struct {
	graph  *aggregates.LinkGraph
	logger *zap.Logger
}

// NewGetConnectedComponentHandler creates a new handler instance
func NewGetConnectedComponentHandler(graph *aggregates.LinkGraph, logger *zap.Logger) *GetConnectedComponentHandler {
	return &GetConnectedComponentHandler{graph: graph, logger: logger}
}

// Handle executes the connected component query
func (h *GetConnectedComponentHandler) Handle(ctx context.Context, query queries.GetConnectedComponentQuery) (*models.ComponentReadModel, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}
	docID, err := valueobjects.NewDocumentIDFromString(query.DocumentID)
	if err != nil {
		return nil, pkgerrors.NewValidationError("invalid document id")
	}

	members := h.graph.ConnectedComponent(docID)
	out := &models.ComponentReadModel{DocumentID: query.DocumentID}
	for _, id := range members {
		out.Members = append(out.Members, id.String())
	}
	return out, nil
}
