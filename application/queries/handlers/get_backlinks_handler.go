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

// GetBacklinksHandler serves "what links here" reads off the incoming
// adjacency index, so the cost scales with the answer, not the graph.
type GetBacklinksHandler struct {
	graph  *aggregates.LinkGraph
	logger *zap.Logger
}

// NewGetBacklinksHandler creates a new handler instance
func NewGetBacklinksHandler(graph *aggregates.LinkGraph, logger *zap.Logger) *GetBacklinksHandler {
	return &GetBacklinksHandler{graph: graph, logger: logger}
}

// Handle executes the get backlinks query
func (h *GetBacklinksHandler) Handle(ctx context.Context, query queries.GetBacklinksQuery) (*models.BacklinksReadModel, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}
	docID, err := valueobjects.NewDocumentIDFromString(query.DocumentID)
	if err != nil {
		return nil, pkgerrors.NewValidationError("invalid document id")
	}

	backlinks := h.graph.Backlinks(docID)
	rows := make([]models.BacklinkReadModel, 0, len(backlinks))
	for _, bl := range backlinks {
		row := models.BacklinkReadModel{
			FromID: bl.From.String(),
			Anchor: bl.Anchor,
			Broken: bl.Broken,
		}
		if view, ok := h.graph.Node(bl.From); ok {
			row.FromTitle = view.Title
		}
		rows = append(rows, row)
	}
	return &models.BacklinksReadModel{
		DocumentID: query.DocumentID,
		Backlinks:  rows,
	}, nil
}
