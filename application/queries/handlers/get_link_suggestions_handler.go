package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"notegraph/application/ports"
	"notegraph/application/queries"
	"notegraph/application/queries/models"
	"notegraph/domain/core/aggregates"
	"notegraph/domain/core/valueobjects"
	"notegraph/domain/services"
	pkgerrors "notegraph/pkg/errors"
)

// GetLinkSuggestionsHandler proposes wiki references for title mentions
// the author has not linked yet. Already-linked targets are filtered out
// using the document's current outgoing edges.
type GetLinkSuggestionsHandler struct {
	repo   ports.DocumentRepository
	graph  *aggregates.LinkGraph
	logger *zap.Logger
}

// NewGetLinkSuggestionsHandler creates a new handler instance
func NewGetLinkSuggestionsHandler(
	repo ports.DocumentRepository,
	graph *aggregates.LinkGraph,
	logger *zap.Logger,
) *GetLinkSuggestionsHandler {
	return &GetLinkSuggestionsHandler{repo: repo, graph: graph, logger: logger}
}

// Handle executes the link suggestions query
func (h *GetLinkSuggestionsHandler) Handle(ctx context.Context, query queries.GetLinkSuggestionsQuery) ([]models.LinkSuggestionReadModel, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}
	docID, err := valueobjects.NewDocumentIDFromString(query.DocumentID)
	if err != nil {
		return nil, pkgerrors.NewValidationError("invalid document id")
	}

	doc, err := h.repo.Load(ctx, docID)
	if err != nil {
		return nil, err
	}

	linked := make(map[string]bool)
	for _, edge := range h.graph.Outgoing(docID) {
		linked[edge.To.String()] = true
	}

	all, err := h.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	titleToID := make(map[string]valueobjects.DocumentID)
	var titles []string
	for _, other := range all {
		if other.ID().Equals(docID) || linked[other.ID().String()] {
			continue
		}
		titles = append(titles, other.Title())
		titleToID[other.Title()] = other.ID()
	}

	suggestions := services.SuggestLinks(doc.Content(), titles)
	out := make([]models.LinkSuggestionReadModel, 0, len(suggestions))
	for _, s := range suggestions {
		out = append(out, models.LinkSuggestionReadModel{
			TargetID:      titleToID[s.Title].String(),
			TargetTitle:   s.Title,
			SuggestedLink: s.SuggestedLink,
			Confidence:    s.Confidence,
			Reason:        s.Reason,
		})
	}
	return out, nil
}
