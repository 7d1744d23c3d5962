package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"notegraph/application/ports"
	"notegraph/application/queries"
	"notegraph/application/queries/models"
	"notegraph/domain/core/valueobjects"
	pkgerrors "notegraph/pkg/errors"
)

// GetDocumentHandler serves single-document reads
type GetDocumentHandler struct {
	repo   ports.DocumentRepository
	logger *zap.Logger
}

// NewGetDocumentHandler creates a new handler instance
func NewGetDocumentHandler(repo ports.DocumentRepository, logger *zap.Logger) *GetDocumentHandler {
	return &GetDocumentHandler{repo: repo, logger: logger}
}

// Handle executes the get document query
func (h *GetDocumentHandler) Handle(ctx context.Context, query queries.GetDocumentQuery) (*models.DocumentReadModel, error) {
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
	return &models.DocumentReadModel{
		ID:        doc.ID().String(),
		Title:     doc.Title(),
		Content:   doc.Content(),
		Version:   doc.Version(),
		UpdatedAt: doc.UpdatedAt(),
	}, nil
}

// ListDocumentsHandler serves the document index
type ListDocumentsHandler struct {
	repo   ports.DocumentRepository
	logger *zap.Logger
}

// NewListDocumentsHandler creates a new handler instance
func NewListDocumentsHandler(repo ports.DocumentRepository, logger *zap.Logger) *ListDocumentsHandler {
	return &ListDocumentsHandler{repo: repo, logger: logger}
}

// Handle executes the list documents query
func (h *ListDocumentsHandler) Handle(ctx context.Context, query queries.ListDocumentsQuery) ([]models.DocumentSummary, error) {
	docs, err := h.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]models.DocumentSummary, 0, len(docs))
	for _, doc := range docs {
		summaries = append(summaries, models.DocumentSummary{
			ID:        doc.ID().String(),
			Title:     doc.Title(),
			Version:   doc.Version(),
			UpdatedAt: doc.UpdatedAt(),
		})
	}
	return summaries, nil
}
