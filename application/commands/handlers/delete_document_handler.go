package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"notegraph/application/collab"
	"notegraph/application/commands"
	"notegraph/application/ports"
	appservices "notegraph/application/services"
	"notegraph/domain/core/valueobjects"
	"notegraph/domain/events"
	pkgerrors "notegraph/pkg/errors"
)

// DeleteDocumentHandler handles document deletion commands
type DeleteDocumentHandler struct {
	repo      ports.DocumentRepository
	registry  *collab.Registry
	links     *appservices.LinkService
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewDeleteDocumentHandler creates a new handler instance
func NewDeleteDocumentHandler(
	repo ports.DocumentRepository,
	registry *collab.Registry,
	links *appservices.LinkService,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *DeleteDocumentHandler {
	return &DeleteDocumentHandler{
		repo:      repo,
		registry:  registry,
		links:     links,
		publisher: publisher,
		logger:    logger,
	}
}

// Handle executes the delete document command
func (h *DeleteDocumentHandler) Handle(ctx context.Context, cmd commands.DeleteDocumentCommand) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("invalid command: %w", err)
	}
	docID, err := valueobjects.NewDocumentIDFromString(cmd.DocumentID)
	if err != nil {
		return pkgerrors.NewValidationError("invalid document id")
	}

	doc, err := h.repo.Load(ctx, docID)
	if err != nil {
		return err
	}

	// Connected sessions are expired first so their unsaved edits are
	// surfaced, then the coordinator state goes away with the document.
	h.registry.Evict(ctx, docID)

	if err := h.repo.Delete(ctx, docID); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	h.links.RemoveDocument(ctx, docID, doc.Version())
	h.publisher.Publish(ctx, events.NewDocumentDeleted(docID, doc.Version()))

	h.logger.Info("Document deleted",
		zap.String("document_id", docID.String()),
		zap.String("title", doc.Title()))
	return nil
}
