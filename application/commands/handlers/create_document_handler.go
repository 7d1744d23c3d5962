package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"notegraph/application/commands"
	"notegraph/application/ports"
	appservices "notegraph/application/services"
	"notegraph/domain/core/entities"
	"notegraph/domain/events"
	"notegraph/domain/ot"
)

// CreateDocumentHandler handles document creation commands
type CreateDocumentHandler struct {
	repo      ports.DocumentRepository
	links     *appservices.LinkService
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewCreateDocumentHandler creates a new handler instance
func NewCreateDocumentHandler(
	repo ports.DocumentRepository,
	links *appservices.LinkService,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *CreateDocumentHandler {
	return &CreateDocumentHandler{
		repo:      repo,
		links:     links,
		publisher: publisher,
		logger:    logger,
	}
}

// Handle executes the create document command
func (h *CreateDocumentHandler) Handle(ctx context.Context, cmd commands.CreateDocumentCommand) (*entities.Document, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("invalid command: %w", err)
	}

	doc := entities.NewDocument(cmd.Title)
	if cmd.Content != "" {
		// Initial content enters the history as the first operation, so
		// version and history stay aligned from the start.
		op := ot.Diff("", 0, "", cmd.Content)
		if _, err := doc.ApplyAccepted(op); err != nil {
			return nil, err
		}
	}

	if err := h.repo.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	h.links.RegisterDocument(ctx, doc.ID(), doc.Title(), doc.Version())
	h.links.Refresh(ctx, doc.ID(), doc.Content(), doc.Version())
	h.publisher.Publish(ctx, events.NewDocumentCreated(doc.ID(), doc.Title(), doc.Version()))

	h.logger.Info("Document created",
		zap.String("document_id", doc.ID().String()),
		zap.String("title", doc.Title()))
	return doc, nil
}
