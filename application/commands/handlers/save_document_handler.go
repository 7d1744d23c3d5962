package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"notegraph/application/collab"
	"notegraph/application/commands"
	"notegraph/application/ports"
	appservices "notegraph/application/services"
	"notegraph/domain/core/entities"
	"notegraph/domain/core/valueobjects"
	pkgerrors "notegraph/pkg/errors"
)

// SaveDocumentHandler handles whole-text saves. The save leases the
// document's coordinator and serializes through it as a single
// server-authored edit, so it never races with live editing sessions.
type SaveDocumentHandler struct {
	repo     ports.DocumentRepository
	registry *collab.Registry
	links    *appservices.LinkService
	logger   *zap.Logger
}

// NewSaveDocumentHandler creates a new handler instance
func NewSaveDocumentHandler(
	repo ports.DocumentRepository,
	registry *collab.Registry,
	links *appservices.LinkService,
	logger *zap.Logger,
) *SaveDocumentHandler {
	return &SaveDocumentHandler{
		repo:     repo,
		registry: registry,
		links:    links,
		logger:   logger,
	}
}

// Handle executes the save document command
func (h *SaveDocumentHandler) Handle(ctx context.Context, cmd commands.SaveDocumentCommand) (*entities.Document, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("invalid command: %w", err)
	}
	docID, err := valueobjects.NewDocumentIDFromString(cmd.DocumentID)
	if err != nil {
		return nil, pkgerrors.NewValidationError("invalid document id")
	}

	coord, err := h.registry.Acquire(ctx, docID)
	if err != nil {
		return nil, err
	}
	defer h.registry.Release(ctx, docID)

	renamed := coord.Rename(ctx, cmd.Title)
	version, err := coord.ReplaceContent(ctx, cmd.Content)
	if err != nil {
		return nil, err
	}
	if renamed {
		h.links.RegisterDocument(ctx, docID, cmd.Title, version)
	}
	coord.FlushSettle(ctx)

	doc, err := h.repo.Load(ctx, docID)
	if err != nil {
		return nil, err
	}

	h.logger.Info("Document saved",
		zap.String("document_id", docID.String()),
		zap.Int64("version", doc.Version()))
	return doc, nil
}
