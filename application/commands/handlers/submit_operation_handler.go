package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"notegraph/application/collab"
	"notegraph/application/commands"
	"notegraph/domain/core/valueobjects"
	pkgerrors "notegraph/pkg/errors"
)

// SubmitOperationHandler routes a submitted edit to the document's
// coordinator. The session must have joined first; the handler never
// creates sessions itself.
type SubmitOperationHandler struct {
	registry *collab.Registry
	logger   *zap.Logger
}

// NewSubmitOperationHandler creates a new handler instance
func NewSubmitOperationHandler(registry *collab.Registry, logger *zap.Logger) *SubmitOperationHandler {
	return &SubmitOperationHandler{registry: registry, logger: logger}
}

// Handle executes the submit operation command
func (h *SubmitOperationHandler) Handle(ctx context.Context, cmd commands.SubmitOperationCommand) (collab.Accepted, error) {
	if err := cmd.Validate(); err != nil {
		return collab.Accepted{}, fmt.Errorf("invalid command: %w", err)
	}
	docID, err := valueobjects.NewDocumentIDFromString(cmd.DocumentID)
	if err != nil {
		return collab.Accepted{}, pkgerrors.NewValidationError("invalid document id")
	}

	// The lease pins the coordinator for the duration of the submission,
	// so it cannot be torn down between lookup and acceptance.
	coord, err := h.registry.Acquire(ctx, docID)
	if err != nil {
		return collab.Accepted{}, err
	}
	defer h.registry.Release(ctx, docID)

	return coord.Submit(ctx, cmd.SessionID, collab.Submit{
		BaseVersion: cmd.BaseVersion,
		Ops:         cmd.Ops,
	})
}
