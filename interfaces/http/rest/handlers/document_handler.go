package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"notegraph/application/commands"
	cmdbus "notegraph/application/commands/bus"
	cmdhandlers "notegraph/application/commands/handlers"
	"notegraph/application/queries"
	querybus "notegraph/application/queries/bus"
	"notegraph/pkg/common"
	pkgerrors "notegraph/pkg/errors"
)

// DocumentHandler handles document CRUD over REST. Edits from live
// sessions go over the websocket; this surface covers creation, reads,
// whole-text saves, and deletion.
type DocumentHandler struct {
	create       *cmdhandlers.CreateDocumentHandler
	save         *cmdhandlers.SaveDocumentHandler
	commandBus   *cmdbus.CommandBus
	queryBus     *querybus.QueryBus
	logger       *zap.Logger
	errorHandler *pkgerrors.ErrorHandler
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(
	create *cmdhandlers.CreateDocumentHandler,
	save *cmdhandlers.SaveDocumentHandler,
	commandBus *cmdbus.CommandBus,
	queryBus *querybus.QueryBus,
	logger *zap.Logger,
	errorHandler *pkgerrors.ErrorHandler,
) *DocumentHandler {
	return &DocumentHandler{
		create:       create,
		save:         save,
		commandBus:   commandBus,
		queryBus:     queryBus,
		logger:       logger,
		errorHandler: errorHandler,
	}
}

// CreateDocumentRequest is the POST /documents body
type CreateDocumentRequest struct {
	Title   string `json:"title"`
	Content string `json:"content,omitempty"`
}

// SaveDocumentRequest is the PUT /documents/{documentID} body
type SaveDocumentRequest struct {
	Content string `json:"content"`
	Title   string `json:"title,omitempty"`
}

// CreateDocument handles POST /documents
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	doc, err := h.create.Handle(r.Context(), commands.CreateDocumentCommand{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"id":      doc.ID().String(),
		"title":   doc.Title(),
		"version": doc.Version(),
	})
}

// GetDocument handles GET /documents/{documentID}
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetDocumentQuery{
		DocumentID: chi.URLParam(r, "documentID"),
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// ListDocuments handles GET /documents
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.ListDocumentsQuery{})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// SaveDocument handles PUT /documents/{documentID}
func (h *DocumentHandler) SaveDocument(w http.ResponseWriter, r *http.Request) {
	var req SaveDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	doc, err := h.save.Handle(r.Context(), commands.SaveDocumentCommand{
		DocumentID: chi.URLParam(r, "documentID"),
		Content:    req.Content,
		Title:      req.Title,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"id":      doc.ID().String(),
		"title":   doc.Title(),
		"version": doc.Version(),
	})
}

// DeleteDocument handles DELETE /documents/{documentID}
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	err := h.commandBus.Send(r.Context(), commands.DeleteDocumentCommand{
		DocumentID: chi.URLParam(r, "documentID"),
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// GetLinkSuggestions handles GET /documents/{documentID}/suggestions
func (h *DocumentHandler) GetLinkSuggestions(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetLinkSuggestionsQuery{
		DocumentID: chi.URLParam(r, "documentID"),
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// GetBacklinks handles GET /documents/{documentID}/backlinks
func (h *DocumentHandler) GetBacklinks(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetBacklinksQuery{
		DocumentID: chi.URLParam(r, "documentID"),
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}
