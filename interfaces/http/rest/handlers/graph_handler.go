package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"notegraph/application/queries"
	querybus "notegraph/application/queries/bus"
	"notegraph/pkg/common"
	pkgerrors "notegraph/pkg/errors"
)

// GraphHandler handles graph read requests
type GraphHandler struct {
	queryBus     *querybus.QueryBus
	logger       *zap.Logger
	errorHandler *pkgerrors.ErrorHandler
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(
	queryBus *querybus.QueryBus,
	logger *zap.Logger,
	errorHandler *pkgerrors.ErrorHandler,
) *GraphHandler {
	return &GraphHandler{
		queryBus:     queryBus,
		logger:       logger,
		errorHandler: errorHandler,
	}
}

// GetGraphData handles GET /graph
func (h *GraphHandler) GetGraphData(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetGraphDataQuery{})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// GetShortestPath handles GET /graph/path?from=&to=
func (h *GraphHandler) GetShortestPath(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetShortestPathQuery{
		FromID: r.URL.Query().Get("from"),
		ToID:   r.URL.Query().Get("to"),
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// GetConnectedComponent handles GET /graph/component/{documentID}
func (h *GraphHandler) GetConnectedComponent(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetConnectedComponentQuery{
		DocumentID: chi.URLParam(r, "documentID"),
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}
