package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"notegraph/application/collab"
	"notegraph/domain/core/valueobjects"
	"notegraph/pkg/auth"
	pkgerrors "notegraph/pkg/errors"
)

// Server upgrades editing connections and speaks the session protocol:
// snapshot or catch-up on join, submit/accepted/presence while connected,
// error envelopes carrying the taxonomy kind so clients pick the right
// recovery.
type Server struct {
	registry  *collab.Registry
	upgrader  websocket.Upgrader
	validator *auth.JWTValidator
	logger    *zap.Logger
}

// NewServer creates a new websocket server
func NewServer(registry *collab.Registry, validator *auth.JWTValidator, logger *zap.Logger) *Server {
	return &Server{
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		validator: validator,
		logger:    logger,
	}
}

// ServeHTTP handles GET /ws/{documentID}
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if s.validator != nil {
		// Browsers cannot set headers on websocket dials, so the token
		// rides in the query string.
		if _, err := s.validator.ValidateToken(r.URL.Query().Get("token")); err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
	}

	docID, err := valueobjects.NewDocumentIDFromString(chi.URLParam(r, "documentID"))
	if err != nil {
		http.Error(w, "invalid document id", http.StatusBadRequest)
		return
	}

	ackVersion := int64(-1)
	if raw := r.URL.Query().Get("ack_version"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			ackVersion = v
		}
	}

	coord, err := s.registry.Acquire(r.Context(), docID)
	if err != nil {
		if pkgerrors.IsType(err, pkgerrors.ErrorTypeNotFound) {
			http.Error(w, "document not found", http.StatusNotFound)
		} else {
			http.Error(w, "failed to open document", http.StatusInternalServerError)
		}
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Upgrade failed", zap.Error(err))
		s.registry.Release(r.Context(), docID)
		return
	}

	sessionID := uuid.New().String()
	client := NewClient(sessionID, conn, s.logger)

	result, err := coord.Join(r.Context(), sessionID, ackVersion, client.Send)
	if err != nil {
		conn.Close()
		s.registry.Release(r.Context(), docID)
		return
	}

	// The join response is the session's first frame.
	if result.Snapshot != nil {
		client.Send(mustEnvelope(collab.MessageSnapshot, result.Snapshot))
	} else if result.CatchUp != nil {
		client.Send(mustEnvelope(collab.MessageCatchUp, result.CatchUp))
	}

	go client.writePump()
	go s.runSession(client, coord, docID)
}

// runSession drives one session's read loop and tears the session down
// when the connection drops
func (s *Server) runSession(client *Client, coord *collab.Coordinator, docID valueobjects.DocumentID) {
	ctx := context.Background()

	client.readPump(func(env collab.Envelope) {
		switch env.Type {
		case collab.MessageSubmit:
			var sub collab.Submit
			if err := json.Unmarshal(env.Payload, &sub); err != nil {
				client.Send(mustEnvelope(collab.MessageError, collab.ErrorMessage{
					Kind:    string(pkgerrors.ErrorTypeMalformedOperation),
					Message: "malformed submit payload",
				}))
				return
			}
			ack, err := coord.Submit(ctx, client.sessionID, sub)
			if err != nil {
				s.reportSubmitError(client, coord, err)
				return
			}
			// The author's own acceptance doubles as the acknowledgment.
			client.Send(mustEnvelope(collab.MessageAccepted, ack))

		case collab.MessagePresence:
			var p collab.Presence
			if err := json.Unmarshal(env.Payload, &p); err != nil {
				return
			}
			coord.UpdatePresence(client.sessionID, p)

		default:
			s.logger.Debug("Ignoring unknown message type",
				zap.String("type", env.Type))
		}
	}, func() {
		coord.Heartbeat(client.sessionID)
	})

	coord.Leave(ctx, client.sessionID)
	s.registry.Release(ctx, docID)
	client.Close()
}

// reportSubmitError maps a rejected submission to an error envelope, and
// hands over a fresh snapshot when the client's view is unrecoverable so
// it can resync instead of retrying forever.
func (s *Server) reportSubmitError(client *Client, coord *collab.Coordinator, err error) {
	kind := string(pkgerrors.ErrorTypeInternal)
	message := "submission rejected"
	if appErr := pkgerrors.GetAppError(err); appErr != nil {
		kind = string(appErr.Type)
		message = appErr.Message
	}
	client.Send(mustEnvelope(collab.MessageError, collab.ErrorMessage{
		Kind:    kind,
		Message: message,
	}))

	if pkgerrors.IsType(err, pkgerrors.ErrorTypeFutureVersion) ||
		pkgerrors.IsType(err, pkgerrors.ErrorTypeHistoryTruncated) {
		snap := coord.Snapshot(client.sessionID)
		client.Send(mustEnvelope(collab.MessageSnapshot, snap))
	}
}
