package di

import (
	"context"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"notegraph/application/collab"
	cmdbus "notegraph/application/commands/bus"
	cmdhandlers "notegraph/application/commands/handlers"
	"notegraph/application/ports"
	querybus "notegraph/application/queries/bus"
	appservices "notegraph/application/services"
	"notegraph/domain/core/aggregates"
	domainservices "notegraph/domain/services"
	"notegraph/infrastructure/config"
	"notegraph/infrastructure/messaging"
	redismsg "notegraph/infrastructure/messaging/redis"
	"notegraph/interfaces/http/rest"
	resthandlers "notegraph/interfaces/http/rest/handlers"
	"notegraph/interfaces/websocket"
	"notegraph/pkg/auth"
	"notegraph/pkg/errors"
	"notegraph/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config          *config.Config
	Logger          *zap.Logger
	ErrorHandler    *errors.ErrorHandler
	MetricsRegistry *prometheus.Registry
	Metrics         *observability.Metrics

	DocumentRepo ports.DocumentRepository
	EventBus     *messaging.EventBus
	Notifier     *redismsg.Notifier
	Publisher    ports.EventPublisher

	LinkGraph      *aggregates.LinkGraph
	LinkExtractor  *domainservices.LinkExtractor
	LinkService    *appservices.LinkService
	CollabRegistry *collab.Registry

	CreateDocumentHandler *cmdhandlers.CreateDocumentHandler
	SaveDocumentHandler   *cmdhandlers.SaveDocumentHandler
	CommandBus            *cmdbus.CommandBus
	QueryBus              *querybus.QueryBus

	JWTValidator    *auth.JWTValidator
	DocumentHandler *resthandlers.DocumentHandler
	GraphHandler    *resthandlers.GraphHandler
	WebSocketServer *websocket.Server
	Router          *rest.Router
	HTTPHandler     http.Handler
}

// Shutdown releases resources held by the container. Safe to call once
// after all request traffic and background loops have stopped.
func (c *Container) Shutdown(ctx context.Context) error {
	var firstErr error

	if c.Notifier != nil {
		if err := c.Notifier.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if closer, ok := c.DocumentRepo.(io.Closer); ok {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
