package di

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

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
	badgerstore "notegraph/infrastructure/persistence/badger"
	"notegraph/infrastructure/persistence/memory"
	"notegraph/interfaces/http/rest"
	resthandlers "notegraph/interfaces/http/rest/handlers"
	"notegraph/interfaces/websocket"
	"notegraph/pkg/auth"
	"notegraph/pkg/errors"
	"notegraph/pkg/observability"
)

// ProvideLogger creates the application logger from configuration
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsDevelopment() {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}

// ProvideErrorHandler creates the HTTP error handler
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *errors.ErrorHandler {
	return errors.NewErrorHandler(logger, cfg.IsDevelopment())
}

// ProvideMetricsRegistry creates the Prometheus registry
func ProvideMetricsRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

// ProvideMetrics creates the application metrics collectors
func ProvideMetrics(registry *prometheus.Registry) *observability.Metrics {
	return observability.NewMetrics(registry)
}

// ProvideDocumentRepository selects the document store from configuration.
// An empty BadgerPath selects the in-memory store, which is intended for
// development and tests.
func ProvideDocumentRepository(cfg *config.Config, logger *zap.Logger) (ports.DocumentRepository, error) {
	if cfg.BadgerPath == "" {
		logger.Info("Using in-memory document store")
		return memory.NewDocumentRepository(), nil
	}
	logger.Info("Opening Badger document store", zap.String("path", cfg.BadgerPath))
	repo, err := badgerstore.Open(cfg.BadgerPath, logger)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

// ProvideEventBus creates the in-process event bus
func ProvideEventBus(logger *zap.Logger) *messaging.EventBus {
	return messaging.NewEventBus(logger)
}

// ProvideRedisNotifier connects the cross-instance change relay. Returns
// nil when Redis is not configured; single-instance deployments run
// without it.
func ProvideRedisNotifier(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*redismsg.Notifier, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}
	return redismsg.NewNotifier(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisChannel, logger)
}

// ProvideEventPublisher assembles the publisher the application layers see.
// Events always reach the in-process bus; when Redis is configured they are
// also relayed to other instances.
func ProvideEventPublisher(bus *messaging.EventBus, notifier *redismsg.Notifier) ports.EventPublisher {
	if notifier == nil {
		return bus
	}
	return messaging.NewFanoutPublisher(bus, notifier)
}

// ProvideLinkGraph creates the in-memory link graph
func ProvideLinkGraph() *aggregates.LinkGraph {
	return aggregates.NewLinkGraph()
}

// ProvideLinkExtractor creates the link extractor backed by the document
// store's title index
func ProvideLinkExtractor(repo ports.DocumentRepository) *domainservices.LinkExtractor {
	return domainservices.NewLinkExtractor(repo)
}

// ProvideLinkService creates the link maintenance service
func ProvideLinkService(
	graph *aggregates.LinkGraph,
	extractor *domainservices.LinkExtractor,
	publisher ports.EventPublisher,
	logger *zap.Logger,
	metrics *observability.Metrics,
) *appservices.LinkService {
	return appservices.NewLinkService(graph, extractor, publisher, logger, metrics)
}

// ProvideCollabRegistry creates the coordinator registry with the link
// service wired in as the settle hook, so settled content feeds the graph.
func ProvideCollabRegistry(
	cfg *config.Config,
	repo ports.DocumentRepository,
	publisher ports.EventPublisher,
	links *appservices.LinkService,
	logger *zap.Logger,
	metrics *observability.Metrics,
) *collab.Registry {
	return collab.NewRegistry(
		repo,
		publisher,
		links.Refresh,
		cfg.Collab.HistoryRetention,
		cfg.Collab.SettleDelay,
		cfg.Collab.SessionTimeout,
		logger,
		metrics,
	)
}

// ProvideJWTValidator creates the token validator. Returns nil when no
// secret is configured, which disables authentication entirely.
func ProvideJWTValidator(cfg *config.Config, logger *zap.Logger) (*auth.JWTValidator, error) {
	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET not set, API authentication is disabled")
		return nil, nil
	}
	return auth.NewJWTValidator(cfg.JWTSecret, cfg.JWTIssuer)
}

// ProvideCreateDocumentHandler creates the create document command handler
func ProvideCreateDocumentHandler(
	repo ports.DocumentRepository,
	links *appservices.LinkService,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *cmdhandlers.CreateDocumentHandler {
	return cmdhandlers.NewCreateDocumentHandler(repo, links, publisher, logger)
}

// ProvideSaveDocumentHandler creates the save document command handler
func ProvideSaveDocumentHandler(
	repo ports.DocumentRepository,
	registry *collab.Registry,
	links *appservices.LinkService,
	logger *zap.Logger,
) *cmdhandlers.SaveDocumentHandler {
	return cmdhandlers.NewSaveDocumentHandler(repo, registry, links, logger)
}

// ProvideDocumentHandler creates the REST document handler
func ProvideDocumentHandler(
	create *cmdhandlers.CreateDocumentHandler,
	save *cmdhandlers.SaveDocumentHandler,
	commandBus *cmdbus.CommandBus,
	queryBus *querybus.QueryBus,
	logger *zap.Logger,
	errorHandler *errors.ErrorHandler,
) *resthandlers.DocumentHandler {
	return resthandlers.NewDocumentHandler(create, save, commandBus, queryBus, logger, errorHandler)
}

// ProvideGraphHandler creates the REST graph handler
func ProvideGraphHandler(
	queryBus *querybus.QueryBus,
	logger *zap.Logger,
	errorHandler *errors.ErrorHandler,
) *resthandlers.GraphHandler {
	return resthandlers.NewGraphHandler(queryBus, logger, errorHandler)
}

// ProvideWebSocketServer creates the collaborative editing endpoint
func ProvideWebSocketServer(
	registry *collab.Registry,
	validator *auth.JWTValidator,
	logger *zap.Logger,
) *websocket.Server {
	return websocket.NewServer(registry, validator, logger)
}

// ProvideRouter creates the HTTP router
func ProvideRouter(
	cfg *config.Config,
	documents *resthandlers.DocumentHandler,
	graph *resthandlers.GraphHandler,
	ws *websocket.Server,
	validator *auth.JWTValidator,
	registry *prometheus.Registry,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(cfg, documents, graph, ws, validator, registry, logger)
}

// ProvideHTTPHandler builds the final handler tree
func ProvideHTTPHandler(router *rest.Router) http.Handler {
	return router.Setup()
}
