//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"notegraph/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideErrorHandler,
	ProvideMetricsRegistry,
	ProvideMetrics,
	ProvideDocumentRepository,
	ProvideEventBus,
	ProvideRedisNotifier,
	ProvideEventPublisher,
	ProvideLinkGraph,
	ProvideLinkExtractor,
	ProvideLinkService,
	ProvideCollabRegistry,
	ProvideJWTValidator,
	ProvideCreateDocumentHandler,
	ProvideSaveDocumentHandler,
	ProvideDeleteDocumentHandler,
	ProvideSubmitOperationHandler,
	ProvideCommandBus,
	ProvideQueryBus,
	ProvideDocumentHandler,
	ProvideGraphHandler,
	ProvideWebSocketServer,
	ProvideRouter,
	ProvideHTTPHandler,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
