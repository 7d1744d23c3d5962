package di

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"notegraph/application/collab"
	"notegraph/application/commands"
	cmdbus "notegraph/application/commands/bus"
	cmdhandlers "notegraph/application/commands/handlers"
	"notegraph/application/ports"
	"notegraph/application/queries"
	querybus "notegraph/application/queries/bus"
	queryhandlers "notegraph/application/queries/handlers"
	appservices "notegraph/application/services"
	"notegraph/domain/core/aggregates"
)

// ProvideDeleteDocumentHandler creates the delete document command handler
func ProvideDeleteDocumentHandler(
	repo ports.DocumentRepository,
	registry *collab.Registry,
	links *appservices.LinkService,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *cmdhandlers.DeleteDocumentHandler {
	return cmdhandlers.NewDeleteDocumentHandler(repo, registry, links, publisher, logger)
}

// ProvideSubmitOperationHandler creates the submit operation command handler
func ProvideSubmitOperationHandler(
	registry *collab.Registry,
	logger *zap.Logger,
) *cmdhandlers.SubmitOperationHandler {
	return cmdhandlers.NewSubmitOperationHandler(registry, logger)
}

// ProvideCommandBus creates the command bus with all command handlers
// registered. Handlers that return results are adapted to the bus
// signature; callers needing the result invoke the handler directly.
func ProvideCommandBus(
	create *cmdhandlers.CreateDocumentHandler,
	save *cmdhandlers.SaveDocumentHandler,
	del *cmdhandlers.DeleteDocumentHandler,
	submit *cmdhandlers.SubmitOperationHandler,
	logger *zap.Logger,
) *cmdbus.CommandBus {
	pipeline := cmdbus.NewPipeline(cmdbus.LoggingMiddleware(logger))
	b := cmdbus.NewCommandBus()

	b.Register(commands.CreateDocumentCommand{}, pipeline.Execute(cmdbus.CommandHandlerFunc(
		func(ctx context.Context, cmd cmdbus.Command) error {
			c, ok := cmd.(commands.CreateDocumentCommand)
			if !ok {
				return fmt.Errorf("invalid command type %T", cmd)
			}
			_, err := create.Handle(ctx, c)
			return err
		})))

	b.Register(commands.SaveDocumentCommand{}, pipeline.Execute(cmdbus.CommandHandlerFunc(
		func(ctx context.Context, cmd cmdbus.Command) error {
			c, ok := cmd.(commands.SaveDocumentCommand)
			if !ok {
				return fmt.Errorf("invalid command type %T", cmd)
			}
			_, err := save.Handle(ctx, c)
			return err
		})))

	b.Register(commands.DeleteDocumentCommand{}, pipeline.Execute(cmdbus.CommandHandlerFunc(
		func(ctx context.Context, cmd cmdbus.Command) error {
			c, ok := cmd.(commands.DeleteDocumentCommand)
			if !ok {
				return fmt.Errorf("invalid command type %T", cmd)
			}
			return del.Handle(ctx, c)
		})))

	b.Register(commands.SubmitOperationCommand{}, pipeline.Execute(cmdbus.CommandHandlerFunc(
		func(ctx context.Context, cmd cmdbus.Command) error {
			c, ok := cmd.(commands.SubmitOperationCommand)
			if !ok {
				return fmt.Errorf("invalid command type %T", cmd)
			}
			_, err := submit.Handle(ctx, c)
			return err
		})))

	return b
}

// ProvideQueryBus creates the query bus with all query handlers registered
func ProvideQueryBus(
	repo ports.DocumentRepository,
	graph *aggregates.LinkGraph,
	logger *zap.Logger,
) *querybus.QueryBus {
	b := querybus.NewQueryBus()

	getDocument := queryhandlers.NewGetDocumentHandler(repo, logger)
	b.Register(queries.GetDocumentQuery{}, adaptQuery(func(ctx context.Context, q queries.GetDocumentQuery) (interface{}, error) {
		return getDocument.Handle(ctx, q)
	}))

	listDocuments := queryhandlers.NewListDocumentsHandler(repo, logger)
	b.Register(queries.ListDocumentsQuery{}, adaptQuery(func(ctx context.Context, q queries.ListDocumentsQuery) (interface{}, error) {
		return listDocuments.Handle(ctx, q)
	}))

	backlinks := queryhandlers.NewGetBacklinksHandler(graph, logger)
	b.Register(queries.GetBacklinksQuery{}, adaptQuery(func(ctx context.Context, q queries.GetBacklinksQuery) (interface{}, error) {
		return backlinks.Handle(ctx, q)
	}))

	graphData := queryhandlers.NewGetGraphDataHandler(graph, logger)
	b.Register(queries.GetGraphDataQuery{}, adaptQuery(func(ctx context.Context, q queries.GetGraphDataQuery) (interface{}, error) {
		return graphData.Handle(ctx, q)
	}))

	shortestPath := queryhandlers.NewGetShortestPathHandler(graph, logger)
	b.Register(queries.GetShortestPathQuery{}, adaptQuery(func(ctx context.Context, q queries.GetShortestPathQuery) (interface{}, error) {
		return shortestPath.Handle(ctx, q)
	}))

	component := queryhandlers.NewGetConnectedComponentHandler(graph, logger)
	b.Register(queries.GetConnectedComponentQuery{}, adaptQuery(func(ctx context.Context, q queries.GetConnectedComponentQuery) (interface{}, error) {
		return component.Handle(ctx, q)
	}))

	suggestions := queryhandlers.NewGetLinkSuggestionsHandler(repo, graph, logger)
	b.Register(queries.GetLinkSuggestionsQuery{}, adaptQuery(func(ctx context.Context, q queries.GetLinkSuggestionsQuery) (interface{}, error) {
		return suggestions.Handle(ctx, q)
	}))

	return b
}

// adaptQuery bridges a typed query handler to the bus handler signature
func adaptQuery[Q querybus.Query](handle func(ctx context.Context, q Q) (interface{}, error)) querybus.QueryHandler {
	return querybus.QueryHandlerFunc(func(ctx context.Context, query querybus.Query) (interface{}, error) {
		q, ok := query.(Q)
		if !ok {
			return nil, fmt.Errorf("invalid query type %T", query)
		}
		return handle(ctx, q)
	})
}
