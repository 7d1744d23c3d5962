package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"notegraph/infrastructure/config"
	"notegraph/interfaces/http/rest/handlers"
	"notegraph/interfaces/http/rest/middleware"
	"notegraph/pkg/auth"
)

// Router creates and configures the HTTP router
type Router struct {
	cfg       *config.Config
	documents *handlers.DocumentHandler
	graph     *handlers.GraphHandler
	ws        http.Handler
	validator *auth.JWTValidator
	registry  *prometheus.Registry
	logger    *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	cfg *config.Config,
	documents *handlers.DocumentHandler,
	graph *handlers.GraphHandler,
	ws http.Handler,
	validator *auth.JWTValidator,
	registry *prometheus.Registry,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:       cfg,
		documents: documents,
		graph:     graph,
		ws:        ws,
		validator: validator,
		registry:  registry,
		logger:    logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	router.Get("/health", rt.healthCheck)
	if rt.cfg.EnableMetrics {
		router.Method(http.MethodGet, "/metrics",
			promhttp.HandlerFor(rt.registry, promhttp.HandlerOpts{}))
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(rt.validator))

		r.Route("/documents", func(r chi.Router) {
			r.Post("/", rt.documents.CreateDocument)
			r.Get("/", rt.documents.ListDocuments)
			r.Get("/{documentID}", rt.documents.GetDocument)
			r.Put("/{documentID}", rt.documents.SaveDocument)
			r.Delete("/{documentID}", rt.documents.DeleteDocument)
			r.Get("/{documentID}/backlinks", rt.documents.GetBacklinks)
			r.Get("/{documentID}/suggestions", rt.documents.GetLinkSuggestions)
		})

		r.Route("/graph", func(r chi.Router) {
			r.Get("/", rt.graph.GetGraphData)
			r.Get("/path", rt.graph.GetShortestPath)
			r.Get("/component/{documentID}", rt.graph.GetConnectedComponent)
		})
	})

	// The websocket endpoint authenticates via query token inside the
	// handler; browsers cannot set headers on websocket dials.
	router.Get("/ws/{documentID}", rt.ws.ServeHTTP)

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
