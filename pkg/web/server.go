package web

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/debugflow/revd/pkg/config"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// NewRouter returns a new HTTP router.
func NewRouter(ctx context.Context) http.Handler {
	logger := log.FromContext(ctx).WithPrefix("http")
	router := mux.NewRouter()

	// Health routes
	HealthController(ctx, router)

	// Repository API routes
	APIController(ctx, router)

	router.NotFoundHandler = http.HandlerFunc(renderNotFound)

	// Context handler
	// Adds context to the request
	h := NewLoggingMiddleware(router, logger)
	h = NewContextHandler(ctx)(h)
	h = handlers.CompressHandler(h)
	if cors := corsHandler(config.FromContext(ctx)); cors != nil {
		h = cors(h)
	}
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(logger.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel})),
	)(h)

	return h
}

// corsHandler returns the CORS middleware, or nil when no origin is
// allowed.
func corsHandler(cfg *config.Config) func(http.Handler) http.Handler {
	if cfg == nil || len(cfg.HTTP.CORS.AllowedOrigins) == 0 {
		return nil
	}

	methods := cfg.HTTP.CORS.AllowedMethods
	if len(methods) == 0 {
		methods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	}

	return handlers.CORS(
		handlers.AllowedOrigins(cfg.HTTP.CORS.AllowedOrigins),
		handlers.AllowedHeaders(cfg.HTTP.CORS.AllowedHeaders),
		handlers.AllowedMethods(methods),
		handlers.ExposedHeaders([]string{RequestIDHeader, "Retry-After"}),
	)
}
