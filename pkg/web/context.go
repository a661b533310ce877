package web

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/debugflow/revd/pkg/backend"
	"github.com/debugflow/revd/pkg/config"
	"github.com/google/uuid"
)

// RequestIDHeader is the header carrying the request id.
const RequestIDHeader = "X-Request-ID"

// NewContextHandler returns a new context middleware.
// This middleware adds the config, backend, and logger to the request context.
// Every request gets an id, taken from the X-Request-ID header when the
// client sent one.
func NewContextHandler(ctx context.Context) func(http.Handler) http.Handler {
	cfg := config.FromContext(ctx)
	be := backend.FromContext(ctx)
	logger := log.FromContext(ctx).WithPrefix("http")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if _, err := uuid.Parse(id); err != nil {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)

			ctx := r.Context()
			ctx = config.WithContext(ctx, cfg)
			ctx = backend.WithContext(ctx, be)
			ctx = log.WithContext(ctx, logger.With(
				"method", r.Method,
				"path", r.URL,
				"addr", r.RemoteAddr,
				"request_id", id,
			))
			r = r.WithContext(ctx)

			next.ServeHTTP(w, r)
		})
	}
}
