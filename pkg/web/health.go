package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/debugflow/revd/pkg/backend"
	"github.com/debugflow/revd/pkg/proto"
	"github.com/gorilla/mux"
)

// HealthController registers the health check routes for the web server.
func HealthController(_ context.Context, r *mux.Router) {
	r.HandleFunc("/livez", getLiveness)
	r.HandleFunc("/readyz", getReadiness)
}

func getLiveness(w http.ResponseWriter, _ *http.Request) {
	renderStatus(http.StatusOK)(w, nil)
}

// getReadiness checks that the repository actor answers. Domain errors,
// e.g. an unborn HEAD, still mean the actor is serving requests.
func getReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	be := backend.FromContext(ctx)
	if be == nil {
		renderStatus(http.StatusServiceUnavailable)(w, nil)
		return
	}

	_, err := be.Status(ctx)
	if errors.Is(err, proto.ErrUnavailable) || errors.Is(err, context.DeadlineExceeded) {
		renderStatus(http.StatusServiceUnavailable)(w, nil)
		return
	}

	renderStatus(http.StatusOK)(w, nil)
}
