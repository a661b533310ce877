package web

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/debugflow/revd/pkg/proto"
)

func renderStatus(code int) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(code)
		io.WriteString(w, fmt.Sprintf("%d %s", code, http.StatusText(code))) //nolint:errcheck,gosec
	}
}

func renderMethodNotAllowed(w http.ResponseWriter, r *http.Request, allowed []string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	renderJSON(w, http.StatusMethodNotAllowed, ErrorResponse{
		Status:  http.StatusMethodNotAllowed,
		Reason:  http.StatusText(http.StatusMethodNotAllowed),
		Message: fmt.Sprintf("method %s not allowed", r.Method),
	})
}

func renderNotFound(w http.ResponseWriter, r *http.Request) {
	renderError(w, r, proto.NotFoundf("no route for %s", r.URL.Path))
}
