package web

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/debugflow/revd/pkg/config"
	rlog "github.com/debugflow/revd/pkg/log"
)

// HTTPServer is an http server.
type HTTPServer struct {
	ctx context.Context
	cfg *config.Config

	Server *http.Server
}

// NewHTTPServer creates a new HTTP server serving the repository API.
func NewHTTPServer(ctx context.Context) (*HTTPServer, error) {
	cfg := config.FromContext(ctx)
	if cfg == nil {
		return nil, config.ErrNilConfig
	}
	logger := log.FromContext(ctx).WithPrefix("http")
	s := &HTTPServer{
		ctx: ctx,
		cfg: cfg,
		Server: &http.Server{
			Addr:              cfg.HTTP.ListenAddr,
			Handler:           NewRouter(ctx),
			ReadHeaderTimeout: time.Second * 10,
			// Replies wait at most for the actor call timeout.
			WriteTimeout:   cfg.Actor.CallTimeout + 10*time.Second,
			IdleTimeout:    time.Second * 60,
			MaxHeaderBytes: http.DefaultMaxHeaderBytes,
			ErrorLog:       rlog.ErrorLog(logger),
			BaseContext: func(net.Listener) context.Context {
				return ctx
			},
		},
	}

	return s, nil
}

// Close closes the HTTP server.
func (s *HTTPServer) Close() error {
	return s.Server.Close()
}

// ListenAndServe starts the HTTP server.
func (s *HTTPServer) ListenAndServe() error {
	return s.Server.ListenAndServe()
}

// Serve serves HTTP requests on l.
func (s *HTTPServer) Serve(l net.Listener) error {
	return s.Server.Serve(l)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.Server.Shutdown(ctx)
}
