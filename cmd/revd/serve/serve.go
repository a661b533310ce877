package serve

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/debugflow/revd/cmd"
	"github.com/debugflow/revd/pkg/config"
	"github.com/spf13/cobra"
)

// Command is the serve command.
var Command = &cobra.Command{
	Use:                "serve [PATH]",
	Short:              "Start the server",
	Long:               "Start the revd server for the repository at PATH, or the configured repository.",
	Args:               cobra.MaximumNArgs(1),
	PersistentPreRunE:  initServe,
	PersistentPostRunE: cmd.CloseBackendContext,
	RunE: func(c *cobra.Command, _ []string) error {
		ctx := c.Context()

		s, err := NewServer(ctx)
		if err != nil {
			return fmt.Errorf("start server: %w", err)
		}

		lch := make(chan error, 1)
		done := make(chan os.Signal, 1)
		doneOnce := sync.OnceFunc(func() { close(done) })

		signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

		// Lets the test suite stop the server without signals.
		if testRun, _ := strconv.ParseBool(os.Getenv("REVD_TESTRUN")); testRun {
			h := s.HTTPServer.Server.Handler
			s.HTTPServer.Server.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/__stop" && r.Method == http.MethodHead {
					doneOnce()
					return
				}
				h.ServeHTTP(w, r)
			})
		}

		go func() {
			lch <- s.Start()
			doneOnce()
		}()

		select {
		case err := <-lch:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
		case <-done:
		}

		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return s.Shutdown(ctx)
	},
}

// initServe loads the config file, writing the default one on first run,
// and opens the repository.
func initServe(c *cobra.Command, args []string) error {
	cfg := config.FromContext(c.Context())
	if cfg == nil {
		return config.ErrNilConfig
	}

	if !cfg.Exist() {
		if err := cfg.WriteConfig(); err != nil {
			return fmt.Errorf("write config file: %w", err)
		}
	}

	if cfg.Log.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Log.Path), os.ModePerm); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
	}

	return cmd.InitBackendContext(c, args)
}
