package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/duration"
	"github.com/debugflow/revd/pkg/backend"
	"github.com/debugflow/revd/pkg/client"
	"github.com/debugflow/revd/pkg/config"
	"github.com/spf13/cobra"
)

// InitBackendContext opens the repository and attaches the backend to the
// command context. An optional first argument overrides the configured
// repository path.
func InitBackendContext(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	if cfg == nil {
		return config.ErrNilConfig
	}
	if len(args) > 0 {
		cfg.RepoPath = args[0]
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("validate config: %w", err)
		}
	}
	if _, err := os.Stat(cfg.DataPath); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(cfg.DataPath, os.ModePerm); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
	}

	be, err := backend.Open(ctx, cfg)
	if err != nil {
		return err
	}

	cmd.SetContext(backend.WithContext(ctx, be))
	return nil
}

// CloseBackendContext stops the backend and releases the repository.
func CloseBackendContext(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	be := backend.FromContext(ctx)
	if be != nil {
		if err := be.Close(ctx); err != nil {
			return fmt.Errorf("close backend: %w", err)
		}
	}

	return nil
}

// InitClientContext attaches an API client to the command context. The
// server url comes from the "url" flag and falls back to the configured
// public url.
func InitClientContext(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)

	url, _ := cmd.Flags().GetString("url")
	if url == "" && cfg != nil {
		url = cfg.HTTP.PublicURL
	}
	if url == "" {
		return errors.New("no server url, use --url")
	}

	opts := []client.Option{client.WithUserAgent("revd/" + cmd.Root().Version)}
	if t, _ := cmd.Flags().GetString("timeout"); t != "" {
		d, err := duration.Parse(t)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", t, err)
		}
		opts = append(opts, client.WithTimeout(d))
	}

	c, err := client.New(url, opts...)
	if err != nil {
		return err
	}

	cmd.SetContext(client.WithContext(ctx, c))
	return nil
}

// ClientFromCommand returns the API client attached by InitClientContext.
func ClientFromCommand(cmd *cobra.Command) *client.Client {
	return client.FromContext(cmd.Context())
}
