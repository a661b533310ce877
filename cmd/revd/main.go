package main

import (
	"context"
	"os"
	"runtime/debug"

	"github.com/charmbracelet/log"
	"github.com/debugflow/revd/cmd/revd/repo"
	"github.com/debugflow/revd/cmd/revd/serve"
	"github.com/debugflow/revd/pkg/config"
	rlog "github.com/debugflow/revd/pkg/log"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
)

var (
	// Version contains the application version number. It's set via ldflags
	// when building.
	Version = ""

	// CommitSHA contains the SHA of the commit that this application was built
	// against. It's set via ldflags when building.
	CommitSHA = ""

	rootCmd = &cobra.Command{
		Use:          "revd",
		Short:        "Serve a git repository over HTTP",
		Long:         "revd serves the history, diffs, and references of a single git repository over a JSON HTTP API.",
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.AddCommand(
		serve.Command,
		manCmd,
	)
	rootCmd.AddCommand(repo.Commands()...)

	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Sum != "" {
			Version = info.Main.Version
		} else {
			Version = "unknown (built from source)"
		}
	}
	rootCmd.Version = Version
}

func main() {
	os.Exit(run())
}

// run executes the root command and returns the process exit code.
func run() int {
	ctx := context.Background()
	cfg := config.DefaultConfig()
	if cfg.Exist() {
		if err := cfg.ParseFile(); err != nil {
			log.Error("parse config file", "err", err)
			return 1
		}
	}

	if err := cfg.ParseEnv(); err != nil {
		log.Error("parse environment variables", "err", err)
		return 1
	}

	ctx = config.WithContext(ctx, cfg)
	logger, f, err := rlog.NewLogger(cfg)
	if err != nil {
		log.Errorf("failed to create logger: %v", err)
		return 1
	}
	if f != nil {
		defer f.Close() // nolint: errcheck
	}

	ctx = log.WithContext(ctx, logger)
	log.SetDefault(logger)

	// Set the max number of processes to the number of CPUs
	// This is useful when running revd in a container
	if _, err := maxprocs.Set(maxprocs.Logger(log.Debugf)); err != nil {
		log.Warn("couldn't set automaxprocs", "error", err)
	}

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}
