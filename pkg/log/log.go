// Package log builds the revd logger from the configuration.
package log

import (
	stdlog "log"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/debugflow/revd/pkg/config"
)

// NewLogger returns a new logger configured by cfg. When cfg.Log.Path is
// set the logs go to that file, which the caller must close.
func NewLogger(cfg *config.Config) (*log.Logger, *os.File, error) {
	if cfg == nil {
		return nil, nil, config.ErrNilConfig
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateOnly,
		Prefix:          "revd",
	})

	switch {
	case config.IsVerbose():
		logger.SetReportCaller(true)
		fallthrough
	case config.IsDebug():
		logger.SetLevel(log.DebugLevel)
	}

	if cfg.Log.TimeFormat != "" {
		logger.SetTimeFormat(cfg.Log.TimeFormat)
	}

	switch strings.ToLower(cfg.Log.Format) {
	case "json":
		logger.SetFormatter(log.JSONFormatter)
	case "logfmt":
		logger.SetFormatter(log.LogfmtFormatter)
	case "text":
		logger.SetFormatter(log.TextFormatter)
	}

	var f *os.File
	if cfg.Log.Path != "" {
		var err error
		f, err = os.OpenFile(cfg.Log.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec
		if err != nil {
			return nil, nil, err //nolint:wrapcheck
		}
		logger.SetOutput(f)
	}

	return logger, f, nil
}

// ErrorLog adapts logger for APIs that take a standard library logger,
// such as http.Server.ErrorLog.
func ErrorLog(logger *log.Logger) *stdlog.Logger {
	return logger.StandardLog(log.StandardLogOptions{
		ForceLevel: log.ErrorLevel,
	})
}
