package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// ErrNilConfig is returned when a nil config is passed to a function.
var ErrNilConfig = errors.New("nil config")

// HTTPConfig is the HTTP configuration for the server.
type HTTPConfig struct {
	// ListenAddr is the address on which the HTTP server will listen.
	ListenAddr string `env:"LISTEN_ADDR" yaml:"listen_addr"`

	// PublicURL is the public URL of the HTTP server.
	PublicURL string `env:"PUBLIC_URL" yaml:"public_url"`

	// CORS is the configuration for cross-origin requests.
	CORS CORSConfig `envPrefix:"CORS_" yaml:"cors"`
}

// CORSConfig is the CORS configuration for the HTTP server.
type CORSConfig struct {
	AllowedHeaders []string `env:"ALLOWED_HEADERS" yaml:"allowed_headers"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" yaml:"allowed_origins"`
	AllowedMethods []string `env:"ALLOWED_METHODS" yaml:"allowed_methods"`
}

// StatsConfig is the configuration for the stats server.
type StatsConfig struct {
	// ListenAddr is the address on which the stats server will listen.
	ListenAddr string `env:"LISTEN_ADDR" yaml:"listen_addr"`
}

// LogConfig is the logger configuration.
type LogConfig struct {
	// Format is the format of the logs.
	// Valid values are "json", "logfmt", and "text".
	Format string `env:"FORMAT" yaml:"format"`

	// Time format for the log `ts` field.
	// Format must be described in Golang's time format.
	TimeFormat string `env:"TIME_FORMAT" yaml:"time_format"`

	// Path to a file to write logs to.
	// If not set, logs will be written to stderr.
	Path string `env:"PATH" yaml:"path"`
}

// ActorConfig configures the actor that owns the repository.
type ActorConfig struct {
	// MailboxSize is the number of requests that can wait for the
	// repository. Requests beyond that are rejected.
	MailboxSize int `env:"MAILBOX_SIZE" yaml:"mailbox_size"`

	// CallTimeout is how long a request waits for its reply.
	CallTimeout time.Duration `env:"CALL_TIMEOUT" yaml:"call_timeout"`
}

// CacheConfig is the in-memory cache configuration.
type CacheConfig struct {
	// BlobCacheSize is the number of file contents kept in memory.
	BlobCacheSize int `env:"BLOB_CACHE_SIZE" yaml:"blob_cache_size"`
}

// JobsConfig is the configuration for cron jobs.
type JobsConfig struct {
	// RepoStats is the schedule of the repository stats job. Leave empty
	// to disable it.
	RepoStats string `env:"REPO_STATS" yaml:"repo_stats"`
}

// Config is the configuration for revd.
type Config struct {
	// Name is the name of the server.
	Name string `env:"NAME" yaml:"name"`

	// RepoPath is the path to the served repository.
	RepoPath string `env:"REPO_PATH" yaml:"repo_path"`

	// HTTP is the configuration for the HTTP server.
	HTTP HTTPConfig `envPrefix:"HTTP_" yaml:"http"`

	// Stats is the configuration for the stats server.
	Stats StatsConfig `envPrefix:"STATS_" yaml:"stats"`

	// Log is the logger configuration.
	Log LogConfig `envPrefix:"LOG_" yaml:"log"`

	// Actor is the configuration of the repository actor.
	Actor ActorConfig `envPrefix:"ACTOR_" yaml:"actor"`

	// Cache is the cache configuration.
	Cache CacheConfig `envPrefix:"CACHE_" yaml:"cache"`

	// Jobs is the configuration for cron jobs
	Jobs JobsConfig `envPrefix:"JOBS_" yaml:"jobs"`

	// DataPath is the path to the directory where revd will store its data.
	DataPath string `env:"DATA_PATH" yaml:"-"`
}

// Environ returns the config as a list of environment variables.
func (c *Config) Environ() []string {
	if c == nil {
		return nil
	}

	return []string{
		fmt.Sprintf("REVD_DATA_PATH=%s", c.DataPath),
		fmt.Sprintf("REVD_NAME=%s", c.Name),
		fmt.Sprintf("REVD_REPO_PATH=%s", c.RepoPath),
		fmt.Sprintf("REVD_HTTP_LISTEN_ADDR=%s", c.HTTP.ListenAddr),
		fmt.Sprintf("REVD_HTTP_PUBLIC_URL=%s", c.HTTP.PublicURL),
		fmt.Sprintf("REVD_HTTP_CORS_ALLOWED_HEADERS=%s", strings.Join(c.HTTP.CORS.AllowedHeaders, ",")),
		fmt.Sprintf("REVD_HTTP_CORS_ALLOWED_ORIGINS=%s", strings.Join(c.HTTP.CORS.AllowedOrigins, ",")),
		fmt.Sprintf("REVD_HTTP_CORS_ALLOWED_METHODS=%s", strings.Join(c.HTTP.CORS.AllowedMethods, ",")),
		fmt.Sprintf("REVD_STATS_LISTEN_ADDR=%s", c.Stats.ListenAddr),
		fmt.Sprintf("REVD_LOG_FORMAT=%s", c.Log.Format),
		fmt.Sprintf("REVD_LOG_TIME_FORMAT=%s", c.Log.TimeFormat),
		fmt.Sprintf("REVD_LOG_PATH=%s", c.Log.Path),
		fmt.Sprintf("REVD_ACTOR_MAILBOX_SIZE=%d", c.Actor.MailboxSize),
		fmt.Sprintf("REVD_ACTOR_CALL_TIMEOUT=%s", c.Actor.CallTimeout),
		fmt.Sprintf("REVD_CACHE_BLOB_CACHE_SIZE=%d", c.Cache.BlobCacheSize),
		fmt.Sprintf("REVD_JOBS_REPO_STATS=%s", c.Jobs.RepoStats),
	}
}

// IsDebug returns true if the server is running in debug mode.
func IsDebug() bool {
	debug, _ := strconv.ParseBool(os.Getenv("REVD_DEBUG"))
	return debug
}

// IsVerbose returns true if the server is running in verbose mode.
// Verbose mode is only enabled if debug mode is enabled.
func IsVerbose() bool {
	verbose, _ := strconv.ParseBool(os.Getenv("REVD_VERBOSE"))
	return IsDebug() && verbose
}

// parseFile parses the given file as a configuration file.
// The file must be in YAML format.
func parseFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}

	defer f.Close() // nolint: errcheck
	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}

	return cfg.Validate()
}

// ParseFile parses the config from the default file path.
// This also calls Validate() on the config.
func (c *Config) ParseFile() error {
	return parseFile(c, c.ConfigPath())
}

// parseEnv parses the environment variables as a configuration file.
func parseEnv(cfg *Config) error {
	// Override with environment variables
	if err := env.ParseWithOptions(cfg, env.Options{
		Prefix: "REVD_",
	}); err != nil {
		return fmt.Errorf("parse environment variables: %w", err)
	}

	return cfg.Validate()
}

// ParseEnv parses the config from the environment variables.
// This also calls Validate() on the config.
func (c *Config) ParseEnv() error {
	return parseEnv(c)
}

// Parse parses the config from the default file path and environment variables.
// This also calls Validate() on the config.
func (c *Config) Parse() error {
	if err := c.ParseFile(); err != nil {
		return err
	}

	return c.ParseEnv()
}

// writeConfig writes the configuration to the given file.
func writeConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(newConfigFile(cfg)), 0o644) // nolint: errcheck, gosec
}

// WriteConfig writes the configuration to the default file.
func (c *Config) WriteConfig() error {
	return writeConfig(c, c.ConfigPath())
}

// DefaultDataPath returns the path to the data directory.
// It uses the REVD_DATA_PATH environment variable if set, otherwise it
// uses "data".
func DefaultDataPath() string {
	dp := os.Getenv("REVD_DATA_PATH")
	if dp == "" {
		dp = "data"
	}

	return dp
}

// ConfigPath returns the path to the config file. REVD_CONFIG_LOCATION
// takes precedence when it points to an existing file.
func (c *Config) ConfigPath() string { // nolint:revive
	if path := os.Getenv("REVD_CONFIG_LOCATION"); exist(path) {
		return path
	}

	return filepath.Join(c.DataPath, "config.yaml")
}

func exist(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// Exist returns true if the config file exists.
func (c *Config) Exist() bool {
	return exist(c.ConfigPath())
}

// DefaultConfig returns the default Config. All the path values are relative
// to the data directory.
// Use Validate() to validate the config and ensure absolute paths.
func DefaultConfig() *Config {
	return &Config{
		Name:     "revd",
		RepoPath: ".",
		DataPath: DefaultDataPath(),
		HTTP: HTTPConfig{
			ListenAddr: ":8110",
			PublicURL:  "http://localhost:8110",
		},
		Stats: StatsConfig{
			ListenAddr: "localhost:8111",
		},
		Log: LogConfig{
			Format:     "text",
			TimeFormat: time.DateTime,
		},
		Actor: ActorConfig{
			MailboxSize: 128,
			CallTimeout: 30 * time.Second,
		},
		Cache: CacheConfig{
			BlobCacheSize: 256,
		},
		Jobs: JobsConfig{
			RepoStats: "@every 1m",
		},
	}
}

// Validate validates the configuration.
// It updates the configuration with absolute paths.
func (c *Config) Validate() error {
	// Use absolute paths
	if !filepath.IsAbs(c.DataPath) {
		dp, err := filepath.Abs(c.DataPath)
		if err != nil {
			return err
		}
		c.DataPath = dp
	}

	if c.RepoPath == "" {
		return errors.New("repository path is required")
	}
	if !filepath.IsAbs(c.RepoPath) {
		rp, err := filepath.Abs(c.RepoPath)
		if err != nil {
			return err
		}
		c.RepoPath = rp
	}

	if c.Log.Path != "" && !filepath.IsAbs(c.Log.Path) {
		c.Log.Path = filepath.Join(c.DataPath, c.Log.Path)
	}

	c.HTTP.PublicURL = strings.TrimSuffix(c.HTTP.PublicURL, "/")
	if len(c.HTTP.CORS.AllowedOrigins) > 0 && c.HTTP.PublicURL != "" &&
		!slices.Contains(c.HTTP.CORS.AllowedOrigins, c.HTTP.PublicURL) {
		c.HTTP.CORS.AllowedOrigins = append([]string{c.HTTP.PublicURL}, c.HTTP.CORS.AllowedOrigins...)
	}

	switch c.Log.Format {
	case "", "json", "logfmt", "text":
	default:
		return fmt.Errorf("invalid log format %q", c.Log.Format)
	}

	if c.Actor.MailboxSize < 1 {
		return fmt.Errorf("invalid actor mailbox size %d: must be at least 1", c.Actor.MailboxSize)
	}

	if c.Actor.CallTimeout <= 0 {
		return fmt.Errorf("invalid actor call timeout %s: must be positive", c.Actor.CallTimeout)
	}

	if c.Cache.BlobCacheSize < 1 {
		return fmt.Errorf("invalid blob cache size %d: must be at least 1", c.Cache.BlobCacheSize)
	}

	return nil
}
