package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestDefaultConfigIsValid(t *testing.T) {
	is := is.New(t)
	cfg := DefaultConfig()
	cfg.DataPath = t.TempDir()
	is.NoErr(cfg.Validate())
	is.True(filepath.IsAbs(cfg.RepoPath))
	is.Equal(cfg.Actor.MailboxSize, 128)
	is.Equal(cfg.Actor.CallTimeout, 30*time.Second)
}

func TestWriteAndParseConfig(t *testing.T) {
	is := is.New(t)
	cfg := DefaultConfig()
	cfg.DataPath = t.TempDir()
	cfg.Name = "my repo"
	cfg.Actor.MailboxSize = 8
	cfg.Actor.CallTimeout = 2 * time.Second
	is.NoErr(cfg.WriteConfig())
	is.True(cfg.Exist())

	parsed := &Config{DataPath: cfg.DataPath}
	is.NoErr(parsed.ParseFile())
	is.Equal(parsed.Name, "my repo")
	is.Equal(parsed.Actor.MailboxSize, 8)
	is.Equal(parsed.Actor.CallTimeout, 2*time.Second)
	is.Equal(parsed.Jobs.RepoStats, "@every 1m")
	is.Equal(parsed.HTTP.ListenAddr, ":8110")
}

func TestParseEnv(t *testing.T) {
	is := is.New(t)
	t.Setenv("REVD_DATA_PATH", t.TempDir())
	t.Setenv("REVD_ACTOR_MAILBOX_SIZE", "16")
	t.Setenv("REVD_ACTOR_CALL_TIMEOUT", "1m")
	t.Setenv("REVD_HTTP_PUBLIC_URL", "http://example.com/")
	cfg := DefaultConfig()
	is.NoErr(cfg.ParseEnv())
	is.Equal(cfg.Actor.MailboxSize, 16)
	is.Equal(cfg.Actor.CallTimeout, time.Minute)
	is.Equal(cfg.HTTP.PublicURL, "http://example.com")
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"mailbox":    func(c *Config) { c.Actor.MailboxSize = 0 },
		"timeout":    func(c *Config) { c.Actor.CallTimeout = 0 },
		"cache":      func(c *Config) { c.Cache.BlobCacheSize = -1 },
		"log format": func(c *Config) { c.Log.Format = "xml" },
		"repo path":  func(c *Config) { c.RepoPath = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			is := is.New(t)
			cfg := DefaultConfig()
			cfg.DataPath = t.TempDir()
			mutate(cfg)
			is.True(cfg.Validate() != nil)
		})
	}
}

func TestCustomConfigLocation(t *testing.T) {
	is := is.New(t)
	td := t.TempDir()

	// Test that we get data from the custom file location, and not from the data dir.
	t.Setenv("REVD_CONFIG_LOCATION", "testdata/config.yaml")
	t.Setenv("REVD_DATA_PATH", td)
	cfg := DefaultConfig()
	is.NoErr(cfg.Parse())
	is.Equal(cfg.Name, "Test server name")
	is.Equal(cfg.Actor.MailboxSize, 4)

	// Test that if the custom config location doesn't exist, default to datapath config.
	is.NoErr(os.Setenv("REVD_CONFIG_LOCATION", "testdata/config_nonexistent.yaml"))
	cfg = DefaultConfig()
	is.Equal(cfg.ConfigPath(), filepath.Join(td, "config.yaml"))
}

func TestParseMultipleHeaders(t *testing.T) {
	is := is.New(t)
	t.Setenv("REVD_HTTP_CORS_ALLOWED_HEADERS", "Accept,Accept-Language,User-Agent")
	cfg := DefaultConfig()
	is.NoErr(cfg.ParseEnv())
	is.Equal(cfg.HTTP.CORS.AllowedHeaders, []string{
		"Accept",
		"Accept-Language",
		"User-Agent",
	})
}

func TestParseMultipleOrigins(t *testing.T) {
	is := is.New(t)
	t.Setenv("REVD_HTTP_CORS_ALLOWED_ORIGINS", "http://example.com,https://example.com")
	cfg := DefaultConfig()
	is.NoErr(cfg.ParseEnv())
	is.Equal(cfg.HTTP.CORS.AllowedOrigins, []string{
		"http://localhost:8110",
		"http://example.com",
		"https://example.com",
	})
}

func TestEnviron(t *testing.T) {
	is := is.New(t)
	cfg := DefaultConfig()
	envs := cfg.Environ()
	is.True(len(envs) > 0)
	for _, e := range envs {
		is.True(strings.HasPrefix(e, "REVD_"))
	}
	is.Equal((*Config)(nil).Environ(), nil)
}

func TestIsDebug(t *testing.T) {
	is := is.New(t)
	t.Setenv("REVD_DEBUG", "true")
	t.Setenv("REVD_VERBOSE", "true")
	is.True(IsDebug())
	is.True(IsVerbose())

	t.Setenv("REVD_DEBUG", "false")
	is.True(!IsVerbose())
}
