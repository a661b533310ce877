package config

import (
	"bytes"
	"text/template"
)

var configFileTmpl = template.Must(template.New("config").Parse(`# revd server configuration

# The name of the server.
name: "{{ .Name }}"

# The path to the repository to serve. It may point to the working tree or
# to a bare repository.
repo_path: "{{ .RepoPath }}"

# Logging configuration.
log:
  # Log format to use. Valid values are "json", "logfmt", and "text".
  format: "{{ .Log.Format }}"
  # Time format for the log "timestamp" field.
  # Should be described in Golang's time format.
  time_format: "{{ .Log.TimeFormat }}"
  # Path to the log file. Leave empty to write to stderr.
  #path: "{{ .Log.Path }}"

# The HTTP server configuration.
http:
  # The address on which the HTTP server will listen.
  listen_addr: "{{ .HTTP.ListenAddr }}"

  # The public URL of the HTTP server.
  public_url: "{{ .HTTP.PublicURL }}"

  # Cross-origin request settings. Leave empty to disable CORS headers.
  #cors:
  #  allowed_headers: []
  #  allowed_origins: []
  #  allowed_methods: []

# The stats server configuration.
stats:
  # The address on which the stats server will listen.
  listen_addr: "{{ .Stats.ListenAddr }}"

# The repository actor configuration.
actor:
  # The number of requests that can wait for the repository. Requests
  # beyond that are rejected with 503 Service Unavailable.
  mailbox_size: {{ .Actor.MailboxSize }}

  # How long a request waits for its reply before timing out.
  call_timeout: "{{ .Actor.CallTimeout }}"

# In-memory caches.
cache:
  # The number of file contents kept in memory for diffs.
  blob_cache_size: {{ .Cache.BlobCacheSize }}

# Cron job schedules.
jobs:
  # Publishes repository gauges to the stats server. Leave empty to disable.
  repo_stats: "{{ .Jobs.RepoStats }}"
`))

func newConfigFile(cfg *Config) string {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	var b bytes.Buffer
	configFileTmpl.Execute(&b, cfg) // nolint: errcheck

	return b.String()
}
