package config

import "time"

// Config is the root configuration structure for the relay.
type Config struct {
	// Proxy contains the inbound HTTP server configuration including
	// listen address, timeouts, route prefix and rate limiting.
	Proxy ProxyConfig `yaml:"proxy"`

	// Relay controls how query strings are materialized and how much of
	// an upstream response is accepted.
	Relay RelayConfig `yaml:"relay"`

	// Upstream configures the HTTP client requests are forwarded with.
	Upstream UpstreamConfig `yaml:"upstream"`

	// Journal contains configuration for the exchange journal including
	// backend selection and retention.
	Journal JournalConfig `yaml:"journal"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Security contains TLS settings for the inbound listener.
	Security SecurityConfig `yaml:"security"`
}

// ProxyConfig contains configuration for the inbound HTTP server.
type ProxyConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:2001").
	// Default: "127.0.0.1:2001"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. It must cover the upstream call.
	// Default: 60s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for in-flight
	// requests during graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits the size of request headers, including the
	// request line and therefore the query string.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// RoutePrefix is the path under which the relay route is mounted. The
	// rest of the path is the upstream target. Must start and end with "/".
	// Default: "/local/relay/vapix/"
	RoutePrefix string `yaml:"route_prefix"`

	// RateLimit limits inbound relay requests.
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig contains token bucket settings for inbound requests.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate. Zero disables limiting.
	RequestsPerSecond float64 `yaml:"requests_per_second"`

	// Burst is the bucket size.
	// Default: 1 when a rate is set
	Burst int `yaml:"burst"`

	// MaxConcurrent caps relay requests in flight at once; further
	// requests get 503. Zero means no cap.
	MaxConcurrent int `yaml:"max_concurrent"`
}

// RelayConfig contains configuration for materialization and relaying.
type RelayConfig struct {
	// PathGrammar selects how query keys are interpreted: "marker" (a
	// trailing "." marks a JSON literal) or "anchored" ("$"-rooted paths
	// with type sniffing). One grammar per deployment.
	// Default: "marker"
	PathGrammar string `yaml:"path_grammar"`

	// MaxResponseBytes caps the upstream response body. Zero means
	// unlimited.
	// Default: 10485760 (10MB)
	MaxResponseBytes int64 `yaml:"max_response_bytes"`
}

// UpstreamConfig contains configuration for the upstream HTTP client.
type UpstreamConfig struct {
	// BaseURL is the URL targets are resolved against.
	// Default: "http://127.0.0.12"
	BaseURL string `yaml:"base_url"`

	// Username enables HTTP basic auth when set.
	Username string `yaml:"username"`

	// Password is the basic auth password. Should come from
	// RELAY_UPSTREAM_PASSWORD or a ${secret:name} reference rather than
	// the file.
	Password string `yaml:"password"`

	// Timeout bounds a whole upstream call. Zero means no timeout.
	// Default: 0
	Timeout time.Duration `yaml:"timeout"`

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 100
	MaxIdleConns int `yaml:"max_idle_conns"`

	// MaxIdleConnsPerHost is the maximum number of idle connections to the
	// upstream host.
	// Default: 10
	MaxIdleConnsPerHost int `yaml:"max_idle_conns_per_host"`

	// IdleConnTimeout is how long an idle connection stays pooled.
	// Default: 90s
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout"`
}

// JournalConfig contains configuration for the exchange journal.
type JournalConfig struct {
	// Enabled controls whether exchanges are recorded.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Backend is the storage backend: "memory" or "sqlite".
	// Default: "memory"
	Backend string `yaml:"backend"`

	// AsyncBuffer is the number of records queued for writing. Records
	// arriving while the queue is full are dropped.
	// Default: 1000
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout bounds a single storage write.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// SQLite contains settings for the sqlite backend.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Retention controls how long records are kept.
	Retention RetentionConfig `yaml:"retention"`
}

// SQLiteConfig contains configuration for the SQLite journal backend.
type SQLiteConfig struct {
	// Driver selects the database/sql driver: "sqlite" (pure Go) or
	// "sqlite3" (cgo).
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// Path is the database file.
	// Default: "data/journal.db"
	Path string `yaml:"path"`

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// WALMode enables write-ahead logging.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is how long a writer waits for a lock.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RetentionConfig contains configuration for journal retention.
type RetentionConfig struct {
	// MaxAge deletes records older than this. Zero keeps records forever.
	// Default: 720h (30 days)
	MaxAge time.Duration `yaml:"max_age"`

	// MaxRecords keeps at most this many records, deleting the oldest.
	// Zero means no limit.
	MaxRecords int64 `yaml:"max_records"`

	// PruneSchedule is a standard five-field cron expression.
	// Default: "0 3 * * *"
	PruneSchedule string `yaml:"prune_schedule"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains OpenTelemetry tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains configuration for structured logging.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	// Reloaded without restart.
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format: "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file:line in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactSecrets masks credentials in log fields.
	// Default: true
	RedactSecrets bool `yaml:"redact_secrets"`
}

// MetricsConfig contains configuration for Prometheus metrics.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and exposed.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path metrics are served on.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "relay"
	Namespace string `yaml:"namespace"`

	// Subsystem is an optional second name component.
	Subsystem string `yaml:"subsystem"`

	// DurationBuckets are the histogram buckets for latencies, in seconds.
	DurationBuckets []float64 `yaml:"duration_buckets"`
}

// SecurityConfig contains security-related configuration.
type SecurityConfig struct {
	// TLS configures TLS on the inbound listener.
	TLS TLSConfig `yaml:"tls"`

	// Secrets configures where ${secret:name} references are resolved.
	Secrets SecretsConfig `yaml:"secrets"`

	// Auth protects the relay route with API keys. Health, readiness and
	// metrics stay open.
	Auth AuthConfig `yaml:"auth"`
}

// AuthConfig lists the API keys accepted on the relay route. An empty list
// disables authentication. Keys are read from "Authorization: Bearer <key>"
// or "X-API-Key: <key>"; never from the query string, which is the
// document.
type AuthConfig struct {
	APIKeys []APIKeyConfig `yaml:"api_keys"`
}

// APIKeyConfig is one accepted API key.
type APIKeyConfig struct {
	// Name identifies the caller in logs.
	Name string `yaml:"name"`

	// Key is the secret value; it may be a ${secret:name} reference.
	Key string `yaml:"key"`

	// Disabled rejects the key without removing it.
	Disabled bool `yaml:"disabled"`
}

// TLSConfig contains TLS configuration for the inbound listener.
type TLSConfig struct {
	// Enabled controls whether the listener serves HTTPS.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// CertFile is the PEM certificate chain.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the PEM private key.
	KeyFile string `yaml:"key_file"`

	// ReloadInterval is how often the key pair is checked for changes on
	// disk. Zero loads it once at startup.
	// Default: 1m
	ReloadInterval time.Duration `yaml:"reload_interval"`
}

// SecretsConfig configures secret resolution for upstream credentials.
// upstream.username and upstream.password may contain ${secret:name}
// references; the directory is tried first, then the environment.
type SecretsConfig struct {
	// EnvPrefix is prepended to the upper-cased secret name, with hyphens
	// turned into underscores: "camera-password" is read from
	// RELAY_SECRET_CAMERA_PASSWORD.
	// Default: "RELAY_SECRET_"
	EnvPrefix string `yaml:"env_prefix"`

	// Dir holds one file per secret, named after the secret, with mode
	// 0600 or 0400. Empty disables file secrets.
	Dir string `yaml:"dir"`
}

// TracingConfig contains configuration for OpenTelemetry tracing. Spans are
// exported over OTLP/gRPC and trace context is forwarded to the upstream in
// the traceparent header.
type TracingConfig struct {
	// Enabled controls whether spans are recorded and exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// ServiceName is reported as the service.name resource attribute.
	// Default: "relay"
	ServiceName string `yaml:"service_name"`

	// Endpoint is the OTLP/gRPC collector address (host:port).
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS towards the collector.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Timeout bounds each export.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// Sampler is "always", "never" or "ratio".
	// Default: "always"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of new traces sampled when Sampler is
	// "ratio".
	SampleRatio float64 `yaml:"sample_ratio"`
}
