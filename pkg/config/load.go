package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "RELAY_"

// LoadConfig loads configuration from a YAML file at the specified path.
// The file is decoded on top of Defaults, validated, and returned. It is
// not modified by environment variables; use LoadConfigWithEnvOverrides for
// that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML on top of Defaults and fills remaining zero values.
// It does not validate.
func Parse(data []byte) (*Config, error) {
	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(cfg)
	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention RELAY_SECTION_FIELD (e.g., RELAY_PROXY_LISTEN_ADDRESS) and
// always take precedence over the file. An empty path starts from Defaults.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = Defaults()
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		cfg, err = Parse(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	// Proxy overrides
	envString("PROXY_LISTEN_ADDRESS", &cfg.Proxy.ListenAddress)
	envDuration("PROXY_READ_TIMEOUT", &cfg.Proxy.ReadTimeout)
	envDuration("PROXY_WRITE_TIMEOUT", &cfg.Proxy.WriteTimeout)
	envDuration("PROXY_IDLE_TIMEOUT", &cfg.Proxy.IdleTimeout)
	envDuration("PROXY_SHUTDOWN_TIMEOUT", &cfg.Proxy.ShutdownTimeout)
	envInt("PROXY_MAX_HEADER_BYTES", &cfg.Proxy.MaxHeaderBytes)
	envString("PROXY_ROUTE_PREFIX", &cfg.Proxy.RoutePrefix)
	envFloat("PROXY_RATE_LIMIT_REQUESTS_PER_SECOND", &cfg.Proxy.RateLimit.RequestsPerSecond)
	envInt("PROXY_RATE_LIMIT_BURST", &cfg.Proxy.RateLimit.Burst)
	envInt("PROXY_RATE_LIMIT_MAX_CONCURRENT", &cfg.Proxy.RateLimit.MaxConcurrent)

	// Relay overrides
	envString("RELAY_PATH_GRAMMAR", &cfg.Relay.PathGrammar)
	envInt64("RELAY_MAX_RESPONSE_BYTES", &cfg.Relay.MaxResponseBytes)

	// Upstream overrides
	envString("UPSTREAM_BASE_URL", &cfg.Upstream.BaseURL)
	envString("UPSTREAM_USERNAME", &cfg.Upstream.Username)
	envString("UPSTREAM_PASSWORD", &cfg.Upstream.Password)
	envDuration("UPSTREAM_TIMEOUT", &cfg.Upstream.Timeout)

	// Journal overrides
	envBool("JOURNAL_ENABLED", &cfg.Journal.Enabled)
	envString("JOURNAL_BACKEND", &cfg.Journal.Backend)
	envString("JOURNAL_SQLITE_DRIVER", &cfg.Journal.SQLite.Driver)
	envString("JOURNAL_SQLITE_PATH", &cfg.Journal.SQLite.Path)
	envDuration("JOURNAL_RETENTION_MAX_AGE", &cfg.Journal.Retention.MaxAge)
	envInt64("JOURNAL_RETENTION_MAX_RECORDS", &cfg.Journal.Retention.MaxRecords)
	envString("JOURNAL_RETENTION_PRUNE_SCHEDULE", &cfg.Journal.Retention.PruneSchedule)

	// Telemetry overrides
	envString("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	envString("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	envBool("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	envString("TELEMETRY_METRICS_PATH", &cfg.Telemetry.Metrics.Path)
	envBool("TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	envString("TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	envString("TELEMETRY_TRACING_SAMPLER", &cfg.Telemetry.Tracing.Sampler)
	envFloat("TELEMETRY_TRACING_SAMPLE_RATIO", &cfg.Telemetry.Tracing.SampleRatio)

	// Security overrides
	envBool("SECURITY_TLS_ENABLED", &cfg.Security.TLS.Enabled)
	envString("SECURITY_TLS_CERT_FILE", &cfg.Security.TLS.CertFile)
	envString("SECURITY_TLS_KEY_FILE", &cfg.Security.TLS.KeyFile)
	envDuration("SECURITY_TLS_RELOAD_INTERVAL", &cfg.Security.TLS.ReloadInterval)
	envString("SECURITY_SECRETS_DIR", &cfg.Security.Secrets.Dir)
}

func envString(name string, dst *string) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		*dst = val
	}
}

func envDuration(name string, dst *time.Duration) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			slog.Warn("ignoring invalid environment override", "name", EnvPrefix+name, "error", err)
			return
		}
		*dst = d
	}
}

func envInt(name string, dst *int) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			slog.Warn("ignoring invalid environment override", "name", EnvPrefix+name, "error", err)
			return
		}
		*dst = i
	}
}

func envInt64(name string, dst *int64) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		i, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			slog.Warn("ignoring invalid environment override", "name", EnvPrefix+name, "error", err)
			return
		}
		*dst = i
	}
}

func envFloat(name string, dst *float64) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			slog.Warn("ignoring invalid environment override", "name", EnvPrefix+name, "error", err)
			return
		}
		*dst = f
	}
}

func envBool(name string, dst *bool) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		b, err := strconv.ParseBool(val)
		if err != nil {
			slog.Warn("ignoring invalid environment override", "name", EnvPrefix+name, "error", err)
			return
		}
		*dst = b
	}
}
