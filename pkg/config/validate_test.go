package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestValidate_ValidConfig(t *testing.T) {
	if err := Validate(Defaults()); err != nil {
		t.Errorf("expected valid config to pass validation, got error: %v", err)
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Proxy.ListenAddress = ""
	cfg.Relay.PathGrammar = "xpath"
	cfg.Upstream.BaseURL = "not a url"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation to fail")
	}

	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(verr.Errors) != 3 {
		t.Errorf("expected 3 errors, got %d: %v", len(verr.Errors), verr.Errors)
	}
	if !strings.Contains(verr.Error(), "validation failed with 3 errors") {
		t.Errorf("error message should count errors: %s", verr.Error())
	}
}

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name string
		errs []FieldError
		want string
	}{
		{"none", nil, "configuration validation failed"},
		{
			"one",
			[]FieldError{{Field: "relay.path_grammar", Message: "bad"}},
			"configuration validation failed: relay.path_grammar: bad",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (ValidationError{Errors: tt.errs}).Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidate_Fields(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"valid defaults", func(*Config) {}, ""},

		// proxy
		{"missing listen address", func(c *Config) { c.Proxy.ListenAddress = "" }, "proxy.listen_address"},
		{"listen address without port", func(c *Config) { c.Proxy.ListenAddress = "localhost" }, "proxy.listen_address"},
		{"negative read timeout", func(c *Config) { c.Proxy.ReadTimeout = -1 }, "proxy.read_timeout"},
		{"negative shutdown timeout", func(c *Config) { c.Proxy.ShutdownTimeout = -1 }, "proxy.shutdown_timeout"},
		{"huge header limit", func(c *Config) { c.Proxy.MaxHeaderBytes = 11 * 1024 * 1024 }, "proxy.max_header_bytes"},
		{"route prefix without leading slash", func(c *Config) { c.Proxy.RoutePrefix = "local/relay/" }, "proxy.route_prefix"},
		{"route prefix without trailing slash", func(c *Config) { c.Proxy.RoutePrefix = "/local/relay" }, "proxy.route_prefix"},
		{"route prefix with wildcard", func(c *Config) { c.Proxy.RoutePrefix = "/local/{app}/" }, "proxy.route_prefix"},
		{"negative rate", func(c *Config) { c.Proxy.RateLimit.RequestsPerSecond = -1 }, "proxy.rate_limit.requests_per_second"},
		{"negative concurrency cap", func(c *Config) { c.Proxy.RateLimit.MaxConcurrent = -1 }, "proxy.rate_limit.max_concurrent"},

		// relay
		{"anchored grammar", func(c *Config) { c.Relay.PathGrammar = "anchored" }, ""},
		{"unknown grammar", func(c *Config) { c.Relay.PathGrammar = "xpath" }, "relay.path_grammar"},
		{"negative response limit", func(c *Config) { c.Relay.MaxResponseBytes = -1 }, "relay.max_response_bytes"},

		// upstream
		{"https upstream", func(c *Config) { c.Upstream.BaseURL = "https://device.local:8443/base" }, ""},
		{"relative upstream", func(c *Config) { c.Upstream.BaseURL = "/vapix" }, "upstream.base_url"},
		{"non-http upstream", func(c *Config) { c.Upstream.BaseURL = "ftp://device" }, "upstream.base_url"},
		{"password without username", func(c *Config) { c.Upstream.Password = "pass" }, "upstream.username"},
		{"negative upstream timeout", func(c *Config) { c.Upstream.Timeout = -1 }, "upstream.timeout"},

		// journal
		{"disabled journal skips checks", func(c *Config) { c.Journal.Backend = "postgres" }, ""},
		{"unknown backend", func(c *Config) { c.Journal.Enabled = true; c.Journal.Backend = "postgres" }, "journal.backend"},
		{"cgo sqlite driver", func(c *Config) {
			c.Journal.Enabled = true
			c.Journal.Backend = "sqlite"
			c.Journal.SQLite.Driver = "sqlite3"
		}, ""},
		{"unknown sqlite driver", func(c *Config) {
			c.Journal.Enabled = true
			c.Journal.Backend = "sqlite"
			c.Journal.SQLite.Driver = "pgx"
		}, "journal.sqlite.driver"},
		{"sqlite without path", func(c *Config) {
			c.Journal.Enabled = true
			c.Journal.Backend = "sqlite"
			c.Journal.SQLite.Path = ""
		}, "journal.sqlite.path"},
		{"bad prune schedule", func(c *Config) {
			c.Journal.Enabled = true
			c.Journal.Retention.PruneSchedule = "daily"
		}, "journal.retention.prune_schedule"},
		{"descriptor prune schedule", func(c *Config) {
			c.Journal.Enabled = true
			c.Journal.Retention.PruneSchedule = "@hourly"
		}, ""},

		// telemetry
		{"uppercase level", func(c *Config) { c.Telemetry.Logging.Level = "DEBUG" }, ""},
		{"unknown level", func(c *Config) { c.Telemetry.Logging.Level = "trace" }, "telemetry.logging.level"},
		{"unknown format", func(c *Config) { c.Telemetry.Logging.Format = "xml" }, "telemetry.logging.format"},
		{"metrics path without slash", func(c *Config) { c.Telemetry.Metrics.Path = "metrics" }, "telemetry.metrics.path"},
		{"metrics path on health", func(c *Config) { c.Telemetry.Metrics.Path = "/health" }, "telemetry.metrics.path"},
		{"metrics path inside relay route", func(c *Config) { c.Telemetry.Metrics.Path = "/local/relay/vapix/metrics" }, "telemetry.metrics.path"},
		{"disabled metrics path ignored", func(c *Config) {
			c.Telemetry.Metrics.Enabled = false
			c.Telemetry.Metrics.Path = "metrics"
		}, ""},
		{"tracing defaults", func(c *Config) { c.Telemetry.Tracing.Enabled = true }, ""},
		{"tracing without endpoint", func(c *Config) {
			c.Telemetry.Tracing.Enabled = true
			c.Telemetry.Tracing.Endpoint = ""
		}, "telemetry.tracing.endpoint"},
		{"unknown sampler", func(c *Config) {
			c.Telemetry.Tracing.Enabled = true
			c.Telemetry.Tracing.Sampler = "sometimes"
		}, "telemetry.tracing.sampler"},
		{"ratio out of range", func(c *Config) {
			c.Telemetry.Tracing.Enabled = true
			c.Telemetry.Tracing.Sampler = "ratio"
			c.Telemetry.Tracing.SampleRatio = 1.5
		}, "telemetry.tracing.sample_ratio"},
		{"disabled tracing skips checks", func(c *Config) { c.Telemetry.Tracing.Sampler = "sometimes" }, ""},

		// security
		{"tls without cert", func(c *Config) { c.Security.TLS.Enabled = true; c.Security.TLS.KeyFile = "k.pem" }, "security.tls.cert_file"},
		{"tls without key", func(c *Config) { c.Security.TLS.Enabled = true; c.Security.TLS.CertFile = "c.pem" }, "security.tls.key_file"},
		{"negative tls reload", func(c *Config) {
			c.Security.TLS = TLSConfig{Enabled: true, CertFile: "c.pem", KeyFile: "k.pem", ReloadInterval: -time.Second}
		}, "security.tls.reload_interval"},
		{"api keys", func(c *Config) {
			c.Security.Auth.APIKeys = []APIKeyConfig{{Name: "ops", Key: "k1"}, {Name: "ci", Key: "${secret:ci-key}"}}
		}, ""},
		{"api key without value", func(c *Config) {
			c.Security.Auth.APIKeys = []APIKeyConfig{{Name: "ops"}}
		}, "security.auth.api_keys[0].key"},
		{"duplicate api key name", func(c *Config) {
			c.Security.Auth.APIKeys = []APIKeyConfig{{Name: "ops", Key: "a"}, {Name: "ops", Key: "b"}}
		}, "security.auth.api_keys[1].name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}

			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() error = %v, want ValidationError", err)
			}
			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.wantField {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("Validate() errors = %v, want one for %s", verr.Errors, tt.wantField)
			}
		})
	}
}
