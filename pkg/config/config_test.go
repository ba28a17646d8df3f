package config

import (
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestConfig_YAMLFieldNames(t *testing.T) {
	content := `
proxy:
  listen_address: "0.0.0.0:9000"
  read_timeout: 5s
  route_prefix: "/local/other/vapix/"
  rate_limit:
    requests_per_second: 2.5
    burst: 4
relay:
  path_grammar: anchored
  max_response_bytes: 2048
upstream:
  base_url: "http://192.0.2.10"
  username: root
  password: pass
  timeout: 3s
journal:
  enabled: true
  backend: sqlite
  sqlite:
    driver: sqlite3
    path: /tmp/j.db
    wal_mode: false
  retention:
    max_age: 24h
    max_records: 500
    prune_schedule: "*/5 * * * *"
telemetry:
  logging:
    level: debug
    format: text
    add_source: true
  metrics:
    enabled: false
    path: /stats
security:
  tls:
    enabled: true
    cert_file: cert.pem
    key_file: key.pem
`
	var cfg Config
	if err := yaml.Unmarshal([]byte(content), &cfg); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}

	checks := []struct {
		name string
		got  any
		want any
	}{
		{"proxy.listen_address", cfg.Proxy.ListenAddress, "0.0.0.0:9000"},
		{"proxy.read_timeout", cfg.Proxy.ReadTimeout, 5 * time.Second},
		{"proxy.route_prefix", cfg.Proxy.RoutePrefix, "/local/other/vapix/"},
		{"proxy.rate_limit.requests_per_second", cfg.Proxy.RateLimit.RequestsPerSecond, 2.5},
		{"proxy.rate_limit.burst", cfg.Proxy.RateLimit.Burst, 4},
		{"relay.path_grammar", cfg.Relay.PathGrammar, "anchored"},
		{"relay.max_response_bytes", cfg.Relay.MaxResponseBytes, int64(2048)},
		{"upstream.base_url", cfg.Upstream.BaseURL, "http://192.0.2.10"},
		{"upstream.username", cfg.Upstream.Username, "root"},
		{"upstream.password", cfg.Upstream.Password, "pass"},
		{"upstream.timeout", cfg.Upstream.Timeout, 3 * time.Second},
		{"journal.enabled", cfg.Journal.Enabled, true},
		{"journal.backend", cfg.Journal.Backend, "sqlite"},
		{"journal.sqlite.driver", cfg.Journal.SQLite.Driver, "sqlite3"},
		{"journal.sqlite.path", cfg.Journal.SQLite.Path, "/tmp/j.db"},
		{"journal.sqlite.wal_mode", cfg.Journal.SQLite.WALMode, false},
		{"journal.retention.max_age", cfg.Journal.Retention.MaxAge, 24 * time.Hour},
		{"journal.retention.max_records", cfg.Journal.Retention.MaxRecords, int64(500)},
		{"journal.retention.prune_schedule", cfg.Journal.Retention.PruneSchedule, "*/5 * * * *"},
		{"telemetry.logging.level", cfg.Telemetry.Logging.Level, "debug"},
		{"telemetry.logging.format", cfg.Telemetry.Logging.Format, "text"},
		{"telemetry.logging.add_source", cfg.Telemetry.Logging.AddSource, true},
		{"telemetry.metrics.enabled", cfg.Telemetry.Metrics.Enabled, false},
		{"telemetry.metrics.path", cfg.Telemetry.Metrics.Path, "/stats"},
		{"security.tls.enabled", cfg.Security.TLS.Enabled, true},
		{"security.tls.cert_file", cfg.Security.TLS.CertFile, "cert.pem"},
		{"security.tls.key_file", cfg.Security.TLS.KeyFile, "key.pem"},
	}

	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}
