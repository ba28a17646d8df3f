// Package config provides configuration management for the relay.
//
// Configuration is read from a YAML file, decoded on top of built-in
// defaults, overridden by environment variables and validated before use.
//
// # Configuration Loading
//
//	cfg, err := config.LoadConfig("relay.yaml")              // file only
//	cfg, err := config.LoadConfigWithEnvOverrides("relay.yaml") // file + env
//	cfg, err := config.LoadConfigWithEnvOverrides("")           // defaults + env
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention RELAY_SECTION_FIELD:
//
//   - RELAY_PROXY_LISTEN_ADDRESS overrides proxy.listen_address
//   - RELAY_UPSTREAM_BASE_URL overrides upstream.base_url
//   - RELAY_RELAY_PATH_GRAMMAR overrides relay.path_grammar
//   - RELAY_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Values that fail to parse (a bad duration, say) are logged and ignored.
//
// # Configuration Precedence
//
//  1. Default values (defaults.go)
//  2. Values from the YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Validation
//
// Every problem is collected into a single ValidationError:
//
//	configuration validation failed with 2 errors:
//	  - relay.path_grammar: invalid path grammar "xpath": must be 'marker' or 'anchored'
//	  - journal.retention.prune_schedule: invalid cron expression "daily": ...
//
// # Hot Reload
//
// Watcher observes the configuration file and, after a debounce period,
// reloads it and hands the new *Config to a callback. The
// server uses this to change the log level without a restart; listener and
// upstream settings only take effect on the next start.
//
// # Example Configuration
//
//	proxy:
//	  listen_address: "127.0.0.1:2001"
//	  route_prefix: "/local/relay/vapix/"
//
//	relay:
//	  path_grammar: "marker"
//
//	upstream:
//	  base_url: "http://127.0.0.12"
//	  username: "root"
//	  password: "${DEVICE_PASSWORD}"
//	  timeout: 30s
//
//	journal:
//	  enabled: true
//	  backend: "sqlite"
//	  sqlite:
//	    path: "data/journal.db"
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
package config
