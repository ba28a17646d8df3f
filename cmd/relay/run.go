package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/relay/pkg/cli"
	"mercator-hq/relay/pkg/config"
	"mercator-hq/relay/pkg/journal/recorder"
	"mercator-hq/relay/pkg/journal/retention"
	"mercator-hq/relay/pkg/journal/storage"
	"mercator-hq/relay/pkg/materialize"
	"mercator-hq/relay/pkg/proxy"
	"mercator-hq/relay/pkg/server"
	"mercator-hq/relay/pkg/telemetry/logging"
	"mercator-hq/relay/pkg/telemetry/metrics"
	"mercator-hq/relay/pkg/telemetry/tracing"
	"mercator-hq/relay/pkg/upstream"
)

const tracerShutdownTimeout = 5 * time.Second

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the relay server",
	Long: `Start the relay server with the specified configuration.

The server listens on the configured address, materializes the query string
of every request under the route prefix and POSTs the document upstream.
SIGINT or SIGTERM drains in-flight requests and flushes the journal.

Examples:
  # Start with defaults
  relay run

  # Start with custom config
  relay run --config /etc/relay/relay.yaml

  # Override listen address
  relay run --listen 0.0.0.0:2001

  # Validate config without starting server
  relay run --dry-run`,
	Args: cobra.NoArgs,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if runFlags.listenAddress != "" {
		cfg.Proxy.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if err := config.Validate(cfg); err != nil {
		return cli.NewConfigError(cfgFile, err)
	}

	grammar, err := materialize.ParseGrammar(cfg.Relay.PathGrammar)
	if err != nil {
		return cli.NewConfigError(cfgFile, err)
	}

	logger, err := logging.New(logging.Config{
		Level:         cfg.Telemetry.Logging.Level,
		Format:        cfg.Telemetry.Logging.Format,
		AddSource:     cfg.Telemetry.Logging.AddSource,
		RedactSecrets: cfg.Telemetry.Logging.RedactSecrets,
	})
	if err != nil {
		return cli.NewConfigError(cfgFile, err)
	}
	slog.SetDefault(logger.Slog())

	out := cmd.OutOrStdout()
	if runFlags.dryRun {
		fmt.Fprintln(out, "configuration valid")
		return nil
	}

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	if err := resolveCredentials(ctx, cfg); err != nil {
		return cli.NewConfigError(cfgFile, err)
	}
	authValidator := newAuthValidator(&cfg.Security.Auth)
	if n := authValidator.Len(); n > 0 {
		slog.Info("relay route requires an API key", "keys", n)
	}

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)

	client, err := upstream.New(upstream.Config{
		BaseURL:             cfg.Upstream.BaseURL,
		Username:            cfg.Upstream.Username,
		Password:            cfg.Upstream.Password,
		Timeout:             cfg.Upstream.Timeout,
		MaxIdleConns:        cfg.Upstream.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.Upstream.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.Upstream.IdleConnTimeout,
	})
	if err != nil {
		return cli.NewConfigError(cfgFile, err)
	}
	defer client.Close()

	tracer, err := tracing.New(&cfg.Telemetry.Tracing, tracing.WithServiceVersion(Version))
	if err != nil {
		return cli.NewConfigError(cfgFile, err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), tracerShutdownTimeout)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			slog.Warn("failed to flush traces", "error", err)
		}
	}()
	if tracer.Enabled() {
		slog.Info("tracing enabled",
			"endpoint", cfg.Telemetry.Tracing.Endpoint,
			"sampler", cfg.Telemetry.Tracing.Sampler,
		)
	}

	deps := server.Dependencies{
		Relay: proxy.NewRelay(client,
			proxy.WithMaxResponseBytes(cfg.Relay.MaxResponseBytes),
			proxy.WithMetrics(collector),
			proxy.WithTracer(tracer),
		),
		Grammar: grammar,
		Metrics: collector,
		Tracer:  tracer,
		Auth:    authValidator,
	}

	if cfg.Journal.Enabled {
		slog.Info("initializing journal", "backend", cfg.Journal.Backend)

		store, err := storage.NewStorage(&cfg.Journal)
		if err != nil {
			return cli.NewCommandError("run", fmt.Errorf("failed to open journal: %w", err))
		}
		defer store.Close()

		rec := recorder.NewRecorder(store, &recorder.Config{
			AsyncBuffer:  cfg.Journal.AsyncBuffer,
			WriteTimeout: cfg.Journal.WriteTimeout,
		}, collector)
		// Deferred after the store so pending records flush before it closes.
		defer rec.Close()

		deps.Recorder = rec
		deps.Journal = store

		retentionCfg := &retention.Config{
			MaxAge:        cfg.Journal.Retention.MaxAge,
			MaxRecords:    cfg.Journal.Retention.MaxRecords,
			PruneSchedule: cfg.Journal.Retention.PruneSchedule,
		}
		if retentionCfg.MaxAge > 0 || retentionCfg.MaxRecords > 0 {
			scheduler := retention.NewScheduler(retention.NewPruner(store, retentionCfg, collector))
			if err := scheduler.Start(ctx); err != nil {
				slog.Warn("failed to start retention scheduler", "error", err)
			} else {
				defer scheduler.Stop()
				if next := scheduler.NextRun(); next != nil {
					slog.Debug("journal retention scheduled", "next_run", next)
				}
			}
		}
	}

	if cfgFile != "" {
		if watcher := startConfigWatcher(ctx, logger); watcher != nil {
			defer watcher.Stop()
		}
	}

	printBanner(out, cfg)

	srv := server.NewServer(cfg, deps)
	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Fprintln(out, "relay stopped")
	return nil
}

// startConfigWatcher reloads the configuration file on change and applies
// the new log level. Every other setting needs a restart.
func startConfigWatcher(ctx context.Context, logger *logging.Logger) *config.Watcher {
	watcher, err := config.NewWatcher(cfgFile, 0, logger.Slog())
	if err != nil {
		slog.Warn("config hot reload disabled", "error", err)
		return nil
	}

	go func() {
		err := watcher.Watch(ctx, func(next *config.Config) {
			level := next.Telemetry.Logging.Level
			if runFlags.logLevel != "" {
				level = runFlags.logLevel
			}
			if err := logger.SetLevel(level); err != nil {
				slog.Warn("ignoring reloaded log level", "level", level, "error", err)
				return
			}
			slog.Info("configuration reloaded", "log_level", level)
		})
		if err != nil {
			slog.Warn("config watcher stopped", "error", err)
		}
	}()
	return watcher
}

func printBanner(w io.Writer, cfg *config.Config) {
	scheme := "http"
	if cfg.Security.TLS.Enabled {
		scheme = "https"
	}
	fmt.Fprintf(w, "relay %s\n", Version)
	fmt.Fprintf(w, "listening on %s://%s%s -> %s (%s grammar)\n",
		scheme, cfg.Proxy.ListenAddress, cfg.Proxy.RoutePrefix, cfg.Upstream.BaseURL, cfg.Relay.PathGrammar)
	fmt.Fprintf(w, "health: %s://%s/health\n", scheme, cfg.Proxy.ListenAddress)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Fprintf(w, "metrics: %s://%s%s\n", scheme, cfg.Proxy.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
}
