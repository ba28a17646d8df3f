package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"mercator-hq/relay/pkg/config"
	"mercator-hq/relay/pkg/materialize"
	"mercator-hq/relay/pkg/proxy"
	"mercator-hq/relay/pkg/proxy/handlers"
	"mercator-hq/relay/pkg/proxy/middleware"
	"mercator-hq/relay/pkg/security/auth"
	relaytls "mercator-hq/relay/pkg/security/tls"
	"mercator-hq/relay/pkg/telemetry/health"
	"mercator-hq/relay/pkg/telemetry/metrics"
	"mercator-hq/relay/pkg/telemetry/tracing"
)

// readyCheckTimeout bounds each readiness check.
const readyCheckTimeout = 2 * time.Second

// Dependencies are the components the server routes requests to.
type Dependencies struct {
	// Relay forwards materialized documents upstream. Required.
	Relay handlers.Relayer

	// Grammar selects how query keys are interpreted.
	Grammar materialize.Grammar

	// Recorder journals exchanges. Nil disables journaling.
	Recorder handlers.Recorder

	// Journal backs the readiness probe. Nil when the journal is disabled.
	Journal health.Pinger

	// Metrics records relay metrics and serves the scrape endpoint when
	// metrics are enabled. May be nil.
	Metrics *metrics.Collector

	// Tracer opens a server span per relay request. Nil disables tracing.
	Tracer *tracing.Tracer

	// Auth guards the relay route. Nil or empty leaves it open.
	Auth *auth.APIKeyValidator
}

// Server is the inbound HTTP server for the relay.
type Server struct {
	config         *config.ProxyConfig
	securityConfig *config.SecurityConfig
	metricsConfig  *config.MetricsConfig
	deps           Dependencies

	httpServer   *http.Server
	listener     net.Listener
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates a new relay server from the proxy, security and metrics
// sections of cfg.
func NewServer(cfg *config.Config, deps Dependencies) *Server {
	return &Server{
		config:         &cfg.Proxy,
		securityConfig: &cfg.Security,
		metricsConfig:  &cfg.Telemetry.Metrics,
		deps:           deps,
		shutdownChan:   make(chan struct{}),
	}
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	// Background work tied to this run, such as certificate reloading.
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}

	if s.deps.Relay == nil {
		s.mu.Unlock()
		return fmt.Errorf("server requires a relay")
	}

	var tlsConfig *tls.Config
	if s.securityConfig.TLS.Enabled {
		var err error
		tlsConfig, err = s.configureTLS(runCtx)
		if err != nil {
			s.mu.Unlock()
			return fmt.Errorf("failed to configure TLS: %w", err)
		}
	}

	ln, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddress, err)
	}

	s.listener = ln
	s.httpServer = &http.Server{
		Handler:        s.setupRoutes(),
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
		TLSConfig:      tlsConfig,
	}
	s.isRunning = true
	httpServer := s.httpServer
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting relay server",
			"address", ln.Addr().String(),
			"route_prefix", s.config.RoutePrefix,
			"tls_enabled", tlsConfig != nil,
		)

		var err error
		if tlsConfig != nil {
			err = httpServer.ServeTLS(ln, "", "")
		} else {
			err = httpServer.Serve(ln)
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	case <-s.shutdownChan:
		slog.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Stop asks a running Start to shut down and return.
func (s *Server) Stop() {
	select {
	case <-s.shutdownChan:
	default:
		close(s.shutdownChan)
	}
}

// Shutdown gracefully shuts down the server, waiting up to the configured
// shutdown timeout for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		httpServer := s.httpServer
		s.mu.Unlock()

		slog.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx := ctx
		if s.config.ShutdownTimeout > 0 {
			var cancel context.CancelFunc
			shutdownCtx, cancel = context.WithTimeout(ctx, s.config.ShutdownTimeout)
			defer cancel()
		}

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("relay server stopped")
	})

	return shutdownErr
}

// setupRoutes configures HTTP routes and the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	relayHandler := handlers.NewRelayHandler(s.deps.Relay, s.deps.Grammar, s.deps.Recorder, s.deps.Metrics)
	limiter := middleware.NewLimiter(s.config.RateLimit.RequestsPerSecond, s.config.RateLimit.Burst)

	inFlight := middleware.NewConcurrencyLimiter(s.config.RateLimit.MaxConcurrent)

	var relayRoute http.Handler = relayHandler
	relayRoute = middleware.ConcurrencyMiddleware(inFlight)(relayRoute)
	relayRoute = middleware.RateLimitMiddleware(limiter)(relayRoute)
	relayRoute = auth.Middleware(s.deps.Auth)(relayRoute)
	relayRoute = middleware.TracingMiddleware(s.deps.Tracer)(relayRoute)

	mux.Handle(s.relayPattern(), relayRoute)
	mux.Handle("/health", handlers.NewHealthHandler())
	mux.Handle("/ready", handlers.NewReadyHandler(s.readiness()))

	if s.deps.Metrics != nil && s.metricsConfig.Enabled && s.metricsConfig.Path != "" {
		mux.Handle(s.metricsConfig.Path, s.deps.Metrics.Handler())
	}

	var handler http.Handler = mux

	// Logging sits inside recovery so a panicking request is still logged
	// with the 500 that recovery writes.
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.RecoveryMiddleware(handler)

	// Request ID middleware (outermost)
	handler = middleware.RequestIDMiddleware(handler)

	return handler
}

// readiness registers a check per dependency that can fail at runtime.
func (s *Server) readiness() *health.Checker {
	checker := health.New(readyCheckTimeout)
	if s.deps.Journal != nil {
		checker.Register("journal", health.PingCheck(s.deps.Journal))
	}
	return checker
}

// relayPattern mounts the relay under the route prefix with the remainder
// of the path captured as the target.
func (s *Server) relayPattern() string {
	prefix := s.config.RoutePrefix
	if prefix == "" {
		prefix = "/"
	}
	if prefix[len(prefix)-1] != '/' {
		prefix += "/"
	}
	return prefix + "{" + proxy.TargetPathValue + "...}"
}

// configureTLS loads the key pair and keeps it fresh until ctx is done.
func (s *Server) configureTLS(ctx context.Context) (*tls.Config, error) {
	tlsCfg := s.securityConfig.TLS
	reloader := relaytls.NewCertificateReloader(tlsCfg.CertFile, tlsCfg.KeyFile, tlsCfg.ReloadInterval)
	if err := reloader.Start(ctx); err != nil {
		return nil, err
	}
	return reloader.ServerConfig(), nil
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Addr returns the bound listener address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Handler returns the configured HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// Health reports an error when the server is not serving or the journal
// does not respond.
func (s *Server) Health(ctx context.Context) error {
	s.mu.RLock()
	running := s.isRunning
	s.mu.RUnlock()

	if !running {
		return fmt.Errorf("server is not running")
	}

	report := s.readiness().Check(ctx)
	for _, name := range report.Names() {
		if err := report.Results[name].Err; err != nil {
			return fmt.Errorf("%s unavailable: %w", name, err)
		}
	}

	return nil
}
