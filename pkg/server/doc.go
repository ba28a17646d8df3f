// Package server provides the inbound HTTP server for the relay.
//
// The server mounts the relay handler under the configured route prefix,
// adds liveness, readiness and metrics endpoints, and owns the listener
// lifecycle: TLS, OS signals and graceful shutdown.
//
// # Basic Usage
//
//	cfg, err := config.LoadConfigWithEnvOverrides(path)
//
//	srv := server.NewServer(cfg, server.Dependencies{
//	    Relay:    proxy.NewRelay(client),
//	    Grammar:  materialize.GrammarMarker,
//	    Recorder: rec,
//	    Journal:  store,
//	    Metrics:  collector,
//	    Tracer:   tracer,
//	    Auth:     validator,
//	})
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Start blocks until ctx is cancelled, SIGINT or SIGTERM arrives, Stop is
// called, or the listener fails. In-flight requests get up to the
// configured shutdown timeout to finish.
//
// # Routes
//
//	<route_prefix>{target...}  relay (auth, rate and concurrency limits when configured)
//	/health                    liveness, always 200 while serving
//	/ready                     readiness, 503 when the journal does not respond
//	<metrics path>             Prometheus scrape endpoint when metrics are enabled
//
// # Middleware
//
// Every route passes through, from outermost to innermost: request ID
// assignment, panic recovery and access logging. The relay route alone adds,
// outer to inner, the tracing span, API key check, rate limiter and
// concurrency cap, so probes are never throttled, traced or authenticated.
package server
