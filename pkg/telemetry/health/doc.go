// Package health runs the readiness checks behind the /ready endpoint.
//
// Components register a named check; Check runs them concurrently, each
// bounded by the checker's timeout, and the report is ready only when every
// check passed.
//
//	checker := health.New(2 * time.Second)
//	checker.Register("journal", health.PingCheck(store))
//
//	report := checker.Check(ctx)
//	if !report.Ready() {
//	    for _, name := range report.Names() {
//	        slog.Warn("check failed", "check", name, "error", report.Results[name].Err)
//	    }
//	}
package health
