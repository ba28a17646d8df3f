package health

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// DefaultCheckTimeout bounds a single check when New is given zero.
const DefaultCheckTimeout = 2 * time.Second

// ErrCheckTimeout is reported when a check does not return in time.
var ErrCheckTimeout = errors.New("health check timeout")

// CheckFunc is a function that performs a health check for a component.
// It returns nil if the component is healthy, or an error describing the problem.
type CheckFunc func(ctx context.Context) error

// Pinger is implemented by components with a liveness probe, such as
// journal storage.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingCheck adapts a Pinger to a CheckFunc.
func PingCheck(p Pinger) CheckFunc {
	return p.Ping
}

// Result is the outcome of one check.
type Result struct {
	// Err is nil when the component is healthy.
	Err error

	// Duration is how long the check took.
	Duration time.Duration
}

// Report aggregates the results of every registered check.
type Report struct {
	Results map[string]Result
}

// Ready reports whether every check passed. A report without checks is
// ready.
func (r Report) Ready() bool {
	for _, res := range r.Results {
		if res.Err != nil {
			return false
		}
	}
	return true
}

// Names returns the check names in sorted order.
func (r Report) Names() []string {
	names := make([]string, 0, len(r.Results))
	for name := range r.Results {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Checker runs named readiness checks concurrently.
type Checker struct {
	mu     sync.RWMutex
	checks map[string]CheckFunc

	checkTimeout time.Duration
}

// New creates a checker with the given per-check timeout.
func New(checkTimeout time.Duration) *Checker {
	if checkTimeout <= 0 {
		checkTimeout = DefaultCheckTimeout
	}

	return &Checker{
		checks:       make(map[string]CheckFunc),
		checkTimeout: checkTimeout,
	}
}

// Register adds or replaces the check for name.
func (c *Checker) Register(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.checks[name] = check
}

// Len returns the number of registered checks.
func (c *Checker) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.checks)
}

// Check runs every registered check and waits for all of them.
func (c *Checker) Check(ctx context.Context) Report {
	c.mu.RLock()
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, check := range c.checks {
		checks[name] = check
	}
	c.mu.RUnlock()

	report := Report{Results: make(map[string]Result, len(checks))}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for name, check := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result := c.run(ctx, check)

			mu.Lock()
			report.Results[name] = result
			mu.Unlock()
		}()
	}
	wg.Wait()

	return report
}

// run executes one check, giving up after the check timeout even if the
// check ignores its context.
func (c *Checker) run(ctx context.Context, check CheckFunc) Result {
	checkCtx, cancel := context.WithTimeout(ctx, c.checkTimeout)
	defer cancel()

	start := time.Now()
	errChan := make(chan error, 1)
	go func() {
		errChan <- check(checkCtx)
	}()

	select {
	case err := <-errChan:
		return Result{Err: err, Duration: time.Since(start)}
	case <-checkCtx.Done():
		err := ErrCheckTimeout
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return Result{Err: err, Duration: time.Since(start)}
	}
}
