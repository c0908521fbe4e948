package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// AggregatorConfig configures the health aggregator.
type AggregatorConfig struct {
	// Timeout is the maximum time to wait for all checks.
	// Default: 10 seconds
	Timeout time.Duration

	// MaxConcurrent limits how many checks run at once.
	// Default: 0 (unlimited)
	MaxConcurrent int
}

type entry struct {
	reg     Registration
	checker Checker
}

// Aggregator combines multiple health checkers into a single composite check.
type Aggregator struct {
	config  AggregatorConfig
	mu      sync.RWMutex
	entries map[string]entry
	order   []string
}

// NewAggregator creates a new health aggregator.
func NewAggregator(config ...AggregatorConfig) *Aggregator {
	cfg := AggregatorConfig{Timeout: 10 * time.Second}
	if len(config) > 0 {
		cfg = config[0]
		if cfg.Timeout <= 0 {
			cfg.Timeout = 10 * time.Second
		}
	}

	return &Aggregator{
		config:  cfg,
		entries: make(map[string]entry),
	}
}

// Register adds a health checker to the aggregator. An empty reg.Name falls
// back to checker.Name(). Registering an existing name replaces it in place.
func (a *Aggregator) Register(reg Registration, checker Checker) {
	if checker == nil {
		return
	}
	if reg.Name == "" {
		reg.Name = checker.Name()
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.entries[reg.Name]; !exists {
		a.order = append(a.order, reg.Name)
	}
	a.entries[reg.Name] = entry{reg: reg, checker: checker}
}

// Unregister removes a health checker from the aggregator.
func (a *Aggregator) Unregister(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.entries[name]; !ok {
		return
	}
	delete(a.entries, name)
	for i, n := range a.order {
		if n == name {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
}

// CheckerNames returns the names of all registered checkers in registration order.
func (a *Aggregator) CheckerNames() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	names := make([]string, len(a.order))
	copy(names, a.order)
	return names
}

// Check runs a single named health check.
func (a *Aggregator) Check(ctx context.Context, name string) (Result, error) {
	a.mu.RLock()
	e, ok := a.entries[name]
	a.mu.RUnlock()

	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrCheckerNotFound, name)
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()
	return a.runCheck(ctx, e), nil
}

// CheckAll runs all registered health checks and returns the results keyed by name.
func (a *Aggregator) CheckAll(ctx context.Context) map[string]Result {
	return a.checkMatching(ctx, func(Registration) bool { return true })
}

// CheckTagged runs the checks carrying at least one of tags. With no tags it
// behaves like CheckAll.
func (a *Aggregator) CheckTagged(ctx context.Context, tags ...string) map[string]Result {
	if len(tags) == 0 {
		return a.CheckAll(ctx)
	}
	return a.checkMatching(ctx, func(reg Registration) bool {
		for _, tag := range tags {
			if reg.HasTag(tag) {
				return true
			}
		}
		return false
	})
}

func (a *Aggregator) checkMatching(ctx context.Context, match func(Registration) bool) map[string]Result {
	a.mu.RLock()
	entries := make([]entry, 0, len(a.order))
	for _, name := range a.order {
		if e := a.entries[name]; match(e.reg) {
			entries = append(entries, e)
		}
	}
	a.mu.RUnlock()

	results := make(map[string]Result, len(entries))
	if len(entries) == 0 {
		return results
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	var (
		g  errgroup.Group
		mu sync.Mutex
	)
	if a.config.MaxConcurrent > 0 {
		g.SetLimit(a.config.MaxConcurrent)
	}
	for _, e := range entries {
		g.Go(func() error {
			result := a.runCheck(ctx, e)
			mu.Lock()
			results[e.reg.Name] = result
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// OverallStatus computes the overall health status from a set of results.
// Returns Unhealthy if any check is unhealthy.
// Returns Degraded if any check is degraded but none are unhealthy.
// Returns Healthy if all checks are healthy.
func (a *Aggregator) OverallStatus(results map[string]Result) Status {
	status := StatusHealthy
	for _, result := range results {
		if result.Status > status {
			status = result.Status
		}
	}
	return status
}

func (a *Aggregator) runCheck(ctx context.Context, e entry) Result {
	start := time.Now()
	if e.reg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.reg.Timeout)
		defer cancel()
	}

	resultCh := make(chan Result, 1)
	go func() {
		result := e.checker.Check(ctx)
		if result.Duration == 0 {
			result.Duration = time.Since(start)
		}
		if result.Timestamp.IsZero() {
			result.Timestamp = start
		}
		resultCh <- result
	}()

	var result Result
	select {
	case result = <-resultCh:
	case <-ctx.Done():
		result = Result{
			Status:    StatusUnhealthy,
			Message:   "check timed out",
			Error:     fmt.Errorf("%w: %w", ErrCheckTimeout, ctx.Err()),
			Duration:  time.Since(start),
			Timestamp: start,
		}
	}

	if result.Status == StatusUnhealthy {
		result.Status = e.reg.failureStatus()
	}
	return result
}

// Checker returns a single Checker interface for the aggregator.
// This allows the aggregator to be used as a checker itself.
func (a *Aggregator) Checker() Checker {
	return &aggregatorChecker{agg: a}
}

type aggregatorChecker struct {
	agg *Aggregator
}

func (c *aggregatorChecker) Name() string {
	return "aggregate"
}

func (c *aggregatorChecker) Check(ctx context.Context) Result {
	results := c.agg.CheckAll(ctx)
	status := c.agg.OverallStatus(results)

	details := make(map[string]any, len(results))
	for name, result := range results {
		details[name] = map[string]any{
			"status":   result.Status.String(),
			"message":  result.Message,
			"duration": result.Duration.String(),
		}
	}

	var message string
	switch status {
	case StatusHealthy:
		message = "all checks passed"
	case StatusDegraded:
		message = "some checks degraded"
	default:
		message = "some checks failed"
	}

	return Result{
		Status:    status,
		Message:   message,
		Details:   details,
		Timestamp: time.Now(),
	}
}
