// Package resilience bounds how much time and concurrency a probe may use.
//
// Probes are single-shot and nothing here retries; the caller re-runs a
// failed probe on its own schedule.
//
// # Patterns
//
//   - Timeout: ensures a probe completes within a time limit.
//
//   - Bulkhead: limits concurrent probes so a burst of health requests cannot
//     open an unbounded number of round-trips against one namespace.
//
// # Usage
//
//	executor := resilience.NewExecutor(
//	    resilience.WithBulkhead(resilience.NewBulkhead(resilience.BulkheadConfig{
//	        MaxConcurrent: 8,
//	        MaxWait:       time.Second,
//	    })),
//	    resilience.WithTimeout(5*time.Second),
//	)
//
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return sender.CreateMessageBatch(ctx)
//	})
package resilience
