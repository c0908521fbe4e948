// Package health aggregates component checks and serves them over HTTP.
//
// A Checker reports a Result with one of three statuses: Healthy, Degraded or
// Unhealthy. Checkers are registered with an Aggregator together with a
// Registration that controls how the result is reported:
//
//	agg := health.NewAggregator(health.AggregatorConfig{Timeout: 5 * time.Second})
//	agg.Register(health.Registration{
//	    Name:          "orders",
//	    FailureStatus: health.StatusDegraded,
//	    Tags:          []string{"ready"},
//	}, ordersChecker)
//
//	results := agg.CheckAll(ctx)
//	overall := agg.OverallStatus(results)
//
// FailureStatus lets a failing non-critical dependency report Degraded
// instead of Unhealthy. Checkers themselves stay binary and the aggregator
// applies the mapping, including to checks that time out.
//
// # HTTP Endpoints
//
// RegisterHandlers mounts the standard endpoints on a chi router:
//
//	r := chi.NewRouter()
//	health.RegisterHandlers(r, agg, health.HandlerConfig{ReadyTags: []string{"ready"}})
//
//	GET /healthz         liveness, never runs checks
//	GET /readyz          OK, DEGRADED or UNHEALTHY (503)
//	GET /health          JSON report of every check
//	GET /health/{name}   JSON report of a single check
package health
