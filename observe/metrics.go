package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records probe and handle construction metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordProbe records one probe with its duration and outcome.
	RecordProbe(ctx context.Context, meta ProbeMeta, duration time.Duration, err error)

	// RecordBuild records one cached handle construction. handle names the
	// handle type (client, receiver, sender, admin).
	RecordBuild(ctx context.Context, handle string, duration time.Duration, err error)
}

type metricsImpl struct {
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
	buildCount   metric.Int64Counter
	buildHist    metric.Float64Histogram
}

// NewMetrics creates the probe instruments on the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	totalCount, err := meter.Int64Counter(
		"probe.total",
		metric.WithDescription("Total number of namespace probes"),
		metric.WithUnit("{probe}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"probe.errors",
		metric.WithDescription("Total number of unhealthy probe verdicts"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"probe.duration_ms",
		metric.WithDescription("Probe duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	buildCount, err := meter.Int64Counter(
		"cache.builds",
		metric.WithDescription("Total number of cached handle constructions"),
		metric.WithUnit("{build}"),
	)
	if err != nil {
		return nil, err
	}

	buildHist, err := meter.Float64Histogram(
		"cache.build_duration_ms",
		metric.WithDescription("Handle construction duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		totalCount:   totalCount,
		errorCount:   errorCount,
		durationHist: durationHist,
		buildCount:   buildCount,
		buildHist:    buildHist,
	}, nil
}

func (m *metricsImpl) RecordProbe(ctx context.Context, meta ProbeMeta, duration time.Duration, err error) {
	opt := metric.WithAttributes(
		attribute.String("probe.kind", meta.Kind),
		attribute.String("probe.resource", meta.Resource),
		attribute.String("probe.mode", meta.Mode),
	)

	m.totalCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

func (m *metricsImpl) RecordBuild(ctx context.Context, handle string, duration time.Duration, err error) {
	opt := metric.WithAttributes(
		attribute.String("cache.handle", handle),
		attribute.Bool("cache.error", err != nil),
	)
	m.buildCount.Add(ctx, 1, opt)
	m.buildHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

type noopMetrics struct{}

// NewNoopMetrics returns Metrics that record nothing.
func NewNoopMetrics() Metrics { return noopMetrics{} }

func (noopMetrics) RecordProbe(context.Context, ProbeMeta, time.Duration, error) {}
func (noopMetrics) RecordBuild(context.Context, string, time.Duration, error)    {}
