package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// ProbeMeta describes one probe for telemetry purposes.
//
// None of its fields may carry secrets: Namespace is the host name only and
// never a connection string.
type ProbeMeta struct {
	Check     string // registered health check name (optional)
	Kind      string // queue|topic
	Resource  string // queue or topic name
	Mode      string // peek|sendbatch|management
	Namespace string // fully qualified namespace host (optional)
}

// SpanName returns the deterministic span name for this probe.
// Format: probe.<kind>.<mode>
func (m ProbeMeta) SpanName() string {
	return "probe." + m.Kind + "." + m.Mode
}

func (m ProbeMeta) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("probe.kind", m.Kind),
		attribute.String("probe.resource", m.Resource),
		attribute.String("probe.mode", m.Mode),
	}
	if m.Check != "" {
		attrs = append(attrs, attribute.String("probe.check", m.Check))
	}
	if m.Namespace != "" {
		attrs = append(attrs, attribute.String("messaging.system", "servicebus"),
			attribute.String("server.address", m.Namespace))
	}
	return attrs
}

// Tracer wraps OpenTelemetry tracing with probe-specific span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for one probe.
	StartSpan(ctx context.Context, meta ProbeMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer over the given OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

func (t *tracerImpl) StartSpan(ctx context.Context, meta ProbeMeta) (context.Context, trace.Span) {
	attrs := append(meta.attributes(), attribute.Bool("probe.healthy", false))
	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	} else {
		span.SetAttributes(attribute.Bool("probe.healthy", true))
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

type noopTracer struct {
	noop trace.Tracer
}

// NewNoopTracer creates a Tracer that records nothing.
func NewNoopTracer() Tracer {
	return &noopTracer{noop: tracenoop.NewTracerProvider().Tracer("noop")}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta ProbeMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, err error) {
	span.End()
}
