package observe

import (
	"context"
	"testing"
	"time"
)

func TestLoggerContract_Noop(t *testing.T) {
	logger := NopLogger()
	if logger.WithProbe(ProbeMeta{Kind: "queue"}) == nil {
		t.Fatal("WithProbe should return non-nil logger")
	}
	if logger.With(Field{Key: "k", Value: "v"}) == nil {
		t.Fatal("With should return non-nil logger")
	}
}

func TestMetricsContract_NoPanic(t *testing.T) {
	metrics := NewNoopMetrics()
	metrics.RecordProbe(context.Background(), ProbeMeta{Kind: "queue"}, 10*time.Millisecond, nil)
	metrics.RecordBuild(context.Background(), "client", time.Millisecond, nil)
}

func TestTracerContract_NoPanic(t *testing.T) {
	tracer := NewNoopTracer()
	_, span := tracer.StartSpan(context.Background(), ProbeMeta{Kind: "topic", Mode: "sendbatch"})
	tracer.EndSpan(span, nil)
}

func TestMiddlewareContract_NilComponents(t *testing.T) {
	mw := NewMiddleware(nil, nil, nil)
	probe := mw.Wrap(func(ctx context.Context, meta ProbeMeta) error { return nil })
	if err := probe(context.Background(), ProbeMeta{}); err != nil {
		t.Fatalf("probe() = %v, want nil", err)
	}
	mw.RecordBuild(context.Background(), "sender", time.Millisecond, nil)
}
