package observe

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

type recordingMiddleware struct {
	mw     *Middleware
	spans  *tracetest.SpanRecorder
	reader *sdkmetric.ManualReader
	logs   *bytes.Buffer
}

func newRecordingMiddleware(t *testing.T) recordingMiddleware {
	t.Helper()
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))

	metrics, reader := newTestMetrics(t)
	logs := &bytes.Buffer{}
	return recordingMiddleware{
		mw:     NewMiddleware(NewTracer(tp.Tracer("test")), metrics, NewLoggerWithWriter("debug", logs)),
		spans:  spans,
		reader: reader,
		logs:   logs,
	}
}

func TestMiddleware_HealthyPath(t *testing.T) {
	r := newRecordingMiddleware(t)

	probe := r.mw.Wrap(func(ctx context.Context, meta ProbeMeta) error { return nil })
	if err := probe(context.Background(), queuePeek); err != nil {
		t.Fatalf("probe() = %v, want nil", err)
	}

	spans := r.spans.Ended()
	if len(spans) != 1 || spans[0].Name() != "probe.queue.peek" {
		t.Fatalf("spans = %v, want one probe.queue.peek", spans)
	}

	rm := collect(t, r.reader)
	if got := counterValue(t, rm, "probe.total"); got != 1 {
		t.Errorf("probe.total = %d, want 1", got)
	}
	if got := counterValue(t, rm, "probe.errors"); got != 0 {
		t.Errorf("probe.errors = %d, want 0", got)
	}
	if !strings.Contains(r.logs.String(), `"msg":"probe healthy"`) {
		t.Errorf("logs = %s, want probe healthy entry", r.logs.String())
	}
}

func TestMiddleware_UnhealthyPath(t *testing.T) {
	r := newRecordingMiddleware(t)
	probeErr := errors.New("entity not found")

	probe := r.mw.Wrap(func(ctx context.Context, meta ProbeMeta) error { return probeErr })
	if err := probe(context.Background(), queuePeek); err != probeErr {
		t.Fatalf("probe() = %v, want %v unchanged", err, probeErr)
	}

	if got := counterValue(t, collect(t, r.reader), "probe.errors"); got != 1 {
		t.Errorf("probe.errors = %d, want 1", got)
	}
	out := r.logs.String()
	if !strings.Contains(out, `"level":"warn"`) || !strings.Contains(out, "entity not found") {
		t.Errorf("logs = %s, want warn entry with error", out)
	}
}

func TestMiddleware_PropagatesSpanContext(t *testing.T) {
	r := newRecordingMiddleware(t)

	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "v")

	var gotValue any
	var sawSpan bool
	probe := r.mw.Wrap(func(ctx context.Context, meta ProbeMeta) error {
		gotValue = ctx.Value(ctxKey{})
		sawSpan = spanFromContext(ctx)
		return nil
	})
	if err := probe(ctx, queuePeek); err != nil {
		t.Fatalf("probe() = %v", err)
	}
	if gotValue != "v" {
		t.Errorf("ctx value = %v, want v", gotValue)
	}
	if !sawSpan {
		t.Error("wrapped function did not receive the probe span")
	}
}

func TestMiddleware_MeasuresDuration(t *testing.T) {
	r := newRecordingMiddleware(t)

	probe := r.mw.Wrap(func(ctx context.Context, meta ProbeMeta) error {
		time.Sleep(50 * time.Millisecond)
		return nil
	})
	if err := probe(context.Background(), queuePeek); err != nil {
		t.Fatalf("probe() = %v", err)
	}

	hist := histogramSum(t, collect(t, r.reader), "probe.duration_ms")
	if hist < 45 {
		t.Errorf("probe.duration_ms = %v, want >= 45", hist)
	}
}

func TestMiddleware_RecordBuild(t *testing.T) {
	r := newRecordingMiddleware(t)

	r.mw.RecordBuild(context.Background(), "client", time.Millisecond, nil)
	if r.logs.Len() != 0 {
		t.Errorf("successful build logged: %s", r.logs.String())
	}

	r.mw.RecordBuild(context.Background(), "receiver", time.Millisecond, errors.New("amqp: link detached"))
	if !strings.Contains(r.logs.String(), "handle construction failed") {
		t.Errorf("logs = %s, want failed build entry", r.logs.String())
	}
	if got := counterValue(t, collect(t, r.reader), "cache.builds"); got != 2 {
		t.Errorf("cache.builds = %d, want 2", got)
	}
}

func spanFromContext(ctx context.Context) bool {
	return trace.SpanFromContext(ctx).SpanContext().IsValid()
}

func histogramSum(t *testing.T, rm metricdata.ResourceMetrics, name string) float64 {
	t.Helper()
	hist, ok := findMetric(rm, name).Data.(metricdata.Histogram[float64])
	if !ok || len(hist.DataPoints) == 0 {
		t.Fatalf("%s: no histogram data points", name)
	}
	return hist.DataPoints[0].Sum
}
