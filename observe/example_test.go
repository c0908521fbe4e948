package observe_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonwraymond/busprobe/observe"
)

func ExampleNewObserver() {
	cfg := observe.Config{
		ServiceName: "busprobe",
		Version:     "1.0.0",
		Tracing:     observe.TracingConfig{Enabled: true, Exporter: "none"},
		Metrics:     observe.MetricsConfig{Enabled: false},
		Logging:     observe.LoggingConfig{Enabled: true, Level: "info"},
	}

	ctx := context.Background()
	obs, err := observe.NewObserver(ctx, cfg)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	defer func() {
		_ = obs.Shutdown(ctx)
	}()

	fmt.Println("Observer created successfully")
	// Output:
	// Observer created successfully
}

func ExampleConfig_Validate() {
	cfg := observe.Config{
		ServiceName: "busprobe",
		Metrics:     observe.MetricsConfig{Enabled: true, Exporter: "graphite"},
	}

	err := cfg.Validate()
	fmt.Println(errors.Is(err, observe.ErrInvalidMetricsExporter))
	// Output:
	// true
}

func ExampleProbeMeta_SpanName() {
	meta := observe.ProbeMeta{Kind: "topic", Resource: "events", Mode: "sendbatch"}
	fmt.Println(meta.SpanName())
	// Output:
	// probe.topic.sendbatch
}

func ExampleLogger_WithProbe() {
	var buf bytes.Buffer
	logger := observe.NewLoggerWithWriter("info", &buf)

	logger.WithProbe(observe.ProbeMeta{Kind: "queue", Resource: "orders", Mode: "peek"}).
		Info(context.Background(), "probe healthy",
			observe.Field{Key: "connection_string", Value: "Endpoint=sb://x/;SharedAccessKey=abc"})

	out := buf.String()
	fmt.Println("probe.resource:", strings.Contains(out, `"probe.resource":"orders"`))
	fmt.Println("key leaked:", strings.Contains(out, "SharedAccessKey"))
	// Output:
	// probe.resource: true
	// key leaked: false
}

func ExampleMiddleware_Wrap() {
	mw := observe.NopMiddleware()

	probe := mw.Wrap(func(ctx context.Context, meta observe.ProbeMeta) error {
		return fmt.Errorf("%s %q: not found", meta.Kind, meta.Resource)
	})

	err := probe(context.Background(), observe.ProbeMeta{Kind: "queue", Resource: "orders", Mode: "peek"})
	fmt.Println(err)
	// Output:
	// queue "orders": not found
}

func ExampleParseLogLevel() {
	for _, s := range []string{"debug", "warn", "unknown"} {
		fmt.Printf("%s -> %s\n", s, observe.ParseLogLevel(s))
	}
	// Output:
	// debug -> debug
	// warn -> warn
	// unknown -> info
}
