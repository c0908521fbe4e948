// Package observe provides observability primitives for namespace probes.
//
// It is a pure instrumentation library: no probing, no transport, no I/O
// beyond exporter setup. The prober wraps every probe with Middleware, which
// records a span, the probe.* metrics and one structured log line, and reports
// handle constructions through RecordBuild.
package observe
