package observe

import "errors"

// Errors returned by Config.Validate.
var (
	// ErrMissingServiceName indicates Config.ServiceName is empty.
	ErrMissingServiceName = errors.New("observe: service name is required")

	// ErrInvalidSamplePct indicates Tracing.SamplePct is not in [0.0, 1.0].
	ErrInvalidSamplePct = errors.New("observe: sample percentage must be between 0.0 and 1.0")

	// ErrInvalidTracingExporter indicates an unknown tracing exporter name.
	ErrInvalidTracingExporter = errors.New("observe: invalid tracing exporter")

	// ErrInvalidMetricsExporter indicates an unknown metrics exporter name.
	ErrInvalidMetricsExporter = errors.New("observe: invalid metrics exporter")

	// ErrInvalidLogLevel indicates an unknown log level.
	ErrInvalidLogLevel = errors.New("observe: invalid log level")
)

// Accepted exporter and level names. The empty string selects the default.
var ValidTracingExporters = []string{"otlp", "jaeger", "stdout", "none", ""}

var ValidMetricsExporters = []string{"otlp", "prometheus", "stdout", "none", ""}

var ValidLogLevels = []string{"debug", "info", "warn", "error", ""}

// RedactedFields are log field keys whose values are replaced before
// writing. Connection strings and tokens embed shared access keys.
var RedactedFields = []string{
	"password",
	"secret",
	"token",
	"api_key",
	"credential",
	"connection_string",
	"connectionString",
	"shared_access_key",
	"sas",
}
