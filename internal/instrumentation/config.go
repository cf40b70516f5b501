package instrumentation

import (
	"fmt"
	"slices"
	"time"

	"github.com/caarlos0/env/v6"
)

// Config is read from the standard OTEL_* variables plus a few of our own.
type Config struct {
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"inboxsort"`

	// ServiceVersion is not read from the environment; the caller sets the
	// build version.
	ServiceVersion string

	// ServiceInstanceID defaults to the hostname when empty.
	ServiceInstanceID string `env:"OTEL_SERVICE_INSTANCE_ID"`

	Enabled bool `env:"INSTRUMENTATION_ENABLED" envDefault:"true"`

	// MetricsExporter is one of prometheus, otlp or stdout.
	MetricsExporter string `env:"METRICS_EXPORTER" envDefault:"prometheus"`

	// TracingExporter is one of otlp, stdout or none.
	TracingExporter string `env:"TRACING_EXPORTER" envDefault:"none"`

	// OTLPEndpoint is host:port of the collector, without a scheme.
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPInsecure bool   `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"false"`

	// TraceSamplingRate is the ratio of root traces kept, in [0, 1].
	TraceSamplingRate float64 `env:"OTEL_TRACES_SAMPLER_ARG" envDefault:"0.1"`

	// DetailedLabels adds the raw category label to classified_records_total.
	// The model can return arbitrary strings, so keep this off in production.
	DetailedLabels bool `env:"METRICS_DETAILED_LABELS" envDefault:"false"`
}

// Label values and exporter names.
const (
	StatusSuccess = "success"
	StatusError   = "error"

	OperationList = "list"
	OperationGet  = "get"

	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"

	DefaultMetricInterval = 10 * time.Second
)

var (
	metricsExporters = []string{ExporterPrometheus, ExporterOTLP, ExporterStdout}
	tracingExporters = []string{ExporterOTLP, ExporterStdout, ExporterNone}
)

// LoadConfig reads the configuration from the environment. ServiceVersion
// is "unknown" until the caller overrides it.
func LoadConfig() (Config, error) {
	var config Config
	if err := env.Parse(&config); err != nil {
		return Config{}, fmt.Errorf("failed to parse instrumentation config: %w", err)
	}
	config.ServiceVersion = "unknown"
	return config, nil
}

// Validate rejects unknown exporters, an out-of-range sampling rate and an
// OTLP exporter without an endpoint. Empty exporter names are allowed.
func (c *Config) Validate() error {
	if c.TraceSamplingRate < 0 || c.TraceSamplingRate > 1 {
		return fmt.Errorf("trace sampling rate must be between 0.0 and 1.0, got %f", c.TraceSamplingRate)
	}
	if c.MetricsExporter != "" && !slices.Contains(metricsExporters, c.MetricsExporter) {
		return fmt.Errorf("invalid metrics exporter %q, must be one of: %v", c.MetricsExporter, metricsExporters)
	}
	if c.TracingExporter != "" && !slices.Contains(tracingExporters, c.TracingExporter) {
		return fmt.Errorf("invalid tracing exporter %q, must be one of: %v", c.TracingExporter, tracingExporters)
	}
	for kind, exporter := range map[string]string{"metrics": c.MetricsExporter, "tracing": c.TracingExporter} {
		if exporter == ExporterOTLP && c.OTLPEndpoint == "" {
			return fmt.Errorf("OTLP endpoint is required when using OTLP %s exporter", kind)
		}
	}
	return nil
}
