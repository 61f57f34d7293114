package instrumentation

import (
	"os"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/cast"
)

// Exporter names accepted by METRICS_EXPORTER and TRACING_EXPORTER.
const (
	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"
)

// Metric label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"

	// Box managers
	ServiceTasks       = "tasks"
	ServiceCollections = "collections"
)

// Config selects the exporters and resource attributes of the telemetry
// pipeline. When Enabled is false no exporter is created, but audit logging
// still follows Audit.
type Config struct {
	Enabled bool
	Service ServiceConfig
	Metrics MetricsConfig
	Tracing TracingConfig
	OTLP    OTLPConfig
	Audit   AuditConfig
}

// ServiceConfig describes this process in the OpenTelemetry resource.
type ServiceConfig struct {
	Name       string
	Version    string
	InstanceID string // hostname when empty

	// Kubernetes placement, usually injected through the downward API.
	K8sNamespace string
	K8sPod       string
}

// MetricsConfig configures metric export.
type MetricsConfig struct {
	Exporter string `json:"exporter"`

	// DetailedLabels adds the account name to tool metrics. Every configured
	// account becomes a label value, so keep it off for large setups.
	DetailedLabels bool `json:"detailed_labels"`
}

// TracingConfig configures span export.
type TracingConfig struct {
	Exporter     string  `json:"exporter"`
	SamplingRate float64 `json:"sampling_rate"`
}

// OTLPConfig is shared by the OTLP metric and trace exporters.
type OTLPConfig struct {
	Endpoint string // host:port, no scheme
	Insecure bool
}

// AuditConfig controls the tool audit log.
type AuditConfig struct {
	Enabled bool

	// IncludePII logs the Box login a tool acted on. Otherwise only a hash
	// of it and its domain are logged.
	IncludePII bool
}

// DefaultConfig returns the configuration described by the environment.
func DefaultConfig() Config {
	return Config{
		Enabled: envBool("INSTRUMENTATION_ENABLED", true),
		Service: ServiceConfig{
			Name:         envString("OTEL_SERVICE_NAME", "boxmcp"),
			Version:      "unknown",
			InstanceID:   os.Getenv("OTEL_SERVICE_INSTANCE_ID"),
			K8sNamespace: envString("K8S_NAMESPACE", os.Getenv("POD_NAMESPACE")),
			K8sPod:       envString("K8S_POD_NAME", os.Getenv("HOSTNAME")),
		},
		Metrics: MetricsConfig{
			Exporter:       envString("METRICS_EXPORTER", ExporterPrometheus),
			DetailedLabels: envBool("METRICS_DETAILED_LABELS", false),
		},
		Tracing: TracingConfig{
			Exporter:     envString("TRACING_EXPORTER", ExporterNone),
			SamplingRate: envFloat("OTEL_TRACES_SAMPLER_ARG", 0.1),
		},
		OTLP: OTLPConfig{
			Endpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
			Insecure: envBool("OTEL_EXPORTER_OTLP_INSECURE", false),
		},
		Audit: AuditConfig{
			Enabled:    envBool("AUDIT_LOGGING_ENABLED", true),
			IncludePII: envBool("AUDIT_LOGGING_INCLUDE_PII", false),
		},
	}
}

// Validate checks exporter names, the sampling rate and that an OTLP
// endpoint is set whenever an OTLP exporter is selected.
func (c Config) Validate() error {
	needsOTLP := c.Metrics.Exporter == ExporterOTLP || c.Tracing.Exporter == ExporterOTLP

	return validation.Errors{
		"metrics": c.Metrics.Validate(),
		"tracing": c.Tracing.Validate(),
		"otlp": validation.Validate(c.OTLP.Endpoint,
			validation.When(needsOTLP, validation.Required.Error("endpoint is required by the otlp exporter"))),
	}.Filter()
}

// Validate implements validation.Validatable.
func (c MetricsConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Exporter, validation.Required,
			validation.In(ExporterPrometheus, ExporterOTLP, ExporterStdout)),
	)
}

// Validate implements validation.Validatable.
func (c TracingConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Exporter, validation.Required,
			validation.In(ExporterOTLP, ExporterStdout, ExporterNone)),
		validation.Field(&c.SamplingRate, validation.Min(0.0), validation.Max(1.0)),
	)
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envBool and envFloat ignore unparsable values.
func envBool(key string, fallback bool) bool {
	b, err := cast.ToBoolE(os.Getenv(key))
	if os.Getenv(key) == "" || err != nil {
		return fallback
	}
	return b
}

func envFloat(key string, fallback float64) float64 {
	f, err := cast.ToFloat64E(os.Getenv(key))
	if os.Getenv(key) == "" || err != nil {
		return fallback
	}
	return f
}
