package instrumentation

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{
		Service: ServiceConfig{Name: "test", Version: "1.0.0"},
		// An invalid exporter is never looked at when disabled.
		Metrics: MetricsConfig{Exporter: "statsd"},
	})
	require.NoError(t, err)

	assert.False(t, provider.Enabled())
	assert.False(t, provider.PrometheusEnabled())
	require.NotNil(t, provider.Metrics())

	// The no-op recorder accepts calls.
	provider.Metrics().RecordToolInvocation(context.Background(), "box_tasks_get", StatusSuccess, "", 0)
	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProvider_Prometheus(t *testing.T) {
	ctx := context.Background()
	provider, err := NewProvider(ctx, Config{
		Enabled: true,
		Service: ServiceConfig{Name: "test", Version: "1.0.0", InstanceID: "test-0"},
		Metrics: MetricsConfig{Exporter: ExporterPrometheus},
		Tracing: TracingConfig{Exporter: ExporterNone},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })

	assert.True(t, provider.Enabled())
	assert.True(t, provider.PrometheusEnabled())
	assert.NotNil(t, provider.Metrics())
}

func TestNewProvider_InvalidConfig(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{
		Enabled: true,
		Metrics: MetricsConfig{Exporter: ExporterPrometheus},
		Tracing: TracingConfig{Exporter: ExporterOTLP},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid instrumentation config")
}

func TestProvider_AuditLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	provider, err := NewProvider(context.Background(), Config{Audit: AuditConfig{Enabled: false}})
	require.NoError(t, err)

	ti := NewToolInvocation(context.Background(), "box_tasks_get")
	ti.Finish(true, nil)
	provider.AuditLogger(logger).LogToolInvocation(ti)

	assert.Empty(t, buf.String(), "disabled audit logging must not write")
}
