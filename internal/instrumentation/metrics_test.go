package instrumentation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T, detailedLabels bool) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp.Meter("test"), detailedLabels)
	require.NoError(t, err)
	return m, reader
}

// collect returns every metric by name.
func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	byName := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			byName[m.Name] = m
		}
	}
	return byName
}

// countBy sums a counter by the value of one attribute.
func countBy(t *testing.T, m metricdata.Metrics, key string) map[string]int64 {
	t.Helper()

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is %T, not an int64 sum", m.Name, m.Data)

	counts := map[string]int64{}
	for _, dp := range sum.DataPoints {
		label := ""
		if v, ok := dp.Attributes.Value(attribute.Key(key)); ok {
			label = v.AsString()
		}
		counts[label] += dp.Value
	}
	return counts
}

func TestMetrics_Record(t *testing.T) {
	ctx := context.Background()
	metrics, reader := newTestMetrics(t, false)

	metrics.RecordHTTPRequest(ctx, "GET", "/mcp", 200, 100*time.Millisecond)
	metrics.RecordHTTPRequest(ctx, "POST", "/mcp", 500, 50*time.Millisecond)
	metrics.RecordBoxAPIRequest(ctx, "POST", "tasks", 201, 200*time.Millisecond)
	metrics.RecordBoxAPIRequest(ctx, "POST", "tasks", 201, 100*time.Millisecond)
	metrics.RecordBoxAPIRequest(ctx, "PUT", "folders", 404, 100*time.Millisecond)
	metrics.RecordBoxAPIRetry(ctx, "GET", "collections")
	metrics.RecordBoxAPIOperation(ctx, ServiceTasks, OperationCreate, StatusSuccess, time.Second)
	metrics.RecordBoxAPIOperation(ctx, ServiceCollections, OperationList, StatusError, time.Second)
	metrics.RecordToolInvocation(ctx, "box_tasks_create", StatusSuccess, "", time.Second)

	got := collect(t, reader)

	assert.Equal(t, map[string]int64{"200": 1, "500": 1}, countBy(t, got["http_requests_total"], "status"))
	assert.Equal(t, map[string]int64{"tasks": 2, "folders": 1}, countBy(t, got["box_api_requests_total"], "resource"))
	assert.Equal(t, map[string]int64{"collections": 1}, countBy(t, got["box_api_retries_total"], "resource"))
	assert.Equal(t, map[string]int64{ServiceTasks: 1, ServiceCollections: 1}, countBy(t, got["box_api_operations_total"], "service"))
	assert.Equal(t, map[string]int64{"box_tasks_create": 1}, countBy(t, got["mcp_tool_invocations_total"], "tool"))

	for _, name := range []string{
		"http_request_duration_seconds",
		"box_api_request_duration_seconds",
		"box_api_operation_duration_seconds",
		"mcp_tool_duration_seconds",
	} {
		hist, ok := got[name].Data.(metricdata.Histogram[float64])
		if assert.True(t, ok, "%s is not a float64 histogram", name) {
			assert.NotEmpty(t, hist.DataPoints, name)
		}
	}
}

func TestMetrics_AccountLabel(t *testing.T) {
	for _, detailed := range []bool{false, true} {
		metrics, reader := newTestMetrics(t, detailed)
		metrics.RecordToolInvocation(context.Background(), "box_tasks_get", StatusSuccess, "work", time.Millisecond)

		accounts := countBy(t, collect(t, reader)["mcp_tool_invocations_total"], "account")
		if detailed {
			assert.Equal(t, map[string]int64{"work": 1}, accounts)
		} else {
			assert.Equal(t, map[string]int64{"": 1}, accounts, "account must be dropped without detailed labels")
		}
	}
}

func TestMetrics_NoOp(t *testing.T) {
	ctx := context.Background()

	for _, metrics := range []*Metrics{{}, nil} {
		assert.NotPanics(t, func() {
			metrics.RecordHTTPRequest(ctx, "GET", "/healthz", 200, time.Millisecond)
			metrics.RecordBoxAPIRequest(ctx, "GET", "tasks", 200, time.Millisecond)
			metrics.RecordBoxAPIRetry(ctx, "GET", "tasks")
			metrics.RecordBoxAPIOperation(ctx, ServiceTasks, OperationGet, StatusSuccess, time.Millisecond)
			metrics.RecordToolInvocation(ctx, "box_tasks_get", StatusSuccess, "", time.Millisecond)
		})
	}
}
