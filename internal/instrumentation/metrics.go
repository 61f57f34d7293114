package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DefaultMetricInterval is the push interval of the periodic exporters.
const DefaultMetricInterval = 30 * time.Second

var (
	httpBuckets = []float64{0.001, 0.01, 0.1, 0.5, 1, 2.5, 5, 10}
	apiBuckets  = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}
)

// instrumentPair is a counter and a duration histogram that are always
// recorded together with the same attributes.
type instrumentPair struct {
	total    metric.Int64Counter
	duration metric.Float64Histogram
}

func (p instrumentPair) record(ctx context.Context, d time.Duration, attrs ...attribute.KeyValue) {
	if p.total == nil {
		return
	}
	opt := metric.WithAttributes(attrs...)
	p.total.Add(ctx, 1, opt)
	p.duration.Record(ctx, d.Seconds(), opt)
}

// Metrics records the server's metrics. A zero Metrics, and a nil one,
// records nothing.
type Metrics struct {
	http       instrumentPair
	apiRequest instrumentPair
	operation  instrumentPair
	tool       instrumentPair
	apiRetries metric.Int64Counter

	detailedLabels bool
}

// NewMetrics creates every instrument on meter. With detailedLabels the
// tool metrics carry the account name.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{detailedLabels: detailedLabels}

	pairs := []struct {
		dst       *instrumentPair
		counter   string
		histogram string
		unit      string
		desc      string
		buckets   []float64
	}{
		{&m.http, "http_requests_total", "http_request_duration_seconds",
			"{request}", "HTTP requests served", httpBuckets},
		{&m.apiRequest, "box_api_requests_total", "box_api_request_duration_seconds",
			"{request}", "Requests sent to the Box API, retries included in the duration", apiBuckets},
		{&m.operation, "box_api_operations_total", "box_api_operation_duration_seconds",
			"{operation}", "Box manager operations", apiBuckets},
		{&m.tool, "mcp_tool_invocations_total", "mcp_tool_duration_seconds",
			"{invocation}", "MCP tool invocations", apiBuckets},
	}

	for _, p := range pairs {
		total, err := meter.Int64Counter(p.counter,
			metric.WithDescription(p.desc),
			metric.WithUnit(p.unit))
		if err != nil {
			return nil, fmt.Errorf("failed to create %s counter: %w", p.counter, err)
		}
		duration, err := meter.Float64Histogram(p.histogram,
			metric.WithDescription(p.desc+", duration in seconds"),
			metric.WithUnit("s"),
			metric.WithExplicitBucketBoundaries(p.buckets...))
		if err != nil {
			return nil, fmt.Errorf("failed to create %s histogram: %w", p.histogram, err)
		}

		*p.dst = instrumentPair{total: total, duration: duration}
	}

	var err error
	m.apiRetries, err = meter.Int64Counter("box_api_retries_total",
		metric.WithDescription("Retried Box API requests"),
		metric.WithUnit("{retry}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create box_api_retries_total counter: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records one request served by the HTTP transport. path
// must already be reduced to a known route.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.http.record(ctx, duration,
		attribute.String("method", method),
		attribute.String("path", path),
		attribute.String("status", strconv.Itoa(statusCode)))
}

// RecordBoxAPIRequest records one Box API request. statusCode is 0 when no
// response arrived.
func (m *Metrics) RecordBoxAPIRequest(ctx context.Context, method, resource string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.apiRequest.record(ctx, duration,
		attribute.String("method", method),
		attribute.String("resource", resource),
		attribute.String("status", strconv.Itoa(statusCode)))
}

func (m *Metrics) RecordBoxAPIRetry(ctx context.Context, method, resource string) {
	if m == nil || m.apiRetries == nil {
		return
	}
	m.apiRetries.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("resource", resource)))
}

// RecordBoxAPIOperation records a task or collection manager operation.
func (m *Metrics) RecordBoxAPIOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.operation.record(ctx, duration,
		attribute.String("service", service),
		attribute.String("operation", operation),
		attribute.String("status", status))
}

// RecordToolInvocation records an MCP tool call. account is dropped unless
// detailed labels are on.
func (m *Metrics) RecordToolInvocation(ctx context.Context, tool, status, account string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("tool", tool),
		attribute.String("status", status),
	}
	if m.detailedLabels && account != "" {
		attrs = append(attrs, attribute.String("account", account))
	}
	m.tool.record(ctx, duration, attrs...)
}
