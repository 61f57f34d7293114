// Package instrumentation wires OpenTelemetry metrics and tracing into
// boxmcp and writes the tool audit log.
//
// Metrics:
//   - http_requests_total, http_request_duration_seconds
//   - box_api_requests_total, box_api_request_duration_seconds, box_api_retries_total
//   - box_api_operations_total, box_api_operation_duration_seconds
//   - mcp_tool_invocations_total, mcp_tool_duration_seconds
//
// Labels never carry object IDs or logins. API paths are reduced with
// APIResource and the account label is opt-in through
// METRICS_DETAILED_LABELS.
//
// Every tool call runs in a "tool.<name>" server span. Outgoing Box API
// requests get client spans from the otelhttp transport in package box.
//
// DefaultConfig reads the environment:
//
//	INSTRUMENTATION_ENABLED       true
//	METRICS_EXPORTER              prometheus | otlp | stdout
//	TRACING_EXPORTER              none | otlp | stdout
//	OTEL_EXPORTER_OTLP_ENDPOINT   host:port
//	OTEL_EXPORTER_OTLP_INSECURE   false
//	OTEL_TRACES_SAMPLER_ARG       0.1
//	OTEL_SERVICE_NAME             boxmcp
//	AUDIT_LOGGING_ENABLED         true
//	AUDIT_LOGGING_INCLUDE_PII     false
package instrumentation
