package common

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/teemow/boxmcp/internal/instrumentation"
	"github.com/teemow/boxmcp/internal/server"
)

func newServerContext(t *testing.T, opts ...server.ContextOption) *server.ServerContext {
	t.Helper()
	sc, err := server.NewServerContext(context.Background(), nil, opts...)
	if err != nil {
		t.Fatalf("failed to create server context: %v", err)
	}
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func newTestMetrics(t *testing.T) (*instrumentation.Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	metrics, err := instrumentation.NewMetrics(mp.Meter("test"), false)
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}
	return metrics, reader
}

// statusCounts sums the named counter by its status label.
func statusCounts(t *testing.T, reader *sdkmetric.ManualReader, name string) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	counts := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
				status, _ := dp.Attributes.Value("status")
				counts[status.AsString()] += dp.Value
			}
		}
	}
	return counts
}

func callTool(t *testing.T, handler ToolHandler, args map[string]interface{}) (*mcp.CallToolResult, error) {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return handler(context.Background(), req)
}

func TestInstrumentedToolHandler_Success(t *testing.T) {
	sc := newServerContext(t)

	called := false
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		called = true
		return mcp.NewToolResultText("success"), nil
	}

	result, err := callTool(t, InstrumentedToolHandler("test_tool", sc, handler), nil)
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if !called {
		t.Error("expected handler to be called")
	}
	if result == nil {
		t.Error("expected result, got nil")
	}
}

func TestInstrumentedToolHandler_Error(t *testing.T) {
	sc := newServerContext(t)

	expectedErr := errors.New("test error")
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return nil, expectedErr
	}

	_, err := callTool(t, InstrumentedToolHandler("test_tool", sc, handler), nil)
	if err != expectedErr {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
}

func TestInstrumentedToolHandlerWithService_RecordsMetrics(t *testing.T) {
	metrics, reader := newTestMetrics(t)
	sc := newServerContext(t, server.WithMetrics(metrics))

	ok := InstrumentedToolHandlerWithService("box_tasks_get", instrumentation.ServiceTasks, instrumentation.OperationGet, sc,
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("{}"), nil
		})
	failed := InstrumentedToolHandlerWithService("box_tasks_delete", instrumentation.ServiceTasks, instrumentation.OperationDelete, sc,
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultError("Failed to delete task: 404"), nil
		})

	if _, err := callTool(t, ok, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, err := callTool(t, failed, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("expected result.IsError to be true")
	}

	tools := statusCounts(t, reader, "mcp_tool_invocations_total")
	if tools[instrumentation.StatusSuccess] != 1 || tools[instrumentation.StatusError] != 1 {
		t.Errorf("tool invocations by status = %v", tools)
	}
	ops := statusCounts(t, reader, "box_api_operations_total")
	if ops[instrumentation.StatusSuccess] != 1 || ops[instrumentation.StatusError] != 1 {
		t.Errorf("operations by status = %v", ops)
	}
}

func TestInstrumentedToolHandler_AuditLog(t *testing.T) {
	var buf bytes.Buffer
	auditLogger := instrumentation.NewAuditLogger(
		slog.New(slog.NewJSONHandler(&buf, nil)),
		instrumentation.AuditConfig{Enabled: true, IncludePII: true},
	)
	sc := newServerContext(t, server.WithAuditLogger(auditLogger))

	handler := InstrumentedToolHandlerWithService("box_tasks_assign", instrumentation.ServiceTasks, instrumentation.OperationAssign, sc,
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("{}"), nil
		})

	if _, err := callTool(t, handler, map[string]interface{}{
		"account": "work",
		"login":   "jane@example.com",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("audit output is not JSON: %v (%s)", err, buf.String())
	}
	want := map[string]interface{}{
		"msg":       "tool_executed",
		"tool":      "box_tasks_assign",
		"account":   "work",
		"user":      "jane@example.com",
		"service":   instrumentation.ServiceTasks,
		"operation": instrumentation.OperationAssign,
		"status":    instrumentation.StatusSuccess,
		"log_type":  "audit",
	}
	for key, value := range want {
		if entry[key] != value {
			t.Errorf("audit %s = %v, want %v", key, entry[key], value)
		}
	}
}

func TestInstrumentedToolHandler_AuditLogWithoutPII(t *testing.T) {
	var buf bytes.Buffer
	auditLogger := instrumentation.NewAuditLogger(
		slog.New(slog.NewJSONHandler(&buf, nil)),
		instrumentation.AuditConfig{Enabled: true},
	)
	sc := newServerContext(t, server.WithAuditLogger(auditLogger))

	handler := InstrumentedToolHandler("box_tasks_assign", sc,
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultError("Failed to assign task: 403"), nil
		})
	if _, err := callTool(t, handler, map[string]interface{}{"login": "jane@example.com"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if bytes.Contains(buf.Bytes(), []byte("jane@example.com")) {
		t.Errorf("audit log leaks the login: %s", buf.String())
	}
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("audit output is not JSON: %v (%s)", err, buf.String())
	}
	if entry["msg"] != "tool_failed" || entry["level"] != "WARN" {
		t.Errorf("entry = %v, want a tool_failed warning", entry)
	}
	if entry["user_domain"] != "example.com" {
		t.Errorf("user_domain = %v, want example.com", entry["user_domain"])
	}
}
