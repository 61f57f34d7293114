package instrumentation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestSpanAttributeBuilder(t *testing.T) {
	attrs := NewSpanAttributeBuilder().
		WithAccount("work").
		WithService(ServiceTasks, OperationAssign).
		Build()

	assert.Equal(t, []attribute.KeyValue{
		attribute.String(SpanAttrAccount, "work"),
		attribute.String(SpanAttrService, ServiceTasks),
		attribute.String(SpanAttrOperation, OperationAssign),
	}, attrs)

	assert.Empty(t, NewSpanAttributeBuilder().WithAccount("").WithService("", "").Build())
}

// recordSpans installs an in-memory tracer provider for the test.
func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func TestToolSpan(t *testing.T) {
	tests := []struct {
		name       string
		status     string
		err        error
		wantStatus codes.Code
	}{
		{name: "success", status: StatusSuccess, wantStatus: codes.Ok},
		{name: "error result", status: StatusError, wantStatus: codes.Unset},
		{name: "handler error", status: StatusError, err: errors.New("boom"), wantStatus: codes.Error},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := recordSpans(t)

			ctx, span := StartToolSpan(context.Background(), "box_tasks_get",
				NewSpanAttributeBuilder().WithAccount("work").Build()...)
			assert.True(t, trace.SpanContextFromContext(ctx).IsValid())
			EndToolSpan(span, tt.status, tt.err)

			spans := recorder.Ended()
			require.Len(t, spans, 1)
			got := spans[0]

			assert.Equal(t, "tool.box_tasks_get", got.Name())
			assert.Equal(t, trace.SpanKindServer, got.SpanKind())
			assert.Equal(t, tt.wantStatus, got.Status().Code)
			assert.Contains(t, got.Attributes(), attribute.String(SpanAttrTool, "box_tasks_get"))
			assert.Contains(t, got.Attributes(), attribute.String(SpanAttrAccount, "work"))
			assert.Contains(t, got.Attributes(), attribute.String(SpanAttrStatus, tt.status))
		})
	}
}

func TestAPIResource(t *testing.T) {
	tests := map[string]string{
		"/tasks/1234/assignments": "tasks",
		"/task_assignments/99":    "task_assignments",
		"collections":             "collections",
		"/collections?limit=10":   "collections",
		"/folders/4567?fields=id": "folders",
		"":                        "unknown",
		"/":                       "unknown",
	}
	for path, want := range tests {
		assert.Equal(t, want, APIResource(path), "APIResource(%q)", path)
	}
}
