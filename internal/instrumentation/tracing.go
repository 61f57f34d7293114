package instrumentation

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const TracerName = "github.com/teemow/boxmcp"

// Span attribute keys.
const (
	SpanAttrTool      = "mcp.tool"
	SpanAttrAccount   = "mcp.account"
	SpanAttrStatus    = "mcp.status"
	SpanAttrService   = "box.service"
	SpanAttrOperation = "box.operation"
)

// SpanAttributeBuilder collects span attributes, skipping empty values.
type SpanAttributeBuilder struct {
	attrs []attribute.KeyValue
}

func NewSpanAttributeBuilder() *SpanAttributeBuilder {
	return &SpanAttributeBuilder{}
}

func (b *SpanAttributeBuilder) add(key, value string) *SpanAttributeBuilder {
	if value != "" {
		b.attrs = append(b.attrs, attribute.String(key, value))
	}
	return b
}

// WithAccount adds the configured account name.
func (b *SpanAttributeBuilder) WithAccount(account string) *SpanAttributeBuilder {
	return b.add(SpanAttrAccount, account)
}

// WithService adds the Box manager and the operation it performs.
func (b *SpanAttributeBuilder) WithService(service, operation string) *SpanAttributeBuilder {
	return b.add(SpanAttrService, service).add(SpanAttrOperation, operation)
}

func (b *SpanAttributeBuilder) Build() []attribute.KeyValue {
	return b.attrs
}

// StartToolSpan starts the server span "tool.<name>" for an MCP tool call.
// The caller ends it with EndToolSpan.
func StartToolSpan(ctx context.Context, tool string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, "tool."+tool,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attribute.String(SpanAttrTool, tool)),
		trace.WithAttributes(attrs...),
	)
}

// EndToolSpan sets the span status from the call outcome and ends the span.
// A tool that reported an error result without a Go error is marked with
// the status attribute only, since the call itself succeeded.
func EndToolSpan(span trace.Span, status string, err error) {
	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case status == StatusSuccess:
		span.SetStatus(codes.Ok, "")
	}
	span.SetAttributes(attribute.String(SpanAttrStatus, status))
	span.End()
}
