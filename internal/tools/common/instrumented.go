package common

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/boxmcp/internal/instrumentation"
	"github.com/teemow/boxmcp/internal/server"
)

// ToolHandler is the handler signature expected by mcp-go.
type ToolHandler = func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// InstrumentedToolHandler wraps a tool handler with tracing, metrics and
// audit logging.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandler("my_tool", sc, handler))
func InstrumentedToolHandler(toolName string, sc *server.ServerContext, handler ToolHandler) ToolHandler {
	return instrument(toolName, "", "", sc, handler)
}

// InstrumentedToolHandlerWithService is like InstrumentedToolHandler but also
// records the Box manager and operation, feeding
// box_api_operations_total and box_api_operation_duration_seconds.
//
// Usage:
//
//	s.AddTool(tool, common.InstrumentedToolHandlerWithService("box_tasks_get", instrumentation.ServiceTasks, instrumentation.OperationGet, sc, handler))
func InstrumentedToolHandlerWithService(toolName, serviceName, operation string, sc *server.ServerContext, handler ToolHandler) ToolHandler {
	return instrument(toolName, serviceName, operation, sc, handler)
}

func instrument(toolName, serviceName, operation string, sc *server.ServerContext, handler ToolHandler) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		account := GetAccountFromArgs(ctx, args)

		ctx, span := instrumentation.StartToolSpan(ctx, toolName,
			instrumentation.NewSpanAttributeBuilder().
				WithAccount(account).
				WithService(serviceName, operation).
				Build()...)

		invocation := instrumentation.NewToolInvocation(ctx, toolName)
		invocation.Account = account
		invocation.Service = serviceName
		invocation.Operation = operation
		if login, ok := args["login"].(string); ok {
			invocation.User = login
		}

		result, err := handler(ctx, request)

		invocation.Finish(result == nil || !result.IsError, err)
		status := invocation.Status()
		instrumentation.EndToolSpan(span, status, err)

		if metrics := sc.Metrics(); metrics != nil {
			metrics.RecordToolInvocation(ctx, toolName, status, account, invocation.Duration)
			if serviceName != "" {
				metrics.RecordBoxAPIOperation(ctx, serviceName, operation, status, invocation.Duration)
			}
		}
		sc.AuditLogger().LogToolInvocation(invocation)

		return result, err
	}
}
