package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/teemow/boxmcp/internal/logging"
)

// ToolInvocation is one audited MCP tool call.
type ToolInvocation struct {
	Tool      string
	Account   string
	Service   string
	Operation string

	// User is the Box login the call acted on, if any. It is PII.
	User string

	Started  time.Time
	Duration time.Duration
	Success  bool
	Err      error

	TraceID string
	SpanID  string
}

// NewToolInvocation starts timing a call of tool. The trace and span IDs
// are taken from ctx when it carries a sampled or recording span.
func NewToolInvocation(ctx context.Context, tool string) *ToolInvocation {
	ti := &ToolInvocation{Tool: tool, Started: time.Now()}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		ti.TraceID = sc.TraceID().String()
		ti.SpanID = sc.SpanID().String()
	}
	return ti
}

// Finish stops the timer and stores the outcome.
func (ti *ToolInvocation) Finish(success bool, err error) {
	ti.Duration = time.Since(ti.Started)
	ti.Success = success && err == nil
	ti.Err = err
}

// Status returns StatusSuccess or StatusError.
func (ti *ToolInvocation) Status() string {
	if ti.Success {
		return StatusSuccess
	}
	return StatusError
}

func (ti *ToolInvocation) attrs(includePII bool) []any {
	args := []any{
		logging.Tool(ti.Tool),
		logging.Status(ti.Status()),
		slog.Duration("duration", ti.Duration),
	}
	if ti.Account != "" {
		args = append(args, logging.Account(ti.Account))
	}
	if ti.Service != "" {
		args = append(args, logging.Service(ti.Service), logging.Operation(ti.Operation))
	}
	if ti.User != "" {
		if includePII {
			args = append(args, slog.String("user", ti.User))
		} else {
			args = append(args, logging.UserHash(ti.User), logging.Domain(ti.User))
		}
	}
	if ti.TraceID != "" {
		args = append(args, slog.String("trace_id", ti.TraceID), slog.String("span_id", ti.SpanID))
	}
	if ti.Err != nil {
		args = append(args, logging.Err(ti.Err))
	}
	return args
}

// AuditLogger writes one log record per tool call.
type AuditLogger struct {
	logger *slog.Logger
	config AuditConfig
}

// NewAuditLogger returns an audit logger writing to logger, or to the
// default logger when logger is nil.
func NewAuditLogger(logger *slog.Logger, config AuditConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{logger: logger.With(slog.String("log_type", "audit")), config: config}
}

// LogToolInvocation logs ti at info level, or warn level when it failed.
// It is a no-op on a nil or disabled logger.
func (al *AuditLogger) LogToolInvocation(ti *ToolInvocation) {
	if al == nil || !al.config.Enabled {
		return
	}
	if ti.Success {
		al.logger.Info("tool_executed", ti.attrs(al.config.IncludePII)...)
		return
	}
	al.logger.Warn("tool_failed", ti.attrs(al.config.IncludePII)...)
}
