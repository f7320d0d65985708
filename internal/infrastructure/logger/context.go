package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	// LoggerKey stores the request-scoped logger.
	LoggerKey contextKey = "logger"
	// RequestIDKey stores the correlation ID assigned by the HTTP layer.
	RequestIDKey contextKey = "request_id"
	// TenantIDKey stores the tenant of the authenticated caller. The GORM
	// tenant scope reads it when stamping rows.
	TenantIDKey contextKey = "tenant_id"
	// UserIDKey stores the authenticated user, consumed by creator-scoped
	// data filters.
	UserIDKey contextKey = "user_id"
)

// WithContext attaches the logger to the context.
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext returns the context's logger, or a no-op logger when none was
// attached.
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(LoggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// stash records the value under key and returns a logger carrying it as a
// structured field, re-attached to the context.
func stash(ctx context.Context, logger *zap.Logger, key contextKey, value string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, key, value)
	logger = logger.With(zap.String(string(key), value))
	return WithContext(ctx, logger), logger
}

// WithRequestID binds the request ID to the context and logger.
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	return stash(ctx, logger, RequestIDKey, requestID)
}

// WithTenantID binds the tenant ID to the context and logger.
func WithTenantID(ctx context.Context, logger *zap.Logger, tenantID string) (context.Context, *zap.Logger) {
	return stash(ctx, logger, TenantIDKey, tenantID)
}

// WithUserID binds the user ID to the context and logger.
func WithUserID(ctx context.Context, logger *zap.Logger, userID string) (context.Context, *zap.Logger) {
	return stash(ctx, logger, UserIDKey, userID)
}

func stringValue(ctx context.Context, key contextKey) string {
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// GetRequestID returns the request ID bound to ctx, or "".
func GetRequestID(ctx context.Context) string { return stringValue(ctx, RequestIDKey) }

// GetTenantID returns the tenant ID bound to ctx, or "".
func GetTenantID(ctx context.Context) string { return stringValue(ctx, TenantIDKey) }

// GetUserID returns the user ID bound to ctx, or "".
func GetUserID(ctx context.Context) string { return stringValue(ctx, UserIDKey) }

func validSpanContext(ctx context.Context) (trace.SpanContext, bool) {
	span := trace.SpanFromContext(ctx)
	if span == nil {
		return trace.SpanContext{}, false
	}
	sc := span.SpanContext()
	return sc, sc.IsValid()
}

// GetTraceID returns the active trace ID, or "" outside a recorded trace.
func GetTraceID(ctx context.Context) string {
	if sc, ok := validSpanContext(ctx); ok {
		return sc.TraceID().String()
	}
	return ""
}

// GetSpanID returns the active span ID, or "" outside a recorded trace.
func GetSpanID(ctx context.Context) string {
	if sc, ok := validSpanContext(ctx); ok {
		return sc.SpanID().String()
	}
	return ""
}

// WithTraceContext stamps trace_id and span_id onto the logger when the
// context carries a recorded span.
func WithTraceContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	sc, ok := validSpanContext(ctx)
	if !ok {
		return logger
	}
	return logger.With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}

// ContextLogger logs with every correlation field the context carries:
// trace/span IDs plus request, tenant, and user IDs.
type ContextLogger struct {
	ctx    context.Context
	logger *zap.Logger
}

// L wraps the context's logger. Typical use:
//
//	logger.L(ctx).Info("indent submitted", zap.String("indent_no", no))
func L(ctx context.Context) *ContextLogger {
	return &ContextLogger{ctx: ctx, logger: FromContext(ctx)}
}

// WithLogger wraps an explicit logger instead of the context's one.
func WithLogger(ctx context.Context, logger *zap.Logger) *ContextLogger {
	return &ContextLogger{ctx: ctx, logger: logger}
}

func (cl *ContextLogger) enriched() *zap.Logger {
	l := cl.logger
	if l == nil {
		l = zap.NewNop()
	}
	l = WithTraceContext(cl.ctx, l)
	for _, key := range []contextKey{RequestIDKey, TenantIDKey, UserIDKey} {
		if v := stringValue(cl.ctx, key); v != "" {
			l = l.With(zap.String(string(key), v))
		}
	}
	return l
}

// With adds fields to the wrapped logger.
func (cl *ContextLogger) With(fields ...zap.Field) *ContextLogger {
	return &ContextLogger{ctx: cl.ctx, logger: cl.logger.With(fields...)}
}

func (cl *ContextLogger) Debug(msg string, fields ...zap.Field) { cl.enriched().Debug(msg, fields...) }
func (cl *ContextLogger) Info(msg string, fields ...zap.Field)  { cl.enriched().Info(msg, fields...) }
func (cl *ContextLogger) Warn(msg string, fields ...zap.Field)  { cl.enriched().Warn(msg, fields...) }
func (cl *ContextLogger) Error(msg string, fields ...zap.Field) { cl.enriched().Error(msg, fields...) }
func (cl *ContextLogger) Fatal(msg string, fields ...zap.Field) { cl.enriched().Fatal(msg, fields...) }
func (cl *ContextLogger) Panic(msg string, fields ...zap.Field) { cl.enriched().Panic(msg, fields...) }

// Zap exposes the enriched *zap.Logger for APIs that require one.
func (cl *ContextLogger) Zap() *zap.Logger {
	return cl.enriched()
}

// Sugar returns the enriched logger in sugared form.
func (cl *ContextLogger) Sugar() *zap.SugaredLogger {
	return cl.enriched().Sugar()
}
