package log

import (
	"context"
	"log/slog"
	"net/http"
)

type contextKey string

const loggerContextKey contextKey = "logger"

// IntoContext returns a context carrying logger.
func IntoContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

// FromContext returns the request logger, or one over slog.Default.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*Logger); ok {
		return logger
	}
	return Wrap(slog.Default(), ComponentApp)
}

// LogHTTPEnd logs a finished request at a level derived from its status.
func (l *Logger) LogHTTPEnd(ctx context.Context, r *http.Request, statusCode int, durationMs int64, clientIP string) {
	level := slog.LevelInfo
	switch {
	case statusCode >= 500:
		level = slog.LevelError
	case statusCode >= 400:
		level = slog.LevelWarn
	}
	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.UserAgent()).
		WithHTTPResponse(statusCode, durationMs).
		WithClientIP(clientIP).
		WithComponent(ComponentHTTP)
	l.Logger.Log(ctx, level, "HTTP request completed", fields.ToSlice()...)
}

// LogBatchChanged records a successful repository write.
func (l *Logger) LogBatchChanged(ctx context.Context, op, id, name, category string, amountCents int64) {
	fields := NewFields().
		WithBatch(id, name, category, amountCents).
		WithOperation(op).
		WithComponent(l.component)
	l.Logger.InfoContext(ctx, "Batch table updated", fields.ToSlice()...)
}

// LogError logs err with operation context.
func (l *Logger) LogError(ctx context.Context, msg string, err error, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	all := fields.WithError(err).WithOperation(operation).WithComponent(l.component)
	l.Logger.ErrorContext(ctx, msg, all.ToSlice()...)
}
