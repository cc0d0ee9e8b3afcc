package logger

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey     contextKey = "logger"
	requestIDKey  contextKey = "request_id"
	propertyIDKey contextKey = "property_id"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger stored in ctx, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithRequestID stores the request ID in ctx
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID returns the request ID stored in ctx
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithPropertyID tags ctx with the property an operation works on, so every
// line logged through L carries the account being billed.
func WithPropertyID(ctx context.Context, propertyID uuid.UUID) context.Context {
	return context.WithValue(ctx, propertyIDKey, propertyID)
}

// GetPropertyID returns the property ID stored in ctx
func GetPropertyID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(propertyIDKey).(uuid.UUID)
	return id, ok
}

// L returns the context logger enriched with trace_id, span_id, request_id
// and property_id when present.
//
//	logger.L(ctx).Info("payment confirmed", zap.String("batch_id", id))
func L(ctx context.Context) *zap.Logger {
	return Enrich(ctx, FromContext(ctx))
}

// Enrich adds the identifiers carried by ctx to logger
func Enrich(ctx context.Context, logger *zap.Logger) *zap.Logger {
	fields := make([]zap.Field, 0, 4)
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if id, ok := GetPropertyID(ctx); ok {
		fields = append(fields, zap.String("property_id", id.String()))
	}
	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}
