package obs

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

func WithTrace(ctx context.Context, log *zap.Logger) *zap.Logger {
	if log == nil {
		return nil
	}
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return log
	}
	return log.With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}

// RequestLogger tags log with the request route and any trace in flight.
func RequestLogger(r *http.Request, log *zap.Logger) *zap.Logger {
	if log == nil {
		return nil
	}
	return WithTrace(r.Context(), log).With(
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)
}
