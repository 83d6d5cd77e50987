package bcapp

import (
	"context"

	"github.com/advdv/bcontent"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ctxKey is the key type for context values.
type ctxKey int

const ctxKeyRequestDep ctxKey = iota

// requestDep holds request-scoped dependencies available via context.
type requestDep struct {
	logger    *zap.Logger
	requestID string
}

// withRequestDep injects dependencies into the content request context. Every request gets its
// own id, the logger carries it.
func withRequestDep(logger *zap.Logger) bcontent.Middleware {
	return func(next bcontent.Handler) bcontent.Handler {
		return bcontent.HandlerFunc(func(
			ctx context.Context, r bcontent.Request, hw bcontent.HeaderTransmitter, bw bcontent.BodyTransmitter,
		) bcontent.Outcome {
			id := uuid.NewString()
			ctx = context.WithValue(ctx, ctxKeyRequestDep, &requestDep{
				logger:    logger.With(zap.String("request_id", id), zap.String("method", r.Method())),
				requestID: id,
			})

			return next.ServeContent(ctx, r, hw, bw)
		})
	}
}

func requestDepFromContext(ctx context.Context) *requestDep {
	d, ok := ctx.Value(ctxKeyRequestDep).(*requestDep)
	if !ok {
		panic("bcapp: requestDep not found in context; is the middleware configured?")
	}
	return d
}

// Log returns a trace-correlated zap logger from the context.
func Log(ctx context.Context) *zap.Logger {
	d := requestDepFromContext(ctx)
	return d.logger.With(traceFields(ctx)...)
}

// RequestID returns the id assigned to the content request.
func RequestID(ctx context.Context) string {
	return requestDepFromContext(ctx).requestID
}

// Span returns the current trace span from the context.
func Span(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// traceFields extracts trace_id and span_id from the context for log correlation.
func traceFields(ctx context.Context) []zap.Field {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return nil
	}
	sc := span.SpanContext()
	return []zap.Field{
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	}
}
