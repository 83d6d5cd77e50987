// Package example implements example middleware in an outside package.
package example

import (
	"context"

	"github.com/advdv/bcontent"
	"go.uber.org/zap"
)

// ctxKey type scopes middlware values.
type ctxKey string

// Middleware provides an example for middleware that adds a logger to the context and logs the
// state each request ended in.
func Middleware(logs *zap.Logger) bcontent.Middleware {
	return func(n bcontent.Handler) bcontent.Handler {
		return bcontent.HandlerFunc(func(
			ctx context.Context, r bcontent.Request, hw bcontent.HeaderTransmitter, bw bcontent.BodyTransmitter,
		) bcontent.Outcome {
			logs := logs.With(zap.String("method", r.Method()))
			ctx = context.WithValue(ctx, ctxKey("zap"), logs)

			out := n.ServeContent(ctx, r, hw, bw)
			logs.Debug("served content",
				zap.Stringer("state", out.State),
				zap.Int("status", out.Status()),
				zap.Int64("content_length", out.Descriptor.ContentLength))

			return out
		})
	}
}

func Log(ctx context.Context) *zap.Logger {
	v, _ := ctx.Value(ctxKey("zap")).(*zap.Logger)

	return v
}
