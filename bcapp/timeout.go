package bcapp

import (
	"context"
	"time"

	"github.com/advdv/bcontent"
)

// DefaultDeadlineBuffer is the default time reserved before the write timeout so a request can
// still release its resources and report an error before the server cuts the connection.
const DefaultDeadlineBuffer = 500 * time.Millisecond

// TimeoutConfig holds timeout configuration for the HTTP server.
type TimeoutConfig struct {
	// WriteTimeout bounds the time a response may take to be written, usually from BC_WRITE_TIMEOUT.
	WriteTimeout time.Duration

	// DeadlineBuffer is subtracted from WriteTimeout for the per-request deadline. Defaults to
	// DefaultDeadlineBuffer.
	DeadlineBuffer time.Duration
}

// ServerTimeouts returns the http.Server timeout values. Large files are streamed so the write
// timeout is taken as configured, reading a GET or HEAD request is expected to be quick.
func (tc TimeoutConfig) ServerTimeouts() (readHeaderTimeout, readTimeout, writeTimeout, idleTimeout time.Duration) {
	writeTimeout = tc.WriteTimeout
	readHeaderTimeout = min(writeTimeout, 5*time.Second)
	readTimeout = writeTimeout
	idleTimeout = writeTimeout

	return
}

// RequestTimeout returns the deadline applied to the context of each content request. It is
// zero when no write timeout is configured.
func (tc TimeoutConfig) RequestTimeout() time.Duration {
	if tc.WriteTimeout <= 0 {
		return 0
	}

	buffer := tc.DeadlineBuffer
	if buffer <= 0 {
		buffer = DefaultDeadlineBuffer
	}

	timeout := tc.WriteTimeout - buffer
	if timeout <= 0 {
		timeout = tc.WriteTimeout // fallback if buffer >= timeout
	}

	return timeout
}

// WithRequestDeadline returns middleware that bounds the context of each content request by
// timeout. Resolving and streaming a resource observe the context, so a stalled backend fails the
// request before the server gives up on the connection. A zero timeout disables the deadline.
func WithRequestDeadline(timeout time.Duration) bcontent.Middleware {
	return func(next bcontent.Handler) bcontent.Handler {
		if timeout <= 0 {
			return next
		}

		return bcontent.HandlerFunc(func(
			ctx context.Context, r bcontent.Request, hw bcontent.HeaderTransmitter, bw bcontent.BodyTransmitter,
		) bcontent.Outcome {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			return next.ServeContent(ctx, r, hw, bw)
		})
	}
}

// RequestRemainingTime returns the duration until the request context deadline.
// Returns 0 if no deadline is set or if the deadline has passed.
func RequestRemainingTime(ctx context.Context) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return 0
	}
	remaining := time.Until(deadline)
	if remaining < 0 {
		return 0
	}
	return remaining
}
