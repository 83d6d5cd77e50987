package bcontent

import (
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
)

// Logger can be implemented to get informed about important states.
type Logger interface {
	LogAborted(method string, err error)
	LogTransmissionError(err error)
}

type zapLogger struct{ *zap.Logger }

func (l zapLogger) LogAborted(method string, err error) {
	l.Logger.Info("request aborted",
		zap.String("method", method),
		zap.Int("status", StatusOf(err)),
		zap.Error(err))
}

func (l zapLogger) LogTransmissionError(err error) {
	l.Logger.Error("error while transmitting response", zap.Error(err))
}

// NewZapLogger returns a [Logger] that writes to a child of l named "bcontent".
func NewZapLogger(l *zap.Logger) Logger {
	return zapLogger{l.Named("bcontent")}
}

// NewNopLogger returns a [Logger] that discards everything.
func NewNopLogger() Logger {
	return zapLogger{zap.NewNop()}
}

type TestLogger struct {
	tb testing.TB

	NumLogAborted           int64
	NumLogTransmissionError int64
}

func NewTestLogger(tb testing.TB) *TestLogger {
	return &TestLogger{tb: tb}
}

func (l *TestLogger) LogAborted(method string, err error) {
	atomic.AddInt64(&l.NumLogAborted, 1)
	l.tb.Logf("bcontent: %s request aborted: %s", method, err)
}

func (l *TestLogger) LogTransmissionError(err error) {
	atomic.AddInt64(&l.NumLogTransmissionError, 1)
	l.tb.Logf("bcontent: error while transmitting response: %s", err)
}

var _ Logger = &TestLogger{}
