package bcontent_test

import (
	"net/http"
	"testing"

	"github.com/advdv/bcontent"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := bcontent.NewZapLogger(zap.New(core))

	logger.LogAborted(http.MethodPost, bcontent.NewError(bcontent.CodeMethodNotAllowed, errors.New("nope")))
	logger.LogTransmissionError(errors.New("broken pipe"))

	entries := logs.TakeAll()
	require.Len(t, entries, 2)

	require.Equal(t, "request aborted", entries[0].Message)
	require.Equal(t, "bcontent", entries[0].LoggerName)
	require.Equal(t, zapcore.InfoLevel, entries[0].Level)
	require.Equal(t, int64(405), entries[0].ContextMap()["status"])
	require.Equal(t, "POST", entries[0].ContextMap()["method"])

	require.Equal(t, "error while transmitting response", entries[1].Message)
	require.Equal(t, zapcore.ErrorLevel, entries[1].Level)
}

func TestNopLogger(t *testing.T) {
	require.NotPanics(t, func() {
		bcontent.NewNopLogger().LogAborted(http.MethodGet, errors.New("x"))
	})
}
