package bcontent_test

import (
	"net/http"
	"testing"

	"github.com/advdv/bcontent"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestErrorCode(t *testing.T) {
	err1 := bcontent.NewError(bcontent.CodeNotFound, errors.New("foo"))
	require.Equal(t, bcontent.Code(404), err1.Code())
	require.Equal(t, bcontent.CodeNotFound, bcontent.CodeOf(err1))
	require.Equal(t, "Not Found: foo", err1.Error())

	require.Equal(t, bcontent.CodeUnknown, bcontent.CodeOf(errors.New("bar")))
	require.Equal(t, "Unknown: rab", bcontent.NewError(900, errors.New("rab")).Error())
}

func TestErrorKindsSurviveWrapping(t *testing.T) {
	err := bcontent.NewError(bcontent.CodeNotFound, errors.Mark(errors.New("open"), bcontent.ErrNotFound))
	wrapped := errors.Wrap(errors.Mark(err, bcontent.ErrBodyDiscard), "outer")

	require.True(t, errors.Is(wrapped, bcontent.ErrNotFound))
	require.True(t, errors.Is(wrapped, bcontent.ErrBodyDiscard))
	require.Equal(t, http.StatusNotFound, bcontent.StatusOf(wrapped))
}

func TestStatusOf(t *testing.T) {
	require.Equal(t, http.StatusOK, bcontent.StatusOf(nil))
	require.Equal(t, http.StatusInternalServerError, bcontent.StatusOf(errors.New("plain")))
	require.Equal(t, http.StatusMethodNotAllowed,
		bcontent.StatusOf(bcontent.NewError(bcontent.CodeMethodNotAllowed, errors.New("x"))))
}
