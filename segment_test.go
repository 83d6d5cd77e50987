package bcontent_test

import (
	"strings"
	"testing"

	"github.com/advdv/bcontent"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestBuildMemoryChainCopies(t *testing.T) {
	src := []byte("Hello World!")
	chain, err := bcontent.NewChainBuilder(-1).BuildMemoryChain(src)
	require.NoError(t, err)
	require.Len(t, chain, 1)
	require.NoError(t, chain.Validate())

	src[0] = 'J'
	require.Equal(t, "Hello World!", string(chain[0].Bytes()))
	require.Equal(t, bcontent.KindMemory, chain[0].Kind())
	require.True(t, chain[0].IsFinal())
	require.Equal(t, int64(12), chain.Len())
	require.Nil(t, chain[0].Resource())
}

func TestBuildMemoryChainOverLimit(t *testing.T) {
	_, err := bcontent.NewChainBuilder(4).BuildMemoryChain([]byte("too long"))
	require.Error(t, err)
	require.True(t, errors.Is(err, bcontent.ErrResourceUnavailable))
	require.Equal(t, bcontent.CodeInternalServerError, bcontent.CodeOf(err))
}

func TestBuildFileChain(t *testing.T) {
	h := &trackHandle{Reader: strings.NewReader(strings.Repeat("x", 50))}
	res := bcontent.NewFileResource("f", h, 50)

	t.Run("without trailer", func(t *testing.T) {
		chain, err := bcontent.NewChainBuilder(-1).BuildFileChain(res, nil)
		require.NoError(t, err)
		require.Len(t, chain, 1)
		require.NoError(t, chain.Validate())
		require.Equal(t, bcontent.KindFileRegion, chain[0].Kind())
		require.Equal(t, int64(0), chain[0].Offset())
		require.Equal(t, int64(50), chain[0].Len())
		require.True(t, chain[0].IsFinal())
		require.Nil(t, chain[0].Bytes())
	})

	t.Run("with trailer", func(t *testing.T) {
		chain, err := bcontent.NewChainBuilder(-1).BuildFileChain(res, []byte("extra fee"))
		require.NoError(t, err)
		require.Len(t, chain, 2)
		require.NoError(t, chain.Validate())
		require.False(t, chain[0].IsFinal())
		require.True(t, chain[1].IsFinal())
		require.Equal(t, "extra fee", string(chain[1].Bytes()))
		require.Equal(t, int64(59), chain.Len())
	})

	t.Run("trailer over limit", func(t *testing.T) {
		_, err := bcontent.NewChainBuilder(2).BuildFileChain(res, []byte("extra fee"))
		require.True(t, errors.Is(err, bcontent.ErrResourceUnavailable))
	})

	t.Run("no resource", func(t *testing.T) {
		_, err := bcontent.NewChainBuilder(-1).BuildFileChain(nil, nil)
		require.Equal(t, bcontent.CodeInternalServerError, bcontent.CodeOf(err))
	})
}

func TestChainValidate(t *testing.T) {
	require.Error(t, bcontent.Chain{}.Validate())

	a, err := bcontent.NewChainBuilder(-1).BuildMemoryChain([]byte("a"))
	require.NoError(t, err)
	b, err := bcontent.NewChainBuilder(-1).BuildMemoryChain([]byte("b"))
	require.NoError(t, err)

	require.ErrorContains(t, append(a, b...).Validate(), "2 final segments")
}

func TestChainReleaseClosesOnce(t *testing.T) {
	h := &trackHandle{Reader: strings.NewReader("abc")}
	res := bcontent.NewFileResource("f", h, 3)

	chain, err := bcontent.NewChainBuilder(-1).BuildFileChain(res, []byte("!"))
	require.NoError(t, err)

	require.NoError(t, chain.Release())
	require.NoError(t, chain.Release())
	require.Equal(t, int64(1), h.closed.Load())
}
