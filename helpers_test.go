package bcontent_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/advdv/bcontent"
	"github.com/stretchr/testify/require"
)

type testRequest struct {
	method     string
	discardErr error
	discarded  bool
}

func (r *testRequest) Method() string { return r.method }

func (r *testRequest) DiscardBody(context.Context) error {
	r.discarded = true
	return r.discardErr
}

// recorder implements both transmitters and records what it was handed.
type recorder struct {
	headerErr error
	bodyErr   error

	headers []bcontent.ResponseDescriptor
	chains  []bcontent.Chain
	body    bytes.Buffer
}

func (rc *recorder) SendHeader(_ context.Context, desc bcontent.ResponseDescriptor) error {
	if rc.headerErr != nil {
		return rc.headerErr
	}

	rc.headers = append(rc.headers, desc)

	return nil
}

func (rc *recorder) SendBody(_ context.Context, chain bcontent.Chain) error {
	rc.chains = append(rc.chains, chain)
	if rc.bodyErr != nil {
		return rc.bodyErr
	}

	for _, seg := range chain {
		if seg.Kind() == bcontent.KindMemory {
			rc.body.Write(seg.Bytes())
			continue
		}

		buf := make([]byte, seg.Len())
		if n, err := seg.Resource().Handle().ReadAt(buf, seg.Offset()); err != nil && int64(n) != seg.Len() {
			return err
		}

		rc.body.Write(buf)
	}

	return chain.Release()
}

// trackHandle counts Close calls on an in-memory handle.
type trackHandle struct {
	*strings.Reader
	closed atomic.Int64
}

func (h *trackHandle) Close() error {
	h.closed.Add(1)
	return nil
}

// memResolver resolves every path to the same in-memory content and remembers the handles.
type memResolver struct {
	content string
	calls   int
	handles []*trackHandle
}

func (r *memResolver) Resolve(_ context.Context, path string) (*bcontent.FileResource, error) {
	r.calls++
	h := &trackHandle{Reader: strings.NewReader(r.content)}
	r.handles = append(r.handles, h)

	return bcontent.NewFileResource(path, h, int64(len(r.content))), nil
}

func writeFile(t *testing.T, size int) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), "index.txt")
	require.NoError(t, os.WriteFile(p, bytes.Repeat([]byte{'a'}, size), 0o600))

	return p
}
