package bcapp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/advdv/bcontent"
	"github.com/carlmjohnson/requests"
	"github.com/cockroachdb/errors"
)

// OriginResolver resolves http:// and https:// paths against an origin server. A HEAD request
// plays the part of opening and stat-ing a file, reads are ranged GET requests.
type OriginResolver struct {
	transport http.RoundTripper
}

// NewOriginResolver inits a resolver that sends its requests through t, the default transport
// when nil.
func NewOriginResolver(t http.RoundTripper) *OriginResolver {
	if t == nil {
		t = http.DefaultTransport
	}

	return &OriginResolver{transport: t}
}

// IsOriginPath reports whether path is resolved by an [OriginResolver].
func IsOriginPath(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

func (or *OriginResolver) newRequest(url string) *requests.Builder {
	return requests.URL(url).Transport(or.transport)
}

// Resolve heads the resource at url. Missing or forbidden resources are reported as not found,
// any other failure as unavailable, as is an origin that doesn't announce a content length.
func (or *OriginResolver) Resolve(ctx context.Context, url string) (*bcontent.FileResource, error) {
	var (
		status int
		size   int64
		etag   string
	)

	err := or.newRequest(url).
		Head().
		AddValidator(func(res *http.Response) error {
			status = res.StatusCode
			return nil
		}).
		Handle(func(res *http.Response) error {
			size, etag = res.ContentLength, res.Header.Get("ETag")
			return nil
		}).
		Fetch(ctx)
	if err != nil {
		return nil, bcontent.NewError(bcontent.CodeInternalServerError, errors.Mark(
			errors.Wrapf(err, "head %q", url), bcontent.ErrResourceUnavailable))
	}

	switch {
	case status == http.StatusNotFound, status == http.StatusGone, status == http.StatusForbidden:
		return nil, bcontent.NewError(bcontent.CodeNotFound, errors.Mark(
			errors.Newf("head %q: origin responded %d", url, status), bcontent.ErrNotFound))
	case status < 200 || status > 299:
		return nil, bcontent.NewError(bcontent.CodeInternalServerError, errors.Mark(
			errors.Newf("head %q: origin responded %d", url, status), bcontent.ErrResourceUnavailable))
	case size < 0:
		return nil, bcontent.NewError(bcontent.CodeInternalServerError, errors.Mark(
			errors.Newf("head %q: no content length", url), bcontent.ErrResourceUnavailable))
	}

	return bcontent.NewFileResource(url, &originObject{or: or, url: url, size: size, etag: etag}, size), nil
}

// originObject is the handle of a resolved origin resource.
type originObject struct {
	or   *OriginResolver
	url  string
	size int64
	etag string
}

func (o *originObject) ReadAt(p []byte, off int64) (int, error) {
	if off >= o.size {
		return 0, io.EOF
	}

	n := min(int64(len(p)), o.size-off)
	if n == 0 {
		return 0, nil
	}

	rc, err := o.OpenRange(context.Background(), off, n)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	read, err := io.ReadFull(rc, p[:n])
	if err != nil {
		return read, errors.Wrapf(err, "read %q at %d", o.url, off)
	}

	if n < int64(len(p)) {
		return read, io.EOF
	}

	return read, nil
}

func (o *originObject) OpenRange(ctx context.Context, off, n int64) (io.ReadCloser, error) {
	if n <= 0 {
		return io.NopCloser(strings.NewReader("")), nil
	}

	rb := o.or.newRequest(o.url).Header("Range", fmt.Sprintf("bytes=%d-%d", off, off+n-1))
	if o.etag != "" {
		rb = rb.Header("If-Match", o.etag)
	}

	req, err := rb.Request(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "build range request for %q", o.url)
	}

	res, err := o.or.transport.RoundTrip(req)
	if err != nil {
		return nil, errors.Wrapf(err, "get %q", o.url)
	}

	switch {
	case res.StatusCode == http.StatusPartialContent:
	case res.StatusCode == http.StatusOK && off == 0 && n == o.size:
	default:
		_ = res.Body.Close()
		return nil, errors.Newf("get %q: origin responded %d to range %d+%d", o.url, res.StatusCode, off, n)
	}

	return res.Body, nil
}

// Close is a no-op, every read uses its own request.
func (o *originObject) Close() error { return nil }

var (
	_ bcontent.Resolver    = &OriginResolver{}
	_ bcontent.RangeOpener = &originObject{}
)
