package bcontent

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/errors"
)

// Handle is an open, readable resource handle. *os.File implements it.
type Handle interface {
	io.ReaderAt
	io.Closer
}

// RangeOpener is implemented by handles that stream a region more efficiently than through
// repeated ReadAt calls, typically remote objects.
type RangeOpener interface {
	OpenRange(ctx context.Context, off, n int64) (io.ReadCloser, error)
}

// FileResource is a resolved resource: an open handle together with its size. Its read offset
// starts at zero. The transaction that resolved it owns it until it is handed off as part of a
// chain.
type FileResource struct {
	path   string
	handle Handle
	size   int64

	closeOnce sync.Once
	closeErr  error
}

// NewFileResource inits a resource from an already opened handle of the given size.
func NewFileResource(path string, h Handle, size int64) *FileResource {
	return &FileResource{path: path, handle: h, size: size}
}

// Path returns the path the resource was resolved from.
func (r *FileResource) Path() string { return r.path }

// Size returns the byte size determined at resolution time.
func (r *FileResource) Size() int64 { return r.size }

// Handle returns the open handle.
func (r *FileResource) Handle() Handle { return r.handle }

// Section returns a reader over [off, off+n) of the resource.
func (r *FileResource) Section(off, n int64) *io.SectionReader {
	return io.NewSectionReader(r.handle, off, n)
}

// Open returns a reader over [off, off+n) of the resource, streamed through the handle's
// [RangeOpener] when it implements one.
func (r *FileResource) Open(ctx context.Context, off, n int64) (io.ReadCloser, error) {
	if ro, ok := r.handle.(RangeOpener); ok {
		return ro.OpenRange(ctx, off, n)
	}

	return io.NopCloser(r.Section(off, n)), nil
}

// Close releases the handle. It is safe to call more than once.
func (r *FileResource) Close() error {
	r.closeOnce.Do(func() {
		if r.handle != nil {
			r.closeErr = r.handle.Close()
		}
	})

	return r.closeErr
}

// Resolver opens a path and determines its readable size.
type Resolver interface {
	Resolve(ctx context.Context, path string) (*FileResource, error)
}

// ResolverFunc allows casting a function to implement [Resolver].
type ResolverFunc func(ctx context.Context, path string) (*FileResource, error)

// Resolve implements the [Resolver] interface.
func (f ResolverFunc) Resolve(ctx context.Context, path string) (*FileResource, error) {
	return f(ctx, path)
}

// FileResolver resolves paths on the local file system.
type FileResolver struct {
	// Root, when not empty, is prepended to every resolved path.
	Root string
}

// NewFileResolver inits a resolver for the local file system.
func NewFileResolver() *FileResolver { return &FileResolver{} }

// Resolve opens path read-only without blocking and stats it. Open failures of any kind are
// reported as not found, stat failures and non-regular files as unavailable. A handle is only
// ever returned for a resource that passed both steps.
func (fr *FileResolver) Resolve(_ context.Context, path string) (*FileResource, error) {
	full := path
	if fr.Root != "" {
		full = filepath.Join(fr.Root, path)
	}

	f, err := os.OpenFile(full, openFlags, 0)
	if err != nil {
		return nil, NewError(CodeNotFound, errors.Mark(
			errors.Wrapf(err, "open %q", full), ErrNotFound))
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, NewError(CodeInternalServerError, errors.Mark(
			errors.Wrapf(err, "stat %q", full), ErrResourceUnavailable))
	}

	if !info.Mode().IsRegular() {
		_ = f.Close()
		return nil, NewError(CodeInternalServerError, errors.Mark(
			errors.Newf("%q is not a regular file (mode %s)", full, info.Mode()), ErrResourceUnavailable))
	}

	return NewFileResource(path, f, info.Size()), nil
}

var _ Resolver = &FileResolver{}
