package bcapp

import (
	"context"
	"strings"

	"github.com/advdv/bcontent"
	"github.com/cockroachdb/errors"
)

// RoutingResolver picks a resolver by the scheme of the path. Paths without a scheme are
// resolved on the local file system.
type RoutingResolver struct {
	S3     *S3Resolver
	Origin *OriginResolver
	Files  *bcontent.FileResolver
}

// Resolve implements [bcontent.Resolver]. A scheme without a configured resolver is reported as
// not found.
func (rr *RoutingResolver) Resolve(ctx context.Context, path string) (*bcontent.FileResource, error) {
	switch {
	case strings.HasPrefix(path, S3Scheme):
		if rr.S3 == nil {
			return nil, noResolver(path)
		}

		return rr.S3.Resolve(ctx, path)
	case IsOriginPath(path):
		if rr.Origin == nil {
			return nil, noResolver(path)
		}

		return rr.Origin.Resolve(ctx, path)
	case rr.Files == nil:
		return bcontent.NewFileResolver().Resolve(ctx, path)
	default:
		return rr.Files.Resolve(ctx, path)
	}
}

func noResolver(path string) error {
	return bcontent.NewError(bcontent.CodeNotFound, errors.Mark(
		errors.Newf("no resolver for %q", path), bcontent.ErrNotFound))
}

var _ bcontent.Resolver = &RoutingResolver{}
