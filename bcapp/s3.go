package bcapp

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/advdv/bcontent"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/cockroachdb/errors"
)

// S3Scheme prefixes paths that are resolved as S3 objects.
const S3Scheme = "s3://"

// S3API is the subset of the S3 client the resolver needs.
type S3API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Resolver resolves "s3://bucket/key" paths. Heading the object plays the part of opening
// and stat-ing a file, reads are ranged GetObject requests.
type S3Resolver struct {
	client S3API
}

// NewS3Resolver inits a resolver that reads objects through client.
func NewS3Resolver(client S3API) *S3Resolver {
	return &S3Resolver{client: client}
}

// Resolve heads the object at path. Missing or forbidden objects are reported as not found,
// any other failure as unavailable.
func (sr *S3Resolver) Resolve(ctx context.Context, path string) (*bcontent.FileResource, error) {
	bucket, key, err := ParseS3Path(path)
	if err != nil {
		return nil, bcontent.NewError(bcontent.CodeNotFound, errors.Mark(err, bcontent.ErrNotFound))
	}

	out, err := sr.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isMissingObject(err) {
			return nil, bcontent.NewError(bcontent.CodeNotFound, errors.Mark(
				errors.Wrapf(err, "head %q", path), bcontent.ErrNotFound))
		}

		return nil, bcontent.NewError(bcontent.CodeInternalServerError, errors.Mark(
			errors.Wrapf(err, "head %q", path), bcontent.ErrResourceUnavailable))
	}

	if out.ContentLength == nil || *out.ContentLength < 0 {
		return nil, bcontent.NewError(bcontent.CodeInternalServerError, errors.Mark(
			errors.Newf("head %q: no content length", path), bcontent.ErrResourceUnavailable))
	}

	obj := &s3Object{client: sr.client, bucket: bucket, key: key, size: *out.ContentLength, etag: out.ETag}

	return bcontent.NewFileResource(path, obj, obj.size), nil
}

// ParseS3Path splits "s3://bucket/key" into its bucket and key.
func ParseS3Path(path string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(path, S3Scheme)
	if !ok {
		return "", "", errors.Newf("%q: missing %s prefix", path, S3Scheme)
	}

	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return "", "", errors.Newf("%q: want %sbucket/key", path, S3Scheme)
	}

	return bucket, key, nil
}

func isMissingObject(err error) bool {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey", "NoSuchBucket", "AccessDenied", "Forbidden":
			return true
		}
	}

	return false
}

// s3Object is the handle of a resolved object. Ranged reads pin the ETag seen at resolution
// time so a concurrently replaced object fails the read instead of mixing versions.
type s3Object struct {
	client S3API
	bucket string
	key    string
	size   int64
	etag   *string
}

func (o *s3Object) ReadAt(p []byte, off int64) (int, error) {
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
		return read, errors.Wrapf(err, "read s3://%s/%s at %d", o.bucket, o.key, off)
	}

	if n < int64(len(p)) {
		return read, io.EOF
	}

	return read, nil
}

func (o *s3Object) OpenRange(ctx context.Context, off, n int64) (io.ReadCloser, error) {
	if n <= 0 {
		return io.NopCloser(strings.NewReader("")), nil
	}

	out, err := o.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket:  aws.String(o.bucket),
		Key:     aws.String(o.key),
		Range:   aws.String(fmt.Sprintf("bytes=%d-%d", off, off+n-1)),
		IfMatch: o.etag,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "get s3://%s/%s", o.bucket, o.key)
	}

	return out.Body, nil
}

// Close is a no-op, objects hold no connection between reads.
func (o *s3Object) Close() error { return nil }

var (
	_ bcontent.Resolver    = &S3Resolver{}
	_ bcontent.Handle      = &s3Object{}
	_ bcontent.RangeOpener = &s3Object{}
)
