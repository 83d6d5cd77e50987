package bcapp

import (
	"context"
	"net/http"
	"time"

	"github.com/advdv/bcontent"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const awsConfigTimeout = 10 * time.Second

// NewAWSConfig loads the default AWS SDK v2 configuration.
func NewAWSConfig(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx, optFns...)
}

// provideAWSConfig is an fx provider that loads AWS config with a timeout for the region from
// AWS_REGION. It instruments the config with OpenTelemetry for AWS SDK tracing.
func provideAWSConfig(env Environment, tp trace.TracerProvider, prop propagation.TextMapPropagator) (aws.Config, error) {
	ctx, cancel := context.WithTimeout(context.Background(), awsConfigTimeout)
	defer cancel()

	cfg, err := NewAWSConfig(ctx, awsconfig.WithRegion(env.awsRegion()))
	if err != nil {
		return cfg, err
	}
	otelaws.AppendMiddlewares(&cfg.APIOptions,
		otelaws.WithTracerProvider(tp),
		otelaws.WithTextMapPropagator(prop),
	)
	return cfg, nil
}

// provideS3Client creates the client that backs the S3 resolver.
func provideS3Client(cfg aws.Config) *s3.Client {
	return s3.NewFromConfig(cfg)
}

// provideResolver resolves s3:// paths through client, http(s):// paths through the instrumented
// transport and other paths under BC_FILE_ROOT.
func provideResolver(env Environment, client *s3.Client, t http.RoundTripper) bcontent.Resolver {
	return &RoutingResolver{
		S3:     NewS3Resolver(client),
		Origin: NewOriginResolver(t),
		Files:  &bcontent.FileResolver{Root: env.fileRoot()},
	}
}
