package lambda

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	logging "github.com/ipfs/go-log/v2"

	"github.com/storacha/redirector/internal/telemetry"
	"github.com/storacha/redirector/pkg/aws"
	"github.com/storacha/redirector/pkg/edge"
	"github.com/storacha/redirector/pkg/resolver"
)

var log = logging.Logger("lambda")

// EdgeHandlerBuilder is a function that creates an edge.Handler from a config.
type EdgeHandlerBuilder func(aws.Config) (edge.Handler, error)

// StartEdgeHandler starts a lambda handler that answers CloudFront
// viewer-request events.
func StartEdgeHandler(makeHandler EdgeHandlerBuilder) {
	ctx := context.Background()
	cfg := setup(ctx)

	handler, err := makeHandler(cfg)
	if err != nil {
		telemetry.ReportError(err)
		panic(err)
	}

	lambda.StartWithOptions(handler, lambda.WithContext(ctx))
}

// HTTPHandlerBuilder is a function that creates a http.Handler from a config.
type HTTPHandlerBuilder func(aws.Config) (http.Handler, error)

// StartHTTPHandler starts a lambda handler that processes HTTP requests.
func StartHTTPHandler(makeHandler HTTPHandlerBuilder) {
	ctx := context.Background()
	cfg := setup(ctx)

	handler, err := makeHandler(cfg)
	if err != nil {
		telemetry.ReportError(err)
		panic(err)
	}

	lambda.StartWithOptions(httpadapter.NewV2(handler).ProxyWithContext, lambda.WithContext(ctx))
}

// NewResolver builds the resolver for the configured mapping. It is the
// usual first step of a handler builder.
func NewResolver(cfg aws.Config) *resolver.Resolver {
	log.Infof("Serving redirects from s3://%s/%s", cfg.ConfigBucket, cfg.ConfigKey)
	return aws.Construct(cfg)
}

func setup(ctx context.Context) aws.Config {
	logging.SetLogLevel("*", "info")
	cfg := aws.FromEnv(ctx)
	telemetry.SetupErrorReporting(cfg.SentryDSN, cfg.SentryEnvironment)
	return cfg
}
