package aws

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"github.com/storacha/redirector/internal/telemetry"
	"github.com/storacha/redirector/pkg/build"
	"github.com/storacha/redirector/pkg/mapping"
	"github.com/storacha/redirector/pkg/resolver"
)

// DefaultRegion is where the mapping bucket lives unless configured
// otherwise. Edge functions run in many regions but read a single bucket.
const DefaultRegion = "us-east-1"

// ErrMissingParameter means that the value returned from SSM was empty
var ErrMissingParameter = errors.New("missing value for parameter")

// ErrMissingBucket means no mapping bucket was configured by any means
var ErrMissingBucket = errors.New("mapping bucket is not configured")

type Config struct {
	Config            aws.Config
	S3Options         []func(*s3.Options)
	SentryDSN         string
	SentryEnvironment string
	ConfigBucket      string
	ConfigKey         string
	FetchTimeout      time.Duration
}

func getSSMParam(ctx context.Context, client *ssm.Client, name string) (string, error) {
	response, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("retrieving SSM parameter %s: %w", name, err)
	}
	if response.Parameter == nil || response.Parameter.Value == nil || *response.Parameter.Value == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingParameter, name)
	}
	return *response.Parameter.Value, nil
}

// ParseLocation parses an s3://bucket/key URL.
func ParseLocation(s string) (bucket string, key string, err error) {
	u, err := url.Parse(s)
	if err != nil {
		return "", "", fmt.Errorf("parsing mapping location: %w", err)
	}
	if u.Scheme != "s3" || u.Host == "" {
		return "", "", fmt.Errorf("mapping location must be s3://bucket/key, got %q", s)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", fmt.Errorf("mapping location %q has no key", s)
	}
	return u.Host, key, nil
}

// FromEnv constructs the AWS Configuration from the environment. Settings
// missing from the environment fall back to values set at link time in the
// build package.
func FromEnv(ctx context.Context) Config {
	awsConfig, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		panic(fmt.Errorf("loading aws default config: %w", err))
	}

	bucket := os.Getenv("REDIRECT_CONFIG_BUCKET")
	if bucket == "" {
		bucket = build.ConfigBucket
	}
	key := os.Getenv("REDIRECT_CONFIG_KEY")
	if key == "" {
		key = build.ConfigKey
	}

	if name := os.Getenv("REDIRECT_CONFIG_PARAMETER"); name != "" {
		loc, err := getSSMParam(ctx, ssm.NewFromConfig(awsConfig), name)
		if err != nil {
			panic(err)
		}
		bucket, key, err = ParseLocation(loc)
		if err != nil {
			panic(err)
		}
	}
	if bucket == "" {
		panic(ErrMissingBucket)
	}

	timeout := mapping.DefaultTimeout
	if s := os.Getenv("REDIRECT_FETCH_TIMEOUT"); s != "" {
		timeout, err = time.ParseDuration(s)
		if err != nil {
			panic(fmt.Errorf("parsing fetch timeout: %w", err))
		}
	}

	region := os.Getenv("REDIRECT_CONFIG_REGION")
	if region == "" {
		region = DefaultRegion
	}

	return Config{
		Config: awsConfig,
		S3Options: []func(*s3.Options){
			func(o *s3.Options) { o.Region = region },
		},
		SentryDSN:         os.Getenv("SENTRY_DSN"),
		SentryEnvironment: os.Getenv("SENTRY_ENVIRONMENT"),
		ConfigBucket:      bucket,
		ConfigKey:         key,
		FetchTimeout:      timeout,
	}
}

// StaticCredentials returns an S3 option for a custom endpoint, as used by
// S3 compatible stores.
func StaticCredentials(endpoint, region, accessKeyID, secretAccessKey string) func(*s3.Options) {
	return func(o *s3.Options) {
		o.Credentials = credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, "")
		o.Region = region
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}
}

// Construct builds the resolver reading the configured mapping from S3.
func Construct(cfg Config) *resolver.Resolver {
	source := NewS3Source(cfg.Config, cfg.ConfigBucket, cfg.ConfigKey, cfg.S3Options...)
	var opts []mapping.Option
	if cfg.FetchTimeout > 0 {
		opts = append(opts, mapping.WithTimeout(cfg.FetchTimeout))
	}
	accessor := mapping.NewAccessor(source, opts...)
	return resolver.New(accessor, resolver.WithErrorReporter(telemetry.ReportError))
}
