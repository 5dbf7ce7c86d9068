package aws

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/storacha/redirector/pkg/mapping"
)

// S3Source implements the mapping.Source interface on an S3 object
type S3Source struct {
	bucket   string
	key      string
	s3Client *s3.Client
}

var _ mapping.Source = (*S3Source)(nil)

func NewS3Source(cfg aws.Config, bucket string, key string, opts ...func(*s3.Options)) *S3Source {
	return &S3Source{
		s3Client: s3.NewFromConfig(cfg, opts...),
		bucket:   bucket,
		key:      key,
	}
}

// Stat implements mapping.Source using a HEAD request.
func (s *S3Source) Stat(ctx context.Context) (time.Time, error) {
	out, err := s.s3Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return time.Time{}, s.wrapErr(err)
	}
	if out.LastModified == nil {
		return time.Time{}, fmt.Errorf("s3://%s/%s has no last modified time", s.bucket, s.key)
	}
	return *out.LastModified, nil
}

// Fetch implements mapping.Source.
func (s *S3Source) Fetch(ctx context.Context) (io.ReadCloser, time.Time, error) {
	out, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, time.Time{}, s.wrapErr(err)
	}
	var modified time.Time
	if out.LastModified != nil {
		modified = *out.LastModified
	}
	return out.Body, modified, nil
}

func (s *S3Source) wrapErr(err error) error {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return fmt.Errorf("s3://%s/%s: %w", s.bucket, s.key, mapping.ErrNotFound)
	}
	return fmt.Errorf("s3://%s/%s: %w", s.bucket, s.key, err)
}
