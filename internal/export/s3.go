package export

import (
	"bytes"
	"context"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/tphakala/mediaseed/internal/conf"
	"github.com/tphakala/mediaseed/internal/errors"
)

const jsonContentType = "application/json"

// uploader is the part of manager.Uploader the target uses.
type uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Target uploads artifacts to an S3 compatible bucket under a key prefix.
type S3Target struct {
	bucket   string
	prefix   string
	uploader uploader
}

// NewS3Target builds the client from the default AWS credential chain, or
// from static keys when both are configured. A custom endpoint selects an
// S3 compatible service such as MinIO.
func NewS3Target(ctx context.Context, settings *conf.S3Export) (*S3Target, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if settings.Region != "" {
		opts = append(opts, awsconfig.WithRegion(settings.Region))
	}
	if settings.AccessKeyID != "" && settings.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(settings.AccessKeyID, settings.SecretAccessKey, "")))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.New(err).
			Component("export").
			Category(errors.CategoryConfiguration).
			Context("target", "s3").
			Build()
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = settings.UsePathStyle
		if settings.Endpoint != "" {
			o.BaseEndpoint = aws.String(settings.Endpoint)
		}
	})
	return newS3Target(settings.Bucket, settings.Prefix, manager.NewUploader(client)), nil
}

func newS3Target(bucket, prefix string, up uploader) *S3Target {
	return &S3Target{bucket: bucket, prefix: strings.Trim(prefix, "/"), uploader: up}
}

// Name returns the name of this target
func (t *S3Target) Name() string { return "s3" }

// Validate checks that a bucket is configured.
func (t *S3Target) Validate() error {
	if t.bucket == "" {
		return errors.Newf("s3 export bucket is not configured").
			Component("export").
			Category(errors.CategoryConfiguration).
			Build()
	}
	return nil
}

// Key returns the object key for name.
func (t *S3Target) Key(name string) string {
	if t.prefix == "" {
		return name
	}
	return path.Join(t.prefix, name)
}

// Store uploads data as a JSON object.
func (t *S3Target) Store(ctx context.Context, name string, data []byte) error {
	_, err := t.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(t.bucket),
		Key:           aws.String(t.Key(name)),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(jsonContentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return errors.New(err).
			Component("export").
			Category(errors.CategoryNetwork).
			Context("bucket", t.bucket).
			Context("key", t.Key(name)).
			Build()
	}
	return nil
}
