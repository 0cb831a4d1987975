// Package objects stores CMS uploads in an S3-compatible bucket.
package objects

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"dutyfree/internal/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"
)

// Object is a listed bucket entry.
type Object struct {
	Key  string
	Size int64
	// LastModified is unix milliseconds.
	LastModified int64
}

type S3Config struct {
	Endpoint   string
	Region     string
	Bucket     string
	AccessKey  string
	SecretKey  string
	PublicBase string
	PathStyle  bool
}

type S3Bucket struct {
	client     *s3.Client
	bucket     string
	publicBase string
	logger     *zap.Logger
}

type Option func(*S3Bucket)

func WithLogger(logger *zap.Logger) Option {
	return func(b *S3Bucket) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewS3 builds a client for cfg. An empty Endpoint uses the AWS default resolver.
func NewS3(ctx context.Context, cfg S3Config, opts ...Option) (*S3Bucket, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	publicBase := strings.TrimRight(cfg.PublicBase, "/")
	if publicBase == "" {
		publicBase = strings.TrimRight(cfg.Endpoint, "/")
	}
	b := &S3Bucket{client: client, bucket: cfg.Bucket, publicBase: publicBase, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (b *S3Bucket) EnsureBucket(ctx context.Context) error {
	if _, err := b.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(b.bucket)}); err == nil {
		return nil
	}
	_, err := b.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(b.bucket)})
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &owned) {
			return nil
		}
		return fmt.Errorf("create bucket %s: %w", b.bucket, err)
	}
	b.logger.Info("created bucket", zap.String("bucket", b.bucket))
	return nil
}

// List returns up to limit objects in bucket order.
func (b *S3Bucket) List(ctx context.Context, limit int) ([]Object, error) {
	out, err := b.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(b.bucket),
		MaxKeys: aws.Int32(int32(limit)),
	})
	if err != nil {
		b.logger.Error("list objects failed", zap.String("bucket", b.bucket), zap.Error(err))
		return nil, err
	}
	objects := make([]Object, 0, len(out.Contents))
	for _, o := range out.Contents {
		obj := Object{Key: aws.ToString(o.Key), Size: aws.ToInt64(o.Size)}
		if o.LastModified != nil {
			obj.LastModified = o.LastModified.UnixMilli()
		}
		objects = append(objects, obj)
	}
	return objects, nil
}

func (b *S3Bucket) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		b.logger.Error("put object failed", zap.String("key", key), zap.Error(err))
		return err
	}
	b.logger.Info("uploaded object", zap.String("key", key), zap.Int64("size", size))
	return nil
}

func (b *S3Bucket) Delete(ctx context.Context, key string) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

// PublicURL is <public base>/<bucket>/<key>.
func (b *S3Bucket) PublicURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", b.publicBase, b.bucket, key)
}
