// Package s3 stores resolved product images in an S3-compatible bucket and
// hands back publicly addressable URLs.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Config holds bucket and connection parameters for the media store.
type Config struct {
	Region string
	Bucket string

	// Endpoint overrides the AWS endpoint for MinIO and friends,
	// e.g. "http://127.0.0.1:9000". Empty means real AWS.
	Endpoint  string
	AccessKey string
	SecretKey string

	// PublicBaseURL is prepended to object keys when building the URL
	// returned to callers. Empty falls back to the virtual-hosted AWS form.
	PublicBaseURL string

	// Timeout bounds each bucket call. Zero disables the bound.
	Timeout time.Duration
}

// api is the slice of the S3 client the store uses.
type api interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, opts ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// Store uploads media objects to a single bucket.
type Store struct {
	client  api
	bucket  string
	baseURL string
	timeout time.Duration
}

// New creates a media store from config.
func New(cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	client := s3.NewFromConfig(aws.Config{Region: cfg.Region}, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
		if cfg.AccessKey != "" {
			o.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
		}
	})

	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}

	return &Store{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		timeout: cfg.Timeout,
	}, nil
}

// withTimeout applies the per-call deadline so a hung endpoint cannot hold
// an ingestion worker.
func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(ctx, s.timeout)
	}
	return ctx, func() {}
}

// Put uploads an object and returns its public URL.
func (s *Store) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return s.URL(key), nil
}

// URL returns the public URL for an object key.
func (s *Store) URL(key string) string {
	return s.baseURL + "/" + key
}

// Ping checks that the bucket is reachable.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		return fmt.Errorf("head bucket %s: %w", s.bucket, err)
	}
	return nil
}

// ObjectKey builds the storage key for the idx-th image of a product.
// An empty subtype falls back to jpg, the same default the uploader uses
// for untyped payloads.
func ObjectKey(tenantID, sku string, idx int, subtype string) string {
	if subtype == "" {
		subtype = "jpg"
	}
	return fmt.Sprintf("%s/%s_%d.%s", tenantID, sku, idx, subtype)
}
