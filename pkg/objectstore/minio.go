// Package objectstore uploads generated files to an S3 compatible bucket.
package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Options configures the object store client.
type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	// Prefix is prepended to every object key, e.g. "blog/".
	Prefix string
	UseSSL bool
}

// MinIO stores objects in a single bucket. It implements markdown.Exporter.
type MinIO struct {
	client *minio.Client
	bucket string
	prefix string
}

// New connects to the object store and makes sure the bucket exists.
func New(ctx context.Context, opts Options) (*MinIO, error) {
	if opts.Endpoint == "" || opts.Bucket == "" {
		return nil, fmt.Errorf("object store endpoint and bucket are required")
	}

	mc, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create minio client: %w", err)
	}

	s := &MinIO{client: mc, bucket: opts.Bucket, prefix: opts.Prefix}
	if err := mc.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		// creating an existing bucket fails; only a missing bucket is fatal
		exists, xerr := mc.BucketExists(ctx, s.bucket)
		if xerr != nil || !exists {
			return nil, fmt.Errorf("could not ensure bucket %s: %w", s.bucket, err)
		}
	}

	return s, nil
}

func (s *MinIO) key(name string) string {
	return path.Join(s.prefix, name)
}

// Export uploads data under name and returns its s3:// location.
func (s *MinIO) Export(ctx context.Context, name string, data []byte) (string, error) {
	key := s.key(name)
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "text/markdown; charset=utf-8",
	})
	if err != nil {
		return "", fmt.Errorf("could not upload %s: %w", key, err)
	}

	return "s3://" + s.bucket + "/" + key, nil
}

// PresignedURL returns a temporary GET link for an exported file.
func (s *MinIO) PresignedURL(ctx context.Context, name string, expires time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, s.key(name), expires, url.Values{})
	if err != nil {
		return "", fmt.Errorf("could not presign %s: %w", name, err)
	}

	return u.String(), nil
}

// Name implements monitor.Checker.
func (s *MinIO) Name() string { return "objectstore" }

// Check implements monitor.Checker by verifying the bucket is reachable.
func (s *MinIO) Check(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("could not reach bucket %s: %w", s.bucket, err)
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", s.bucket)
	}

	return nil
}
