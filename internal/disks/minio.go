package disks

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
)

// Minio stores objects in one bucket of a MinIO/S3 deployment
type Minio struct {
	client *minio.Client
	bucket string
	useSSL bool
}

// NewMinio creates a disk backed by the given bucket
func NewMinio(client *minio.Client, bucket string, useSSL bool) *Minio {
	return &Minio{
		client: client,
		bucket: bucket,
		useSSL: useSSL,
	}
}

// EnsureBucket creates the bucket if it doesn't exist
func (m *Minio) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("failed to check if bucket exists: %w", err)
	}

	if !exists {
		err = m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

// Put streams the object into the bucket
func (m *Minio) Put(ctx context.Context, path string, r io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucket, path, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", path, err)
	}
	return nil
}

// Delete removes the object from the bucket. MinIO treats removal of a
// missing object as success, matching the Disk contract.
func (m *Minio) Delete(ctx context.Context, path string) error {
	err := m.client.RemoveObject(ctx, m.bucket, path, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", path, err)
	}
	return nil
}

// URL constructs the direct URL for the object. In production a CDN URL
// may be preferable; this matches how the bucket is exposed in development.
func (m *Minio) URL(path string) (string, error) {
	scheme := "http"
	if m.useSSL {
		scheme = "https"
	}

	endpoint := strings.TrimPrefix(m.client.EndpointURL().String(), scheme+"://")
	return fmt.Sprintf("%s://%s/%s/%s", scheme, endpoint, m.bucket, path), nil
}

// TemporaryURL returns a presigned GET URL for the object. opts are passed
// through as request parameters (response-content-disposition etc).
func (m *Minio) TemporaryURL(ctx context.Context, path string, expiry time.Duration, opts url.Values) (string, error) {
	presignedURL, err := m.client.PresignedGetObject(ctx, m.bucket, path, expiry, opts)
	if err != nil {
		return "", fmt.Errorf("failed to presign object %s: %w", path, err)
	}
	return presignedURL.String(), nil
}
