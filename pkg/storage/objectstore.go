package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// objectStore streams blobs to an S3-compatible bucket. References are
// read-scoped, time-limited signed URLs; the URL is only requested after the
// put has fully succeeded, so a failed stream never yields a reference.
type objectStore struct {
	client *minio.Client
	bucket string
	ttl    time.Duration
}

func newObjectStore(cfg Config) (Backend, error) {
	cl, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init object store client: %w", err)
	}

	ttl := cfg.SignedURLTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	return &objectStore{client: cl, bucket: cfg.Bucket, ttl: ttl}, nil
}

func (o *objectStore) Persist(ctx context.Context, reader io.Reader, size int64, contentType string) (string, error) {
	key := uuid.NewString() + extensionFor(contentType)

	opts := minio.PutObjectOptions{ContentType: contentType}
	if _, err := o.client.PutObject(ctx, o.bucket, key, reader, size, opts); err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	signed, err := o.client.PresignedGetObject(ctx, o.bucket, key, o.ttl, nil)
	if err != nil {
		return "", fmt.Errorf("sign url for %s: %w", key, err)
	}

	return signed.String(), nil
}

func (o *objectStore) Close() error {
	return nil
}
