package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abduss/fieldservice/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const defaultObjectStoreTimeout = 5 * time.Second

type bucketClient interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
}

// OpenPartsBucket connects to MinIO and makes sure the part picture bucket
// exists.
func OpenPartsBucket(ctx context.Context, cfg config.MinIOConfig) (*minio.Client, error) {
	client, err := newMinIOClient(cfg)
	if err != nil {
		return nil, err
	}
	if err := ensureBucket(ctx, client, cfg); err != nil {
		return nil, err
	}
	return client, nil
}

func newMinIOClient(cfg config.MinIOConfig) (*minio.Client, error) {
	endpoint := cfg.Endpoint
	if !strings.Contains(endpoint, ":") {
		// default to MinIO API port when not supplied explicitly
		endpoint = fmt.Sprintf("%s:9000", endpoint)
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client for %s: %w", endpoint, err)
	}
	return client, nil
}

func ensureBucket(ctx context.Context, client bucketClient, cfg config.MinIOConfig) error {
	ctx, cancel := context.WithTimeout(ctx, defaultObjectStoreTimeout)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return fmt.Errorf("check bucket %q: %w", cfg.Bucket, err)
	}
	if exists {
		return nil
	}

	err = client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region})
	if err == nil {
		return nil
	}
	// another replica may have created it between the two calls
	switch minio.ToErrorResponse(err).Code {
	case "BucketAlreadyOwnedByYou", "BucketAlreadyExists":
		return nil
	}
	return fmt.Errorf("create bucket %q: %w", cfg.Bucket, err)
}
