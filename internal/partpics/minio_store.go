package partpics

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
)

const (
	objectPrefix      = "parts/"
	defaultPresignTTL = 15 * time.Minute
)

type objectClient interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
}

// clientAdapter narrows *minio.Client to objectClient.
type clientAdapter struct {
	*minio.Client
}

func (a clientAdapter) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	return a.Client.GetObject(ctx, bucketName, objectName, opts)
}

// MinIOStore keeps pictures as objects under parts/ in a bucket and hands
// out presigned GET URLs.
type MinIOStore struct {
	client objectClient
	bucket string
	ttl    time.Duration
}

// NewMinIOStore constructs a MinIO-backed picture store.
func NewMinIOStore(client *minio.Client, bucket string, ttl time.Duration) *MinIOStore {
	return newMinIOStore(clientAdapter{client}, bucket, ttl)
}

func newMinIOStore(client objectClient, bucket string, ttl time.Duration) *MinIOStore {
	if ttl <= 0 {
		ttl = defaultPresignTTL
	}
	return &MinIOStore{client: client, bucket: bucket, ttl: ttl}
}

func objectName(name string) string {
	return path.Join(objectPrefix, name)
}

func (m *MinIOStore) Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) error {
	if contentType == "" {
		contentType = contentTypeOf(name)
	}
	_, err := m.client.PutObject(ctx, m.bucket, objectName(name), r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}

func (m *MinIOStore) Get(ctx context.Context, name string) (Object, error) {
	info, err := m.stat(ctx, name)
	if err != nil {
		return Object{}, err
	}
	body, err := m.client.GetObject(ctx, m.bucket, objectName(name), minio.GetObjectOptions{})
	if err != nil {
		return Object{}, fmt.Errorf("get object: %w", err)
	}
	return Object{Body: body, Size: info.Size, ContentType: info.ContentType}, nil
}

func (m *MinIOStore) Remove(ctx context.Context, name string) error {
	if _, err := m.stat(ctx, name); err != nil {
		return err
	}
	if err := m.client.RemoveObject(ctx, m.bucket, objectName(name), minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object: %w", err)
	}
	return nil
}

// URL presigns a GET for the stored object.
func (m *MinIOStore) URL(ctx context.Context, name string) (string, error) {
	if _, err := m.stat(ctx, name); err != nil {
		return "", err
	}
	u, err := m.client.PresignedGetObject(ctx, m.bucket, objectName(name), m.ttl, nil)
	if err != nil {
		return "", fmt.Errorf("presign object: %w", err)
	}
	return u.String(), nil
}

func (m *MinIOStore) stat(ctx context.Context, name string) (minio.ObjectInfo, error) {
	info, err := m.client.StatObject(ctx, m.bucket, objectName(name), minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return minio.ObjectInfo{}, ErrNotFound
		}
		return minio.ObjectInfo{}, fmt.Errorf("stat object: %w", err)
	}
	return info, nil
}
