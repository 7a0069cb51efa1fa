package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/abduss/fieldservice/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBucketClient struct {
	exists    bool
	existsErr error
	makeErr   error
	made      []string
	region    string
}

func (f *fakeBucketClient) BucketExists(ctx context.Context, bucket string) (bool, error) {
	return f.exists, f.existsErr
}

func (f *fakeBucketClient) MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error {
	f.made = append(f.made, bucket)
	f.region = opts.Region
	return f.makeErr
}

var partsBucket = config.MinIOConfig{Bucket: "part-pictures", Region: "eu-west-1"}

func TestEnsureBucketCreatesMissingBucket(t *testing.T) {
	client := &fakeBucketClient{}
	require.NoError(t, ensureBucket(context.Background(), client, partsBucket))
	assert.Equal(t, []string{"part-pictures"}, client.made)
	assert.Equal(t, "eu-west-1", client.region)
}

func TestEnsureBucketLeavesExistingBucket(t *testing.T) {
	client := &fakeBucketClient{exists: true}
	require.NoError(t, ensureBucket(context.Background(), client, partsBucket))
	assert.Empty(t, client.made)
}

func TestEnsureBucketToleratesConcurrentCreate(t *testing.T) {
	client := &fakeBucketClient{makeErr: minio.ErrorResponse{Code: "BucketAlreadyOwnedByYou"}}
	assert.NoError(t, ensureBucket(context.Background(), client, partsBucket))
}

func TestEnsureBucketReportsFailures(t *testing.T) {
	client := &fakeBucketClient{existsErr: errors.New("connection refused")}
	err := ensureBucket(context.Background(), client, partsBucket)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"part-pictures"`)

	client = &fakeBucketClient{makeErr: minio.ErrorResponse{Code: "AccessDenied"}}
	assert.Error(t, ensureBucket(context.Background(), client, partsBucket))
}

func TestRetryStopsAfterSuccess(t *testing.T) {
	calls := 0
	var failures []int
	err := retry(context.Background(), 5, time.Millisecond, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	}, func(attempt int, err error) { failures = append(failures, attempt) })

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, failures)
}

func TestRetryReturnsLastError(t *testing.T) {
	calls := 0
	err := retry(context.Background(), 3, time.Millisecond, func(context.Context) error {
		calls++
		return errors.New("down")
	}, nil)

	assert.EqualError(t, err, "down")
	assert.Equal(t, 3, calls)
}

func TestRetryHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := retry(ctx, 3, time.Hour, func(context.Context) error { return errors.New("down") }, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
