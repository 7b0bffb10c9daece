package storage_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"variant-meld/core/storage"
	"variant-meld/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	t.Run("ValidConfig", func(t *testing.T) {
		cfg := storage.Config{
			Endpoint:  "localhost:9000",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			UseSSL:    false,
			Bucket:    "test-bucket",
			Region:    "us-east-1",
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("EndpointWithHTTP", func(t *testing.T) {
		cfg := storage.Config{
			Endpoint:  "http://localhost:9000",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			UseSSL:    false,
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("EndpointWithHTTPS", func(t *testing.T) {
		cfg := storage.Config{
			Endpoint:  "https://s3.amazonaws.com",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			UseSSL:    true,
			Region:    "us-east-1",
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})
}

func TestSplitBucketPath(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		bucket, key, err := storage.SplitBucketPath("s3://assets/models/chair.glb")
		require.NoError(t, err)
		assert.Equal(t, "assets", bucket)
		assert.Equal(t, "models/chair.glb", key)
	})

	t.Run("MissingKey", func(t *testing.T) {
		_, _, err := storage.SplitBucketPath("s3://assets")
		assert.Error(t, err)
	})

	t.Run("MissingBucket", func(t *testing.T) {
		_, _, err := storage.SplitBucketPath("s3:///chair.glb")
		assert.Error(t, err)
	})
}

func TestIsBucketPath(t *testing.T) {
	assert.True(t, storage.IsBucketPath("s3://assets/chair.glb"))
	assert.False(t, storage.IsBucketPath("chair.glb"))
	assert.False(t, storage.IsBucketPath("./out/chair.glb"))
}

func TestFetch(t *testing.T) {
	client := &mocks.Client{}
	body := io.NopCloser(bytes.NewReader([]byte("glTF payload")))
	client.On("GetObject", mock.Anything, "assets", "chair.glb", minio.GetObjectOptions{}).Return(body, nil)

	data, err := storage.Fetch(context.Background(), client, "s3://assets/chair.glb")
	require.NoError(t, err)
	assert.Equal(t, []byte("glTF payload"), data)
	client.AssertExpectations(t)
}

func TestStore(t *testing.T) {
	t.Run("BucketExists", func(t *testing.T) {
		client := &mocks.Client{}
		client.On("BucketExists", mock.Anything, "assets").Return(true, nil)
		client.On("PutObject", mock.Anything, "assets", "out.glb", mock.Anything, int64(4), mock.Anything).
			Return(minio.UploadInfo{Size: 4}, nil)

		err := storage.Store(context.Background(), client, "s3://assets/out.glb", []byte("data"))
		require.NoError(t, err)
		client.AssertExpectations(t)
	})

	t.Run("BucketMissing", func(t *testing.T) {
		client := &mocks.Client{}
		client.On("BucketExists", mock.Anything, "assets").Return(false, nil)

		err := storage.Store(context.Background(), client, "s3://assets/out.glb", []byte("data"))
		assert.ErrorContains(t, err, "does not exist")
	})
}
