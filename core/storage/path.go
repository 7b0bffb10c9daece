package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
)

// PathScheme is the URI scheme that marks a path as bucket-addressed.
const PathScheme = "s3://"

// IsBucketPath reports whether path addresses an object in a bucket
// rather than a local file.
func IsBucketPath(path string) bool {
	return strings.HasPrefix(path, PathScheme)
}

// SplitBucketPath splits an s3://bucket/key path into its bucket and
// object key. It returns an error when either part is missing.
func SplitBucketPath(path string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(path, PathScheme)
	bucket, key, found := strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid bucket path %q: expected s3://bucket/key", path)
	}
	return bucket, key, nil
}

// Fetch downloads the object addressed by an s3://bucket/key path and
// returns its full content.
func Fetch(ctx context.Context, client Client, path string) ([]byte, error) {
	bucket, key, err := SplitBucketPath(path)
	if err != nil {
		return nil, err
	}

	obj, err := client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// Store uploads data to the object addressed by an s3://bucket/key
// path. The target bucket must already exist.
func Store(ctx context.Context, client Client, path string, data []byte) error {
	bucket, key, err := SplitBucketPath(path)
	if err != nil {
		return err
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", bucket, err)
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", bucket)
	}

	_, err = client.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "model/gltf-binary",
	})
	if err != nil {
		return fmt.Errorf("failed to store %s: %w", path, err)
	}
	return nil
}
