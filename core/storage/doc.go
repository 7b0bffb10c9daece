// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client to provide a simplified interface for the
// operations the meld CLI needs: reading source assets from a bucket and
// writing combined assets back. This abstraction supports both AWS S3 and
// self-hosted MinIO instances.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it
// easier to mock storage interactions for unit testing (as seen in
// core/storage/mocks).
//
// # Bucket Paths
//
// Paths of the form s3://bucket/key are bucket-addressed; Fetch and Store
// resolve them against a Client. Everything else is treated as a local file
// by the callers.
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	data, err := storage.Fetch(ctx, client, "s3://assets/chair.glb")
package storage
