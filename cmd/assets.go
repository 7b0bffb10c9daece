package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"variant-meld/core/config"
	"variant-meld/core/storage"
)

// assetIO reads and writes .glb payloads from local files or bucket
// paths. The storage client is created lazily so purely local runs
// never touch the storage configuration.
type assetIO struct {
	cfg    *config.Config
	client storage.Client
}

func newAssetIO(cfg *config.Config) *assetIO {
	return &assetIO{cfg: cfg}
}

func (a *assetIO) read(ctx context.Context, path string) ([]byte, error) {
	if storage.IsBucketPath(path) {
		client, err := a.storageClient()
		if err != nil {
			return nil, err
		}
		return storage.Fetch(ctx, client, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func (a *assetIO) write(ctx context.Context, path string, data []byte) error {
	if storage.IsBucketPath(path) {
		client, err := a.storageClient()
		if err != nil {
			return err
		}
		return storage.Store(ctx, client, path, data)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func (a *assetIO) storageClient() (storage.Client, error) {
	if a.client == nil {
		client, err := storage.NewClient(a.cfg.Storage)
		if err != nil {
			return nil, err
		}
		a.client = client
	}
	return a.client, nil
}

// splitSourceArg splits a "tag:path" source argument. A colon followed
// by "//" is a URI scheme separator, not a tag delimiter, so bare
// bucket paths like s3://assets/chair.glb carry no tag.
func splitSourceArg(arg string) (tag, path string) {
	head, rest, found := strings.Cut(arg, ":")
	if !found {
		return "", arg
	}
	if strings.HasPrefix(rest, "//") {
		return "", arg
	}
	return head, rest
}
