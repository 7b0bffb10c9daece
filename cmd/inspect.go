package cmd

import (
	"context"
	"fmt"

	"variant-meld/core/config"
	"variant-meld/core/glb"
	"variant-meld/core/gltf"
	"variant-meld/core/logger"
	"variant-meld/core/meld"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// inspectCmd reports the variant tags and size statistics of an asset.
var inspectCmd = &cobra.Command{
	Use:   "inspect input",
	Short: "Report the variant tags and size statistics of a .glb asset",
	Long: `Inspect a .glb asset: list its embedded variant tags and report how
its size splits between shared and variational texture content.

The input accepts a local path or an s3://bucket/key path.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	RootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	path := args[0]

	assets := newAssetIO(cfg)
	data, err := assets.read(ctx, path)
	if err != nil {
		return err
	}

	doc, err := glb.Decode(data)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}

	// Folding into a fresh session recomputes the dedup store, which is
	// what the size profile is derived from. An asset without embedded
	// variants is profiled as a single unnamed variant.
	embedded, err := gltf.RootVariants(&doc.Root)
	if err != nil {
		return fmt.Errorf("failed to read variants of %s: %w", path, err)
	}
	tag := ""
	if len(embedded) == 0 {
		tag = "default"
	}

	session := meld.NewSession()
	if err := session.Fold(tag, doc); err != nil {
		return fmt.Errorf("failed to analyze %s: %w", path, err)
	}

	profile, err := session.Summarize()
	if err != nil {
		return fmt.Errorf("failed to compute size profile: %w", err)
	}

	l.Info("Asset",
		zap.String("path", path),
		zap.String("size", humanize.Bytes(uint64(len(data)))),
		zap.Int("meshes", len(doc.Root.Meshes)),
		zap.Int("materials", len(doc.Root.Materials)),
		zap.Int("images", len(doc.Root.Images)),
		zap.Strings("tags", session.Tags()),
	)
	l.Info("Texture content",
		zap.String("total", humanize.Bytes(uint64(profile.TextureBytesTotal))),
		zap.String("variational", humanize.Bytes(uint64(profile.TextureBytesVariational))),
	)
	for _, t := range session.Tags() {
		l.Info("Per-tag texture size",
			zap.String("tag", t),
			zap.String("size", humanize.Bytes(uint64(profile.PerTagTextureBytes[t]))),
		)
	}
	return nil
}
