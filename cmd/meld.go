package cmd

import (
	"context"
	"fmt"
	"os"

	"variant-meld/core/config"
	"variant-meld/core/glb"
	"variant-meld/core/logger"
	"variant-meld/core/meld"
	"variant-meld/core/storage"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the meld command
	forceOverwrite bool
	quietMeld      bool
	verboseMeld    bool
)

// meldCmd folds tagged source assets into one variational asset.
var meldCmd = &cobra.Command{
	Use:   "meld [tag:]input... output",
	Short: "Meld tagged .glb sources into one variational asset",
	Long: `Meld several structurally identical .glb sources into one combined
asset. Each input is prefixed with the variant tag it contributes; an
input without a tag must already embed variant mappings, which are
folded under their own tags.

Inputs and output accept local paths or s3://bucket/key paths.

Examples:
  # Three single-material sources into one asset
  variant-meld meld black:chair_black.glb blue:chair_blue.glb clear:chair_clear.glb chair.glb

  # Re-fold an already combined asset together with a new variant
  variant-meld meld chair.glb red:chair_red.glb chair_v2.glb

  # Sources from a bucket, output local
  variant-meld meld black:s3://assets/chair_black.glb blue:s3://assets/chair_blue.glb chair.glb`,
	Args: cobra.MinimumNArgs(2),
	RunE: runMeld,
}

func init() {
	meldCmd.Flags().BoolVarP(&forceOverwrite, "force", "f", false, "Overwrite the output file if it already exists")
	meldCmd.Flags().BoolVarP(&quietMeld, "quiet", "q", false, "Suppress per-fold progress output")
	meldCmd.Flags().BoolVarP(&verboseMeld, "verbose", "v", false, "Report per-tag texture sizes in the final summary")

	RootCmd.AddCommand(meldCmd)
}

func runMeld(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	l, err := meldLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	inputs := args[:len(args)-1]
	outputPath := args[len(args)-1]

	// Refuse to clobber a local output unless forced. Bucket writes
	// always overwrite; versioning belongs to the bucket.
	if !storage.IsBucketPath(outputPath) && !forceOverwrite {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("output %s already exists (use --force to overwrite)", outputPath)
		}
	}

	assets := newAssetIO(cfg)
	session := meld.NewSession()

	if !quietMeld {
		l.Info("Starting meld session",
			zap.String("session", session.ID()),
			zap.Int("sources", len(inputs)),
		)
	}

	for _, arg := range inputs {
		tag, path := splitSourceArg(arg)

		data, err := assets.read(ctx, path)
		if err != nil {
			return err
		}

		doc, err := glb.Decode(data)
		if err != nil {
			return fmt.Errorf("failed to decode %s: %w", path, err)
		}

		if err := session.Fold(tag, doc); err != nil {
			return fmt.Errorf("failed to fold %s: %w", path, err)
		}

		if !quietMeld {
			l.Info("Folded source",
				zap.String("path", path),
				zap.Strings("tags", session.Tags()),
				zap.String("source_size", humanize.Bytes(uint64(len(data)))),
			)
		}
	}

	out, err := session.Export()
	if err != nil {
		return fmt.Errorf("failed to encode combined asset: %w", err)
	}

	if err := assets.write(ctx, outputPath, out); err != nil {
		return err
	}

	profile, err := session.Summarize()
	if err != nil {
		return fmt.Errorf("failed to compute size profile: %w", err)
	}

	if !quietMeld {
		printSizeProfile(l, outputPath, session.Tags(), profile, verboseMeld)
	}
	return nil
}

// meldLogger builds the command logger, letting --quiet and --verbose
// override the configured level.
func meldLogger(cfg *config.Config) (*zap.Logger, error) {
	logCfg := cfg.Log
	if quietMeld {
		logCfg.Level = "warn"
	} else if verboseMeld {
		logCfg.Level = "debug"
	}
	return logger.New(&logCfg)
}

// printSizeProfile reports the combined asset's size statistics.
func printSizeProfile(l *zap.Logger, path string, tags []string, p meld.SizeProfile, perTag bool) {
	l.Info("Wrote combined asset",
		zap.String("path", path),
		zap.Strings("tags", tags),
		zap.String("total_size", humanize.Bytes(uint64(p.TotalBytes))),
		zap.String("texture_bytes", humanize.Bytes(uint64(p.TextureBytesTotal))),
		zap.String("texture_bytes_variational", humanize.Bytes(uint64(p.TextureBytesVariational))),
	)

	if perTag {
		// Report in fold order rather than map order
		for _, tag := range tags {
			l.Info("Per-tag texture size",
				zap.String("tag", tag),
				zap.String("size", humanize.Bytes(uint64(p.PerTagTextureBytes[tag]))),
			)
		}
	}
}
