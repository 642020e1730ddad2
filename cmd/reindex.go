package cmd

import (
	"context"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the embedding cache from the stored images",
	Long: `Rebuild the embedding cache from the stored images.

Every stored image is re-read and re-encoded by the embedding service.
Images that fail extraction (no face found, corrupt file, service error)
are skipped with a warning; a single bad image never aborts the rebuild.

Run this after changing the embedding service or its model, since cached
embeddings from different models are not comparable.`,
	Args: cobra.NoArgs,
	RunE: runReindex,
}

func init() {
	rootCmd.AddCommand(reindexCmd)

	reindexCmd.Flags().Bool("quiet", false, "Suppress the progress bar")
}

func runReindex(cmd *cobra.Command, args []string) error {
	quiet := mustGetBool(cmd, "quiet")

	reg, _, err := openRegistry()
	if err != nil {
		return err
	}

	total := reg.AssetCount()
	if total == 0 {
		fmt.Println("No stored images to index")
		return nil
	}

	var bar *progressbar.ProgressBar
	var onAsset func()
	if !quiet {
		bar = progressbar.NewOptions(total,
			progressbar.OptionSetDescription("Rebuilding cache"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("images"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionFullWidth(),
		)
		onAsset = func() { _ = bar.Add(1) }
	}

	skipped := reg.Reindex(context.Background(), onAsset)
	if bar != nil {
		_ = bar.Finish()
		fmt.Println()
	}

	fmt.Printf("Cache rebuilt: %d embedding(s), %d image(s) skipped\n", reg.CacheLen(), skipped)
	return nil
}
