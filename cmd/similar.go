package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/kozaktomas/face-registry/internal/imaging"
	"github.com/kozaktomas/face-registry/internal/registry"
	"github.com/spf13/cobra"
)

var similarCmd = &cobra.Command{
	Use:   "similar <image>",
	Short: "Find enrolled faces similar to a probe image",
	Long: `Find enrolled faces similar to the first face in a probe image.

Unlike identify, this returns the nearest neighbors regardless of the
match threshold, with their distances. Lower distance means more similar.

Examples:
  face-registry similar probe.jpg
  face-registry similar probe.jpg --limit 5 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runSimilar,
}

func init() {
	rootCmd.AddCommand(similarCmd)

	similarCmd.Flags().Int("limit", 10, "Maximum number of results")
	similarCmd.Flags().Bool("json", false, "Output as JSON")
}

// SimilarOutput represents the JSON output structure for similar.
type SimilarOutput struct {
	Results []registry.SimilarFace `json:"results"`
	Count   int                    `json:"count"`
}

func runSimilar(cmd *cobra.Command, args []string) error {
	limit := mustGetInt(cmd, "limit")
	jsonOutput := mustGetBool(cmd, "json")

	image, err := readImageFile(args[0])
	if err != nil {
		return err
	}

	reg, cfg, err := openRegistry()
	if err != nil {
		return err
	}

	image = imaging.PrepareProbe(image, cfg.Defaults.Imaging.MaxEdge)

	results, err := reg.FindSimilar(context.Background(), image, limit)
	if err != nil {
		return fmt.Errorf("searching: %w", err)
	}

	if jsonOutput {
		if results == nil {
			results = []registry.SimilarFace{}
		}
		return json.NewEncoder(os.Stdout).Encode(SimilarOutput{Results: results, Count: len(results)})
	}

	if len(results) == 0 {
		fmt.Println("No enrolled faces to compare against")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "USER\tNAME\tDISTANCE")
	fmt.Fprintln(w, "----\t----\t--------")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%.4f\n", r.UserID, r.DisplayName, r.Distance)
	}
	w.Flush()
	return nil
}
