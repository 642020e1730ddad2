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

var identifyCmd = &cobra.Command{
	Use:   "identify <image>",
	Short: "Identify faces in an image against the enrolled set",
	Long: `Identify faces in an image against the enrolled set.

Every face located in the image is compared to all cached embeddings
using Euclidean distance. Faces within the match threshold are labeled
with the enrolled display name and a confidence percentage; all others
are reported as Unrecognized.

Examples:
  face-registry identify group_photo.jpg
  face-registry identify group_photo.jpg --json`,
	Args: cobra.ExactArgs(1),
	RunE: runIdentify,
}

func init() {
	rootCmd.AddCommand(identifyCmd)

	identifyCmd.Flags().Bool("json", false, "Output as JSON")
}

// IdentifyOutput represents the JSON output structure for identify.
type IdentifyOutput struct {
	Faces []registry.Match `json:"faces"`
	Count int              `json:"count"`
}

func runIdentify(cmd *cobra.Command, args []string) error {
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

	matches, err := reg.Identify(context.Background(), image)
	if err != nil {
		return fmt.Errorf("identifying: %w", err)
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(IdentifyOutput{Faces: matches, Count: len(matches)})
	}

	if len(matches) == 0 {
		fmt.Println("No faces located in the image")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCONFIDENCE\tDISTANCE\tBBOX")
	fmt.Fprintln(w, "----\t----------\t--------\t----")
	for _, m := range matches {
		if m.Recognized {
			fmt.Fprintf(w, "%s\t%d%%\t%.4f\t(%.0f,%.0f)-(%.0f,%.0f)\n",
				m.DisplayName, m.Confidence, m.Distance, m.BBox.X1, m.BBox.Y1, m.BBox.X2, m.BBox.Y2)
		} else {
			fmt.Fprintf(w, "%s\t-\t-\t(%.0f,%.0f)-(%.0f,%.0f)\n",
				m.DisplayName, m.BBox.X1, m.BBox.Y1, m.BBox.X2, m.BBox.Y2)
		}
	}
	w.Flush()
	return nil
}
