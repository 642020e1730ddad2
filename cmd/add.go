package cmd

import (
	"context"
	"fmt"

	"github.com/kozaktomas/face-registry/internal/imaging"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <user-id> <image>",
	Short: "Add another sample image to an enrolled identity",
	Long: `Add another sample image to an enrolled identity.

Each additional sample contributes one more embedding to the matching
cache, which improves recognition across lighting and pose changes.

Example:
  face-registry add user_20250115_093042_1a2b3c4d alice2.jpg`,
	Args: cobra.ExactArgs(2),
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	userID := args[0]

	image, err := readImageFile(args[1])
	if err != nil {
		return err
	}

	reg, cfg, err := openRegistry()
	if err != nil {
		return err
	}

	image = imaging.PrepareProbe(image, cfg.Defaults.Imaging.MaxEdge)

	if err := reg.Augment(context.Background(), userID, image); err != nil {
		return fmt.Errorf("adding image: %w", err)
	}

	rec, err := reg.Get(userID)
	if err != nil {
		return err
	}
	fmt.Printf("Added image to %q (%s), %d image(s) total\n", rec.DisplayName, userID, len(rec.ImageRefs))
	return nil
}
