package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kozaktomas/face-registry/internal/imaging"
	"github.com/spf13/cobra"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll <image>",
	Short: "Enroll a new identity from a reference image",
	Long: `Enroll a new identity from a reference image.

The image is sent to the embedding service; exactly one reference face is
stored. The image file is copied into the registry data directory and the
metadata document is updated atomically.

Examples:
  # Enroll with a display name
  face-registry enroll alice.jpg --name "Alice"

  # Attach free-form attributes
  face-registry enroll alice.jpg --name "Alice" --attr note=colleague --attr team=infra

  # Output as JSON
  face-registry enroll alice.jpg --name "Alice" --json`,
	Args: cobra.ExactArgs(1),
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)

	enrollCmd.Flags().String("name", "", "Display name for the new identity (required)")
	enrollCmd.Flags().StringSlice("attr", nil, "Attribute in key=value form (can be specified multiple times)")
	enrollCmd.Flags().Bool("json", false, "Output as JSON")
	_ = enrollCmd.MarkFlagRequired("name")
}

// parseAttrFlags converts key=value flag values into an attribute map.
func parseAttrFlags(pairs []string) (map[string]string, error) {
	attrs := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid attribute %q, expected key=value", pair)
		}
		attrs[key] = value
	}
	return attrs, nil
}

func runEnroll(cmd *cobra.Command, args []string) error {
	name := mustGetString(cmd, "name")
	jsonOutput := mustGetBool(cmd, "json")

	if strings.TrimSpace(name) == "" {
		return errors.New("--name must not be empty")
	}

	attrs, err := parseAttrFlags(mustGetStringSlice(cmd, "attr"))
	if err != nil {
		return err
	}

	image, err := readImageFile(args[0])
	if err != nil {
		return err
	}

	reg, cfg, err := openRegistry()
	if err != nil {
		return err
	}

	image = imaging.PrepareProbe(image, cfg.Defaults.Imaging.MaxEdge)

	userID, err := reg.Enroll(context.Background(), image, name, attrs)
	if err != nil {
		return fmt.Errorf("enrolling: %w", err)
	}

	if jsonOutput {
		rec, err := reg.Get(userID)
		if err != nil {
			return err
		}
		return json.NewEncoder(os.Stdout).Encode(rec)
	}

	fmt.Printf("Enrolled %q with id %s\n", name, userID)
	return nil
}
