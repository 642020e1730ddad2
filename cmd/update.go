package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update <user-id>",
	Short: "Update attributes of an enrolled identity",
	Long: `Update attributes of an enrolled identity.

Keys are merged into the existing attribute map; other keys are kept.

Example:
  face-registry update user_20250115_093042_1a2b3c4d --attr note="moved to Hanoi" --attr team=platform`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)

	updateCmd.Flags().StringSlice("attr", nil, "Attribute in key=value form (can be specified multiple times)")
	updateCmd.Flags().Bool("json", false, "Output the updated record as JSON")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	userID := args[0]
	jsonOutput := mustGetBool(cmd, "json")

	attrs, err := parseAttrFlags(mustGetStringSlice(cmd, "attr"))
	if err != nil {
		return err
	}
	if len(attrs) == 0 {
		return errors.New("at least one --attr is required")
	}

	reg, _, err := openRegistry()
	if err != nil {
		return err
	}

	if err := reg.UpdateAttributes(userID, attrs); err != nil {
		return fmt.Errorf("updating: %w", err)
	}

	rec, err := reg.Get(userID)
	if err != nil {
		return err
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(rec)
	}
	fmt.Printf("Updated %d attribute(s) of %q (%s)\n", len(attrs), rec.DisplayName, userID)
	return nil
}
