package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:   "remove <user-id>",
	Short: "Remove an enrolled identity and all its stored images",
	Long: `Remove an enrolled identity.

Deletes every stored image of the user, the user's image directory and
the metadata record, then rebuilds the matching cache. Image files that
are already missing on disk are tolerated.

Examples:
  face-registry remove user_20250115_093042_1a2b3c4d
  face-registry remove user_20250115_093042_1a2b3c4d --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func init() {
	rootCmd.AddCommand(removeCmd)

	removeCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
}

func runRemove(cmd *cobra.Command, args []string) error {
	userID := args[0]
	skipConfirm := mustGetBool(cmd, "yes")

	reg, _, err := openRegistry()
	if err != nil {
		return err
	}

	rec, err := reg.Get(userID)
	if err != nil {
		return err
	}

	if !skipConfirm {
		fmt.Printf("Remove %q (%s) and %d stored image(s)? [y/N] ", rec.DisplayName, userID, len(rec.ImageRefs))
		answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Println("Aborted")
			return nil
		}
	}

	if err := reg.Remove(context.Background(), userID); err != nil {
		return fmt.Errorf("removing: %w", err)
	}

	fmt.Printf("Removed %q (%s)\n", rec.DisplayName, userID)
	return nil
}
