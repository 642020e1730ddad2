package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/kozaktomas/face-registry/internal/registry"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List enrolled identities",
	Long: `List enrolled identities in stored order.

The optional --search filter matches display names case- and
diacritic-insensitively, so "huong" finds "Hương".

Examples:
  face-registry list
  face-registry list --search huong
  face-registry list --json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().String("search", "", "Filter by display name")
	listCmd.Flags().Bool("json", false, "Output as JSON")
}

// ListOutput represents the JSON output structure for list.
type ListOutput struct {
	Users []registry.ListEntry `json:"users"`
	Count int                  `json:"count"`
}

func runList(cmd *cobra.Command, args []string) error {
	search := mustGetString(cmd, "search")
	jsonOutput := mustGetBool(cmd, "json")

	reg, _, err := openRegistry()
	if err != nil {
		return err
	}

	var users []registry.ListEntry
	if search != "" {
		users = reg.SearchByName(search)
	} else {
		users = reg.ListAll()
	}

	if jsonOutput {
		if users == nil {
			users = []registry.ListEntry{}
		}
		return json.NewEncoder(os.Stdout).Encode(ListOutput{Users: users, Count: len(users)})
	}

	if len(users) == 0 {
		fmt.Println("No enrolled identities")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "USER\tNAME")
	fmt.Fprintln(w, "----\t----")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\n", u.UserID, u.DisplayName)
	}
	w.Flush()
	return nil
}
