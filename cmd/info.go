package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <user-id>",
	Short: "Show the full record of an enrolled identity",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().Bool("json", false, "Output as JSON")
}

func runInfo(cmd *cobra.Command, args []string) error {
	jsonOutput := mustGetBool(cmd, "json")

	reg, _, err := openRegistry()
	if err != nil {
		return err
	}

	rec, err := reg.Get(args[0])
	if err != nil {
		return err
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(rec)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "User ID:\t%s\n", rec.UserID)
	fmt.Fprintf(w, "Name:\t%s\n", rec.DisplayName)
	fmt.Fprintf(w, "Created:\t%s\n", rec.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Images:\t%d\n", len(rec.ImageRefs))
	for _, ref := range rec.ImageRefs {
		fmt.Fprintf(w, "\t%s\n", ref)
	}
	if len(rec.Attributes) > 0 {
		fmt.Fprintf(w, "Attributes:\t\n")
		keys := make([]string, 0, len(rec.Attributes))
		for k := range rec.Attributes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "  %s:\t%s\n", k, rec.Attributes[k])
		}
	}
	w.Flush()
	return nil
}
