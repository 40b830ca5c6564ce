package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/KaramelBytes/pulseboard/internal/dataset"
	"github.com/KaramelBytes/pulseboard/internal/insight"
	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Show the canonical columns and the header aliases that map onto them",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		// Sample-schema mode: an empty placeholder dataset.
		rep := insight.BuildReport(dataset.Empty("sample"), insight.ReportOptions{})
		fmt.Fprintf(out, "Rows: %s | Columns: %d\n\n", insight.FormatCount(rep.Rows), rep.Cols)

		fmt.Fprintln(out, "[NUMERIC COLUMNS]")
		fmt.Fprintln(out, strings.Join(dataset.NumericColumns, ", "))
		fmt.Fprintln(out, "\n[CATEGORICAL COLUMNS]")
		fmt.Fprintln(out, strings.Join(dataset.CategoricalColumns, ", "))
		fmt.Fprintln(out, "\n[FILTERS]")
		fmt.Fprintln(out, strings.Join(dataset.FilterColumns, ", "))

		fmt.Fprintln(out, "\n[ALIASES]")
		aliases := dataset.Aliases()
		keys := make([]string, 0, len(aliases))
		for k := range aliases {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(out, "%s -> %s\n", k, aliases[k])
		}
		fmt.Fprintf(out, "\nColumns whose header starts with %q are dropped.\n", "Unnamed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
