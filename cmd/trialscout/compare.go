package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/trialscout/pkg/types"
)

var compareCmd = &cobra.Command{
	Use:   "compare [query]",
	Short: "Compare 2-4 trials side by side",
	Long: `Compare runs a search, then builds a dimension-by-dimension comparison
matrix for the trials named by --nct. All named trials must appear in the
search results.`,
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().String("nct", "", "registry ids to compare (comma-separated, 2 to 4)")
	_ = compareCmd.MarkFlagRequired("nct")

	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := loadAppConfig()

	query := cfg.Session.DefaultQuery
	if len(args) > 0 {
		query = strings.Join(args, " ")
	}
	nctFlag, _ := cmd.Flags().GetString("nct")
	nctIDs := splitList(nctFlag)

	c, err := newCoordinator(ctx, cfg, os.Stderr)
	if err != nil {
		return err
	}
	if err := c.Commit(ctx, query, types.TrialFilters{}, types.PublicationFilters{}, types.SortRelevance); err != nil {
		return fmt.Errorf("%s", c.Session().Snapshot().Err)
	}

	if err := c.RunComparison(ctx, nctIDs); err != nil {
		return err
	}

	snap := c.Session().Snapshot()
	if snap.Comparison == nil {
		return fmt.Errorf("no comparison generated")
	}

	matrix := snap.Comparison
	fmt.Fprintf(os.Stdout, "%-20s", "")
	for _, h := range matrix.Headers {
		fmt.Fprintf(os.Stdout, "  %-30s", h)
	}
	fmt.Fprintln(os.Stdout)
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 20+32*len(matrix.Headers)))

	for _, row := range matrix.Rows {
		fmt.Fprintf(os.Stdout, "%-20s", row.Label)
		for _, v := range row.Values {
			if len(v) > 30 {
				v = v[:27] + "..."
			}
			fmt.Fprintf(os.Stdout, "  %-30s", v)
		}
		fmt.Fprintln(os.Stdout)
	}

	if matrix.Summary != "" {
		fmt.Fprintf(os.Stdout, "\n%s\n", matrix.Summary)
	}
	return nil
}
