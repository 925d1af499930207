package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/trialscout/internal/facet"
	"github.com/pdiddy/trialscout/internal/session"
	"github.com/pdiddy/trialscout/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the trial registry and the literature",
	Long: `Search expands the query through the optimizer, retrieves registry trials
and literature publications in parallel, and prints both result sets. Relevance
scores are attached by a background pass; use --wait-scores to block until they
arrive.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("status", "", "registry status filter (comma-separated, e.g. RECRUITING,COMPLETED)")
	searchCmd.Flags().String("phase", "", "registry phase filter (comma-separated, e.g. PHASE2,PHASE3)")
	searchCmd.Flags().String("journal", "", "literature journal filter")
	searchCmd.Flags().String("author", "", "literature author filter")
	searchCmd.Flags().String("from", "", "publication date range start (YYYY-MM-DD)")
	searchCmd.Flags().String("to", "", "publication date range end (YYYY-MM-DD)")
	searchCmd.Flags().String("sort", "relevance", "global sort order: relevance or newest")
	searchCmd.Flags().String("filter-text", "", "local text filter over trial title, id, and sponsor")
	searchCmd.Flags().Int("min-enrollment", 0, "local minimum enrollment filter")
	searchCmd.Flags().Bool("industry-only", false, "exclude university and hospital sponsors")
	searchCmd.Flags().String("sort-by", "date", "local sort key under newest order: date, phase, or title")
	searchCmd.Flags().Bool("wait-scores", false, "wait for the background relevance pass before printing")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := loadAppConfig()

	query := cfg.Session.DefaultQuery
	if len(args) > 0 {
		query = strings.Join(args, " ")
	}

	tf, pf, order, err := filtersFromFlags(cmd)
	if err != nil {
		return err
	}

	c, err := newCoordinator(ctx, cfg, os.Stderr)
	if err != nil {
		return err
	}

	if err := c.Commit(ctx, query, tf, pf, order); err != nil {
		snap := c.Session().Snapshot()
		return fmt.Errorf("%s", snap.Err)
	}

	if wait, _ := cmd.Flags().GetBool("wait-scores"); wait {
		waitForScores(c.Session(), 60*time.Second)
	}

	snap := c.Session().Snapshot()
	facets := facet.TrialFacets{SortBy: facet.ByDate}
	facets.Text, _ = cmd.Flags().GetString("filter-text")
	facets.EnrollmentMin, _ = cmd.Flags().GetInt("min-enrollment")
	facets.IndustryOnly, _ = cmd.Flags().GetBool("industry-only")
	if key, _ := cmd.Flags().GetString("sort-by"); key != "" {
		facets.SortBy = facet.SecondaryKey(key)
	}

	trials := facet.VisibleTrials(snap.Trials, facets, snap.SortOrder)
	pubs := facet.VisiblePublications(snap.Publications, facets.Text)

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Profile      *types.SearchProfile `json:"profile"`
			Trials       []types.Trial        `json:"trials"`
			Publications []types.Publication  `json:"publications"`
		}{snap.Profile, trials, pubs})
	}

	if snap.Profile != nil && snap.Profile.SuggestedQuery != query {
		fmt.Fprintf(os.Stderr, "Optimized query: %s\n", snap.Profile.SuggestedQuery)
	}
	formatTrialTable(trials, os.Stdout)
	fmt.Fprintln(os.Stdout)
	formatPublicationTable(pubs, os.Stdout)
	return nil
}

// filtersFromFlags parses the server-side filter and sort flags.
func filtersFromFlags(cmd *cobra.Command) (types.TrialFilters, types.PublicationFilters, types.SortOrder, error) {
	var tf types.TrialFilters
	var pf types.PublicationFilters

	if v, _ := cmd.Flags().GetString("status"); v != "" {
		tf.Statuses = splitList(v)
	}
	if v, _ := cmd.Flags().GetString("phase"); v != "" {
		tf.Phases = splitList(v)
	}
	pf.Journal, _ = cmd.Flags().GetString("journal")
	pf.Author, _ = cmd.Flags().GetString("author")

	if v, _ := cmd.Flags().GetString("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return tf, pf, "", fmt.Errorf("invalid --from date %q (want YYYY-MM-DD)", v)
		}
		pf.DateFrom = t
	}
	if v, _ := cmd.Flags().GetString("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return tf, pf, "", fmt.Errorf("invalid --to date %q (want YYYY-MM-DD)", v)
		}
		pf.DateTo = t
	}

	sortFlag, _ := cmd.Flags().GetString("sort")
	var order types.SortOrder
	switch sortFlag {
	case "relevance":
		order = types.SortRelevance
	case "newest":
		order = types.SortNewest
	default:
		return tf, pf, "", fmt.Errorf("invalid --sort %q (want relevance or newest)", sortFlag)
	}
	return tf, pf, order, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// waitForScores polls the session until at least one entity carries a
// relevance score or the deadline passes. Best effort: an enrichment failure
// is invisible, so the deadline is the only exit in that case.
func waitForScores(s *session.Session, limit time.Duration) {
	deadline := time.Now().Add(limit)
	for time.Now().Before(deadline) {
		snap := s.Snapshot()
		for _, t := range snap.Trials {
			if t.RelevanceScore != nil {
				return
			}
		}
		for _, p := range snap.Publications {
			if p.RelevanceScore != nil {
				return
			}
		}
		if len(snap.Trials) == 0 && len(snap.Publications) == 0 {
			return
		}
		time.Sleep(250 * time.Millisecond)
	}
}

func formatTrialTable(trials []types.Trial, w io.Writer) {
	if len(trials) == 0 {
		fmt.Fprintln(w, "No trials found.")
		return
	}

	fmt.Fprintf(w, "%-12s  %-50s  %-20s  %-8s  %-6s  %s\n",
		"NCT ID", "Title", "Status", "Phase", "Score", "Sponsor")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for _, t := range trials {
		title := t.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		phase := ""
		if len(t.Phases) > 0 {
			phase = t.Phases[0]
		}
		score := "-"
		if t.RelevanceScore != nil {
			score = fmt.Sprintf("%d", *t.RelevanceScore)
		}
		fmt.Fprintf(w, "%-12s  %-50s  %-20s  %-8s  %-6s  %s\n",
			t.NCTID, title, t.Status, phase, score, t.Sponsor)
	}
	fmt.Fprintf(w, "\n%d trials\n", len(trials))
}

func formatPublicationTable(pubs []types.Publication, w io.Writer) {
	if len(pubs) == 0 {
		fmt.Fprintln(w, "No publications found.")
		return
	}

	fmt.Fprintf(w, "%-10s  %-55s  %-25s  %-4s  %s\n",
		"PMID", "Title", "Journal", "Year", "Score")
	fmt.Fprintln(w, strings.Repeat("-", 105))

	for _, p := range pubs {
		title := p.Title
		if len(title) > 55 {
			title = title[:52] + "..."
		}
		year := ""
		if !p.PubDate.IsZero() {
			year = fmt.Sprintf("%d", p.PubDate.Year())
		}
		score := "-"
		if p.RelevanceScore != nil {
			score = fmt.Sprintf("%d", *p.RelevanceScore)
		}
		fmt.Fprintf(w, "%-10s  %-55s  %-25s  %-4s  %s\n",
			p.PMID, title, p.Journal, year, score)
	}
	fmt.Fprintf(w, "\n%d publications\n", len(pubs))
}
