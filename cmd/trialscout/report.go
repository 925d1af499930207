package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/trialscout/internal/report"
	"github.com/pdiddy/trialscout/pkg/types"
)

var reportCmd = &cobra.Command{
	Use:   "report [query]",
	Short: "Generate a deep-metrics report for one trial",
	Long: `Report runs a search, then generates the fixed ten-section audit for the
trial named by --nct. With --persona the sections emphasized for that reader
are marked in the output.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().String("nct", "", "registry id of the trial to audit (required)")
	reportCmd.Flags().String("persona", "", "reader persona: clinician, investor, researcher, or patient")
	reportCmd.Flags().String("out", "", "write the report as YAML to this file")
	_ = reportCmd.MarkFlagRequired("nct")

	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := loadAppConfig()

	query := cfg.Session.DefaultQuery
	if len(args) > 0 {
		query = strings.Join(args, " ")
	}
	nctID, _ := cmd.Flags().GetString("nct")

	c, err := newCoordinator(ctx, cfg, os.Stderr)
	if err != nil {
		return err
	}
	if err := c.Commit(ctx, query, types.TrialFilters{}, types.PublicationFilters{}, types.SortRelevance); err != nil {
		return fmt.Errorf("%s", c.Session().Snapshot().Err)
	}

	if err := c.SelectTrial(nctID); err != nil {
		return fmt.Errorf("%s: %w (is it in the search results?)", nctID, err)
	}
	if err := c.RunAudit(ctx, nctID); err != nil {
		return err
	}

	snap := c.Session().Snapshot()
	if snap.DeepReport == nil {
		return fmt.Errorf("no report generated for %s", nctID)
	}

	if out, _ := cmd.Flags().GetString("out"); out != "" {
		data, err := yaml.Marshal(snap.DeepReport)
		if err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Report written to %s\n", out)
		return nil
	}

	highlighted := map[string]bool{}
	if p, _ := cmd.Flags().GetString("persona"); p != "" {
		for _, key := range report.Highlights(report.Persona(p)) {
			highlighted[key] = true
		}
	}

	fmt.Fprintf(os.Stdout, "Deep report: %s\n\n", snap.DeepReport.NCTID)
	for _, section := range snap.DeepReport.Sections() {
		marker := ""
		if highlighted[section.Key] {
			marker = " *"
		}
		fmt.Fprintf(os.Stdout, "## %s%s\n%s\n\n", section.Key, marker, section.Body)
	}
	return nil
}
