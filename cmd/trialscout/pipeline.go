package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/trialscout/pkg/types"
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline [query]",
	Short: "Group search results into a development pipeline view",
	Long: `Pipeline runs a search and organizes the resulting trials into a
phase-grouped development pipeline. With --image an AI-rendered landscape
diagram of the collection is written alongside.`,
	RunE: runPipeline,
}

func init() {
	pipelineCmd.Flags().String("image", "", "also render a landscape diagram to this file")

	rootCmd.AddCommand(pipelineCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := loadAppConfig()

	query := cfg.Session.DefaultQuery
	if len(args) > 0 {
		query = strings.Join(args, " ")
	}

	c, err := newCoordinator(ctx, cfg, os.Stderr)
	if err != nil {
		return err
	}
	if err := c.Commit(ctx, query, types.TrialFilters{}, types.PublicationFilters{}, types.SortRelevance); err != nil {
		return fmt.Errorf("%s", c.Session().Snapshot().Err)
	}

	if err := c.RunPipeline(ctx); err != nil {
		return err
	}

	snap := c.Session().Snapshot()
	if snap.Pipeline == nil {
		return fmt.Errorf("no pipeline view generated")
	}

	for _, phase := range snap.Pipeline.Phases {
		fmt.Fprintf(os.Stdout, "%s\n", phase.Name)
		for _, group := range phase.Groups {
			fmt.Fprintf(os.Stdout, "  %s — %s\n", group.Name, group.Description)
			for _, id := range group.TrialIDs {
				fmt.Fprintf(os.Stdout, "    %s\n", id)
			}
		}
		fmt.Fprintln(os.Stdout)
	}

	if imgPath, _ := cmd.Flags().GetString("image"); imgPath != "" {
		if err := c.RunArchitecture(ctx); err != nil {
			return err
		}
		img := c.Session().Snapshot().Architecture
		if img == nil {
			return fmt.Errorf("no diagram generated")
		}
		if err := os.WriteFile(imgPath, img.Data, 0o644); err != nil {
			return fmt.Errorf("writing diagram: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Diagram (%s) written to %s\n", img.MIMEType, imgPath)
	}
	return nil
}
