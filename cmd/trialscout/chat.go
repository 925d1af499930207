package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/trialscout/pkg/types"
)

var chatCmd = &cobra.Command{
	Use:   "chat <question...>",
	Short: "Ask a question about the current search results",
	Long: `Chat runs a search (--query, or the configured default) and answers a
free-text question grounded in the retrieved trials.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().String("query", "", "search query establishing the result context (default: configured default query)")

	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide a question")
	}
	question := strings.Join(args, " ")

	ctx := cmd.Context()
	cfg := loadAppConfig()

	query := cfg.Session.DefaultQuery
	if q, _ := cmd.Flags().GetString("query"); q != "" {
		query = q
	}

	c, err := newCoordinator(ctx, cfg, os.Stderr)
	if err != nil {
		return err
	}
	if err := c.Commit(ctx, query, types.TrialFilters{}, types.PublicationFilters{}, types.SortRelevance); err != nil {
		return fmt.Errorf("%s", c.Session().Snapshot().Err)
	}

	reply, err := c.Ask(ctx, question)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, reply)
	return nil
}
