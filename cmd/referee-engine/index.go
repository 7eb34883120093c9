// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/pdiddy/referee-engine/internal/embed"
	"github.com/pdiddy/referee-engine/internal/expertise"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build and query the expertise index",
	Long: `Index manages the expertise index: the deduplicated referees of each
journal's historical manuscripts, stored in SQLite with FTS5 over topics
and an HNSW vector index for semantic search.`,
}

// --- build subcommand ---

var indexBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Rebuild the expertise index from <history_dir>/<JOURNAL>/",
	Long: `Build reads every historical manuscript of the configured journals (or
those named with --journal), deduplicates the referees, and replaces the
index contents. Rebuilding over the same corpus yields the same index.`,
	RunE: runIndexBuild,
}

func runIndexBuild(cmd *cobra.Command, args []string) error {
	journals, _ := cmd.Flags().GetStringSlice("journal")
	if len(journals) == 0 {
		for _, j := range cfg.Journals {
			journals = append(journals, j.Code)
		}
	}
	if len(journals) == 0 {
		return fmt.Errorf("no journals configured; pass --journal")
	}

	idx, err := expertise.Open(cfg.Expertise, embed.New(cfg.Embedding), logger.Named("expertise"))
	if err != nil {
		return err
	}
	defer idx.Close()

	summary, err := idx.Build(context.Background(), journals, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d history file(s) failed: %w", summary.Failed, errFailures)
	}
	return nil
}

// --- query subcommand ---

var indexQueryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Search the expertise index",
	Long: `Query ranks indexed referees by semantic similarity to the text. With
--topic, it runs a full-text phrase search over referee topics instead.`,
	RunE: runIndexQuery,
}

func runIndexQuery(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	topic, _ := cmd.Flags().GetString("topic")
	if text == "" && topic == "" {
		return fmt.Errorf("query text or --topic required")
	}
	limit, _ := cmd.Flags().GetInt("limit")
	asJSON, _ := cmd.Flags().GetBool("json")

	idx, err := expertise.Open(cfg.Expertise, embed.New(cfg.Embedding), logger.Named("expertise"))
	if err != nil {
		return err
	}
	defer idx.Close()

	var hits []expertise.Hit
	if topic != "" {
		entries, err := idx.SearchTopics(context.Background(), topic, limit)
		if err != nil {
			return err
		}
		for _, e := range entries {
			hits = append(hits, expertise.Hit{Entry: e})
		}
	} else {
		hits = idx.Search(context.Background(), text, limit)
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(hits)
	}
	if len(hits) == 0 {
		fmt.Println("No referees found.")
		return nil
	}
	for i, h := range hits {
		fmt.Printf("%2d. %-30s  %.3f  reviews=%-3d %s\n", i+1, h.Entry.Name, h.Score, h.Entry.ReviewCount,
			strings.Join(h.Entry.Venues, ","))
		if len(h.Entry.Topics) > 0 {
			fmt.Printf("    %s\n", strings.Join(h.Entry.Topics, "; "))
		}
	}
	fmt.Printf("\n%d referee(s) of %d indexed\n", len(hits), idx.Len())
	return nil
}

func init() {
	indexBuildCmd.Flags().StringSlice("journal", nil, "journal code to index (repeatable; default: all configured)")

	indexQueryCmd.Flags().String("topic", "", "full-text phrase search over topics")
	indexQueryCmd.Flags().Int("limit", 20, "maximum results")
	indexQueryCmd.Flags().Bool("json", false, "output results as JSON")

	indexCmd.AddCommand(indexBuildCmd)
	indexCmd.AddCommand(indexQueryCmd)

	rootCmd.AddCommand(indexCmd)
}
