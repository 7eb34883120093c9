// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Process every manuscript awaiting referees",
	Long: `Batch scans <manuscripts_dir>/<JOURNAL>/ for every configured journal,
selects the manuscripts that still need referees under the journal's
platform rules, and writes a decision report for each. Manuscripts are
processed concurrently by --workers workers; a failing manuscript does not
stop the batch.`,
	RunE: runBatch,
}

func runBatch(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("workers") {
		cfg.Pipeline.Workers, _ = cmd.Flags().GetInt("workers")
	}
	if len(cfg.Journals) == 0 {
		return fmt.Errorf("no journals configured")
	}

	e, err := newEngine()
	if err != nil {
		return err
	}
	defer e.Close()

	summary, err := e.pipeline.Batch(context.Background(), os.Stdout)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d manuscript(s) failed: %w", summary.Failed, errFailures)
	}
	return nil
}

func init() {
	batchCmd.Flags().Int("workers", 0, "manuscripts processed concurrently (default from config)")
	rootCmd.AddCommand(batchCmd)
}
