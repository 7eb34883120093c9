// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/pdiddy/referee-engine/internal/manuscripts"
	"github.com/pdiddy/referee-engine/internal/pipeline"
	"github.com/pdiddy/referee-engine/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run <manuscript-file>",
	Short: "Assess one manuscript and write its decision report",
	Long: `Run loads one manuscript record (JSON or YAML), assesses desk rejection,
searches for referee candidates, removes conflicts of interest, and writes
the decision report to <reports_dir>/<JOURNAL>/<manuscript>.json.

With --decision, the editor's final decision is appended to the feedback
log after the report is written, tagged with the run ID.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	m, err := manuscripts.Load(args[0])
	if err != nil {
		return err
	}
	if journal, _ := cmd.Flags().GetString("journal"); journal != "" {
		m.JournalCode = journal
	}
	if m.JournalCode == "" {
		return fmt.Errorf("%s has no journal_code; pass --journal", args[0])
	}

	e, err := newEngine()
	if err != nil {
		return err
	}
	defer e.Close()

	report, path, err := e.pipeline.Run(context.Background(), m, pipeline.NewRunID())
	if err != nil {
		return err
	}

	if decision, _ := cmd.Flags().GetString("decision"); decision != "" {
		note, _ := cmd.Flags().GetString("note")
		e.pipeline.RecordDecision(types.FeedbackRecord{
			Journal:      m.JournalCode,
			ManuscriptID: m.ID,
			Decision:     decision,
			Note:         note,
			RunID:        report.RunID,
		})
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	printReport(report, path)
	return nil
}

func printReport(r types.DecisionReport, path string) {
	verdict := "proceed to review"
	if r.DeskRejection.ShouldDeskReject {
		verdict = "desk reject"
	}
	fmt.Printf("%s  %s\n", r.Manuscript.ID, r.Manuscript.Title)
	fmt.Printf("decision: %s (confidence %.2f, %s)\n", verdict, r.DeskRejection.Confidence, r.DeskRejection.Method)
	fmt.Printf("  %s\n", r.DeskRejection.Summary)

	if r.Metadata.CandidateSearchSkipped {
		fmt.Println("\ncandidate search skipped")
	} else {
		fmt.Printf("\n%d candidate(s), %d conflicted\n", len(r.RefereeCandidates), len(r.ConflictedCandidates))
		for _, c := range r.RefereeCandidates {
			fmt.Printf("  %2d. %-30s  %.3f  h=%-3d %s\n", c.Rank, c.Name, c.RelevanceScore, c.EffectiveHIndex(), c.Source)
		}
		for _, c := range r.ConflictedCandidates {
			fmt.Printf("   x  %-30s  %s\n", c.Name, strings.Join(c.Conflicts, "; "))
		}
	}
	suggested := make([]string, 0, len(r.SuggestedRefereeStatus))
	for name := range r.SuggestedRefereeStatus {
		suggested = append(suggested, name)
	}
	sort.Strings(suggested)
	for _, name := range suggested {
		fmt.Printf("suggested %s: %s\n", name, r.SuggestedRefereeStatus[name])
	}
	if len(r.Metadata.Degraded) > 0 {
		fmt.Printf("degraded: %s\n", strings.Join(r.Metadata.Degraded, ", "))
	}
	fmt.Printf("\nreport: %s\n", path)
}

func init() {
	runCmd.Flags().String("journal", "", "journal code, overriding the record's journal_code")
	runCmd.Flags().String("decision", "", "record the editor's decision in the feedback log")
	runCmd.Flags().String("note", "", "note stored with --decision")
	runCmd.Flags().Bool("json", false, "print the report as JSON")

	rootCmd.AddCommand(runCmd)
}
