// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/pdiddy/referee-engine/internal/feedback"
	"github.com/pdiddy/referee-engine/pkg/types"
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Record and list editorial decisions",
	Long: `Feedback manages the append-only log of human editorial decisions. The
training commands read it to override recorded outcomes: a manuscript-level
decision ("accept", "desk reject") relabels the manuscript, and a decision
with --referee ("agreed", "declined") relabels that invitation.`,
}

var feedbackRecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Append one decision to the feedback log",
	RunE:  runFeedbackRecord,
}

func runFeedbackRecord(cmd *cobra.Command, args []string) error {
	journal, _ := cmd.Flags().GetString("journal")
	id, _ := cmd.Flags().GetString("manuscript")
	decision, _ := cmd.Flags().GetString("decision")
	referee, _ := cmd.Flags().GetString("referee")
	note, _ := cmd.Flags().GetString("note")
	runID, _ := cmd.Flags().GetString("run-id")

	log := feedback.Open(cfg.Pipeline.FeedbackFile, logger.Named("feedback"))
	err := log.Append(types.FeedbackRecord{
		Journal:      strings.ToUpper(journal),
		ManuscriptID: id,
		Decision:     decision,
		Referee:      referee,
		Note:         note,
		RunID:        runID,
	})
	if err != nil {
		return err
	}
	fmt.Printf("recorded %s/%s: %s\n", strings.ToUpper(journal), id, decision)
	return nil
}

var feedbackListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded decisions",
	RunE:  runFeedbackList,
}

func runFeedbackList(cmd *cobra.Command, args []string) error {
	journal, _ := cmd.Flags().GetString("journal")
	asJSON, _ := cmd.Flags().GetBool("json")

	records, err := feedback.Open(cfg.Pipeline.FeedbackFile, logger.Named("feedback")).ReadAll()
	if err != nil {
		return err
	}
	var out []types.FeedbackRecord
	for _, r := range records {
		if journal == "" || strings.EqualFold(r.Journal, journal) {
			out = append(out, r)
		}
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	if len(out) == 0 {
		fmt.Println("No decisions recorded.")
		return nil
	}
	for _, r := range out {
		who := ""
		if r.Referee != "" {
			who = " referee=" + r.Referee
		}
		fmt.Printf("%s  %s/%s  %s%s\n", r.RecordedAt.Format("2006-01-02 15:04"), r.Journal, r.ManuscriptID, r.Decision, who)
	}
	fmt.Printf("\n%d decision(s)\n", len(out))
	return nil
}

func init() {
	feedbackRecordCmd.Flags().String("journal", "", "journal code (required)")
	feedbackRecordCmd.Flags().String("manuscript", "", "manuscript ID (required)")
	feedbackRecordCmd.Flags().String("decision", "", "decision, e.g. accept, desk reject, agreed, declined (required)")
	feedbackRecordCmd.Flags().String("referee", "", "referee name for an invitation-level decision")
	feedbackRecordCmd.Flags().String("note", "", "free-text note")
	feedbackRecordCmd.Flags().String("run-id", "", "run ID of the report the decision refers to")
	feedbackRecordCmd.MarkFlagRequired("journal")
	feedbackRecordCmd.MarkFlagRequired("manuscript")
	feedbackRecordCmd.MarkFlagRequired("decision")

	feedbackListCmd.Flags().String("journal", "", "only list decisions for this journal")
	feedbackListCmd.Flags().Bool("json", false, "output as JSON")

	feedbackCmd.AddCommand(feedbackRecordCmd)
	feedbackCmd.AddCommand(feedbackListCmd)

	rootCmd.AddCommand(feedbackCmd)
}
