// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Suggested-referee statuses in the decision report.
const (
	SuggestedRecommended = "recommended"
	SuggestedConflict    = "conflict"
	SuggestedNotFound    = "not_found"
)

// JournalRef identifies the journal in a report.
type JournalRef struct {
	Code string `json:"code" yaml:"code"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// ManuscriptRef identifies the manuscript in a report.
type ManuscriptRef struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
}

// ReportMetadata records counts and how the report was produced.
type ReportMetadata struct {
	CandidatesFound        int      `json:"candidates_found" yaml:"candidates_found"`
	CleanCandidates        int      `json:"clean_candidates" yaml:"clean_candidates"`
	ConflictedCandidates   int      `json:"conflicted_candidates" yaml:"conflicted_candidates"`
	ResponseModelActive    bool     `json:"response_model_active" yaml:"response_model_active"`
	OutcomeModelActive     bool     `json:"outcome_model_active" yaml:"outcome_model_active"`
	CandidateSearchSkipped bool     `json:"candidate_search_skipped" yaml:"candidate_search_skipped"`
	States                 []string `json:"states" yaml:"states"`
	Degraded               []string `json:"degraded,omitempty" yaml:"degraded,omitempty"`
}

// DecisionReport is the persisted per-manuscript output of a pipeline run.
type DecisionReport struct {
	PipelineVersion        string                  `json:"pipeline_version" yaml:"pipeline_version"`
	GeneratedAt            time.Time               `json:"generated_at" yaml:"generated_at"`
	RunID                  string                  `json:"run_id" yaml:"run_id"`
	Journal                JournalRef              `json:"journal" yaml:"journal"`
	Manuscript             ManuscriptRef           `json:"manuscript" yaml:"manuscript"`
	DeskRejection          DeskRejectionAssessment `json:"desk_rejection" yaml:"desk_rejection"`
	RefereeCandidates      []Candidate             `json:"referee_candidates" yaml:"referee_candidates"`
	ConflictedCandidates   []Candidate             `json:"conflicted_candidates" yaml:"conflicted_candidates"`
	SuggestedRefereeStatus map[string]string       `json:"suggested_referee_status" yaml:"suggested_referee_status"`
	ReportQuality          ReportQualityResult     `json:"report_quality" yaml:"report_quality"`
	Metadata               ReportMetadata          `json:"metadata" yaml:"metadata"`
}

// FeedbackRecord is one human editorial decision appended to the feedback log.
type FeedbackRecord struct {
	Journal      string    `json:"journal"`
	ManuscriptID string    `json:"manuscript_id"`
	Decision     string    `json:"decision"`
	Referee      string    `json:"referee,omitempty"`
	Note         string    `json:"note,omitempty"`
	RunID        string    `json:"run_id,omitempty"`
	RecordedAt   time.Time `json:"recorded_at"`
}
