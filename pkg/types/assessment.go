// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Desk-rejection method labels.
const (
	MethodHeuristic      = "heuristic"
	MethodHeuristicModel = "heuristic+model"
)

// Signal is one named input to the desk-rejection decision. Score is in
// [0, 1] where higher means more reason to desk-reject.
type Signal struct {
	Name   string  `json:"name" yaml:"name"`
	Score  float64 `json:"score" yaml:"score"`
	Weight float64 `json:"weight" yaml:"weight"`
	Detail string  `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// DeskRejectionAssessment is the reject/proceed decision for a manuscript.
type DeskRejectionAssessment struct {
	ShouldDeskReject bool     `json:"should_desk_reject" yaml:"should_desk_reject"`
	Confidence       float64  `json:"confidence" yaml:"confidence"`
	CombinedScore    float64  `json:"combined_score" yaml:"combined_score"`
	Method           string   `json:"method" yaml:"method"`
	Summary          string   `json:"summary" yaml:"summary"`
	Signals          []Signal `json:"signals" yaml:"signals"`
}

// Signal returns the named signal and whether it is present.
func (a DeskRejectionAssessment) Signal(name string) (Signal, bool) {
	for _, s := range a.Signals {
		if s.Name == name {
			return s, true
		}
	}
	return Signal{}, false
}

// ReportScore is the quality breakdown of one referee report.
type ReportScore struct {
	Referee          string  `json:"referee" yaml:"referee"`
	Recommendation   string  `json:"recommendation,omitempty" yaml:"recommendation,omitempty"`
	WordCount        int     `json:"word_count" yaml:"word_count"`
	Constructiveness float64 `json:"constructiveness" yaml:"constructiveness"`
	Consistency      float64 `json:"consistency" yaml:"consistency"`
	Tone             float64 `json:"tone" yaml:"tone"`
	Quality          float64 `json:"quality" yaml:"quality"`
}

// Consensus summarizes agreement among two or more reviewers.
type Consensus struct {
	NReviewers int     `json:"n_reviewers" yaml:"n_reviewers"`
	Agreement  float64 `json:"agreement" yaml:"agreement"`
	Majority   string  `json:"majority,omitempty" yaml:"majority,omitempty"`
}

// ReportQualityResult is the assessment of all referee reports on a manuscript.
type ReportQualityResult struct {
	NReports       int           `json:"n_reports" yaml:"n_reports"`
	Reports        []ReportScore `json:"reports,omitempty" yaml:"reports,omitempty"`
	OverallQuality float64       `json:"overall_quality" yaml:"overall_quality"`
	Consensus      *Consensus    `json:"consensus,omitempty" yaml:"consensus,omitempty"`
}
