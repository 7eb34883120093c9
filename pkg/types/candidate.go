// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// Candidate sources.
const (
	SourceExpertiseIndex  = "expertise_index"
	SourceOpenAlex        = "openalex"
	SourceSemanticScholar = "semantic_scholar"
	SourceSuggested       = "author_suggested"
)

// Candidate is a potential referee for one manuscript. It is created by the
// candidate finder, annotated by the conflict detector, and discarded after
// the report is assembled.
type Candidate struct {
	Person `yaml:",inline"`

	// Profile is the enriched bibliographic profile, empty when unresolved.
	Profile EnrichedProfile `json:"profile" yaml:"profile"`

	// Topics are the candidate's known topics (historical or catalog).
	Topics []string `json:"topics,omitempty" yaml:"topics,omitempty"`

	// RelevanceScore is the combined relevance in [0, 1].
	RelevanceScore float64 `json:"relevance_score" yaml:"relevance_score"`

	// TopicOverlap is the lexical keyword/topic overlap in [0, 1].
	TopicOverlap float64 `json:"topic_overlap" yaml:"topic_overlap"`

	// Similarity is the semantic similarity in [0, 1].
	Similarity float64 `json:"similarity" yaml:"similarity"`

	// ResponseProbability is the predicted acceptance probability, nil when
	// no response model contributed.
	ResponseProbability *float64 `json:"response_probability,omitempty" yaml:"response_probability,omitempty"`

	// Source lists the subsystem(s) that produced the candidate, comma separated.
	Source string `json:"source" yaml:"source"`

	// ReviewCount is the number of historical reviews known for this person.
	ReviewCount int `json:"review_count,omitempty" yaml:"review_count,omitempty"`

	// Venues are the journals the candidate has reviewed for.
	Venues []string `json:"venues,omitempty" yaml:"venues,omitempty"`

	// Conflicts holds human-readable conflict reasons.
	Conflicts []string `json:"conflicts,omitempty" yaml:"conflicts,omitempty"`

	IsConflicted  bool `json:"is_conflicted" yaml:"is_conflicted"`
	AuthorOpposed bool `json:"author_opposed" yaml:"author_opposed"`

	// Rank is the 1-based position in the final list.
	Rank int `json:"rank" yaml:"rank"`

	// Provenance records resolution notes such as "could not resolve: ambiguous".
	Provenance []string `json:"provenance,omitempty" yaml:"provenance,omitempty"`
}

// EffectiveHIndex returns the resolved h-index, falling back to the hint on
// the upstream record.
func (c Candidate) EffectiveHIndex() int {
	if c.Profile.HIndex > 0 {
		return c.Profile.HIndex
	}
	return c.HIndex
}

// AddSource appends src to the comma-separated source list if absent.
func (c *Candidate) AddSource(src string) {
	if src == "" {
		return
	}
	if c.Source == "" {
		c.Source = src
		return
	}
	for _, s := range strings.Split(c.Source, ",") {
		if s == src {
			return
		}
	}
	c.Source += "," + src
}

// AddConflict records a conflict reason and marks the candidate conflicted.
func (c *Candidate) AddConflict(reason string) {
	c.Conflicts = append(c.Conflicts, reason)
	c.IsConflicted = true
}
