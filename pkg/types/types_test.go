// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyRefereeStatus(t *testing.T) {
	tests := []struct {
		status string
		want   Label
	}{
		{"Agreed", LabelPositive},
		{"  report   SUBMITTED ", LabelPositive},
		{"Review Completed", LabelPositive},
		{"Declined", LabelNegative},
		{"No Response", LabelNegative},
		{"Invited", LabelUnknown},
		{"", LabelUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyRefereeStatus(tt.status))
		})
	}
}

func TestClassifyManuscriptStatus(t *testing.T) {
	tests := []struct {
		status string
		want   Label
	}{
		{"Completed Accept", LabelPositive},
		{"Accepted", LabelPositive},
		{"Desk Reject", LabelNegative},
		{"completed reject", LabelNegative},
		{"Major Revision", LabelUnknown},
		{"Under Review", LabelUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyManuscriptStatus(tt.status))
		})
	}
}

func TestCandidate_AddSource(t *testing.T) {
	var c Candidate
	c.AddSource(SourceExpertiseIndex)
	c.AddSource(SourceOpenAlex)
	c.AddSource(SourceExpertiseIndex)
	c.AddSource("")
	assert.Equal(t, "expertise_index,openalex", c.Source)
}

func TestCandidate_EffectiveHIndex(t *testing.T) {
	c := Candidate{Person: Person{HIndex: 12}}
	assert.Equal(t, 12, c.EffectiveHIndex())
	c.Profile.HIndex = 30
	assert.Equal(t, 30, c.EffectiveHIndex())
}

func TestCandidate_AddConflict(t *testing.T) {
	var c Candidate
	c.AddConflict("co-author: Maria Rossi")
	assert.True(t, c.IsConflicted)
	assert.Equal(t, []string{"co-author: Maria Rossi"}, c.Conflicts)
}

func TestEnrichedProfile_IsEmpty(t *testing.T) {
	assert.True(t, EnrichedProfile{}.IsEmpty())
	assert.True(t, EnrichedProfile{Source: SourceOpenAlex}.IsEmpty(), "a source alone is not an identity")
	assert.False(t, EnrichedProfile{AuthorID: "A123"}.IsEmpty())
}

func TestManuscriptRecord_SummaryAndReports(t *testing.T) {
	m := ManuscriptRecord{
		Title:    "Optimal stopping",
		Abstract: "We study stopping problems",
		Keywords: []string{"stochastic control", "optimal stopping"},
		Referees: []RefereeRecord{
			{Person: Person{Name: "A"}, ReportText: "  "},
			{Person: Person{Name: "B"}, ReportText: "Sound."},
		},
	}
	assert.Equal(t, "Optimal stopping. We study stopping problems. stochastic control, optimal stopping", m.Summary())
	reports := m.Reports()
	assert.Len(t, reports, 1)
	assert.Equal(t, "B", reports[0].Name)
	assert.Equal(t, "", ManuscriptRecord{}.Summary())
}

func TestConfig_Journal(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Journals = []JournalConfig{{Code: "SICON"}, {Code: "MAFI"}}

	j, ok := cfg.Journal("mafi")
	assert.True(t, ok)
	assert.Equal(t, "MAFI", j.Code)
	_, ok = cfg.Journal("JOTA")
	assert.False(t, ok)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 15, cfg.Candidates.MaxCandidates)
	assert.Equal(t, 5, cfg.Candidates.MaxConflicted)
	assert.Equal(t, 0.6, cfg.DeskReject.RejectThreshold)
	assert.Equal(t, 0.85, cfg.Pipeline.SkipConfidence)
	assert.Equal(t, 20, cfg.Predictors.MinSamples)
	assert.Equal(t, IndexBackendHNSW, cfg.Embedding.IndexBackend)
}

func TestDeskRejectionAssessment_Signal(t *testing.T) {
	a := DeskRejectionAssessment{Signals: []Signal{{Name: "scope_fit", Score: 0.9}}}
	s, ok := a.Signal("scope_fit")
	assert.True(t, ok)
	assert.Equal(t, 0.9, s.Score)
	_, ok = a.Signal("model_prediction")
	assert.False(t, ok)
}
