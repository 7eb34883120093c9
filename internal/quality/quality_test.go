// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package quality

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/referee-engine/pkg/types"
)

const detailedReport = `The paper is interesting and the main result is novel.
In Section 3 the authors should clarify the role of Assumption 2.
Equation (4) needs a short justification; I suggest adding it before Lemma 5.
Consider comparing with the approach of Table 1 and Figure 2.
The proof of Theorem 1 is rigorous and clear.`

func report(name, rec, text string) types.RefereeRecord {
	return types.RefereeRecord{Person: types.Person{Name: name}, Recommendation: rec, ReportText: text}
}

func TestAssess_NoReports(t *testing.T) {
	m := types.ManuscriptRecord{Referees: []types.RefereeRecord{{Person: types.Person{Name: "A"}, Status: "Agreed"}}}
	res := Assess(m)
	assert.Equal(t, 0, res.NReports)
	assert.Equal(t, 0.0, res.OverallQuality)
	assert.Nil(t, res.Consensus)
	assert.Empty(t, res.Reports)
}

func TestScoreReport_DetailedBeatsDismissive(t *testing.T) {
	good := ScoreReport(report("A", "Minor Revision", detailedReport))
	bad := ScoreReport(report("B", "Reject", "Not interesting. Nothing new here, a waste of time."))

	assert.Equal(t, RecMinor, good.Recommendation)
	assert.Greater(t, good.Constructiveness, bad.Constructiveness)
	assert.Greater(t, good.Quality, bad.Quality)
	assert.Equal(t, 0.0, bad.Constructiveness)
	for _, s := range []types.ReportScore{good, bad} {
		assert.GreaterOrEqual(t, s.Quality, 0.0)
		assert.LessOrEqual(t, s.Quality, 1.0)
	}
}

func TestScoreReport_Consistency(t *testing.T) {
	positive := "The results are excellent, clear and rigorous. A strong and valuable paper."
	consistent := ScoreReport(report("A", "Accept", positive))
	inconsistent := ScoreReport(report("B", "Reject", positive))
	unknown := ScoreReport(report("C", "", positive))

	assert.InDelta(t, 1.0, consistent.Consistency, 1e-9)
	assert.InDelta(t, 0.0, inconsistent.Consistency, 1e-9)
	assert.Equal(t, 0.5, unknown.Consistency)
}

func TestScoreReport_RecommendationFromText(t *testing.T) {
	s := ScoreReport(report("A", "", "Overall I recommend a major revision of the manuscript."))
	assert.Equal(t, RecMajor, s.Recommendation)
}

func TestClassifyRecommendation(t *testing.T) {
	tests := map[string]string{
		"Accept":                      RecAccept,
		"Accept with Minor Revisions": RecMinor,
		"Major Revision":              RecMajor,
		"Reject & Resubmit":           RecReject,
		"":                            "",
		"Undecided":                   "",
	}
	for in, want := range tests {
		assert.Equal(t, want, ClassifyRecommendation(in), in)
	}
	v, ok := RecommendationScore("minor")
	assert.True(t, ok)
	assert.Equal(t, 0.75, v)
}

func TestTone(t *testing.T) {
	assert.Equal(t, 0.0, Tone(""))
	assert.Equal(t, 1.0, Tone("Good and clear."))
	assert.Equal(t, -1.0, Tone("Weak, unclear and flawed."))
}

func TestAssess_Consensus(t *testing.T) {
	m := types.ManuscriptRecord{Referees: []types.RefereeRecord{
		report("A", "Accept", detailedReport),
		report("B", "Accept", "Good paper. "+strings.Repeat("word ", 40)),
		report("C", "", ""),
	}}
	res := Assess(m)
	assert.Equal(t, 2, res.NReports)
	require.NotNil(t, res.Consensus)
	assert.Equal(t, 2, res.Consensus.NReviewers)
	assert.Equal(t, 1.0, res.Consensus.Agreement)
	assert.Equal(t, RecAccept, res.Consensus.Majority)

	m.Referees = []types.RefereeRecord{
		report("A", "Accept", detailedReport),
		report("B", "Reject", detailedReport),
	}
	res = Assess(m)
	require.NotNil(t, res.Consensus)
	assert.Equal(t, 0.0, res.Consensus.Agreement)
	assert.Equal(t, RecReject, res.Consensus.Majority, "ties go to the less favourable")

	share, ok := RejectShare(res)
	assert.True(t, ok)
	assert.Greater(t, share, 0.0)
	assert.Less(t, share, 0.5, "the inconsistent reject report carries less weight")
	assert.InDelta(t, 0.5, MeanRecommendation(res), 1e-9)
}

func TestRejectShare_NoRecommendations(t *testing.T) {
	_, ok := RejectShare(types.ReportQualityResult{})
	assert.False(t, ok)
	assert.Equal(t, 0.5, MeanRecommendation(types.ReportQualityResult{}))
}
