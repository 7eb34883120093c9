// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package deskreject

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/referee-engine/internal/embed"
	"github.com/pdiddy/referee-engine/internal/predict"
	"github.com/pdiddy/referee-engine/internal/quality"
	"github.com/pdiddy/referee-engine/pkg/types"
)

var siconJournal = types.JournalConfig{
	Code:             "SICON",
	Name:             "SIAM Journal on Control and Optimization",
	Platform:         "scholarone",
	Scope:            []string{"stochastic control", "optimal stopping", "optimal control", "differential games"},
	ScopeDescription: "Mathematical theory of control and optimization of deterministic and stochastic systems.",
}

type fixedOutcome float64

func (p fixedOutcome) Predict(predict.Features) float64 { return float64(p) }
func (p fixedOutcome) Active() bool                     { return true }

func newAssessor(outcome predict.Predictor) *Assessor {
	return New(types.DefaultConfig().DeskReject, embed.New(types.EmbeddingConfig{Dimensions: 128}), outcome, nil)
}

func siconManuscript() types.ManuscriptRecord {
	return types.ManuscriptRecord{
		ID:          "SICON-1",
		Title:       "Stochastic optimal control with jump diffusions",
		Abstract:    "stochastic optimal control with jump diffusions",
		Keywords:    []string{"stochastic control", "optimal stopping"},
		JournalCode: "SICON",
		Authors:     []types.Person{{Name: "Maria Rossi"}},
	}
}

func TestAssess_SiconInScope(t *testing.T) {
	m := siconManuscript()
	a := newAssessor(nil)
	res := a.Assess(m, siconJournal, quality.Assess(m))

	assert.False(t, res.ShouldDeskReject)
	assert.Equal(t, types.MethodHeuristic, res.Method)
	assert.NotEmpty(t, res.Summary)
	assert.False(t, a.ModelActive())

	scope, ok := res.Signal(SignalScope)
	require.True(t, ok)
	assert.Equal(t, 0.0, scope.Score)
	_, ok = res.Signal(SignalReports)
	assert.False(t, ok, "no reports, no report signal")
	_, ok = res.Signal(SignalModel)
	assert.False(t, ok)

	assert.Less(t, res.CombinedScore, 0.6)
	assert.GreaterOrEqual(t, res.Confidence, 0.0)
	assert.LessOrEqual(t, res.Confidence, 1.0)
}

func TestAssess_OutOfScopeWithRejectingReports(t *testing.T) {
	m := types.ManuscriptRecord{
		ID:       "SICON-2",
		Title:    "Medieval poetry manuscripts",
		Keywords: []string{"medieval poetry", "palaeography"},
		Referees: []types.RefereeRecord{
			{Person: types.Person{Name: "A"}, Recommendation: "Reject", ReportText: "Weak and unclear. Not relevant for this journal."},
			{Person: types.Person{Name: "B"}, Recommendation: "Reject", ReportText: "Flawed and poorly written."},
		},
	}
	res := newAssessor(nil).Assess(m, siconJournal, quality.Assess(m))

	assert.True(t, res.ShouldDeskReject)
	assert.GreaterOrEqual(t, res.CombinedScore, 0.6)
	assert.Contains(t, res.Summary, "Desk reject")
	for _, name := range []string{SignalScope, SignalStructure, SignalReports} {
		s, ok := res.Signal(name)
		require.True(t, ok, name)
		assert.GreaterOrEqual(t, s.Score, 0.5, name)
	}
}

func TestAssess_ModelSignal(t *testing.T) {
	m := siconManuscript()
	res := newAssessor(fixedOutcome(0.2)).Assess(m, siconJournal, quality.Assess(m))

	assert.Equal(t, types.MethodHeuristicModel, res.Method)
	s, ok := res.Signal(SignalModel)
	require.True(t, ok)
	assert.InDelta(t, 0.8, s.Score, 1e-9)
	assert.Equal(t, 0.35, s.Weight)
}

func TestAssess_AgreementRequired(t *testing.T) {
	cfg := types.DefaultConfig().DeskReject
	cfg.WeightScope, cfg.WeightStructure, cfg.WeightReports, cfg.WeightModel = 1, 0.01, 0.01, 0.01
	a := New(cfg, embed.New(types.EmbeddingConfig{Dimensions: 128}), nil, nil)

	m := types.ManuscriptRecord{
		Title:    "Medieval poetry manuscripts",
		Abstract: strings.Repeat("verse ", 60),
		Keywords: []string{"medieval poetry"},
		Authors:  []types.Person{{Name: "X"}},
	}
	res := a.Assess(m, siconJournal, quality.Assess(m))
	assert.GreaterOrEqual(t, res.CombinedScore, 0.6)
	assert.False(t, res.ShouldDeskReject, "only one signal flagged")
	assert.Contains(t, res.Summary, "fewer than 2 signals agree")
	assert.LessOrEqual(t, res.Confidence, 0.5)
}

func TestAssess_NoScopeIsDegraded(t *testing.T) {
	m := siconManuscript()
	a := newAssessor(nil)
	withScope := a.Assess(m, siconJournal, quality.Assess(m))
	without := a.Assess(m, types.JournalConfig{Code: "NEW"}, quality.Assess(m))

	_, ok := without.Signal(SignalScope)
	assert.False(t, ok)
	assert.NotEmpty(t, without.Summary)
	assert.Less(t, without.Confidence, withScope.Confidence+1e-9)
}

func TestScopeFit(t *testing.T) {
	a := newAssessor(nil)
	fit, ok := a.ScopeFit(siconManuscript(), siconJournal)
	require.True(t, ok)
	assert.Equal(t, 1.0, fit)

	_, ok = a.ScopeFit(siconManuscript(), types.JournalConfig{Scope: []string{" "}})
	assert.False(t, ok)
}
