// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/referee-engine/internal/candidates"
	"github.com/pdiddy/referee-engine/internal/conflicts"
	"github.com/pdiddy/referee-engine/internal/deskreject"
	"github.com/pdiddy/referee-engine/internal/embed"
	"github.com/pdiddy/referee-engine/internal/feedback"
	"github.com/pdiddy/referee-engine/internal/manuscripts"
	"github.com/pdiddy/referee-engine/internal/metrics"
	"github.com/pdiddy/referee-engine/internal/predict"
	"github.com/pdiddy/referee-engine/pkg/types"
)

var fixedNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type fakeFinder struct {
	cands    []types.Candidate
	degraded []string
	calls    int
}

func (f *fakeFinder) Find(context.Context, types.ManuscriptRecord) candidates.Result {
	f.calls++
	return candidates.Result{
		Candidates: append([]types.Candidate(nil), f.cands...),
		Degraded:   f.degraded,
	}
}

func (f *fakeFinder) ResponseActive() bool { return false }

func sicon() types.JournalConfig {
	return types.JournalConfig{
		Code:             "SICON",
		Name:             "SIAM Journal on Control and Optimization",
		Platform:         "scholarone",
		Scope:            []string{"stochastic control", "optimal stopping", "optimal control"},
		ScopeDescription: "Mathematical theory of control and optimization.",
	}
}

func testConfig(t *testing.T) types.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := types.DefaultConfig()
	cfg.Journals = []types.JournalConfig{sicon()}
	cfg.Pipeline.ReportsDir = filepath.Join(dir, "reports")
	cfg.Pipeline.ManuscriptsDir = filepath.Join(dir, "manuscripts")
	cfg.Pipeline.FeedbackFile = filepath.Join(dir, "feedback.jsonl")
	return cfg
}

func newPipeline(cfg types.Config, f CandidateFinder, m *metrics.Metrics) *Pipeline {
	engine := embed.New(types.EmbeddingConfig{Dimensions: 128})
	return New(Deps{
		Config:     cfg,
		Finder:     f,
		Conflicts:  conflicts.New(nil, nil),
		DeskReject: deskreject.New(cfg.DeskReject, engine, predict.Neutral{}, nil),
		Feedback:   feedback.Open(cfg.Pipeline.FeedbackFile, nil),
		Metrics:    m,
		Now:        func() time.Time { return fixedNow },
	})
}

func controlManuscript() types.ManuscriptRecord {
	return types.ManuscriptRecord{
		ID:          "SICON-2026/0042",
		Title:       "Optimal stopping for stochastic control of jump diffusions",
		Abstract:    strings.Repeat("We study optimal stopping and stochastic control problems for jump diffusions. ", 8),
		Keywords:    []string{"stochastic control", "optimal stopping"},
		JournalCode: "SICON",
		Status:      "Awaiting Referee Selection",
		Authors: []types.Person{
			{Name: "Maria Rossi", Institution: "Politecnico di Milano", Email: "maria.rossi@polimi.it"},
		},
		SuggestedReferees: []types.Person{
			{Name: "Anne Meyer"},
			{Name: "Luca Bianchi"},
			{Name: "Nobody Known"},
		},
	}
}

func controlCandidates() []types.Candidate {
	return []types.Candidate{
		{Person: types.Person{Name: "Luca Bianchi", Institution: "Dipartimento di Matematica, Politecnico di Milano"}, RelevanceScore: 0.9, Source: types.SourceExpertiseIndex},
		{Person: types.Person{Name: "Anne Meyer", Institution: "ETH Zurich"}, RelevanceScore: 0.8, Source: types.SourceOpenAlex},
		{Person: types.Person{Name: "Jane Doe", Institution: "MIT"}, RelevanceScore: 0.6, Source: types.SourceSemanticScholar},
	}
}

func TestProcess_InstitutionalConflict(t *testing.T) {
	cfg := testConfig(t)
	finder := &fakeFinder{cands: controlCandidates(), degraded: []string{"candidate_source:semantic_scholar"}}
	p := newPipeline(cfg, finder, nil)

	report := p.Process(context.Background(), controlManuscript(), "run-1")

	assert.Equal(t, Version, report.PipelineVersion)
	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, fixedNow, report.GeneratedAt)
	assert.Equal(t, "SICON", report.Journal.Code)
	assert.False(t, report.DeskRejection.ShouldDeskReject)

	require.Len(t, report.RefereeCandidates, 2)
	assert.Equal(t, "Anne Meyer", report.RefereeCandidates[0].Name)
	assert.Equal(t, 1, report.RefereeCandidates[0].Rank)
	assert.Equal(t, 2, report.RefereeCandidates[1].Rank)

	require.Len(t, report.ConflictedCandidates, 1)
	luca := report.ConflictedCandidates[0]
	assert.Equal(t, "Luca Bianchi", luca.Name)
	assert.True(t, luca.IsConflicted)
	require.NotEmpty(t, luca.Conflicts)
	assert.Contains(t, luca.Conflicts[0], "Maria Rossi")

	assert.Equal(t, map[string]string{
		"Anne Meyer":   types.SuggestedRecommended,
		"Luca Bianchi": types.SuggestedConflict,
		"Nobody Known": types.SuggestedNotFound,
	}, report.SuggestedRefereeStatus)

	md := report.Metadata
	assert.Equal(t, 3, md.CandidatesFound)
	assert.Equal(t, 2, md.CleanCandidates)
	assert.Equal(t, 1, md.ConflictedCandidates)
	assert.Equal(t, []string{"candidate_source:semantic_scholar"}, md.Degraded)
	assert.Equal(t, []string{
		StateLoaded, StateQualityAssessed, StateDeskAssessed,
		StateSearched, StateConflicts, StateReportBuilt,
	}, md.States)
}

func TestProcess_CapsLists(t *testing.T) {
	cfg := testConfig(t)
	cfg.Candidates.MaxCandidates = 1
	p := newPipeline(cfg, &fakeFinder{cands: controlCandidates()}, nil)

	report := p.Process(context.Background(), controlManuscript(), "")
	assert.Len(t, report.RefereeCandidates, 1)
	assert.Equal(t, 2, report.Metadata.CleanCandidates)
	assert.NotEmpty(t, report.RunID)
}

func TestProcess_ConfidentRejectSkipsSearch(t *testing.T) {
	cfg := testConfig(t)
	cfg.Pipeline.SkipConfidence = 0.01
	finder := &fakeFinder{cands: controlCandidates()}
	p := newPipeline(cfg, finder, nil)

	m := types.ManuscriptRecord{
		ID:          "SICON-7",
		Title:       "Medieval poetry manuscripts",
		Keywords:    []string{"medieval poetry", "palaeography"},
		JournalCode: "SICON",
		Referees: []types.RefereeRecord{
			{Person: types.Person{Name: "A"}, Recommendation: "Reject", ReportText: "Weak and unclear. Not relevant for this journal."},
			{Person: types.Person{Name: "B"}, Recommendation: "Reject", ReportText: "Flawed and poorly written."},
		},
		SuggestedReferees: []types.Person{{Name: "Anne Meyer"}},
	}
	report := p.Process(context.Background(), m, "run-2")

	require.True(t, report.DeskRejection.ShouldDeskReject)
	assert.Equal(t, 0, finder.calls)
	assert.True(t, report.Metadata.CandidateSearchSkipped)
	assert.Contains(t, report.Metadata.States, StateSkipped)
	assert.NotContains(t, report.Metadata.States, StateSearched)
	assert.Empty(t, report.RefereeCandidates)
	assert.NotNil(t, report.RefereeCandidates)
	assert.Equal(t, types.SuggestedNotFound, report.SuggestedRefereeStatus["Anne Meyer"])
	assert.Equal(t, 2, report.ReportQuality.NReports)
}

func TestProcess_UnknownJournalIsDegraded(t *testing.T) {
	cfg := testConfig(t)
	p := newPipeline(cfg, &fakeFinder{}, nil)
	m := controlManuscript()
	m.JournalCode = "NEWJ"

	report := p.Process(context.Background(), m, "run-3")
	assert.Contains(t, report.Metadata.Degraded, "journal_config:NEWJ")
	assert.Contains(t, report.Metadata.Degraded, "desk_rejection:scope_fit")
	assert.NotEmpty(t, report.DeskRejection.Summary)
}

func TestRun_WritesReport(t *testing.T) {
	cfg := testConfig(t)
	m := metrics.New()
	p := newPipeline(cfg, &fakeFinder{cands: controlCandidates()}, m)

	report, path, err := p.Run(context.Background(), controlManuscript(), "run-4")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg.Pipeline.ReportsDir, "SICON", "SICON-2026_0042.json"), path)

	saved, err := LoadReport(path)
	require.NoError(t, err)
	assert.Equal(t, report.Manuscript.ID, saved.Manuscript.ID)
	assert.Equal(t, StateSaved, saved.Metadata.States[len(saved.Metadata.States)-1])
	assert.Len(t, saved.ConflictedCandidates, 1)
	assert.NotContains(t, report.Metadata.States, StateSaved, "Save does not mutate the caller's report")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Manuscripts.WithLabelValues(metrics.OutcomeProceed)))
}

func TestRun_SaveFailure(t *testing.T) {
	cfg := testConfig(t)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	cfg.Pipeline.ReportsDir = blocker
	m := metrics.New()
	p := newPipeline(cfg, &fakeFinder{}, m)

	_, _, err := p.Run(context.Background(), controlManuscript(), "run-5")
	assert.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Manuscripts.WithLabelValues(metrics.OutcomeFailed)))
}

func TestRecordDecision(t *testing.T) {
	cfg := testConfig(t)
	p := newPipeline(cfg, &fakeFinder{}, nil)
	p.RecordDecision(types.FeedbackRecord{Journal: "SICON", ManuscriptID: "SICON-1", Decision: "desk_reject"})
	p.RecordDecision(types.FeedbackRecord{Journal: "SICON"})

	records, err := feedback.Open(cfg.Pipeline.FeedbackFile, nil).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "desk_reject", records[0].Decision)
}

func TestBatch_SelectsAwaitingManuscripts(t *testing.T) {
	cfg := testConfig(t)
	cfg.Pipeline.Workers = 2
	dir := filepath.Join(cfg.Pipeline.ManuscriptsDir, "SICON")

	awaiting := controlManuscript()
	awaiting.ID = "SICON-A"
	staffed := controlManuscript()
	staffed.ID = "SICON-B"
	staffed.Referees = []types.RefereeRecord{
		{Person: types.Person{Name: "R1"}, Status: "Agreed"},
		{Person: types.Person{Name: "R2"}, Status: "Invited"},
	}
	underReview := controlManuscript()
	underReview.ID = "SICON-C"
	underReview.Status = "Under Review"

	for _, m := range []types.ManuscriptRecord{awaiting, staffed, underReview} {
		require.NoError(t, manuscripts.Save(filepath.Join(dir, m.ID+".json"), m))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o644))

	var buf bytes.Buffer
	p := newPipeline(cfg, &fakeFinder{cands: controlCandidates()}, nil)
	summary, err := p.Batch(context.Background(), &buf)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Journals)
	assert.Equal(t, 3, summary.Scanned)
	assert.Equal(t, 1, summary.Selected)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Failed)
	assert.True(t, summary.HasFailures())
	assert.NotEmpty(t, summary.RunID)

	_, err = os.Stat(filepath.Join(cfg.Pipeline.ReportsDir, "SICON", "SICON-A.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(cfg.Pipeline.ReportsDir, "SICON", "SICON-C.json"))
	assert.True(t, os.IsNotExist(err))
	assert.Contains(t, buf.String(), "1 awaiting referees")
}

func TestBatch_UnknownPlatformSkipsJournal(t *testing.T) {
	cfg := testConfig(t)
	cfg.Journals[0].Platform = "fax"
	var buf bytes.Buffer
	summary, err := newPipeline(cfg, &fakeFinder{}, nil).Batch(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Journals)
	assert.Contains(t, buf.String(), "skip    SICON")
}

func TestTrainOutcome_InsufficientData(t *testing.T) {
	cfg := testConfig(t)
	model := predict.NewModel(predict.KindOutcome, cfg.Predictors, nil)
	assessor := deskreject.New(cfg.DeskReject, nil, nil, nil)

	res := TrainOutcome(model, []types.ManuscriptRecord{controlManuscript()}, nil, assessor, cfg)
	assert.Equal(t, predict.StatusInsufficientData, res.Status)
	assert.False(t, model.Active())
}

func TestLoadHistory(t *testing.T) {
	cfg := testConfig(t)
	cfg.Expertise.HistoryDir = t.TempDir()
	m := controlManuscript()
	m.JournalCode = ""
	require.NoError(t, manuscripts.Save(filepath.Join(cfg.Expertise.HistoryDir, "SICON", "h1.json"), m))

	history, failed, err := LoadHistory(cfg)
	require.NoError(t, err)
	assert.Empty(t, failed)
	require.Len(t, history, 1)
	assert.Equal(t, "SICON", history[0].JournalCode)
}
