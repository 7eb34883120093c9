// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one manuscript through report quality, desk
// rejection, candidate search and conflict checking, and assembles the
// decision report.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/referee-engine/internal/candidates"
	"github.com/pdiddy/referee-engine/internal/conflicts"
	"github.com/pdiddy/referee-engine/internal/deskreject"
	"github.com/pdiddy/referee-engine/internal/feedback"
	"github.com/pdiddy/referee-engine/internal/metrics"
	"github.com/pdiddy/referee-engine/internal/quality"
	"github.com/pdiddy/referee-engine/pkg/types"
)

// Version is written into every report.
const Version = "0.1.0"

// Pipeline states, in order. StateSkipped replaces candidate search and
// conflict checking when a confident desk rejection makes them moot.
const (
	StateLoaded          = "loaded"
	StateQualityAssessed = "report_quality_assessed"
	StateDeskAssessed    = "desk_rejection_assessed"
	StateSearched        = "candidates_searched"
	StateConflicts       = "conflicts_checked"
	StateSkipped         = "candidate_search_skipped"
	StateReportBuilt     = "report_built"
	StateSaved           = "saved"
)

// CandidateFinder produces the scored candidate pool for a manuscript.
type CandidateFinder interface {
	Find(ctx context.Context, m types.ManuscriptRecord) candidates.Result
	ResponseActive() bool
}

// Deps are the collaborators of a Pipeline. Finder, Conflicts and
// DeskReject are required.
type Deps struct {
	Config     types.Config
	Finder     CandidateFinder
	Conflicts  *conflicts.Detector
	DeskReject *deskreject.Assessor
	Feedback   *feedback.Log
	Metrics    *metrics.Metrics
	Logger     *zap.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// Pipeline processes manuscripts. It holds no per-manuscript state and is
// safe for concurrent use when its collaborators are.
type Pipeline struct {
	cfg      types.Config
	finder   CandidateFinder
	detector *conflicts.Detector
	assessor *deskreject.Assessor
	feedback *feedback.Log
	metrics  *metrics.Metrics
	log      *zap.Logger
	now      func() time.Time
}

// New creates a Pipeline.
func New(d Deps) *Pipeline {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	now := d.Now
	if now == nil {
		now = time.Now
	}
	cfg := d.Config
	def := types.DefaultConfig()
	if cfg.Candidates.MaxCandidates <= 0 {
		cfg.Candidates.MaxCandidates = def.Candidates.MaxCandidates
	}
	if cfg.Candidates.MaxConflicted <= 0 {
		cfg.Candidates.MaxConflicted = def.Candidates.MaxConflicted
	}
	if cfg.Pipeline.SkipConfidence <= 0 {
		cfg.Pipeline.SkipConfidence = def.Pipeline.SkipConfidence
	}
	return &Pipeline{
		cfg:      cfg,
		finder:   d.Finder,
		detector: d.Conflicts,
		assessor: d.DeskReject,
		feedback: d.Feedback,
		metrics:  d.Metrics,
		log:      log,
		now:      now,
	}
}

// NewRunID returns a fresh run identifier.
func NewRunID() string { return uuid.NewString() }

// Process runs every stage for m and returns the assembled report. It does
// not write anything; see Run.
func (p *Pipeline) Process(ctx context.Context, m types.ManuscriptRecord, runID string) types.DecisionReport {
	if runID == "" {
		runID = NewRunID()
	}
	log := p.log.With(zap.String("run_id", runID), zap.String("manuscript", m.ID))
	states := []string{StateLoaded}
	var degraded []string

	journal, ok := p.cfg.Journal(m.JournalCode)
	if !ok {
		journal = types.JournalConfig{Code: m.JournalCode}
		degraded = append(degraded, "journal_config:"+m.JournalCode)
		log.Warn("journal not configured", zap.String("journal", m.JournalCode))
	}

	q := quality.Assess(m)
	states = append(states, StateQualityAssessed)

	desk := p.assessor.Assess(m, journal, q)
	states = append(states, StateDeskAssessed)
	if _, ok := desk.Signal(deskreject.SignalScope); !ok {
		degraded = append(degraded, "desk_rejection:"+deskreject.SignalScope)
	}

	report := types.DecisionReport{
		PipelineVersion:      Version,
		GeneratedAt:          p.now().UTC(),
		RunID:                runID,
		Journal:              types.JournalRef{Code: journal.Code, Name: journal.Name},
		Manuscript:           types.ManuscriptRef{ID: m.ID, Title: m.Title},
		DeskRejection:        desk,
		ReportQuality:        q,
		RefereeCandidates:    []types.Candidate{},
		ConflictedCandidates: []types.Candidate{},
	}
	report.Metadata.ResponseModelActive = p.finder.ResponseActive()
	report.Metadata.OutcomeModelActive = p.assessor.ModelActive()

	var clean, conflicted []types.Candidate
	if desk.ShouldDeskReject && desk.Confidence >= p.cfg.Pipeline.SkipConfidence {
		states = append(states, StateSkipped)
		report.Metadata.CandidateSearchSkipped = true
		log.Info("confident desk rejection, skipping candidate search",
			zap.Float64("confidence", desk.Confidence))
	} else {
		found := p.finder.Find(ctx, m)
		states = append(states, StateSearched)
		degraded = append(degraded, found.Degraded...)

		split := p.detector.Check(ctx, m, found.Candidates)
		states = append(states, StateConflicts)
		clean, conflicted = split.Clean, split.Conflicted

		report.Metadata.CandidatesFound = len(found.Candidates)
		report.RefereeCandidates = ranked(clean, p.cfg.Candidates.MaxCandidates)
		report.ConflictedCandidates = ranked(conflicted, p.cfg.Candidates.MaxConflicted)
	}

	report.SuggestedRefereeStatus = conflicts.SuggestedStatus(m.SuggestedReferees, clean, conflicted)
	report.Metadata.CleanCandidates = len(clean)
	report.Metadata.ConflictedCandidates = len(conflicted)
	report.Metadata.Degraded = degraded

	states = append(states, StateReportBuilt)
	report.Metadata.States = states
	return report
}

// Run processes m, saves the report and records metrics. It returns the
// report path.
func (p *Pipeline) Run(ctx context.Context, m types.ManuscriptRecord, runID string) (types.DecisionReport, string, error) {
	start := p.now()
	report := p.Process(ctx, m, runID)
	path, err := p.Save(report)
	outcome := metrics.OutcomeProceed
	switch {
	case err != nil:
		outcome = metrics.OutcomeFailed
	case report.DeskRejection.ShouldDeskReject:
		outcome = metrics.OutcomeDeskReject
	}
	p.metrics.ObserveManuscript(outcome, report.Metadata.CandidatesFound, p.now().Sub(start))
	return report, path, err
}

// RecordDecision appends a human decision to the feedback log. Failures
// are logged and never interrupt a run.
func (p *Pipeline) RecordDecision(r types.FeedbackRecord) {
	if p.feedback == nil {
		return
	}
	p.feedback.Record(r)
}

// ranked caps list at limit and numbers it from 1.
func ranked(list []types.Candidate, limit int) []types.Candidate {
	if len(list) > limit {
		list = list[:limit]
	}
	out := make([]types.Candidate, len(list))
	for i, c := range list {
		c.Rank = i + 1
		out[i] = c
	}
	return out
}
