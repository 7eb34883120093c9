// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package deskreject decides whether a manuscript should be rejected
// without external review. Each signal scores in [0, 1] where higher means
// more reason to reject; signals that cannot be computed are left out and
// lower the confidence instead of the score.
package deskreject

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/referee-engine/internal/embed"
	"github.com/pdiddy/referee-engine/internal/predict"
	"github.com/pdiddy/referee-engine/internal/quality"
	"github.com/pdiddy/referee-engine/internal/scoreutil"
	"github.com/pdiddy/referee-engine/pkg/types"
)

// Signal names.
const (
	SignalScope     = "scope_fit"
	SignalStructure = "structural_completeness"
	SignalReports   = "report_quality"
	SignalModel     = "model_prediction"
)

// Assessor produces desk-rejection assessments. It is safe for concurrent
// use.
type Assessor struct {
	cfg     types.DeskRejectConfig
	engine  *embed.Engine
	outcome predict.Predictor
	log     *zap.Logger
}

// New creates an Assessor. A nil outcome predictor behaves as untrained.
func New(cfg types.DeskRejectConfig, engine *embed.Engine, outcome predict.Predictor, log *zap.Logger) *Assessor {
	def := types.DefaultConfig().DeskReject
	if cfg.RejectThreshold <= 0 || cfg.RejectThreshold >= 1 {
		cfg.RejectThreshold = def.RejectThreshold
	}
	if cfg.SignalThreshold <= 0 {
		cfg.SignalThreshold = def.SignalThreshold
	}
	if cfg.MinAgreeingSignals <= 0 {
		cfg.MinAgreeingSignals = def.MinAgreeingSignals
	}
	if cfg.MinAbstractWords <= 0 {
		cfg.MinAbstractWords = def.MinAbstractWords
	}
	if cfg.WeightScope == 0 && cfg.WeightStructure == 0 && cfg.WeightReports == 0 && cfg.WeightModel == 0 {
		cfg.WeightScope, cfg.WeightStructure = def.WeightScope, def.WeightStructure
		cfg.WeightReports, cfg.WeightModel = def.WeightReports, def.WeightModel
	}
	if engine == nil {
		engine = embed.New(types.EmbeddingConfig{})
	}
	if outcome == nil {
		outcome = predict.Neutral{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Assessor{cfg: cfg, engine: engine, outcome: outcome, log: log}
}

// ModelActive reports whether the outcome predictor contributes.
func (a *Assessor) ModelActive() bool { return a.outcome.Active() }

// ScopeFit is how well m fits the journal's scope in [0, 1]: the better of
// keyword overlap and semantic similarity. It returns false when the
// journal declares no scope.
func (a *Assessor) ScopeFit(m types.ManuscriptRecord, j types.JournalConfig) (float64, bool) {
	var scope []string
	for _, s := range append(append([]string(nil), j.Scope...), j.ScopeDescription) {
		if s = strings.TrimSpace(s); s != "" {
			scope = append(scope, s)
		}
	}
	if len(scope) == 0 {
		return 0, false
	}
	query := m.Keywords
	if len(query) == 0 && m.Title != "" {
		query = []string{m.Title}
	}
	overlap := embed.KeywordOverlap(query, scope)
	similarity := a.engine.TextSimilarity(m.Summary(), strings.Join(scope, ". "))
	return scoreutil.Clamp01(max(overlap, similarity)), true
}

// Assess combines the signals for m. q is the manuscript's report quality
// assessment.
func (a *Assessor) Assess(m types.ManuscriptRecord, j types.JournalConfig, q types.ReportQualityResult) types.DeskRejectionAssessment {
	var signals []types.Signal
	missing := 0

	fit, hasScope := a.ScopeFit(m, j)
	if hasScope {
		signals = append(signals, types.Signal{
			Name:   SignalScope,
			Score:  1 - fit,
			Weight: a.cfg.WeightScope,
			Detail: fmt.Sprintf("scope fit %.2f", fit),
		})
	} else {
		missing++
		a.log.Debug("journal has no scope, scope signal absent", zap.String("journal", j.Code))
	}

	gaps := a.structuralGaps(m)
	signals = append(signals, types.Signal{
		Name:   SignalStructure,
		Score:  float64(len(gaps)) / 4,
		Weight: a.cfg.WeightStructure,
		Detail: structureDetail(gaps),
	})

	if share, ok := quality.RejectShare(q); ok {
		signals = append(signals, types.Signal{
			Name:   SignalReports,
			Score:  share,
			Weight: a.cfg.WeightReports,
			Detail: fmt.Sprintf("%d report(s), quality-weighted reject share %.2f", q.NReports, share),
		})
	} else {
		missing++
	}

	method := types.MethodHeuristic
	if a.outcome.Active() {
		fitFeature := fit
		if !hasScope {
			fitFeature = 0.5
		}
		p := a.outcome.Predict(predict.OutcomeFeatures(predict.NewOutcomeInput(m, fitFeature, q)))
		signals = append(signals, types.Signal{
			Name:   SignalModel,
			Score:  scoreutil.Clamp01(1 - p),
			Weight: a.cfg.WeightModel,
			Detail: fmt.Sprintf("predicted acceptance %.2f", p),
		})
		method = types.MethodHeuristicModel
	} else {
		missing++
	}

	terms := make([]scoreutil.Term, 0, len(signals))
	var flagged []string
	for _, s := range signals {
		terms = append(terms, scoreutil.Term{Value: s.Score, Weight: s.Weight, Present: true})
		if s.Score >= a.cfg.SignalThreshold {
			flagged = append(flagged, s.Name)
		}
	}
	combined := scoreutil.WeightedMean(terms...)
	reject := combined >= a.cfg.RejectThreshold && len(flagged) >= a.cfg.MinAgreeingSignals

	return types.DeskRejectionAssessment{
		ShouldDeskReject: reject,
		Confidence:       a.confidence(combined, reject, missing),
		CombinedScore:    combined,
		Method:           method,
		Summary:          a.summary(reject, combined, flagged),
		Signals:          signals,
	}
}

// confidence is the distance of combined from the threshold, scaled to
// [0, 1] on the side of the decision, less the penalty per missing signal.
// A high score that lacked agreeing signals gets at most half confidence.
func (a *Assessor) confidence(combined float64, reject bool, missing int) float64 {
	thr := a.cfg.RejectThreshold
	var c float64
	switch {
	case reject:
		c = (combined - thr) / (1 - thr)
	case combined < thr:
		c = (thr - combined) / thr
	default:
		c = 0.5 * (1 - (combined-thr)/(1-thr))
	}
	return scoreutil.Clamp01(c - a.cfg.DegradedPenalty*float64(missing))
}

func (a *Assessor) summary(reject bool, combined float64, flagged []string) string {
	signals := "no signals flagged"
	if len(flagged) > 0 {
		signals = fmt.Sprintf("%d signal(s) flagged: %s", len(flagged), strings.Join(flagged, ", "))
	}
	switch {
	case reject:
		return fmt.Sprintf("Desk reject: combined score %.2f at or above threshold %.2f; %s.", combined, a.cfg.RejectThreshold, signals)
	case combined >= a.cfg.RejectThreshold:
		return fmt.Sprintf("Proceed to review: combined score %.2f reached threshold %.2f but fewer than %d signals agree; %s.",
			combined, a.cfg.RejectThreshold, a.cfg.MinAgreeingSignals, signals)
	}
	return fmt.Sprintf("Proceed to review: combined score %.2f below threshold %.2f; %s.", combined, a.cfg.RejectThreshold, signals)
}

func (a *Assessor) structuralGaps(m types.ManuscriptRecord) []string {
	var gaps []string
	if len(strings.Fields(m.Abstract)) < a.cfg.MinAbstractWords {
		gaps = append(gaps, "abstract")
	}
	if len(m.Keywords) == 0 {
		gaps = append(gaps, "keywords")
	}
	if len(m.Authors) == 0 {
		gaps = append(gaps, "authors")
	}
	if strings.TrimSpace(m.Title) == "" {
		gaps = append(gaps, "title")
	}
	return gaps
}

func structureDetail(gaps []string) string {
	if len(gaps) == 0 {
		return "complete"
	}
	return "missing or short: " + strings.Join(gaps, ", ")
}
