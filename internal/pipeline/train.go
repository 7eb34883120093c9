// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"path/filepath"
	"strings"

	"github.com/pdiddy/referee-engine/internal/deskreject"
	"github.com/pdiddy/referee-engine/internal/embed"
	"github.com/pdiddy/referee-engine/internal/expertise"
	"github.com/pdiddy/referee-engine/internal/manuscripts"
	"github.com/pdiddy/referee-engine/internal/predict"
	"github.com/pdiddy/referee-engine/internal/quality"
	"github.com/pdiddy/referee-engine/pkg/types"
)

// LoadHistory reads the historical corpus of every configured journal.
// Unreadable files are returned separately and do not fail the load.
func LoadHistory(cfg types.Config) ([]types.ManuscriptRecord, []manuscripts.FileError, error) {
	var (
		history []types.ManuscriptRecord
		failed  []manuscripts.FileError
	)
	for _, j := range cfg.Journals {
		code := strings.ToUpper(strings.TrimSpace(j.Code))
		if code == "" {
			continue
		}
		records, bad, err := manuscripts.LoadDir(filepath.Join(cfg.Expertise.HistoryDir, code))
		if err != nil {
			return nil, nil, err
		}
		for _, m := range records {
			if m.JournalCode == "" {
				m.JournalCode = code
			}
			history = append(history, m)
		}
		failed = append(failed, bad...)
	}
	return history, failed, nil
}

// TrainResponse fits the referee-response model on past invitations.
func TrainResponse(model *predict.Model, history []types.ManuscriptRecord, entries []expertise.Entry, engine *embed.Engine, feedback []types.FeedbackRecord) predict.TrainResult {
	return model.Train(predict.BuildResponseSamples(history, entries, engine, feedback))
}

// TrainOutcome fits the manuscript-outcome model on past decisions. The
// features are computed exactly as the desk-rejection assessor computes
// them at run time.
func TrainOutcome(model *predict.Model, history []types.ManuscriptRecord, feedback []types.FeedbackRecord, assessor *deskreject.Assessor, cfg types.Config) predict.TrainResult {
	featurize := func(m types.ManuscriptRecord) predict.OutcomeInput {
		fit := 0.5
		if j, ok := cfg.Journal(m.JournalCode); ok {
			if f, ok := assessor.ScopeFit(m, j); ok {
				fit = f
			}
		}
		return predict.NewOutcomeInput(m, fit, quality.Assess(m))
	}
	return model.Train(predict.BuildOutcomeSamples(history, feedback, featurize))
}
