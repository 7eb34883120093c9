// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package predict

import (
	"fmt"
	"math"
	"strings"

	"github.com/pdiddy/referee-engine/internal/quality"
	"github.com/pdiddy/referee-engine/pkg/types"
)

// Kind names a predictor and its feature schema.
type Kind string

// Predictor kinds.
const (
	KindResponse Kind = "response"
	KindOutcome  Kind = "outcome"
)

// schemaVersion is bumped whenever a feature's meaning changes.
const schemaVersion = 1

var featureNames = map[Kind][]string{
	KindResponse: {
		"log_h_index",
		"topic_overlap",
		"similarity",
		"log_prior_invitations",
		"prior_acceptance_rate",
		"has_email",
	},
	KindOutcome: {
		"log_abstract_words",
		"keyword_count",
		"author_count",
		"scope_fit",
		"report_quality",
		"report_count",
		"mean_recommendation",
	},
}

// FeatureNames returns the ordered feature names of the kind.
func (k Kind) FeatureNames() []string {
	return append([]string(nil), featureNames[k]...)
}

// Dimensions is the feature vector length of the kind.
func (k Kind) Dimensions() int { return len(featureNames[k]) }

// Schema identifies the feature layout persisted with a model.
func (k Kind) Schema() string {
	return fmt.Sprintf("%s/v%d:%s", k, schemaVersion, strings.Join(featureNames[k], ","))
}

// ResponseInput carries the raw response-model inputs for one candidate.
type ResponseInput struct {
	HIndex       int
	TopicOverlap float64
	Similarity   float64

	// Invitations is the number of prior invitations from the journal.
	Invitations int

	// AcceptanceRate is the prior acceptance rate for the journal, -1 when
	// unknown.
	AcceptanceRate float64
	HasEmail       bool
}

// ResponseFeatures converts in into the response schema. An unknown
// acceptance rate maps to 0.5.
func ResponseFeatures(in ResponseInput) Features {
	rate := in.AcceptanceRate
	if rate < 0 {
		rate = 0.5
	}
	return Features{
		math.Log1p(float64(max(in.HIndex, 0))),
		in.TopicOverlap,
		in.Similarity,
		math.Log1p(float64(max(in.Invitations, 0))),
		rate,
		boolFeature(in.HasEmail),
	}
}

// OutcomeInput carries the raw outcome-model inputs for one manuscript.
type OutcomeInput struct {
	AbstractWords int
	Keywords      int
	Authors       int

	// ScopeFit is the journal scope fit in [0, 1], higher is better.
	ScopeFit float64

	ReportQuality      float64
	Reports            int
	MeanRecommendation float64
}

// NewOutcomeInput collects the outcome inputs from a manuscript, its scope
// fit and its report assessment.
func NewOutcomeInput(m types.ManuscriptRecord, scopeFit float64, q types.ReportQualityResult) OutcomeInput {
	return OutcomeInput{
		AbstractWords:      len(strings.Fields(m.Abstract)),
		Keywords:           len(m.Keywords),
		Authors:            len(m.Authors),
		ScopeFit:           scopeFit,
		ReportQuality:      q.OverallQuality,
		Reports:            q.NReports,
		MeanRecommendation: quality.MeanRecommendation(q),
	}
}

// OutcomeFeatures converts in into the outcome schema.
func OutcomeFeatures(in OutcomeInput) Features {
	return Features{
		math.Log1p(float64(in.AbstractWords)),
		float64(in.Keywords),
		float64(in.Authors),
		in.ScopeFit,
		in.ReportQuality,
		float64(in.Reports),
		in.MeanRecommendation,
	}
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
