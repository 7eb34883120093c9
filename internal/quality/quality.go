// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package quality scores referee reports for constructiveness, tone
// consistency with the recommendation, and length, and measures how far
// the referees of one manuscript agree.
package quality

import (
	"math"
	"regexp"
	"strings"

	"github.com/pdiddy/referee-engine/internal/scoreutil"
	"github.com/pdiddy/referee-engine/pkg/types"
)

// Recommendation categories, from most to least favourable.
const (
	RecAccept = "accept"
	RecMinor  = "minor_revision"
	RecMajor  = "major_revision"
	RecReject = "reject"
)

var recScores = map[string]float64{
	RecAccept: 1,
	RecMinor:  0.75,
	RecMajor:  0.35,
	RecReject: 0,
}

// fullLengthWords is the report length at which the length factor saturates.
const fullLengthWords = 300

var (
	specificRef = regexp.MustCompile(`(?i)\b(section|sec\.|equation|eq\.|eqn\.?|table|figure|fig\.|theorem|thm\.|lemma|proposition|corollary|definition|remark|page|p\.|line|appendix|assumption)\s*\(?[0-9ivx]`)
	suggestion  = regexp.MustCompile(`(?i)\b(suggest|suggests|recommend|should|could|consider|clarify|improve|expand|discuss|revise|explain|justify|cite|compare|add|include|elaborate)\b`)
	dismissive  = regexp.MustCompile(`(?i)(not interesting|nothing new|waste of|trivial result|obviously wrong|poorly written|not worth|meaningless|no contribution|of no interest)`)
	recInText   = regexp.MustCompile(`(?i)recommend(?:ation)?\b[^.]{0,40}?\b(reject|major|minor|accept)`)
	wordRe      = regexp.MustCompile(`[\p{L}']+`)
)

var positiveWords = map[string]bool{
	"good": true, "clear": true, "clearly": true, "interesting": true, "novel": true,
	"strong": true, "well": true, "significant": true, "solid": true, "nice": true,
	"rigorous": true, "valuable": true, "important": true, "elegant": true,
	"convincing": true, "excellent": true, "original": true, "thorough": true,
}

var negativeWords = map[string]bool{
	"unclear": true, "weak": true, "wrong": true, "flawed": true, "incorrect": true,
	"poor": true, "poorly": true, "confusing": true, "insufficient": true,
	"lacking": true, "missing": true, "error": true, "errors": true, "trivial": true,
	"limited": true, "unconvincing": true, "incremental": true, "unjustified": true,
}

// ClassifyRecommendation maps a free-text recommendation to a category.
// It returns "" when none applies.
func ClassifyRecommendation(s string) string {
	s = strings.ToLower(s)
	switch {
	case strings.Contains(s, "reject"):
		return RecReject
	case strings.Contains(s, "major"):
		return RecMajor
	case strings.Contains(s, "minor"):
		return RecMinor
	case strings.Contains(s, "accept"):
		return RecAccept
	}
	return ""
}

// RecommendationScore returns the numeric score of a recommendation and
// whether it was recognised.
func RecommendationScore(s string) (float64, bool) {
	v, ok := recScores[ClassifyRecommendation(s)]
	return v, ok
}

// recommendationOf prefers the structured field and falls back to a
// "recommend ..." phrase in the report text.
func recommendationOf(r types.RefereeRecord) string {
	if c := ClassifyRecommendation(r.Recommendation); c != "" {
		return c
	}
	if m := recInText.FindStringSubmatch(r.ReportText); m != nil {
		return ClassifyRecommendation(m[1])
	}
	return ""
}

// ScoreReport scores one referee report.
func ScoreReport(r types.RefereeRecord) types.ReportScore {
	text := r.ReportText
	words := len(strings.Fields(text))
	length := scoreutil.Clamp01(float64(words) / fullLengthWords)

	specific := math.Min(float64(len(specificRef.FindAllStringIndex(text, -1)))/5, 1)
	suggest := math.Min(float64(len(suggestion.FindAllStringIndex(text, -1)))/5, 1)
	penalty := math.Min(0.2*float64(len(dismissive.FindAllStringIndex(text, -1))), 0.6)
	constructive := scoreutil.Clamp01(0.4*specific + 0.4*suggest + 0.2*length - penalty)

	rec := recommendationOf(r)
	consistency := 0.5
	if score, ok := recScores[rec]; ok {
		expected := 2*score - 1
		consistency = scoreutil.Clamp01(1 - math.Abs(Tone(text)-expected)/2)
	}

	return types.ReportScore{
		Referee:          r.Name,
		Recommendation:   rec,
		WordCount:        words,
		Constructiveness: constructive,
		Consistency:      consistency,
		Tone:             Tone(text),
		Quality:          scoreutil.Clamp01(0.4*constructive + 0.3*consistency + 0.3*length),
	}
}

// Tone is the lexicon polarity of text in [-1, 1]; 0 when no polar word
// occurs.
func Tone(text string) float64 {
	var pos, neg int
	for _, w := range wordRe.FindAllString(strings.ToLower(text), -1) {
		switch {
		case positiveWords[w]:
			pos++
		case negativeWords[w]:
			neg++
		}
	}
	if pos+neg == 0 {
		return 0
	}
	return float64(pos-neg) / float64(pos+neg)
}

// Assess scores every submitted report on m. Consensus is computed when at
// least two reports carry a recognised recommendation.
func Assess(m types.ManuscriptRecord) types.ReportQualityResult {
	reports := m.Reports()
	res := types.ReportQualityResult{NReports: len(reports)}
	if len(reports) == 0 {
		return res
	}

	var total float64
	var recs []string
	for _, r := range reports {
		s := ScoreReport(r)
		res.Reports = append(res.Reports, s)
		total += s.Quality
		if s.Recommendation != "" {
			recs = append(recs, s.Recommendation)
		}
	}
	res.OverallQuality = scoreutil.Clamp01(total / float64(len(reports)))
	if len(recs) >= 2 {
		res.Consensus = consensus(recs)
	}
	return res
}

func consensus(recs []string) *types.Consensus {
	var mean float64
	counts := make(map[string]int)
	for _, r := range recs {
		mean += recScores[r]
		counts[r]++
	}
	mean /= float64(len(recs))
	var variance float64
	for _, r := range recs {
		d := recScores[r] - mean
		variance += d * d
	}
	stddev := math.Sqrt(variance / float64(len(recs)))

	// Ties go to the less favourable recommendation.
	majority := ""
	for _, cat := range []string{RecReject, RecMajor, RecMinor, RecAccept} {
		if counts[cat] > counts[majority] {
			majority = cat
		}
	}
	return &types.Consensus{
		NReviewers: len(recs),
		Agreement:  scoreutil.Clamp01(1 - 2*stddev),
		Majority:   majority,
	}
}

// RejectShare returns the quality-weighted share of reports recommending
// rejection, and false when no report carries a recommendation.
func RejectShare(res types.ReportQualityResult) (float64, bool) {
	var weight, reject float64
	for _, s := range res.Reports {
		if s.Recommendation == "" {
			continue
		}
		w := 0.5 + 0.5*s.Quality
		weight += w
		if s.Recommendation == RecReject {
			reject += w
		}
	}
	if weight == 0 {
		return 0, false
	}
	return reject / weight, true
}

// MeanRecommendation averages the recognised recommendation scores, 0.5 when
// there are none.
func MeanRecommendation(res types.ReportQualityResult) float64 {
	var sum float64
	n := 0
	for _, s := range res.Reports {
		if v, ok := recScores[s.Recommendation]; ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0.5
	}
	return sum / float64(n)
}
