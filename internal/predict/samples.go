// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package predict

import (
	"strings"

	"github.com/pdiddy/referee-engine/internal/embed"
	"github.com/pdiddy/referee-engine/internal/expertise"
	"github.com/pdiddy/referee-engine/internal/names"
	"github.com/pdiddy/referee-engine/pkg/types"
)

// BuildResponseSamples derives one sample per historical invitation whose
// outcome is known. Features describe the referee as they looked before
// the invitation: this invitation and its keywords are removed from the
// referee's history. Referee decisions in the feedback log override the
// recorded status.
func BuildResponseSamples(history []types.ManuscriptRecord, entries []expertise.Entry, engine *embed.Engine, feedback []types.FeedbackRecord) []Sample {
	if engine == nil {
		engine = embed.New(types.EmbeddingConfig{})
	}
	lookup := entryLookup(entries)
	var out []Sample
	for _, m := range history {
		journal := strings.ToUpper(m.JournalCode)
		for _, r := range m.Referees {
			label := refereeLabel(m, r, feedback)
			if label == types.LabelUnknown {
				continue
			}
			in := ResponseInput{
				HIndex:         r.HIndex,
				AcceptanceRate: -1,
				HasEmail:       strings.TrimSpace(r.Email) != "",
			}
			var topics []string
			if e, ok := lookup(r.Person); ok {
				if in.HIndex == 0 {
					in.HIndex = e.HIndex
				}
				invited := max(e.InvitedBy(journal)-1, 0)
				accepted := max(e.Acceptances[journal]-int(label), 0)
				in.Invitations = invited
				if invited > 0 {
					in.AcceptanceRate = float64(min(accepted, invited)) / float64(invited)
				}
				topics = withoutKeywords(e.Topics, m.Keywords)
			}
			in.TopicOverlap = embed.KeywordOverlap(m.Keywords, topics)
			in.Similarity = engine.TextSimilarity(m.Summary(), strings.Join(topics, ". "))
			out = append(out, Sample{Features: ResponseFeatures(in), Label: int(label)})
		}
	}
	return out
}

// BuildOutcomeSamples derives one sample per manuscript with a decided
// outcome. A manuscript-level decision in the feedback log overrides the
// recorded status; the latest record wins.
func BuildOutcomeSamples(history []types.ManuscriptRecord, feedback []types.FeedbackRecord, featurize func(types.ManuscriptRecord) OutcomeInput) []Sample {
	var out []Sample
	for _, m := range history {
		status := m.Status
		if d, ok := latestDecision(feedback, m, ""); ok {
			status = d
		}
		label := types.ClassifyManuscriptStatus(status)
		if label == types.LabelUnknown {
			continue
		}
		out = append(out, Sample{Features: OutcomeFeatures(featurize(m)), Label: int(label)})
	}
	return out
}

func refereeLabel(m types.ManuscriptRecord, r types.RefereeRecord, feedback []types.FeedbackRecord) types.Label {
	if d, ok := latestDecision(feedback, m, r.Name); ok {
		if l := types.ClassifyRefereeStatus(d); l != types.LabelUnknown {
			return l
		}
	}
	if l := types.ClassifyRefereeStatus(r.Status); l != types.LabelUnknown {
		return l
	}
	if r.HasReport() {
		return types.LabelPositive
	}
	return types.LabelUnknown
}

// latestDecision finds the newest feedback decision for m. An empty referee
// selects manuscript-level records, otherwise records naming that referee.
func latestDecision(feedback []types.FeedbackRecord, m types.ManuscriptRecord, referee string) (string, bool) {
	var best types.FeedbackRecord
	found := false
	for _, f := range feedback {
		if f.ManuscriptID != m.ID || !strings.EqualFold(f.Journal, m.JournalCode) {
			continue
		}
		if referee == "" {
			if f.Referee != "" {
				continue
			}
		} else if f.Referee == "" || !names.NameMatch(f.Referee, referee) {
			continue
		}
		if !found || !f.RecordedAt.Before(best.RecordedAt) {
			best, found = f, true
		}
	}
	return best.Decision, found
}

func entryLookup(entries []expertise.Entry) func(types.Person) (expertise.Entry, bool) {
	byKey := make(map[string]expertise.Entry, 2*len(entries))
	for _, e := range entries {
		byKey[e.Key()] = e
		if k := names.IdentityKey(e.Name, ""); k != "" {
			if _, taken := byKey[k]; !taken {
				byKey[k] = e
			}
		}
	}
	return func(p types.Person) (expertise.Entry, bool) {
		if e, ok := byKey[names.IdentityKey(p.Name, p.Email)]; ok {
			return e, true
		}
		e, ok := byKey[names.IdentityKey(p.Name, "")]
		return e, ok
	}
}

func withoutKeywords(topics, keywords []string) []string {
	drop := make(map[string]bool, len(keywords))
	for _, k := range keywords {
		drop[names.Fold(k)] = true
	}
	var out []string
	for _, t := range topics {
		if !drop[names.Fold(t)] {
			out = append(out, t)
		}
	}
	return out
}
