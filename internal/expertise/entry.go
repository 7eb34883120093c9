// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package expertise

import (
	"strings"

	"github.com/pdiddy/referee-engine/internal/names"
	"github.com/pdiddy/referee-engine/pkg/types"
)

// Entry is one deduplicated referee in the expertise index.
type Entry struct {
	types.Person `yaml:",inline"`

	// Topics are the keywords of manuscripts the referee was invited to.
	Topics []string `json:"topics" yaml:"topics"`

	// Venues are the journal codes the referee was invited by.
	Venues []string `json:"venues" yaml:"venues"`

	// ReviewCount is the number of submitted reports.
	ReviewCount int `json:"review_count" yaml:"review_count"`

	// Invitations and Acceptances count invitations and agreements per
	// journal code.
	Invitations map[string]int `json:"invitations,omitempty" yaml:"invitations,omitempty"`
	Acceptances map[string]int `json:"acceptances,omitempty" yaml:"acceptances,omitempty"`
}

// Key returns the deduplication key: email when present, else the
// normalized name.
func (e Entry) Key() string {
	return names.IdentityKey(e.Name, e.Email)
}

// Text is the representative text embedded for semantic search.
func (e Entry) Text() string {
	return strings.Join(e.Topics, ". ")
}

// InvitedBy returns the invitation count for journal.
func (e Entry) InvitedBy(journal string) int {
	return e.Invitations[strings.ToUpper(journal)]
}

// AcceptanceRate returns the share of invitations from journal the referee
// accepted, or -1 when there were none.
func (e Entry) AcceptanceRate(journal string) float64 {
	n := e.InvitedBy(journal)
	if n == 0 {
		return -1
	}
	return float64(e.Acceptances[strings.ToUpper(journal)]) / float64(n)
}

// richness scores how complete the record is: one point per populated
// optional field plus one for a known h-index.
func (e Entry) richness() int {
	score := 0
	for _, f := range []string{e.Email, e.ORCID, e.Institution} {
		if strings.TrimSpace(f) != "" {
			score++
		}
	}
	if e.HIndex > 0 {
		score++
	}
	return score
}

// Deduplicate merges entries that share a key. The richer record wins the
// identity fields (earlier record on ties); topics and venues are unioned
// and counts summed. Output keeps first-seen order.
func Deduplicate(entries []Entry) []Entry {
	index := make(map[string]int)
	var out []Entry
	for _, e := range entries {
		key := e.Key()
		if key == "" {
			continue
		}
		i, ok := index[key]
		if !ok {
			index[key] = len(out)
			out = append(out, cloneEntry(e))
			continue
		}
		out[i] = merge(out[i], e)
	}
	return out
}

func merge(a, b Entry) Entry {
	base, other := a, b
	if b.richness() > a.richness() {
		base, other = cloneEntry(b), a
	}
	if base.Email == "" {
		base.Email = other.Email
	}
	if base.ORCID == "" {
		base.ORCID = other.ORCID
	}
	if base.Institution == "" {
		base.Institution = other.Institution
	}
	if base.HIndex == 0 {
		base.HIndex = other.HIndex
	}
	base.Topics = union(base.Topics, other.Topics)
	base.Venues = union(base.Venues, other.Venues)
	base.ReviewCount += other.ReviewCount
	base.Invitations = sumCounts(base.Invitations, other.Invitations)
	base.Acceptances = sumCounts(base.Acceptances, other.Acceptances)
	return base
}

func cloneEntry(e Entry) Entry {
	e.Topics = append([]string(nil), e.Topics...)
	e.Venues = append([]string(nil), e.Venues...)
	e.Invitations = sumCounts(nil, e.Invitations)
	e.Acceptances = sumCounts(nil, e.Acceptances)
	return e
}

// union appends items of b missing from a, comparing case-insensitively.
func union(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, s := range list {
			k := strings.ToLower(strings.TrimSpace(s))
			if k == "" || seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

func sumCounts(a, b map[string]int) map[string]int {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make(map[string]int, len(a)+len(b))
	for k, v := range a {
		out[k] += v
	}
	for k, v := range b {
		out[k] += v
	}
	return out
}

// entriesFromManuscript produces one raw entry per referee of m.
func entriesFromManuscript(m types.ManuscriptRecord, journal string) []Entry {
	journal = strings.ToUpper(journal)
	out := make([]Entry, 0, len(m.Referees))
	for _, r := range m.Referees {
		if strings.TrimSpace(r.Name) == "" && strings.TrimSpace(r.Email) == "" {
			continue
		}
		e := Entry{
			Person:      r.Person,
			Topics:      union(nil, m.Keywords),
			Venues:      []string{journal},
			Invitations: map[string]int{journal: 1},
		}
		if r.HasReport() {
			e.ReviewCount = 1
		}
		if types.ClassifyRefereeStatus(r.Status) == types.LabelPositive || r.HasReport() {
			e.Acceptances = map[string]int{journal: 1}
		}
		out = append(out, e)
	}
	return out
}
