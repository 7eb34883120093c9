// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package candidates

import (
	"strings"

	"github.com/pdiddy/referee-engine/internal/expertise"
	"github.com/pdiddy/referee-engine/internal/names"
	"github.com/pdiddy/referee-engine/pkg/types"
)

type member struct {
	c       types.Candidate
	history *expertise.Entry
}

// pool deduplicates candidates by identity key, and by name match when the
// emails do not contradict each other.
type pool struct {
	list  []*member
	byKey map[string]*member
}

func newPool() *pool {
	return &pool{byKey: make(map[string]*member)}
}

func (p *pool) add(c types.Candidate, history *expertise.Entry) {
	key := names.IdentityKey(c.Name, c.Email)
	if key == "" {
		return
	}
	if mem := p.find(c.Name, c.Email); mem != nil {
		mergeInto(mem, c, history)
		p.byKey[key] = mem
		return
	}
	c.Topics = unionFold(nil, c.Topics)
	mem := &member{c: c, history: history}
	p.list = append(p.list, mem)
	p.byKey[key] = mem
}

func (p *pool) find(name, email string) *member {
	if mem, ok := p.byKey[names.IdentityKey(name, email)]; ok {
		return mem
	}
	parsed := names.Parse(name)
	for _, mem := range p.list {
		if emailsCompatible(mem.c.Email, email) && names.ParsedMatch(parsed, names.Parse(mem.c.Name)) {
			return mem
		}
	}
	return nil
}

// exclude drops referees already attached to the manuscript.
func (p *pool) exclude(referees []types.RefereeRecord) {
	if len(referees) == 0 {
		return
	}
	drop := make(map[*member]bool)
	for _, r := range referees {
		if mem := p.find(r.Name, r.Email); mem != nil {
			drop[mem] = true
		}
	}
	kept := p.list[:0]
	for _, mem := range p.list {
		if !drop[mem] {
			kept = append(kept, mem)
		}
	}
	p.list = kept
	for k, mem := range p.byKey {
		if drop[mem] {
			delete(p.byKey, k)
		}
	}
}

func (p *pool) members() []*member {
	return append([]*member(nil), p.list...)
}

func mergeInto(mem *member, c types.Candidate, history *expertise.Entry) {
	dst := &mem.c
	for _, src := range strings.Split(c.Source, ",") {
		dst.AddSource(src)
	}
	if dst.Email == "" {
		dst.Email = c.Email
	}
	if dst.ORCID == "" {
		dst.ORCID = c.ORCID
	}
	if dst.Institution == "" {
		dst.Institution = c.Institution
	}
	if c.HIndex > dst.HIndex {
		dst.HIndex = c.HIndex
	}
	if dst.Profile.IsEmpty() {
		dst.Profile = c.Profile
	}
	if c.ReviewCount > dst.ReviewCount {
		dst.ReviewCount = c.ReviewCount
	}
	dst.Topics = unionFold(dst.Topics, c.Topics)
	dst.Venues = unionFold(dst.Venues, c.Venues)
	if mem.history == nil {
		mem.history = history
	}
}

func emailsCompatible(a, b string) bool {
	a, b = strings.ToLower(strings.TrimSpace(a)), strings.ToLower(strings.TrimSpace(b))
	return a == "" || b == "" || a == b
}

func unionFold(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, list := range [][]string{a, b} {
		for _, s := range list {
			s = strings.TrimSpace(s)
			k := names.Fold(s)
			if k == "" || seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, s)
		}
	}
	return out
}
