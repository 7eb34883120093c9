// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package conflicts flags candidates who cannot referee a manuscript:
// its authors, colleagues at an author's institution, people the authors
// opposed, and the assigned editors.
package conflicts

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/referee-engine/internal/names"
	"github.com/pdiddy/referee-engine/pkg/types"
)

// InstitutionMatcher decides whether two institution strings name the same
// organisation. identity.Session satisfies it with catalog-backed
// canonicalization.
type InstitutionMatcher interface {
	InstitutionsMatch(ctx context.Context, a, b string) bool
}

type lexicalMatcher struct{}

func (lexicalMatcher) InstitutionsMatch(_ context.Context, a, b string) bool {
	return names.InstitutionMatch(a, b)
}

// Detector annotates candidates with conflict reasons.
type Detector struct {
	inst InstitutionMatcher
	log  *zap.Logger
}

// Result splits the candidates. Both lists keep the input order.
type Result struct {
	Clean      []types.Candidate
	Conflicted []types.Candidate
}

// New creates a Detector. A nil matcher falls back to lexical institution
// matching.
func New(inst InstitutionMatcher, log *zap.Logger) *Detector {
	if inst == nil {
		inst = lexicalMatcher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Detector{inst: inst, log: log}
}

// Check evaluates every candidate against m. Conflicted candidates are
// retained in Result.Conflicted with their reasons.
func (d *Detector) Check(ctx context.Context, m types.ManuscriptRecord, cands []types.Candidate) Result {
	res := Result{
		Clean:      make([]types.Candidate, 0, len(cands)),
		Conflicted: make([]types.Candidate, 0),
	}
	for _, c := range cands {
		c.Conflicts = nil
		c.IsConflicted, c.AuthorOpposed = false, false
		d.annotate(ctx, m, &c)
		if c.IsConflicted {
			d.log.Debug("candidate conflicted",
				zap.String("manuscript", m.ID),
				zap.String("candidate", c.Name),
				zap.Strings("reasons", c.Conflicts))
			res.Conflicted = append(res.Conflicted, c)
			continue
		}
		res.Clean = append(res.Clean, c)
	}
	return res
}

func (d *Detector) annotate(ctx context.Context, m types.ManuscriptRecord, c *types.Candidate) {
	for _, a := range m.Authors {
		if samePerson(c.Person, a) {
			c.AddConflict("co-author: " + a.Name)
		}
	}
	for _, a := range m.Authors {
		if inst, ok := d.sharedInstitution(ctx, *c, a); ok {
			c.AddConflict(fmt.Sprintf("institutional overlap with author %s (%s)", a.Name, inst))
		}
	}
	for _, o := range m.OpposedReferees {
		if samePerson(c.Person, o) {
			c.AddConflict("opposed by authors")
			c.AuthorOpposed = true
			break
		}
	}
	for _, e := range m.Editors {
		if samePerson(c.Person, e) {
			c.AddConflict("assigned editor: " + e.Name)
		}
	}
}

// sharedInstitution compares the candidate's recorded and last known
// institutions with the author's.
func (d *Detector) sharedInstitution(ctx context.Context, c types.Candidate, author types.Person) (string, bool) {
	theirs := strings.TrimSpace(author.Institution)
	if theirs == "" {
		return "", false
	}
	for _, mine := range []string{c.Institution, c.Profile.LastKnownInstitution} {
		if strings.TrimSpace(mine) == "" {
			continue
		}
		if d.inst.InstitutionsMatch(ctx, mine, theirs) {
			return theirs, true
		}
	}
	return "", false
}

// samePerson matches by email when both sides carry one, else by name.
func samePerson(a, b types.Person) bool {
	ea, eb := a.NormalizedEmail(), b.NormalizedEmail()
	if ea != "" && eb != "" {
		if ea == eb {
			return true
		}
	}
	if na := names.Normalize(a.Name); na != "" && na == names.Normalize(b.Name) {
		return true
	}
	return names.NameMatch(a.Name, b.Name)
}

// SuggestedStatus maps each author-suggested referee, by the name the
// authors gave, to recommended, conflict or not_found depending on where
// the person landed in the candidate lists.
func SuggestedStatus(suggested []types.Person, clean, conflicted []types.Candidate) map[string]string {
	out := make(map[string]string, len(suggested))
	for _, s := range suggested {
		key := strings.TrimSpace(s.Name)
		if key == "" {
			key = s.NormalizedEmail()
		}
		if key == "" {
			continue
		}
		switch {
		case containsPerson(conflicted, s):
			out[key] = types.SuggestedConflict
		case containsPerson(clean, s):
			out[key] = types.SuggestedRecommended
		default:
			out[key] = types.SuggestedNotFound
		}
	}
	return out
}

func containsPerson(list []types.Candidate, p types.Person) bool {
	for _, c := range list {
		if samePerson(c.Person, p) {
			return true
		}
	}
	return false
}
