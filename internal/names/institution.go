// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package names

import (
	"strings"

	"github.com/pdiddy/referee-engine/pkg/types"
)

// institutionStopwords are organizational and geographic words that carry no
// identity on their own.
var institutionStopwords = map[string]bool{
	"university": true, "univ": true, "universite": true, "universitat": true,
	"universidad": true, "universita": true, "institute": true, "inst": true,
	"institut": true, "instituto": true, "department": true, "dept": true,
	"school": true, "college": true, "faculty": true, "center": true,
	"centre": true, "laboratory": true, "laboratories": true, "lab": true,
	"division": true, "program": true, "programme": true, "graduate": true,
	"research": true, "national": true, "technology": true, "sciences": true,
	"science": true, "of": true, "the": true, "and": true, "for": true,
	"at": true, "in": true, "de": true, "la": true, "et": true, "fur": true,
	"di": true, "da": true, "del": true, "della": true, "des": true,
	"du": true, "der": true, "y": true, "e": true, "do": true,
	"dipartimento": true, "departement": true, "departamento": true,
	"fachbereich": true, "abteilung": true, "facultad": true, "faculte": true,
	"fakultat": true, "ecole": true, "escuela": true, "scuola": true,
	// Country and region words.
	"usa": true, "us": true, "united": true, "states": true, "america": true,
	"uk": true, "kingdom": true, "england": true, "france": true,
	"germany": true, "china": true, "japan": true, "canada": true,
	"italy": true, "spain": true, "netherlands": true, "switzerland": true,
	"australia": true, "india": true, "korea": true, "sweden": true,
	"israel": true, "brazil": true, "belgium": true, "austria": true,
}

// disciplineWords name fields of study and academic units. Many
// institutions have a department of mathematics, so sharing one says
// nothing about sharing an institution.
var disciplineWords = map[string]bool{
	"mathematics": true, "mathematical": true, "math": true, "maths": true,
	"mathematik": true, "mathematiques": true, "matematica": true,
	"matematicas": true, "statistics": true, "statistical": true,
	"statistik": true, "probability": true, "actuarial": true,
	"physics": true, "physical": true, "chemistry": true, "biology": true,
	"economics": true, "economic": true, "finance": true, "financial": true,
	"business": true, "management": true, "operations": true,
	"engineering": true, "electrical": true, "mechanical": true,
	"industrial": true, "civil": true, "computer": true, "computing": true,
	"computational": true, "informatics": true, "informatique": true,
	"informatik": true, "information": true, "data": true, "systems": true,
	"control": true, "decision": true, "analysis": true, "applied": true,
	"pure": true, "medicine": true, "medical": true, "fisica": true,
}

// acronymSkip are connective words skipped when deriving an acronym.
var acronymSkip = map[string]bool{
	"of": true, "the": true, "and": true, "for": true, "at": true, "in": true,
	"de": true, "la": true, "et": true, "di": true, "del": true, "della": true,
	"des": true, "du": true, "der": true,
}

// InstitutionMatcher decides institution overlap with tunable thresholds.
type InstitutionMatcher struct {
	ShortThreshold int
	LongThreshold  int
	LongMinTokens  int
}

// NewInstitutionMatcher builds a matcher from configuration, filling unset
// thresholds with the defaults (1, 2, 3).
func NewInstitutionMatcher(cfg types.InstitutionMatchConfig) InstitutionMatcher {
	m := InstitutionMatcher{
		ShortThreshold: cfg.ShortThreshold,
		LongThreshold:  cfg.LongThreshold,
		LongMinTokens:  cfg.LongMinTokens,
	}
	if m.ShortThreshold <= 0 {
		m.ShortThreshold = 1
	}
	if m.LongThreshold <= 0 {
		m.LongThreshold = 2
	}
	if m.LongMinTokens <= 0 {
		m.LongMinTokens = 3
	}
	return m
}

// DefaultInstitutionMatcher uses the default thresholds.
var DefaultInstitutionMatcher = NewInstitutionMatcher(types.InstitutionMatchConfig{})

// InstitutionMatch reports whether a and b plausibly name the same
// institution under the default thresholds.
func InstitutionMatch(a, b string) bool {
	return DefaultInstitutionMatcher.Match(a, b)
}

// Match reports whether a and b share enough meaningful tokens. The
// required overlap is ShortThreshold when the longer side has fewer than
// LongMinTokens meaningful tokens, LongThreshold otherwise, and never more
// than the shorter side's token count. An acronym on one side that spells
// the other side's initials is also a match.
func (m InstitutionMatcher) Match(a, b string) bool {
	ta, tb := InstitutionTokens(a), InstitutionTokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return false
	}
	if acronymOf(a, b) || acronymOf(b, a) {
		return true
	}

	set := make(map[string]bool, len(ta))
	for _, t := range ta {
		set[t] = true
	}
	overlap := 0
	for _, t := range tb {
		if set[t] {
			overlap++
			delete(set, t)
		}
	}

	shorter, longer := len(ta), len(tb)
	if shorter > longer {
		shorter, longer = longer, shorter
	}
	required := m.ShortThreshold
	if longer >= m.LongMinTokens {
		required = m.LongThreshold
	}
	if required > shorter {
		required = shorter
	}
	return overlap >= required
}

// InstitutionTokens returns the distinct meaningful tokens of an
// institution string in order of appearance. Organizational, geographic,
// connective and discipline words are dropped.
func InstitutionTokens(s string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, tok := range strings.Fields(Fold(s)) {
		if institutionStopwords[tok] || disciplineWords[tok] || len(tok) < 2 || seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}

// acronymOf reports whether short is a single token equal to the initials
// of long, e.g. "MIT" and "Massachusetts Institute of Technology".
func acronymOf(short, long string) bool {
	st := strings.Fields(Fold(short))
	if len(st) != 1 || len(st[0]) < 2 {
		return false
	}
	var initials strings.Builder
	lt := strings.Fields(Fold(long))
	if len(lt) < 2 {
		return false
	}
	for _, tok := range lt {
		if acronymSkip[tok] {
			continue
		}
		initials.WriteByte(tok[0])
	}
	return initials.String() == st[0]
}
