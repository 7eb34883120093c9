// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package names normalizes person names and institution strings and
// decides whether two of them refer to the same entity. The rules here
// are shared by identity resolution, expertise-index deduplication,
// candidate merging, and conflict detection.
package names

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// surnameParticles are lowercase tokens that belong to a compound surname
// when they directly precede the final name token.
var surnameParticles = map[string]bool{
	"van": true, "von": true, "de": true, "der": true, "den": true,
	"del": true, "della": true, "dei": true, "di": true, "da": true,
	"du": true, "la": true, "le": true, "bin": true, "binti": true,
	"ibn": true, "al": true, "el": true, "dos": true, "das": true,
	"ter": true, "ten": true, "st": true, "mac": true, "ap": true,
}

// nameNoise are honorifics and suffixes dropped before parsing.
var nameNoise = map[string]bool{
	"dr": true, "prof": true, "professor": true, "mr": true, "mrs": true,
	"ms": true, "jr": true, "sr": true, "ii": true, "iii": true, "iv": true,
	"phd": true, "md": true,
}

// letterFolds covers letters that NFD does not decompose.
var letterFolds = strings.NewReplacer(
	"ø", "o", "Ø", "o", "ł", "l", "Ł", "l", "ß", "ss", "æ", "ae", "Æ", "ae",
	"œ", "oe", "Œ", "oe", "đ", "d", "Đ", "d", "ı", "i", "þ", "th",
)

// Fold lowercases s, removes diacritics, and replaces punctuation with
// spaces. Apostrophes are dropped so that "O'Brien" folds to "obrien".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, letterFolds.Replace(s))
	if err != nil {
		folded = s
	}

	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		switch {
		case r == '\'' || r == '’' || r == '`':
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Name is a parsed person name.
type Name struct {
	// Tokens are the folded name tokens in "given ... surname" order.
	Tokens []string

	// Given are the tokens before the surname.
	Given []string

	// Surname is the final token plus any directly preceding particles,
	// space separated.
	Surname string
}

// Parse normalizes raw and splits it into given names and surname.
// "Doe, Jane" is rotated to "Jane Doe".
func Parse(raw string) Name {
	raw = strings.TrimSpace(raw)
	if before, after, ok := strings.Cut(raw, ","); ok && !strings.Contains(after, ",") {
		if strings.TrimSpace(after) != "" && !isNoiseOnly(after) {
			raw = after + " " + before
		} else {
			raw = before
		}
	}

	var tokens []string
	for _, tok := range strings.Fields(Fold(raw)) {
		if nameNoise[tok] {
			continue
		}
		tokens = append(tokens, tok)
	}
	if len(tokens) == 0 {
		return Name{}
	}

	// The first token is always a given name, even when it doubles as a
	// particle ("Van Nguyen", "Al Roth").
	start := len(tokens) - 1
	for start > 1 && surnameParticles[tokens[start-1]] {
		start--
	}
	return Name{
		Tokens:  tokens,
		Given:   tokens[:start],
		Surname: strings.Join(tokens[start:], " "),
	}
}

func isNoiseOnly(s string) bool {
	for _, tok := range strings.Fields(Fold(s)) {
		if !nameNoise[tok] {
			return false
		}
	}
	return true
}

// Normalize returns the folded "given surname" form of raw.
func Normalize(raw string) string {
	return strings.Join(Parse(raw).Tokens, " ")
}

// NameMatch reports whether a and b plausibly name the same person: equal
// surnames and at least one given-name token that matches exactly or by
// initial expansion. A surname mismatch is never a match.
func NameMatch(a, b string) bool {
	return ParsedMatch(Parse(a), Parse(b))
}

// ParsedMatch is NameMatch on already parsed names.
func ParsedMatch(pa, pb Name) bool {
	if pa.Surname == "" || pa.Surname != pb.Surname {
		return false
	}
	for _, ga := range pa.Given {
		for _, gb := range pb.Given {
			if givenMatch(ga, gb) {
				return true
			}
		}
	}
	return false
}

func givenMatch(a, b string) bool {
	if a == b {
		return true
	}
	if len(a) == 1 && strings.HasPrefix(b, a) {
		return true
	}
	return len(b) == 1 && strings.HasPrefix(a, b)
}

// TokenSetEqual reports whether both names have exactly the same token set.
func TokenSetEqual(a, b Name) bool {
	return strings.Join(sortedSet(a.Tokens), " ") == strings.Join(sortedSet(b.Tokens), " ")
}

func sortedSet(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	var out []string
	for _, t := range tokens {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

// IdentityKey is the deduplication key for a person: the lowercased email
// when present, otherwise the normalized name.
func IdentityKey(name, email string) string {
	if e := strings.ToLower(strings.TrimSpace(email)); e != "" {
		return "email:" + e
	}
	if n := Normalize(name); n != "" {
		return "name:" + n
	}
	return ""
}
