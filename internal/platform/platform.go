// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package platform describes the manuscript-handling platforms journals run
// on, and which manuscripts on each still need referees.
package platform

import (
	"fmt"
	"strings"

	"github.com/pdiddy/referee-engine/pkg/types"
)

// Kind is a manuscript platform.
type Kind string

// Supported platforms.
const (
	ScholarOne       Kind = "scholarone"
	EditorialManager Kind = "editorial_manager"
	EJPress          Kind = "ejpress"
	Generic          Kind = "generic"
)

// defaultRequiredReferees is the number of active referees after which a
// manuscript no longer needs more, unless the journal sets its own.
const defaultRequiredReferees = 1

// Rules decide which manuscripts are awaiting referees.
type Rules struct {
	Kind Kind

	// AwaitingStatuses are manuscript statuses that mean referees are
	// still being recruited.
	AwaitingStatuses []string

	// ActiveRefereeStatuses are referee statuses that count toward the
	// required number of referees.
	ActiveRefereeStatuses []string

	// RequiredReferees is the number of active referees a manuscript needs.
	RequiredReferees int
}

// ParseKind maps a configured platform name to a Kind. Empty means generic.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return Generic, nil
	case ScholarOne, EditorialManager, EJPress, Generic:
		return k, nil
	}
	return "", fmt.Errorf("unknown platform %q", s)
}

// Defaults returns the built-in rules of a platform.
func Defaults(k Kind) Rules {
	switch k {
	case ScholarOne:
		return Rules{
			Kind:                  k,
			RequiredReferees:      defaultRequiredReferees,
			AwaitingStatuses:      []string{"Awaiting Referee Selection", "Awaiting Referee Assignment", "Awaiting Reviewer Selection", "Awaiting Reviewer Invitation"},
			ActiveRefereeStatuses: []string{"Agreed", "Invited", "Awaiting Report", "Report Submitted"},
		}
	case EditorialManager:
		return Rules{
			Kind:                  k,
			RequiredReferees:      defaultRequiredReferees,
			AwaitingStatuses:      []string{"With Editor", "Editor Assigned", "Reviewers Invited - No Responses"},
			ActiveRefereeStatuses: []string{"Agreed to Review", "Invited", "Review Completed"},
		}
	case EJPress:
		return Rules{
			Kind:                  k,
			RequiredReferees:      defaultRequiredReferees,
			AwaitingStatuses:      []string{"Awaiting Referee", "Referee Search"},
			ActiveRefereeStatuses: []string{"Agreed", "Contacted", "Report Pending", "Report Received"},
		}
	}
	return Rules{
		Kind:                  Generic,
		RequiredReferees:      defaultRequiredReferees,
		AwaitingStatuses:      []string{"Awaiting Referees", "Submitted", "New Submission"},
		ActiveRefereeStatuses: []string{"Agreed", "Accepted", "Invited", "Report Submitted"},
	}
}

// RulesFor returns the platform rules of a journal, with any configured
// status lists replacing the defaults.
func RulesFor(j types.JournalConfig) (Rules, error) {
	k, err := ParseKind(j.Platform)
	if err != nil {
		return Rules{}, fmt.Errorf("journal %s: %w", j.Code, err)
	}
	r := Defaults(k)
	if len(j.AwaitingStatuses) > 0 {
		r.AwaitingStatuses = j.AwaitingStatuses
	}
	if len(j.ActiveRefereeStatuses) > 0 {
		r.ActiveRefereeStatuses = j.ActiveRefereeStatuses
	}
	if j.RequiredReferees > 0 {
		r.RequiredReferees = j.RequiredReferees
	}
	return r, nil
}

// AwaitingReferees reports whether m is in an awaiting status and still
// lacks the required number of active referees (one by default).
func (r Rules) AwaitingReferees(m types.ManuscriptRecord) bool {
	if !containsStatus(r.AwaitingStatuses, m.Status) {
		return false
	}
	required := r.RequiredReferees
	if required <= 0 {
		required = defaultRequiredReferees
	}
	return r.ActiveReferees(m) < required
}

// ActiveReferees counts the referees of m in an active status.
func (r Rules) ActiveReferees(m types.ManuscriptRecord) int {
	n := 0
	for _, ref := range m.Referees {
		if containsStatus(r.ActiveRefereeStatuses, ref.Status) {
			n++
		}
	}
	return n
}

func containsStatus(list []string, status string) bool {
	status = normalize(status)
	if status == "" {
		return false
	}
	for _, s := range list {
		if normalize(s) == status {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
