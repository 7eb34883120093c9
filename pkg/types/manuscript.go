// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the referee-engine pipeline.
// Implements: manuscript records and people (input boundary),
//
//	enriched profiles (identity resolution), candidates (candidate
//	finder and conflict detector), assessments (report quality and desk
//	rejection), decision reports (orchestrator), feedback records, and
//	the configuration tree.
package types

import (
	"strings"
	"time"
)

// Person is an author, editor, or referee as produced by upstream
// extraction. Only Name is required; every other field is optional.
type Person struct {
	// Name is the free-text name in any ordering ("Jane Doe", "Doe, Jane", "J. Doe").
	Name string `json:"name" yaml:"name"`

	// Email is the contact address, when known.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`

	// ORCID is the persistent researcher identifier (e.g. "0000-0002-1825-0097").
	ORCID string `json:"orcid,omitempty" yaml:"orcid,omitempty"`

	// Institution is the free-text affiliation string.
	Institution string `json:"institution,omitempty" yaml:"institution,omitempty"`

	// HIndex is an h-index hint carried by the upstream record. Zero means unknown.
	HIndex int `json:"h_index,omitempty" yaml:"h_index,omitempty"`
}

// NormalizedEmail returns the lowercased, trimmed email address.
func (p Person) NormalizedEmail() string {
	return strings.ToLower(strings.TrimSpace(p.Email))
}

// RefereeRecord is a referee already attached to a manuscript, with the
// invitation status and, when submitted, the report.
type RefereeRecord struct {
	Person `yaml:",inline"`

	// Status is the platform's invitation/report status ("Agreed", "Declined", ...).
	Status string `json:"status,omitempty" yaml:"status,omitempty"`

	// Recommendation is the structured recommendation field ("Accept", "Minor Revision", ...).
	Recommendation string `json:"recommendation,omitempty" yaml:"recommendation,omitempty"`

	// ReportText is the free-text comments to the author.
	ReportText string `json:"report_text,omitempty" yaml:"report_text,omitempty"`

	// InvitedAt is when the invitation was sent.
	InvitedAt time.Time `json:"invited_at,omitempty" yaml:"invited_at,omitempty"`

	// RespondedAt is when the referee answered the invitation.
	RespondedAt time.Time `json:"responded_at,omitempty" yaml:"responded_at,omitempty"`
}

// HasReport reports whether the referee submitted report text.
func (r RefereeRecord) HasReport() bool {
	return strings.TrimSpace(r.ReportText) != ""
}

// ManuscriptRecord is the immutable input to the pipeline, owned by the caller.
type ManuscriptRecord struct {
	// ID is the journal-assigned manuscript identifier.
	ID string `json:"id" yaml:"id"`

	// Title is the manuscript title.
	Title string `json:"title" yaml:"title"`

	// Abstract is the manuscript abstract.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Keywords are the author-supplied keywords.
	Keywords []string `json:"keywords" yaml:"keywords"`

	// Authors lists the submitting authors in byline order.
	Authors []Person `json:"authors" yaml:"authors"`

	// Editors lists the assigned handling editors.
	Editors []Person `json:"editors,omitempty" yaml:"editors,omitempty"`

	// Referees lists referees already invited or assigned.
	Referees []RefereeRecord `json:"referees,omitempty" yaml:"referees,omitempty"`

	// JournalCode is the short journal code (e.g. "SICON").
	JournalCode string `json:"journal_code" yaml:"journal_code"`

	// OpposedReferees are people the authors asked not to be invited.
	OpposedReferees []Person `json:"opposed_referees,omitempty" yaml:"opposed_referees,omitempty"`

	// SuggestedReferees are people the authors proposed as reviewers.
	SuggestedReferees []Person `json:"suggested_referees,omitempty" yaml:"suggested_referees,omitempty"`

	// Status is the manuscript status string as reported by the platform.
	Status string `json:"status,omitempty" yaml:"status,omitempty"`

	// SubmittedAt is the submission date.
	SubmittedAt time.Time `json:"submitted_at,omitempty" yaml:"submitted_at,omitempty"`
}

// Summary returns title, abstract, and keywords joined into one text used
// for semantic comparisons.
func (m ManuscriptRecord) Summary() string {
	parts := make([]string, 0, 3)
	if m.Title != "" {
		parts = append(parts, m.Title)
	}
	if m.Abstract != "" {
		parts = append(parts, m.Abstract)
	}
	if len(m.Keywords) > 0 {
		parts = append(parts, strings.Join(m.Keywords, ", "))
	}
	return strings.Join(parts, ". ")
}

// Reports returns the referee records that carry report text.
func (m ManuscriptRecord) Reports() []RefereeRecord {
	var out []RefereeRecord
	for _, r := range m.Referees {
		if r.HasReport() {
			out = append(out, r)
		}
	}
	return out
}
