// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// TopPaper is one of a researcher's most cited works.
type TopPaper struct {
	Title     string `json:"title" yaml:"title"`
	Year      int    `json:"year,omitempty" yaml:"year,omitempty"`
	Citations int    `json:"citations" yaml:"citations"`
	Venue     string `json:"venue,omitempty" yaml:"venue,omitempty"`
}

// EnrichedProfile is the output of identity resolution. It is computed on
// demand and never treated as ground truth.
type EnrichedProfile struct {
	// AuthorID is the catalog-specific author identifier.
	AuthorID string `json:"author_id,omitempty" yaml:"author_id,omitempty"`

	// Source names the catalog(s) that produced the profile ("openalex", "semantic_scholar").
	Source string `json:"source,omitempty" yaml:"source,omitempty"`

	// DisplayName is the catalog's canonical name for the author.
	DisplayName string `json:"display_name,omitempty" yaml:"display_name,omitempty"`

	CitationCount int `json:"citation_count" yaml:"citation_count"`
	PaperCount    int `json:"paper_count" yaml:"paper_count"`
	HIndex        int `json:"h_index" yaml:"h_index"`

	TopPapers      []TopPaper `json:"top_papers,omitempty" yaml:"top_papers,omitempty"`
	ResearchTopics []string   `json:"research_topics,omitempty" yaml:"research_topics,omitempty"`

	LastKnownInstitution string `json:"last_known_institution,omitempty" yaml:"last_known_institution,omitempty"`
}

// IsEmpty reports whether the profile carries no resolved identity.
func (p EnrichedProfile) IsEmpty() bool {
	return p.AuthorID == "" && p.DisplayName == "" && p.CitationCount == 0 &&
		p.PaperCount == 0 && len(p.TopPapers) == 0 && len(p.ResearchTopics) == 0
}
