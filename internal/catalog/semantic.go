// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/referee-engine/internal/httputil"
	"github.com/pdiddy/referee-engine/pkg/types"
)

// semanticAPIBase is the Semantic Scholar Graph API root. Declared as a
// var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1"

const (
	semanticAuthorFields = "name,affiliations,citationCount,paperCount,hIndex,externalIds"
	semanticPaperFields  = "title,year,venue,citationCount,fieldsOfStudy"
	semanticSearchFields = "title,year,venue,citationCount,fieldsOfStudy,authors"
)

// SemanticScholar queries the Semantic Scholar author and paper APIs.
type SemanticScholar struct {
	client
}

// NewSemanticScholar creates a Semantic Scholar catalog. An empty apiKey
// uses the anonymous pool.
func NewSemanticScholar(hc *http.Client, gate *httputil.Gate, userAgent, apiKey string) *SemanticScholar {
	c := client{http: hc, gate: gate, userAgent: userAgent}
	if apiKey != "" {
		c.headers = map[string]string{"x-api-key": apiKey}
	}
	return &SemanticScholar{client: c}
}

// Name returns the catalog identifier.
func (s *SemanticScholar) Name() string { return types.SourceSemanticScholar }

// LookupID is unsupported: the author API has no ORCID lookup.
func (s *SemanticScholar) LookupID(context.Context, string) (Author, error) {
	return Author{}, ErrUnsupported
}

// SearchAuthors searches authors by name.
func (s *SemanticScholar) SearchAuthors(ctx context.Context, name string, limit int) ([]Author, error) {
	if strings.TrimSpace(name) == "" {
		return nil, nil
	}
	params := url.Values{
		"query":  {name},
		"limit":  {fmt.Sprintf("%d", clampLimit(limit, 25, 10, 100))},
		"fields": {semanticAuthorFields},
	}
	var resp semanticAuthorSearch
	if err := s.getJSON(ctx, semanticAPIBase+"/author/search?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("Semantic Scholar author search: %w", err)
	}
	authors := make([]Author, 0, len(resp.Data))
	for _, a := range resp.Data {
		authors = append(authors, a.toAuthor())
	}
	return authors, nil
}

// Enrich fetches the author's papers and derives top papers and topics
// from them.
func (s *SemanticScholar) Enrich(ctx context.Context, a Author) (Author, error) {
	if a.ID == "" {
		return a, nil
	}
	params := url.Values{
		"fields": {semanticPaperFields},
		"limit":  {"100"},
	}
	reqURL := semanticAPIBase + "/author/" + url.PathEscape(a.ID) + "/papers?" + params.Encode()
	var resp semanticPaperList
	if err := s.getJSON(ctx, reqURL, &resp); err != nil {
		return a, fmt.Errorf("Semantic Scholar papers for %s: %w", a.ID, err)
	}

	papers := make([]types.TopPaper, 0, len(resp.Data))
	counts := make(map[string]int)
	for _, p := range resp.Data {
		papers = append(papers, p.toTopPaper())
		for _, f := range p.FieldsOfStudy {
			counts[f]++
		}
	}
	a.TopPapers = topPapers(papers, topPaperCount)
	if len(a.Topics) == 0 {
		a.Topics = rankedTopics(counts, topicCount)
	}
	return a, nil
}

// SearchExperts returns authors of papers matching query.
func (s *SemanticScholar) SearchExperts(ctx context.Context, query string, limit int) ([]Author, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	params := url.Values{
		"query":  {query},
		"limit":  {fmt.Sprintf("%d", clampLimit(limit, 20, 1, 100))},
		"fields": {semanticSearchFields},
	}
	var resp semanticPaperList
	if err := s.getJSON(ctx, semanticAPIBase+"/paper/search?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("Semantic Scholar paper search: %w", err)
	}

	byID := make(map[string]int)
	var authors []Author
	for _, p := range resp.Data {
		paper := p.toTopPaper()
		for _, pa := range p.Authors {
			if pa.Name == "" {
				continue
			}
			key := pa.AuthorID
			if key == "" {
				key = "name:" + pa.Name
			}
			idx, ok := byID[key]
			if !ok {
				idx = len(authors)
				byID[key] = idx
				authors = append(authors, Author{
					ID:     pa.AuthorID,
					Source: types.SourceSemanticScholar,
					Name:   pa.Name,
				})
			}
			authors[idx].TopPapers = append(authors[idx].TopPapers, paper)
			for _, f := range p.FieldsOfStudy {
				if !containsFold(authors[idx].Topics, f) {
					authors[idx].Topics = append(authors[idx].Topics, f)
				}
			}
		}
	}
	return authors, nil
}

// Semantic Scholar API JSON structures.
type semanticAuthorSearch struct {
	Data []semanticAuthor `json:"data"`
}

type semanticAuthor struct {
	AuthorID      string         `json:"authorId"`
	Name          string         `json:"name"`
	Affiliations  []string       `json:"affiliations"`
	CitationCount int            `json:"citationCount"`
	PaperCount    int            `json:"paperCount"`
	HIndex        int            `json:"hIndex"`
	ExternalIDs   map[string]any `json:"externalIds"`
}

func (sa semanticAuthor) toAuthor() Author {
	a := Author{
		ID:            sa.AuthorID,
		Source:        types.SourceSemanticScholar,
		Name:          sa.Name,
		CitationCount: sa.CitationCount,
		PaperCount:    sa.PaperCount,
		HIndex:        sa.HIndex,
	}
	if len(sa.Affiliations) > 0 {
		a.Institution = sa.Affiliations[0]
	}
	if v, ok := sa.ExternalIDs["ORCID"]; ok {
		if s, ok := v.(string); ok {
			a.ORCID = bareORCID(s)
		}
	}
	return a
}

type semanticPaperList struct {
	Data []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID       string                `json:"paperId"`
	Title         string                `json:"title"`
	Year          int                   `json:"year"`
	Venue         string                `json:"venue"`
	CitationCount int                   `json:"citationCount"`
	FieldsOfStudy []string              `json:"fieldsOfStudy"`
	Authors       []semanticPaperAuthor `json:"authors"`
}

func (p semanticPaper) toTopPaper() types.TopPaper {
	return types.TopPaper{
		Title:     p.Title,
		Year:      p.Year,
		Citations: p.CitationCount,
		Venue:     p.Venue,
	}
}

type semanticPaperAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}
