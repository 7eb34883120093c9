// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/referee-engine/internal/httputil"
	"github.com/pdiddy/referee-engine/pkg/types"
)

// openAlexBase is the OpenAlex API root. Declared as a var so tests can
// substitute an httptest server.
var openAlexBase = "https://api.openalex.org"

// OpenAlex queries the OpenAlex authors, works, and institutions APIs.
type OpenAlex struct {
	client
	// Email is sent as mailto parameter for polite pool access.
	email string

	// Logger receives enrichment failures that do not fail a lookup.
	// Nil discards them.
	Logger *zap.Logger
}

// NewOpenAlex creates an OpenAlex catalog using the shared gate.
func NewOpenAlex(hc *http.Client, gate *httputil.Gate, userAgent, email string) *OpenAlex {
	return &OpenAlex{
		client: client{http: hc, gate: gate, userAgent: userAgent},
		email:  email,
	}
}

// Name returns the catalog identifier.
func (o *OpenAlex) Name() string { return types.SourceOpenAlex }

func (o *OpenAlex) endpoint(path string, params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	if o.email != "" {
		params.Set("mailto", o.email)
	}
	u := openAlexBase + path
	if enc := params.Encode(); enc != "" {
		u += "?" + enc
	}
	return u
}

// LookupID fetches an author by ORCID. A failure to fetch the author's
// works is logged and the author is returned without top papers.
func (o *OpenAlex) LookupID(ctx context.Context, orcid string) (Author, error) {
	id := bareORCID(orcid)
	if id == "" {
		return Author{}, ErrNotFound
	}
	var oa openAlexAuthor
	if err := o.getJSON(ctx, o.endpoint("/authors/orcid:"+url.PathEscape(id), nil), &oa); err != nil {
		if errors.Is(err, ErrNotFound) {
			return Author{}, ErrNotFound
		}
		return Author{}, fmt.Errorf("OpenAlex author lookup: %w", err)
	}
	a := oa.toAuthor()
	enriched, err := o.Enrich(ctx, a)
	if err != nil {
		o.logger().Warn("OpenAlex works lookup failed", zap.String("author", a.ID), zap.Error(err))
		return a, nil
	}
	return enriched, nil
}

func (o *OpenAlex) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// SearchAuthors searches authors by name.
func (o *OpenAlex) SearchAuthors(ctx context.Context, name string, limit int) ([]Author, error) {
	if strings.TrimSpace(name) == "" {
		return nil, nil
	}
	params := url.Values{
		"search":   {name},
		"per_page": {fmt.Sprintf("%d", clampLimit(limit, 25, 10, 50))},
	}
	var resp openAlexAuthorsResponse
	if err := o.getJSON(ctx, o.endpoint("/authors", params), &resp); err != nil {
		return nil, fmt.Errorf("OpenAlex author search: %w", err)
	}
	authors := make([]Author, 0, len(resp.Results))
	for _, r := range resp.Results {
		authors = append(authors, r.toAuthor())
	}
	return authors, nil
}

// Enrich adds the author's most cited works.
func (o *OpenAlex) Enrich(ctx context.Context, a Author) (Author, error) {
	if a.ID == "" {
		return a, nil
	}
	params := url.Values{
		"filter":   {"author.id:" + shortOpenAlexID(a.ID)},
		"sort":     {"cited_by_count:desc"},
		"per_page": {fmt.Sprintf("%d", topPaperCount)},
	}
	var resp openAlexWorksResponse
	if err := o.getJSON(ctx, o.endpoint("/works", params), &resp); err != nil {
		return a, fmt.Errorf("OpenAlex works for %s: %w", a.ID, err)
	}
	papers := make([]types.TopPaper, 0, len(resp.Results))
	for _, w := range resp.Results {
		papers = append(papers, w.toTopPaper())
	}
	a.TopPapers = topPapers(papers, topPaperCount)
	return a, nil
}

// SearchExperts returns authors of works matching query.
func (o *OpenAlex) SearchExperts(ctx context.Context, query string, limit int) ([]Author, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	params := url.Values{
		"search":   {query},
		"per_page": {fmt.Sprintf("%d", clampLimit(limit, 20, 1, 200))},
	}
	var resp openAlexWorksResponse
	if err := o.getJSON(ctx, o.endpoint("/works", params), &resp); err != nil {
		return nil, fmt.Errorf("OpenAlex works search: %w", err)
	}

	byID := make(map[string]int)
	var authors []Author
	for _, w := range resp.Results {
		paper := w.toTopPaper()
		topic := ""
		if w.PrimaryTopic != nil {
			topic = w.PrimaryTopic.DisplayName
		}
		for _, as := range w.Authorships {
			if as.Author.DisplayName == "" {
				continue
			}
			key := as.Author.ID
			if key == "" {
				key = "name:" + as.Author.DisplayName
			}
			idx, ok := byID[key]
			if !ok {
				a := Author{
					ID:     as.Author.ID,
					Source: types.SourceOpenAlex,
					Name:   as.Author.DisplayName,
					ORCID:  bareORCID(as.Author.ORCID),
				}
				if len(as.Institutions) > 0 {
					a.Institution = as.Institutions[0].DisplayName
				}
				idx = len(authors)
				byID[key] = idx
				authors = append(authors, a)
			}
			authors[idx].TopPapers = append(authors[idx].TopPapers, paper)
			if topic != "" && !containsFold(authors[idx].Topics, topic) {
				authors[idx].Topics = append(authors[idx].Topics, topic)
			}
		}
	}
	return authors, nil
}

// CanonicalInstitution resolves a free-text institution to OpenAlex's
// display name. It returns the input unchanged when nothing matches.
func (o *OpenAlex) CanonicalInstitution(ctx context.Context, raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return raw, nil
	}
	params := url.Values{
		"search":   {raw},
		"per_page": {"1"},
	}
	var resp openAlexInstitutionsResponse
	if err := o.getJSON(ctx, o.endpoint("/institutions", params), &resp); err != nil {
		return raw, fmt.Errorf("OpenAlex institution search: %w", err)
	}
	if len(resp.Results) == 0 || resp.Results[0].DisplayName == "" {
		return raw, nil
	}
	return resp.Results[0].DisplayName, nil
}

// shortOpenAlexID strips the https://openalex.org/ prefix.
func shortOpenAlexID(id string) string {
	return strings.TrimPrefix(id, "https://openalex.org/")
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// OpenAlex API JSON structures.
type openAlexAuthorsResponse struct {
	Results []openAlexAuthor `json:"results"`
}

type openAlexAuthor struct {
	ID                    string                `json:"id"`
	DisplayName           string                `json:"display_name"`
	ORCID                 string                `json:"orcid"`
	WorksCount            int                   `json:"works_count"`
	CitedByCount          int                   `json:"cited_by_count"`
	SummaryStats          openAlexSummaryStats  `json:"summary_stats"`
	LastKnownInstitutions []openAlexInstitution `json:"last_known_institutions"`
	LastKnownInstitution  *openAlexInstitution  `json:"last_known_institution"`
	Topics                []openAlexNamed       `json:"topics"`
	XConcepts             []openAlexNamed       `json:"x_concepts"`
}

func (oa openAlexAuthor) toAuthor() Author {
	a := Author{
		ID:            oa.ID,
		Source:        types.SourceOpenAlex,
		Name:          oa.DisplayName,
		ORCID:         bareORCID(oa.ORCID),
		CitationCount: oa.CitedByCount,
		PaperCount:    oa.WorksCount,
		HIndex:        oa.SummaryStats.HIndex,
	}
	switch {
	case len(oa.LastKnownInstitutions) > 0:
		a.Institution = oa.LastKnownInstitutions[0].DisplayName
	case oa.LastKnownInstitution != nil:
		a.Institution = oa.LastKnownInstitution.DisplayName
	}
	counts := make(map[string]int)
	named := oa.Topics
	if len(named) == 0 {
		named = oa.XConcepts
	}
	for i, t := range named {
		if t.DisplayName != "" {
			counts[t.DisplayName] += len(named) - i
		}
	}
	a.Topics = rankedTopics(counts, topicCount)
	return a
}

type openAlexSummaryStats struct {
	HIndex int `json:"h_index"`
}

type openAlexInstitution struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type openAlexNamed struct {
	DisplayName string `json:"display_name"`
}

type openAlexInstitutionsResponse struct {
	Results []openAlexInstitution `json:"results"`
}

type openAlexWorksResponse struct {
	Results []openAlexWork `json:"results"`
}

type openAlexWork struct {
	ID              string               `json:"id"`
	Title           string               `json:"title"`
	PublicationYear int                  `json:"publication_year"`
	CitedByCount    int                  `json:"cited_by_count"`
	PrimaryLocation *openAlexLocation    `json:"primary_location"`
	PrimaryTopic    *openAlexNamed       `json:"primary_topic"`
	Authorships     []openAlexAuthorship `json:"authorships"`
}

func (w openAlexWork) toTopPaper() types.TopPaper {
	p := types.TopPaper{
		Title:     w.Title,
		Year:      w.PublicationYear,
		Citations: w.CitedByCount,
	}
	if w.PrimaryLocation != nil && w.PrimaryLocation.Source != nil {
		p.Venue = w.PrimaryLocation.Source.DisplayName
	}
	return p
}

type openAlexLocation struct {
	Source *openAlexNamed `json:"source"`
}

type openAlexAuthorship struct {
	Author       openAlexWorkAuthor    `json:"author"`
	Institutions []openAlexInstitution `json:"institutions"`
}

type openAlexWorkAuthor struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	ORCID       string `json:"orcid"`
}
