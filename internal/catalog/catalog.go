// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog queries external bibliographic catalogs for author
// records. Each catalog (OpenAlex, Semantic Scholar) implements Catalog;
// every request goes through the catalog's shared httputil.Gate.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/pdiddy/referee-engine/internal/httputil"
	"github.com/pdiddy/referee-engine/pkg/types"
)

// ErrNotFound is returned when a lookup by identifier finds nothing.
var ErrNotFound = errors.New("not found")

// ErrUnsupported is returned by catalogs that cannot serve an operation.
var ErrUnsupported = errors.New("operation not supported by catalog")

// Author is one author record as returned by a catalog.
type Author struct {
	ID            string
	Source        string
	Name          string
	ORCID         string
	Institution   string
	CitationCount int
	PaperCount    int
	HIndex        int
	Topics        []string
	TopPapers     []types.TopPaper
}

// Profile converts the record into an EnrichedProfile.
func (a Author) Profile() types.EnrichedProfile {
	return types.EnrichedProfile{
		AuthorID:             a.ID,
		Source:               a.Source,
		DisplayName:          a.Name,
		CitationCount:        a.CitationCount,
		PaperCount:           a.PaperCount,
		HIndex:               a.HIndex,
		TopPapers:            a.TopPapers,
		ResearchTopics:       a.Topics,
		LastKnownInstitution: a.Institution,
	}
}

// Catalog is one bibliographic source.
type Catalog interface {
	// Name returns the catalog identifier ("openalex", "semantic_scholar").
	Name() string

	// LookupID fetches the author with the given ORCID. It returns
	// ErrNotFound when no author carries the identifier and ErrUnsupported
	// when the catalog cannot look authors up by ORCID.
	LookupID(ctx context.Context, orcid string) (Author, error)

	// SearchAuthors returns up to limit authors ranked by the catalog's
	// own name-search relevance.
	SearchAuthors(ctx context.Context, name string, limit int) ([]Author, error)

	// Enrich fills top papers and topics for an author found by search.
	Enrich(ctx context.Context, a Author) (Author, error)

	// SearchExperts returns the authors of works matching a topical query,
	// each carrying the matching works as top papers.
	SearchExperts(ctx context.Context, query string, limit int) ([]Author, error)
}

// InstitutionResolver canonicalizes free-text institution names.
type InstitutionResolver interface {
	CanonicalInstitution(ctx context.Context, raw string) (string, error)
}

// client holds the transport shared by catalog implementations.
type client struct {
	http      *http.Client
	gate      *httputil.Gate
	userAgent string
	headers   map[string]string
}

// getJSON issues a gated GET and decodes a 200 response into out.
func (c *client) getJSON(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	var resp *http.Response
	if c.gate != nil {
		resp, err = c.gate.Do(ctx, c.http, req)
	} else {
		resp, err = c.http.Do(req)
	}
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("returned HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

// topPapers sorts papers by citations and keeps the first n.
func topPapers(papers []types.TopPaper, n int) []types.TopPaper {
	sort.SliceStable(papers, func(i, j int) bool {
		return papers[i].Citations > papers[j].Citations
	})
	if n > 0 && len(papers) > n {
		papers = papers[:n]
	}
	return papers
}

// rankedTopics returns labels ordered by frequency, keeping the first n.
func rankedTopics(counts map[string]int, n int) []string {
	topics := make([]string, 0, len(counts))
	for t := range counts {
		topics = append(topics, t)
	}
	sort.Slice(topics, func(i, j int) bool {
		if counts[topics[i]] != counts[topics[j]] {
			return counts[topics[i]] > counts[topics[j]]
		}
		return topics[i] < topics[j]
	})
	if n > 0 && len(topics) > n {
		topics = topics[:n]
	}
	return topics
}

// bareORCID strips URL prefixes from an ORCID.
func bareORCID(id string) string {
	id = strings.TrimSpace(id)
	id = strings.TrimPrefix(id, "https://orcid.org/")
	id = strings.TrimPrefix(id, "http://orcid.org/")
	return id
}

// clampLimit bounds a search limit to [lo, hi], using def when unset.
func clampLimit(n, def, lo, hi int) int {
	if n <= 0 {
		n = def
	}
	if n < lo {
		n = lo
	}
	if n > hi {
		n = hi
	}
	return n
}

const topPaperCount = 5
const topicCount = 10
