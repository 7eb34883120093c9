// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package identity

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"

	"github.com/pdiddy/referee-engine/internal/catalog"
	"github.com/pdiddy/referee-engine/internal/names"
	"github.com/pdiddy/referee-engine/pkg/types"
)

// catalogOutcome is one catalog's contribution to a resolution.
type catalogOutcome struct {
	author catalog.Author
	status Status
	failed bool
}

func (s *Session) resolve(ctx context.Context, q Query) Result {
	if names.Parse(q.Name).Surname == "" && q.PersistentID == "" {
		return Result{Status: StatusNotFound}
	}
	if len(s.catalogs) == 0 {
		return Result{Status: StatusNotFound}
	}

	var outcomes []catalogOutcome
	for _, c := range s.catalogs {
		if ctx.Err() != nil {
			break
		}
		outcomes = append(outcomes, s.resolveOne(ctx, c, q))
	}
	return combine(outcomes)
}

// resolveOne runs the identifier lookup and then name search against one
// catalog.
func (s *Session) resolveOne(ctx context.Context, c catalog.Catalog, q Query) catalogOutcome {
	log := s.log.With(zap.String("catalog", c.Name()), zap.String("name", q.Name))
	mismatch := false

	if q.PersistentID != "" {
		a, err := c.LookupID(ctx, q.PersistentID)
		switch {
		case err == nil:
			if q.Institution != "" && a.Institution != "" && !s.InstitutionsMatch(ctx, q.Institution, a.Institution) {
				log.Info("identifier profile institution disagrees, falling back to name search",
					zap.String("given", q.Institution), zap.String("catalog_institution", a.Institution))
				mismatch = true
			} else {
				return catalogOutcome{author: a, status: StatusResolvedByID}
			}
		case errors.Is(err, catalog.ErrNotFound), errors.Is(err, catalog.ErrUnsupported):
		default:
			log.Warn("identifier lookup failed", zap.Error(err))
			return catalogOutcome{status: StatusCatalogFailure, failed: true}
		}
	}

	if names.Parse(q.Name).Surname == "" {
		if mismatch {
			return catalogOutcome{status: StatusIDMismatch}
		}
		return catalogOutcome{status: StatusNotFound}
	}

	pool, err := c.SearchAuthors(ctx, q.Name, s.searchLimit)
	if err != nil {
		log.Warn("author search failed", zap.Error(err))
		return catalogOutcome{status: StatusCatalogFailure, failed: true}
	}

	best, status := s.disambiguate(ctx, q, pool)
	if status != StatusResolvedByName {
		if mismatch && status == StatusNotFound {
			status = StatusIDMismatch
		}
		return catalogOutcome{status: status}
	}

	enriched, err := c.Enrich(ctx, best)
	if err != nil {
		log.Warn("profile enrichment failed", zap.Error(err))
		enriched = best
	}
	return catalogOutcome{author: enriched, status: StatusResolvedByName}
}

// disambiguate picks one author from pool for q. It returns
// StatusResolvedByName with the winner, StatusAmbiguous when surname
// matches exist but the target has no given-name evidence, and
// StatusNotFound otherwise.
func (s *Session) disambiguate(ctx context.Context, q Query, pool []catalog.Author) (catalog.Author, Status) {
	target := names.Parse(q.Name)
	if len(pool) == 0 || target.Surname == "" {
		return catalog.Author{}, StatusNotFound
	}

	var matches []catalog.Author
	surnameOnly := 0
	for _, a := range pool {
		pa := names.Parse(a.Name)
		if names.ParsedMatch(target, pa) {
			matches = append(matches, a)
		} else if pa.Surname == target.Surname {
			surnameOnly++
		}
	}
	if len(matches) == 0 {
		if len(target.Given) == 0 && surnameOnly > 0 {
			return catalog.Author{}, StatusAmbiguous
		}
		return catalog.Author{}, StatusNotFound
	}
	if len(matches) == 1 {
		return matches[0], StatusResolvedByName
	}

	var exact []catalog.Author
	for _, a := range matches {
		if names.TokenSetEqual(target, names.Parse(a.Name)) {
			exact = append(exact, a)
		}
	}
	if len(exact) == 1 {
		return exact[0], StatusResolvedByName
	}
	if len(exact) > 1 {
		matches = exact
	}

	if q.Institution != "" {
		var local []catalog.Author
		for _, a := range matches {
			if s.InstitutionsMatch(ctx, q.Institution, a.Institution) {
				local = append(local, a)
			}
		}
		if len(local) == 1 {
			return local[0], StatusResolvedByName
		}
		if len(local) > 1 {
			matches = local
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].CitationCount != matches[j].CitationCount {
			return matches[i].CitationCount > matches[j].CitationCount
		}
		return matches[i].ID < matches[j].ID
	})
	return matches[0], StatusResolvedByName
}

// combine merges per-catalog outcomes. The first resolving catalog is
// primary; later resolutions fill its gaps.
func combine(outcomes []catalogOutcome) Result {
	var (
		resolved []catalogOutcome
		failures int
		sawAmbig bool
		sawClash bool
	)
	for _, o := range outcomes {
		switch {
		case o.status.Resolved():
			resolved = append(resolved, o)
		case o.failed:
			failures++
		case o.status == StatusAmbiguous:
			sawAmbig = true
		case o.status == StatusIDMismatch:
			sawClash = true
		}
	}

	if len(resolved) > 0 {
		profile := resolved[0].author.Profile()
		for _, o := range resolved[1:] {
			profile = mergeProfiles(profile, o.author.Profile())
		}
		return Result{Profile: profile, Status: resolved[0].status}
	}
	switch {
	case sawAmbig:
		return Result{Status: StatusAmbiguous}
	case sawClash:
		return Result{Status: StatusIDMismatch}
	case len(outcomes) > 0 && failures == len(outcomes):
		return Result{Status: StatusCatalogFailure}
	}
	return Result{Status: StatusNotFound}
}

// mergeProfiles fills gaps in primary from secondary.
func mergeProfiles(primary, secondary types.EnrichedProfile) types.EnrichedProfile {
	if primary.CitationCount == 0 {
		primary.CitationCount = secondary.CitationCount
	}
	if primary.PaperCount == 0 {
		primary.PaperCount = secondary.PaperCount
	}
	if primary.HIndex == 0 {
		primary.HIndex = secondary.HIndex
	}
	if len(primary.TopPapers) == 0 {
		primary.TopPapers = secondary.TopPapers
	}
	if len(primary.ResearchTopics) == 0 {
		primary.ResearchTopics = secondary.ResearchTopics
	}
	if primary.LastKnownInstitution == "" {
		primary.LastKnownInstitution = secondary.LastKnownInstitution
	}
	if secondary.Source != "" && secondary.Source != primary.Source {
		primary.Source += "," + secondary.Source
	}
	return primary
}
