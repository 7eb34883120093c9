// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package identity resolves a person (name, optional ORCID, optional
// institution) to a single disambiguated research profile by querying the
// configured bibliographic catalogs.
package identity

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/pdiddy/referee-engine/internal/catalog"
	"github.com/pdiddy/referee-engine/internal/names"
	"github.com/pdiddy/referee-engine/pkg/types"
)

// Status describes how a resolution ended.
type Status string

// Resolution statuses.
const (
	StatusResolvedByID   Status = "resolved_by_id"
	StatusResolvedByName Status = "resolved_by_name"
	StatusNotFound       Status = "not_found"
	StatusAmbiguous      Status = "ambiguous"
	StatusIDMismatch     Status = "id_institution_mismatch"
	StatusCatalogFailure Status = "catalog_failure"
)

// Resolved reports whether the status carries a usable profile.
func (s Status) Resolved() bool {
	return s == StatusResolvedByID || s == StatusResolvedByName
}

// Query identifies the person to resolve.
type Query struct {
	Name         string
	PersistentID string
	Institution  string
}

func (q Query) cacheKey() string {
	return names.Normalize(q.Name) + "|" + strings.ToLower(strings.TrimSpace(q.PersistentID)) +
		"|" + names.Fold(q.Institution)
}

// Result is the outcome of Resolve. Profile is empty unless Status is
// resolved.
type Result struct {
	Profile types.EnrichedProfile
	Status  Status
}

// SessionConfig configures a Session.
type SessionConfig struct {
	// Catalogs are queried in order; the first that resolves is primary.
	Catalogs []catalog.Catalog

	// Institutions canonicalizes institution strings. Optional.
	Institutions catalog.InstitutionResolver

	Matcher     names.InstitutionMatcher
	SearchLimit int
	Logger      *zap.Logger

	// Observe, when set, is called with the status of every uncached
	// resolution.
	Observe func(status string)
}

// Session holds the caches that live for one engine run. Caches only grow;
// a Session is safe for concurrent use.
type Session struct {
	catalogs     []catalog.Catalog
	institutions catalog.InstitutionResolver
	matcher      names.InstitutionMatcher
	searchLimit  int
	log          *zap.Logger
	observe      func(string)

	mu           sync.Mutex
	profiles     map[string]Result
	institutionC map[string]string
}

// NewSession creates a session over the given catalogs.
func NewSession(cfg SessionConfig) *Session {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	matcher := cfg.Matcher
	if matcher.ShortThreshold == 0 && matcher.LongThreshold == 0 {
		matcher = names.DefaultInstitutionMatcher
	}
	return &Session{
		catalogs:     cfg.Catalogs,
		institutions: cfg.Institutions,
		matcher:      matcher,
		searchLimit:  clampSearchLimit(cfg.SearchLimit),
		log:          log,
		observe:      cfg.Observe,
		profiles:     make(map[string]Result),
		institutionC: make(map[string]string),
	}
}

func clampSearchLimit(n int) int {
	switch {
	case n <= 0:
		return 25
	case n < 10:
		return 10
	case n > 50:
		return 50
	}
	return n
}

// Resolve returns the profile for q. It never fails: catalog errors are
// logged and reflected in the status.
func (s *Session) Resolve(ctx context.Context, q Query) Result {
	key := q.cacheKey()
	s.mu.Lock()
	if r, ok := s.profiles[key]; ok {
		s.mu.Unlock()
		return r
	}
	s.mu.Unlock()

	r := s.resolve(ctx, q)
	if s.observe != nil {
		s.observe(string(r.Status))
	}

	// Failed lookups are not cached so a later call may succeed.
	if r.Status != StatusCatalogFailure && ctx.Err() == nil {
		s.mu.Lock()
		s.profiles[key] = r
		s.mu.Unlock()
	}
	return r
}

// CanonicalInstitution returns the catalog's canonical form of raw, caching
// the answer. Without a resolver, or on failure, raw is returned.
func (s *Session) CanonicalInstitution(ctx context.Context, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || s.institutions == nil {
		return raw
	}
	s.mu.Lock()
	if c, ok := s.institutionC[raw]; ok {
		s.mu.Unlock()
		return c
	}
	s.mu.Unlock()

	canon, err := s.institutions.CanonicalInstitution(ctx, raw)
	if err != nil {
		s.log.Warn("institution canonicalization failed",
			zap.String("institution", raw), zap.Error(err))
		return raw
	}
	s.mu.Lock()
	s.institutionC[raw] = canon
	s.mu.Unlock()
	return canon
}

// InstitutionsMatch reports whether a and b plausibly name the same
// institution, comparing raw strings first and canonical forms second.
func (s *Session) InstitutionsMatch(ctx context.Context, a, b string) bool {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return false
	}
	if s.matcher.Match(a, b) {
		return true
	}
	if s.institutions == nil {
		return false
	}
	ca, cb := s.CanonicalInstitution(ctx, a), s.CanonicalInstitution(ctx, b)
	if ca == a && cb == b {
		return false
	}
	return s.matcher.Match(ca, cb)
}
