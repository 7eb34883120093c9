// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package candidates assembles the pool of potential referees for a
// manuscript from the expertise index and the bibliographic catalogs, then
// scores each candidate's relevance.
package candidates

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/referee-engine/internal/catalog"
	"github.com/pdiddy/referee-engine/internal/embed"
	"github.com/pdiddy/referee-engine/internal/expertise"
	"github.com/pdiddy/referee-engine/internal/identity"
	"github.com/pdiddy/referee-engine/internal/names"
	"github.com/pdiddy/referee-engine/internal/predict"
	"github.com/pdiddy/referee-engine/internal/scoreutil"
	"github.com/pdiddy/referee-engine/pkg/types"
)

// ExpertSearcher finds historical referees by semantic similarity.
type ExpertSearcher interface {
	Search(ctx context.Context, summary string, k int) []expertise.Hit
}

// Resolver resolves a person to an enriched profile.
type Resolver interface {
	Resolve(ctx context.Context, q identity.Query) identity.Result
}

// Options wires the finder's collaborators. Every field is optional except
// Engine, which defaults to a stock embedding engine.
type Options struct {
	Index    ExpertSearcher
	Catalogs []catalog.Catalog
	Resolver Resolver
	Engine   *embed.Engine
	Response predict.Predictor
	Logger   *zap.Logger
}

// Finder builds scored candidate lists. It is safe for concurrent use when
// its collaborators are.
type Finder struct {
	cfg      types.CandidateConfig
	index    ExpertSearcher
	catalogs []catalog.Catalog
	resolver Resolver
	engine   *embed.Engine
	response predict.Predictor
	log      *zap.Logger
}

// Result is the finder's output for one manuscript.
type Result struct {
	// Candidates are sorted by relevance, best first.
	Candidates []types.Candidate

	// Degraded names the sources that failed.
	Degraded []string
}

// New creates a Finder.
func New(cfg types.CandidateConfig, opts Options) *Finder {
	def := types.DefaultConfig().Candidates
	if cfg.IndexK <= 0 {
		cfg.IndexK = def.IndexK
	}
	if cfg.CatalogLimit <= 0 {
		cfg.CatalogLimit = def.CatalogLimit
	}
	if cfg.WeightTopic == 0 && cfg.WeightSemantic == 0 {
		cfg.WeightTopic, cfg.WeightSemantic = def.WeightTopic, def.WeightSemantic
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	engine := opts.Engine
	if engine == nil {
		engine = embed.New(types.EmbeddingConfig{})
	}
	return &Finder{
		cfg:      cfg,
		index:    opts.Index,
		catalogs: opts.Catalogs,
		resolver: opts.Resolver,
		engine:   engine,
		response: opts.Response,
		log:      log,
	}
}

// ResponseActive reports whether a trained response predictor contributes
// to relevance.
func (f *Finder) ResponseActive() bool {
	return f.response != nil && f.response.Active()
}

// Find returns the scored candidate pool for m. A failing source is logged
// and recorded in Result.Degraded; Find itself never fails.
func (f *Finder) Find(ctx context.Context, m types.ManuscriptRecord) Result {
	var res Result
	p := newPool()
	summary := m.Summary()

	if f.index != nil {
		for _, hit := range f.index.Search(ctx, summary, f.cfg.IndexK) {
			e := hit.Entry
			p.add(types.Candidate{
				Person:      e.Person,
				Topics:      e.Topics,
				Venues:      e.Venues,
				ReviewCount: e.ReviewCount,
				Source:      types.SourceExpertiseIndex,
			}, &e)
		}
	}

	if query := catalogQuery(m); query != "" {
		for _, c := range f.catalogs {
			if ctx.Err() != nil {
				break
			}
			authors, err := c.SearchExperts(ctx, query, f.cfg.CatalogLimit)
			if err != nil {
				f.log.Warn("candidate source failed",
					zap.String("source", c.Name()),
					zap.String("manuscript", m.ID),
					zap.Error(err))
				res.Degraded = append(res.Degraded, "candidate_source:"+c.Name())
				continue
			}
			for _, a := range authors {
				p.add(candidateFromAuthor(a, c.Name()), nil)
			}
		}
	}

	f.addSuggested(ctx, m, p)
	p.exclude(m.Referees)

	members := p.members()
	kw := keywordsOf(m)
	for _, mem := range members {
		f.score(mem, summary, kw, m.JournalCode)
	}
	sortMembers(members)

	if f.resolver != nil {
		enriched := false
		for i := 0; i < len(members) && i < f.cfg.EnrichTop; i++ {
			if ctx.Err() != nil {
				break
			}
			if f.enrich(ctx, members[i]) {
				f.score(members[i], summary, kw, m.JournalCode)
				enriched = true
			}
		}
		if enriched {
			sortMembers(members)
		}
	}

	res.Candidates = make([]types.Candidate, 0, len(members))
	for _, mem := range members {
		res.Candidates = append(res.Candidates, mem.c)
	}
	return res
}

// addSuggested marks author-suggested referees already in the pool and adds
// the others when they resolve to a catalog profile.
func (f *Finder) addSuggested(ctx context.Context, m types.ManuscriptRecord, p *pool) {
	for _, s := range m.SuggestedReferees {
		if mem := p.find(s.Name, s.Email); mem != nil {
			mem.c.AddSource(types.SourceSuggested)
			continue
		}
		if f.resolver == nil || ctx.Err() != nil {
			continue
		}
		r := f.resolver.Resolve(ctx, identity.Query{Name: s.Name, PersistentID: s.ORCID, Institution: s.Institution})
		if !r.Status.Resolved() {
			f.log.Debug("suggested referee unresolved",
				zap.String("name", s.Name),
				zap.String("status", string(r.Status)))
			continue
		}
		p.add(types.Candidate{
			Person:  s,
			Profile: r.Profile,
			Topics:  r.Profile.ResearchTopics,
			Source:  types.SourceSuggested,
		}, nil)
	}
}

// enrich resolves a candidate without a profile. It reports whether the
// profile changed.
func (f *Finder) enrich(ctx context.Context, mem *member) bool {
	c := &mem.c
	if !c.Profile.IsEmpty() {
		return false
	}
	r := f.resolver.Resolve(ctx, identity.Query{Name: c.Name, PersistentID: c.ORCID, Institution: c.Institution})
	if !r.Status.Resolved() {
		c.Provenance = append(c.Provenance, "could not resolve: "+string(r.Status))
		return false
	}
	c.Profile = r.Profile
	return true
}

// score fills topic overlap, similarity, response probability and the
// combined relevance.
func (f *Finder) score(mem *member, summary string, kw []string, journal string) {
	c := &mem.c
	topics := unionFold(c.Topics, c.Profile.ResearchTopics)
	c.TopicOverlap = embed.KeywordOverlap(kw, topics)
	c.Similarity = f.engine.TextSimilarity(summary, candidateText(topics, c.Profile))

	terms := []scoreutil.Term{
		{Value: c.TopicOverlap, Weight: f.cfg.WeightTopic, Present: true},
		{Value: c.Similarity, Weight: f.cfg.WeightSemantic, Present: true},
	}
	c.ResponseProbability = nil
	if f.ResponseActive() {
		in := predict.ResponseInput{
			HIndex:         c.EffectiveHIndex(),
			TopicOverlap:   c.TopicOverlap,
			Similarity:     c.Similarity,
			AcceptanceRate: -1,
			HasEmail:       strings.TrimSpace(c.Email) != "",
		}
		if mem.history != nil {
			in.Invitations = mem.history.InvitedBy(journal)
			in.AcceptanceRate = mem.history.AcceptanceRate(journal)
		}
		p := f.response.Predict(predict.ResponseFeatures(in))
		c.ResponseProbability = &p
		terms = append(terms, scoreutil.Term{Value: p, Weight: f.cfg.WeightResponse, Present: true})
	}
	c.RelevanceScore = scoreutil.WeightedMean(terms...)
}

func candidateFromAuthor(a catalog.Author, source string) types.Candidate {
	return types.Candidate{
		Person: types.Person{
			Name:        a.Name,
			ORCID:       a.ORCID,
			Institution: a.Institution,
			HIndex:      a.HIndex,
		},
		Profile: a.Profile(),
		Topics:  a.Topics,
		Source:  source,
	}
}

// catalogQuery is the topical query sent to catalogs: keywords when present,
// else the title.
func catalogQuery(m types.ManuscriptRecord) string {
	var kw []string
	for _, k := range m.Keywords {
		if k = strings.TrimSpace(k); k != "" {
			kw = append(kw, k)
		}
	}
	if len(kw) > 0 {
		return strings.Join(kw, " ")
	}
	return strings.TrimSpace(m.Title)
}

func keywordsOf(m types.ManuscriptRecord) []string {
	if len(m.Keywords) > 0 {
		return m.Keywords
	}
	if m.Title != "" {
		return []string{m.Title}
	}
	return nil
}

func candidateText(topics []string, p types.EnrichedProfile) string {
	parts := append([]string(nil), topics...)
	for _, tp := range p.TopPapers {
		if tp.Title != "" {
			parts = append(parts, tp.Title)
		}
	}
	return strings.Join(parts, ". ")
}

func sortMembers(members []*member) {
	sort.SliceStable(members, func(i, j int) bool {
		a, b := members[i].c, members[j].c
		if a.RelevanceScore != b.RelevanceScore {
			return a.RelevanceScore > b.RelevanceScore
		}
		if ha, hb := a.EffectiveHIndex(), b.EffectiveHIndex(); ha != hb {
			return ha > hb
		}
		return names.Normalize(a.Name) < names.Normalize(b.Name)
	})
}
