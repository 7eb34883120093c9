// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/referee-engine/internal/candidates"
	"github.com/pdiddy/referee-engine/internal/catalog"
	"github.com/pdiddy/referee-engine/internal/conflicts"
	"github.com/pdiddy/referee-engine/internal/deskreject"
	"github.com/pdiddy/referee-engine/internal/embed"
	"github.com/pdiddy/referee-engine/internal/expertise"
	"github.com/pdiddy/referee-engine/internal/feedback"
	"github.com/pdiddy/referee-engine/internal/httputil"
	"github.com/pdiddy/referee-engine/internal/identity"
	"github.com/pdiddy/referee-engine/internal/names"
	"github.com/pdiddy/referee-engine/internal/pipeline"
	"github.com/pdiddy/referee-engine/internal/predict"
	"github.com/pdiddy/referee-engine/pkg/types"
)

// engine holds the components of one CLI invocation. Catalog gates and
// the identity session are shared by every manuscript processed.
type engine struct {
	embed    *embed.Engine
	catalogs []catalog.Catalog
	session  *identity.Session
	index    *expertise.Index
	response *predict.Model
	outcome  *predict.Model
	assessor *deskreject.Assessor
	feedback *feedback.Log
	pipeline *pipeline.Pipeline
}

// newCatalogs builds the enabled catalogs, each behind its own gate. The
// OpenAlex client doubles as the institution resolver when enabled.
func newCatalogs() ([]catalog.Catalog, catalog.InstitutionResolver) {
	c := cfg.Catalog
	hc := &http.Client{Timeout: c.Timeout}
	gate := func(name string, interval time.Duration) *httputil.Gate {
		g := httputil.NewGate(httputil.GateConfig{
			Name:            name,
			Interval:        interval,
			MaxRetries:      c.MaxRetries,
			BreakerFailures: c.BreakerFailures,
			BreakerTimeout:  c.BreakerTimeout,
		})
		g.Observe = runMetrics.ObserveCatalog
		return g
	}

	var (
		cats []catalog.Catalog
		inst catalog.InstitutionResolver
	)
	if c.EnableOpenAlex {
		oa := catalog.NewOpenAlex(hc, gate(types.SourceOpenAlex, c.OpenAlexInterval), c.UserAgent, c.OpenAlexEmail)
		oa.Logger = logger.Named("openalex")
		cats = append(cats, oa)
		inst = oa
	}
	if c.EnableSemanticScholar {
		g := gate(types.SourceSemanticScholar, c.SemanticScholarInterval)
		cats = append(cats, catalog.NewSemanticScholar(hc, g, c.UserAgent, c.SemanticScholarAPIKey))
	}
	return cats, inst
}

// newSession builds the identity session over the enabled catalogs.
func newSession(cats []catalog.Catalog, inst catalog.InstitutionResolver) *identity.Session {
	return identity.NewSession(identity.SessionConfig{
		Catalogs:     cats,
		Institutions: inst,
		Matcher:      names.NewInstitutionMatcher(cfg.Institution),
		SearchLimit:  cfg.Catalog.SearchLimit,
		Logger:       logger.Named("identity"),
		Observe:      runMetrics.ObserveResolution,
	})
}

// newEngine opens the expertise index, loads the trained models and wires
// the pipeline. A missing or unreadable model file leaves that model
// untrained; the pipeline still runs.
func newEngine() (*engine, error) {
	e := &engine{embed: embed.New(cfg.Embedding)}

	idx, err := expertise.Open(cfg.Expertise, e.embed, logger.Named("expertise"))
	if err != nil {
		return nil, err
	}
	e.index = idx

	var inst catalog.InstitutionResolver
	e.catalogs, inst = newCatalogs()
	e.session = newSession(e.catalogs, inst)

	e.response = predict.NewModel(predict.KindResponse, cfg.Predictors, logger.Named("predict"))
	e.outcome = predict.NewModel(predict.KindOutcome, cfg.Predictors, logger.Named("predict"))
	for _, m := range []*predict.Model{e.response, e.outcome} {
		if err := m.Load(cfg.Predictors.ModelsDir); err != nil {
			logger.Warn("model not loaded", zap.String("kind", string(m.Kind())), zap.Error(err))
		}
	}

	finder := candidates.New(cfg.Candidates, candidates.Options{
		Index:    idx,
		Catalogs: e.catalogs,
		Resolver: e.session,
		Engine:   e.embed,
		Response: e.response,
		Logger:   logger.Named("candidates"),
	})
	e.assessor = deskreject.New(cfg.DeskReject, e.embed, e.outcome, logger.Named("deskreject"))
	e.feedback = feedback.Open(cfg.Pipeline.FeedbackFile, logger.Named("feedback"))

	e.pipeline = pipeline.New(pipeline.Deps{
		Config:     cfg,
		Finder:     finder,
		Conflicts:  conflicts.New(e.session, logger.Named("conflicts")),
		DeskReject: e.assessor,
		Feedback:   e.feedback,
		Metrics:    runMetrics,
		Logger:     logger.Named("pipeline"),
	})
	return e, nil
}

// Close releases the expertise index.
func (e *engine) Close() error {
	if e.index == nil {
		return nil
	}
	return e.index.Close()
}

// errFailures is returned by commands that completed with per-item failures.
var errFailures = errors.New("completed with failures")
