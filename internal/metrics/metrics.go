// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics collects run counters in a private Prometheus registry.
// The engine is a batch CLI, so metrics are exported as a node-exporter
// textfile at the end of a run rather than served.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "referee_engine"

// Manuscript outcomes.
const (
	OutcomeProceed    = "proceed"
	OutcomeDeskReject = "desk_reject"
	OutcomeFailed     = "failed"
)

// Metrics holds the run counters. A nil *Metrics ignores every call.
type Metrics struct {
	reg *prometheus.Registry

	CatalogRequests *prometheus.CounterVec
	Resolutions     *prometheus.CounterVec
	Manuscripts     *prometheus.CounterVec
	Candidates      prometheus.Histogram
	Duration        prometheus.Histogram
}

// New registers the collectors in a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		CatalogRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_requests_total",
			Help:      "Catalog HTTP requests by catalog and outcome.",
		}, []string{"catalog", "outcome"}),
		Resolutions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "identity_resolutions_total",
			Help:      "Uncached identity resolutions by status.",
		}, []string{"status"}),
		Manuscripts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "manuscripts_total",
			Help:      "Manuscripts processed by outcome.",
		}, []string{"outcome"}),
		Candidates: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "candidates_found",
			Help:      "Candidate pool size per manuscript.",
			Buckets:   []float64{0, 5, 10, 20, 40, 80},
		}),
		Duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "manuscript_duration_seconds",
			Help:      "Wall time to process one manuscript.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
	}
}

// Registry exposes the registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

// ObserveCatalog counts one catalog request. Its signature matches the
// gate observer.
func (m *Metrics) ObserveCatalog(catalog, outcome string) {
	if m == nil {
		return
	}
	m.CatalogRequests.WithLabelValues(catalog, outcome).Inc()
}

// ObserveResolution counts one identity resolution.
func (m *Metrics) ObserveResolution(status string) {
	if m == nil {
		return
	}
	m.Resolutions.WithLabelValues(status).Inc()
}

// ObserveManuscript records one processed manuscript.
func (m *Metrics) ObserveManuscript(outcome string, candidates int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Manuscripts.WithLabelValues(outcome).Inc()
	if outcome != OutcomeFailed {
		m.Candidates.Observe(float64(candidates))
	}
	m.Duration.Observe(elapsed.Seconds())
}

// WriteTextfile writes the registry in the text exposition format to path.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.reg); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
