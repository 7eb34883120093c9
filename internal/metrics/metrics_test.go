// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	m := New()
	m.ObserveCatalog("openalex", "ok")
	m.ObserveCatalog("openalex", "ok")
	m.ObserveCatalog("semantic_scholar", "rate_limited")
	m.ObserveResolution("ambiguous")
	m.ObserveManuscript(OutcomeProceed, 12, 300*time.Millisecond)
	m.ObserveManuscript(OutcomeFailed, 0, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CatalogRequests.WithLabelValues("openalex", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CatalogRequests.WithLabelValues("semantic_scholar", "rate_limited")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Resolutions.WithLabelValues("ambiguous")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Manuscripts.WithLabelValues(OutcomeFailed)))
	assert.Equal(t, 3, testutil.CollectAndCount(m.CatalogRequests)+testutil.CollectAndCount(m.Resolutions))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.ObserveManuscript(OutcomeDeskReject, 0, time.Second)

	path := filepath.Join(t.TempDir(), "referee-engine.prom")
	require.NoError(t, m.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `referee_engine_manuscripts_total{outcome="desk_reject"} 1`)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveCatalog("x", "ok")
	m.ObserveResolution("ok")
	m.ObserveManuscript(OutcomeProceed, 1, time.Second)
	assert.Nil(t, m.Registry())
	assert.NoError(t, m.WriteTextfile("/nonexistent/x.prom"))
}
