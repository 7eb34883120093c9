// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embed

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/referee-engine/pkg/types"
)

var corpus = []string{
	"stochastic optimal control with jump diffusions",
	"graph neural networks for molecule property prediction",
	"optimal stopping problems and free boundary methods",
	"auction design and mechanism theory",
	"",
	"reinforcement learning for robotic manipulation",
}

func newEngine(backend string) *Engine {
	return New(types.EmbeddingConfig{Dimensions: 256, IndexBackend: backend})
}

func norm(v []float32) float64 {
	var s float64
	for _, x := range v {
		s += float64(x) * float64(x)
	}
	return math.Sqrt(s)
}

func TestEmbed_EmptyIsZero(t *testing.T) {
	e := newEngine(types.IndexBackendHNSW)
	for _, text := range []string{"", "   ", "the of and", "a"} {
		v := e.Embed(text)
		assert.Len(t, v, 256)
		assert.True(t, IsZero(v), "text %q", text)
		assert.Equal(t, 0.0, Similarity(v, e.Embed("optimal control")))
	}
}

func TestEmbed_UnitLength(t *testing.T) {
	e := newEngine(types.IndexBackendHNSW)
	v := e.Embed("Stochastic optimal control with jump diffusions")
	assert.InDelta(t, 1.0, norm(v), 1e-5)
}

func TestEmbed_Deterministic(t *testing.T) {
	a := newEngine(types.IndexBackendHNSW)
	b := newEngine(types.IndexBackendNone)
	assert.Equal(t, a.Embed("Optimal Stopping"), b.Embed("optimal stopping"))
}

func TestEmbed_DefaultDimensions(t *testing.T) {
	e := New(types.EmbeddingConfig{})
	assert.Equal(t, DefaultDimensions, e.Dimensions())
	assert.True(t, e.IndexAvailable())
}

func TestSimilarity(t *testing.T) {
	e := newEngine(types.IndexBackendHNSW)
	same := e.TextSimilarity("optimal control", "optimal control")
	related := e.TextSimilarity("stochastic optimal control", "optimal control of diffusions")
	unrelated := e.TextSimilarity("stochastic optimal control", "medieval poetry manuscripts")

	assert.InDelta(t, 1.0, same, 1e-6)
	assert.Greater(t, related, unrelated)
	assert.GreaterOrEqual(t, unrelated, 0.0)
}

func TestSimilarity_ClampsNegative(t *testing.T) {
	assert.Equal(t, 0.0, Similarity([]float32{1, 0}, []float32{-1, 0}))
	assert.Equal(t, 0.0, Similarity([]float32{1, 0}, []float32{1, 0, 0}))
	assert.Equal(t, 0.0, Similarity(nil, nil))
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"etude", "des", "equations", "differentielles"},
		Tokenize("Étude des équations différentielles"))
	assert.Empty(t, Tokenize("The of a"))
}

func TestBuildIndex_NoneBackendReturnsNil(t *testing.T) {
	e := newEngine(types.IndexBackendNone)
	assert.False(t, e.IndexAvailable())
	assert.Nil(t, e.BuildIndex(corpus))
	assert.Nil(t, e.SearchIndex("optimal control", nil, 3))
}

func TestBuildIndex_AllEmptyReturnsNil(t *testing.T) {
	e := newEngine(types.IndexBackendHNSW)
	assert.Nil(t, e.BuildIndex([]string{"", "the"}))
}

func TestSearchIndex_MatchesBruteForceTop(t *testing.T) {
	e := newEngine(types.IndexBackendHNSW)
	idx := e.BuildIndex(corpus)
	require.NotNil(t, idx)
	assert.Equal(t, len(corpus), idx.Len())

	query := "optimal control of jump diffusion processes"
	indexed := e.SearchIndex(query, idx, 2)
	brute := e.BruteForce(query, corpus, 2)

	require.NotEmpty(t, indexed)
	require.NotEmpty(t, brute)
	assert.Equal(t, 0, brute[0].Position)
	assert.Equal(t, brute[0].Position, indexed[0].Position)
	assert.InDelta(t, brute[0].Score, indexed[0].Score, 1e-9)
	for i := 1; i < len(indexed); i++ {
		assert.GreaterOrEqual(t, indexed[i-1].Score, indexed[i].Score)
	}
}

func TestBruteForce_SkipsEmptyAndSorts(t *testing.T) {
	e := newEngine(types.IndexBackendNone)
	hits := e.BruteForce("optimal stopping control", corpus, 10)
	require.NotEmpty(t, hits)
	for _, h := range hits {
		assert.NotEqual(t, 4, h.Position, "empty text never matches")
		assert.Greater(t, h.Score, 0.0)
	}
	assert.Empty(t, e.BruteForce("", corpus, 10))
}

func TestCorpus_FallsBackToBruteForce(t *testing.T) {
	withIndex := newEngine(types.IndexBackendHNSW).NewCorpus(corpus)
	without := newEngine(types.IndexBackendNone).NewCorpus(corpus)

	assert.True(t, withIndex.Indexed())
	assert.False(t, without.Indexed())
	assert.Equal(t, len(corpus), without.Len())

	q := "mechanism design auctions"
	a, b := withIndex.Search(q, 1), without.Search(q, 1)
	require.Len(t, a, 1)
	require.Len(t, b, 1)
	assert.Equal(t, 3, b[0].Position)
	assert.Equal(t, b[0].Position, a[0].Position)
}

func TestSaveLoadIndex_RoundTrip(t *testing.T) {
	e := newEngine(types.IndexBackendHNSW)
	idx := e.BuildIndex(corpus)
	require.NotNil(t, idx)

	var buf bytes.Buffer
	require.NoError(t, SaveIndex(idx, &buf))

	loaded, err := e.LoadIndex(&buf)
	require.NoError(t, err)
	assert.Equal(t, idx.Len(), loaded.Len())

	q := "graph neural networks molecules"
	assert.Equal(t, e.SearchIndex(q, idx, 3), e.SearchIndex(q, loaded, 3))
}

func TestLoadIndex_Corrupt(t *testing.T) {
	e := newEngine(types.IndexBackendHNSW)
	idx := e.BuildIndex(corpus)
	var buf bytes.Buffer
	require.NoError(t, SaveIndex(idx, &buf))
	full := buf.Bytes()

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"bad magic", append([]byte("XXXX"), full[4:]...)},
		{"truncated header", full[:8]},
		{"truncated body", full[:len(full)-7]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.LoadIndex(bytes.NewReader(tt.data))
			assert.ErrorIs(t, err, ErrCorruptIndex)
			assert.Nil(t, got)
		})
	}
}

func TestLoadIndex_DimensionMismatch(t *testing.T) {
	small := New(types.EmbeddingConfig{Dimensions: 64})
	var buf bytes.Buffer
	require.NoError(t, SaveIndex(small.BuildIndex(corpus), &buf))

	_, err := newEngine(types.IndexBackendHNSW).LoadIndex(&buf)
	assert.ErrorIs(t, err, ErrCorruptIndex)
}

func TestKeywordOverlap(t *testing.T) {
	kw := []string{"stochastic control", "optimal stopping"}
	assert.Equal(t, 1.0, KeywordOverlap(kw, []string{"Optimal Stopping and Stochastic Control"}))
	assert.InDelta(t, 0.5, KeywordOverlap(kw, []string{"optimal stochastic filtering"}), 1e-9)
	assert.Equal(t, 0.0, KeywordOverlap(nil, []string{"anything"}))
	assert.Equal(t, 0.0, KeywordOverlap(kw, nil))
}
