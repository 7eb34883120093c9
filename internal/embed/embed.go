// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package embed turns free text into fixed-length vectors and ranks texts
// by similarity. Vectors are hashed unigram and bigram features with
// sublinear term frequency, L2-normalized, so cosine similarity reduces to a
// dot product. Nearest-neighbour search uses an HNSW graph when the index
// backend is available and falls back to brute force otherwise.
package embed

import (
	"hash/fnv"
	"math"
	"sort"
	"strings"

	"github.com/pdiddy/referee-engine/internal/names"
	"github.com/pdiddy/referee-engine/pkg/types"
)

// DefaultDimensions is the vector length used when configuration leaves it
// unset.
const DefaultDimensions = 256

// Engine embeds text. It is immutable after construction and safe for
// concurrent use.
type Engine struct {
	dims           int
	indexAvailable bool
}

// New creates an engine. The index capability is decided here, once.
func New(cfg types.EmbeddingConfig) *Engine {
	dims := cfg.Dimensions
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &Engine{
		dims:           dims,
		indexAvailable: cfg.IndexBackend != types.IndexBackendNone,
	}
}

// Dimensions returns the vector length.
func (e *Engine) Dimensions() int { return e.dims }

// IndexAvailable reports whether BuildIndex produces graph indexes.
func (e *Engine) IndexAvailable() bool { return e.indexAvailable }

// Embed returns the unit-length feature vector of text. Text without any
// content tokens yields the zero vector.
func (e *Engine) Embed(text string) []float32 {
	vec := make([]float32, e.dims)
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return vec
	}

	counts := make(map[string]int, 2*len(tokens))
	for i, tok := range tokens {
		counts[tok]++
		if i > 0 {
			counts[tokens[i-1]+"_"+tok]++
		}
	}
	feats := make([]string, 0, len(counts))
	for feat := range counts {
		feats = append(feats, feat)
	}
	sort.Strings(feats)
	for _, feat := range feats {
		vec[e.bucket(feat)] += float32(1 + math.Log(float64(counts[feat])))
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec
	}
	inv := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= inv
	}
	return vec
}

// BatchEmbed embeds each text.
func (e *Engine) BatchEmbed(texts []string) [][]float32 {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.Embed(t)
	}
	return out
}

// TextSimilarity embeds both texts and returns their similarity.
func (e *Engine) TextSimilarity(a, b string) float64 {
	return Similarity(e.Embed(a), e.Embed(b))
}

func (e *Engine) bucket(feature string) int {
	h := fnv.New32a()
	h.Write([]byte(feature))
	return int(h.Sum32() % uint32(e.dims))
}

// Similarity is the cosine similarity of a and b clamped to [0,1]. Zero
// vectors and vectors of different length score 0.
func Similarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	s := dot / math.Sqrt(na*nb)
	switch {
	case s < 0, math.IsNaN(s):
		return 0
	case s > 1:
		return 1
	}
	return s
}

// IsZero reports whether v has no non-zero component.
func IsZero(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// Tokenize folds text and returns its content tokens in order: diacritics
// and case removed, stopwords and single characters dropped.
func Tokenize(text string) []string {
	var out []string
	for _, tok := range strings.Fields(names.Fold(text)) {
		if len(tok) < 2 || stopwords[tok] {
			continue
		}
		out = append(out, tok)
	}
	return out
}

var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "has": true, "have": true,
	"in": true, "is": true, "it": true, "its": true, "of": true, "on": true,
	"or": true, "that": true, "the": true, "this": true, "to": true, "was": true,
	"we": true, "were": true, "which": true, "with": true, "our": true,
	"these": true, "those": true, "their": true, "into": true, "using": true,
	"via": true, "can": true, "also": true, "such": true, "than": true,
	"then": true, "there": true, "they": true, "not": true, "but": true,
	"paper": true, "study": true, "show": true, "results": true,
}

// KeywordOverlap returns the share of query tokens that also occur in
// target, in [0,1]. Phrases are tokenized like Embed input. An empty query
// scores 0.
func KeywordOverlap(query, target []string) float64 {
	want := tokenSet(query)
	if len(want) == 0 {
		return 0
	}
	have := tokenSet(target)
	hit := 0
	for tok := range want {
		if have[tok] {
			hit++
		}
	}
	return float64(hit) / float64(len(want))
}

func tokenSet(phrases []string) map[string]bool {
	set := make(map[string]bool)
	for _, p := range phrases {
		for _, tok := range Tokenize(p) {
			set[tok] = true
		}
	}
	return set
}
