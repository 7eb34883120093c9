// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embed

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/coder/hnsw"
)

// Hit is one search result: the position of the text in the indexed
// corpus and its similarity to the query.
type Hit struct {
	Position int
	Score    float64
}

// Index is a nearest-neighbour index over a corpus of vectors. Positions
// match the order of the texts passed to BuildIndex.
type Index struct {
	dims    int
	vectors [][]float32
	graph   *hnsw.Graph[int]
}

// Len returns the number of indexed positions, zero vectors included.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.vectors)
}

// BuildIndex embeds texts and builds a graph index over them. It returns
// nil when the engine has no index backend or no text has content.
func (e *Engine) BuildIndex(texts []string) *Index {
	if !e.indexAvailable {
		return nil
	}
	return e.indexVectors(e.BatchEmbed(texts))
}

func (e *Engine) indexVectors(vectors [][]float32) *Index {
	g := hnsw.NewGraph[int]()
	var nodes []hnsw.Node[int]
	for i, v := range vectors {
		if len(v) != e.dims || IsZero(v) {
			continue
		}
		nodes = append(nodes, hnsw.MakeNode(i, v))
	}
	if len(nodes) == 0 {
		return nil
	}
	g.Add(nodes...)
	return &Index{dims: e.dims, vectors: vectors, graph: g}
}

// graphRecall is the minimum number of neighbours requested from the
// graph; results are rescored exactly before the top k are kept.
const graphRecall = 64

// SearchIndex returns up to k hits for query, best first. A nil index or an
// empty query yields no hits.
func (e *Engine) SearchIndex(query string, idx *Index, k int) []Hit {
	if idx == nil || k <= 0 {
		return nil
	}
	q := e.Embed(query)
	if IsZero(q) || len(q) != idx.dims {
		return nil
	}

	fetch := k
	if fetch < graphRecall {
		fetch = graphRecall
	}
	if n := idx.graph.Len(); fetch > n {
		fetch = n
	}

	var hits []Hit
	for _, node := range idx.graph.Search(q, fetch) {
		if s := Similarity(q, idx.vectors[node.Key]); s > 0 {
			hits = append(hits, Hit{Position: node.Key, Score: s})
		}
	}
	return topHits(hits, k)
}

// BruteForce scores query against every text. It is the fallback when no
// index is available and the reference for index results.
func (e *Engine) BruteForce(query string, texts []string, k int) []Hit {
	return bruteForceVectors(e.Embed(query), e.BatchEmbed(texts), k)
}

func bruteForceVectors(q []float32, vectors [][]float32, k int) []Hit {
	if k <= 0 || IsZero(q) {
		return nil
	}
	hits := make([]Hit, 0, len(vectors))
	for i, v := range vectors {
		if s := Similarity(q, v); s > 0 {
			hits = append(hits, Hit{Position: i, Score: s})
		}
	}
	return topHits(hits, k)
}

// topHits sorts by score descending, ties by position, and keeps k.
func topHits(hits []Hit, k int) []Hit {
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Position < hits[j].Position
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

// Corpus is a searchable set of texts. It uses the index when one could be
// built and brute force otherwise.
type Corpus struct {
	engine  *Engine
	vectors [][]float32
	index   *Index
}

// NewCorpus embeds texts and builds an index when the engine supports it.
func (e *Engine) NewCorpus(texts []string) *Corpus {
	vectors := e.BatchEmbed(texts)
	c := &Corpus{engine: e, vectors: vectors}
	if e.indexAvailable {
		c.index = e.indexVectors(vectors)
	}
	return c
}

// CorpusFromIndex wraps a loaded index.
func (e *Engine) CorpusFromIndex(idx *Index) *Corpus {
	return &Corpus{engine: e, vectors: idx.vectors, index: idx}
}

// Len returns the corpus size.
func (c *Corpus) Len() int { return len(c.vectors) }

// Indexed reports whether searches go through the graph index.
func (c *Corpus) Indexed() bool { return c.index != nil }

// Index returns the corpus index, or nil.
func (c *Corpus) Index() *Index { return c.index }

// Search returns up to k hits for query.
func (c *Corpus) Search(query string, k int) []Hit {
	if c.index != nil {
		return c.engine.SearchIndex(query, c.index, k)
	}
	return bruteForceVectors(c.engine.Embed(query), c.vectors, k)
}

var indexMagic = [4]byte{'R', 'V', 'I', 'X'}

const (
	indexVersion    = 1
	maxIndexVectors = 1 << 22
)

// ErrCorruptIndex is returned by LoadIndex for unreadable streams.
var ErrCorruptIndex = errors.New("corrupt vector index")

// SaveIndex writes idx as: magic, version, dimensions, count, then count
// vectors of little-endian float32.
func SaveIndex(idx *Index, w io.Writer) error {
	if idx == nil {
		return errors.New("nil index")
	}
	bw := bufio.NewWriter(w)
	header := []uint32{indexVersion, uint32(idx.dims), uint32(len(idx.vectors))}
	if _, err := bw.Write(indexMagic[:]); err != nil {
		return fmt.Errorf("writing index header: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("writing index header: %w", err)
	}
	buf := make([]byte, 4*idx.dims)
	for _, v := range idx.vectors {
		for i := 0; i < idx.dims; i++ {
			var x float32
			if i < len(v) {
				x = v[i]
			}
			binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(x))
		}
		if _, err := bw.Write(buf); err != nil {
			return fmt.Errorf("writing index vectors: %w", err)
		}
	}
	return bw.Flush()
}

// LoadIndex reads a stream written by SaveIndex and rebuilds the graph.
// Streams with a different dimensionality or a damaged body return
// ErrCorruptIndex; callers fall back to brute force.
func (e *Engine) LoadIndex(r io.Reader) (*Index, error) {
	br := bufio.NewReader(r)
	var magic [4]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil || magic != indexMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrCorruptIndex)
	}
	var header [3]uint32
	if err := binary.Read(br, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: short header", ErrCorruptIndex)
	}
	version, dims, count := header[0], int(header[1]), int(header[2])
	if version != indexVersion {
		return nil, fmt.Errorf("%w: version %d", ErrCorruptIndex, version)
	}
	if dims != e.dims {
		return nil, fmt.Errorf("%w: %d dimensions, engine uses %d", ErrCorruptIndex, dims, e.dims)
	}
	if count > maxIndexVectors {
		return nil, fmt.Errorf("%w: %d vectors", ErrCorruptIndex, count)
	}

	vectors := make([][]float32, count)
	buf := make([]byte, 4*dims)
	for n := range vectors {
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, fmt.Errorf("%w: truncated at vector %d", ErrCorruptIndex, n)
		}
		v := make([]float32, dims)
		for i := range v {
			v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
			if math.IsNaN(float64(v[i])) || math.IsInf(float64(v[i]), 0) {
				return nil, fmt.Errorf("%w: non-finite value", ErrCorruptIndex)
			}
		}
		vectors[n] = v
	}

	idx := e.indexVectors(vectors)
	if idx == nil {
		return nil, fmt.Errorf("%w: no non-zero vectors", ErrCorruptIndex)
	}
	return idx, nil
}
