// Package fusion merges lexical and vector hit lists into one ranking.
package fusion

import (
	"math"

	"github.com/kailas-cloud/prefixsearch/internal/domain/search/request"
	"github.com/kailas-cloud/prefixsearch/internal/domain/search/result"
)

// rrfK is the Reciprocal Rank Fusion constant (standard value from Cormack et al. 2009).
const rrfK = 60

// Combine fuses both lists per req.Fusion, applies the price decay and min score,
// then orders by descending score and truncates to req.TopK.
// Lists are expected in backend rank order; ties keep first-seen order.
func Combine(req *request.Request, lexical, vector []result.Hit) []result.Hit {
	var hits []result.Hit
	if req.Fusion == request.FusionRRF {
		hits = fuseRRF(lexical, vector)
	} else {
		hits = fuseSum(lexical, vector)
	}

	if req.PriceDecay != nil {
		for i := range hits {
			hits[i].Score *= Gauss(*req.PriceDecay, hits[i].Price)
		}
	}

	filtered := hits[:0]
	for _, h := range hits {
		if h.Score >= req.MinScore {
			filtered = append(filtered, h)
		}
	}
	hits = filtered

	result.SortByScore(hits)
	if req.TopK > 0 && len(hits) > req.TopK {
		hits = hits[:req.TopK]
	}
	return hits
}

// Gauss returns the gaussian decay multiplier for value: 1 at origin and
// d.Decay at distance d.Scale.
func Gauss(d request.PriceDecay, value float64) float64 {
	if d.Scale <= 0 || d.Decay <= 0 || d.Decay >= 1 {
		return 1
	}
	dist := (value - d.Origin) / d.Scale
	return math.Exp(math.Log(d.Decay) * dist * dist)
}

// merger accumulates scores per document id, preserving first-seen order.
type merger struct {
	order []string
	hits  map[string]result.Hit
}

func newMerger(n int) *merger {
	return &merger{order: make([]string, 0, n), hits: make(map[string]result.Hit, n)}
}

func (m *merger) add(h result.Hit, score float64) {
	if existing, ok := m.hits[h.ID]; ok {
		existing.Score += score
		m.hits[h.ID] = existing
		return
	}
	h.Score = score
	m.order = append(m.order, h.ID)
	m.hits[h.ID] = h
}

func (m *merger) list() []result.Hit {
	out := make([]result.Hit, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.hits[id])
	}
	return out
}

// fuseSum adds the lexical score and the vector similarity of each document.
func fuseSum(lexical, vector []result.Hit) []result.Hit {
	m := newMerger(len(lexical) + len(vector))
	for _, h := range lexical {
		m.add(h, h.Score)
	}
	for _, h := range vector {
		m.add(h, h.Score)
	}
	return m.list()
}

// fuseRRF scores each document as the sum of 1/(k + rank) over the lists it appears in.
func fuseRRF(lexical, vector []result.Hit) []result.Hit {
	m := newMerger(len(lexical) + len(vector))
	for rank, h := range lexical {
		m.add(h, 1.0/float64(rrfK+rank+1))
	}
	for rank, h := range vector {
		m.add(h, 1.0/float64(rrfK+rank+1))
	}
	return m.list()
}
