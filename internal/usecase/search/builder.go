package search

import (
	"strings"

	"github.com/kailas-cloud/prefixsearch/internal/domain/query"
	"github.com/kailas-cloud/prefixsearch/internal/domain/search/request"
)

// Options tune the request produced by Builder. Unset fields fall back to
// defaults, except Fuzziness: zero means exact variant match and only a
// negative value selects the default.
type Options struct {
	FieldWeights     []request.FieldWeight
	Fuzziness        int
	VectorK          int
	VectorCandidates int
	TopK             int
	MinScore         float64
	Fusion           request.Fusion
	PriceDecay       *request.PriceDecay
}

// DefaultOptions returns the stock hybrid query shape.
func DefaultOptions() Options {
	return Options{
		FieldWeights:     request.DefaultFieldWeights(),
		Fuzziness:        request.DefaultFuzziness,
		VectorK:          request.DefaultVectorK,
		VectorCandidates: request.DefaultVectorCandidates,
		TopK:             request.DefaultTopK,
		Fusion:           request.FusionSum,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if len(o.FieldWeights) == 0 {
		o.FieldWeights = d.FieldWeights
	}
	if o.Fuzziness < 0 {
		o.Fuzziness = d.Fuzziness
	}
	if o.VectorK <= 0 {
		o.VectorK = d.VectorK
	}
	if o.VectorCandidates < o.VectorK {
		o.VectorCandidates = max(d.VectorCandidates, o.VectorK)
	}
	if o.TopK <= 0 {
		o.TopK = d.TopK
	}
	if o.Fusion == "" {
		o.Fusion = d.Fusion
	}
	return o
}

// Builder turns a normalized query and its embedding into a backend request.
// Pure: no I/O.
type Builder struct {
	opts Options
}

// NewBuilder creates a builder. A zero Fuzziness is kept (exact variant match).
func NewBuilder(opts Options) *Builder {
	return &Builder{opts: opts.withDefaults()}
}

// Options returns the effective options.
func (b *Builder) Options() Options { return b.opts }

// Build parses raw and assembles the hybrid request.
func (b *Builder) Build(raw string, embedding []float32) request.Request {
	return b.BuildQuery(query.Parse(raw), embedding)
}

// BuildQuery assembles the hybrid request for an already parsed query.
func (b *Builder) BuildQuery(q query.Query, embedding []float32) request.Request {
	weights := make([]request.FieldWeight, len(b.opts.FieldWeights))
	copy(weights, b.opts.FieldWeights)

	req := request.Request{
		LeftText:         q.Text,
		FieldWeights:     weights,
		Fuzziness:        b.opts.Fuzziness,
		NumericFilter:    q.Filter,
		VectorK:          b.opts.VectorK,
		VectorCandidates: b.opts.VectorCandidates,
		TopK:             b.opts.TopK,
		MinScore:         b.opts.MinScore,
		ReturnFields:     request.DefaultReturnFields(),
		Fusion:           b.opts.Fusion,
		PriceDecay:       b.opts.PriceDecay,
	}
	if q.Text != "" {
		req.VariantsText = strings.Join(q.Variants(), " ")
	}
	if len(embedding) > 0 {
		req.Vector = embedding
	}
	return req
}
