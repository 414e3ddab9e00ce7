package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/prefixsearch/internal/domain"
	"github.com/kailas-cloud/prefixsearch/internal/domain/query"
	"github.com/kailas-cloud/prefixsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/prefixsearch/internal/domain/search/request"
	"github.com/kailas-cloud/prefixsearch/internal/domain/search/result"
	"github.com/kailas-cloud/prefixsearch/internal/logger"
	"github.com/kailas-cloud/prefixsearch/internal/metrics"
)

// Outcome is everything known about one executed search.
type Outcome struct {
	Query       query.Query
	Request     request.Request
	Hits        []result.Hit
	Latency     time.Duration
	EmbedTokens int
}

// LatencyMs returns the backend latency in milliseconds.
func (o Outcome) LatencyMs() float64 {
	return float64(o.Latency.Microseconds()) / 1000
}

// Service runs the hybrid search pipeline: parse, embed, build, query, rerank.
type Service struct {
	backend     Backend
	backendName string
	embed       Embedder
	builder     *Builder
	dimensions  int
}

// New creates a search service. embed may be nil for lexical-only search.
// dimensions > 0 enables a vector length check on query embeddings.
func New(backend Backend, backendName string, embed Embedder, builder *Builder, dimensions int) *Service {
	if builder == nil {
		builder = NewBuilder(DefaultOptions())
	}
	return &Service{
		backend:     backend,
		backendName: backendName,
		embed:       embed,
		builder:     builder,
		dimensions:  dimensions,
	}
}

// Search executes the full pipeline for a raw user query.
// An empty normalized query yields an empty outcome without touching the backend.
func (s *Service) Search(ctx context.Context, raw string) (Outcome, error) {
	q := query.Parse(raw)
	out := Outcome{Query: q}
	if q.Text == "" {
		return out, nil
	}

	var vector []float32
	if s.embed != nil {
		emb, err := s.embed.Embed(ctx, q.Text)
		if err != nil {
			return out, fmt.Errorf("vectorize query: %w", err)
		}
		if err = domain.CheckDimensions(emb.Embedding, s.dimensions); err != nil {
			return out, fmt.Errorf("vectorize query: %w", err)
		}
		vector = emb.Embedding
		out.EmbedTokens = emb.TotalTokens
	}

	out.Request = s.builder.BuildQuery(q, vector)
	if err := out.Request.Validate(); err != nil {
		return out, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}

	logger.FromContext(ctx).Debug("Backend request",
		zap.String("query", q.Text),
		zap.String("variants", out.Request.VariantsText),
		zap.Stringer("filter", filterStringer{out.Request.NumericFilter}),
		zap.Bool("vector", out.Request.HasVector()),
		zap.String("fusion", string(out.Request.Fusion)),
	)

	start := time.Now()
	hits, err := s.backend.Search(ctx, &out.Request)
	out.Latency = time.Since(start)

	metrics.SearchDuration.WithLabelValues(s.backendName).Observe(out.Latency.Seconds())
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(s.backendName, "error").Inc()
		return out, fmt.Errorf("search backend: %w", err)
	}
	metrics.SearchRequestsTotal.WithLabelValues(s.backendName, "ok").Inc()
	metrics.SearchHits.WithLabelValues(s.backendName).Observe(float64(len(hits)))

	out.Hits = Rerank(hits, q)
	return out, nil
}

// Builder returns the request builder used by the service.
func (s *Service) Builder() *Builder { return s.builder }

type filterStringer struct {
	f *filter.Numeric
}

func (fs filterStringer) String() string {
	if fs.f == nil {
		return "none"
	}
	return fs.f.String()
}
