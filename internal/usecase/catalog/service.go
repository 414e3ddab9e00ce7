// Package catalog loads catalog entries into a search backend, embedding them on the way.
package catalog

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/prefixsearch/internal/domain"
	domcat "github.com/kailas-cloud/prefixsearch/internal/domain/catalog"
	"github.com/kailas-cloud/prefixsearch/internal/logger"
	"github.com/kailas-cloud/prefixsearch/internal/metrics"
)

// DefaultBatchSize is the number of entries embedded and written per step.
const DefaultBatchSize = 64

// Report summarizes an indexing run.
type Report struct {
	Indexed  int
	Batches  int
	Tokens   int
	Duration time.Duration
}

// Service indexes catalog entries.
type Service struct {
	indexer     Indexer
	backendName string
	embed       domain.Embedder
	dimensions  int
	batchSize   int
}

// New creates an indexing service. embed may be nil for a lexical-only index.
// dimensions > 0 enables a vector length check.
func New(indexer Indexer, backendName string, embed domain.Embedder, dimensions int) *Service {
	return &Service{
		indexer:     indexer,
		backendName: backendName,
		embed:       embed,
		dimensions:  dimensions,
		batchSize:   DefaultBatchSize,
	}
}

// WithBatchSize configures the number of entries per step.
func (s *Service) WithBatchSize(n int) *Service {
	if n > 0 {
		s.batchSize = n
	}
	return s
}

// Index prepares the index and writes all entries. The run stops at the first
// failed batch; earlier batches stay indexed.
func (s *Service) Index(ctx context.Context, entries []domcat.Entry, recreate bool) (Report, error) {
	log := logger.FromContext(ctx)
	start := time.Now()
	var rep Report

	if err := s.indexer.EnsureIndex(ctx, recreate); err != nil {
		return rep, fmt.Errorf("ensure index: %w", err)
	}

	for from := 0; from < len(entries); from += s.batchSize {
		if err := ctx.Err(); err != nil {
			return rep, err //nolint:wrapcheck // context error
		}
		to := min(from+s.batchSize, len(entries))

		batch, tokens, err := s.vectorize(ctx, entries[from:to])
		if err != nil {
			return rep, fmt.Errorf("vectorize entries [%d:%d]: %w", from, to, err)
		}
		if err := s.indexer.Put(ctx, batch); err != nil {
			return rep, fmt.Errorf("put entries [%d:%d]: %w", from, to, err)
		}

		rep.Indexed += len(batch)
		rep.Batches++
		rep.Tokens += tokens
		metrics.CatalogEntriesIndexed.WithLabelValues(s.backendName).Add(float64(len(batch)))
		log.Debug("Catalog batch indexed",
			zap.Int("from", from),
			zap.Int("to", to),
			zap.Int("tokens", tokens),
		)
	}

	rep.Duration = time.Since(start)
	log.Info("Catalog indexed",
		zap.String("backend", s.backendName),
		zap.Int("entries", rep.Indexed),
		zap.Int("batches", rep.Batches),
		zap.Int("tokens", rep.Tokens),
		zap.Duration("duration", rep.Duration),
	)
	return rep, nil
}

// vectorize returns copies of entries carrying the embedding of their EmbeddingText.
func (s *Service) vectorize(ctx context.Context, entries []domcat.Entry) ([]domcat.Entry, int, error) {
	out := make([]domcat.Entry, len(entries))
	if s.embed == nil {
		copy(out, entries)
		return out, 0, nil
	}

	texts := make([]string, len(entries))
	for i := range entries {
		texts[i] = entries[i].EmbeddingText()
	}

	res, err := domain.EmbedAll(ctx, s.embed, texts)
	if err != nil {
		return nil, 0, err //nolint:wrapcheck // caller wraps
	}
	if len(res.Embeddings) != len(entries) {
		return nil, 0, fmt.Errorf("got %d embeddings for %d entries: %w",
			len(res.Embeddings), len(entries), domain.ErrEmbeddingProviderError)
	}

	for i := range entries {
		if err := domain.CheckDimensions(res.Embeddings[i], s.dimensions); err != nil {
			return nil, 0, fmt.Errorf("entry %s: %w", entries[i].ID(), err)
		}
		out[i] = entries[i].WithEmbedding(res.Embeddings[i])
	}
	return out, res.TotalTokens, nil
}
