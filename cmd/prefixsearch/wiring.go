package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/prefixsearch/internal/config"
	"github.com/kailas-cloud/prefixsearch/internal/db"
	dbRedis "github.com/kailas-cloud/prefixsearch/internal/db/redis"
	"github.com/kailas-cloud/prefixsearch/internal/domain"
	"github.com/kailas-cloud/prefixsearch/internal/domain/search/request"
	"github.com/kailas-cloud/prefixsearch/internal/metrics"
	catalogrepo "github.com/kailas-cloud/prefixsearch/internal/repository/catalog"
	"github.com/kailas-cloud/prefixsearch/internal/repository/embcache"
	"github.com/kailas-cloud/prefixsearch/internal/repository/memindex"
	searchrepo "github.com/kailas-cloud/prefixsearch/internal/repository/search"
	openaiEmb "github.com/kailas-cloud/prefixsearch/internal/transport/openai"
	catalogus "github.com/kailas-cloud/prefixsearch/internal/usecase/catalog"
	embeddinguc "github.com/kailas-cloud/prefixsearch/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/prefixsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/prefixsearch/internal/usecase/search"
)

// backend bundles the driver-specific pieces behind the use case contracts.
type backend struct {
	name    string
	search  searchuc.Backend
	indexer catalogus.Indexer
	counter healthuc.CatalogCounter
	pinger  healthuc.BackendPinger
	kv      db.KVStore
	close   func()
}

// openBackend connects the configured driver. The memory driver starts empty.
func openBackend(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*backend, error) {
	switch cfg.Backend.Driver {
	case config.DriverRedis:
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Backend.Addrs,
			Username: cfg.Backend.Username,
			Password: cfg.Backend.Password,
			DB:       cfg.Backend.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("create redis store: %w", err)
		}
		timeout := time.Duration(cfg.Backend.ReadinessTimeout) * time.Second
		if err := store.WaitForReady(ctx, timeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("redis not ready: %w", err)
		}
		logger.Info("Connected to redis", zap.Strings("addrs", cfg.Backend.Addrs))

		repo := catalogrepo.New(store, cfg.Backend.Catalog, cfg.Embedding.Dimensions).
			WithHNSW(catalogrepo.HNSWConfig{M: cfg.Backend.HNSWM, EFConstruct: cfg.Backend.HNSWEFConstruct}).
			WithBatchSize(cfg.Backend.WriteBatchSize)
		return &backend{
			name:    config.DriverRedis,
			search:  searchrepo.New(store, cfg.Backend.Catalog),
			indexer: repo,
			counter: repo,
			pinger:  store,
			kv:      store,
			close:   store.Close,
		}, nil

	case config.DriverMemory:
		idx, err := memindex.New()
		if err != nil {
			return nil, fmt.Errorf("create memory index: %w", err)
		}
		return &backend{
			name:    config.DriverMemory,
			search:  idx,
			indexer: idx,
			counter: idx,
			close: func() {
				if err := idx.Close(); err != nil {
					logger.Warn("Failed to close memory index", zap.Error(err))
				}
			},
		}, nil
	}
	return nil, fmt.Errorf("unknown backend driver %q", cfg.Backend.Driver)
}

// embedders are the document and query chains. Both nil when embedding is disabled.
type embedders struct {
	document domain.Embedder
	query    domain.Embedder
	health   healthuc.EmbeddingChecker
}

// buildEmbedders assembles the decorator chain: OpenAI -> Cached -> Instrumented -> Instruction.
func buildEmbedders(cfg *config.Config, kv db.KVStore, logger *zap.Logger) embedders {
	ec := cfg.Embedding
	if !ec.Enabled() {
		logger.Info("Embedding disabled, running lexical-only")
		return embedders{}
	}
	metrics.RegisterEmbeddingMetrics()

	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     ec.APIKey,
		BaseURL:    ec.BaseURL,
		Model:      ec.Model,
		Dimensions: ec.Dimensions,
		Provider:   ec.Provider,
		Timeout:    ec.Timeout(),
		Logger:     logger,
	})

	var inner domain.Embedder = base
	if kv != nil {
		inner = embcache.New(base, kv, ec.Model, ec.CacheTTL(), metrics.EmbeddingCacheTotal, logger)
	}
	instrumented := embeddinguc.NewInstrumentedEmbedder(inner, ec.Provider, ec.Model, ec.Dimensions, logger).
		WithMaxBatch(ec.BatchSize)

	logger.Info("Embedder created",
		zap.String("provider", ec.Provider),
		zap.String("model", ec.Model),
		zap.Int("dimensions", ec.Dimensions),
		zap.Bool("cache", kv != nil),
	)
	return embedders{
		document: withInstruction(instrumented, ec.DocumentInstruction),
		query:    withInstruction(instrumented, ec.QueryInstruction),
		health:   base,
	}
}

func withInstruction(e domain.Embedder, instruction string) domain.Embedder {
	if instruction == "" {
		return e
	}
	return domain.NewInstructionEmbedder(e, instruction)
}

// searchOptions maps the search config onto the request builder.
func searchOptions(sc config.SearchConfig) searchuc.Options {
	opts := searchuc.Options{
		FieldWeights: []request.FieldWeight{
			{Field: request.FieldName, Weight: sc.NameWeight},
			{Field: request.FieldNameVariants, Weight: sc.VariantsWeight},
			{Field: request.FieldDescription, Weight: sc.DescriptionWeight},
		},
		Fuzziness:        request.DefaultFuzziness,
		VectorK:          sc.VectorK,
		VectorCandidates: sc.VectorCandidates,
		TopK:             sc.TopK,
		MinScore:         sc.MinScore,
		Fusion:           request.Fusion(sc.Fusion),
	}
	if sc.Fuzziness != nil {
		opts.Fuzziness = *sc.Fuzziness
	}
	if d := sc.PriceDecay; d != nil {
		opts.PriceDecay = &request.PriceDecay{Origin: d.Origin, Scale: d.Scale, Decay: d.Decay}
	}
	return opts
}

// newSearchService wires the hybrid search pipeline over a backend.
func newSearchService(cfg *config.Config, be *backend, emb embedders) *searchuc.Service {
	dims := 0
	if emb.query != nil {
		dims = cfg.Embedding.Dimensions
	}
	return searchuc.New(be.search, be.name, emb.query, searchuc.NewBuilder(searchOptions(cfg.Search)), dims)
}

func newHealthService(be *backend, emb embedders) *healthuc.Service {
	return healthuc.New(be.pinger, emb.health, be.counter)
}
