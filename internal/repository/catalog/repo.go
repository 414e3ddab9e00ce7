// Package catalog stores catalog entries as hashes under a Redis search index.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/prefixsearch/internal/db"
	"github.com/kailas-cloud/prefixsearch/internal/domain"
	domcat "github.com/kailas-cloud/prefixsearch/internal/domain/catalog"
	"github.com/kailas-cloud/prefixsearch/internal/domain/search/request"
	"github.com/kailas-cloud/prefixsearch/internal/logger"
)

// DefaultBatchSize is the number of hashes written per pipeline.
const DefaultBatchSize = 500

// store is the consumer interface for the catalog index (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string, deleteDocs bool) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// HNSWConfig HNSW index parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo implements usecase/catalog.Indexer for Redis.
type Repo struct {
	store     store
	catalog   string
	vectorDim int
	distance  db.DistanceMetric
	hnsw      HNSWConfig
	batchSize int
}

// New creates a catalog repository.
func New(s store, catalog string, vectorDim int) *Repo {
	return &Repo{
		store:     s,
		catalog:   catalog,
		vectorDim: vectorDim,
		distance:  db.DistanceCosine,
		hnsw:      HNSWConfig{M: 16, EFConstruct: 200},
		batchSize: DefaultBatchSize,
	}
}

// WithHNSW configures HNSW index parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	if cfg.M > 0 {
		r.hnsw.M = cfg.M
	}
	if cfg.EFConstruct > 0 {
		r.hnsw.EFConstruct = cfg.EFConstruct
	}
	return r
}

// WithDistance sets the vector distance metric.
func (r *Repo) WithDistance(d db.DistanceMetric) *Repo {
	if d != "" {
		r.distance = d
	}
	return r
}

// WithBatchSize sets the number of entries per HSET pipeline.
func (r *Repo) WithBatchSize(n int) *Repo {
	if n > 0 {
		r.batchSize = n
	}
	return r
}

// IndexDefinition returns the FT.CREATE schema of the catalog.
// TEXT fields carry no index-time weight; boosts are applied per query.
func (r *Repo) IndexDefinition() (*db.IndexDefinition, error) {
	def, err := db.NewIndex(domain.IndexName(r.catalog)).
		Prefix(domain.DocPrefix(r.catalog)).
		Text(request.FieldName, 0).
		Text(request.FieldNameVariants, 0).
		Text(request.FieldDescription, 0).
		Tag(request.FieldCategory, "|").
		Tag(request.FieldBrand, "|").
		Numeric(request.FieldPrice).
		Numeric(request.FieldWeightNum).
		VectorHNSW(request.FieldVector, r.vectorDim, r.distance, r.hnsw.M, r.hnsw.EFConstruct).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build index %s: %w", r.catalog, err)
	}
	return def, nil
}

// EnsureIndex creates the index when it is missing. With recreate, an existing
// index is dropped together with its documents first.
func (r *Repo) EnsureIndex(ctx context.Context, recreate bool) error {
	def, err := r.IndexDefinition()
	if err != nil {
		return err
	}

	exists, err := r.store.IndexExists(ctx, def.Name)
	if err != nil {
		return fmt.Errorf("check index %s: %w", def.Name, err)
	}
	if exists && !recreate {
		return nil
	}
	if exists {
		if err := r.store.DropIndex(ctx, def.Name, true); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
			return fmt.Errorf("drop index %s: %w", def.Name, err)
		}
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %s: %w", def.Name, err)
	}
	logger.FromContext(ctx).Info("Created search index",
		zap.String("schema", def.String()),
		zap.Bool("recreated", exists),
	)
	return nil
}

// Put writes entries in pipelines of batchSize hashes.
func (r *Repo) Put(ctx context.Context, entries []domcat.Entry) error {
	prefix := domain.DocPrefix(r.catalog)
	for start := 0; start < len(entries); start += r.batchSize {
		end := min(start+r.batchSize, len(entries))

		items := make([]db.HashSetItem, 0, end-start)
		for i := start; i < end; i++ {
			items = append(items, db.HashSetItem{
				Key:    prefix + entries[i].ID(),
				Fields: buildHashFields(&entries[i]),
			})
		}
		if err := r.store.HSetMulti(ctx, items); err != nil {
			return fmt.Errorf("put entries [%d:%d]: %w", start, end, err)
		}
	}
	return nil
}

// Count returns the number of indexed entries.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, domain.IndexName(r.catalog), "*")
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return 0, domain.ErrIndexNotFound
		}
		return 0, fmt.Errorf("count %s: %w", r.catalog, err)
	}
	return n, nil
}
