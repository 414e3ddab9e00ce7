package search

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/prefixsearch/internal/db"
	"github.com/kailas-cloud/prefixsearch/internal/domain"
	"github.com/kailas-cloud/prefixsearch/internal/domain/query"
	"github.com/kailas-cloud/prefixsearch/internal/domain/search/fusion"
	"github.com/kailas-cloud/prefixsearch/internal/domain/search/request"
	"github.com/kailas-cloud/prefixsearch/internal/domain/search/result"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
}

// Repo implements usecase/search.Backend on top of the Redis query engine.
type Repo struct {
	store   store
	catalog string
}

// New creates a search repository over the given catalog.
func New(s store, catalog string) *Repo {
	return &Repo{store: s, catalog: catalog}
}

// Search runs the lexical and KNN halves of req and fuses them.
func (r *Repo) Search(ctx context.Context, req *request.Request) ([]result.Hit, error) {
	var lexical, vector []result.Hit

	if req.HasText() {
		sr, err := r.store.SearchText(ctx, r.textQuery(req))
		if err != nil {
			return nil, wrapErr("text search", r.catalog, err)
		}
		lexical = r.parseHits(sr)
	}

	if req.HasVector() {
		sr, err := r.store.SearchKNN(ctx, r.knnQuery(req))
		if err != nil {
			return nil, wrapErr("knn search", r.catalog, err)
		}
		vector = r.parseHits(sr)
	}

	return fusion.Combine(req, lexical, vector), nil
}

// textQuery maps the request onto weighted prefix clauses over LeftText
// and a fuzzy name_variants clause over VariantsText.
func (r *Repo) textQuery(req *request.Request) *db.TextQuery {
	q := &db.TextQuery{
		IndexName:    domain.IndexName(r.catalog),
		Filter:       req.NumericFilter,
		TopK:         req.TopK,
		ReturnFields: req.ReturnFields,
	}

	if terms := strings.Fields(req.LeftText); len(terms) > 0 {
		for _, fw := range req.FieldWeights {
			q.Clauses = append(q.Clauses, db.TextClause{
				Field:  fw.Field,
				Terms:  terms,
				Mode:   db.TextPrefix,
				Weight: fw.Weight,
			})
		}
	}

	if terms := variantTerms(req.VariantsText); len(terms) > 0 {
		q.Clauses = append(q.Clauses, db.TextClause{
			Field:     request.FieldNameVariants,
			Terms:     terms,
			Mode:      db.TextFuzzy,
			Fuzziness: req.Fuzziness,
		})
	}
	return q
}

func (r *Repo) knnQuery(req *request.Request) *db.KNNQuery {
	return &db.KNNQuery{
		IndexName:    domain.IndexName(r.catalog),
		VectorField:  request.FieldVector,
		Filter:       req.NumericFilter,
		Vector:       req.Vector,
		K:            req.VectorK,
		EFRuntime:    req.VectorCandidates,
		ReturnFields: req.ReturnFields,
	}
}

// variantTerms re-normalizes the variants text and drops duplicate tokens.
func variantTerms(text string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, t := range strings.Fields(query.Normalize(text)) {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// parseHits converts store entries into hits. Entries without a name are dropped.
func (r *Repo) parseHits(sr *db.SearchResult) []result.Hit {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}

	prefix := domain.DocPrefix(r.catalog)
	hits := make([]result.Hit, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		name := e.Fields[request.FieldName]
		if name == "" {
			continue
		}
		price, _ := strconv.ParseFloat(e.Fields[request.FieldPrice], 64)
		hits = append(hits, result.Hit{
			ID:       strings.TrimPrefix(e.Key, prefix),
			Name:     name,
			Category: e.Fields[request.FieldCategory],
			Price:    price,
			Weight:   e.Fields[request.FieldQuantity],
			Score:    e.Score,
		})
	}
	return hits
}

func wrapErr(op, catalog string, err error) error {
	if errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("%s %s: %w", op, catalog, domain.ErrIndexNotFound)
	}
	return fmt.Errorf("%s %s: %w: %w", op, catalog, domain.ErrBackend, err)
}
