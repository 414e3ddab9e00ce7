package search

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/kailas-cloud/prefixsearch/internal/db"
	"github.com/kailas-cloud/prefixsearch/internal/domain"
	"github.com/kailas-cloud/prefixsearch/internal/domain/search/filter"
)

func TestSearch_BuildsTextClauses(t *testing.T) {
	repo, ms := newTestRepo(t)
	req := testRequest()
	req.NumericFilter = &filter.Numeric{Field: "weight_num", Op: filter.GTE, Value: 0.5}

	ms.searchTextFn = func(_ context.Context, q *db.TextQuery) (*db.SearchResult, error) {
		if q.IndexName != "prefixsearch:products:idx" {
			t.Errorf("unexpected index: %s", q.IndexName)
		}
		if q.TopK != 10 {
			t.Errorf("unexpected topK: %d", q.TopK)
		}
		if q.Filter == nil || q.Filter.Value != 0.5 {
			t.Errorf("expected weight filter, got %+v", q.Filter)
		}
		if len(q.Clauses) != 4 {
			t.Fatalf("expected 4 clauses, got %d", len(q.Clauses))
		}
		name := q.Clauses[0]
		if name.Field != "name" || name.Mode != db.TextPrefix || name.Weight != 3 {
			t.Errorf("unexpected name clause: %+v", name)
		}
		if len(name.Terms) != 2 || name.Terms[0] != "кола" || name.Terms[1] != "05л" {
			t.Errorf("unexpected name terms: %v", name.Terms)
		}
		variants := q.Clauses[3]
		if variants.Field != "name_variants" || variants.Mode != db.TextFuzzy || variants.Fuzziness != 1 {
			t.Errorf("unexpected variants clause: %+v", variants)
		}
		if len(variants.Terms) != 3 {
			t.Errorf("expected 3 variant terms, got %v", variants.Terms)
		}
		return &db.SearchResult{}, nil
	}

	if _, err := repo.Search(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ms.textCalls != 1 || ms.knnCalls != 1 {
		t.Errorf("expected one call each, got text=%d knn=%d", ms.textCalls, ms.knnCalls)
	}
}

func TestSearch_KNNQuery(t *testing.T) {
	repo, ms := newTestRepo(t)
	req := testRequest()
	req.NumericFilter = &filter.Numeric{Field: "weight_num", Op: filter.GTE, Value: 10}

	ms.searchKNNFn = func(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
		if q.K != 20 || q.EFRuntime != 100 {
			t.Errorf("unexpected K/EF: %d/%d", q.K, q.EFRuntime)
		}
		if q.VectorField != "vector" {
			t.Errorf("unexpected vector field: %s", q.VectorField)
		}
		if q.Filter == nil || q.Filter.Value != 10 {
			t.Errorf("expected filter on KNN, got %+v", q.Filter)
		}
		return &db.SearchResult{}, nil
	}

	if _, err := repo.Search(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSearch_SumFusion(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchTextFn = func(context.Context, *db.TextQuery) (*db.SearchResult, error) {
		return &db.SearchResult{Total: 2, Entries: []db.SearchEntry{
			entry("1", "Кока-кола 0,5 л", 2.0),
			entry("2", "Кола Черноголовка", 1.0),
		}}, nil
	}
	ms.searchKNNFn = func(context.Context, *db.KNNQuery) (*db.SearchResult, error) {
		return &db.SearchResult{Total: 2, Entries: []db.SearchEntry{
			entry("2", "Кола Черноголовка", 0.9),
			entry("3", "Пепси", 0.4),
		}}, nil
	}

	hits, err := repo.Search(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(hits))
	}
	if hits[0].ID != "1" || hits[1].ID != "2" || hits[2].ID != "3" {
		t.Errorf("unexpected order: %s %s %s", hits[0].ID, hits[1].ID, hits[2].ID)
	}
	if math.Abs(hits[1].Score-1.9) > 1e-9 {
		t.Errorf("expected fused score 1.9, got %f", hits[1].Score)
	}
	if hits[0].Price != 89.9 || hits[0].Category != "Напитки" || hits[0].Weight != "0,5 л" {
		t.Errorf("unexpected fields: %+v", hits[0])
	}
}

func TestSearch_DropsNamelessHits(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchTextFn = func(context.Context, *db.TextQuery) (*db.SearchResult, error) {
		return &db.SearchResult{Total: 2, Entries: []db.SearchEntry{
			{Key: "prefixsearch:products:9", Score: 5, Fields: map[string]string{"price": "1"}},
			entry("1", "Хлеб", 1),
		}}, nil
	}

	hits, err := repo.Search(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 1 || hits[0].Name != "Хлеб" {
		t.Fatalf("expected only the named hit, got %+v", hits)
	}
}

func TestSearch_TextOnly(t *testing.T) {
	repo, ms := newTestRepo(t)
	req := testRequest()
	req.Vector = nil

	if _, err := repo.Search(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ms.knnCalls != 0 {
		t.Errorf("expected no KNN call without a vector, got %d", ms.knnCalls)
	}
}

func TestSearch_BackendError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchTextFn = func(context.Context, *db.TextQuery) (*db.SearchResult, error) {
		return nil, &db.Error{Op: db.OpSearch, Err: errors.New("connection refused")}
	}

	_, err := repo.Search(context.Background(), testRequest())
	if !errors.Is(err, domain.ErrBackend) {
		t.Fatalf("expected ErrBackend, got %v", err)
	}
	var dbErr *db.Error
	if !errors.As(err, &dbErr) {
		t.Errorf("expected wrapped db.Error, got %v", err)
	}
}

func TestSearch_IndexNotFound(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchKNNFn = func(context.Context, *db.KNNQuery) (*db.SearchResult, error) {
		return nil, &db.Error{Op: db.OpSearch, Err: db.ErrIndexNotFound}
	}

	_, err := repo.Search(context.Background(), testRequest())
	if !errors.Is(err, domain.ErrIndexNotFound) {
		t.Fatalf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestVariantTerms_Dedup(t *testing.T) {
	got := variantTerms("Кола  кола rjkf")
	if len(got) != 2 || got[0] != "кола" || got[1] != "rjkf" {
		t.Errorf("unexpected terms: %v", got)
	}
}
