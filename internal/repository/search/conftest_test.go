package search

import (
	"context"
	"testing"

	"github.com/kailas-cloud/prefixsearch/internal/db"
	"github.com/kailas-cloud/prefixsearch/internal/domain/search/request"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchKNNFn  func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	searchTextFn func(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)

	knnCalls  int
	textCalls int
}

func (m *mockStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	m.knnCalls++
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	m.textCalls++
	if m.searchTextFn != nil {
		return m.searchTextFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	repo := New(ms, "products")
	return repo, ms
}

func testRequest() *request.Request {
	return &request.Request{
		LeftText:         "кола 05л",
		FieldWeights:     request.DefaultFieldWeights(),
		VariantsText:     "кола 05л rjkf",
		Fuzziness:        1,
		Vector:           []float32{0.1, 0.2, 0.3},
		VectorK:          request.DefaultVectorK,
		VectorCandidates: request.DefaultVectorCandidates,
		TopK:             request.DefaultTopK,
		ReturnFields:     request.DefaultReturnFields(),
		Fusion:           request.FusionSum,
	}
}

func entry(id, name string, score float64) db.SearchEntry {
	return db.SearchEntry{
		Key:   "prefixsearch:products:" + id,
		Score: score,
		Fields: map[string]string{
			"name":     name,
			"category": "Напитки",
			"price":    "89.9",
			"weight":   "0,5 л",
		},
	}
}
