package search

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/kailas-cloud/prefixsearch/internal/domain"
	domcat "github.com/kailas-cloud/prefixsearch/internal/domain/catalog"
	"github.com/kailas-cloud/prefixsearch/internal/domain/judgement"
	"github.com/kailas-cloud/prefixsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/prefixsearch/internal/domain/search/request"
	"github.com/kailas-cloud/prefixsearch/internal/domain/search/result"
	"github.com/kailas-cloud/prefixsearch/internal/repository/memindex"
)

// --- Mocks ---

type mockBackend struct {
	hits    []result.Hit
	err     error
	lastReq *request.Request
	calls   int
}

func (m *mockBackend) Search(_ context.Context, req *request.Request) ([]result.Hit, error) {
	m.calls++
	m.lastReq = req
	return m.hits, m.err
}

type mockEmbedder struct {
	vec    []float32
	err    error
	called bool
	text   string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.called = true
	m.text = text
	return domain.EmbeddingResult{Embedding: m.vec, TotalTokens: 4}, m.err
}

// --- Tests ---

func TestSearch_Pipeline(t *testing.T) {
	backend := &mockBackend{hits: []result.Hit{
		{ID: "1", Name: "Вода минеральная", Score: 0.8},
		{ID: "2", Name: "Кола классическая", Score: 0.7},
		{ID: "3", Name: "Кола 0.5л Zero", Score: 0.6},
	}}
	emb := &mockEmbedder{vec: []float32{0.1, 0.2, 0.3}}
	svc := New(backend, "test", emb, nil, 3)

	out, err := svc.Search(context.Background(), "Кола 0.5л")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if emb.text != "кола 05л" {
		t.Errorf("embedder must receive normalized text, got %q", emb.text)
	}
	if backend.lastReq == nil || !backend.lastReq.HasVector() {
		t.Fatal("backend must receive the query vector")
	}
	if backend.lastReq.NumericFilter == nil || backend.lastReq.NumericFilter.Value != 0.5 {
		t.Errorf("expected weight filter 0.5, got %v", backend.lastReq.NumericFilter)
	}
	if out.Hits[0].ID != "3" || math.Abs(out.Hits[0].Score-1.6) > 1e-9 {
		t.Errorf("expected reranked prefix hit first, got %+v", out.Hits[0])
	}
	// "кола классическая" shares only the first word of the query.
	if out.Hits[2].ID != "2" || math.Abs(out.Hits[2].Score-0.7) > 1e-9 {
		t.Errorf("partial prefix must not get the bonus, got %+v", out.Hits[2])
	}
	if out.EmbedTokens != 4 {
		t.Errorf("expected 4 tokens, got %d", out.EmbedTokens)
	}
	if out.LatencyMs() < 0 {
		t.Error("latency must not be negative")
	}
}

func TestSearch_MemoryBackendEndToEnd(t *testing.T) {
	x, err := memindex.New()
	if err != nil {
		t.Fatalf("memindex: %v", err)
	}
	t.Cleanup(func() { _ = x.Close() })

	vec := []float32{0.6, 0.8}
	var entries []domcat.Entry
	for _, f := range []domcat.Fields{
		{Name: "Кока-Кола 0.5л", Weight: "0.5л", Category: "Напитки"},
		{Name: "Кока-Кола 0.33л", Weight: "0.33л", Category: "Напитки"},
		{Name: "Хлеб бородинский"},
	} {
		e, err := domcat.NewEntry(f.Name, f)
		if err != nil {
			t.Fatalf("NewEntry: %v", err)
		}
		entries = append(entries, e.WithEmbedding(vec))
	}
	if err := x.Put(context.Background(), entries); err != nil {
		t.Fatalf("Put: %v", err)
	}

	svc := New(x, "memory", &mockEmbedder{vec: vec}, nil, len(vec))
	out, err := svc.Search(context.Background(), "кола 0.5л")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f := out.Request.NumericFilter
	if f == nil || f.Field != request.FieldWeightNum || f.Op != filter.GTE || f.Value != 0.5 {
		t.Fatalf("expected weight_num >= 0.5, got %v", f)
	}
	if len(out.Hits) != 1 || out.Hits[0].Name != "Кока-Кола 0.5л" {
		t.Fatalf("expected only the 0.5л bottle, got %+v", out.Hits)
	}
	if label := judgement.Classify(out.Hits[0].Score); label != judgement.Good && label != judgement.Fair {
		t.Errorf("expected good or fair, got %s (score %f)", label, out.Hits[0].Score)
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	backend := &mockBackend{}
	emb := &mockEmbedder{}
	svc := New(backend, "test", emb, nil, 0)

	out, err := svc.Search(context.Background(), " ?! ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if backend.calls != 0 || emb.called {
		t.Error("empty query must not reach embedder or backend")
	}
	if len(out.Hits) != 0 {
		t.Errorf("expected no hits, got %d", len(out.Hits))
	}
}

func TestSearch_WithoutEmbedder(t *testing.T) {
	backend := &mockBackend{hits: []result.Hit{{ID: "1", Name: "Сыр", Score: 0.3}}}
	svc := New(backend, "test", nil, nil, 0)

	out, err := svc.Search(context.Background(), "сыр")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if backend.lastReq.HasVector() {
		t.Error("lexical-only search must not carry a vector")
	}
	if math.Abs(out.Hits[0].Score-1.3) > 1e-9 {
		t.Errorf("expected prefix bonus, got %f", out.Hits[0].Score)
	}
}

func TestSearch_EmbedError(t *testing.T) {
	backend := &mockBackend{}
	emb := &mockEmbedder{err: domain.ErrEmbeddingProviderError}
	svc := New(backend, "test", emb, nil, 0)

	_, err := svc.Search(context.Background(), "молоко")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
	if backend.calls != 0 {
		t.Error("backend must not be called after embed failure")
	}
}

func TestSearch_DimensionMismatch(t *testing.T) {
	emb := &mockEmbedder{vec: []float32{0.1}}
	svc := New(&mockBackend{}, "test", emb, nil, 384)

	_, err := svc.Search(context.Background(), "молоко")
	if !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Fatalf("expected ErrVectorDimMismatch, got %v", err)
	}
}

func TestSearch_BackendError(t *testing.T) {
	backend := &mockBackend{err: domain.ErrBackend}
	svc := New(backend, "test", nil, nil, 0)

	_, err := svc.Search(context.Background(), "молоко")
	if !errors.Is(err, domain.ErrBackend) {
		t.Fatalf("expected ErrBackend, got %v", err)
	}
}

func TestSearch_InvalidOptions(t *testing.T) {
	b := NewBuilder(Options{Fuzziness: 5})
	backend := &mockBackend{}
	svc := New(backend, "test", nil, b, 0)

	_, err := svc.Search(context.Background(), "молоко")
	if !errors.Is(err, domain.ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
	if backend.calls != 0 {
		t.Error("invalid request must not reach the backend")
	}
}
