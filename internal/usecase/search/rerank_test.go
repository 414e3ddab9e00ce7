package search

import (
	"testing"

	"github.com/kailas-cloud/prefixsearch/internal/domain/query"
	"github.com/kailas-cloud/prefixsearch/internal/domain/search/result"
)

func TestRerank_PrefixBonus(t *testing.T) {
	hits := []result.Hit{
		{ID: "1", Name: "Сливки", Score: 0.9},
		{ID: "2", Name: "Молоко 3.2%", Score: 0.5},
	}
	got := Rerank(hits, query.Parse("мол"))

	if got[0].ID != "2" || got[0].Score != 1.5 {
		t.Errorf("expected boosted prefix hit first, got %+v", got[0])
	}
	if got[1].Score != 0.9 {
		t.Errorf("non-prefix hit must keep its score, got %f", got[1].Score)
	}
	if hits[1].Score != 0.5 || hits[0].ID != "1" {
		t.Error("input slice was modified")
	}
}

func TestRerank_EmptyQueryNoBonus(t *testing.T) {
	hits := []result.Hit{{ID: "1", Name: "Молоко", Score: 0.4}}
	got := Rerank(hits, query.Parse("   "))
	if got[0].Score != 0.4 {
		t.Errorf("empty query must not add a bonus, got %f", got[0].Score)
	}
}

func TestRerank_StableTies(t *testing.T) {
	hits := []result.Hit{
		{ID: "a", Name: "Хлеб", Score: 1},
		{ID: "b", Name: "Хлебцы", Score: 1},
		{ID: "c", Name: "Батон", Score: 1.5},
	}
	got := Rerank(hits, query.Parse("хлеб"))

	if got[0].ID != "a" || got[1].ID != "b" || got[2].ID != "c" {
		t.Errorf("unexpected order: %s %s %s", got[0].ID, got[1].ID, got[2].ID)
	}
}
