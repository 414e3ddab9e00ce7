package db

import "github.com/kailas-cloud/prefixsearch/internal/domain/search/filter"

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	VectorField  string
	Filter       *filter.Numeric
	Vector       []float32
	K            int
	EFRuntime    int // HNSW candidate list size at query time, 0 keeps the index default
	ReturnFields []string
}

// TextMode selects how the terms of a clause are matched.
type TextMode int

const (
	// TextPrefix matches each term as a prefix.
	TextPrefix TextMode = iota
	// TextFuzzy matches each term within the clause Fuzziness (Levenshtein distance).
	TextFuzzy
	// TextExact matches each term literally.
	TextExact
)

// TextClause matches any of Terms in Field. Clauses of a query are OR-ed.
type TextClause struct {
	Field     string
	Terms     []string
	Mode      TextMode
	Fuzziness int
	Weight    float64
}

// TextQuery is the input for weighted full-text search.
type TextQuery struct {
	IndexName    string
	Clauses      []TextClause
	Filter       *filter.Numeric
	TopK         int
	Scorer       string // BM25 when empty
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
