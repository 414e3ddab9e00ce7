// Package memindex is an in-process search backend: bleve for the lexical
// clauses and exact cosine similarity for the vector clause.
package memindex

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/whitespace"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/kailas-cloud/prefixsearch/internal/domain"
	domcat "github.com/kailas-cloud/prefixsearch/internal/domain/catalog"
	domquery "github.com/kailas-cloud/prefixsearch/internal/domain/query"
	"github.com/kailas-cloud/prefixsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/prefixsearch/internal/domain/search/fusion"
	"github.com/kailas-cloud/prefixsearch/internal/domain/search/request"
	"github.com/kailas-cloud/prefixsearch/internal/domain/search/result"
)

const (
	docType = "product"

	// analyzerName splits already normalized text on whitespace only.
	analyzerName = "normalized"

	// minPrefixLen is the shortest term expanded as a prefix.
	minPrefixLen = 2
)

// Index holds the catalog in memory. Safe for concurrent use.
type Index struct {
	mu      sync.RWMutex
	idx     bleve.Index
	entries map[string]domcat.Entry
	order   []string
}

// New creates an empty in-memory index.
func New() (*Index, error) {
	idx, err := newBleveIndex()
	if err != nil {
		return nil, err
	}
	return &Index{idx: idx, entries: make(map[string]domcat.Entry)}, nil
}

func newBleveIndex() (bleve.Index, error) {
	im, err := buildMapping()
	if err != nil {
		return nil, err
	}
	idx, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("create bleve index: %w", err)
	}
	return idx, nil
}

func buildMapping() (mapping.IndexMapping, error) {
	im := bleve.NewIndexMapping()
	err := im.AddCustomAnalyzer(analyzerName, map[string]interface{}{
		"type":      custom.Name,
		"tokenizer": whitespace.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("register analyzer: %w", err)
	}

	product := bleve.NewDocumentMapping()
	for _, name := range []string{request.FieldName, request.FieldNameVariants, request.FieldDescription} {
		f := bleve.NewTextFieldMapping()
		f.Analyzer = analyzerName
		f.Store = false
		product.AddFieldMappingsAt(name, f)
	}
	for _, name := range []string{request.FieldCategory, request.FieldBrand} {
		f := bleve.NewTextFieldMapping()
		f.Analyzer = "keyword"
		f.Store = false
		product.AddFieldMappingsAt(name, f)
	}
	for _, name := range []string{request.FieldPrice, request.FieldWeightNum} {
		f := bleve.NewNumericFieldMapping()
		f.Store = false
		product.AddFieldMappingsAt(name, f)
	}

	im.AddDocumentMapping(docType, product)
	im.DefaultType = docType
	return im, nil
}

// EnsureIndex is a no-op for an existing index; recreate drops every entry.
func (x *Index) EnsureIndex(_ context.Context, recreate bool) error {
	if !recreate {
		return nil
	}
	fresh, err := newBleveIndex()
	if err != nil {
		return err
	}

	x.mu.Lock()
	old := x.idx
	x.idx = fresh
	x.entries = make(map[string]domcat.Entry)
	x.order = nil
	x.mu.Unlock()

	if err := old.Close(); err != nil {
		return fmt.Errorf("close bleve index: %w", err)
	}
	return nil
}

// Put indexes entries in a single bleve batch. Existing IDs are replaced.
func (x *Index) Put(_ context.Context, entries []domcat.Entry) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	b := x.idx.NewBatch()
	for i := range entries {
		e := &entries[i]
		if err := b.Index(e.ID(), buildDoc(e)); err != nil {
			return fmt.Errorf("index entry %s: %w", e.ID(), err)
		}
	}
	if err := x.idx.Batch(b); err != nil {
		return fmt.Errorf("%w: bleve batch: %w", domain.ErrBackend, err)
	}

	for i := range entries {
		id := entries[i].ID()
		if _, ok := x.entries[id]; !ok {
			x.order = append(x.order, id)
		}
		x.entries[id] = entries[i]
	}
	return nil
}

// buildDoc converts an entry into the bleve document. Text fields are normalized;
// name and description are split on punctuation first, name_variants is not.
func buildDoc(e *domcat.Entry) map[string]interface{} {
	doc := map[string]interface{}{
		request.FieldName:         domquery.Normalize(splitWords(e.Name())),
		request.FieldNameVariants: strings.Join(e.NameVariants(), " "),
		request.FieldDescription:  domquery.Normalize(splitWords(e.Description())),
		request.FieldCategory:     e.Category(),
		request.FieldBrand:        e.Brand(),
		request.FieldPrice:        e.Price(),
	}
	if v, ok := e.WeightValue(); ok {
		doc[request.FieldWeightNum] = v
	}
	return doc
}

// splitWords replaces punctuation and symbols with spaces so that
// "Кока-Кола" yields two terms. A decimal separator between digits is kept.
func splitWords(s string) string {
	rs := []rune(s)
	for i, r := range rs {
		if r == '_' || !(unicode.IsPunct(r) || unicode.IsSymbol(r)) {
			continue
		}
		if (r == '.' || r == ',') && i > 0 && i+1 < len(rs) && unicode.IsDigit(rs[i-1]) && unicode.IsDigit(rs[i+1]) {
			continue
		}
		rs[i] = ' '
	}
	return string(rs)
}

// Count returns the number of indexed entries.
func (x *Index) Count(_ context.Context) (int, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries), nil
}

// Names returns the display names of all entries in insertion order.
func (x *Index) Names() []string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	out := make([]string, 0, len(x.order))
	for _, id := range x.order {
		e := x.entries[id]
		out = append(out, e.Name())
	}
	return out
}

// Close releases the bleve index.
func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.idx.Close() //nolint:wrapcheck // shutdown path
}

// Search implements usecase/search.Backend.
func (x *Index) Search(ctx context.Context, req *request.Request) ([]result.Hit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err //nolint:wrapcheck // context error
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	var lexical, vector []result.Hit
	if req.HasText() {
		hits, err := x.searchText(req)
		if err != nil {
			return nil, err
		}
		lexical = hits
	}
	if req.HasVector() {
		vector = x.searchVector(req)
	}
	return fusion.Combine(req, lexical, vector), nil
}

func (x *Index) searchText(req *request.Request) ([]result.Hit, error) {
	q := textQuery(req)
	if q == nil {
		return nil, nil
	}

	sr, err := x.idx.Search(bleve.NewSearchRequestOptions(q, req.TopK, 0, false))
	if err != nil {
		return nil, fmt.Errorf("%w: bleve search: %w", domain.ErrBackend, err)
	}

	hits := make([]result.Hit, 0, len(sr.Hits))
	for _, m := range sr.Hits {
		e, ok := x.entries[m.ID]
		if !ok {
			continue
		}
		hits = append(hits, toHit(&e, m.Score))
	}
	return hits, nil
}

// textQuery mirrors the Redis clause layout: weighted prefix terms over the
// configured fields OR fuzzy variant terms over name_variants, AND the numeric filter.
func textQuery(req *request.Request) query.Query {
	var should []query.Query

	for _, term := range strings.Fields(req.LeftText) {
		for _, fw := range req.FieldWeights {
			q := termQuery(term, fw.Field)
			if fw.Weight > 0 {
				q.SetBoost(fw.Weight)
			}
			should = append(should, q)
		}
	}

	seen := make(map[string]struct{})
	for _, term := range strings.Fields(domquery.Normalize(req.VariantsText)) {
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		fq := bleve.NewFuzzyQuery(term)
		fq.SetField(request.FieldNameVariants)
		fq.SetFuzziness(req.Fuzziness)
		should = append(should, fq)
	}

	if len(should) == 0 {
		return nil
	}
	var q query.Query = bleve.NewDisjunctionQuery(should...)
	if req.NumericFilter != nil {
		q = bleve.NewConjunctionQuery(q, rangeQuery(*req.NumericFilter))
	}
	return q
}

type boostableQuery interface {
	query.Query
	SetBoost(b float64)
}

func termQuery(term, field string) boostableQuery {
	if len([]rune(term)) < minPrefixLen {
		q := bleve.NewTermQuery(term)
		q.SetField(field)
		return q
	}
	q := bleve.NewPrefixQuery(term)
	q.SetField(field)
	return q
}

func rangeQuery(f filter.Numeric) query.Query {
	v := f.Value
	incl := f.Op == filter.GTE || f.Op == filter.LTE

	var q *query.NumericRangeQuery
	switch f.Op {
	case filter.GTE, filter.GT:
		q = bleve.NewNumericRangeInclusiveQuery(&v, nil, &incl, nil)
	default:
		q = bleve.NewNumericRangeInclusiveQuery(nil, &v, nil, &incl)
	}
	q.SetField(f.Field)
	return q
}

// searchVector ranks entries by cosine similarity (clamped at 0) to req.Vector.
func (x *Index) searchVector(req *request.Request) []result.Hit {
	type scored struct {
		id    string
		score float64
	}

	cands := make([]scored, 0, len(x.order))
	for _, id := range x.order {
		e := x.entries[id]
		if len(e.Embedding()) != len(req.Vector) {
			continue
		}
		if f := req.NumericFilter; f != nil {
			v, ok := numericValue(&e, f.Field)
			if !ok || !f.Matches(v) {
				continue
			}
		}
		cands = append(cands, scored{id: id, score: math.Max(0, cosine(req.Vector, e.Embedding()))})
	}

	sort.SliceStable(cands, func(i, j int) bool { return cands[i].score > cands[j].score })
	if len(cands) > req.VectorK {
		cands = cands[:req.VectorK]
	}

	hits := make([]result.Hit, 0, len(cands))
	for _, c := range cands {
		e := x.entries[c.id]
		hits = append(hits, toHit(&e, c.score))
	}
	return hits
}

func numericValue(e *domcat.Entry, field string) (float64, bool) {
	switch field {
	case request.FieldWeightNum:
		return e.WeightValue()
	case request.FieldPrice:
		return e.Price(), true
	}
	return 0, false
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func toHit(e *domcat.Entry, score float64) result.Hit {
	return result.Hit{
		ID:       e.ID(),
		Name:     e.Name(),
		Category: e.Category(),
		Price:    e.Price(),
		Weight:   e.Weight(),
		Score:    score,
	}
}
