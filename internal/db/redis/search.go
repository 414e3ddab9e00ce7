package redis

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/prefixsearch/internal/db"
	"github.com/kailas-cloud/prefixsearch/internal/domain/search/filter"
)

const vectorScoreField = "__vector_score"

// minPrefixLen is the shortest term the query engine expands as a prefix.
const minPrefixLen = 2

// SearchKNN runs a KNN vector similarity search via FT.SEARCH.
// Cosine distance is converted to similarity (1 - d, clamped at 0).
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if len(q.Vector) == 0 {
		return nil, fmt.Errorf("vector is required")
	}
	if q.K <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}

	args := []string{q.IndexName, buildKNNQuery(q)}

	if len(q.ReturnFields) > 0 {
		fields := append(append([]string{}, q.ReturnFields...), vectorScoreField)
		args = append(args, "RETURN", strconv.Itoa(len(fields)))
		args = append(args, fields...)
	}

	args = append(args,
		"SORTBY", vectorScoreField,
		"LIMIT", "0", strconv.Itoa(q.K),
		"PARAMS", "2", "BLOB", VectorToBytes(q.Vector),
		"DIALECT", "2",
	)

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, searchErr(err)
	}

	return parseKNNResult(raw)
}

// SearchText runs a weighted full-text search via FT.SEARCH WITHSCORES.
func (s *Store) SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.TopK <= 0 {
		return nil, fmt.Errorf("topK must be positive")
	}
	queryStr := buildTextQuery(q)
	if queryStr == "" {
		return nil, fmt.Errorf("query is required")
	}

	args := []string{q.IndexName, queryStr}

	if len(q.ReturnFields) > 0 {
		args = append(args, "RETURN", strconv.Itoa(len(q.ReturnFields)))
		args = append(args, q.ReturnFields...)
	}

	scorer := q.Scorer
	if scorer == "" {
		scorer = "BM25"
	}
	args = append(args,
		"WITHSCORES",
		"SCORER", scorer,
		"LIMIT", "0", strconv.Itoa(q.TopK),
		"DIALECT", "2",
	)

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, searchErr(err)
	}

	return parseTextResult(raw)
}

// SearchCount returns document count via FT.SEARCH with LIMIT 0 0.
func (s *Store) SearchCount(ctx context.Context, index, query string) (int, error) {
	cmd := s.b().Arbitrary("FT.SEARCH").Args(index, query, "LIMIT", "0", "0").Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return 0, searchErr(err)
	}
	if len(raw) == 0 {
		return 0, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return 0, fmt.Errorf("parse count: %w", err)
	}
	return int(total), nil
}

func searchErr(err error) error {
	if isIndexMissing(err) {
		return &db.Error{Op: db.OpSearch, Err: db.ErrIndexNotFound}
	}
	return &db.Error{Op: db.OpSearch, Err: err}
}

// --- Query building ---

func buildKNNQuery(q *db.KNNQuery) string {
	field := q.VectorField
	if field == "" {
		field = "vector"
	}
	knn := fmt.Sprintf("[KNN %d @%s $BLOB", q.K, field)
	if q.EFRuntime > 0 {
		knn += fmt.Sprintf(" EF_RUNTIME %d", q.EFRuntime)
	}
	knn += "]"

	if f := buildNumericFilter(q.Filter); f != "" {
		return fmt.Sprintf("(%s)=>%s", f, knn)
	}
	return "*=>" + knn
}

// buildTextQuery renders the OR of all clauses, intersected with the numeric filter:
//
//	@weight_num:[0.5 +inf] ((@name:(кола*|05л*)) => { $weight: 3; } | @name_variants:(%кола%))
func buildTextQuery(q *db.TextQuery) string {
	clauses := make([]string, 0, len(q.Clauses))
	for i := range q.Clauses {
		if c := buildClause(&q.Clauses[i]); c != "" {
			clauses = append(clauses, c)
		}
	}
	if len(clauses) == 0 {
		return ""
	}

	text := strings.Join(clauses, " | ")
	if len(clauses) > 1 {
		text = "(" + text + ")"
	}
	if f := buildNumericFilter(q.Filter); f != "" {
		return f + " " + text
	}
	return text
}

func buildClause(c *db.TextClause) string {
	terms := make([]string, 0, len(c.Terms))
	for _, t := range c.Terms {
		if term := buildTerm(t, c.Mode, c.Fuzziness); term != "" {
			terms = append(terms, term)
		}
	}
	if len(terms) == 0 {
		return ""
	}

	clause := fmt.Sprintf("@%s:(%s)", c.Field, strings.Join(terms, "|"))
	if c.Weight > 0 && c.Weight != 1 {
		clause = fmt.Sprintf("(%s) => { $weight: %s; }", clause, strconv.FormatFloat(c.Weight, 'f', -1, 64))
	}
	return clause
}

func buildTerm(term string, mode db.TextMode, fuzziness int) string {
	if term == "" {
		return ""
	}
	escaped := escapeQuery(term)
	switch mode {
	case db.TextPrefix:
		if len([]rune(term)) < minPrefixLen {
			return escaped
		}
		return escaped + "*"
	case db.TextFuzzy:
		if fuzziness <= 0 {
			return escaped
		}
		marks := strings.Repeat("%", min(fuzziness, 3))
		return marks + escaped + marks
	default:
		return escaped
	}
}

// buildNumericFilter renders an FT.SEARCH numeric range.
func buildNumericFilter(f *filter.Numeric) string {
	if f == nil {
		return ""
	}
	minBound, maxBound := "-inf", "+inf"
	v := strconv.FormatFloat(f.Value, 'g', -1, 64)

	switch f.Op {
	case filter.GTE:
		minBound = v
	case filter.GT:
		minBound = "(" + v
	case filter.LTE:
		maxBound = v
	case filter.LT:
		maxBound = "(" + v
	}
	return fmt.Sprintf("@%s:[%s %s]", f.Field, minBound, maxBound)
}

// --- Result parsing ---

func parseKNNResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	res, err := parsePairs(raw)
	if err != nil {
		return nil, err
	}
	for i := range res.Entries {
		e := &res.Entries[i]
		if scoreStr, ok := e.Fields[vectorScoreField]; ok {
			if d, err := strconv.ParseFloat(scoreStr, 64); err == nil {
				e.Score = max(0, 1.0-d)
			}
			delete(e.Fields, vectorScoreField)
		}
	}
	return res, nil
}

// parsePairs reads the 2-stride reply: [total, key1, fields1, key2, fields2, ...].
func parsePairs(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, total)
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}
		entries = append(entries, db.SearchEntry{Key: key, Fields: parseFieldPairs(fields)})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

// parseTextResult reads the 3-stride WITHSCORES reply: [total, key1, score1, fields1, ...].
func parseTextResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, total)
	for i := 1; i+2 < len(raw); i += 3 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		scoreStr, err := raw[i+1].ToString()
		if err != nil {
			continue
		}
		score, err := strconv.ParseFloat(scoreStr, 64)
		if err != nil {
			continue
		}

		fields, err := raw[i+2].ToArray()
		if err != nil {
			continue
		}

		entries = append(entries, db.SearchEntry{
			Key:    key,
			Score:  score,
			Fields: parseFieldPairs(fields),
		})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// --- Query helpers ---

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
)

// VectorToBytes encodes v as the little-endian FLOAT32 blob used by vector fields.
func VectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

