package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	domeval "github.com/kailas-cloud/prefixsearch/internal/domain/evaluation"
)

// Query CSV columns. Only query is required.
const (
	colQuery = "query"
	colSite  = "site"
	colType  = "type"
	colNotes = "notes"
)

// LoadQueries opens and parses a query CSV file.
func LoadQueries(path string) ([]domeval.Case, error) {
	f, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	cases, err := ReadQueries(f)
	if err != nil {
		return nil, fmt.Errorf("read queries %s: %w", path, err)
	}
	return cases, nil
}

// ReadQueries parses a CSV with a header row. site, type and notes pass through
// when present. Rows may be ragged.
func ReadQueries(r io.Reader) ([]domeval.Case, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty query file: missing %q header", colQuery)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	if _, ok := idx[colQuery]; !ok {
		return nil, fmt.Errorf("missing %q column in header %v", colQuery, header)
	}

	get := func(rec []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	var cases []domeval.Case
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return cases, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		cases = append(cases, domeval.Case{
			Query: get(rec, colQuery),
			Site:  get(rec, colSite),
			Type:  get(rec, colType),
			Notes: get(rec, colNotes),
		})
	}
}
