package dataset

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kailas-cloud/prefixsearch/internal/domain"
)

func TestReadQueries(t *testing.T) {
	in := "query,site,type,notes\n" +
		"мол,shop.ru,prefix,short\n" +
		"\"vjkjrj 1л\",,layout,\"wrong, layout\"\n" +
		"хлеб\n"

	cases, err := ReadQueries(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cases) != 3 {
		t.Fatalf("expected 3 cases, got %d", len(cases))
	}
	if c := cases[0]; c.Query != "мол" || c.Site != "shop.ru" || c.Type != "prefix" || c.Notes != "short" {
		t.Errorf("unexpected first case: %+v", c)
	}
	if c := cases[1]; c.Query != "vjkjrj 1л" || c.Notes != "wrong, layout" {
		t.Errorf("unexpected second case: %+v", c)
	}
	if c := cases[2]; c.Query != "хлеб" || c.Site != "" {
		t.Errorf("expected ragged row to pass, got %+v", c)
	}
}

func TestReadQueries_HeaderOrderAndBOM(t *testing.T) {
	in := "\ufeffNotes,Query\nn1,q1\n"
	cases, err := ReadQueries(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cases) != 1 || cases[0].Query != "q1" || cases[0].Notes != "n1" {
		t.Errorf("unexpected cases: %+v", cases)
	}
}

func TestReadQueries_MissingQueryColumn(t *testing.T) {
	if _, err := ReadQueries(strings.NewReader("site,type\na,b\n")); err == nil {
		t.Fatal("expected error for missing query column")
	}
	if _, err := ReadQueries(strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty file")
	}
}

func TestReadQueries_HeaderOnly(t *testing.T) {
	cases, err := ReadQueries(strings.NewReader("query\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cases) != 0 {
		t.Errorf("expected no cases, got %d", len(cases))
	}
}

func TestLoadQueries_Missing(t *testing.T) {
	_, err := LoadQueries(filepath.Join(t.TempDir(), "queries.csv"))
	if !errors.Is(err, domain.ErrInputNotFound) {
		t.Fatalf("expected ErrInputNotFound, got %v", err)
	}
}
