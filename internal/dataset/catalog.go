// Package dataset reads catalog and query files and writes evaluation reports.
package dataset

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kailas-cloud/prefixsearch/internal/domain"
	domcat "github.com/kailas-cloud/prefixsearch/internal/domain/catalog"
)

const productElement = "product"

// xmlProduct is one <product> element. Price is kept as text so a malformed
// value degrades to 0 instead of failing the whole file.
type xmlProduct struct {
	ID          string `xml:"id,attr"`
	Name        string `xml:"name"`
	Description string `xml:"description"`
	Price       string `xml:"price"`
	Category    string `xml:"category"`
	Brand       string `xml:"brand"`
	Weight      string `xml:"weight"`
}

// LoadCatalog opens and parses an XML catalog file.
func LoadCatalog(path string) ([]domcat.Entry, error) {
	f, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	entries, err := ReadCatalog(f)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return entries, nil
}

// ReadCatalog parses <product> elements at any depth. Products without a
// name are skipped; the id attribute defaults to the product's position.
func ReadCatalog(r io.Reader) ([]domcat.Entry, error) {
	dec := xml.NewDecoder(r)
	var entries []domcat.Entry
	pos := 0

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return nil, fmt.Errorf("parse xml: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != productElement {
			continue
		}
		pos++

		var p xmlProduct
		if err := dec.DecodeElement(&p, &start); err != nil {
			return nil, fmt.Errorf("parse product %d: %w", pos, err)
		}

		id := strings.TrimSpace(p.ID)
		if id == "" {
			id = strconv.Itoa(pos)
		}
		e, err := domcat.NewEntry(id, domcat.Fields{
			Name:        p.Name,
			Description: p.Description,
			Price:       parsePrice(p.Price),
			Category:    p.Category,
			Brand:       p.Brand,
			Weight:      p.Weight,
		})
		if errors.Is(err, domain.ErrInvalidEntry) {
			continue
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
}

// Names returns the display names of entries in file order.
func Names(entries []domcat.Entry) []string {
	out := make([]string, len(entries))
	for i := range entries {
		out[i] = entries[i].Name()
	}
	return out
}

func parsePrice(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// openInput opens a required input file. A missing file maps to ErrInputNotFound.
func openInput(path string) (*os.File, error) {
	f, err := os.Open(filepath.Clean(path))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, domain.ErrInputNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

// createOutput creates a file, making parent directories as needed.
func createOutput(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create dir %s: %w", dir, err)
		}
	}
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, nil
}
