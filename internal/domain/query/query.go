package query

import "github.com/kailas-cloud/prefixsearch/internal/domain/search/filter"

// Query is the per-request normalized view of a raw user query.
type Query struct {
	Raw     string
	Text    string
	NoSpace string

	// Set only when Text is pure ASCII, i.e. possibly typed on the wrong layout.
	Translit        string
	TranslitNoSpace string
	Phonetic        string

	Filter *filter.Numeric
}

// Parse normalizes raw and derives its transliterations and quantity filter.
func Parse(raw string) Query {
	text := Normalize(raw)
	q := Query{
		Raw:     raw,
		Text:    text,
		NoSpace: NoSpace(text),
		Filter:  ExtractFilter(raw),
	}
	if text != "" && IsASCII(text) {
		q.Translit = ToCyrillic(text)
		q.TranslitNoSpace = NoSpace(q.Translit)
		q.Phonetic = Phonetic(text)
	}
	return q
}

// IsASCII reports whether the query can be a wrong-layout or romanized spelling.
func (q Query) IsASCII() bool {
	return q.Translit != ""
}

// Variants returns the layout variants of Text plus the phonetic reading, deduplicated.
func (q Query) Variants() []string {
	out := Variants(q.Text)
	if q.Phonetic != "" && !contains(out, q.Phonetic) {
		out = append(out, q.Phonetic)
	}
	return out
}
