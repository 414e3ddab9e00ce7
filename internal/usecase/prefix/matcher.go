// Package prefix implements offline fuzzy prefix matching over a list of names.
package prefix

import (
	"sort"
	"strings"

	"github.com/kailas-cloud/prefixsearch/internal/domain/query"
	"github.com/kailas-cloud/prefixsearch/internal/domain/similarity"
)

// Threshold is the minimum similarity for a fuzzy prefix hit.
const Threshold = 0.8

// Matcher finds names whose beginning matches a typed prefix, tolerating typos,
// missing spaces, wrong keyboard layout and romanized input.
// Safe for concurrent use.
type Matcher struct {
	names []preparedName
}

type preparedName struct {
	original string
	text     string
	noSpace  string
}

// NewMatcher prepares a reusable matcher over names.
func NewMatcher(names []string) *Matcher {
	m := &Matcher{names: make([]preparedName, 0, len(names))}
	for _, n := range names {
		m.names = append(m.names, prepare(n))
	}
	return m
}

func prepare(name string) preparedName {
	text := query.Normalize(name)
	return preparedName{original: name, text: text, noSpace: query.NoSpace(text)}
}

// Len returns the number of indexed names.
func (m *Matcher) Len() int { return len(m.names) }

// Match returns the indexed names matching prefix, sorted and deduplicated.
// limit <= 0 returns every match.
func (m *Matcher) Match(prefix string, limit int) []string {
	out := match(m.names, prefix)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Search matches prefix against names without keeping an index.
func Search(names []string, prefix string) []string {
	prepared := make([]preparedName, 0, len(names))
	for _, n := range names {
		prepared = append(prepared, prepare(n))
	}
	return match(prepared, prefix)
}

// candidates are the prefix forms tried against each name.
type candidates struct {
	text     string
	noSpace  string
	alt      []string
	altSpace []string
}

func newCandidates(prefix string) (candidates, bool) {
	q := query.Parse(prefix)
	if q.Text == "" {
		return candidates{}, false
	}
	c := candidates{text: q.Text, noSpace: q.NoSpace}
	if q.IsASCII() {
		for _, alt := range []string{q.Translit, q.Phonetic} {
			if alt == "" || contains(c.alt, alt) {
				continue
			}
			c.alt = append(c.alt, alt)
			c.altSpace = append(c.altSpace, query.NoSpace(alt))
		}
	}
	return c, true
}

func match(names []preparedName, prefix string) []string {
	c, ok := newCandidates(prefix)
	if !ok {
		return []string{}
	}

	seen := make(map[string]struct{})
	out := []string{}
	for _, n := range names {
		if _, dup := seen[n.original]; dup {
			continue
		}
		if !c.matches(n) {
			continue
		}
		seen[n.original] = struct{}{}
		out = append(out, n.original)
	}
	sort.Strings(out)
	return out
}

// matches tries, in order: the normalized prefix, its no-space form, each
// transliterated prefix and their no-space forms. First hit wins.
func (c candidates) matches(n preparedName) bool {
	if fuzzyPrefix(n.text, c.text) || fuzzyPrefix(n.noSpace, c.noSpace) {
		return true
	}
	for _, alt := range c.alt {
		if fuzzyPrefix(n.text, alt) {
			return true
		}
	}
	for _, alt := range c.altSpace {
		if fuzzyPrefix(n.noSpace, alt) {
			return true
		}
	}
	return false
}

// fuzzyPrefix reports whether name starts with prefix or its first len(prefix)
// runes are similar enough to it.
func fuzzyPrefix(name, prefix string) bool {
	if prefix == "" {
		return false
	}
	if strings.HasPrefix(name, prefix) {
		return true
	}
	head := []rune(name)
	if n := len([]rune(prefix)); len(head) > n {
		head = head[:n]
	}
	return similarity.Ratio(string(head), prefix) >= Threshold
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
