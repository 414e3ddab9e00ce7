package catalog

import "sort"

// Unknown labels a missing category or brand in summaries.
const Unknown = "unknown"

// Count is a value with its number of occurrences.
type Count struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Summary describes the composition of a catalog.
type Summary struct {
	Total         int     `json:"total"`
	WithWeight    int     `json:"with_weight"`
	WithPrice     int     `json:"with_price"`
	TopCategories []Count `json:"top_categories"`
	TopBrands     []Count `json:"top_brands"`
}

// Summarize counts entries and their most frequent categories and brands.
// Ties keep first-seen order. top <= 0 returns every value.
func Summarize(entries []Entry, top int) Summary {
	s := Summary{Total: len(entries)}
	categories := newCounter()
	brands := newCounter()

	for i := range entries {
		e := &entries[i]
		if _, ok := e.WeightValue(); ok {
			s.WithWeight++
		}
		if e.Price() > 0 {
			s.WithPrice++
		}
		categories.add(e.Category())
		brands.add(e.Brand())
	}

	s.TopCategories = categories.top(top)
	s.TopBrands = brands.top(top)
	return s
}

type counter struct {
	order  []string
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(v string) {
	if v == "" {
		v = Unknown
	}
	if _, ok := c.counts[v]; !ok {
		c.order = append(c.order, v)
	}
	c.counts[v]++
}

func (c *counter) top(n int) []Count {
	out := make([]Count, 0, len(c.order))
	for _, v := range c.order {
		out = append(out, Count{Value: v, Count: c.counts[v]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
