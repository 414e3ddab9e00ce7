// Package evaluation holds per-query evaluation rows and aggregate metrics.
package evaluation

import (
	"strconv"

	"github.com/kailas-cloud/prefixsearch/internal/domain/judgement"
	"github.com/kailas-cloud/prefixsearch/internal/domain/search/result"
)

// TopN is the number of ranked hits kept per row.
const TopN = 3

// Case is one evaluation query with its pass-through annotations.
type Case struct {
	Query string
	Site  string
	Type  string
	Notes string
}

// Ranked is one of the top hits of a row. Present is false for absent ranks.
type Ranked struct {
	Name    string
	Score   float64
	Present bool
}

// Row is the evaluation outcome of one query.
type Row struct {
	Case
	Top       [TopN]Ranked
	Results   int
	LatencyMs float64
	Judgement judgement.Label
	Err       error
}

// NewRow builds a row from reranked hits.
func NewRow(c Case, hits []result.Hit, latencyMs float64) Row {
	row := Row{Case: c, Results: len(hits), LatencyMs: latencyMs}
	for i := 0; i < TopN && i < len(hits); i++ {
		row.Top[i] = Ranked{Name: hits[i].Name, Score: hits[i].Score, Present: true}
	}
	row.Judgement = judgement.Classify(reportedScore(result.TopScore(hits)))
	return row
}

// reportedScore rounds s the way the report prints it, so a row never shows
// 0.70 next to good.
func reportedScore(s float64) float64 {
	v, err := strconv.ParseFloat(strconv.FormatFloat(s, 'f', 2, 64), 64)
	if err != nil {
		return s
	}
	return v
}

// FailedRow builds a row for a query whose search failed.
func FailedRow(c Case, err error) Row {
	return Row{Case: c, Judgement: judgement.Error, Err: err}
}

// Succeeded reports whether the query returned at least one hit.
func (r Row) Succeeded() bool {
	return r.Err == nil && r.Results > 0
}

// PrecisionAt3 is the share of the top 3 slots holding a relevant hit.
// Absent slots count as misses.
func (r Row) PrecisionAt3() float64 {
	relevant := 0
	for _, t := range r.Top {
		if t.Present && judgement.IsRelevant(t.Score) {
			relevant++
		}
	}
	return float64(relevant) / TopN
}

// Metrics aggregates a run. Coverage and AvgPrecisionAt3 are percentages.
type Metrics struct {
	Total           int     `json:"total"`
	Success         int     `json:"success"`
	Failed          int     `json:"failed"`
	Coverage        float64 `json:"coverage"`
	AvgPrecisionAt3 float64 `json:"avg_precision_at_3"`
}

// Compute aggregates rows. Failed rows count toward Total only.
func Compute(rows []Row) Metrics {
	m := Metrics{Total: len(rows)}
	if m.Total == 0 {
		return m
	}

	var precision float64
	for _, r := range rows {
		if r.Err != nil {
			m.Failed++
			continue
		}
		if r.Succeeded() {
			m.Success++
		}
		precision += r.PrecisionAt3()
	}

	m.Coverage = float64(m.Success) / float64(m.Total) * 100
	m.AvgPrecisionAt3 = precision / float64(m.Total) * 100
	return m
}

// CountByLabel tallies rows per judgement.
func CountByLabel(rows []Row) map[judgement.Label]int {
	out := make(map[judgement.Label]int, len(judgement.Labels()))
	for _, r := range rows {
		out[r.Judgement]++
	}
	return out
}
