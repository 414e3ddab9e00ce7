package dataset

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	domcat "github.com/kailas-cloud/prefixsearch/internal/domain/catalog"
	domeval "github.com/kailas-cloud/prefixsearch/internal/domain/evaluation"
)

// ReportColumns is the header of the evaluation CSV.
var ReportColumns = []string{
	"query", "site", "type", "notes",
	"top_1", "top_1_score",
	"top_2", "top_2_score",
	"top_3", "top_3_score",
	"latency_ms", "judgement",
}

// EvaluationLogFile is the per-query log written next to the metrics.
const EvaluationLogFile = "evaluation_logs.txt"

// WriteReport writes one CSV row per evaluated query. Absent ranks and the
// latency of failed queries are empty strings.
func WriteReport(w io.Writer, rows []domeval.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ReportColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range rows {
		if err := cw.Write(reportRecord(&rows[i])); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush report: %w", err)
	}
	return nil
}

func reportRecord(r *domeval.Row) []string {
	rec := make([]string, 0, len(ReportColumns))
	rec = append(rec, r.Query, r.Site, r.Type, r.Notes)
	for _, t := range r.Top {
		if !t.Present {
			rec = append(rec, "", "")
			continue
		}
		rec = append(rec, t.Name, strconv.FormatFloat(t.Score, 'f', 2, 64))
	}
	latency := ""
	if r.Err == nil {
		latency = strconv.Itoa(int(r.LatencyMs))
	}
	return append(rec, latency, string(r.Judgement))
}

// WriteMetrics writes aggregate metrics as indented JSON.
func WriteMetrics(w io.Writer, m domeval.Metrics) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode metrics: %w", err)
	}
	return nil
}

// WriteEvaluationLog writes one "Query: '<q>', Results: <n>" line per row.
func WriteEvaluationLog(w io.Writer, rows []domeval.Row) error {
	bw := bufio.NewWriter(w)
	for i := range rows {
		r := &rows[i]
		if r.Err != nil {
			_, _ = fmt.Fprintf(bw, "Query: '%s', Results: 0, Error: %v\n", r.Query, r.Err)
			continue
		}
		_, _ = fmt.Fprintf(bw, "Query: '%s', Results: %d\n", r.Query, r.Results)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write evaluation log: %w", err)
	}
	return nil
}

// WriteSummary prints a human-readable catalog summary.
func WriteSummary(w io.Writer, source string, s domcat.Summary) error {
	bw := bufio.NewWriter(w)
	_, _ = fmt.Fprintf(bw, "Loaded %d products from %s\n", s.Total, source)
	_, _ = fmt.Fprintf(bw, "With parsable weight: %d\n", s.WithWeight)
	_, _ = fmt.Fprintf(bw, "With price: %d\n", s.WithPrice)

	_, _ = fmt.Fprintln(bw, "Top categories:")
	for _, c := range s.TopCategories {
		_, _ = fmt.Fprintf(bw, "  • %s: %d\n", c.Value, c.Count)
	}
	_, _ = fmt.Fprintln(bw, "\nTop brands:")
	for _, c := range s.TopBrands {
		_, _ = fmt.Fprintf(bw, "  • %s: %d\n", c.Value, c.Count)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

// SaveReport writes the evaluation CSV to path.
func SaveReport(path string, rows []domeval.Row) error {
	return save(path, func(w io.Writer) error { return WriteReport(w, rows) })
}

// SaveMetrics writes metrics JSON to path.
func SaveMetrics(path string, m domeval.Metrics) error {
	return save(path, func(w io.Writer) error { return WriteMetrics(w, m) })
}

// SaveEvaluationLog writes the per-query log to path.
func SaveEvaluationLog(path string, rows []domeval.Row) error {
	return save(path, func(w io.Writer) error { return WriteEvaluationLog(w, rows) })
}

func save(path string, write func(io.Writer) error) (err error) {
	f, err := createOutput(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return write(f)
}
