package dataset

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	domcat "github.com/kailas-cloud/prefixsearch/internal/domain/catalog"
	domeval "github.com/kailas-cloud/prefixsearch/internal/domain/evaluation"
	"github.com/kailas-cloud/prefixsearch/internal/domain/search/result"
)

func testRows() []domeval.Row {
	c1 := domeval.Case{Query: "мол", Site: "s", Type: "prefix", Notes: "n"}
	c2 := domeval.Case{Query: "xyz"}
	c3 := domeval.Case{Query: "вода"}
	return []domeval.Row{
		domeval.NewRow(c1, []result.Hit{
			{Name: "Молоко 3.2%", Score: 1.8765},
			{Name: "Молоко 2.5%", Score: 0.6},
		}, 12.7),
		domeval.NewRow(c2, nil, 3),
		domeval.FailedRow(c3, errors.New("backend down")),
	}
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReport(&buf, testRows()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(records))
	}
	if strings.Join(records[0], ",") != strings.Join(ReportColumns, ",") {
		t.Errorf("unexpected header: %v", records[0])
	}

	want := []string{"мол", "s", "prefix", "n", "Молоко 3.2%", "1.88", "Молоко 2.5%", "0.60", "", "", "12", "good"}
	if strings.Join(records[1], "|") != strings.Join(want, "|") {
		t.Errorf("row 1:\ngot:  %v\nwant: %v", records[1], want)
	}
	if r := records[2]; r[4] != "" || r[5] != "" || r[10] != "3" || r[11] != "bad" {
		t.Errorf("unexpected empty-result row: %v", r)
	}
	if r := records[3]; r[10] != "" || r[11] != "error" {
		t.Errorf("unexpected failed row: %v", r)
	}
}

func TestWriteMetrics(t *testing.T) {
	var buf bytes.Buffer
	m := domeval.Compute(testRows())
	if err := WriteMetrics(&buf, m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got map[string]float64
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, k := range []string{"coverage", "total", "success", "failed", "avg_precision_at_3"} {
		if _, ok := got[k]; !ok {
			t.Errorf("missing key %q", k)
		}
	}
	if got["total"] != 3 || got["success"] != 1 || got["failed"] != 1 {
		t.Errorf("unexpected counts: %v", got)
	}
}

func TestWriteEvaluationLog(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteEvaluationLog(&buf, testRows()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Query: 'мол', Results: 2" {
		t.Errorf("unexpected line: %q", lines[0])
	}
	if !strings.HasPrefix(lines[2], "Query: 'вода', Results: 0, Error: backend down") {
		t.Errorf("unexpected failure line: %q", lines[2])
	}
}

func TestWriteSummary(t *testing.T) {
	e1, _ := domcat.NewEntry("1", domcat.Fields{Name: "Молоко", Category: "Молочные", Weight: "1 л", Price: 80})
	e2, _ := domcat.NewEntry("2", domcat.Fields{Name: "Кефир", Category: "Молочные"})
	s := domcat.Summarize([]domcat.Entry{e1, e2}, 10)

	var buf bytes.Buffer
	if err := WriteSummary(&buf, "catalog.xml", s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Loaded 2 products from catalog.xml",
		"  • Молочные: 2",
		"  • unknown: 2",
		"With parsable weight: 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestSaveReport_CreatesDirs(t *testing.T) {
	dir := t.TempDir()
	report := filepath.Join(dir, "reports", "out.csv")
	logPath := filepath.Join(dir, "reports", "logs", EvaluationLogFile)
	metricsPath := filepath.Join(dir, "reports", "logs", "metrics.json")

	rows := testRows()
	if err := SaveReport(report, rows); err != nil {
		t.Fatalf("save report: %v", err)
	}
	if err := SaveEvaluationLog(logPath, rows); err != nil {
		t.Fatalf("save log: %v", err)
	}
	if err := SaveMetrics(metricsPath, domeval.Compute(rows)); err != nil {
		t.Fatalf("save metrics: %v", err)
	}
	for _, p := range []string{report, logPath, metricsPath} {
		if info, err := os.Stat(p); err != nil || info.Size() == 0 {
			t.Errorf("expected non-empty %s: %v", p, err)
		}
	}
}
