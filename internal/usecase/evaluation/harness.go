// Package evaluation runs query batches through search and grades the results.
package evaluation

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	domeval "github.com/kailas-cloud/prefixsearch/internal/domain/evaluation"
	"github.com/kailas-cloud/prefixsearch/internal/logger"
	"github.com/kailas-cloud/prefixsearch/internal/metrics"
)

// Report is the outcome of a run. Rows keep input order.
type Report struct {
	Rows    []domeval.Row
	Metrics domeval.Metrics
}

// Harness evaluates query batches. A failing query is marked on its row and
// the run continues.
type Harness struct {
	searcher Searcher
	workers  int
}

// New creates a harness. workers <= 1 runs queries sequentially.
func New(searcher Searcher, workers int) *Harness {
	if workers < 1 {
		workers = 1
	}
	return &Harness{searcher: searcher, workers: workers}
}

// Run evaluates every case and aggregates metrics.
// Only context cancellation or pool setup failure returns an error; rows not
// reached before cancellation are marked with the context error.
func (h *Harness) Run(ctx context.Context, cases []domeval.Case) (Report, error) {
	rows := make([]domeval.Row, len(cases))

	var err error
	if h.workers == 1 || len(cases) < 2 {
		for i, c := range cases {
			rows[i] = h.evaluate(ctx, c)
		}
	} else {
		err = h.runPool(ctx, cases, rows)
	}
	if err != nil {
		return Report{}, err
	}

	for _, r := range rows {
		metrics.JudgementsTotal.WithLabelValues(string(r.Judgement)).Inc()
	}

	report := Report{Rows: rows, Metrics: domeval.Compute(rows)}
	logger.FromContext(ctx).Info("Evaluation finished",
		zap.Int("total", report.Metrics.Total),
		zap.Int("success", report.Metrics.Success),
		zap.Int("failed", report.Metrics.Failed),
		zap.Float64("coverage", report.Metrics.Coverage),
		zap.Float64("avg_precision_at_3", report.Metrics.AvgPrecisionAt3),
	)
	return report, ctx.Err()
}

// runPool fans cases out over an ants pool. Each task writes only its own slot.
func (h *Harness) runPool(ctx context.Context, cases []domeval.Case, rows []domeval.Row) error {
	pool, err := ants.NewPool(h.workers)
	if err != nil {
		return fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i := range cases {
		wg.Add(1)
		idx := i
		if submitErr := pool.Submit(func() {
			defer wg.Done()
			rows[idx] = h.evaluate(ctx, cases[idx])
		}); submitErr != nil {
			wg.Done()
			rows[idx] = domeval.FailedRow(cases[idx], fmt.Errorf("submit: %w", submitErr))
		}
	}
	wg.Wait()
	return nil
}

func (h *Harness) evaluate(ctx context.Context, c domeval.Case) domeval.Row {
	if err := ctx.Err(); err != nil {
		return domeval.FailedRow(c, err)
	}
	ctx = logger.WithFields(ctx, zap.String("query", c.Query))
	log := logger.FromContext(ctx)

	out, err := h.searcher.Search(ctx, c.Query)
	if err != nil {
		log.Warn("Query failed", zap.Error(err))
		return domeval.FailedRow(c, err)
	}

	row := domeval.NewRow(c, out.Hits, out.LatencyMs())
	log.Info("Query processed",
		zap.Int("results", row.Results),
		zap.Float64("latency_ms", row.LatencyMs),
		zap.String("judgement", string(row.Judgement)),
	)
	return row
}
