package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/prefixsearch/internal/config"
	"github.com/kailas-cloud/prefixsearch/internal/dataset"
	"github.com/kailas-cloud/prefixsearch/internal/domain"
	domcat "github.com/kailas-cloud/prefixsearch/internal/domain/catalog"
	chiTransport "github.com/kailas-cloud/prefixsearch/internal/transport/chi"
	catalogus "github.com/kailas-cloud/prefixsearch/internal/usecase/catalog"
	"github.com/kailas-cloud/prefixsearch/internal/usecase/evaluation"
	"github.com/kailas-cloud/prefixsearch/internal/usecase/prefix"
)

func catalogFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "catalog",
		Usage: "Path to the XML catalog (default: paths.catalog)",
	}
}

func evaluateCommand() *cli.Command {
	return &cli.Command{
		Name:   "evaluate",
		Usage:  "Run a query CSV through hybrid search and write the evaluation report",
		Action: evaluateAction,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "queries",
				Aliases: []string{"q"},
				Usage:   "Path to the query CSV (default: paths.queries)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Path of the evaluation CSV (default: paths.report)",
			},
			catalogFlag(),
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Number of concurrent queries (default: evaluation.workers)",
			},
		},
	}
}

func prefixCommand() *cli.Command {
	return &cli.Command{
		Name:      "prefix",
		Usage:     "Match prefixes against catalog names offline",
		ArgsUsage: "<prefix> [prefix...]",
		Action:    prefixAction,
		Flags: []cli.Flag{
			catalogFlag(),
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum matches per prefix (0 = all)",
			},
		},
	}
}

func indexCommand() *cli.Command {
	return &cli.Command{
		Name:   "index",
		Usage:  "Embed and write the catalog into the search backend",
		Action: indexAction,
		Flags: []cli.Flag{
			catalogFlag(),
			&cli.BoolFlag{
				Name:  "recreate",
				Usage: "Drop the existing index and its documents first",
			},
		},
	}
}

func summarizeCommand() *cli.Command {
	return &cli.Command{
		Name:   "summarize",
		Usage:  "Print catalog size and its top categories and brands",
		Action: summarizeAction,
		Flags: []cli.Flag{
			catalogFlag(),
			&cli.IntFlag{
				Name:  "top",
				Usage: "Number of categories and brands to list",
				Value: 10,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the summary as JSON",
			},
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Serve the search HTTP API",
		Action: serveAction,
		Flags: []cli.Flag{
			catalogFlag(),
			&cli.IntFlag{
				Name:  "port",
				Usage: "Override http.port",
			},
		},
	}
}

func catalogPath(c *cli.Context, cfg *config.Config) string {
	if p := c.String("catalog"); p != "" {
		return p
	}
	return cfg.Paths.Catalog
}

func evaluateAction(c *cli.Context) error {
	st, err := stateFrom(c)
	if err != nil {
		return err
	}
	cfg := &st.cfg

	queriesPath := c.String("queries")
	if queriesPath == "" {
		queriesPath = cfg.Paths.Queries
	}
	reportPath := c.String("output")
	logDir, metricsPath := cfg.Paths.LogDir, cfg.Paths.Metrics
	if reportPath == "" {
		reportPath = cfg.Paths.Report
	} else {
		logDir = filepath.Join(filepath.Dir(reportPath), "logs")
		metricsPath = filepath.Join(logDir, "metrics.json")
	}
	workers := c.Int("workers")
	if workers <= 0 {
		workers = cfg.Evaluation.Workers
	}

	cases, err := dataset.LoadQueries(queriesPath)
	if err != nil {
		return err
	}
	var entries []domcat.Entry
	if cfg.Backend.Driver == config.DriverMemory {
		if entries, err = dataset.LoadCatalog(catalogPath(c, cfg)); err != nil {
			return err
		}
	}

	ctx, cancel := commandContext(c, st.logger)
	defer cancel()

	be, emb, err := openWithCatalog(ctx, cfg, st.logger, entries)
	if err != nil {
		return err
	}
	defer be.close()

	harness := evaluation.New(newSearchService(cfg, be, emb), workers)
	report, err := harness.Run(ctx, cases)
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}

	if err := dataset.SaveReport(reportPath, report.Rows); err != nil {
		return err
	}
	if err := dataset.SaveEvaluationLog(filepath.Join(logDir, dataset.EvaluationLogFile), report.Rows); err != nil {
		return err
	}
	if err := dataset.SaveMetrics(metricsPath, report.Metrics); err != nil {
		return err
	}

	m := report.Metrics
	fmt.Fprintf(c.App.Writer, "Coverage: %.2f%%\n", m.Coverage)
	fmt.Fprintf(c.App.Writer, "Avg Precision@3: %.2f%%\n", m.AvgPrecisionAt3)
	if m.Failed > 0 {
		fmt.Fprintf(c.App.Writer, "Failed queries: %d of %d\n", m.Failed, m.Total)
	}
	fmt.Fprintf(c.App.Writer, "Evaluation saved to %s\n", reportPath)
	return nil
}

func prefixAction(c *cli.Context) error {
	st, err := stateFrom(c)
	if err != nil {
		return err
	}
	if c.NArg() == 0 {
		return errors.New("at least one prefix is required")
	}

	path := catalogPath(c, &st.cfg)
	entries, err := dataset.LoadCatalog(path)
	if err != nil {
		return err
	}
	m := prefix.NewMatcher(dataset.Names(entries))
	st.logger.Debug("Prefix matcher ready", zap.String("catalog", path), zap.Int("names", m.Len()))

	for _, p := range c.Args().Slice() {
		matches := m.Match(p, c.Int("limit"))
		fmt.Fprintf(c.App.Writer, "%s (%d):\n", p, len(matches))
		for _, name := range matches {
			fmt.Fprintf(c.App.Writer, "  %s\n", name)
		}
	}
	return nil
}

func indexAction(c *cli.Context) error {
	st, err := stateFrom(c)
	if err != nil {
		return err
	}
	cfg := &st.cfg

	entries, err := dataset.LoadCatalog(catalogPath(c, cfg))
	if err != nil {
		return err
	}
	if cfg.Backend.Driver == config.DriverMemory {
		st.logger.Warn("Memory backend does not persist; the index is discarded on exit")
	}

	ctx, cancel := commandContext(c, st.logger)
	defer cancel()

	be, err := openBackend(ctx, cfg, st.logger)
	if err != nil {
		return err
	}
	defer be.close()
	emb := buildEmbedders(cfg, be.kv, st.logger)

	report, err := indexCatalog(ctx, cfg, be, emb, entries, c.Bool("recreate"))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Indexed %d products in %d batches (%s, %d embedding tokens)\n",
		report.Indexed, report.Batches, report.Duration.Round(time.Millisecond), report.Tokens)
	return nil
}

func summarizeAction(c *cli.Context) error {
	st, err := stateFrom(c)
	if err != nil {
		return err
	}

	path := catalogPath(c, &st.cfg)
	entries, err := dataset.LoadCatalog(path)
	if err != nil {
		return err
	}
	summary := domcat.Summarize(entries, c.Int("top"))

	if c.Bool("json") {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			return fmt.Errorf("encode summary: %w", err)
		}
		return nil
	}
	return dataset.WriteSummary(c.App.Writer, path, summary)
}

func serveAction(c *cli.Context) error {
	st, err := stateFrom(c)
	if err != nil {
		return err
	}
	cfg := &st.cfg
	logger := st.logger
	if p := c.Int("port"); p > 0 {
		cfg.HTTP.Port = p
	}

	// Catalog names feed /v1/prefix; the memory backend also needs the entries indexed.
	path := catalogPath(c, cfg)
	entries, err := dataset.LoadCatalog(path)
	switch {
	case errors.Is(err, domain.ErrInputNotFound) && cfg.Backend.Driver != config.DriverMemory:
		logger.Warn("Catalog not found, /v1/prefix will answer empty", zap.String("catalog", path))
	case err != nil:
		return err
	}

	ctx, cancel := commandContext(c, logger)
	defer cancel()

	var toIndex []domcat.Entry
	if cfg.Backend.Driver == config.DriverMemory {
		toIndex = entries
	}
	be, emb, err := openWithCatalog(ctx, cfg, logger, toIndex)
	if err != nil {
		return err
	}
	defer be.close()

	server := chiTransport.NewServer(
		newSearchService(cfg, be, emb),
		prefix.NewMatcher(dataset.Names(entries)),
		newHealthService(be, emb),
		logger,
	)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(cfg.Auth.APIKeys),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server",
			zap.String("addr", addr),
			zap.String("backend", be.name),
			zap.Int("catalog_names", len(entries)),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
	logger.Info("Server stopped gracefully")
	return nil
}

// openWithCatalog opens the backend and embedders and, when entries are given,
// indexes them first (the memory driver starts empty).
func openWithCatalog(
	ctx context.Context, cfg *config.Config, logger *zap.Logger, entries []domcat.Entry,
) (*backend, embedders, error) {
	be, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return nil, embedders{}, err
	}
	emb := buildEmbedders(cfg, be.kv, logger)

	if len(entries) > 0 {
		if _, err := indexCatalog(ctx, cfg, be, emb, entries, false); err != nil {
			be.close()
			return nil, embedders{}, err
		}
	}
	return be, emb, nil
}

func indexCatalog(
	ctx context.Context, cfg *config.Config, be *backend, emb embedders, entries []domcat.Entry, recreate bool,
) (catalogus.Report, error) {
	dims := 0
	if emb.document != nil {
		dims = cfg.Embedding.Dimensions
	}
	svc := catalogus.New(be.indexer, be.name, emb.document, dims).WithBatchSize(cfg.Embedding.BatchSize)
	report, err := svc.Index(ctx, entries, recreate)
	if err != nil {
		return report, fmt.Errorf("index catalog: %w", err)
	}
	return report, nil
}
