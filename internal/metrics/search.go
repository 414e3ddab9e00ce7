package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Total number of backend search requests",
		},
		[]string{"backend", "status"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Backend search latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"backend"},
	)

	SearchHits = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_hits",
			Help:      "Number of hits returned per search",
			Buckets:   []float64{0, 1, 3, 5, 10, 20, 50},
		},
		[]string{"backend"},
	)

	JudgementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "judgements_total",
			Help:      "Top-1 relevance judgements by label",
		},
		[]string{"label"},
	)

	CatalogEntriesIndexed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_entries_indexed_total",
			Help:      "Total number of catalog entries written to a backend",
		},
		[]string{"backend"},
	)

	PrefixMatchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prefix_requests_total",
			Help:      "Total number of offline prefix match requests",
		},
	)
)

var searchMetrics = group{collectors: []prometheus.Collector{
	SearchRequestsTotal,
	SearchDuration,
	SearchHits,
	JudgementsTotal,
	CatalogEntriesIndexed,
	PrefixMatchesTotal,
}}

// RegisterSearchMetrics registers the search, indexing and judgement collectors. Safe to call repeatedly.
func RegisterSearchMetrics() { searchMetrics.register() }
