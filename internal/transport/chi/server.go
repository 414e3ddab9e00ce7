// Package chi serves the search HTTP API on a chi router.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/prefixsearch/internal/domain"
	"github.com/kailas-cloud/prefixsearch/internal/domain/judgement"
	"github.com/kailas-cloud/prefixsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/prefixsearch/internal/domain/search/result"
	"github.com/kailas-cloud/prefixsearch/internal/metrics"
	healthuc "github.com/kailas-cloud/prefixsearch/internal/usecase/health"
	"github.com/kailas-cloud/prefixsearch/internal/usecase/prefix"
	searchuc "github.com/kailas-cloud/prefixsearch/internal/usecase/search"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeBadRequest      = "bad_request"
	CodeUnauthorized    = "unauthorized"
	CodeInvalidQuery    = "invalid_query"
	CodeIndexNotFound   = "index_not_found"
	CodeVectorDim       = "vector_dim_mismatch"
	CodeEmbeddingFailed = "embedding_provider_error"
	CodeBackendFailed   = "backend_error"
	CodeInternalError   = "internal_error"
)

const (
	defaultPrefixLimit = 20
	maxPrefixLimit     = 200
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SearchResponse is the body of GET /v1/search.
type SearchResponse struct {
	Query     string          `json:"query"`
	Text      string          `json:"text"`
	Filter    *filter.Numeric `json:"filter,omitempty"`
	Items     []result.Hit    `json:"items"`
	Total     int             `json:"total"`
	Judgement judgement.Label `json:"judgement"`
	LatencyMs float64         `json:"latency_ms"`
}

// PrefixResponse is the body of GET /v1/prefix.
type PrefixResponse struct {
	Prefix string   `json:"prefix"`
	Items  []string `json:"items"`
	Total  int      `json:"total"`
}

// Searcher runs the hybrid search pipeline.
type Searcher interface {
	Search(ctx context.Context, raw string) (searchuc.Outcome, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers.
type Server struct {
	search        Searcher
	prefix        *prefix.Matcher
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. matcher may be nil when no catalog
// names are loaded; /v1/prefix then answers with an empty list.
func NewServer(search Searcher, matcher *prefix.Matcher, health HealthChecker, logger *zap.Logger) *Server {
	if matcher == nil {
		matcher = prefix.NewMatcher(nil)
	}
	s := &Server{
		search: search,
		prefix: matcher,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, CodeInvalidQuery),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadGateway, CodeVectorDim),
		sentinelHandler(domain.ErrIndexNotFound, http.StatusServiceUnavailable, CodeIndexNotFound),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeEmbeddingFailed),
		sentinelHandler(domain.ErrBackend, http.StatusBadGateway, CodeBackendFailed),
	}
	return s
}

// Router mounts the API routes with recovery, request ID, logging, metrics and auth.
func (s *Server) Router(apiKeys []string) http.Handler {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())

	r.Get("/v1/search", s.Search)
	r.Get("/v1/prefix", s.Prefix)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeBadRequest, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})
	return r
}

// Search handles GET /v1/search?q=&limit=.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("q")
	if strings.TrimSpace(raw) == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "query parameter q is required")
		return
	}
	limit, ok := parseLimit(w, r, 0, 0)
	if !ok {
		return
	}

	out, err := s.search.Search(r.Context(), raw)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	hits := out.Hits
	if hits == nil {
		hits = []result.Hit{}
	}
	label := judgement.Classify(result.TopScore(hits))
	metrics.JudgementsTotal.WithLabelValues(string(label)).Inc()
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}

	if out.EmbedTokens > 0 {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(out.EmbedTokens))
	}
	writeJSON(w, http.StatusOK, SearchResponse{
		Query:     raw,
		Text:      out.Query.Text,
		Filter:    out.Query.Filter,
		Items:     hits,
		Total:     len(hits),
		Judgement: label,
		LatencyMs: out.LatencyMs(),
	})
}

// Prefix handles GET /v1/prefix?q=&limit=.
func (s *Server) Prefix(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	limit, ok := parseLimit(w, r, defaultPrefixLimit, maxPrefixLimit)
	if !ok {
		return
	}

	metrics.PrefixMatchesTotal.Inc()
	items := s.prefix.Match(q, limit)
	writeJSON(w, http.StatusOK, PrefixResponse{Prefix: q, Items: items, Total: len(items)})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, report)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// parseLimit reads ?limit=. Absent means def; max > 0 caps the value.
func parseLimit(w http.ResponseWriter, r *http.Request, def, maxLimit int) (int, bool) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "limit must be a positive integer")
		return 0, false
	}
	if maxLimit > 0 && n > maxLimit {
		n = maxLimit
	}
	return n, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidQuery,
		domain.ErrVectorDimMismatch,
		domain.ErrIndexNotFound,
		domain.ErrEmbeddingProviderError,
		domain.ErrBackend,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
