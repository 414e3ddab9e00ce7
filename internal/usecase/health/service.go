package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates the search backend is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckEmpty indicates a reachable index without entries.
	CheckEmpty CheckResult = "empty"
)

// Report aggregates health check results.
type Report struct {
	Status  Status                 `json:"status"`
	Checks  map[string]CheckResult `json:"checks"`
	Entries int                    `json:"entries"`
}

// Service coordinates health checks.
type Service struct {
	backend   BackendPinger
	embedding EmbeddingChecker
	catalog   CatalogCounter
}

// New creates a Service. Any checker can be nil (in-process backend, no embedder).
func New(backend BackendPinger, embedding EmbeddingChecker, catalog CatalogCounter) *Service {
	return &Service{backend: backend, embedding: embedding, catalog: catalog}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	var r Report

	if s.backend != nil {
		if err := s.backend.Ping(ctx); err != nil {
			checks["backend"] = CheckError
		} else {
			checks["backend"] = CheckOK
		}
	}

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			checks["embedding"] = CheckError
		} else {
			checks["embedding"] = CheckOK
		}
	}

	if s.catalog != nil {
		n, err := s.catalog.Count(ctx)
		switch {
		case err != nil:
			checks["catalog"] = CheckError
		case n == 0:
			checks["catalog"] = CheckEmpty
		default:
			checks["catalog"] = CheckOK
		}
		r.Entries = n
	}

	r.Status = Healthy
	for _, v := range checks {
		if v != CheckOK {
			r.Status = Degraded
			break
		}
	}
	if checks["backend"] == CheckError {
		r.Status = Unhealthy
	}

	r.Checks = checks
	return r
}
