package health

import (
	"context"

	"github.com/kailas-cloud/mindvault/internal/domain"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the service answers with fallbacks.
	Degraded Status = "degraded"
	// Unhealthy indicates the store is down; nothing can be served.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckFallback indicates the component runs on its deterministic fallback.
	CheckFallback CheckResult = "fallback"
	// CheckDisabled indicates the component is not configured.
	CheckDisabled CheckResult = "disabled"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db        DBPinger
	embedding EmbeddingStatus
	oracle    OracleStatus
}

// New creates a Service. embedding and oracle can be nil.
func New(db DBPinger, embedding EmbeddingStatus, oracle OracleStatus) *Service {
	return &Service{db: db, embedding: embedding, oracle: oracle}
}

// Check runs health checks against all components. A store failure is
// unhealthy; fallbacks only degrade. A disabled oracle is not a degradation.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
	} else {
		checks["database"] = CheckOK
	}

	if s.embedding != nil {
		if s.embedding.Mode() == domain.EmbeddingModeModel {
			checks["embedding"] = CheckOK
		} else {
			checks["embedding"] = CheckFallback
		}
	}

	if s.oracle != nil {
		switch {
		case !s.oracle.Enabled():
			checks["oracle"] = CheckDisabled
		case s.oracle.Available():
			checks["oracle"] = CheckOK
		default:
			checks["oracle"] = CheckFallback
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckFallback {
			status = Degraded
		}
	}
	if checks["database"] == CheckError {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks}
}
