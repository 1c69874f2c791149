package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"
)

const healthCheckTimeout = 5 * time.Second

// CheckFunc reports the health of one dependency
type CheckFunc func(ctx context.Context) error

// HealthChecker handles health check requests
type HealthChecker struct {
	checks     map[string]CheckFunc
	partitions func() int
}

// NewHealthChecker creates a health checker. checks are only run in extended mode;
// partitions, when non-nil, reports how many partitions this instance has resolved.
func NewHealthChecker(checks map[string]CheckFunc, partitions func() int) *HealthChecker {
	return &HealthChecker{checks: checks, partitions: partitions}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string            `json:"status"`
	Timestamp  string            `json:"timestamp"`
	Checks     map[string]string `json:"checks,omitempty"`
	Partitions *int              `json:"partitions,omitempty"`
}

// Liveness handles /health. It never touches dependencies.
func (h *HealthChecker) Liveness(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheck handles /healthz; ?mode=extended also probes every registered dependency
func (h *HealthChecker) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("mode") != "extended" {
		h.Liveness(w, r)
		return
	}

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    make(map[string]string, len(h.checks)),
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			response.Status = "unhealthy"
			response.Checks[name] = "unhealthy: " + err.Error()
			continue
		}
		response.Checks[name] = "healthy"
	}

	if h.partitions != nil {
		n := h.partitions()
		response.Partitions = &n
	}

	status := http.StatusOK
	if response.Status == "unhealthy" {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, response)
}
