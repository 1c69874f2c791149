package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthChecker(t *testing.T) {
	t.Parallel()

	healthy := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name           string
		path           string
		checks         map[string]CheckFunc
		wantStatus     int
		wantBody       string
		wantChecks     map[string]string
		wantPartitions bool
	}{
		{
			name:       "basic mode skips checks",
			path:       "/healthz",
			checks:     map[string]CheckFunc{"storage": down},
			wantStatus: http.StatusOK,
			wantBody:   "healthy",
		},
		{
			name:           "extended mode all healthy",
			path:           "/healthz?mode=extended",
			checks:         map[string]CheckFunc{"storage": healthy, "events": healthy},
			wantStatus:     http.StatusOK,
			wantBody:       "healthy",
			wantChecks:     map[string]string{"storage": "healthy", "events": "healthy"},
			wantPartitions: true,
		},
		{
			name:           "extended mode dependency down",
			path:           "/healthz?mode=extended",
			checks:         map[string]CheckFunc{"storage": down, "events": healthy},
			wantStatus:     http.StatusServiceUnavailable,
			wantBody:       "unhealthy",
			wantChecks:     map[string]string{"storage": "unhealthy: connection refused", "events": "healthy"},
			wantPartitions: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := NewHealthChecker(tt.checks, func() int { return 3 })
			w := httptest.NewRecorder()
			h.HealthCheck(w, httptest.NewRequest("GET", tt.path, nil))

			if w.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}

			var resp HealthResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if resp.Status != tt.wantBody {
				t.Errorf("Expected status %q, got %q", tt.wantBody, resp.Status)
			}
			if resp.Timestamp == "" {
				t.Error("Expected timestamp")
			}
			if len(resp.Checks) != len(tt.wantChecks) {
				t.Errorf("Expected checks %v, got %v", tt.wantChecks, resp.Checks)
			}
			for name, want := range tt.wantChecks {
				if resp.Checks[name] != want {
					t.Errorf("check %s = %q, want %q", name, resp.Checks[name], want)
				}
			}
			if tt.wantPartitions && (resp.Partitions == nil || *resp.Partitions != 3) {
				t.Errorf("Expected partitions 3, got %v", resp.Partitions)
			}
			if !tt.wantPartitions && resp.Partitions != nil {
				t.Error("Expected no partition count in basic mode")
			}
		})
	}
}

func TestLiveness(t *testing.T) {
	t.Parallel()

	h := NewHealthChecker(nil, nil)
	w := httptest.NewRecorder()
	h.Liveness(w, httptest.NewRequest("GET", "/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
}

func TestVersionHandler(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	VersionHandler("1.2.3", "abc123", "2026-01-01")(w, httptest.NewRequest("GET", "/version", nil))

	var info BuildInfo
	if err := json.NewDecoder(w.Body).Decode(&info); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if info.Version != "1.2.3" || info.Commit != "abc123" || info.GoVersion == "" {
		t.Errorf("Unexpected build info %+v", info)
	}
}
