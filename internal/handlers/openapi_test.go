package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/benvon/review-memory/api/openapi"
)

func TestOpenAPIHandler(t *testing.T) {
	t.Parallel()

	h, err := NewOpenAPIHandler(openapi.Document)
	if err != nil {
		t.Fatalf("NewOpenAPIHandler() error = %v", err)
	}
	r := mux.NewRouter()
	h.RegisterRoutes(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/openapi.yaml", nil))
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "application/x-yaml" {
		t.Errorf("yaml: got %d %q", w.Code, w.Header().Get("Content-Type"))
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/openapi.json", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("json: got %d", w.Code)
	}
	var doc map[string]any
	if err := json.NewDecoder(w.Body).Decode(&doc); err != nil {
		t.Fatalf("Failed to decode JSON document: %v", err)
	}
	paths, ok := doc["paths"].(map[string]any)
	if !ok {
		t.Fatal("Expected paths object")
	}
	for _, p := range []string{"/api/review", "/api/review-with-mode", "/api/history", "/api/stats", "/api/clear", "/api/suggest-fix", "/api/explain", "/api/complexity"} {
		if _, ok := paths[p]; !ok {
			t.Errorf("Expected path %s in document", p)
		}
	}
}

func TestOpenAPIHandler_Malformed(t *testing.T) {
	t.Parallel()

	if _, err := NewOpenAPIHandler([]byte("openapi: [unterminated")); err == nil {
		t.Error("Expected error for malformed document")
	}
}
