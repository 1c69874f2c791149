package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogging(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		method        string
		path          string
		handlerStatus int
		wantLevel     zapcore.Level
		wantUser      string
	}{
		{
			name:          "GET request",
			method:        "GET",
			path:          "/api/history?userId=alice",
			handlerStatus: http.StatusOK,
			wantLevel:     zapcore.InfoLevel,
			wantUser:      "alice",
		},
		{
			name:          "POST request",
			method:        "POST",
			path:          "/api/review",
			handlerStatus: http.StatusOK,
			wantLevel:     zapcore.InfoLevel,
		},
		{
			name:          "404 request",
			method:        "GET",
			path:          "/notfound",
			handlerStatus: http.StatusNotFound,
			wantLevel:     zapcore.InfoLevel,
		},
		{
			name:          "server error",
			method:        "POST",
			path:          "/api/review",
			handlerStatus: http.StatusInternalServerError,
			wantLevel:     zapcore.WarnLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			core, logs := observer.New(zapcore.DebugLevel)
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.handlerStatus)
			})

			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()

			RequestID(Logging(zap.New(core))(handler)).ServeHTTP(w, req)

			if w.Code != tt.handlerStatus {
				t.Errorf("Expected status %d, got %d", tt.handlerStatus, w.Code)
			}

			entries := logs.FilterMessage("http_request").All()
			if len(entries) != 1 {
				t.Fatalf("Expected one http_request entry, got %d", len(entries))
			}
			entry := entries[0]
			if entry.Level != tt.wantLevel {
				t.Errorf("Expected level %s, got %s", tt.wantLevel, entry.Level)
			}
			fields := entry.ContextMap()
			if fields["status_code"] != int64(tt.handlerStatus) {
				t.Errorf("Expected status_code %d, got %v", tt.handlerStatus, fields["status_code"])
			}
			if id, _ := fields["request_id"].(string); id == "" || id != w.Header().Get("X-Request-ID") {
				t.Errorf("Expected request_id to match response header, got %v", fields["request_id"])
			}
			if tt.wantUser != "" && fields["user_id"] != tt.wantUser {
				t.Errorf("Expected user_id %q, got %v", tt.wantUser, fields["user_id"])
			}
		})
	}
}

func TestLoggingResponseWriter(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	_, _ = rw.Write([]byte("body"))
	rw.WriteHeader(http.StatusTeapot)

	if rw.statusCode != http.StatusOK {
		t.Errorf("Expected implicit 200 to stick after Write, got %d", rw.statusCode)
	}
	if rw.Unwrap() != rec {
		t.Error("Expected Unwrap to return the wrapped writer")
	}
}
