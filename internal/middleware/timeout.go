package middleware

import (
	"encoding/json"
	"net/http"
	"time"
)

const (
	// DefaultRequestTimeout must stay above the completion timeout so provider timeouts surface as their own error
	DefaultRequestTimeout = 90 * time.Second
)

// Timeout creates a middleware that enforces a timeout on request handlers
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := json.Marshal(NewErrorResponse(CodeTimeout, "Request Timeout"))

			// kept only if the handler times out; its own headers replace it otherwise
			w.Header().Set("Content-Type", "application/json")

			http.TimeoutHandler(next, timeout, string(body)).ServeHTTP(w, r)
		})
	}
}
