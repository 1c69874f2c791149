package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/benvon/review-memory/internal/request"
)

// RequestID reuses a well-formed inbound X-Request-ID or mints a new one,
// stores it on the request context and echoes it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := request.InboundRequestID(r)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(request.RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(request.WithRequestID(r.Context(), id)))
	})
}
