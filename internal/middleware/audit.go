package middleware

import (
	"net/http"

	"go.uber.org/zap"

	logpkg "github.com/benvon/review-memory/internal/logger"
	"github.com/benvon/review-memory/internal/request"
)

// Audit logs abuse-related events: throttled clients, oversized bodies and destructive calls
func Audit(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			base := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", logpkg.SanitizePath(r.URL.Path)),
				zap.String("ip", logpkg.SanitizeString(request.ClientIP(r), logpkg.MaxGeneralStringLength)),
				zap.String("request_id", request.RequestIDFromContext(r.Context())),
			}

			switch statusCode := wrapped.statusCode; {
			case statusCode == http.StatusTooManyRequests:
				logger.Warn("rate_limit_violation", base...)
			case statusCode == http.StatusRequestEntityTooLarge:
				logger.Warn("oversized_request_rejected", base...)
			case r.Method == http.MethodDelete && statusCode < http.StatusBadRequest:
				logger.Info("history_erased", append(base,
					zap.String("user_id", logpkg.SanitizeUserID(request.UserID(r))))...)
			}
		})
	}
}
