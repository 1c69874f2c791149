package middleware

import (
	"net/http"
	"slices"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/benvon/review-memory/internal/request"
)

// CORS wraps rs/cors with the configured origins. A "*" origin allows any site
// but then credentials are never allowed.
func CORS(allowedOrigins []string, logger *zap.Logger) func(http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	wildcard := slices.Contains(allowedOrigins, "*")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: !wildcard,
		MaxAge:           86400,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", request.RequestIDHeader},
		ExposedHeaders:   []string{request.RequestIDHeader, "Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
	})

	logger.Info("cors_configured",
		zap.Strings("allowed_origins", allowedOrigins),
		zap.Bool("allow_credentials", !wildcard),
	)

	return c.Handler
}
