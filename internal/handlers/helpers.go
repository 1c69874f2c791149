package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/benvon/review-memory/internal/ledger"
	logpkg "github.com/benvon/review-memory/internal/logger"
	"github.com/benvon/review-memory/internal/middleware"
	"github.com/benvon/review-memory/internal/request"
	"github.com/benvon/review-memory/internal/review"
	"github.com/benvon/review-memory/internal/services/ai"
	"github.com/benvon/review-memory/internal/validation"
)

// respondJSON sends data as the JSON body, unwrapped
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	// headers are already sent, an encode failure cannot be reported
	_ = json.NewEncoder(w).Encode(data)
}

// respondJSONError sends the error envelope
func respondJSONError(w http.ResponseWriter, status int, code, message string) {
	middleware.WriteError(w, status, code, message)
}

// errBadBody carries a status and message for a body that could not be decoded
type errBadBody struct {
	status  int
	code    string
	message string
}

func (e *errBadBody) Error() string { return e.message }

// decodeBody decodes and validates a JSON request body into dst
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return &errBadBody{http.StatusRequestEntityTooLarge, middleware.CodeRequestTooLarge,
				fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit)}
		case errors.Is(err, io.EOF):
			return &errBadBody{http.StatusBadRequest, middleware.CodeBadRequest, "request body is required"}
		default:
			return &errBadBody{http.StatusBadRequest, middleware.CodeBadRequest, "invalid JSON body"}
		}
	}
	if err := validation.Struct(dst); err != nil {
		return &errBadBody{http.StatusBadRequest, middleware.CodeValidation, err.Error()}
	}
	return nil
}

// requestContext tags the request context with the request id for provider logging
func requestContext(r *http.Request) context.Context {
	ctx := r.Context()
	if id := request.RequestIDFromContext(ctx); id != "" {
		ctx = ai.WithRequestID(ctx, id)
	}
	return ctx
}

// respondError maps a service or decode error onto a status and the error envelope.
// Storage and provider internals are logged, never returned.
func respondError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	var (
		badBody    *errBadBody
		validErr   *review.ValidationError
		upstream   *review.UpstreamError
		status     = http.StatusInternalServerError
		code       = middleware.CodeInternal
		message    = "Internal server error"
		retryAfter int
	)

	switch {
	case errors.As(err, &badBody):
		respondJSONError(w, badBody.status, badBody.code, badBody.message)
		return
	case errors.As(err, &validErr):
		respondJSONError(w, http.StatusBadRequest, middleware.CodeValidation, validErr.Message)
		return
	case errors.Is(err, ledger.ErrStorageWrite):
		code, message = middleware.CodeStorage, ledger.ErrStorageWrite.Error()
	case errors.Is(err, ledger.ErrStorageRead):
		code, message = middleware.CodeStorage, ledger.ErrStorageRead.Error()
	case errors.As(err, &upstream):
		switch {
		case errors.Is(err, ai.ErrNotConfigured):
			status, code, message = http.StatusServiceUnavailable, middleware.CodeUpstreamNotEnabled, "review service is not configured"
		case ai.IsRateLimitError(err):
			status, code, message = http.StatusServiceUnavailable, middleware.CodeUpstreamRateLimit, "review service is busy, retry later"
			retryAfter = int(ai.RetryAfter(err).Seconds())
		default:
			code, message = middleware.CodeUpstream, "review service unavailable"
			if ai.IsQuotaError(err) {
				logger.Warn("upstream_quota_exhausted",
					zap.String("request_id", request.RequestIDFromContext(r.Context())))
			}
		}
	}

	logger.Error("request_failed",
		zap.String("path", logpkg.SanitizePath(r.URL.Path)),
		zap.String("request_id", request.RequestIDFromContext(r.Context())),
		zap.String("code", code),
		zap.String("error", logpkg.SanitizeError(err)),
	)

	if retryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	}
	respondJSONError(w, status, code, message)
}
