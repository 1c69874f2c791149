package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/benvon/review-memory/internal/models"
	"github.com/benvon/review-memory/internal/request"
	"github.com/benvon/review-memory/internal/review"
	"github.com/benvon/review-memory/internal/validation"
)

// ReviewService is the review orchestrator as seen by the HTTP layer
type ReviewService interface {
	Review(ctx context.Context, req review.Request) (*review.Result, error)
	History(ctx context.Context, userID string) (models.History, error)
	Stats(ctx context.Context, userID string) (models.UserStats, error)
	Clear(ctx context.Context, userID string) error
	SuggestFix(ctx context.Context, req review.FixRequest) (string, error)
	Explain(ctx context.Context, req review.ExplainRequest) (string, error)
	AnalyzeComplexity(ctx context.Context, req review.ComplexityRequest) (string, error)
}

// ReviewHandler handles review, history and assistant requests
type ReviewHandler struct {
	svc    ReviewService
	logger *zap.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(svc ReviewService, logger *zap.Logger) *ReviewHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReviewHandler{svc: svc, logger: logger}
}

// RegisterRoutes registers the review API on r, which should carry the /api prefix
func (h *ReviewHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/review", h.Review).Methods(http.MethodPost)
	r.HandleFunc("/review-with-mode", h.Review).Methods(http.MethodPost)
	r.HandleFunc("/history", h.History).Methods(http.MethodGet)
	r.HandleFunc("/stats", h.Stats).Methods(http.MethodGet)
	r.HandleFunc("/clear", h.Clear).Methods(http.MethodDelete)
	r.HandleFunc("/suggest-fix", h.SuggestFix).Methods(http.MethodPost)
	r.HandleFunc("/explain", h.Explain).Methods(http.MethodPost)
	r.HandleFunc("/complexity", h.Complexity).Methods(http.MethodPost)
}

// ReviewRequest is the body of POST /api/review and /api/review-with-mode
type ReviewRequest struct {
	Code     string `json:"code" validate:"required"`
	Language string `json:"language"`
	UserID   string `json:"userId" validate:"omitempty,max=256"`
	Mode     string `json:"mode" validate:"omitempty,review_mode"`
}

// FixRequest is the body of POST /api/suggest-fix
type FixRequest struct {
	Code     string `json:"code" validate:"required"`
	Language string `json:"language"`
	Issue    string `json:"issue" validate:"omitempty,max=2000"`
}

// ExplainRequest is the body of POST /api/explain
type ExplainRequest struct {
	Code     string `json:"code" validate:"required"`
	Language string `json:"language"`
	Question string `json:"question" validate:"omitempty,max=2000"`
}

// ComplexityRequest is the body of POST /api/complexity
type ComplexityRequest struct {
	Code     string `json:"code" validate:"required"`
	Language string `json:"language"`
}

// ClearResponse is returned after a history is erased
type ClearResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Review reviews the submitted code with the caller's history as context
func (h *ReviewHandler) Review(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	result, err := h.svc.Review(requestContext(r), review.Request{
		Code:     req.Code,
		Language: validation.SanitizeText(req.Language),
		UserID:   req.UserID,
		Mode:     req.Mode,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// History returns the retained reviews and statistics for ?userId=
func (h *ReviewHandler) History(w http.ResponseWriter, r *http.Request) {
	history, err := h.svc.History(requestContext(r), request.UserID(r))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, history)
}

// Stats returns the statistics for ?userId=
func (h *ReviewHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(requestContext(r), request.UserID(r))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// Clear erases the history for ?userId=
func (h *ReviewHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Clear(requestContext(r), request.UserID(r)); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, ClearResponse{Success: true, Message: "History cleared"})
}

// SuggestFix returns a corrected version of the code
func (h *ReviewHandler) SuggestFix(w http.ResponseWriter, r *http.Request) {
	var req FixRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	req.Language = validation.SanitizeText(req.Language)
	suggestion, err := h.svc.SuggestFix(requestContext(r), review.FixRequest(req))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"suggestion": suggestion})
}

// Explain answers a question about the code
func (h *ReviewHandler) Explain(w http.ResponseWriter, r *http.Request) {
	var req ExplainRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	req.Language = validation.SanitizeText(req.Language)
	explanation, err := h.svc.Explain(requestContext(r), review.ExplainRequest(req))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"explanation": explanation})
}

// Complexity returns complexity metrics for the code
func (h *ReviewHandler) Complexity(w http.ResponseWriter, r *http.Request) {
	var req ComplexityRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	req.Language = validation.SanitizeText(req.Language)
	analysis, err := h.svc.AnalyzeComplexity(requestContext(r), review.ComplexityRequest(req))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"analysis": analysis})
}
