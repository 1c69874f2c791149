package review

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/benvon/review-memory/internal/models"
	"github.com/benvon/review-memory/internal/services/ai"
)

// FixRequest asks for a corrected version of Code that addresses Issue
type FixRequest struct {
	Code     string
	Language string
	Issue    string
}

// ExplainRequest asks a question about Code
type ExplainRequest struct {
	Code     string
	Language string
	Question string
}

// ComplexityRequest asks for complexity metrics of Code
type ComplexityRequest struct {
	Code     string
	Language string
}

// SuggestFix returns a corrected version of the code with an explanation.
// Assistant operations never touch a ledger.
func (s *Service) SuggestFix(ctx context.Context, req FixRequest) (string, error) {
	language := languageOrDefault(req.Language)
	return s.assist(ctx, "suggest_fix", req.Code, language,
		ai.SuggestFixSystemPrompt, ai.SuggestFixPrompt(req.Code, language, req.Issue))
}

// Explain answers a question about the code
func (s *Service) Explain(ctx context.Context, req ExplainRequest) (string, error) {
	language := languageOrDefault(req.Language)
	return s.assist(ctx, "explain", req.Code, language,
		ai.ExplainSystemPrompt, ai.ExplainPrompt(req.Code, language, req.Question))
}

// AnalyzeComplexity returns complexity metrics for the code
func (s *Service) AnalyzeComplexity(ctx context.Context, req ComplexityRequest) (string, error) {
	language := languageOrDefault(req.Language)
	return s.assist(ctx, "complexity", req.Code, language,
		ai.ComplexitySystemPrompt, ai.ComplexityPrompt(req.Code, language))
}

func (s *Service) assist(ctx context.Context, operation, code, language, systemPrompt, userPrompt string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "review."+operation, trace.WithAttributes(
		attribute.String("review.language", language),
		attribute.Int("review.code_length", len(code)),
	))
	defer span.End()

	if code == "" {
		return "", s.fail(span, &ValidationError{Field: "code", Message: "code is required"})
	}

	text, err := s.complete(ctx, operation, "", systemPrompt, userPrompt, ai.AssistMaxTokens)
	if err != nil {
		s.logFailure(operation, "", err)
		return "", s.fail(span, err)
	}
	return text, nil
}

func languageOrDefault(language string) string {
	if language == "" {
		return models.DefaultLanguage
	}
	return language
}
