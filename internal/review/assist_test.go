package review

import (
	"context"
	"errors"
	"testing"

	"github.com/benvon/review-memory/internal/services/ai"
)

func TestService_AssistOperations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		run        func(svc *Service) (string, error)
		wantSystem string
		wantUser   string
		wantOp     string
	}{
		{
			name: "suggest fix",
			run: func(svc *Service) (string, error) {
				return svc.SuggestFix(context.Background(), FixRequest{Code: "a", Language: "go", Issue: "nil deref"})
			},
			wantSystem: ai.SuggestFixSystemPrompt,
			wantUser:   ai.SuggestFixPrompt("a", "go", "nil deref"),
			wantOp:     "suggest_fix",
		},
		{
			name: "explain",
			run: func(svc *Service) (string, error) {
				return svc.Explain(context.Background(), ExplainRequest{Code: "a", Question: "why?"})
			},
			wantSystem: ai.ExplainSystemPrompt,
			wantUser:   ai.ExplainPrompt("a", "unknown", "why?"),
			wantOp:     "explain",
		},
		{
			name: "complexity",
			run: func(svc *Service) (string, error) {
				return svc.AnalyzeComplexity(context.Background(), ComplexityRequest{Code: "a", Language: "rust"})
			},
			wantSystem: ai.ComplexitySystemPrompt,
			wantUser:   ai.ComplexityPrompt("a", "rust"),
			wantOp:     "complexity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			completer := &mockCompleter{}
			svc, router := newTestService(completer)

			got, err := tt.run(svc)
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if got != "Looks fine." {
				t.Errorf("Expected completion text, got %q", got)
			}

			call := completer.lastCall(t)
			if call.systemPrompt != tt.wantSystem {
				t.Errorf("Unexpected system prompt %q", call.systemPrompt)
			}
			if call.userPrompt != tt.wantUser {
				t.Errorf("Unexpected user prompt %q", call.userPrompt)
			}
			if call.maxTokens != ai.AssistMaxTokens {
				t.Errorf("Expected max tokens %d, got %d", ai.AssistMaxTokens, call.maxTokens)
			}
			if call.operation != tt.wantOp {
				t.Errorf("Expected operation %q, got %q", tt.wantOp, call.operation)
			}
			if keys := router.Keys(); len(keys) != 0 {
				t.Errorf("Expected no ledger to be touched, got %v", keys)
			}
		})
	}
}

func TestService_AssistRequiresCode(t *testing.T) {
	t.Parallel()

	completer := &mockCompleter{}
	svc, _ := newTestService(completer)

	_, err := svc.SuggestFix(context.Background(), FixRequest{Issue: "x"})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if completer.callCount() != 0 {
		t.Error("Expected no completion call")
	}
}

func TestService_AssistUpstreamFailure(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(&mockCompleter{
		completeFunc: func(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
			return "", &ai.APIError{StatusCode: 429, Message: "slow down"}
		},
	})

	_, err := svc.Explain(context.Background(), ExplainRequest{Code: "a"})
	var uErr *UpstreamError
	if !errors.As(err, &uErr) || uErr.Operation != "explain" {
		t.Fatalf("Expected UpstreamError for explain, got %v", err)
	}
	if !ai.IsRateLimitError(err) {
		t.Error("Expected rate limit classification to survive wrapping")
	}
}
