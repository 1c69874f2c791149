package review

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/benvon/review-memory/internal/events"
	"github.com/benvon/review-memory/internal/ledger"
	"github.com/benvon/review-memory/internal/logger"
	"github.com/benvon/review-memory/internal/models"
	"github.com/benvon/review-memory/internal/services/ai"
)

const (
	// DefaultCompletionTimeout bounds one call to the completion provider
	DefaultCompletionTimeout = 60 * time.Second
	// DefaultPublishTimeout bounds best-effort event delivery
	DefaultPublishTimeout = 2 * time.Second

	tracerName = "github.com/benvon/review-memory/internal/review"
)

// Request is one review submission
type Request struct {
	Code     string
	Language string
	UserID   string
	Mode     string
}

// Result is what a caller gets back from Review. Review holds the provider text without the mode tag.
type Result struct {
	Review string            `json:"review"`
	Mode   models.ReviewMode `json:"mode"`
	Stats  models.UserStats  `json:"stats"`
}

// Service coordinates the ledger, the completion provider and event publication
type Service struct {
	router            *ledger.Router
	completer         ai.Completer
	publisher         events.Publisher
	logger            *zap.Logger
	tracer            trace.Tracer
	completionTimeout time.Duration
	publishTimeout    time.Duration
}

// Option configures a Service
type Option func(*Service)

// WithPublisher sets the event publisher
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCompletionTimeout bounds each completion call
func WithCompletionTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.completionTimeout = d
		}
	}
}

// WithTracer overrides the tracer taken from the global provider
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// NewService creates a review service
func NewService(router *ledger.Router, completer ai.Completer, opts ...Option) *Service {
	s := &Service{
		router:            router,
		completer:         completer,
		publisher:         events.NoopPublisher{},
		logger:            zap.NewNop(),
		tracer:            otel.Tracer(tracerName),
		completionTimeout: DefaultCompletionTimeout,
		publishTimeout:    DefaultPublishTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Review runs one code review with the user's history as context and records the outcome.
// Nothing is recorded when the completion fails.
func (s *Service) Review(ctx context.Context, req Request) (*Result, error) {
	partition := ledger.PartitionKey(req.UserID)
	ctx, span := s.tracer.Start(ctx, "review.Review", trace.WithAttributes(
		attribute.String("review.partition", partition),
		attribute.String("review.mode", req.Mode),
		attribute.String("review.language", req.Language),
		attribute.Int("review.code_length", len(req.Code)),
	))
	defer span.End()

	if req.Code == "" {
		return nil, s.fail(span, &ValidationError{Field: "code", Message: "code is required"})
	}
	mode, err := models.ParseReviewMode(req.Mode)
	if err != nil {
		return nil, s.fail(span, &ValidationError{Field: "mode", Message: err.Error()})
	}
	language := req.Language
	if language == "" {
		language = models.DefaultLanguage
	}

	l := s.router.Resolve(req.UserID)
	history, err := l.Read(ctx)
	if err != nil {
		s.logFailure("review", partition, err)
		return nil, s.fail(span, err)
	}

	text, err := s.complete(ctx, "review", partition,
		ai.ReviewSystemPrompt(mode, BuildUserContext(history)),
		ai.ReviewUserPrompt(req.Code, language),
		ai.ReviewMaxTokens)
	if err != nil {
		s.logFailure("review", partition, err)
		return nil, s.fail(span, err)
	}

	record, stats, err := l.AppendRecord(ctx, models.AppendInput{
		Code:     req.Code,
		Language: language,
		Review:   TagReview(mode, text),
		Mode:     mode,
	})
	if err != nil {
		s.logFailure("review", partition, err)
		return nil, s.fail(span, err)
	}

	s.logger.Debug("review_recorded",
		zap.String("partition", logger.SanitizeUserID(partition)),
		zap.String("review_id", record.ID),
		zap.String("mode", string(mode)),
		zap.Int("issues", record.Issues),
		zap.Int("suggestions", record.Suggestions),
		zap.String("review_text", logger.SanitizeDebugContent(text)))

	span.SetAttributes(
		attribute.String("review.id", record.ID),
		attribute.Int("review.total_reviews", stats.TotalReviews),
	)
	s.publish(ctx, events.NewReviewCompleted(partition, record, stats))

	return &Result{Review: text, Mode: mode, Stats: stats}, nil
}

// History returns the retained reviews and statistics for userID
func (s *Service) History(ctx context.Context, userID string) (models.History, error) {
	partition := ledger.PartitionKey(userID)
	ctx, span := s.tracer.Start(ctx, "review.History", trace.WithAttributes(
		attribute.String("review.partition", partition),
	))
	defer span.End()

	history, err := s.router.Resolve(userID).Read(ctx)
	if err != nil {
		s.logFailure("history", partition, err)
		return models.History{}, s.fail(span, err)
	}
	return history, nil
}

// Stats returns only the statistics for userID
func (s *Service) Stats(ctx context.Context, userID string) (models.UserStats, error) {
	partition := ledger.PartitionKey(userID)
	ctx, span := s.tracer.Start(ctx, "review.Stats", trace.WithAttributes(
		attribute.String("review.partition", partition),
	))
	defer span.End()

	history, err := s.router.Resolve(userID).Read(ctx)
	if err != nil {
		s.logFailure("stats", partition, err)
		return models.UserStats{}, s.fail(span, err)
	}
	return history.Stats, nil
}

// Clear erases the history and statistics for userID
func (s *Service) Clear(ctx context.Context, userID string) error {
	partition := ledger.PartitionKey(userID)
	ctx, span := s.tracer.Start(ctx, "review.Clear", trace.WithAttributes(
		attribute.String("review.partition", partition),
	))
	defer span.End()

	if err := s.router.Resolve(userID).Clear(ctx); err != nil {
		s.logFailure("clear", partition, err)
		return s.fail(span, err)
	}
	s.publish(ctx, events.NewHistoryCleared(partition))
	return nil
}

// complete calls the provider under the completion timeout and wraps failures as UpstreamError
func (s *Service) complete(ctx context.Context, operation, partition, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, s.completionTimeout)
	defer cancel()

	cctx = ai.WithOperation(cctx, operation)
	if partition != "" {
		cctx = ai.WithPartition(cctx, partition)
	}

	text, err := s.completer.Complete(cctx, systemPrompt, userPrompt, maxTokens)
	if err != nil {
		return "", &UpstreamError{Operation: operation, Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return "", &UpstreamError{Operation: operation, Err: ai.ErrEmptyCompletion}
	}
	return text, nil
}

func (s *Service) publish(ctx context.Context, event *events.Event) {
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(pctx, event); err != nil {
		s.logger.Warn("event_publish_failed",
			zap.String("event_type", string(event.Type)),
			zap.String("partition", logger.SanitizeUserID(event.Partition)),
			zap.Error(err))
	}
}

func (s *Service) logFailure(operation, partition string, err error) {
	if _, ok := err.(*ValidationError); ok {
		return
	}
	s.logger.Error("review_operation_failed",
		zap.String("operation", operation),
		zap.String("partition", logger.SanitizeUserID(partition)),
		zap.Error(err))
}

func (s *Service) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
