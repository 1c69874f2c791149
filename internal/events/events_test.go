package events

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/benvon/review-memory/internal/models"
)

func TestNewReviewCompleted(t *testing.T) {
	t.Parallel()

	record := models.ReviewRecord{
		ID:          "rec-1",
		Language:    "go",
		Mode:        models.ReviewModeSecurity,
		Issues:      2,
		Suggestions: 1,
	}
	stats := models.UserStats{TotalReviews: 7}

	event := NewReviewCompleted("alice", record, stats)

	if event.Type != TypeReviewCompleted {
		t.Errorf("Expected type %s, got %s", TypeReviewCompleted, event.Type)
	}
	if event.Partition != "alice" || event.ReviewID != "rec-1" {
		t.Errorf("Unexpected event identity %+v", event)
	}
	if event.TotalReviews != 7 || event.Issues != 2 || event.Suggestions != 1 {
		t.Errorf("Unexpected counters %+v", event)
	}
	if event.OccurredAt.IsZero() {
		t.Error("Expected OccurredAt to be set")
	}

	raw, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	for _, key := range []string{"id", "type", "partition", "review_id", "mode", "language", "total_reviews", "occurred_at"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("Expected key %q in %s", key, raw)
		}
	}
}

func TestNewHistoryCleared(t *testing.T) {
	t.Parallel()

	event := NewHistoryCleared("bob")
	if event.Type != TypeHistoryCleared || event.Partition != "bob" {
		t.Errorf("Unexpected event %+v", event)
	}
	if event.ReviewID != "" {
		t.Errorf("Expected no review id, got %q", event.ReviewID)
	}

	a, b := NewHistoryCleared("bob"), NewHistoryCleared("bob")
	if a.ID == b.ID {
		t.Error("Expected distinct event ids")
	}
}

func TestNoopPublisher(t *testing.T) {
	t.Parallel()

	var p Publisher = NoopPublisher{}
	if err := p.Publish(context.Background(), NewHistoryCleared("x")); err != nil {
		t.Errorf("Publish() error = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestAuditQueueArgs(t *testing.T) {
	t.Parallel()

	args := auditQueueArgs()
	if err := args.Validate(); err != nil {
		t.Fatalf("Expected valid AMQP table, got %v", err)
	}

	tests := []struct {
		key  string
		want any
	}{
		{"x-max-length", int32(10000)},
		{"x-message-ttl", int32(604800000)},
		{"x-overflow", "drop-head"},
	}
	for _, tt := range tests {
		if got := args[tt.key]; got != tt.want {
			t.Errorf("%s = %v (%T), want %v (%T)", tt.key, got, got, tt.want, tt.want)
		}
	}
}

func TestRabbitMQPublisher(t *testing.T) {
	url := os.Getenv("RABBITMQ_TEST_URL")
	if url == "" {
		t.Skip("RABBITMQ_TEST_URL not set - requires a running RabbitMQ broker")
	}

	p, err := NewRabbitMQPublisher(url)
	if err != nil {
		t.Fatalf("NewRabbitMQPublisher() error = %v", err)
	}
	if !p.Healthy() {
		t.Error("Expected healthy connection")
	}
	if err := p.Publish(context.Background(), NewHistoryCleared("integration")); err != nil {
		t.Errorf("Publish() error = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := p.Publish(context.Background(), NewHistoryCleared("integration")); err != ErrPublisherClosed {
		t.Errorf("Expected ErrPublisherClosed after close, got %v", err)
	}
}
