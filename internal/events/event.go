package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/benvon/review-memory/internal/models"
)

// Type identifies a review lifecycle event. It doubles as the routing key.
type Type string

const (
	// TypeReviewCompleted is emitted after a review has been appended to a ledger
	TypeReviewCompleted Type = "review.completed"
	// TypeHistoryCleared is emitted after a ledger has been cleared
	TypeHistoryCleared Type = "history.cleared"
)

// Event is the message body published for a ledger change
type Event struct {
	ID           uuid.UUID         `json:"id"`
	Type         Type              `json:"type"`
	Partition    string            `json:"partition"`
	ReviewID     string            `json:"review_id,omitempty"`
	Mode         models.ReviewMode `json:"mode,omitempty"`
	Language     string            `json:"language,omitempty"`
	Issues       int               `json:"issues,omitempty"`
	Suggestions  int               `json:"suggestions,omitempty"`
	TotalReviews int               `json:"total_reviews"`
	OccurredAt   time.Time         `json:"occurred_at"`
}

// NewReviewCompleted builds the event for a freshly stored record
func NewReviewCompleted(partition string, record models.ReviewRecord, stats models.UserStats) *Event {
	return &Event{
		ID:           uuid.New(),
		Type:         TypeReviewCompleted,
		Partition:    partition,
		ReviewID:     record.ID,
		Mode:         record.Mode,
		Language:     record.Language,
		Issues:       record.Issues,
		Suggestions:  record.Suggestions,
		TotalReviews: stats.TotalReviews,
		OccurredAt:   time.Now().UTC(),
	}
}

// NewHistoryCleared builds the event for a cleared ledger
func NewHistoryCleared(partition string) *Event {
	return &Event{
		ID:         uuid.New(),
		Type:       TypeHistoryCleared,
		Partition:  partition,
		OccurredAt: time.Now().UTC(),
	}
}
