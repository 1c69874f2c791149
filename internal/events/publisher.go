package events

import "context"

// Publisher delivers review lifecycle events to interested consumers.
// Delivery is best-effort; callers log failures and carry on.
type Publisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

// NoopPublisher discards every event. Used when no broker is configured.
type NoopPublisher struct{}

// Publish implements Publisher
func (NoopPublisher) Publish(ctx context.Context, event *Event) error { return nil }

// Close implements Publisher
func (NoopPublisher) Close() error { return nil }
