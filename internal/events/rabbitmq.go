package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// DefaultExchangeName is the topic exchange review events are published to
	DefaultExchangeName = "review_events"
	// DefaultAuditQueueName collects every event for offline inspection
	DefaultAuditQueueName = "review_events_audit"

	// the audit queue has no consumer here, so the broker caps it and drops the oldest events
	auditQueueMaxLength = 10000
	auditQueueTTL       = 7 * 24 * time.Hour
)

// auditQueueArgs bounds the audit queue by length and message age
func auditQueueArgs() amqp.Table {
	return amqp.Table{
		"x-max-length":  int32(auditQueueMaxLength),
		"x-message-ttl": int32(auditQueueTTL.Milliseconds()),
		"x-overflow":    "drop-head",
	}
}

// ErrPublisherClosed is returned by Publish after the connection is gone
var ErrPublisherClosed = errors.New("event publisher is closed")

// RabbitMQPublisher publishes events to a durable topic exchange, routed by event type
type RabbitMQPublisher struct {
	mu           sync.Mutex
	conn         *amqp.Connection
	channel      *amqp.Channel
	exchangeName string
}

// NewRabbitMQPublisher connects to amqpURL and declares the exchange and audit queue
func NewRabbitMQPublisher(amqpURL string) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	p := &RabbitMQPublisher{
		conn:         conn,
		channel:      ch,
		exchangeName: DefaultExchangeName,
	}

	if err := p.setup(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to setup exchange: %w", err)
	}

	return p, nil
}

// setup declares the topic exchange and binds the audit queue to every routing key
func (p *RabbitMQPublisher) setup() error {
	err := p.channel.ExchangeDeclare(
		p.exchangeName,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	_, err = p.channel.QueueDeclare(
		DefaultAuditQueueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		auditQueueArgs(),
	)
	if err != nil {
		return fmt.Errorf("failed to declare audit queue: %w", err)
	}

	err = p.channel.QueueBind(
		DefaultAuditQueueName,
		"#",
		p.exchangeName,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to bind audit queue: %w", err)
	}

	return nil
}

// Publish implements Publisher
func (p *RabbitMQPublisher) Publish(ctx context.Context, event *Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	publishing := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID.String(),
		Timestamp:    event.OccurredAt,
		Type:         string(event.Type),
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel == nil || p.channel.IsClosed() {
		return ErrPublisherClosed
	}

	err = p.channel.PublishWithContext(
		ctx,
		p.exchangeName,
		string(event.Type),
		false, // mandatory
		false, // immediate
		publishing,
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}

	return nil
}

// Healthy reports whether the broker connection is still open
func (p *RabbitMQPublisher) Healthy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn != nil && !p.conn.IsClosed()
}

// Close closes the channel and connection
func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var err error
	if p.channel != nil {
		err = p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		if closeErr := p.conn.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		p.conn = nil
	}
	return err
}
