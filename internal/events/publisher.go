package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// AMQPPublisher publishes session events to the RabbitMQ session queue.
type AMQPPublisher struct {
	conn *Connection
}

// NewAMQPPublisher creates a publisher over an existing connection.
func NewAMQPPublisher(conn *Connection) *AMQPPublisher {
	return &AMQPPublisher{conn: conn}
}

// Publish delivers a session event to the queue.
func (p *AMQPPublisher) Publish(ctx context.Context, event *Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	if err := p.conn.PublishJSON(ctx, SessionQueueName, event); err != nil {
		return fmt.Errorf("publish session event: %w", err)
	}

	slog.Debug("published session event",
		"event_id", event.ID,
		"type", event.Type,
		"session_id", event.SessionID,
		"status", event.Status,
	)

	return nil
}

// Close closes the underlying connection.
func (p *AMQPPublisher) Close() error {
	return p.conn.Close()
}
