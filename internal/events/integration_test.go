//go:build integration

package events_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"

	"interviewd/internal/events"
)

// setupRabbitMQ creates a RabbitMQ container for testing
func setupRabbitMQ(t *testing.T) (string, func()) {
	ctx := context.Background()

	container, err := rabbitmq.Run(ctx, "rabbitmq:3.12-management")
	if err != nil {
		t.Fatalf("failed to start RabbitMQ container: %v", err)
	}

	amqpURL, err := container.AmqpURL(ctx)
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("failed to get AMQP URL: %v", err)
	}

	cleanup := func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return amqpURL, cleanup
}

func TestIntegration_Connection_ConnectAndClose(t *testing.T) {
	amqpURL, cleanup := setupRabbitMQ(t)
	defer cleanup()

	conn, err := events.NewConnection(amqpURL)
	if err != nil {
		t.Fatalf("failed to create connection: %v", err)
	}

	if !conn.IsConnected() {
		t.Error("expected connection to be active")
	}

	if err := conn.Close(); err != nil {
		t.Errorf("failed to close connection: %v", err)
	}
}

func TestIntegration_Connection_InvalidURL(t *testing.T) {
	if _, err := events.NewConnection("amqp://invalid:5672"); err == nil {
		t.Error("expected error for invalid URL")
	}
}

func TestIntegration_Publisher_PublishEvent(t *testing.T) {
	amqpURL, cleanup := setupRabbitMQ(t)
	defer cleanup()

	conn, err := events.NewConnection(amqpURL)
	if err != nil {
		t.Fatalf("failed to create connection: %v", err)
	}
	defer conn.Close()

	publisher := events.NewAMQPPublisher(conn)
	ctx := context.Background()

	event := events.New(events.TypeInterviewStarted, "sess-1", "in_progress")
	if err := publisher.Publish(ctx, event); err != nil {
		t.Fatalf("failed to publish event: %v", err)
	}

	// The event lands on the session queue intact.
	msg, ok, err := conn.Channel().Get(events.SessionQueueName, true)
	if err != nil {
		t.Fatalf("failed to get message: %v", err)
	}
	if !ok {
		t.Fatal("expected a message on the session queue")
	}

	var got events.Event
	if err := json.Unmarshal(msg.Body, &got); err != nil {
		t.Fatalf("failed to decode message: %v", err)
	}
	if got.Type != events.TypeInterviewStarted {
		t.Errorf("event type = %q; want %q", got.Type, events.TypeInterviewStarted)
	}
	if got.SessionID != "sess-1" {
		t.Errorf("session id = %q; want sess-1", got.SessionID)
	}
	if got.ID.String() == "" || got.OccurredAt.IsZero() {
		t.Error("publisher should stamp ID and OccurredAt")
	}
}
