// Package events publishes session lifecycle events to RabbitMQ so outside
// systems (ATS integrations, notification pipelines) can follow interviews
// without polling. Publishing is fire-and-forget from the interview flow's
// point of view; a broker outage never blocks or fails an interview.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Queue name for session lifecycle events.
const SessionQueueName = "interviewd.sessions"

// Type identifies what happened to a session.
type Type string

const (
	TypeSessionCreated     Type = "session.created"
	TypeProfileUpdated     Type = "session.profile_updated"
	TypeInterviewStarted   Type = "interview.started"
	TypeAnswerSubmitted    Type = "interview.answer_submitted"
	TypeInterviewPaused    Type = "interview.paused"
	TypeInterviewResumed   Type = "interview.resumed"
	TypeInterviewCompleted Type = "interview.completed"
	TypeSessionDiscarded   Type = "session.discarded"
)

// Event is one session lifecycle notification.
type Event struct {
	ID         uuid.UUID `json:"id"`
	Type       Type      `json:"type"`
	SessionID  string    `json:"session_id"`
	Status     string    `json:"status"`
	QuestionID string    `json:"question_id,omitempty"`
	FinalScore *int      `json:"final_score,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// New creates an event with a fresh id and timestamp.
func New(eventType Type, sessionID, status string) *Event {
	return &Event{
		ID:         uuid.New(),
		Type:       eventType,
		SessionID:  sessionID,
		Status:     status,
		OccurredAt: time.Now(),
	}
}

// Publisher delivers session events to interested consumers.
type Publisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

// NoopPublisher drops every event. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, *Event) error { return nil }
func (NoopPublisher) Close() error                          { return nil }

// Ensure implementations satisfy Publisher.
var (
	_ Publisher = (*NoopPublisher)(nil)
	_ Publisher = (*AMQPPublisher)(nil)
)
